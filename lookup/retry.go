package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/tabrelay"
)

// ExtractFunc is the signature for an extraction function.
type ExtractFunc func(ctx context.Context, query string) (*tabrelay.Result, error)

// LogFunc is the signature for a logging function.
type LogFunc func(msg string, args ...any)

// DefaultRetryDelays returns the backoff delays for extraction retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// ExtractWithRetry runs extract, retrying transport faults after each of
// delays. Errors coded ENOTFOUND or EINVALID describe the page itself and are
// returned immediately, as are context errors.
func ExtractWithRetry(ctx context.Context, query string, extract ExtractFunc, logger LogFunc, delays []time.Duration) (*tabrelay.Result, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		res, err := extract(ctx, query)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if permanent(err) || attempt >= maxAttempts-1 {
			break
		}

		if logger != nil {
			logger("retry extraction", "query", query, "attempt", attempt+2, "err", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}

// cacheable reports whether err still describes a definitive, empty answer.
func cacheable(err error) bool {
	switch tabrelay.ErrorCode(err) {
	case tabrelay.ENOTFOUND, tabrelay.EINVALID:
		return true
	}
	return false
}

func permanent(err error) bool {
	return cacheable(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
