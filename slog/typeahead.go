package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/tabrelay"
)

// Ensure LoggingTypeahead implements tabrelay.Typeahead.
var _ tabrelay.Typeahead = (*LoggingTypeahead)(nil)

// LoggingTypeahead wraps a Typeahead with logging.
type LoggingTypeahead struct {
	next   tabrelay.Typeahead
	logger *slog.Logger
}

// NewLoggingTypeahead creates a new LoggingTypeahead.
func NewLoggingTypeahead(next tabrelay.Typeahead, logger *slog.Logger) *LoggingTypeahead {
	return &LoggingTypeahead{next: next, logger: logger}
}

// Submit logs the typed query and how long typing took.
func (t *LoggingTypeahead) Submit(ctx context.Context, query string) (err error) {
	defer func(begin time.Time) {
		t.logger.Info("suggest lookup",
			"query", query,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return t.next.Submit(ctx, query)
}

// Clear delegates to the wrapped typeahead. Callers log failures.
func (t *LoggingTypeahead) Clear(ctx context.Context) error {
	return t.next.Clear(ctx)
}

// Events delegates to the wrapped typeahead.
func (t *LoggingTypeahead) Events() <-chan tabrelay.SuggestionEvent {
	return t.next.Events()
}
