// Package slog provides logging decorators for browser sessions.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/tabrelay"
)

// Ensure LoggingExtractor implements tabrelay.Extractor.
var _ tabrelay.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging.
type LoggingExtractor struct {
	next   tabrelay.Extractor
	kind   tabrelay.LookupKind
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next tabrelay.Extractor, kind tabrelay.LookupKind, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, kind: kind, logger: logger}
}

// Extract logs the query, result size and duration.
func (e *LoggingExtractor) Extract(ctx context.Context, query string) (res *tabrelay.Result, err error) {
	defer func(begin time.Time) {
		e.logger.Info("extract",
			"kind", e.kind.String(),
			"query", query,
			"records", resultSize(res),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(ctx, query)
}

func resultSize(res *tabrelay.Result) int {
	switch {
	case res == nil:
		return 0
	case res.Text != "":
		return len(res.Text)
	default:
		return len(res.Records) + len(res.Suggestions)
	}
}
