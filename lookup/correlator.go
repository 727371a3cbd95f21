package lookup

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/fwojciec/tabrelay"
)

// Correlator matches suggestion events to the pending queries that caused
// them. Matching is by the query term encoded in the event URL, never by
// arrival order.
type Correlator struct {
	ledger *Ledger
	logger *slog.Logger
}

// NewCorrelator creates a Correlator that resolves suggestions through ledger.
func NewCorrelator(ledger *Ledger, logger *slog.Logger) *Correlator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Correlator{ledger: ledger, logger: logger}
}

// Run handles events until the channel is closed or ctx is done.
func (c *Correlator) Run(ctx context.Context, events <-chan tabrelay.SuggestionEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.Handle(ctx, ev)
		}
	}
}

// Handle resolves the query behind ev and notifies its waiters.
// Events nobody asked for are cached without notifying anyone.
func (c *Correlator) Handle(ctx context.Context, ev tabrelay.SuggestionEvent) {
	term, ok := SuggestionTerm(ev.URL)
	if !ok {
		c.logger.Debug("suggestion event without term", "url", ev.URL)
		return
	}

	result, waiters := c.ledger.Resolve(tabrelay.KindSuggestion, term, decodeSuggestions(ev))
	if len(waiters) == 0 {
		c.logger.Debug("unsolicited suggestion",
			"query", term,
			"count", len(result.Suggestions),
		)
		return
	}

	c.logger.Info("suggest complete",
		"query", term,
		"count", len(result.Suggestions),
		"waiters", len(waiters),
	)
	broadcast(ctx, c.logger, tabrelay.NewResponse(tabrelay.KindSuggestion, term, result), waiters)
}

// decodeSuggestions turns an event body into a result. Failed responses and
// malformed bodies yield an empty suggestion list.
func decodeSuggestions(ev tabrelay.SuggestionEvent) *tabrelay.Result {
	if ev.Status < 200 || ev.Status > 299 {
		return &tabrelay.Result{Suggestions: []string{}}
	}
	var payload struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(ev.Body, &payload); err != nil || payload.Suggestions == nil {
		return &tabrelay.Result{Suggestions: []string{}}
	}
	return &tabrelay.Result{Suggestions: payload.Suggestions}
}

// SuggestionTerm derives the typed query from a suggestion URL such as
// ".../suggestions/n/nirvana_smells.js": the last path segment without its
// three-character extension, with underscores read as spaces.
func SuggestionTerm(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	seg := path.Base(u.Path)
	if seg == "/" || seg == "." || len(seg) <= 3 {
		return "", false
	}
	return strings.ReplaceAll(seg[:len(seg)-3], "_", " "), true
}
