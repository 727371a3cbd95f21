package mock

import (
	"context"

	"github.com/fwojciec/tabrelay"
)

var _ tabrelay.Typeahead = (*Typeahead)(nil)

// Typeahead is a mock implementation of tabrelay.Typeahead.
type Typeahead struct {
	SubmitFn func(ctx context.Context, query string) error
	ClearFn  func(ctx context.Context) error
	EventsFn func() <-chan tabrelay.SuggestionEvent
}

func (t *Typeahead) Submit(ctx context.Context, query string) error {
	return t.SubmitFn(ctx, query)
}

func (t *Typeahead) Clear(ctx context.Context) error {
	return t.ClearFn(ctx)
}

func (t *Typeahead) Events() <-chan tabrelay.SuggestionEvent {
	return t.EventsFn()
}
