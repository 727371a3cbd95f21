package rod

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/tabrelay"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/time/rate"
)

// Ensure Typeahead implements tabrelay.Typeahead at compile time.
var _ tabrelay.Typeahead = (*Typeahead)(nil)

// DefaultKeystrokeDelay is the pause between typed characters.
const DefaultKeystrokeDelay = 50 * time.Millisecond

// Typeahead types queries into the site's search input and streams the
// suggestion responses the page fetches while typing.
type Typeahead struct {
	page   *rod.Page
	input  *rod.Element
	prefix string
	keys   *rate.Limiter
	events chan tabrelay.SuggestionEvent

	cancel  context.CancelFunc
	done    chan struct{}
	emitted sync.WaitGroup
	once    sync.Once
}

// TypeaheadOption configures a Typeahead.
type TypeaheadOption func(*Typeahead)

// WithKeystrokeDelay sets the pause between typed characters.
// Defaults to DefaultKeystrokeDelay.
func WithKeystrokeDelay(d time.Duration) TypeaheadOption {
	return func(t *Typeahead) {
		t.keys = rate.NewLimiter(rate.Every(d), 1)
	}
}

// NewTypeahead waits for the input matching selector on page and starts
// listening for responses whose URL starts with prefix.
// Close must be called to stop listening.
func NewTypeahead(ctx context.Context, page *rod.Page, selector, prefix string, opts ...TypeaheadOption) (*Typeahead, error) {
	input, err := page.Context(ctx).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("waiting for typeahead input: %w", err)
	}

	t := &Typeahead{
		page:   page,
		input:  input,
		prefix: prefix,
		keys:   rate.NewLimiter(rate.Every(DefaultKeystrokeDelay), 1),
		events: make(chan tabrelay.SuggestionEvent, 64),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	lctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	wait := t.listen(lctx)
	go func() {
		defer close(t.done)
		wait()
	}()
	return t, nil
}

// listen subscribes to network events. A suggestion is emitted once its
// body has finished loading.
func (t *Typeahead) listen(ctx context.Context) func() {
	responses := make(map[proto.NetworkRequestID]*proto.NetworkResponse)
	return t.page.Context(ctx).EachEvent(
		func(e *proto.NetworkResponseReceived) {
			if strings.HasPrefix(e.Response.URL, t.prefix) {
				responses[e.RequestID] = e.Response
			}
		},
		func(e *proto.NetworkLoadingFinished) {
			resp, ok := responses[e.RequestID]
			if !ok {
				return
			}
			delete(responses, e.RequestID)
			t.emitted.Add(1)
			go func() {
				defer t.emitted.Done()
				t.emit(ctx, tabrelay.SuggestionEvent{
					URL:    resp.URL,
					Status: resp.Status,
					Body:   t.body(e.RequestID),
				})
			}()
		},
		func(e *proto.NetworkLoadingFailed) {
			resp, ok := responses[e.RequestID]
			if !ok {
				return
			}
			delete(responses, e.RequestID)
			t.emitted.Add(1)
			go func() {
				defer t.emitted.Done()
				t.emit(ctx, tabrelay.SuggestionEvent{URL: resp.URL})
			}()
		},
	)
}

// body fetches a response body; failures yield nil and are handled
// downstream as an empty suggestion list.
func (t *Typeahead) body(id proto.NetworkRequestID) []byte {
	res, err := proto.NetworkGetResponseBody{RequestID: id}.Call(t.page)
	if err != nil {
		return nil
	}
	if res.Base64Encoded {
		b, err := base64.StdEncoding.DecodeString(res.Body)
		if err != nil {
			return nil
		}
		return b
	}
	return []byte(res.Body)
}

func (t *Typeahead) emit(ctx context.Context, ev tabrelay.SuggestionEvent) {
	select {
	case t.events <- ev:
	case <-ctx.Done():
	}
}

// Events streams suggestion responses until Close.
func (t *Typeahead) Events() <-chan tabrelay.SuggestionEvent {
	return t.events
}

// Submit clears the input and types query one character at a time.
func (t *Typeahead) Submit(ctx context.Context, query string) error {
	el := t.input.Context(ctx)
	if err := t.clear(el); err != nil {
		return err
	}
	for _, r := range query {
		if err := t.keys.Wait(ctx); err != nil {
			return err
		}
		if err := el.Input(string(r)); err != nil {
			return fmt.Errorf("typing %q: %w", query, err)
		}
	}
	return nil
}

// Clear empties the input.
func (t *Typeahead) Clear(ctx context.Context) error {
	return t.clear(t.input.Context(ctx))
}

func (t *Typeahead) clear(el *rod.Element) error {
	if err := el.Focus(); err != nil {
		return fmt.Errorf("focusing typeahead input: %w", err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("selecting typeahead input: %w", err)
	}
	if err := el.Input(""); err != nil {
		return fmt.Errorf("clearing typeahead input: %w", err)
	}
	return nil
}

// Close stops listening and closes the Events channel.
// Close is safe to call multiple times.
func (t *Typeahead) Close() error {
	t.once.Do(func() {
		t.cancel()
		<-t.done
		t.emitted.Wait()
		close(t.events)
	})
	return nil
}
