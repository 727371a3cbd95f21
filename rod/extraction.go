package rod

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/tabrelay"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure ExtractionSession implements tabrelay.Extractor at compile time.
var _ tabrelay.Extractor = (*ExtractionSession)(nil)

// DefaultReadyTimeout bounds the wait for a session's ready selector once
// the page has loaded.
const DefaultReadyTimeout = 10 * time.Second

// ExtractionSession answers lookups by navigating its page to a URL derived
// from the query and parsing the rendered HTML.
// ExtractionSession is not safe for concurrent use.
type ExtractionSession struct {
	page   *rod.Page
	parser tabrelay.PageParser
	target func(query string) string

	ready        string
	readyTimeout time.Duration
}

// ExtractionOption configures an ExtractionSession.
type ExtractionOption func(*ExtractionSession)

// WithReadySelector makes Extract wait up to timeout for an element
// matching selector before reading the page. Pages rendered after the load
// event need this. If the element never appears the page is parsed as is.
func WithReadySelector(selector string, timeout time.Duration) ExtractionOption {
	return func(s *ExtractionSession) {
		s.ready = selector
		s.readyTimeout = timeout
	}
}

// NewSearchSession returns a session that runs title searches on site.
func NewSearchSession(page *rod.Page, site tabrelay.Site, parser tabrelay.PageParser, opts ...ExtractionOption) *ExtractionSession {
	return newExtractionSession(page, parser, site.SearchURL, opts)
}

// NewDocumentSession returns a session that loads the document URL given
// as the query.
func NewDocumentSession(page *rod.Page, parser tabrelay.PageParser, opts ...ExtractionOption) *ExtractionSession {
	return newExtractionSession(page, parser, func(query string) string { return query }, opts)
}

func newExtractionSession(page *rod.Page, parser tabrelay.PageParser, target func(string) string, opts []ExtractionOption) *ExtractionSession {
	s := &ExtractionSession{
		page:         page,
		parser:       parser,
		target:       target,
		readyTimeout: DefaultReadyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract navigates to the page for query, waits for it to load and parses
// it. A non-2xx status of the main frame's document returns ENOTFOUND
// without parsing. Navigation within the current document keeps the page
// already loaded.
func (s *ExtractionSession) Extract(ctx context.Context, query string) (*tabrelay.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := s.target(query)

	// Canceling releases the event subscription if navigation fails early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p := s.page.Context(ctx)

	status := 0
	sameDocument := false
	wait := p.EachEvent(
		func(e *proto.NetworkResponseReceived) bool {
			// Subframes of the outgoing page keep loading during navigation.
			if e.Type != proto.NetworkResourceTypeDocument || e.FrameID != p.FrameID {
				return false
			}
			status = e.Response.Status
			return true
		},
		func(e *proto.PageNavigatedWithinDocument) bool {
			if e.FrameID != p.FrameID {
				return false
			}
			sameDocument = true
			return true
		},
	)

	if err := p.Navigate(target); err != nil {
		return nil, fmt.Errorf("navigating to %s: %w", target, err)
	}
	wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", target, err)
	}

	if !sameDocument && (status < 200 || status > 299) {
		return nil, tabrelay.Errorf(tabrelay.ENOTFOUND, "%s returned status %d", target, status)
	}

	if err := s.waitReady(ctx, p); err != nil {
		return nil, err
	}

	html, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}

	return s.parser.Parse(html)
}

// waitReady waits for the ready selector. Running out of readyTimeout is
// not an error: the parser decides what an incomplete page holds.
func (s *ExtractionSession) waitReady(ctx context.Context, p *rod.Page) error {
	if s.ready == "" {
		return nil
	}
	_, err := p.Timeout(s.readyTimeout).Element(s.ready)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return fmt.Errorf("waiting for %s: %w", s.ready, err)
}
