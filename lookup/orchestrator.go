package lookup

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/tabrelay"
	"github.com/fwojciec/tabrelay/bloom"
	"golang.org/x/sync/semaphore"
)

// Ensure Orchestrator implements tabrelay.RequestHandler at compile time.
var _ tabrelay.RequestHandler = (*Orchestrator)(nil)

// DefaultTimeout bounds a single lookup, including time spent queued behind
// other lookups of the same kind.
const DefaultTimeout = 30 * time.Second

// clearTimeout bounds clearing the typeahead input after a lookup.
const clearTimeout = 5 * time.Second

// Orchestrator answers client requests from the cache or by driving the
// browser session of the requested kind. Each session runs one lookup at a
// time; further lookups of the same kind queue in arrival order.
type Orchestrator struct {
	cache     *Cache
	ledger    *Ledger
	search    tabrelay.Extractor
	documents tabrelay.Extractor
	typeahead tabrelay.Typeahead

	timeout     time.Duration
	retryDelays []time.Duration
	validate    func(kind tabrelay.LookupKind, query string) error
	logger      *slog.Logger

	lanes    map[tabrelay.LookupKind]*semaphore.Weighted
	distinct map[tabrelay.LookupKind]*bloom.Counter

	mu     sync.Mutex // guards closed and wg.Add against Close
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout sets how long a lookup may take before its waiters are
// released with an error. Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// WithRetryDelays sets the retry delays for failed extractions.
// Defaults to DefaultRetryDelays() if not specified.
func WithRetryDelays(delays []time.Duration) Option {
	return func(o *Orchestrator) {
		o.retryDelays = delays
	}
}

// WithValidator sets a check run on every normalized request before it
// reaches the cache.
func WithValidator(fn func(kind tabrelay.LookupKind, query string) error) Option {
	return func(o *Orchestrator) {
		o.validate = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an Orchestrator over the given sessions.
// Close must be called to stop outstanding lookups.
func NewOrchestrator(
	ledger *Ledger,
	cache *Cache,
	search tabrelay.Extractor,
	documents tabrelay.Extractor,
	typeahead tabrelay.Typeahead,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		cache:       cache,
		ledger:      ledger,
		search:      search,
		documents:   documents,
		typeahead:   typeahead,
		timeout:     DefaultTimeout,
		retryDelays: DefaultRetryDelays(),
		logger:      slog.New(slog.DiscardHandler),
		lanes:       make(map[tabrelay.LookupKind]*semaphore.Weighted),
		distinct:    make(map[tabrelay.LookupKind]*bloom.Counter),
	}
	for _, opt := range opts {
		opt(o)
	}
	for _, kind := range tabrelay.Kinds {
		o.lanes[kind] = semaphore.NewWeighted(1)
		o.distinct[kind] = bloom.NewCounter(100_000, 0.01)
	}
	o.ctx, o.cancel = context.WithCancel(context.Background())
	return o
}

// Handle answers req for w: immediately from the cache, or later once the
// lookup it starts or joins resolves.
func (o *Orchestrator) Handle(ctx context.Context, w tabrelay.Waiter, req *tabrelay.Request) error {
	kind := req.Kind
	query := tabrelay.NormalizeQuery(req.Query)
	if o.isClosed() {
		return errShuttingDown
	}
	if !kind.Valid() {
		return tabrelay.Errorf(tabrelay.EINVALID, "unknown lookup kind %d", kind)
	}
	if query == "" {
		return tabrelay.Errorf(tabrelay.EINVALID, "%s query required", kind.Field())
	}
	if o.validate != nil {
		if err := o.validate(kind, query); err != nil {
			return err
		}
	}
	o.distinct[kind].Observe(query)

	if res, ok := o.cache.Lookup(kind, query); ok {
		o.logger.Info("cache hit", "kind", kind.String(), "query", query)
		return w.Send(ctx, tabrelay.NewResponse(kind, query, res))
	}

	role, res := o.ledger.RegisterOrJoin(kind, query, w)
	switch role {
	case Resolved:
		return w.Send(ctx, tabrelay.NewResponse(kind, query, res))
	case Follower:
		o.logger.Debug("joined lookup", "kind", kind.String(), "query", query, "waiter", w.ID())
		return nil
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		resp := tabrelay.NewResponse(kind, query, &tabrelay.Result{})
		resp.Error = errShuttingDown.Message
		broadcast(ctx, o.logger, resp, o.ledger.Evict(kind, query))
		return nil
	}
	o.wg.Add(1)
	o.mu.Unlock()

	o.logger.Info("lookup", "kind", kind.String(), "query", query)
	go func() {
		defer o.wg.Done()
		o.drive(kind, query)
	}()
	return nil
}

var errShuttingDown = tabrelay.Errorf(tabrelay.ECONFLICT, "server shutting down")

func (o *Orchestrator) isClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

// Disconnect removes w from every pending lookup.
func (o *Orchestrator) Disconnect(w tabrelay.Waiter) {
	o.ledger.Remove(w)
}

// Stats reports cache and ledger sizes per kind.
func (o *Orchestrator) Stats() []tabrelay.Stats {
	stats := make([]tabrelay.Stats, 0, len(tabrelay.Kinds))
	for _, kind := range tabrelay.Kinds {
		stats = append(stats, tabrelay.Stats{
			Kind:     kind.String(),
			Cached:   o.cache.Len(kind),
			Pending:  o.ledger.Pending(kind),
			Distinct: o.distinct[kind].Estimate(),
		})
	}
	return stats
}

// Close cancels outstanding lookups and waits for them to finish. Requests
// handled after Close are rejected.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.cancel()
	o.wg.Wait()
	return nil
}

// drive runs the lookup for query on its kind's session once the session
// is free.
func (o *Orchestrator) drive(kind tabrelay.LookupKind, query string) {
	ctx, cancel := context.WithTimeout(o.ctx, o.timeout)
	defer cancel()

	lane := o.lanes[kind]
	if err := lane.Acquire(ctx, 1); err != nil {
		o.fail(kind, query, err)
		return
	}
	defer lane.Release(1)

	// An unsolicited suggestion event may have answered the query while it
	// was queued.
	if !o.ledger.IsPending(kind, query) {
		return
	}

	switch kind {
	case tabrelay.KindSuggestion:
		o.suggest(ctx, query)
	case tabrelay.KindSearch:
		o.extract(ctx, kind, o.search, query)
	case tabrelay.KindDocument:
		o.extract(ctx, kind, o.documents, query)
	}
}

func (o *Orchestrator) extract(ctx context.Context, kind tabrelay.LookupKind, ex tabrelay.Extractor, query string) {
	res, err := ExtractWithRetry(ctx, query, ex.Extract, o.logger.Warn, o.retryDelays)
	if err != nil {
		if !cacheable(err) {
			o.fail(kind, query, err)
			return
		}
		o.logger.Warn("empty lookup",
			"kind", kind.String(),
			"query", query,
			"err", err,
		)
		res = &tabrelay.Result{}
	}

	result, waiters := o.ledger.Resolve(kind, query, res)
	o.logger.Info("lookup complete",
		"kind", kind.String(),
		"query", query,
		"empty", result.Empty(),
		"waiters", len(waiters),
	)
	broadcast(o.ctx, o.logger, tabrelay.NewResponse(kind, query, result), waiters)
}

// suggest types query and holds the typeahead session until the correlator
// resolves it or the lookup times out.
func (o *Orchestrator) suggest(ctx context.Context, query string) {
	done := o.ledger.Done(tabrelay.KindSuggestion, query)
	defer o.clearInput()

	if err := o.typeahead.Submit(ctx, query); err != nil {
		o.fail(tabrelay.KindSuggestion, query, err)
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
		o.fail(tabrelay.KindSuggestion, query, ctx.Err())
	}
}

func (o *Orchestrator) clearInput() {
	ctx, cancel := context.WithTimeout(o.ctx, clearTimeout)
	defer cancel()
	if err := o.typeahead.Clear(ctx); err != nil {
		o.logger.Warn("clear typeahead", "err", err)
	}
}

// fail releases the waiters of query with an error and forgets the query
// without caching, so a later request retries it.
func (o *Orchestrator) fail(kind tabrelay.LookupKind, query string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		err = tabrelay.Errorf(tabrelay.ETIMEOUT, "lookup timed out")
	}
	waiters := o.ledger.Evict(kind, query)
	o.logger.Error("lookup failed",
		"kind", kind.String(),
		"query", query,
		"waiters", len(waiters),
		"err", err,
	)
	resp := tabrelay.NewResponse(kind, query, &tabrelay.Result{})
	resp.Error = failureMessage(err)
	broadcast(o.ctx, o.logger, resp, waiters)
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "lookup canceled"
	case tabrelay.ErrorCode(err) != tabrelay.EINTERNAL:
		return tabrelay.ErrorMessage(err)
	default:
		return "lookup failed"
	}
}

// broadcast sends resp to every waiter. A failed send affects only that waiter.
func broadcast(ctx context.Context, logger *slog.Logger, resp *tabrelay.Response, waiters []tabrelay.Waiter) {
	for _, w := range waiters {
		if err := w.Send(ctx, resp); err != nil {
			logger.Warn("send response",
				"waiter", w.ID(),
				"kind", resp.Kind.String(),
				"query", resp.Query,
				"err", err,
			)
		}
	}
}
