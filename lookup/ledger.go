package lookup

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/fwojciec/tabrelay"
)

// Role tells a requester what to do after registering with the Ledger.
type Role int

// Role constants.
const (
	// Leader must drive the browser fetch for the query.
	Leader Role = iota + 1
	// Follower waits; it is notified when the leader's fetch resolves.
	Follower
	// Resolved means the query was cached by the time it was registered.
	Resolved
)

func (r Role) String() string {
	switch r {
	case Leader:
		return "leader"
	case Follower:
		return "follower"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

type pendingRequest struct {
	waiters []tabrelay.Waiter
	done    chan struct{}
}

// Ledger tracks in-flight queries and the waiters of each. At most one
// pending request exists per (kind, query). The Ledger owns all writes to
// its Cache so that checking for a cached result and registering a pending
// request happen atomically.
//
// Ledger is safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	cache   *Cache
	pending map[cacheKey]*pendingRequest
	logger  *slog.Logger
}

// NewLedger creates a Ledger that stores resolved results in cache.
func NewLedger(cache *Cache, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ledger{
		cache:   cache,
		pending: make(map[cacheKey]*pendingRequest),
		logger:  logger,
	}
}

// RegisterOrJoin adds w as a waiter on query. The first waiter of a fresh
// query becomes the Leader; later waiters are Followers until the query
// resolves. If the query was resolved in the meantime, RegisterOrJoin returns
// Resolved with the cached result and does not register w.
func (l *Ledger) RegisterOrJoin(kind tabrelay.LookupKind, query string, w tabrelay.Waiter) (Role, *tabrelay.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if res, ok := l.cache.Lookup(kind, query); ok {
		return Resolved, res
	}

	k := cacheKey{kind, query}
	if p, ok := l.pending[k]; ok {
		if !containsWaiter(p.waiters, w) {
			p.waiters = append(p.waiters, w)
		}
		return Follower, nil
	}

	l.pending[k] = &pendingRequest{
		waiters: []tabrelay.Waiter{w},
		done:    make(chan struct{}),
	}
	return Leader, nil
}

// Resolve caches result for query, clears the pending request and returns
// its waiters. The returned result is the authoritative cached entry, which
// is the earlier one if query was already cached. Resolving a query nobody
// is waiting on still caches the result and returns no waiters.
func (l *Ledger) Resolve(kind tabrelay.LookupKind, query string, result *tabrelay.Result) (*tabrelay.Result, []tabrelay.Waiter) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored, _ := l.cache.Store(kind, query, result)

	k := cacheKey{kind, query}
	p, ok := l.pending[k]
	if !ok {
		l.logger.Debug("resolve without pending request",
			"kind", kind.String(),
			"query", query,
		)
		return stored, nil
	}
	delete(l.pending, k)
	close(p.done)
	return stored, p.waiters
}

// Evict clears the pending request for query without caching anything and
// returns its waiters. A later request for query becomes a new Leader.
func (l *Ledger) Evict(kind tabrelay.LookupKind, query string) []tabrelay.Waiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := cacheKey{kind, query}
	p, ok := l.pending[k]
	if !ok {
		return nil
	}
	delete(l.pending, k)
	close(p.done)
	return p.waiters
}

// Done returns a channel that is closed when the pending request for query
// is resolved or evicted. If query is not pending the channel is already
// closed.
func (l *Ledger) Done(kind tabrelay.LookupKind, query string) <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.pending[cacheKey{kind, query}]; ok {
		return p.done
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}

// IsPending reports whether query has an outstanding lookup.
func (l *Ledger) IsPending(kind tabrelay.LookupKind, query string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.pending[cacheKey{kind, query}]
	return ok
}

// Waiters returns a copy of the waiters registered on query.
func (l *Ledger) Waiters(kind tabrelay.LookupKind, query string) []tabrelay.Waiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.pending[cacheKey{kind, query}]; ok {
		return slices.Clone(p.waiters)
	}
	return nil
}

// Remove drops w from every pending request. The lookups themselves keep
// running for the remaining waiters.
func (l *Ledger) Remove(w tabrelay.Waiter) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.pending {
		p.waiters = slices.DeleteFunc(p.waiters, func(o tabrelay.Waiter) bool {
			return o.ID() == w.ID()
		})
	}
}

// Pending returns the number of outstanding lookups for kind.
func (l *Ledger) Pending(kind tabrelay.LookupKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for k := range l.pending {
		if k.kind == kind {
			n++
		}
	}
	return n
}

func containsWaiter(waiters []tabrelay.Waiter, w tabrelay.Waiter) bool {
	return slices.ContainsFunc(waiters, func(o tabrelay.Waiter) bool {
		return o.ID() == w.ID()
	})
}
