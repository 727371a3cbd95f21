// Package bloom provides approximate distinct-query counting using Bloom filters.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Counter estimates how many distinct strings it has observed.
// Counter is safe for concurrent use.
type Counter struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewCounter creates a Counter sized for n expected items with the given
// false positive rate.
func NewCounter(n uint, fpRate float64) *Counter {
	return &Counter{f: bloom.NewWithEstimates(n, fpRate)}
}

// Observe records s and reports whether it was (probably) seen before.
func (c *Counter) Observe(s string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.f.TestOrAddString(s)
}

// Seen returns true if s might have been observed.
// False positives are possible; false negatives are not.
func (c *Counter) Seen(s string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.f.TestString(s)
}

// Estimate returns the approximate number of distinct strings observed.
func (c *Counter) Estimate() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint(c.f.ApproximatedSize())
}
