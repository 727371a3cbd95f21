package mock

import (
	"context"

	"github.com/fwojciec/tabrelay"
)

var _ tabrelay.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of tabrelay.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, query string) (*tabrelay.Result, error)
}

func (e *Extractor) Extract(ctx context.Context, query string) (*tabrelay.Result, error) {
	return e.ExtractFn(ctx, query)
}
