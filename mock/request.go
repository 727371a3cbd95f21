package mock

import (
	"context"

	"github.com/fwojciec/tabrelay"
)

// Compile-time interface verification.
var (
	_ tabrelay.Waiter         = (*Waiter)(nil)
	_ tabrelay.RequestHandler = (*RequestHandler)(nil)
)

// Waiter is a mock implementation of tabrelay.Waiter.
type Waiter struct {
	IDFn   func() string
	SendFn func(ctx context.Context, resp *tabrelay.Response) error
}

func (w *Waiter) ID() string {
	return w.IDFn()
}

func (w *Waiter) Send(ctx context.Context, resp *tabrelay.Response) error {
	return w.SendFn(ctx, resp)
}

// RequestHandler is a mock implementation of tabrelay.RequestHandler.
type RequestHandler struct {
	HandleFn     func(ctx context.Context, w tabrelay.Waiter, req *tabrelay.Request) error
	DisconnectFn func(w tabrelay.Waiter)
}

func (h *RequestHandler) Handle(ctx context.Context, w tabrelay.Waiter, req *tabrelay.Request) error {
	return h.HandleFn(ctx, w, req)
}

func (h *RequestHandler) Disconnect(w tabrelay.Waiter) {
	h.DisconnectFn(w)
}
