package lookup_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/tabrelay"
	"github.com/fwojciec/tabrelay/mock"
	"github.com/stretchr/testify/require"
)

// recorder returns a mock waiter that captures every response it is sent.
func recorder(id string) (*mock.Waiter, chan *tabrelay.Response) {
	ch := make(chan *tabrelay.Response, 16)
	w := &mock.Waiter{
		IDFn: func() string { return id },
		SendFn: func(ctx context.Context, resp *tabrelay.Response) error {
			ch <- resp
			return nil
		},
	}
	return w, ch
}

func receive(t *testing.T, ch <-chan *tabrelay.Response) *tabrelay.Response {
	t.Helper()
	select {
	case resp := <-ch:
		return resp
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for response")
		return nil
	}
}

func assertNoResponse(t *testing.T, ch <-chan *tabrelay.Response) {
	t.Helper()
	select {
	case resp := <-ch:
		require.FailNow(t, "unexpected response", "%+v", resp)
	case <-time.After(50 * time.Millisecond):
	}
}
