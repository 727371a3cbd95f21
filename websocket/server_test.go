package websocket_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/tabrelay"
	"github.com/fwojciec/tabrelay/mock"
	"github.com/fwojciec/tabrelay/websocket"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dial starts a server around handler and connects a client to it.
func dial(t *testing.T, handler tabrelay.RequestHandler) *gws.Conn {
	t.Helper()

	srv := httptest.NewServer(websocket.NewServer(handler))
	t.Cleanup(srv.Close)

	client, _, err := gws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func readJSON(t *testing.T, client *gws.Conn) map[string]any {
	t.Helper()

	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	return got
}

func noDisconnect(tabrelay.Waiter) {}

func TestServer_DispatchesRequestAndDeliversResponse(t *testing.T) {
	t.Parallel()

	requests := make(chan *tabrelay.Request, 1)
	handler := &mock.RequestHandler{
		HandleFn: func(ctx context.Context, w tabrelay.Waiter, req *tabrelay.Request) error {
			requests <- req
			return w.Send(ctx, tabrelay.NewResponse(req.Kind, req.Query, &tabrelay.Result{
				Records: []tabrelay.SearchRecord{{Type: "Chords", Song: "Wonderwall", Artist: "Oasis", Href: "https://tabs.example.com/tab/1"}},
			}))
		},
		DisconnectFn: noDisconnect,
	}
	client := dial(t, handler)

	require.NoError(t, client.WriteMessage(gws.TextMessage, []byte(`{"search":"wonderwall"}`)))

	got := readJSON(t, client)
	assert.Equal(t, "wonderwall", got["search"])
	results, ok := got["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, "Oasis", results[0].(map[string]any)["artist"])

	req := <-requests
	assert.Equal(t, tabrelay.KindSearch, req.Kind)
	assert.Equal(t, "wonderwall", req.Query)
}

func TestServer_MalformedFrameGetsErrorAndConnectionSurvives(t *testing.T) {
	t.Parallel()

	handler := &mock.RequestHandler{
		HandleFn: func(ctx context.Context, w tabrelay.Waiter, req *tabrelay.Request) error {
			return w.Send(ctx, tabrelay.NewResponse(req.Kind, req.Query, &tabrelay.Result{Suggestions: []string{"nirvana"}}))
		},
		DisconnectFn: noDisconnect,
	}
	client := dial(t, handler)

	require.NoError(t, client.WriteMessage(gws.TextMessage, []byte(`{"search":"a","suggest":"b"}`)))
	got := readJSON(t, client)
	assert.Equal(t, "expected exactly one of search, suggest or music", got["error"])
	assert.NotContains(t, got, "results")

	require.NoError(t, client.WriteMessage(gws.TextMessage, []byte(`{"suggest":"nirv"}`)))
	got = readJSON(t, client)
	assert.Equal(t, "nirv", got["suggest"])
	assert.Equal(t, []any{"nirvana"}, got["results"])
}

func TestServer_HandlerErrorMirrorsRequest(t *testing.T) {
	t.Parallel()

	handler := &mock.RequestHandler{
		HandleFn: func(context.Context, tabrelay.Waiter, *tabrelay.Request) error {
			return tabrelay.Errorf(tabrelay.EINVALID, "document URL must be on tabs.example.com")
		},
		DisconnectFn: noDisconnect,
	}
	client := dial(t, handler)

	require.NoError(t, client.WriteMessage(gws.TextMessage, []byte(`{"music":"https://evil.example.org/x"}`)))

	got := readJSON(t, client)
	assert.Equal(t, "https://evil.example.org/x", got["music"])
	assert.Equal(t, []any{}, got["results"])
	assert.Equal(t, "document URL must be on tabs.example.com", got["error"])
}

func TestServer_DisconnectReleasesWaiter(t *testing.T) {
	t.Parallel()

	handled := make(chan string, 1)
	disconnected := make(chan string, 1)
	handler := &mock.RequestHandler{
		HandleFn: func(_ context.Context, w tabrelay.Waiter, _ *tabrelay.Request) error {
			handled <- w.ID()
			return nil
		},
		DisconnectFn: func(w tabrelay.Waiter) {
			disconnected <- w.ID()
		},
	}
	client := dial(t, handler)

	require.NoError(t, client.WriteMessage(gws.TextMessage, []byte(`{"search":"slow"}`)))
	id := <-handled
	assert.NotEmpty(t, id)

	require.NoError(t, client.WriteMessage(gws.CloseMessage, gws.FormatCloseMessage(gws.CloseNormalClosure, "")))

	select {
	case got := <-disconnected:
		assert.Equal(t, id, got)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not release the connection")
	}
}

func TestServer_ConnectionsHaveDistinctIDs(t *testing.T) {
	t.Parallel()

	ids := make(chan string, 2)
	handler := &mock.RequestHandler{
		HandleFn: func(_ context.Context, w tabrelay.Waiter, _ *tabrelay.Request) error {
			ids <- w.ID()
			return nil
		},
		DisconnectFn: noDisconnect,
	}

	for range 2 {
		client := dial(t, handler)
		require.NoError(t, client.WriteMessage(gws.TextMessage, []byte(`{"search":"x"}`)))
	}

	assert.NotEqual(t, <-ids, <-ids)
}
