package tabrelay

import (
	"context"
	"encoding/json"
)

// Request is a decoded client lookup.
type Request struct {
	Kind  LookupKind
	Query string
}

// Response is sent to a waiter once its lookup resolves, or immediately on a
// cache hit. Error is set when the lookup or the request itself failed; the
// result is then empty.
type Response struct {
	Kind   LookupKind
	Query  string
	Result *Result
	Error  string
}

// NewResponse returns a response for a resolved lookup.
func NewResponse(kind LookupKind, query string, result *Result) *Response {
	return &Response{Kind: kind, Query: query, Result: result}
}

// MarshalJSON mirrors the request field name: {"search": q, "results": [...]}.
// Documents carry their text as a single-element results array, or an empty
// array when nothing was found.
func (r *Response) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 3)
	if r.Kind.Valid() {
		m[r.Kind.Field()] = r.Query
		m["results"] = r.results()
	}
	if r.Error != "" {
		m["error"] = r.Error
	}
	return json.Marshal(m)
}

func (r *Response) results() any {
	res := r.Result
	if res == nil {
		res = &Result{}
	}
	switch r.Kind {
	case KindSuggestion:
		if res.Suggestions == nil {
			return []string{}
		}
		return res.Suggestions
	case KindSearch:
		if res.Records == nil {
			return []SearchRecord{}
		}
		return res.Records
	default:
		if res.Text == "" {
			return []string{}
		}
		return []string{res.Text}
	}
}

// Waiter is a client connection that can receive responses.
// Implementations must be safe for concurrent use.
type Waiter interface {
	// ID uniquely identifies the connection for the life of the process.
	ID() string

	// Send delivers a response to the client.
	Send(ctx context.Context, resp *Response) error
}

// RequestHandler answers decoded client requests.
type RequestHandler interface {
	// Handle answers req on behalf of w. It does not wait for browser work:
	// the response may be sent after Handle returns.
	Handle(ctx context.Context, w Waiter, req *Request) error

	// Disconnect forgets w. In-flight lookups continue for other waiters.
	Disconnect(w Waiter)
}
