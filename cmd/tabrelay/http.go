package main

import (
	"encoding/json"
	"net/http"

	"github.com/fwojciec/tabrelay"
)

// StatsFunc reports per-kind lookup state.
type StatsFunc func() []tabrelay.Stats

// NewHandler routes websocket clients to ws and serves /stats and /healthz.
func NewHandler(ws http.Handler, stats StatsFunc) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", ws)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stats())
	})
	return mux
}
