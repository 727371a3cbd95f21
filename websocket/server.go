// Package websocket adapts websocket client connections to lookup requests
// and responses using gorilla/websocket.
package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/tabrelay"
	"github.com/gorilla/websocket"
)

// Ensure Server implements http.Handler at compile time.
var _ http.Handler = (*Server)(nil)

// Server upgrades HTTP requests to websocket connections and feeds their
// messages to a RequestHandler.
type Server struct {
	handler  tabrelay.RequestHandler
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCheckOrigin sets the origin policy for upgrades. By default every
// origin is accepted.
func WithCheckOrigin(fn func(r *http.Request) bool) ServerOption {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// NewServer creates a Server that dispatches requests to handler.
func NewServer(handler tabrelay.RequestHandler, opts ...ServerOption) *Server {
	s := &Server{
		handler: handler,
		logger:  slog.New(slog.DiscardHandler),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP serves one client connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade", "remote", r.RemoteAddr, "err", err)
		return
	}

	c := newConn(ws)
	s.logger.Info("client connected", "conn", c.ID(), "remote", r.RemoteAddr)
	go c.writePump()

	s.readPump(r.Context(), c)
}

// readPump decodes and dispatches messages until the client goes away.
func (s *Server) readPump(ctx context.Context, c *Conn) {
	defer func() {
		s.handler.Disconnect(c)
		c.close()
		s.logger.Info("client disconnected", "conn", c.ID())
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("read", "conn", c.ID(), "err", err)
			}
			return
		}

		req, err := DecodeRequest(data)
		if err != nil {
			s.reject(ctx, c, &tabrelay.Response{}, err)
			continue
		}

		if err := s.handler.Handle(ctx, c, req); err != nil {
			s.reject(ctx, c, &tabrelay.Response{Kind: req.Kind, Query: req.Query}, err)
		}
	}
}

// reject answers a request that could not be served.
func (s *Server) reject(ctx context.Context, c *Conn, resp *tabrelay.Response, err error) {
	s.logger.Warn("rejected request",
		"conn", c.ID(),
		"kind", resp.Kind.String(),
		"query", resp.Query,
		"err", err,
	)
	resp.Error = tabrelay.ErrorMessage(err)
	if err := c.Send(ctx, resp); err != nil {
		s.logger.Warn("send rejection", "conn", c.ID(), "err", err)
	}
}
