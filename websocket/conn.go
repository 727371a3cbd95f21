package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fwojciec/tabrelay"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Ensure Conn implements tabrelay.Waiter at compile time.
var _ tabrelay.Waiter = (*Conn)(nil)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
	sendBuffer     = 64
)

// Conn is a client connection. Responses are queued and written by a
// dedicated goroutine, so Send never blocks on the network.
type Conn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newConn(ws *websocket.Conn) *Conn {
	return &Conn{
		id:   uuid.NewString(),
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// ID returns the connection's unique id.
func (c *Conn) ID() string {
	return c.id
}

// Send queues resp for writing. A client that lets its queue fill up is
// disconnected.
func (c *Conn) Send(ctx context.Context, resp *tabrelay.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return tabrelay.Errorf(tabrelay.ECONFLICT, "connection %s closed", c.id)
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.close()
		return tabrelay.Errorf(tabrelay.ECONFLICT, "connection %s too slow", c.id)
	}
}

func (c *Conn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// writePump writes queued responses and keeps the connection alive with
// pings until the connection closes.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
