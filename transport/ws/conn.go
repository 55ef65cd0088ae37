package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chathub/contract"
	"chathub/domain/event"
)

const (
	maxPayloadBytes = 1 << 20
	pingInterval    = 15 * time.Second
	pongWait        = 45 * time.Second
	writeWait       = 10 * time.Second
)

var _ contract.EventSink = (*Conn)(nil)

// Conn adapts one websocket to the sink contract. Outbound frames go through
// a buffered channel drained by the write pump; when the buffer is full the
// frame is dropped rather than blocking the delivering goroutine. A client
// that cannot keep up loses events, not the whole server.
type Conn struct {
	log  *slog.Logger
	id   string
	sock *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newConn(log *slog.Logger, id string, sock *websocket.Conn, bufferSize int) *Conn {
	return &Conn{
		log:  log,
		id:   id,
		sock: sock,
		send: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
}

func (c *Conn) ID() string { return c.id }

// Consume encodes the event and hands it to the write pump without blocking.
func (c *Conn) Consume(_ context.Context, evt event.DomainEvent) error {
	data, err := encodeFrame(evt)
	if err != nil {
		return err
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return nil
	default:
		c.log.Warn("Send buffer full, dropping event", "conn_id", c.id, "event", evt.EventName())
		return nil
	}
}

func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.sock.Close()
	})
}

// readPump delivers inbound frames to the handler until the socket dies.
// Runs on the connection's own goroutine; returning tears the session down.
func (c *Conn) readPump(ctx context.Context, handle func(ctx context.Context, f frame)) {
	c.sock.SetReadLimit(maxPayloadBytes)
	_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := c.sock.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil || f.Event == "" {
			c.log.Debug("Dropping malformed frame", "conn_id", c.id)
			continue
		}
		handle(ctx, f)
	}
}

// writePump owns all writes to the socket: queued frames and keepalive pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
