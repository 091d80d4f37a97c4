package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client wraps one websocket connection with a buffered send queue so
// the room goroutine never blocks on a slow reader. Implements room.Conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce   sync.Once
	closeCode   int
	closeReason string
}

func newClient(conn *websocket.Conn) *client {
	conn.SetReadLimit(readLimit)
	return &client{
		conn: conn,
		send: make(chan []byte, sendQueueDepth),
		done: make(chan struct{}),
	}
}

func (c *client) ctx() context.Context {
	return context.Background()
}

// Enqueue queues data for the write pump without blocking. On
// backpressure the message is dropped; state broadcasts are self-healing
// since the next patch batch supersedes the lost one.
func (c *client) Enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// CloseWith asks the write pump to emit a close frame with the given
// disconnect code and reason and tear the connection down. Safe to call
// from any goroutine, more than once.
func (c *client) CloseWith(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.done)
	})
}

// closedByServer reports whether the server initiated the close, so the
// read pump can tell a deliberate eviction from a lost peer.
func (c *client) closedByServer() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// writePump owns all writes after the handshake. It drains the send
// queue onto the wire and finishes with the close frame once CloseWith
// fires.
func (c *client) writePump() {
	defer c.conn.Close()
	for {
		select {
		case <-c.done:
			message := websocket.FormatCloseMessage(c.closeCode, c.closeReason)
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, message)
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
