// Package game is the websocket transport for room channels: it upgrades
// connections, pumps frames, and turns inbound events into calls on the
// owning room's roster. All roster state stays behind core.RoomService.
package game

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dkeye/Arena/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// wsConn implements core.SignalConnection over a gorilla websocket.
// Writes go through the buffered send channel so the roster fan-out never
// blocks on a slow socket.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWSConn(conn *websocket.Conn, buffer int) *wsConn {
	return &wsConn{
		conn: conn,
		send: make(chan core.Frame, buffer),
	}
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}
