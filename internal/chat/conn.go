package chat

import (
	"context"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

// Conn is one live client connection, bound to a single room and display
// name for its whole lifetime.
type Conn struct {
	ws     *websocket.Conn
	out    chan []byte
	roomID string

	displayName string
	userID      *int64 // nil for guests
	guest       bool

	slowOnce sync.Once
}

// Accept upgrades HTTP to websocket (allow all origins)
func Accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
}

// NewConn wraps a WS connection for a room with a resolved identity
func NewConn(ws *websocket.Conn, roomID string, id Identity) *Conn {
	return &Conn{
		ws:          ws,
		out:         make(chan []byte, 256),
		roomID:      roomID,
		displayName: id.DisplayName,
		userID:      id.UserID,
		guest:       id.Guest,
	}
}

func (c *Conn) DisplayName() string { return c.displayName }
func (c *Conn) RoomID() string      { return c.roomID }
func (c *Conn) UserID() *int64      { return c.userID }
func (c *Conn) IsGuest() bool       { return c.guest }

// Send queues a frame without blocking. A full buffer means the client has
// stopped keeping up; close it so its own read loop deregisters it.
func (c *Conn) Send(payload []byte) bool {
	select {
	case c.out <- payload:
		return true
	default:
		c.closeSlow()
		return false
	}
}

func (c *Conn) closeSlow() {
	c.slowOnce.Do(func() {
		_ = c.ws.Close(websocket.StatusTryAgainLater, "send buffer full")
	})
}

// Read blocks until it receives a text/binary message.
// Returns false if the connection is closed.
func (c *Conn) Read(ctx context.Context) ([]byte, bool) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return nil, false
		}
		if typ == websocket.MessageText || typ == websocket.MessageBinary {
			return data, true
		}
	}
}

// WriteLoop sends outbound messages + periodic pings.
// Exits when ctx is cancelled. Write errors are left for the read loop to
// detect; fanout never fails because of one dead socket.
func (c *Conn) WriteLoop(ctx context.Context) {
	t := time.NewTicker(20 * time.Second)
	defer t.Stop()

	for {
		select {
		case b := <-c.out:
			_ = c.ws.Write(ctx, websocket.MessageText, b)
		case <-t.C:
			_ = c.ws.Ping(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Close closes the WS connection normally
func (c *Conn) Close() error { return c.ws.Close(websocket.StatusNormalClosure, "bye") }
