package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // 1 MB
	sendBuffer     = 256
)

// Client is one socket. Its identity is used for room membership and stays
// empty until ?clientId or the first identified join-room names it.
type Client struct {
	ID          string
	Conn        *websocket.Conn
	Send        chan []byte
	ConnectedAt time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	lastSeen  atomic.Int64
	closeOnce sync.Once

	identityMu sync.RWMutex
	clientID   string
}

func newClient(ctx context.Context, id, clientID string, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(ctx)
	c := &Client{
		ID:          id,
		clientID:    clientID,
		Conn:        conn,
		Send:        make(chan []byte, sendBuffer),
		ConnectedAt: time.Now(),
		ctx:         ctx,
		cancel:      cancel,
	}
	c.touch()
	return c
}

func (c *Client) ClientID() string {
	c.identityMu.RLock()
	defer c.identityMu.RUnlock()
	return c.clientID
}

// adoptIdentity names an anonymous socket. An existing identity is kept.
func (c *Client) adoptIdentity(clientID string) {
	if clientID == "" {
		return
	}
	c.identityMu.Lock()
	defer c.identityMu.Unlock()
	if c.clientID == "" {
		c.clientID = clientID
	}
}

func (c *Client) touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

func (c *Client) GetLastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

func (c *Client) IsClientActive() bool {
	return c.ctx.Err() == nil
}

// Close stops both pumps. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		if c.Conn != nil {
			_ = c.Conn.Close()
		}
	})
}

// enqueue never blocks; a full buffer means a slow consumer.
func (c *Client) enqueue(data []byte) bool {
	if !c.IsClientActive() {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// writePump takes data from c.Send and writes it to the socket, plus pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			if _, err := w.Write(msg); err != nil {
				_ = w.Close()
				return
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump hands every inbound frame to handle, in arrival order, until the
// socket fails or the client is closed.
func (c *Client) readPump(handle func(c *Client, raw []byte)) {
	defer c.Close()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.touch()
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}
		c.touch()
		handle(c, raw)
	}
}
