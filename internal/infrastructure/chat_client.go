package infrastructure

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 16
)

var ErrClientClosed = errors.New("chat client closed")

// ChatClient wraps one WebSocket connection. Reads happen on the caller's
// goroutine; all writes go through Send and are performed by WritePump.
type ChatClient struct {
	Conn *websocket.Conn
	Send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewChatClient(conn *websocket.Conn, maxFrameBytes int64) *ChatClient {
	conn.SetReadLimit(maxFrameBytes)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &ChatClient{
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
	}
}

// WritePump drains Send and keeps the connection alive with pings. It closes
// the socket when Send is closed or a write fails.
func (c *ChatClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON queues v for writing.
func (c *ChatClient) SendJSON(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.Send <- b:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// ReadFrame blocks until the next text frame arrives.
func (c *ChatClient) ReadFrame() ([]byte, error) {
	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if messageType == websocket.TextMessage {
			return message, nil
		}
	}
}

// ExtendReadDeadline restarts the idle timer after a long turn.
func (c *ChatClient) ExtendReadDeadline() {
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
}

// Close closes Send so no more frames are queued. WritePump then writes what is
// left, sends the close frame and shuts the socket. Safe to call twice.
func (c *ChatClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// IsDisconnect reports whether err means the peer or the transport went away,
// as opposed to a protocol fault worth reporting to the client.
func IsDisconnect(err error) bool {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
