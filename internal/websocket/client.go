package websocket

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/arthaku/internal/util"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// writeWait is time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// pongWait is time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// pingPeriod is the interval for sending pings (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is maximum message size allowed from peer
	maxMessageSize = 512
)

// Inbound frame actions
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// Frame is a control message sent by the client, e.g.
// {"action":"subscribe","period":"2024-03"}
type Frame struct {
	Action string `json:"action"`
	Period string `json:"period"`
}

// Client represents a single WebSocket connection. Until it subscribes to a
// period it receives every event.
type Client struct {
	id        string
	subject   string
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte
	periods   map[string]struct{}
	closed    bool
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewClient creates a new WebSocket client. subject is the authenticated
// user, or empty when the API runs without auth.
func NewClient(conn *websocket.Conn, subject string, hub *Hub) *Client {
	return &Client{
		id:      uuid.New().String(),
		subject: subject,
		conn:    conn,
		hub:     hub,
		send:    make(chan []byte, 256),
		periods: make(map[string]struct{}),
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() string {
	return c.id
}

// Subject returns the authenticated user behind the connection
func (c *Client) Subject() string {
	return c.subject
}

// Wants reports whether event should be delivered. Ledger-wide events always
// are; period events only match subscribed periods, if any.
func (c *Client) Wants(event Event) bool {
	if event.Period == "" {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.periods) == 0 {
		return true
	}
	_, ok := c.periods[event.Period]
	return ok
}

// Periods returns the subscribed periods in order
func (c *Client) Periods() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.periods))
	for p := range c.periods {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Apply updates the subscriptions from a frame
func (c *Client) Apply(frame Frame) error {
	if _, _, err := util.ParsePeriodKey(frame.Period); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch frame.Action {
	case ActionSubscribe:
		c.periods[frame.Period] = struct{}{}
	case ActionUnsubscribe:
		delete(c.periods, frame.Period)
	default:
		return fmt.Errorf("unknown action %q", frame.Action)
	}
	return nil
}

// handleFrame applies an inbound frame and acknowledges it with the
// resulting subscription list
func (c *Client) handleFrame(data []byte) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Debug().Err(err).Str("client_id", c.id).Msg("Ignoring malformed WebSocket frame")
		return
	}
	if err := c.Apply(frame); err != nil {
		log.Debug().Err(err).Str("client_id", c.id).Msg("Ignoring WebSocket frame")
		return
	}

	ack, err := SubscriptionUpdated(c.Periods()).ToJSON()
	if err != nil {
		return
	}
	if err := c.Send(ack); err != nil {
		log.Warn().Err(err).Str("client_id", c.id).Msg("Failed to acknowledge subscription")
	}
}

// Send queues a message to be sent to the client
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer is full, client is too slow
		return ErrClientClosed
	}
}

// Close closes the connection once; later calls return nil
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		closeErr = c.conn.Close()
	})
	return closeErr
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// ReadPump reads subscription frames until the connection drops.
// Run it in a goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Msg("WebSocket unexpected close")
			}
			break
		}
		c.handleFrame(data)
	}
}

// WritePump drains the send queue and keeps the connection alive with
// pings. Run it in a goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed, hub closed this client
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
