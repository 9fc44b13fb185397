package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// FrameHandler receives one decoded inbound frame from a client.
type FrameHandler func(s Session, event string, data json.RawMessage)

type ClientOptions struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PongTimeout  time.Duration
	PingInterval time.Duration
	MaxFrameSize int64
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 32
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.PongTimeout <= 0 {
		o.PongTimeout = 60 * time.Second
	}
	if o.PingInterval <= 0 || o.PingInterval >= o.PongTimeout {
		o.PingInterval = o.PongTimeout * 9 / 10
	}
	if o.MaxFrameSize <= 0 {
		o.MaxFrameSize = 16 * 1024
	}
	return o
}

// Client is a websocket-backed Session. Outbound events go through a
// buffered mailbox drained by the write pump, so broadcasters never
// block on the socket.
type Client struct {
	id     string
	userID int64
	conn   *websocket.Conn
	send   chan Event
	done   chan struct{}
	opts   ClientOptions
	handle FrameHandler

	closeOnce sync.Once
	onClose   func(*Client)

	log *zap.Logger
}

func NewClient(conn *websocket.Conn, userID int64, opts ClientOptions, handle FrameHandler, onClose func(*Client), log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	opts = opts.withDefaults()

	return &Client{
		id:      uuid.NewString(),
		userID:  userID,
		conn:    conn,
		send:    make(chan Event, opts.SendBuffer),
		done:    make(chan struct{}),
		opts:    opts,
		handle:  handle,
		onClose: onClose,
		log:     log,
	}
}

func (c *Client) ID() string    { return c.id }
func (c *Client) UserID() int64 { return c.userID }

// Enqueue offers the event to the mailbox without blocking. A closed
// client or a full mailbox reports failure; the mailbox itself is never
// closed, so the send cannot panic against a concurrent Close.
func (c *Client) Enqueue(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

// Close is the single teardown path: it detaches the client from the
// registry and all rooms via onClose, signals the write pump and shuts
// the socket. Invoking it twice is safe.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if c.onClose != nil {
			c.onClose(c)
		}
		close(c.done)
		_ = c.conn.Close()
	})
}

// Run starts the write pump and blocks reading frames until the
// connection drops.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(c.opts.MaxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket read failed", zap.String("session_id", c.id), zap.Error(err))
			}
			return
		}

		var frame struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &frame); err != nil || frame.Event == "" {
			c.Enqueue(AppError("malformed frame"))
			continue
		}

		if c.handle != nil {
			c.handle(c, frame.Event, frame.Data)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.log.Debug("websocket write failed", zap.String("session_id", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
