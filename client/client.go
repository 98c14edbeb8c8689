// Package client implements the real-time game session client: one physical
// WebSocket connection per session, a typed envelope protocol, and a set of
// per-topic observable slots that independent consumers read without
// coordinating with each other.
package client

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	defaultHandshakeTimeout   = 3 * time.Second
	defaultWriteDeadline      = 5 * time.Second
	defaultCloseWriteDeadline = 2 * time.Second
	defaultMaxMessageSize     = 65536

	closeReason = "Client disconnecting"
)

var (
	ErrDial          = errors.New("unable to open session connection")
	ErrBadServerURL  = errors.New("invalid server url")
	ErrMissingParams = errors.New("session id and user id are required")
)

// Status is the coarse connection state. Exactly one value is live at a
// time, owned by the client and mutated only on transport callbacks or
// explicit Connect/Disconnect calls.
type Status string

const (
	StatusDisconnected  Status = "disconnected"
	StatusConnecting    Status = "connecting"
	StatusConnected     Status = "connected"
	StatusDisconnecting Status = "disconnecting"
	StatusError         Status = "error"
)

// ConnState is the value published on the connection topic. Reason is set
// only for StatusError.
type ConnState struct {
	Status Status
	Reason string
}

// Params identifies the session to join. A non-empty GroupID selects the
// group-scoped route; otherwise the standalone route is used.
type Params struct {
	SessionID string
	UserID    string
	UserName  string
	GroupID   string
}

type Config struct {
	Logger *zerolog.Logger

	// ServerURL is the base endpoint, e.g. "ws://host:8080".
	ServerURL string
}

// Client owns the physical connection and the topic surface for one game
// session. Construct one per active game and dispose it with the screen
// that uses it; there is no shared static state.
type Client struct {
	logger    zerolog.Logger
	dialer    *websocket.Dialer
	serverURL string

	mu      sync.Mutex
	conn    *websocket.Conn
	closing bool

	topics *Topics
	rec    *reconciler
}

func New(cfg Config) *Client {
	topics := newTopics()
	return &Client{
		logger: cfg.Logger.With().Str("component", "session-client").Logger(),
		dialer: &websocket.Dialer{
			HandshakeTimeout: defaultHandshakeTimeout,
		},
		serverURL: cfg.ServerURL,
		topics:    topics,
		rec:       &reconciler{session: topics.Session},
	}
}

// Topics exposes the observable slots. Many readers, single writer (the
// client's reader goroutine).
func (c *Client) Topics() *Topics { return c.topics }

// Connect builds the session endpoint, transitions to connecting and opens
// the transport. There is no automatic retry: a failed or severed connection
// surfaces on the connection topic and recovery is a fresh Connect.
//
// Calling Connect again without an intervening Disconnect replaces the
// handle to the previous socket without closing it; callers must not do
// that.
func (c *Client) Connect(ctx context.Context, p Params) error {
	if p.SessionID == "" || p.UserID == "" {
		return ErrMissingParams
	}
	target, err := endpointURL(c.serverURL, p)
	if err != nil {
		return errors.Join(ErrBadServerURL, err)
	}

	c.topics.Connection.Publish(ConnState{Status: StatusConnecting})
	c.logger.Debug().Str("url", target).Msg("connecting")

	conn, _, err := c.dialer.DialContext(ctx, target, nil)
	if err != nil {
		c.topics.Connection.Publish(ConnState{Status: StatusError, Reason: err.Error()})
		return errors.Join(ErrDial, err)
	}
	conn.SetReadLimit(defaultMaxMessageSize)

	c.mu.Lock()
	c.conn = conn
	c.closing = false
	c.mu.Unlock()

	c.topics.Connection.Publish(ConnState{Status: StatusConnected})
	c.logger.Info().
		Str("sessionID", p.SessionID).
		Str("userID", p.UserID).
		Msg("session connected")

	go c.readLoop(conn)
	return nil
}

// Disconnect requests a graceful close: close frame 1000, then the socket.
// Safe to call from any state, any number of times.
func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return
	}
	c.closing = true
	c.conn = nil
	c.mu.Unlock()

	c.topics.Connection.Publish(ConnState{Status: StatusDisconnecting})

	wsErr := conn.SetWriteDeadline(time.Now().Add(defaultCloseWriteDeadline))
	if wsErr == nil {
		wsErr = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, closeReason))
	}
	if wsErr != nil {
		c.logger.Debug().Err(wsErr).Msg("close frame not sent")
	}
	if err := conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("socket close failed")
	}

	c.topics.Connection.Publish(ConnState{Status: StatusDisconnected})
	c.logger.Info().Msg("session disconnected")
}

// Cleanup is Disconnect for teardown paths.
func (c *Client) Cleanup() { c.Disconnect() }

// State returns the current connection state without blocking.
func (c *Client) State() ConnState {
	st, ok := c.topics.Connection.Get()
	if !ok {
		return ConnState{Status: StatusDisconnected}
	}
	return st
}

// readLoop owns all inbound handling for one connection: decode and route
// run sequentially here, so two inbound messages are never processed
// concurrently and per-topic ordering matches arrival order.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.readClosed(conn, err)
			return
		}
		c.handleMessage(raw)
	}
}

func (c *Client) readClosed(conn *websocket.Conn, err error) {
	c.mu.Lock()
	if c.closing || c.conn != conn {
		// Disconnect already owns the transition, or the handle was
		// replaced by a newer Connect.
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.mu.Unlock()

	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.logger.Warn().Err(err).Msg("connection closed by server")
		c.topics.Connection.Publish(ConnState{Status: StatusDisconnected})
		return
	}
	c.logger.Error().Err(err).Msg("connection failed")
	c.topics.Connection.Publish(ConnState{Status: StatusError, Reason: err.Error()})
}

func endpointURL(base string, p Params) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if p.GroupID != "" {
		u = u.JoinPath("groups", p.GroupID, "sessions", p.SessionID, "ws")
	} else {
		u = u.JoinPath("sessions", p.SessionID, "ws")
	}
	q := u.Query()
	q.Set("userId", p.UserID)
	q.Set("userName", p.UserName)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
