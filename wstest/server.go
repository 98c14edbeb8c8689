// Package wstest provides a scripted in-process session server for tests
// and the demo client's loopback mode. It speaks the real endpoint shapes
// and envelope protocol, records every envelope it receives, and lets the
// caller push arbitrary scripted envelopes to connected clients. It is test
// tooling, not the authoritative game server.
package wstest

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/studymate/gameclient/model"
	"github.com/studymate/gameclient/wire"
)

const (
	defaultWriteDeadline = 5 * time.Second
	defaultInboxSize     = 64
)

// Received is one envelope a client sent to the server.
type Received struct {
	SessionID string
	UserID    string
	Envelope  wire.Envelope
}

type Config struct {
	Logger *zerolog.Logger

	// Quiet disables the automatic PLAYER_JOINED / PLAYER_LEFT /
	// ROOM_UPDATE broadcasts on connect and close, leaving the wire fully
	// scripted.
	Quiet bool
}

type Server struct {
	logger   zerolog.Logger
	upgrader websocket.Upgrader
	store    *sessionStore
	quiet    bool

	mx    *sync.Mutex
	conns map[string]map[string]*clientConn

	inbox chan Received
}

type clientConn struct {
	conn *websocket.Conn
	wmx  *sync.Mutex
}

func NewServer(cfg Config) *Server {
	return &Server{
		logger: cfg.Logger.With().Str("component", "wstest-server").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		store: newSessionStore(),
		quiet: cfg.Quiet,
		mx:    &sync.Mutex{},
		conns: make(map[string]map[string]*clientConn),
		inbox: make(chan Received, defaultInboxSize),
	}
}

// Handler serves both endpoint shapes the client can dial.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/sessions/{sessionID}/ws", s.serve)
	r.Get("/groups/{groupID}/sessions/{sessionID}/ws", s.serve)
	return r
}

// Inbox yields every envelope received from any client, in arrival order.
func (s *Server) Inbox() <-chan Received { return s.inbox }

// Clients reports how many connections a session currently has. Tests use
// it to wait for registration before pushing scripted envelopes.
func (s *Server) Clients(sessionID string) int {
	s.mx.Lock()
	defer s.mx.Unlock()
	return len(s.conns[sessionID])
}

// Push broadcasts a scripted envelope to every client in the session.
func (s *Server) Push(sessionID string, env wire.Envelope) {
	b, err := env.Encode()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode scripted envelope")
		return
	}
	s.broadcast(sessionID, b)
}

// PushRaw broadcasts arbitrary bytes, malformed input included.
func (s *Server) PushRaw(sessionID string, raw []byte) {
	s.broadcast(sessionID, raw)
}

// CloseAll abruptly closes every connection in the session without a close
// frame, simulating transport failure.
func (s *Server) CloseAll(sessionID string) {
	s.mx.Lock()
	defer s.mx.Unlock()
	for _, cc := range s.conns[sessionID] {
		_ = cc.conn.Close()
	}
	delete(s.conns, sessionID)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	groupID := chi.URLParam(r, "groupID")
	userID := r.URL.Query().Get("userId")
	userName := r.URL.Query().Get("userName")
	if sessionID == "" || userID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	player, err := s.store.join(sessionID, groupID, userID, userName)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade failed")
		_ = s.store.leave(sessionID, userID)
		return
	}

	cc := &clientConn{conn: conn, wmx: &sync.Mutex{}}
	s.mx.Lock()
	if s.conns[sessionID] == nil {
		s.conns[sessionID] = make(map[string]*clientConn)
	}
	s.conns[sessionID][userID] = cc
	s.mx.Unlock()

	s.logger.Debug().
		Str("sessionID", sessionID).
		Str("userID", userID).
		Msg("client connected")

	if !s.quiet {
		s.announceJoin(sessionID, player)
	}

	go s.readLoop(sessionID, userID, cc)
}

func (s *Server) readLoop(sessionID, userID string, cc *clientConn) {
	for {
		_, raw, err := cc.conn.ReadMessage()
		if err != nil {
			s.dropClient(sessionID, userID, cc)
			return
		}
		env, err := wire.Decode(raw)
		if err != nil {
			s.logger.Debug().Err(err).Msg("ignoring malformed client frame")
			continue
		}
		select {
		case s.inbox <- Received{SessionID: sessionID, UserID: userID, Envelope: env}:
		default:
			s.logger.Warn().Msg("inbox full, dropping received envelope")
		}
	}
}

func (s *Server) dropClient(sessionID, userID string, cc *clientConn) {
	_ = cc.conn.Close()

	s.mx.Lock()
	if cur, ok := s.conns[sessionID][userID]; ok && cur == cc {
		delete(s.conns[sessionID], userID)
	}
	s.mx.Unlock()

	_ = s.store.leave(sessionID, userID)
	s.logger.Debug().
		Str("sessionID", sessionID).
		Str("userID", userID).
		Msg("client disconnected")

	if !s.quiet {
		s.announceLeave(sessionID, userID)
	}
}

func (s *Server) announceJoin(sessionID string, player model.Player) {
	env, err := wire.NewEnvelope(wire.KindPlayerJoined, player)
	if err == nil {
		s.Push(sessionID, env)
	}
	s.announceRoom(sessionID)
}

func (s *Server) announceLeave(sessionID, userID string) {
	s.Push(sessionID, wire.NewTextEnvelope(wire.KindPlayerLeft, userID))
	s.announceRoom(sessionID)
}

func (s *Server) announceRoom(sessionID string) {
	snap, err := s.store.snapshot(sessionID)
	if err != nil {
		return
	}
	env, err := wire.NewEnvelope(wire.KindRoomUpdate, snap)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode room update")
		return
	}
	s.Push(sessionID, env)
}

func (s *Server) broadcast(sessionID string, raw []byte) {
	s.mx.Lock()
	targets := make([]*clientConn, 0, len(s.conns[sessionID]))
	for _, cc := range s.conns[sessionID] {
		targets = append(targets, cc)
	}
	s.mx.Unlock()

	for _, cc := range targets {
		cc.wmx.Lock()
		wsErr := cc.conn.SetWriteDeadline(time.Now().Add(defaultWriteDeadline))
		if wsErr == nil {
			wsErr = cc.conn.WriteMessage(websocket.TextMessage, raw)
		}
		cc.wmx.Unlock()
		if wsErr != nil {
			s.logger.Debug().Err(wsErr).Msg("broadcast write failed")
		}
	}
}
