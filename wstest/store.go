package wstest

import (
	"errors"
	"sync"

	"github.com/studymate/gameclient/model"
)

const defaultMaxPlayers = 8

var (
	ErrSessionFull     = errors.New("session is full")
	ErrSessionNotFound = errors.New("session is not found")
)

// sessionStore is the in-memory session registry backing the scripted
// server. The first player to join a session becomes its host.
type sessionStore struct {
	mx         *sync.Mutex
	db         map[string]*sessionRecord
	maxPlayers int
}

type sessionRecord struct {
	id      string
	groupID string
	players map[string]model.Player
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		mx:         &sync.Mutex{},
		db:         make(map[string]*sessionRecord),
		maxPlayers: defaultMaxPlayers,
	}
}

func (ss *sessionStore) join(sessionID, groupID, userID, userName string) (model.Player, error) {
	ss.mx.Lock()
	defer ss.mx.Unlock()

	rec, ok := ss.db[sessionID]
	if !ok {
		rec = &sessionRecord{
			id:      sessionID,
			groupID: groupID,
			players: make(map[string]model.Player),
		}
		ss.db[sessionID] = rec
	}

	if _, rejoining := rec.players[userID]; !rejoining && len(rec.players) >= ss.maxPlayers {
		return model.Player{}, ErrSessionFull
	}

	p := model.Player{
		ID:       userID,
		Name:     userName,
		IsHost:   len(rec.players) == 0,
		IsActive: true,
	}
	rec.players[userID] = p
	return p, nil
}

func (ss *sessionStore) leave(sessionID, userID string) error {
	ss.mx.Lock()
	defer ss.mx.Unlock()

	rec, ok := ss.db[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	delete(rec.players, userID)
	return nil
}

func (ss *sessionStore) snapshot(sessionID string) (model.Session, error) {
	ss.mx.Lock()
	defer ss.mx.Unlock()

	rec, ok := ss.db[sessionID]
	if !ok {
		return model.Session{}, ErrSessionNotFound
	}
	players := make(map[string]model.Player, len(rec.players))
	for id, p := range rec.players {
		players[id] = p
	}
	return model.Session{
		SessionID: rec.id,
		Players:   players,
		Status:    model.SessionStatusWaiting,
	}, nil
}
