package client

import (
	"github.com/studymate/gameclient/model"
	"github.com/studymate/gameclient/topic"
)

// reconciler folds authoritative server events into the current-session
// view. It runs only on the reader goroutine, after the specific topic has
// been updated, so the session view is never ahead of the topic it derives
// from. Every fold builds a fresh Session value; published snapshots are
// never mutated in place.
type reconciler struct {
	session *topic.Topic[model.Session]
}

// replace installs a wholesale snapshot (room-update / game-started).
func (r *reconciler) replace(s model.Session) {
	if s.Players == nil {
		s.Players = map[string]model.Player{}
	}
	r.session.Publish(s)
}

// nextQuestion advances the question index. Question numbers on the wire
// are 1-based, the index is 0-based.
func (r *reconciler) nextQuestion(q model.QuestionData) {
	s, ok := r.session.Get()
	if !ok {
		return
	}
	next := cloneSession(s)
	if q.QuestionNumber > 0 {
		next.CurrentQuestionIndex = q.QuestionNumber - 1
	}
	next.Status = model.SessionStatusInProgress
	r.session.Publish(next)
}

// scores replaces per-player scores from a scores-update push. Unknown
// player ids are ignored; the server's next room-update is authoritative.
func (r *reconciler) scores(su model.ScoresUpdate) {
	s, ok := r.session.Get()
	if !ok {
		return
	}
	next := cloneSession(s)
	for id, score := range su.Scores {
		p, exists := next.Players[id]
		if !exists {
			continue
		}
		p.Score = score
		next.Players[id] = p
	}
	r.session.Publish(next)
}

func (r *reconciler) finished() {
	s, ok := r.session.Get()
	if !ok {
		return
	}
	next := cloneSession(s)
	next.Status = model.SessionStatusFinished
	r.session.Publish(next)
}

func cloneSession(s model.Session) model.Session {
	players := make(map[string]model.Player, len(s.Players))
	for id, p := range s.Players {
		players[id] = p
	}
	s.Players = players
	return s
}
