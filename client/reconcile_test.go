package client

import (
	"testing"

	"github.com/studymate/gameclient/model"
	"github.com/studymate/gameclient/wire"
)

func twoPlayerSession() model.Session {
	return model.Session{
		SessionID: "ABCD",
		Players: map[string]model.Player{
			"u1": {ID: "u1", Name: "Ana", IsHost: true, IsActive: true},
			"u2": {ID: "u2", Name: "Ben", IsActive: true},
		},
		Status: model.SessionStatusWaiting,
	}
}

func TestReconciler_RoomUpdateReplacesWholesale(t *testing.T) {
	c := newTestClient()
	c.handleMessage(mustFrame(t, wire.KindRoomUpdate, twoPlayerSession()))

	s, ok := c.topics.Session.Get()
	if !ok {
		t.Fatal("session topic not set after room update")
	}
	if s.SessionID != "ABCD" || len(s.Players) != 2 {
		t.Fatalf("unexpected session view: %+v", s)
	}

	// A later snapshot with one player fully replaces the view.
	c.handleMessage(mustFrame(t, wire.KindRoomUpdate, model.Session{
		SessionID: "ABCD",
		Players:   map[string]model.Player{"u1": {ID: "u1", Name: "Ana"}},
		Status:    model.SessionStatusWaiting,
	}))

	s, _ = c.topics.Session.Get()
	if len(s.Players) != 1 {
		t.Fatalf("want wholesale replacement with 1 player, got %d", len(s.Players))
	}
}

func TestReconciler_NextQuestionAdvancesIndex(t *testing.T) {
	c := newTestClient()
	c.handleMessage(mustFrame(t, wire.KindGameStarted, twoPlayerSession()))
	c.handleMessage(mustFrame(t, wire.KindNextQuestion, model.QuestionData{
		Question:       "2+2?",
		QuestionNumber: 3,
		TotalQuestions: 10,
	}))

	s, _ := c.topics.Session.Get()
	if s.CurrentQuestionIndex.Int() != 2 {
		t.Fatalf("want question index 2, got %d", s.CurrentQuestionIndex.Int())
	}
	if s.Status != model.SessionStatusInProgress {
		t.Fatalf("want status %q, got %q", model.SessionStatusInProgress, s.Status)
	}
}

func TestReconciler_ScoresUpdateReplacesScores(t *testing.T) {
	c := newTestClient()
	c.handleMessage(mustFrame(t, wire.KindRoomUpdate, twoPlayerSession()))
	before, _ := c.topics.Session.Get()

	c.handleMessage(mustFrame(t, wire.KindScoresUpdate, model.ScoresUpdate{
		Scores: map[string]model.FlexInt{"u1": 150, "u2": 90, "ghost": 5},
	}))

	s, _ := c.topics.Session.Get()
	if s.Players["u1"].Score.Int() != 150 || s.Players["u2"].Score.Int() != 90 {
		t.Fatalf("scores not replaced: %+v", s.Players)
	}
	if _, exists := s.Players["ghost"]; exists {
		t.Fatal("score for unknown player must not create a player")
	}

	// Copy-on-write: the previously observed snapshot is untouched.
	if before.Players["u1"].Score.Int() != 0 {
		t.Fatalf("prior snapshot was mutated: %+v", before.Players["u1"])
	}
}

func TestReconciler_GameFinishedSetsStatus(t *testing.T) {
	c := newTestClient()
	c.handleMessage(mustFrame(t, wire.KindGameStarted, twoPlayerSession()))
	c.handleMessage(mustFrame(t, wire.KindGameFinished, model.GameResult{SessionID: "ABCD"}))

	s, _ := c.topics.Session.Get()
	if s.Status != model.SessionStatusFinished {
		t.Fatalf("want status %q, got %q", model.SessionStatusFinished, s.Status)
	}
}

func TestReconciler_EventsBeforeFirstSnapshotAreDropped(t *testing.T) {
	c := newTestClient()

	c.handleMessage(mustFrame(t, wire.KindScoresUpdate, model.ScoresUpdate{
		Scores: map[string]model.FlexInt{"u1": 10},
	}))
	c.handleMessage(mustFrame(t, wire.KindNextQuestion, model.QuestionData{QuestionNumber: 1}))

	if _, ok := c.topics.Session.Get(); ok {
		t.Fatal("session view must stay unset until an authoritative snapshot arrives")
	}
}

func TestEndpointURL(t *testing.T) {
	cases := []struct {
		name   string
		base   string
		params Params
		want   string
	}{
		{
			name:   "standalone route",
			base:   "ws://host:8080",
			params: Params{SessionID: "ABCD", UserID: "u1", UserName: "Ana"},
			want:   "ws://host:8080/sessions/ABCD/ws?userId=u1&userName=Ana",
		},
		{
			name:   "group scoped route",
			base:   "ws://host:8080",
			params: Params{SessionID: "ABCD", UserID: "u1", UserName: "Ana", GroupID: "g42"},
			want:   "ws://host:8080/groups/g42/sessions/ABCD/ws?userId=u1&userName=Ana",
		},
		{
			name:   "user name is escaped",
			base:   "ws://host:8080",
			params: Params{SessionID: "ABCD", UserID: "u1", UserName: "Ana Lee"},
			want:   "ws://host:8080/sessions/ABCD/ws?userId=u1&userName=Ana+Lee",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := endpointURL(tc.base, tc.params)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}
