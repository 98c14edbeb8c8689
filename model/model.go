// Package model holds the session payload types shared between the client,
// the dispatch layer, and consumers of the topic surface.
package model

// Session status values as pushed by the server.
const (
	SessionStatusWaiting    = "WAITING"
	SessionStatusCountdown  = "COUNTDOWN"
	SessionStatusInProgress = "IN_PROGRESS"
	SessionStatusFinished   = "FINISHED"
)

// Player is one participant in a session. Identity is ID; every other field
// is replaced, not merged, on each server push.
type Player struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Score    FlexInt `json:"score"`
	IsHost   bool    `json:"isHost"`
	IsReady  bool    `json:"isReady"`
	IsActive bool    `json:"isActive"`
}

// Session is the reconciled room/game snapshot. Replaced wholesale on each
// authoritative room-update or game-started event.
type Session struct {
	SessionID            string            `json:"sessionId"`
	Players              map[string]Player `json:"players"`
	CurrentQuestionIndex FlexInt           `json:"currentQuestionIndex"`
	Status               string            `json:"status"`
}

// QuestionData is ephemeral: superseded on every next-question event,
// never queued.
type QuestionData struct {
	Question       string    `json:"question"`
	Options        []string  `json:"options"`
	QuestionNumber FlexInt   `json:"questionNumber"`
	TotalQuestions FlexInt   `json:"totalQuestions"`
	TimeLimit      FlexInt64 `json:"timeLimit"`
}

type FlashcardData struct {
	FlashcardID string    `json:"flashcardId"`
	Front       string    `json:"front"`
	Back        string    `json:"back"`
	CardNumber  FlexInt   `json:"cardNumber"`
	TotalCards  FlexInt   `json:"totalCards"`
	TimeLimit   FlexInt64 `json:"timeLimit"`
}

type AnswerResult struct {
	PlayerID      string  `json:"playerId"`
	QuestionID    string  `json:"questionId"`
	Correct       bool    `json:"correct"`
	CorrectAnswer FlexInt `json:"correctAnswer"`
	PointsAwarded FlexInt `json:"pointsAwarded"`
	TotalScore    FlexInt `json:"totalScore"`
}

type ScoresUpdate struct {
	Scores map[string]FlexInt `json:"scores"`
}

type Standing struct {
	PlayerID string  `json:"playerId"`
	Name     string  `json:"name"`
	Score    FlexInt `json:"score"`
	Rank     FlexInt `json:"rank"`
}

type GameResult struct {
	SessionID string     `json:"sessionId"`
	Standings []Standing `json:"standings"`
}

// ChatMessageData is append-only from the UI's perspective; the core keeps
// only the latest value, history is a UI concern.
type ChatMessageData struct {
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Message    string    `json:"message"`
	Timestamp  FlexInt64 `json:"timestamp"`
	TeamOnly   bool      `json:"teamOnly"`
}

// GameAnswer is the outbound answer submission payload. Flashcard answers
// reuse it with Answer encoded as 1/0.
type GameAnswer struct {
	PlayerID    string    `json:"playerId"`
	QuestionID  string    `json:"questionId"`
	Answer      FlexInt   `json:"answer"`
	TimeElapsed FlexInt64 `json:"timeElapsed"`
}

type MatchPairSubmission struct {
	PlayerID     string    `json:"playerId"`
	TermID       string    `json:"termId"`
	DefinitionID string    `json:"definitionId"`
	TimeElapsed  FlexInt64 `json:"timeElapsed"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
