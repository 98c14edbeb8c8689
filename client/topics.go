package client

import (
	"github.com/studymate/gameclient/model"
	"github.com/studymate/gameclient/topic"
	"github.com/studymate/gameclient/wire"
)

// Topics is the subscription surface: one last-value slot per message
// category plus the connection state slot, the generic envelope slot, and
// the reconciled session view. Slots are independent; there is no
// cross-slot transaction.
type Topics struct {
	// Connection carries every lifecycle transition.
	Connection *topic.Topic[ConnState]

	// Envelope holds the last received raw envelope regardless of kind.
	Envelope *topic.Topic[wire.Envelope]

	PlayerJoined  *topic.Topic[model.Player]
	PlayerLeft    *topic.Topic[string]
	RoomUpdate    *topic.Topic[model.Session]
	GameStarting  *topic.Topic[*int]
	GameStarted   *topic.Topic[model.Session]
	NextQuestion  *topic.Topic[model.QuestionData]
	NextFlashcard *topic.Topic[model.FlashcardData]
	AnswerResult  *topic.Topic[model.AnswerResult]
	ScoresUpdate  *topic.Topic[model.ScoresUpdate]
	GameFinished  *topic.Topic[model.GameResult]
	ChatMessage   *topic.Topic[model.ChatMessageData]
	ErrorMessage  *topic.Topic[model.ErrorData]

	// Session is the reconciled current-session view folded from the
	// authoritative room/question/score/result events.
	Session *topic.Topic[model.Session]
}

func newTopics() *Topics {
	return &Topics{
		Connection:    topic.New[ConnState](),
		Envelope:      topic.New[wire.Envelope](),
		PlayerJoined:  topic.New[model.Player](),
		PlayerLeft:    topic.New[string](),
		RoomUpdate:    topic.New[model.Session](),
		GameStarting:  topic.New[*int](),
		GameStarted:   topic.New[model.Session](),
		NextQuestion:  topic.New[model.QuestionData](),
		NextFlashcard: topic.New[model.FlashcardData](),
		AnswerResult:  topic.New[model.AnswerResult](),
		ScoresUpdate:  topic.New[model.ScoresUpdate](),
		GameFinished:  topic.New[model.GameResult](),
		ChatMessage:   topic.New[model.ChatMessageData](),
		ErrorMessage:  topic.New[model.ErrorData](),
		Session:       topic.New[model.Session](),
	}
}
