// Package wire defines the session protocol envelope and message kinds.
package wire

import (
	"encoding/json"
	"errors"
)

type Kind string

// Client -> server message kinds.
const (
	KindPlayerReady  Kind = "PLAYER_READY"
	KindSubmitAnswer Kind = "SUBMIT_ANSWER"
	KindMatchPair    Kind = "MATCH_PAIR"
)

// Server -> client message kinds. KindGameStarting and KindChatMessage
// travel in both directions.
const (
	KindPlayerJoined      Kind = "PLAYER_JOINED"
	KindPlayerLeft        Kind = "PLAYER_LEFT"
	KindRoomUpdate        Kind = "ROOM_UPDATE"
	KindGameStarting      Kind = "GAME_STARTING"
	KindGameStarted       Kind = "GAME_STARTED"
	KindNextQuestion      Kind = "NEXT_QUESTION"
	KindFlashcardRevealed Kind = "FLASHCARD_REVEALED"
	KindAnswerResult      Kind = "ANSWER_RESULT"
	KindScoresUpdate      Kind = "SCORES_UPDATE"
	KindGameFinished      Kind = "GAME_FINISHED"
	KindChatMessage       Kind = "CHAT_MESSAGE"
	KindError             Kind = "ERROR"
)

var (
	ErrMalformedEnvelope = errors.New("malformed envelope")
	ErrNoPayload         = errors.New("envelope has no payload")
)

// Envelope is the outer wire message. Data carries the inner payload as an
// opaque JSON (or plain text) string and is decoded lazily by whoever owns
// the kind. Immutable once constructed.
type Envelope struct {
	Type Kind    `json:"type"`
	Data *string `json:"data"`
}

// NewEnvelope marshals payload into the Data string. A nil payload produces
// an envelope with no data.
func NewEnvelope(kind Kind, payload any) (Envelope, error) {
	env := Envelope{Type: kind}
	if payload == nil {
		return env, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	s := string(b)
	env.Data = &s
	return env, nil
}

// NewTextEnvelope wraps an already-encoded payload string as-is.
func NewTextEnvelope(kind Kind, data string) Envelope {
	return Envelope{Type: kind, Data: &data}
}

// Encode serializes the envelope for the transport.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses an outer envelope. Unknown top-level fields are ignored for
// forward compatibility. An empty type is treated as malformed.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, errors.Join(ErrMalformedEnvelope, err)
	}
	if env.Type == "" {
		return Envelope{}, ErrMalformedEnvelope
	}
	return env, nil
}

// DecodePayload unmarshals the inner payload into v.
func (e Envelope) DecodePayload(v any) error {
	if e.Data == nil {
		return ErrNoPayload
	}
	return json.Unmarshal([]byte(*e.Data), v)
}

// Text returns the raw payload string. Used for kinds whose payload is plain
// text rather than JSON (PLAYER_LEFT, GAME_STARTING, PLAYER_READY).
func (e Envelope) Text() (string, bool) {
	if e.Data == nil {
		return "", false
	}
	return *e.Data, true
}
