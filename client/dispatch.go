package client

import (
	"strconv"
	"strings"

	"github.com/studymate/gameclient/model"
	"github.com/studymate/gameclient/wire"
)

// handleMessage decodes one inbound frame and routes it. Failures never
// propagate: a malformed envelope drops the whole message, a failed inner
// decode skips only the owning topic. Either way the result is "no update
// plus a log line".
func (c *Client) handleMessage(raw []byte) {
	env, err := wire.Decode(raw)
	if err != nil {
		c.logger.Error().Err(err).Msg("dropping malformed envelope")
		return
	}

	c.topics.Envelope.Publish(env)

	switch env.Type {
	case wire.KindPlayerJoined:
		var p model.Player
		if err := env.DecodePayload(&p); err != nil {
			c.decodeFailed(env.Type, err)
			return
		}
		c.topics.PlayerJoined.Publish(p)

	case wire.KindPlayerLeft:
		// Payload is the raw player id, not JSON.
		id, ok := env.Text()
		if !ok {
			c.decodeFailed(env.Type, wire.ErrNoPayload)
			return
		}
		c.topics.PlayerLeft.Publish(id)

	case wire.KindRoomUpdate:
		var s model.Session
		if err := env.DecodePayload(&s); err != nil {
			c.decodeFailed(env.Type, err)
			return
		}
		c.topics.RoomUpdate.Publish(s)
		c.rec.replace(s)

	case wire.KindGameStarting:
		// Countdown seconds; nil when the payload does not parse.
		c.topics.GameStarting.Publish(parseCountdown(env))

	case wire.KindGameStarted:
		var s model.Session
		if err := env.DecodePayload(&s); err != nil {
			c.decodeFailed(env.Type, err)
			return
		}
		c.topics.GameStarted.Publish(s)
		c.rec.replace(s)

	case wire.KindNextQuestion:
		var q model.QuestionData
		if err := env.DecodePayload(&q); err != nil {
			c.decodeFailed(env.Type, err)
			return
		}
		c.topics.NextQuestion.Publish(q)
		c.rec.nextQuestion(q)

	case wire.KindFlashcardRevealed:
		var f model.FlashcardData
		if err := env.DecodePayload(&f); err != nil {
			c.decodeFailed(env.Type, err)
			return
		}
		c.topics.NextFlashcard.Publish(f)

	case wire.KindAnswerResult:
		var a model.AnswerResult
		if err := env.DecodePayload(&a); err != nil {
			c.decodeFailed(env.Type, err)
			return
		}
		c.topics.AnswerResult.Publish(a)

	case wire.KindScoresUpdate:
		var su model.ScoresUpdate
		if err := env.DecodePayload(&su); err != nil {
			c.decodeFailed(env.Type, err)
			return
		}
		c.topics.ScoresUpdate.Publish(su)
		c.rec.scores(su)

	case wire.KindGameFinished:
		var g model.GameResult
		if err := env.DecodePayload(&g); err != nil {
			c.decodeFailed(env.Type, err)
			return
		}
		c.topics.GameFinished.Publish(g)
		c.rec.finished()

	case wire.KindChatMessage:
		var m model.ChatMessageData
		if err := env.DecodePayload(&m); err != nil {
			c.decodeFailed(env.Type, err)
			return
		}
		c.topics.ChatMessage.Publish(m)

	case wire.KindError:
		var e model.ErrorData
		if err := env.DecodePayload(&e); err != nil {
			c.decodeFailed(env.Type, err)
			return
		}
		c.topics.ErrorMessage.Publish(e)

	default:
		c.logger.Debug().Str("kind", string(env.Type)).Msg("unhandled message kind")
	}
}

func (c *Client) decodeFailed(kind wire.Kind, err error) {
	c.logger.Error().Err(err).Str("kind", string(kind)).Msg("payload decode failed")
}

func parseCountdown(env wire.Envelope) *int {
	s, ok := env.Text()
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.Trim(strings.TrimSpace(s), `"`))
	if err != nil {
		return nil
	}
	return &n
}
