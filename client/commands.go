package client

import (
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/studymate/gameclient/model"
	"github.com/studymate/gameclient/wire"
)

// Outbound command builders. Each builds an envelope and hands it to the
// send path. While the connection is not open the send is a logged no-op:
// commands issued while disconnected are lost, never buffered, and no
// failure reaches the caller.

// ToggleReady reports the player's ready flag. The boolean travels as text.
func (c *Client) ToggleReady(isReady bool) {
	c.send(wire.NewTextEnvelope(wire.KindPlayerReady, strconv.FormatBool(isReady)))
}

// SignalStart asks the server to start the game. Host-only by convention;
// there is deliberately no local host check, authorization lives on the
// server.
func (c *Client) SignalStart() {
	c.send(wire.Envelope{Type: wire.KindGameStarting})
}

// SubmitAnswer submits the chosen option index for a question.
func (c *Client) SubmitAnswer(playerID, questionID string, answerIndex int, elapsedMillis int64) {
	c.sendPayload(wire.KindSubmitAnswer, model.GameAnswer{
		PlayerID:    playerID,
		QuestionID:  questionID,
		Answer:      model.FlexInt(answerIndex),
		TimeElapsed: model.FlexInt64(elapsedMillis),
	})
}

// SubmitFlashcardAnswer reuses the answer payload with the outcome encoded
// as 1/0.
func (c *Client) SubmitFlashcardAnswer(playerID, flashcardID string, isCorrect bool, elapsedMillis int64) {
	answer := 0
	if isCorrect {
		answer = 1
	}
	c.sendPayload(wire.KindSubmitAnswer, model.GameAnswer{
		PlayerID:    playerID,
		QuestionID:  flashcardID,
		Answer:      model.FlexInt(answer),
		TimeElapsed: model.FlexInt64(elapsedMillis),
	})
}

// SubmitMatchPair submits a term/definition pairing attempt.
func (c *Client) SubmitMatchPair(playerID, termID, definitionID string, elapsedMillis int64) {
	c.sendPayload(wire.KindMatchPair, model.MatchPairSubmission{
		PlayerID:     playerID,
		TermID:       termID,
		DefinitionID: definitionID,
		TimeElapsed:  model.FlexInt64(elapsedMillis),
	})
}

// SendChat sends a chat line with a client-stamped send time.
func (c *Client) SendChat(senderID, senderName, message string, teamOnly bool) {
	c.sendPayload(wire.KindChatMessage, model.ChatMessageData{
		SenderID:   senderID,
		SenderName: senderName,
		Message:    message,
		Timestamp:  model.FlexInt64(time.Now().UnixMilli()),
		TeamOnly:   teamOnly,
	})
}

func (c *Client) sendPayload(kind wire.Kind, payload any) {
	env, err := wire.NewEnvelope(kind, payload)
	if err != nil {
		c.logger.Error().Err(err).Str("kind", string(kind)).Msg("failed to encode command")
		return
	}
	c.send(env)
}

// send serializes and writes one envelope. Writes from any goroutine are
// serialized by the client mutex.
func (c *Client) send(env wire.Envelope) {
	b, err := env.Encode()
	if err != nil {
		c.logger.Error().Err(err).Str("kind", string(env.Type)).Msg("failed to encode envelope")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.closing {
		c.logger.Debug().Str("kind", string(env.Type)).Msg("send dropped, not connected")
		return
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(defaultWriteDeadline)); err != nil {
		c.logger.Error().Err(err).Msg("failed to set write deadline")
		return
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		c.logger.Error().Err(err).Str("kind", string(env.Type)).Msg("send failed")
	}
}
