package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/comigor/schoolassist-go/internal/conversation"
	"github.com/comigor/schoolassist-go/internal/llm"
	"github.com/comigor/schoolassist-go/internal/session"
)

// messageJSON is a transcript message plus its rendered HTML.
type messageJSON struct {
	conversation.Message
	HTML string `json:"html,omitempty"`
}

type exchangeJSON struct {
	User  messageJSON `json:"user"`
	Reply messageJSON `json:"reply"`
	HTML  string      `json:"html"`
	Error string      `json:"error,omitempty"`
}

type transcriptJSON struct {
	Session  string        `json:"session"`
	Messages []messageJSON `json:"messages"`
}

func (s *Server) toJSON(msgs []conversation.Message) []messageJSON {
	out := make([]messageJSON, len(msgs))
	for i, m := range msgs {
		out[i] = messageJSON{Message: m}
		if m.Role == conversation.RoleAssistant {
			out[i].HTML = s.sessions.Render(m)
		}
	}
	return out
}

func exchangeToJSON(ex *session.Exchange) exchangeJSON {
	out := exchangeJSON{
		User:  messageJSON{Message: ex.User},
		Reply: messageJSON{Message: ex.Reply, HTML: ex.HTML},
		HTML:  ex.HTML,
	}
	if ex.Err != nil {
		out.Error = ex.Err.Error()
	}
	return out
}

type chatRequest struct {
	Message             string                   `json:"message"`
	ConversationHistory []conversation.WireEntry `json:"conversationHistory"`
}

// handleChat is the stateless proxy used by the web client: the client owns
// the transcript and posts it along with every message.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		abortWithError(c, newError(http.StatusBadRequest, "INVALID_MESSAGE", "Invalid message format"))
		return
	}
	if err := conversation.ValidateInput(req.Message); err != nil {
		abortWithError(c, err)
		return
	}

	reply, err := s.sessions.Complete(c.Request.Context(), conversation.FromWire(req.ConversationHistory), req.Message)
	switch {
	case errors.Is(err, llm.ErrEmptyResponse):
		reply = conversation.NoReplyText
	case err != nil:
		abortWithError(c, newError(http.StatusInternalServerError, "GENERATION_FAILED", "Error generating AI response: "+err.Error()))
		return
	}

	msg := conversation.NewMessage(conversation.RoleAssistant, reply, s.now())
	msg.ID = uuid.NewString()
	c.JSON(http.StatusOK, messageJSON{Message: msg, HTML: s.sessions.Format(reply)})
}

func (s *Server) session(c *gin.Context) (*session.Session, bool) {
	sess, err := s.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleTranscript(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	msgs, err := sess.Transcript(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, transcriptJSON{Session: sess.ID(), Messages: s.toJSON(msgs)})
}

type sendRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleSend(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, newError(http.StatusBadRequest, "INVALID_MESSAGE", "Invalid message format"))
		return
	}
	sess, ok := s.session(c)
	if !ok {
		return
	}
	ex, err := sess.Send(c.Request.Context(), req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, exchangeToJSON(ex))
}

func (s *Server) handleClear(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	msgs, err := sess.Clear(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, transcriptJSON{Session: sess.ID(), Messages: s.toJSON(msgs)})
}
