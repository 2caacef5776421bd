package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/comigor/schoolassist-go/internal/logger"
	"github.com/comigor/schoolassist-go/internal/session"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Maximum frame size accepted from the peer.
	maxFrameSize = 64 * 1024
)

// Frame types.
const (
	FrameSend       = "send"
	FrameClear      = "clear"
	FrameExchange   = "exchange"
	FrameTranscript = "transcript"
	FrameError      = "error"
)

type inFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type outFrame struct {
	Type     string        `json:"type"`
	Exchange *exchangeJSON `json:"exchange,omitempty"`
	Messages []messageJSON `json:"messages,omitempty"`
	Error    *AppError     `json:"error,omitempty"`
}

// handleWebSocket runs one session over a WebSocket: the transcript is sent
// on connect, then each "send" frame is answered with an "exchange" frame
// and each "clear" frame with a "transcript" frame.
func (s *Server) handleWebSocket(c *gin.Context) {
	sess, ok := s.session(withQueryID(c))
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.L.Warn("WebSocket upgrade error", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameSize)

	ctx := c.Request.Context()
	log := logger.ForSession(ctx, sess.ID())

	msgs, err := sess.Transcript(ctx)
	if err != nil {
		s.writeFrame(conn, errorFrame(err))
		return
	}
	if err := s.writeFrame(conn, outFrame{Type: FrameTranscript, Messages: s.toJSON(msgs)}); err != nil {
		return
	}

	for {
		var in inFrame
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("WebSocket read error", "error", err)
			}
			return
		}
		if err := s.writeFrame(conn, s.dispatch(ctx, sess, in)); err != nil {
			log.Warn("WebSocket write error", "error", err)
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, sess *session.Session, in inFrame) outFrame {
	switch in.Type {
	case FrameSend:
		ex, err := sess.Send(ctx, in.Content)
		if err != nil {
			return errorFrame(err)
		}
		out := exchangeToJSON(ex)
		return outFrame{Type: FrameExchange, Exchange: &out}
	case FrameClear:
		msgs, err := sess.Clear(ctx)
		if err != nil {
			return errorFrame(err)
		}
		return outFrame{Type: FrameTranscript, Messages: s.toJSON(msgs)}
	default:
		return outFrame{Type: FrameError, Error: newError(http.StatusBadRequest, "UNKNOWN_FRAME", "unknown frame type "+in.Type)}
	}
}

func errorFrame(err error) outFrame {
	return outFrame{Type: FrameError, Error: fromError(err)}
}

func (s *Server) writeFrame(conn *websocket.Conn, f outFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(f)
}

// withQueryID exposes ?session= as the :id param so the REST session lookup
// can be reused.
func withQueryID(c *gin.Context) *gin.Context {
	c.Params = append(c.Params, gin.Param{Key: "id", Value: c.Query("session")})
	return c
}
