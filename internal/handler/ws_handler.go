package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/service"
	ws "github.com/stemsi/exstem-quiz/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the quiz countdown and accepts quiz actions over WebSocket.
type WSHandler struct {
	quizService *service.QuizService
	tick        time.Duration
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(quizService *service.QuizService, tick time.Duration, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		quizService: quizService,
		tick:        tick,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

type inbound struct {
	msg ws.RequestPayload
	err error
}

// streamConn is the per-connection state of a quiz stream.
type streamConn struct {
	conn *websocket.Conn
	// gradedSession is the session whose score this client already received.
	gradedSession string
}

// QuizStream godoc
// WS /ws/v1/quiz/stream
// Pushes a tick every interval and applies client actions to the active session.
func (h *WSHandler) QuizStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	wsLog := h.log.With().Str("remote", c.ClientIP()).Logger()
	wsLog.Info().Msg("Client connected")

	// Reader goroutine; all writes stay on this goroutine.
	incoming := make(chan inbound)
	go func() {
		defer close(incoming)
		for {
			var msg ws.RequestPayload
			err := ws.ReadJSON(conn, &msg)
			select {
			case incoming <- inbound{msg: msg, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	st := &streamConn{conn: conn}
	h.sendState(ctx, conn)

	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if err := h.sendTick(ctx, st); err != nil {
				wsLog.Debug().Err(err).Msg("Tick write failed")
				return
			}

		case in, ok := <-incoming:
			if !ok {
				return
			}
			if in.err != nil {
				if websocket.IsUnexpectedCloseError(in.err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(in.err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			if err := h.handleAction(ctx, st, wsLog, in.msg); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}
		}
	}
}

// sendTick runs the time check and pushes the countdown. The first tick that
// sees the session submitted, by whichever caller, also pushes the score; after
// that the stream stays quiet until a new session is loaded.
func (h *WSHandler) sendTick(ctx context.Context, st *streamConn) error {
	_, err := h.quizService.CheckTimeout(ctx)
	if errors.Is(err, service.ErrNoActiveSession) {
		return ws.WriteTyped(st.conn, ws.TickResponse{Event: ws.EventTick})
	}
	if err != nil {
		return ws.WriteError(st.conn, err.Error())
	}

	snap, err := h.quizService.Snapshot(ctx)
	if err != nil {
		return ws.WriteError(st.conn, err.Error())
	}
	if snap.Submitted && st.gradedSession == snap.SessionID {
		return nil
	}
	if err := ws.WriteTyped(st.conn, ws.TickResponse{
		Event:            ws.EventTick,
		RemainingSeconds: snap.RemainingSeconds,
		Submitted:        snap.Submitted,
		AutoSubmitted:    snap.AutoSubmitted,
	}); err != nil {
		return err
	}
	if !snap.Submitted {
		return nil
	}

	report, err := h.quizService.Score(ctx)
	if err != nil {
		return ws.WriteError(st.conn, err.Error())
	}
	// A new upload may have replaced the session since the snapshot.
	if report.SessionID != snap.SessionID {
		return nil
	}
	return h.sendReport(st, report)
}

func (h *WSHandler) handleAction(ctx context.Context, st *streamConn, wsLog zerolog.Logger, msg ws.RequestPayload) error {
	conn := st.conn
	var (
		snap model.SessionSnapshot
		err  error
	)

	switch msg.Action {
	case ws.ActionPing:
		return ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
	case ws.ActionState:
		snap, err = h.quizService.Snapshot(ctx)
	case ws.ActionNext:
		snap, err = h.quizService.Next(ctx)
	case ws.ActionPrevious:
		snap, err = h.quizService.Previous(ctx)
	case ws.ActionJump:
		if msg.Index == nil {
			return ws.WriteError(conn, "index is required")
		}
		snap, err = h.quizService.JumpTo(ctx, *msg.Index)
	case ws.ActionAnswer:
		if msg.Index == nil || strings.TrimSpace(msg.Option) == "" {
			return ws.WriteError(conn, "index and option are required")
		}
		snap, err = h.quizService.RecordAnswer(ctx, *msg.Index, msg.Option)
	case ws.ActionClear:
		if msg.Index == nil {
			return ws.WriteError(conn, "index is required")
		}
		snap, err = h.quizService.ClearAnswer(ctx, *msg.Index)
	case ws.ActionSubmit:
		report, err := h.quizService.Submit(ctx)
		if err != nil {
			return ws.WriteError(conn, err.Error())
		}
		return h.sendReport(st, report)
	default:
		wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		return ws.WriteError(conn, "unknown action: "+string(msg.Action))
	}

	if err != nil {
		if errors.Is(err, service.ErrNoActiveSession) {
			return ws.WriteError(conn, err.Error())
		}
		// Rejected actions still report the unchanged state.
		if werr := ws.WriteError(conn, err.Error()); werr != nil {
			return werr
		}
	}
	return ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, Snapshot: snap})
}

func (h *WSHandler) sendState(ctx context.Context, conn *websocket.Conn) {
	snap, err := h.quizService.Snapshot(ctx)
	if err != nil {
		_ = ws.WriteError(conn, err.Error())
		return
	}
	_ = ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, Snapshot: snap})
}

func (h *WSHandler) sendReport(st *streamConn, report model.ScoreReport) error {
	st.gradedSession = report.SessionID
	return ws.WriteTyped(st.conn, ws.GradedResponse{Event: ws.EventGraded, Score: report})
}
