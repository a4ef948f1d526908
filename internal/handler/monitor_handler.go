package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/config"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/service"
)

const keepAliveInterval = 30 * time.Second

// MonitorHandler relays quiz lifecycle events from Redis Pub/Sub to a proctor display over SSE.
type MonitorHandler struct {
	rdb         *redis.Client
	quizService *service.QuizService
	log         zerolog.Logger
}

// NewMonitorHandler creates a MonitorHandler. rdb may be nil when Redis is disabled.
func NewMonitorHandler(rdb *redis.Client, quizService *service.QuizService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		rdb:         rdb,
		quizService: quizService,
		log:         log.With().Str("component", "monitor_handler").Logger(),
	}
}

// MonitorSSE godoc
// GET /api/v1/quiz/monitor
// Streams loaded/submitted/auto_submitted events for every quiz session.
func (h *MonitorHandler) MonitorSSE(c *gin.Context) {
	if h.rdb == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrMonitorUnavailable)
		return
	}

	reqCtx := c.Request.Context()

	// 1. SSE headers
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// 2. Current state first, so a late-joining display is not blank.
	if snap, err := h.quizService.Snapshot(reqCtx); err == nil {
		writeSSE(c, gin.H{"event": "snapshot", "session": snap})
	} else if !errors.Is(err, service.ErrNoActiveSession) {
		h.log.Warn().Err(err).Msg("Initial monitor snapshot failed")
	}

	// 3. Subscribe to every quiz monitor channel.
	pubsub := h.rdb.PSubscribe(reqCtx, config.CacheKey.QuizMonitorPattern())
	defer pubsub.Close()
	ch := pubsub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	h.log.Info().Msg("Proctor attached to quiz monitor")
	pingPayload, _ := json.Marshal(map[string]string{"event": "ping"})

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Proctor detached from quiz monitor")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Payloads are already JSON-encoded MonitorEvents.
			writeSSEPayload(c, []byte(msg.Payload))

		case <-keepAliveTicker.C:
			writeSSEPayload(c, pingPayload)
		}
	}
}

func writeSSE(c *gin.Context, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	writeSSEPayload(c, payload)
}

func writeSSEPayload(c *gin.Context, payload []byte) {
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(payload)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}
