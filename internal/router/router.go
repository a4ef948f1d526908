package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/config"
	"github.com/stemsi/exstem-quiz/internal/handler"
	"github.com/stemsi/exstem-quiz/internal/middleware"
	"github.com/stemsi/exstem-quiz/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Quiz    *handler.QuizHandler
	WS      *handler.WSHandler
	Monitor *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the request logger can attach it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Quiz Group ─────────────────────────────────────────────────
	uploadLimiter := middleware.NewRateLimiter(cfg.UploadRate, time.Minute)

	quizAPI := router.Group("/api/v1/quiz")
	quizAPI.Use(middleware.NoStore())
	{
		quizAPI.POST("", uploadLimiter.Middleware(), handlers.Quiz.LoadQuiz)
		quizAPI.GET("", handlers.Quiz.GetQuiz)
		quizAPI.POST("/jump", handlers.Quiz.JumpTo)
		quizAPI.POST("/next", handlers.Quiz.Next)
		quizAPI.POST("/previous", handlers.Quiz.Previous)
		quizAPI.PUT("/answers/:index", handlers.Quiz.RecordAnswer)
		quizAPI.DELETE("/answers/:index", handlers.Quiz.ClearAnswer)
		quizAPI.POST("/submit", handlers.Quiz.Submit)
		quizAPI.GET("/result", handlers.Quiz.GetResult)
		quizAPI.GET("/monitor", handlers.Monitor.MonitorSSE)
	}

	// ─── 2. WebSocket Group ────────────────────────────────────────────
	wsGroup := router.Group("/ws/v1")
	{
		wsGroup.GET("/quiz/stream", handlers.WS.QuizStream)
	}

	return router
}
