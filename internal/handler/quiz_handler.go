package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/quiz"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/service"
	"github.com/stemsi/exstem-quiz/internal/source"
	"github.com/stemsi/exstem-quiz/internal/validator"
)

// QuizHandler exposes the active quiz session over HTTP.
type QuizHandler struct {
	quizService    *service.QuizService
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService, maxUploadBytes int64, log zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizService:    quizService,
		maxUploadBytes: maxUploadBytes,
		log:            log.With().Str("component", "quiz_handler").Logger(),
	}
}

// LoadQuiz godoc
// POST /api/v1/quiz
// Uploads a CSV or XLSX question file and starts a new session from it.
func (h *QuizHandler) LoadQuiz(c *gin.Context) {
	if c.Request.ContentLength > h.maxUploadBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	snap, err := h.quizService.Load(c.Request.Context(), header.Filename, file)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": snap})
}

// GetQuiz godoc
// GET /api/v1/quiz
// Returns the current session state after applying the time check.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	snap, err := h.quizService.Snapshot(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

// JumpTo godoc
// POST /api/v1/quiz/jump
func (h *QuizHandler) JumpTo(c *gin.Context) {
	var req model.JumpRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap, err := h.quizService.JumpTo(c.Request.Context(), *req.Index)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

// Next godoc
// POST /api/v1/quiz/next
func (h *QuizHandler) Next(c *gin.Context) {
	snap, err := h.quizService.Next(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

// Previous godoc
// POST /api/v1/quiz/previous
func (h *QuizHandler) Previous(c *gin.Context) {
	snap, err := h.quizService.Previous(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

// RecordAnswer godoc
// PUT /api/v1/quiz/answers/:index
// Records the chosen option text for a question.
func (h *QuizHandler) RecordAnswer(c *gin.Context) {
	index, ok := bindIndex(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap, err := h.quizService.RecordAnswer(c.Request.Context(), index, req.Option)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

// ClearAnswer godoc
// DELETE /api/v1/quiz/answers/:index
func (h *QuizHandler) ClearAnswer(c *gin.Context) {
	index, ok := bindIndex(c)
	if !ok {
		return
	}

	snap, err := h.quizService.ClearAnswer(c.Request.Context(), index)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

// Submit godoc
// POST /api/v1/quiz/submit
// Ends the quiz and returns the score. Repeated calls return the same score.
func (h *QuizHandler) Submit(c *gin.Context) {
	report, err := h.quizService.Submit(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": report})
}

// GetResult godoc
// GET /api/v1/quiz/result
func (h *QuizHandler) GetResult(c *gin.Context) {
	report, err := h.quizService.Score(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": report})
}

func bindIndex(c *gin.Context) (int, bool) {
	var uri model.QuestionURI
	if fields := validator.BindURI(c, &uri); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidID, fields)
		return 0, false
	}
	return uri.Index, true
}

// writeError maps service, session and source errors onto the response envelope.
func (h *QuizHandler) writeError(c *gin.Context, err error) {
	var rowErr *source.MalformedRowError
	switch {
	case errors.Is(err, service.ErrNoActiveSession):
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
	case errors.As(err, &rowErr):
		response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrMalformedRow, rowErr.Error(), map[string]string{
			"row":    strconv.Itoa(rowErr.Row),
			"reason": rowErr.Reason,
		})
	case errors.Is(err, source.ErrUnsupportedFormat):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	case errors.Is(err, source.ErrInvalidSource), errors.Is(err, quiz.ErrInvalidInput):
		response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrInvalidSource, err.Error(), nil)
	case errors.Is(err, quiz.ErrInvalidNavigation):
		response.FailWithMessage(c, http.StatusConflict, response.ErrInvalidNavigation, err.Error(), nil)
	case errors.Is(err, quiz.ErrInvalidAnswer):
		response.FailWithMessage(c, http.StatusConflict, response.ErrInvalidAnswer, err.Error(), nil)
	case errors.Is(err, quiz.ErrInProgress):
		response.Fail(c, http.StatusConflict, response.ErrQuizInProgress)
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled quiz error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
