package model

import "time"

// SessionStatus enumerates quiz session states.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusSubmitted  SessionStatus = "SUBMITTED"
)

// SessionSnapshot is a read-only view of a quiz session for presentation layers.
type SessionSnapshot struct {
	SessionID        string         `json:"session_id"`
	Status           SessionStatus  `json:"status"`
	CurrentIndex     int            `json:"current_index"`
	QuestionCount    int            `json:"question_count"`
	Current          *QuestionView  `json:"current,omitempty"`
	Answers          map[int]string `json:"answers"`
	AnsweredCount    int            `json:"answered_count"`
	Submitted        bool           `json:"submitted"`
	AutoSubmitted    bool           `json:"auto_submitted"`
	StartedAt        time.Time      `json:"started_at"`
	RemainingSeconds int            `json:"remaining_seconds"`
	TotalSeconds     int            `json:"total_seconds"`
	// Progress is remaining/total time in [0, 1].
	Progress float64 `json:"progress"`
}

// QuestionResult is the scored outcome of a single question.
type QuestionResult struct {
	Index         int    `json:"index"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// ScoreReport is the final result of a submitted quiz.
type ScoreReport struct {
	SessionID     string           `json:"session_id"`
	Correct       int              `json:"correct"`
	Total         int              `json:"total"`
	Percent       float64          `json:"percent"`
	AutoSubmitted bool             `json:"auto_submitted"`
	Results       []QuestionResult `json:"results"`
}

// JumpRequest is the payload for jumping to a question.
type JumpRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// AnswerRequest is the payload for recording an answer.
type AnswerRequest struct {
	Option string `json:"option" binding:"required,notblank,max=2000"`
}

// QuestionURI binds the :index path parameter of answer routes.
type QuestionURI struct {
	Index int `uri:"index" binding:"min=0"`
}
