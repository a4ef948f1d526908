package websocket

import "github.com/stemsi/exstem-quiz/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionJump     Action = "jump"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionAnswer   Action = "answer"
	ActionClear    Action = "clear"
	ActionSubmit   Action = "submit"
	ActionState    Action = "state"
	ActionPing     Action = "ping"
)

// RequestPayload carries every client action; fields unused by an action are ignored.
type RequestPayload struct {
	Action Action `json:"action"`
	Index  *int   `json:"index,omitempty"`
	Option string `json:"option,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError  Event = "error"
	EventTick   Event = "tick"
	EventState  Event = "state"
	EventGraded Event = "graded"
	EventPong   Event = "pong"
)

// TickResponse is pushed on every timer tick.
type TickResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
	Submitted        bool  `json:"submitted"`
	AutoSubmitted    bool  `json:"auto_submitted"`
}

type StateResponse struct {
	Event    Event                 `json:"event"`
	Snapshot model.SessionSnapshot `json:"snapshot"`
}

type GradedResponse struct {
	Event Event             `json:"event"`
	Score model.ScoreReport `json:"score"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
