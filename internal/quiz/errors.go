package quiz

import "errors"

// Sentinel errors for quiz sessions.
var (
	// ErrInvalidInput rejects a question set at creation time.
	ErrInvalidInput = errors.New("invalid question set")
	// ErrInvalidNavigation rejects a move that is out of range or after submission.
	ErrInvalidNavigation = errors.New("invalid navigation")
	// ErrInvalidAnswer rejects an answer for an unknown question or option, or after submission.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrInProgress is returned by Score while the quiz has not been submitted.
	ErrInProgress = errors.New("quiz is still in progress")
)
