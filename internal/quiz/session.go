package quiz

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/exstem-quiz/internal/model"
)

// DefaultPerQuestion is the time budget granted for each question.
const DefaultPerQuestion = 108 * time.Second

// Clock returns the current time.
type Clock func() time.Time

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the session's time source.
func WithClock(clock Clock) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithPerQuestion overrides the per-question time budget.
func WithPerQuestion(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.perQuestion = d
		}
	}
}

// Session is the state of one timed quiz attempt.
//
// Two states exist: in progress and submitted. Submission happens through Submit
// or, once the deadline passes, through CheckTimeout; it is terminal. A Session is
// owned by one actor and is not safe for concurrent use.
type Session struct {
	id            uuid.UUID
	questions     []model.Question
	clock         Clock
	perQuestion   time.Duration
	startedAt     time.Time
	current       int
	answers       map[int]string
	submitted     bool
	autoSubmitted bool
}

// New validates questions and starts a session at question 0.
func New(questions []model.Question, opts ...Option) (*Session, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidInput)
	}
	for i, q := range questions {
		if err := validateQuestion(q); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrInvalidInput, i+1, err)
		}
	}

	s := &Session{
		id:          uuid.New(),
		questions:   cloneQuestions(questions),
		clock:       time.Now,
		perQuestion: DefaultPerQuestion,
		answers:     make(map[int]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startedAt = s.clock()
	return s, nil
}

func validateQuestion(q model.Question) error {
	if len(q.Options) == 0 {
		return errors.New("no options")
	}
	if len(q.Options) > model.MaxOptions {
		return fmt.Errorf("%d options, at most %d allowed", len(q.Options), model.MaxOptions)
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if opt == "" {
			return errors.New("empty option")
		}
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("duplicate option %q", opt)
		}
		seen[opt] = struct{}{}
	}
	if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
		return fmt.Errorf("correct option index %d out of range", q.CorrectOptionIndex)
	}
	return nil
}

func cloneQuestions(in []model.Question) []model.Question {
	out := make([]model.Question, len(in))
	for i, q := range in {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id.String() }

// Len returns the number of questions.
func (s *Session) Len() int { return len(s.questions) }

// CurrentIndex returns the index of the displayed question.
func (s *Session) CurrentIndex() int { return s.current }

// Question returns the question at index i.
func (s *Session) Question(i int) (model.Question, bool) {
	if i < 0 || i >= len(s.questions) {
		return model.Question{}, false
	}
	return s.questions[i], true
}

// Submitted reports whether the session has reached its terminal state.
func (s *Session) Submitted() bool { return s.submitted }

// AutoSubmitted reports whether submission was triggered by the deadline.
func (s *Session) AutoSubmitted() bool { return s.autoSubmitted }

// StartedAt returns the session start time.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Total returns the time budget for the whole quiz.
func (s *Session) Total() time.Duration {
	return time.Duration(len(s.questions)) * s.perQuestion
}

// Remaining returns the time left before the deadline. It goes negative after it.
func (s *Session) Remaining() time.Duration {
	return s.Total() - s.clock().Sub(s.startedAt)
}

// RemainingSeconds returns the countdown in whole seconds. Elapsed time is
// truncated, so the value reaches 0 exactly when Total has elapsed.
func (s *Session) RemainingSeconds() int {
	elapsed := int(s.clock().Sub(s.startedAt) / time.Second)
	return int(s.Total()/time.Second) - elapsed
}

// CheckTimeout auto-submits the session once the deadline has passed.
// It returns true only for the call that performed the transition.
func (s *Session) CheckTimeout() bool {
	if s.submitted || s.RemainingSeconds() > 0 {
		return false
	}
	s.submitted = true
	s.autoSubmitted = true
	return true
}

// JumpTo moves to question index.
func (s *Session) JumpTo(index int) error {
	s.CheckTimeout()
	if s.submitted {
		return fmt.Errorf("%w: quiz already submitted", ErrInvalidNavigation)
	}
	if index < 0 || index >= len(s.questions) {
		return fmt.Errorf("%w: question %d out of range [0, %d)", ErrInvalidNavigation, index, len(s.questions))
	}
	s.current = index
	return nil
}

// Next moves forward one question. It is a no-op on the last question.
func (s *Session) Next() error {
	return s.step(1)
}

// Previous moves back one question. It is a no-op on the first question.
func (s *Session) Previous() error {
	return s.step(-1)
}

func (s *Session) step(delta int) error {
	s.CheckTimeout()
	if s.submitted {
		return fmt.Errorf("%w: quiz already submitted", ErrInvalidNavigation)
	}
	next := s.current + delta
	if next < 0 || next >= len(s.questions) {
		return nil
	}
	s.current = next
	return nil
}

// RecordAnswer stores option as the answer to question index, replacing any
// previous answer. option must match one of the question's options exactly.
func (s *Session) RecordAnswer(index int, option string) error {
	s.CheckTimeout()
	if s.submitted {
		return fmt.Errorf("%w: quiz already submitted", ErrInvalidAnswer)
	}
	q, ok := s.Question(index)
	if !ok {
		return fmt.Errorf("%w: question %d out of range", ErrInvalidAnswer, index)
	}
	if !q.HasOption(option) {
		return fmt.Errorf("%w: %q is not an option of question %d", ErrInvalidAnswer, option, index+1)
	}
	s.answers[index] = option
	return nil
}

// ClearAnswer removes the answer to question index, if any.
func (s *Session) ClearAnswer(index int) error {
	s.CheckTimeout()
	if s.submitted {
		return fmt.Errorf("%w: quiz already submitted", ErrInvalidAnswer)
	}
	if index < 0 || index >= len(s.questions) {
		return fmt.Errorf("%w: question %d out of range", ErrInvalidAnswer, index)
	}
	delete(s.answers, index)
	return nil
}

// Answer returns the recorded answer to question index.
func (s *Session) Answer(index int) (string, bool) {
	ans, ok := s.answers[index]
	return ans, ok
}

// Answers returns a copy of all recorded answers keyed by question index.
func (s *Session) Answers() map[int]string {
	out := make(map[int]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Submit ends the quiz manually. Calling it again has no effect.
// A session whose deadline already passed is auto-submitted instead.
func (s *Session) Submit() {
	if s.CheckTimeout() || s.submitted {
		return
	}
	s.submitted = true
}

// Score grades the submitted quiz by exact match against each question's key.
func (s *Session) Score() (model.ScoreReport, error) {
	if !s.submitted {
		return model.ScoreReport{}, ErrInProgress
	}

	report := model.ScoreReport{
		SessionID:     s.ID(),
		Total:         len(s.questions),
		AutoSubmitted: s.autoSubmitted,
		Results:       make([]model.QuestionResult, 0, len(s.questions)),
	}
	for i, q := range s.questions {
		userAnswer := s.answers[i]
		correctAnswer := q.CorrectAnswer()
		_, answered := s.answers[i]
		isCorrect := answered && userAnswer == correctAnswer
		if isCorrect {
			report.Correct++
		}
		report.Results = append(report.Results, model.QuestionResult{
			Index:         i,
			Question:      q.Text,
			UserAnswer:    userAnswer,
			CorrectAnswer: correctAnswer,
			IsCorrect:     isCorrect,
		})
	}
	report.Percent = float64(report.Correct) / float64(report.Total) * 100
	return report, nil
}

// Snapshot returns a read-only view of the session. It does not run the time check.
func (s *Session) Snapshot() model.SessionSnapshot {
	total := int(s.Total() / time.Second)
	remaining := s.RemainingSeconds()
	if remaining < 0 {
		remaining = 0
	}

	status := model.SessionStatusInProgress
	if s.submitted {
		status = model.SessionStatusSubmitted
	}

	snap := model.SessionSnapshot{
		SessionID:        s.ID(),
		Status:           status,
		CurrentIndex:     s.current,
		QuestionCount:    len(s.questions),
		Answers:          s.Answers(),
		AnsweredCount:    len(s.answers),
		Submitted:        s.submitted,
		AutoSubmitted:    s.autoSubmitted,
		StartedAt:        s.startedAt,
		RemainingSeconds: remaining,
		TotalSeconds:     total,
	}
	if total > 0 {
		snap.Progress = float64(remaining) / float64(total)
	}
	if !s.submitted {
		q := s.questions[s.current]
		snap.Current = &model.QuestionView{
			Index:   s.current,
			Number:  s.current + 1,
			Text:    q.Text,
			Options: append([]string(nil), q.Options...),
		}
	}
	return snap
}
