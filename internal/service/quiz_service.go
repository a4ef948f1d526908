package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/quiz"
	"github.com/stemsi/exstem-quiz/internal/source"
)

// ErrNoActiveSession is returned when no question set has been loaded yet.
var ErrNoActiveSession = errors.New("no active quiz session")

const publishTimeout = 2 * time.Second

// QuizService owns the single active quiz session of the process.
// Loading a new question set discards the previous session.
type QuizService struct {
	mu          sync.Mutex
	session     *quiz.Session
	parser      *source.Parser
	perQuestion time.Duration
	clock       quiz.Clock
	publisher   EventPublisher
	log         zerolog.Logger
}

// NewQuizService creates a QuizService. publisher may be nil.
func NewQuizService(parser *source.Parser, perQuestion time.Duration, publisher EventPublisher, log zerolog.Logger) *QuizService {
	return &QuizService{
		parser:      parser,
		perQuestion: perQuestion,
		clock:       time.Now,
		publisher:   publisher,
		log:         log.With().Str("component", "quiz_service").Logger(),
	}
}

// SetClock overrides the time source of sessions created afterwards.
func (s *QuizService) SetClock(clock quiz.Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// Load parses a question file and starts a fresh session from it.
// A parse failure leaves the current session untouched.
func (s *QuizService) Load(ctx context.Context, filename string, r io.Reader) (model.SessionSnapshot, error) {
	questions, err := s.parser.ParseFile(filename, r)
	if err != nil {
		return model.SessionSnapshot{}, fmt.Errorf("parse %s: %w", filename, err)
	}
	return s.Start(ctx, questions)
}

// Start begins a new session from already parsed questions.
func (s *QuizService) Start(ctx context.Context, questions []model.Question) (model.SessionSnapshot, error) {
	s.mu.Lock()
	session, err := quiz.New(questions, quiz.WithClock(s.clock), quiz.WithPerQuestion(s.perQuestion))
	if err != nil {
		s.mu.Unlock()
		return model.SessionSnapshot{}, err
	}
	previous := s.session
	s.session = session
	snap := session.Snapshot()
	s.mu.Unlock()

	ev := s.log.Info().
		Str("session_id", snap.SessionID).
		Int("questions", snap.QuestionCount).
		Int("total_seconds", snap.TotalSeconds)
	if previous != nil {
		ev = ev.Str("replaced_session_id", previous.ID())
	}
	ev.Msg("Quiz session started")

	s.publish(ctx, MonitorEvent{
		Event:         MonitorEventLoaded,
		SessionID:     snap.SessionID,
		QuestionCount: snap.QuestionCount,
	})
	return snap, nil
}

// Snapshot runs the time check and returns the current state.
func (s *QuizService) Snapshot(ctx context.Context) (model.SessionSnapshot, error) {
	var snap model.SessionSnapshot
	err := s.mutate(ctx, func(sess *quiz.Session) error {
		snap = sess.Snapshot()
		return nil
	})
	return snap, err
}

// CheckTimeout auto-submits the active session once its deadline has passed.
// It reports whether this call performed the transition.
func (s *QuizService) CheckTimeout(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return false, ErrNoActiveSession
	}
	expired := s.session.CheckTimeout()
	var report model.ScoreReport
	if expired {
		report, _ = s.session.Score()
	}
	s.mu.Unlock()

	if expired {
		s.announceSubmission(ctx, report)
	}
	return expired, nil
}

// JumpTo moves the active session to question index.
func (s *QuizService) JumpTo(ctx context.Context, index int) (model.SessionSnapshot, error) {
	return s.apply(ctx, func(sess *quiz.Session) error { return sess.JumpTo(index) })
}

// Next moves the active session forward one question.
func (s *QuizService) Next(ctx context.Context) (model.SessionSnapshot, error) {
	return s.apply(ctx, func(sess *quiz.Session) error { return sess.Next() })
}

// Previous moves the active session back one question.
func (s *QuizService) Previous(ctx context.Context) (model.SessionSnapshot, error) {
	return s.apply(ctx, func(sess *quiz.Session) error { return sess.Previous() })
}

// RecordAnswer records option as the answer to question index.
func (s *QuizService) RecordAnswer(ctx context.Context, index int, option string) (model.SessionSnapshot, error) {
	return s.apply(ctx, func(sess *quiz.Session) error { return sess.RecordAnswer(index, option) })
}

// ClearAnswer removes the answer to question index.
func (s *QuizService) ClearAnswer(ctx context.Context, index int) (model.SessionSnapshot, error) {
	return s.apply(ctx, func(sess *quiz.Session) error { return sess.ClearAnswer(index) })
}

// Submit ends the active quiz and returns its score. It is idempotent.
func (s *QuizService) Submit(ctx context.Context) (model.ScoreReport, error) {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return model.ScoreReport{}, ErrNoActiveSession
	}
	wasSubmitted := s.session.Submitted()
	s.session.Submit()
	report, err := s.session.Score()
	s.mu.Unlock()
	if err != nil {
		return model.ScoreReport{}, err
	}

	if !wasSubmitted {
		s.announceSubmission(ctx, report)
	}
	return report, nil
}

// Score returns the result of the submitted quiz.
func (s *QuizService) Score(ctx context.Context) (model.ScoreReport, error) {
	if _, err := s.CheckTimeout(ctx); err != nil {
		return model.ScoreReport{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Score()
}

// apply runs op against the active session and returns the resulting snapshot.
// A failed op still reports state, so callers can re-render after a rejection.
func (s *QuizService) apply(ctx context.Context, op func(*quiz.Session) error) (model.SessionSnapshot, error) {
	var snap model.SessionSnapshot
	err := s.mutate(ctx, func(sess *quiz.Session) error {
		opErr := op(sess)
		snap = sess.Snapshot()
		return opErr
	})
	return snap, err
}

// mutate runs the time check before op so the deadline is always honoured first.
func (s *QuizService) mutate(ctx context.Context, op func(*quiz.Session) error) error {
	if _, err := s.CheckTimeout(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ErrNoActiveSession
	}
	return op(s.session)
}

func (s *QuizService) announceSubmission(ctx context.Context, report model.ScoreReport) {
	eventType := MonitorEventSubmitted
	if report.AutoSubmitted {
		eventType = MonitorEventAutoSubmitted
	}

	s.log.Info().
		Str("session_id", report.SessionID).
		Bool("auto_submitted", report.AutoSubmitted).
		Int("correct", report.Correct).
		Int("total", report.Total).
		Msg("Quiz submitted and graded")

	correct, total := report.Correct, report.Total
	s.publish(ctx, MonitorEvent{
		Event:         eventType,
		SessionID:     report.SessionID,
		QuestionCount: report.Total,
		Correct:       &correct,
		Total:         &total,
	})
}

func (s *QuizService) publish(ctx context.Context, event MonitorEvent) {
	if s.publisher == nil {
		return
	}
	event.At = time.Now().UTC()

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		s.log.Warn().Err(err).Str("event", string(event.Event)).Msg("Monitor event publish failed")
	}
}
