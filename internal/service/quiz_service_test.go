package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/quiz"
	"github.com/stemsi/exstem-quiz/internal/source"
)

const sampleCSV = `Question,Option A,Option B,Option C,Option D,Correct
What is the capital of France?,Berlin,Paris,Rome,-,B
What is 2+2?,3,4,5,6,B
`

type recordingPublisher struct {
	mu     sync.Mutex
	events []MonitorEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event MonitorEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []MonitorEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]MonitorEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event)
	}
	return out
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*QuizService, *testClock, *recordingPublisher) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	pub := &recordingPublisher{}
	svc := NewQuizService(source.NewParser(source.DefaultPlaceholder), quiz.DefaultPerQuestion, pub, zerolog.Nop())
	svc.SetClock(clock.Now)
	return svc, clock, pub
}

func loadSample(t *testing.T, svc *QuizService) {
	t.Helper()
	if _, err := svc.Load(context.Background(), "quiz.csv", strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestOperationsWithoutSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Snapshot(ctx); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Snapshot err = %v, want ErrNoActiveSession", err)
	}
	if _, err := svc.Next(ctx); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Next err = %v, want ErrNoActiveSession", err)
	}
	if _, err := svc.Submit(ctx); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Submit err = %v, want ErrNoActiveSession", err)
	}
	if _, err := svc.Score(ctx); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Score err = %v, want ErrNoActiveSession", err)
	}
	if _, err := svc.CheckTimeout(ctx); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("CheckTimeout err = %v, want ErrNoActiveSession", err)
	}
}

func TestLoadStartsSession(t *testing.T) {
	svc, _, pub := newTestService(t)

	snap, err := svc.Load(context.Background(), "quiz.csv", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.QuestionCount != 2 {
		t.Fatalf("QuestionCount = %d, want 2", snap.QuestionCount)
	}
	if snap.TotalSeconds != 216 || snap.RemainingSeconds != 216 {
		t.Fatalf("timer = %d/%d, want 216/216", snap.RemainingSeconds, snap.TotalSeconds)
	}
	if snap.Current == nil || len(snap.Current.Options) != 3 {
		t.Fatalf("current question = %+v, want 3 options after placeholder filtering", snap.Current)
	}
	if got := pub.types(); len(got) != 1 || got[0] != MonitorEventLoaded {
		t.Fatalf("events = %v, want [loaded]", got)
	}
}

func TestLoadFailureKeepsSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	loadSample(t, svc)
	before, _ := svc.Snapshot(context.Background())

	_, err := svc.Load(context.Background(), "bad.csv", strings.NewReader("Question,Option A\nQ,A\n"))
	if !errors.Is(err, source.ErrInvalidSource) {
		t.Fatalf("Load err = %v, want ErrInvalidSource", err)
	}

	after, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if after.SessionID != before.SessionID {
		t.Fatalf("session replaced after failed load")
	}
}

func TestLoadReplacesSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	loadSample(t, svc)
	first, _ := svc.Snapshot(context.Background())

	loadSample(t, svc)
	second, _ := svc.Snapshot(context.Background())
	if first.SessionID == second.SessionID {
		t.Fatalf("expected a new session id after reload")
	}
}

func TestRejectedOperationStillReturnsState(t *testing.T) {
	svc, _, _ := newTestService(t)
	loadSample(t, svc)

	snap, err := svc.JumpTo(context.Background(), 5)
	if !errors.Is(err, quiz.ErrInvalidNavigation) {
		t.Fatalf("JumpTo err = %v, want ErrInvalidNavigation", err)
	}
	if snap.CurrentIndex != 0 || snap.QuestionCount != 2 {
		t.Fatalf("snapshot = %+v, want unchanged state", snap)
	}
}

func TestSubmitFlow(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()
	loadSample(t, svc)

	if _, err := svc.RecordAnswer(ctx, 0, "Paris"); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if _, err := svc.Next(ctx); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := svc.RecordAnswer(ctx, 1, "5"); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if _, err := svc.Score(ctx); !errors.Is(err, quiz.ErrInProgress) {
		t.Fatalf("Score before submit err = %v, want ErrInProgress", err)
	}

	report, err := svc.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if report.Correct != 1 || report.Total != 2 || report.AutoSubmitted {
		t.Fatalf("report = %+v, want 1/2 manual", report)
	}

	if _, err := svc.Submit(ctx); err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	got := pub.types()
	if len(got) != 2 || got[1] != MonitorEventSubmitted {
		t.Fatalf("events = %v, want [loaded submitted]", got)
	}
	if pub.events[1].Correct == nil || *pub.events[1].Correct != 1 {
		t.Fatalf("submitted event correct = %v, want 1", pub.events[1].Correct)
	}

	if _, err := svc.Previous(ctx); !errors.Is(err, quiz.ErrInvalidNavigation) {
		t.Fatalf("Previous after submit err = %v, want ErrInvalidNavigation", err)
	}
}

func TestCheckTimeoutAutoSubmits(t *testing.T) {
	svc, clock, pub := newTestService(t)
	ctx := context.Background()
	loadSample(t, svc)

	clock.Advance(215 * time.Second)
	if expired, err := svc.CheckTimeout(ctx); err != nil || expired {
		t.Fatalf("CheckTimeout = %v, %v; want false, nil", expired, err)
	}

	clock.Advance(time.Second)
	expired, err := svc.CheckTimeout(ctx)
	if err != nil || !expired {
		t.Fatalf("CheckTimeout = %v, %v; want true, nil", expired, err)
	}
	if expired, _ := svc.CheckTimeout(ctx); expired {
		t.Fatalf("CheckTimeout reported a second transition")
	}

	report, err := svc.Score(ctx)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !report.AutoSubmitted || report.Correct != 0 {
		t.Fatalf("report = %+v, want auto submitted with 0 correct", report)
	}
	got := pub.types()
	if len(got) != 2 || got[1] != MonitorEventAutoSubmitted {
		t.Fatalf("events = %v, want [loaded auto_submitted]", got)
	}
}

func TestLateAnswerIsRejected(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()
	loadSample(t, svc)

	clock.Advance(time.Hour)
	snap, err := svc.RecordAnswer(ctx, 0, "Paris")
	if !errors.Is(err, quiz.ErrInvalidAnswer) {
		t.Fatalf("RecordAnswer err = %v, want ErrInvalidAnswer", err)
	}
	if !snap.Submitted || !snap.AutoSubmitted || snap.AnsweredCount != 0 {
		t.Fatalf("snapshot = %+v, want auto submitted without answers", snap)
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	svc, _, pub := newTestService(t)
	pub.err = errors.New("redis down")

	if _, err := svc.Load(context.Background(), "quiz.csv", strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := svc.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
}
