package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/quiz"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestModel(t *testing.T) (Model, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	questions := []model.Question{
		{Text: "What is the capital of France?", Options: []string{"Berlin", "Paris", "Rome"}, CorrectOptionIndex: 1},
		{Text: "What is 2+2?", Options: []string{"3", "4", "5", "6"}, CorrectOptionIndex: 1},
		{Text: "Largest planet?", Options: []string{"Jupiter", "Mars"}, CorrectOptionIndex: 0},
	}
	session, err := quiz.New(questions, quiz.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("quiz.New: %v", err)
	}
	return NewModel(session, Options{NoColor: true, Logger: zerolog.Nop()}), clock
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyBack  = tea.KeyMsg{Type: tea.KeyBackspace}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{324, "05:24"},
		{108, "01:48"},
		{59, "00:59"},
		{0, "00:00"},
		{6000, "100:00"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.seconds); got != tt.want {
			t.Fatalf("formatClock(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestInitialView(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()

	for _, want := range []string{"Time remaining: 05:24", "Question 1 of 3", "What is the capital of France?", "B. Paris"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestNavigationKeys(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, keyRight, keyRight, keyRight)
	if got := m.session.CurrentIndex(); got != 2 {
		t.Fatalf("index after 3x right = %d, want 2", got)
	}
	m = press(t, m, keyLeft, runes("h"))
	if got := m.session.CurrentIndex(); got != 0 {
		t.Fatalf("index after left+h = %d, want 0", got)
	}
	m = press(t, m, runes("3"))
	if got := m.session.CurrentIndex(); got != 2 {
		t.Fatalf("index after jump 3 = %d, want 2", got)
	}
	m = press(t, m, runes("9"))
	if m.notice == "" || m.session.CurrentIndex() != 2 {
		t.Fatalf("jump past end: notice %q, index %d", m.notice, m.session.CurrentIndex())
	}
}

func TestGoToQuestionNumber(t *testing.T) {
	questions := make([]model.Question, 12)
	for i := range questions {
		questions[i] = model.Question{Text: "Question text", Options: []string{"yes", "no"}, CorrectOptionIndex: 0}
	}
	session, err := quiz.New(questions)
	if err != nil {
		t.Fatalf("quiz.New: %v", err)
	}
	m := NewModel(session, Options{NoColor: true, Logger: zerolog.Nop()})

	m = press(t, m, runes("g"), runes("1"), runes("2"))
	if got := m.session.CurrentIndex(); got != 0 {
		t.Fatalf("digits jumped before enter: index %d", got)
	}
	if view := m.View(); !strings.Contains(view, "Go to question (1-12): 12_") {
		t.Fatalf("view missing go-to prompt:\n%s", view)
	}
	m = press(t, m, keyEnter)
	if got := m.session.CurrentIndex(); got != 11 {
		t.Fatalf("index after g 12 enter = %d, want 11", got)
	}

	m = press(t, m, runes("g"), runes("9"), runes("9"), keyEnter)
	if m.notice == "" || m.session.CurrentIndex() != 11 {
		t.Fatalf("go to 99: notice %q, index %d", m.notice, m.session.CurrentIndex())
	}

	m = press(t, m, runes("g"), runes("5"), keyEsc)
	if m.goTo || m.session.CurrentIndex() != 11 {
		t.Fatalf("esc did not cancel: goTo %v, index %d", m.goTo, m.session.CurrentIndex())
	}

	m = press(t, m, runes("g"), runes("1"), runes("3"), keyBack, keyEnter)
	if got := m.session.CurrentIndex(); got != 0 {
		t.Fatalf("index after g 13 backspace enter = %d, want 0", got)
	}
}

func TestAnswerAndClear(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, keyDown, keyEnter)
	if got, _ := m.session.Answer(0); got != "Paris" {
		t.Fatalf("answer = %q, want Paris", got)
	}
	if !strings.Contains(m.View(), "(•) B. Paris") {
		t.Fatalf("view does not mark the chosen option:\n%s", m.View())
	}

	// Cursor returns to the recorded answer after navigating away.
	m = press(t, m, keyRight, keyLeft)
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}

	m = press(t, m, keyBack)
	if _, ok := m.session.Answer(0); ok {
		t.Fatalf("answer still present after backspace")
	}
}

func TestSubmitNeedsConfirmation(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, keyDown, keyEnter, runes("s"))
	if m.session.Submitted() || !m.confirmSubmit {
		t.Fatalf("s should ask for confirmation first")
	}
	m = press(t, m, runes("n"))
	if m.session.Submitted() || m.confirmSubmit {
		t.Fatalf("n should cancel the submit")
	}

	m = press(t, m, runes("s"), runes("y"))
	if !m.session.Submitted() {
		t.Fatalf("quiz not submitted after s, y")
	}
	view := m.View()
	if !strings.Contains(view, "Final Score: 1/3 (33.33%)") {
		t.Fatalf("results missing score:\n%s", view)
	}
	if strings.Contains(view, "Time's up") {
		t.Fatalf("manual submit should not show the time's up notice")
	}
	if !strings.Contains(view, "Q2: Wrong (Your answer:  | Correct: 4)") {
		t.Fatalf("results missing unanswered line:\n%s", view)
	}
}

func TestKeysIgnoredAfterSubmit(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, runes("s"), runes("y"), keyRight, keyEnter)
	if m.session.CurrentIndex() != 0 || len(m.session.Answers()) != 0 {
		t.Fatalf("state changed after submit")
	}
}

func TestTickAutoSubmits(t *testing.T) {
	m, clock := newTestModel(t)
	m = press(t, m, runes("3"), keyEnter)

	clock.now = clock.now.Add(100 * time.Second)
	next, cmd := m.Update(tickMsg(clock.now))
	m = next.(Model)
	if cmd == nil || m.session.Submitted() {
		t.Fatalf("tick before deadline should keep ticking")
	}
	if !strings.Contains(m.View(), "Time remaining: 03:44") {
		t.Fatalf("countdown not updated:\n%s", m.View())
	}

	clock.now = clock.now.Add(224 * time.Second)
	next, cmd = m.Update(tickMsg(clock.now))
	m = next.(Model)
	if cmd != nil {
		t.Fatalf("ticking should stop after auto-submit")
	}
	if !m.session.AutoSubmitted() {
		t.Fatalf("quiz not auto-submitted at the deadline")
	}
	view := m.View()
	if !strings.Contains(view, "Time's up! Your test was auto-submitted.") || !strings.Contains(view, "Final Score: 1/3 (33.33%)") {
		t.Fatalf("unexpected results view:\n%s", view)
	}
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatalf("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q should quit")
	}
}
