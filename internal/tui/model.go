package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/quiz"
)

// Model drives one quiz session in the terminal. The session is only touched
// from Update, so it needs no locking.
type Model struct {
	session      *quiz.Session
	title        string
	keys         keyMap
	help         help.Model
	progress     progress.Model
	tickInterval time.Duration
	noColor      bool
	log          zerolog.Logger

	cursor        int
	confirmSubmit bool
	notice        string

	// goTo is set while a question number is being typed; goToInput holds the digits.
	goTo      bool
	goToInput string
}

// maxGoToDigits bounds the typed question number.
const maxGoToDigits = 4

// Options configures the terminal UI model.
type Options struct {
	Title        string
	NoColor      bool
	TickInterval time.Duration
	Logger       zerolog.Logger
}

// NewModel constructs a model around a started session.
func NewModel(session *quiz.Session, opts Options) Model {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	if opts.NoColor {
		bar = progress.New(progress.WithSolidFill("7"), progress.WithoutPercentage())
	}
	bar.Width = 40

	m := Model{
		session:      session,
		title:        opts.Title,
		keys:         defaultKeyMap(),
		help:         help.New(),
		progress:     bar,
		tickInterval: tickInterval,
		noColor:      opts.NoColor,
		log:          opts.Logger.With().Str("component", "tui").Logger(),
	}
	m.syncCursor()
	return m
}

// Init starts the countdown.
func (m Model) Init() tea.Cmd {
	return tick(m.tickInterval)
}

// Update handles timer ticks, resizes and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tickMsg:
		if m.session.CheckTimeout() {
			m.confirmSubmit = false
			m.goTo, m.goToInput = false, ""
			m.log.Info().Str("session_id", m.session.ID()).Msg("Time is up, quiz auto-submitted")
		}
		if m.session.Submitted() {
			return m, nil
		}
		return m, tick(m.tickInterval)
	case tea.WindowSizeMsg:
		m.help.Width = typed.Width
		m.progress.Width = max(min(typed.Width-20, 60), 10)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.session.Submitted() {
		return m, nil
	}

	if m.confirmSubmit {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.confirmSubmit = false
			m.session.Submit()
			m.log.Info().Str("session_id", m.session.ID()).Msg("Quiz submitted")
		case key.Matches(msg, m.keys.Cancel):
			m.confirmSubmit = false
		}
		return m, nil
	}
	if m.goTo {
		return m.handleGoTo(msg), nil
	}

	m.notice = ""
	var err error
	switch {
	case key.Matches(msg, m.keys.Prev):
		err = m.session.Previous()
		m.syncCursor()
	case key.Matches(msg, m.keys.Next):
		err = m.session.Next()
		m.syncCursor()
	case key.Matches(msg, m.keys.Jump):
		err = m.session.JumpTo(int(msg.String()[0] - '1'))
		m.syncCursor()
	case key.Matches(msg, m.keys.GoTo):
		m.goTo, m.goToInput = true, ""
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, len(m.currentOptions())-1)
	case key.Matches(msg, m.keys.Select):
		if opts := m.currentOptions(); m.cursor < len(opts) {
			err = m.session.RecordAnswer(m.session.CurrentIndex(), opts[m.cursor])
		}
	case key.Matches(msg, m.keys.Clear):
		err = m.session.ClearAnswer(m.session.CurrentIndex())
	case key.Matches(msg, m.keys.Submit):
		m.confirmSubmit = true
	}
	if err != nil && !m.session.Submitted() {
		m.notice = err.Error()
	}
	return m, nil
}

// handleGoTo collects digits until enter jumps to the typed question number.
// Esc cancels and backspace drops the last digit.
func (m Model) handleGoTo(msg tea.KeyMsg) Model {
	switch msg.Type {
	case tea.KeyEsc:
		m.goTo, m.goToInput = false, ""
	case tea.KeyBackspace:
		if n := len(m.goToInput); n > 0 {
			m.goToInput = m.goToInput[:n-1]
		}
	case tea.KeyEnter:
		input := m.goToInput
		m.goTo, m.goToInput = false, ""
		if input == "" {
			return m
		}
		number, _ := strconv.Atoi(input)
		if err := m.session.JumpTo(number - 1); err != nil {
			m.notice = err.Error()
			return m
		}
		m.notice = ""
		m.syncCursor()
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r < '0' || r > '9' || len(m.goToInput) >= maxGoToDigits {
				return m
			}
			m.goToInput += string(r)
		}
	}
	return m
}

func (m Model) currentOptions() []string {
	q, ok := m.session.Question(m.session.CurrentIndex())
	if !ok {
		return nil
	}
	return q.Options
}

// syncCursor points the cursor at the recorded answer of the current question.
func (m *Model) syncCursor() {
	m.cursor = 0
	answer, ok := m.session.Answer(m.session.CurrentIndex())
	if !ok {
		return
	}
	for i, opt := range m.currentOptions() {
		if opt == answer {
			m.cursor = i
			return
		}
	}
}

// tickMsg carries a clock tick for the countdown.
type tickMsg time.Time

// tick emits a periodic tick message.
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}
