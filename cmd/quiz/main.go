package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/config"
	"github.com/stemsi/exstem-quiz/internal/logger"
	"github.com/stemsi/exstem-quiz/internal/quiz"
	"github.com/stemsi/exstem-quiz/internal/source"
	"github.com/stemsi/exstem-quiz/internal/tui"
	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: quiz <questions.csv|questions.xlsx>")
	}
	path := args[0]

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	// The screen belongs to the UI: log to LOG_FILE, or warnings only to stderr.
	var out io.Writer = os.Stderr
	level := "warn"
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
		level = cfg.LogLevel
	}
	log := logger.New(out, level, "json")

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal; use the HTTP server for non-interactive use")
	}

	// ─── Parse Questions ───────────────────────────────────────────────
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open questions: %w", err)
	}
	questions, err := source.NewParser(cfg.Placeholder).ParseFile(path, f)
	f.Close()
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	session, err := quiz.New(questions, quiz.WithPerQuestion(cfg.PerQuestion))
	if err != nil {
		return err
	}
	log.Info().
		Str("session_id", session.ID()).
		Str("file", path).
		Int("questions", session.Len()).
		Msg("Quiz started")

	// ─── Run UI ────────────────────────────────────────────────────────
	_, noColor := os.LookupEnv("NO_COLOR")
	model := tui.NewModel(session, tui.Options{
		Title:        filepath.Base(path),
		NoColor:      noColor,
		TickInterval: cfg.TickInterval,
		Logger:       log,
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}

	if session.Submitted() {
		report, _ := session.Score()
		fmt.Println(tui.FormatScore(report))
	}
	return nil
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
