package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/stemsi/exstem-quiz/internal/model"
)

const stripWidth = 10

var (
	colorTitle   = lipgloss.Color("33")
	colorMuted   = lipgloss.Color("242")
	colorCurrent = lipgloss.Color("212")
	colorGood    = lipgloss.Color("42")
	colorBad     = lipgloss.Color("196")
	colorWarn    = lipgloss.Color("214")
)

// View renders the quiz or, once submitted, the results.
func (m Model) View() string {
	if m.session.Submitted() {
		return m.renderResults()
	}

	sections := []string{
		m.renderHeader(),
		m.renderTimer(),
		m.renderStrip(),
		"",
		m.renderQuestion(),
	}
	if m.confirmSubmit {
		answered := len(m.session.Answers())
		prompt := fmt.Sprintf("Submit quiz with %d of %d answered? (y/n)", answered, m.session.Len())
		sections = append(sections, "", m.stylize(prompt, colorWarn))
	} else if m.goTo {
		prompt := fmt.Sprintf("Go to question (1-%d): %s_", m.session.Len(), m.goToInput)
		sections = append(sections, "", m.stylize(prompt, colorWarn))
	} else if m.notice != "" {
		sections = append(sections, "", m.stylize(m.notice, colorBad))
	}
	sections = append(sections, "", m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := "MCQ Quiz"
	if m.title != "" {
		title += " | " + m.title
	}
	return m.stylize(title, colorTitle)
}

func (m Model) renderTimer() string {
	remaining := max(m.session.RemainingSeconds(), 0)
	total := int(m.session.Total().Seconds())
	fraction := 0.0
	if total > 0 {
		fraction = float64(remaining) / float64(total)
	}
	return "Time remaining: " + formatClock(remaining) + "  " + m.progress.ViewAs(fraction)
}

// renderStrip lists question numbers, ten per line. Answered questions carry
// a dot and the current one is bracketed.
func (m Model) renderStrip() string {
	answers := m.session.Answers()
	current := m.session.CurrentIndex()

	var lines []string
	var cells []string
	for i := 0; i < m.session.Len(); i++ {
		label := fmt.Sprintf("%d", i+1)
		if _, ok := answers[i]; ok {
			label += "•"
		}
		if i == current {
			cells = append(cells, m.stylize("["+label+"]", colorCurrent))
		} else {
			cells = append(cells, " "+label+" ")
		}
		if len(cells) == stripWidth {
			lines = append(lines, strings.Join(cells, " "))
			cells = nil
		}
	}
	if len(cells) > 0 {
		lines = append(lines, strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderQuestion() string {
	index := m.session.CurrentIndex()
	q, _ := m.session.Question(index)
	answer, answered := m.session.Answer(index)

	var b strings.Builder
	b.WriteString(m.stylize(fmt.Sprintf("Question %d of %d", index+1, m.session.Len()), colorMuted))
	b.WriteString("\n")
	b.WriteString(q.Text)
	b.WriteString("\n\n")
	for i, opt := range q.Options {
		pointer := "  "
		if i == m.cursor {
			pointer = "> "
		}
		mark := "( )"
		if answered && opt == answer {
			mark = "(•)"
		}
		line := fmt.Sprintf("%s%s %s. %s", pointer, mark, model.OptionLetter(i), opt)
		if i == m.cursor {
			line = m.stylize(line, colorCurrent)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderResults() string {
	report, err := m.session.Score()
	if err != nil {
		return err.Error()
	}

	sections := []string{m.stylize("Test completed", colorTitle)}
	if report.AutoSubmitted {
		sections = append(sections, m.stylize("Time's up! Your test was auto-submitted.", colorWarn))
	}
	sections = append(sections, "")
	for _, r := range report.Results {
		if r.IsCorrect {
			sections = append(sections, m.stylize(fmt.Sprintf("Q%d: Correct", r.Index+1), colorGood))
			continue
		}
		line := fmt.Sprintf("Q%d: Wrong (Your answer: %s | Correct: %s)", r.Index+1, r.UserAnswer, r.CorrectAnswer)
		sections = append(sections, m.stylize(line, colorBad))
	}
	sections = append(sections, "", FormatScore(report), "", m.stylize("Press q to quit.", colorMuted))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// FormatScore renders the final score line, e.g. "Final Score: 2/3 (66.67%)".
func FormatScore(report model.ScoreReport) string {
	return fmt.Sprintf("Final Score: %d/%d (%.2f%%)", report.Correct, report.Total, report.Percent)
}

// formatClock renders seconds as MM:SS. Minutes are not capped at 59.
func formatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// stylize applies optional color styling.
func (m Model) stylize(text string, color lipgloss.Color) string {
	if m.noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
