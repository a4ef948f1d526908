package model

// MaxOptions is the number of option columns a question source can carry (A-D).
const MaxOptions = 4

// Question represents a single multiple-choice question. It is immutable once loaded.
type Question struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
}

// CorrectAnswer returns the text of the correct option, or "" if the key is out of range.
func (q Question) CorrectAnswer() string {
	if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectOptionIndex]
}

// HasOption reports whether text is exactly one of the question's options.
func (q Question) HasOption(text string) bool {
	for _, opt := range q.Options {
		if opt == text {
			return true
		}
	}
	return false
}

// QuestionView is a question as shown while the quiz is in progress.
// It never carries the answer key.
type QuestionView struct {
	Index   int      `json:"index"`
	Number  int      `json:"number"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// OptionLetter returns the display letter for an option position (0 → "A").
func OptionLetter(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}
