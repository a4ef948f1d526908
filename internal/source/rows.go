package source

import (
	"fmt"
	"strings"

	"github.com/stemsi/exstem-quiz/internal/model"
)

// Column headers of a question source.
const (
	ColumnQuestion = "Question"
	ColumnOptionA  = "OptionA"
	ColumnOptionB  = "OptionB"
	ColumnOptionC  = "OptionC"
	ColumnOptionD  = "OptionD"
	ColumnCorrect  = "Correct"
)

var optionColumns = [model.MaxOptions]string{ColumnOptionA, ColumnOptionB, ColumnOptionC, ColumnOptionD}

// columnIndex maps the required headers to their cell positions.
type columnIndex struct {
	question int
	options  [model.MaxOptions]int
	correct  int
}

// headerKey folds a header cell so "OptionA", "Option A" and "option_a" compare equal.
func headerKey(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
	return strings.ToLower(headerFolder.Replace(name))
}

var headerFolder = strings.NewReplacer(" ", "", "_", "")

func indexColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		key := headerKey(name)
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	lookup := func(name string) (int, error) {
		pos, ok := positions[headerKey(name)]
		if !ok {
			return 0, fmt.Errorf("%w: missing column %q", ErrInvalidSource, name)
		}
		return pos, nil
	}

	var idx columnIndex
	var err error
	if idx.question, err = lookup(ColumnQuestion); err != nil {
		return columnIndex{}, err
	}
	for i, name := range optionColumns {
		if idx.options[i], err = lookup(name); err != nil {
			return columnIndex{}, err
		}
	}
	if idx.correct, err = lookup(ColumnCorrect); err != nil {
		return columnIndex{}, err
	}
	return idx, nil
}

// buildQuestions converts a header row plus data rows into questions.
// lines holds the file line of each record and names the row of a bad record.
// No partial set is returned: the first bad row aborts the whole source.
func buildQuestions(records [][]string, lines []int, placeholder string) ([]model.Question, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidSource)
	}
	idx, err := indexColumns(records[0])
	if err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(records)-1)
	for i, record := range records {
		if i == 0 {
			continue
		}
		if blankRecord(record) {
			continue
		}
		q, err := buildQuestion(record, idx, placeholder)
		if err != nil {
			return nil, &MalformedRowError{Row: lines[i], Reason: err.Error()}
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidSource)
	}
	return questions, nil
}

func buildQuestion(record []string, idx columnIndex, placeholder string) (model.Question, error) {
	text := cell(record, idx.question)
	if text == "" {
		return model.Question{}, fmt.Errorf("empty question text")
	}

	letter := strings.ToUpper(cell(record, idx.correct))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] >= 'A'+model.MaxOptions {
		return model.Question{}, fmt.Errorf("correct answer %q is not one of A-D", cell(record, idx.correct))
	}
	correctColumn := int(letter[0] - 'A')

	q := model.Question{Text: text, CorrectOptionIndex: -1}
	seen := make(map[string]struct{}, model.MaxOptions)
	for i, pos := range idx.options {
		opt := cell(record, pos)
		if opt == "" || opt == placeholder {
			continue
		}
		if _, dup := seen[opt]; dup {
			return model.Question{}, fmt.Errorf("duplicate option %q", opt)
		}
		seen[opt] = struct{}{}
		if i == correctColumn {
			q.CorrectOptionIndex = len(q.Options)
		}
		q.Options = append(q.Options, opt)
	}

	if len(q.Options) == 0 {
		return model.Question{}, fmt.Errorf("no usable options")
	}
	if q.CorrectOptionIndex < 0 {
		return model.Question{}, fmt.Errorf("correct answer %s refers to an empty option", letter)
	}
	return q, nil
}

func cell(record []string, pos int) string {
	if pos < 0 || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blankRecord(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
