// Package source parses uploaded question sets into questions.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/xuri/excelize/v2"
)

// DefaultPlaceholder marks an option cell that holds no option.
const DefaultPlaceholder = "-"

// Format is a supported question file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Parser reads question sources.
type Parser struct {
	Placeholder string
}

// NewParser creates a Parser. An empty placeholder falls back to DefaultPlaceholder.
func NewParser(placeholder string) *Parser {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Parser{Placeholder: placeholder}
}

// DetectFormat picks the format from a file name's extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q (allowed: .csv, .xlsx)", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ParseFile parses r, choosing the format from name.
func (p *Parser) ParseFile(name string, r io.Reader) ([]model.Question, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	return p.Parse(format, r)
}

// Parse reads every row of r and returns the question set.
func (p *Parser) Parse(format Format, r io.Reader) ([]model.Question, error) {
	var (
		records [][]string
		lines   []int
		err     error
	)
	switch format {
	case FormatCSV:
		records, lines, err = readCSV(r)
	case FormatXLSX:
		records, lines, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return buildQuestions(records, lines, p.Placeholder)
}

// readCSV returns the records and the file line each one starts on.
// The reader skips empty lines and quoted cells may span lines, so the
// two can drift apart.
func readCSV(r io.Reader) ([][]string, []int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		records [][]string
		lines   []int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: read csv: %v", ErrInvalidSource, err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}
	return records, lines, nil
}

func readXLSX(r io.Reader) ([][]string, []int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open xlsx: %v", ErrInvalidSource, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidSource)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read sheet %q: %v", ErrInvalidSource, sheets[0], err)
	}
	// GetRows keeps empty rows in place, so the sheet row is the index plus one.
	lines := make([]int, len(rows))
	for i := range rows {
		lines[i] = i + 1
	}
	return rows, lines, nil
}
