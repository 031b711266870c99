package helpers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spektr-org/agriclimate/engine"
	"github.com/spektr-org/agriclimate/schema"
)

// ============================================================================
// CSV HELPER — Parses CSV data into []engine.Record
// ============================================================================
// The text is split into lines first and every line is parsed on its own,
// so a broken line can only lose itself. Line 0 is the header and is checked
// once against the schema. Short rows get "" for missing fields; numeric
// validation happens later, per view, in the aggregators.
// ============================================================================

// Parsed is the outcome of Parse.
type Parsed struct {
	Records []engine.Record
	// Malformed counts lines that could not be split into fields.
	Malformed int
}

// ParseCSV parses CSV bytes into Records using sch for column positions.
// Empty input yields no records and no error.
func ParseCSV(data []byte, sch schema.Schema) ([]engine.Record, error) {
	p, err := Parse(data, sch)
	if err != nil {
		return nil, err
	}
	return p.Records, nil
}

// Parse is ParseCSV plus a count of malformed lines.
func Parse(data []byte, sch schema.Schema) (Parsed, error) {
	if err := sch.Validate(); err != nil {
		return Parsed{}, err
	}

	lines := splitLines(data)
	if len(lines) == 0 {
		return Parsed{}, nil
	}

	headers, err := parseLine(lines[0])
	if err != nil {
		return Parsed{}, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	if err := sch.CheckHeader(headers); err != nil {
		return Parsed{}, err
	}

	var p Parsed
	for _, line := range lines[1:] {
		row, err := parseLine(line)
		if err != nil {
			p.Malformed++
			continue
		}
		if isBlank(row) {
			continue
		}
		p.Records = append(p.Records, recordFrom(row, sch))
	}
	return p, nil
}

// ParseHeader returns the trimmed header row without reading any data.
func ParseHeader(data []byte) ([]string, error) {
	lines := splitLines(data)
	if len(lines) == 0 {
		return nil, nil
	}
	headers, err := parseLine(lines[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}
	return headers, nil
}

// splitLines drops a UTF-8 BOM and splits on LF, trimming a trailing CR.
// A trailing newline does not produce an extra line.
func splitLines(data []byte) []string {
	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// parseLine splits one line into fields. A quoted field must close on the
// same line; a bare quote inside an unquoted field is kept as text.
// A blank line yields nil.
func parseLine(line string) ([]string, error) {
	row, err := readLine(line, false)
	if errors.Is(err, csv.ErrBareQuote) {
		row, err = readLine(line, true)
	}
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	return row, err
}

func readLine(line string, lazy bool) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = lazy
	reader.TrimLeadingSpace = true
	return reader.Read()
}

func recordFrom(row []string, sch schema.Schema) engine.Record {
	return engine.Record{
		Country:        field(row, sch.Country.Index),
		Year:           field(row, sch.Year.Index),
		CropType:       field(row, sch.CropType.Index),
		Strategy:       field(row, sch.Strategy.Index),
		Emissions:      field(row, sch.Emissions.Index),
		EconomicImpact: field(row, sch.EconomicImpact.Index),
	}
}

// field returns the trimmed value at i, or "" when the row is too short.
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
