// Package tokenizer splits raw statement exports into rows of named fields.
// It sniffs the delimiter from the header line and tolerates the ragged,
// inconsistently quoted files that banks actually produce.
package tokenizer

import (
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strings"
)

// ErrEmptyInput is returned when the file contains no non-blank lines.
var ErrEmptyInput = errors.New("input contains no data")

// Field is a single (header, value) pair of a tokenized row.
type Field struct {
	Header string
	Value  string
}

// Row is an ordered list of fields preserving the source column order,
// with O(1) lookup by header name.
type Row struct {
	fields []Field
	index  map[string]int
}

// NewRow builds a row from parallel header/value slices. Values beyond the
// header count are ignored; missing trailing values become empty strings.
func NewRow(headers, values []string) Row {
	r := Row{
		fields: make([]Field, len(headers)),
		index:  make(map[string]int, len(headers)),
	}
	for i, h := range headers {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		r.fields[i] = Field{Header: h, Value: v}
		// unnamed columns are positional only
		if _, ok := r.index[h]; h != "" && !ok {
			r.index[h] = i
		}
	}
	return r
}

// Get returns the value for the given header, or "" when absent.
func (r Row) Get(header string) string {
	if i, ok := r.index[header]; ok {
		return r.fields[i].Value
	}
	return ""
}

// Fields returns the ordered fields of the row.
func (r Row) Fields() []Field { return r.fields }

// Len returns the number of fields in the row.
func (r Row) Len() int { return len(r.fields) }

// SkippedLine records a source line the reader rejected, with the reason.
// Line is 1-based over the non-blank lines, header included.
type SkippedLine struct {
	Line   int
	Reason string
}

// Table is the tokenized form of one uploaded file.
type Table struct {
	Delimiter rune
	Headers   []string
	Rows      []Row
	Skipped   []SkippedLine
}

// fragment pairs that form an unquoted decimal-comma amount, e.g. a comma
// delimited file carrying "R$ 1.234,56" without quotes splits into
// "R$ 1.234" + "56".
var (
	amountHeadRe = regexp.MustCompile(`^[^0-9]*\d[\d.]*$`)
	amountTailRe = regexp.MustCompile(`^\d{2}$`)
)

// Tokenize parses raw file content into headers and rows. The first non-blank
// line is the header line; its delimiter (';' or ',') is detected once and
// applied to the whole file.
func Tokenize(content string) (*Table, error) {
	lines := nonBlankLines(content)
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}

	delimiter := sniffDelimiter(lines[0])

	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	record, err := reader.Read()
	if err != nil {
		return nil, ErrEmptyInput
	}
	headers := cleanFields(record)

	table := &Table{Delimiter: delimiter, Headers: headers}
	for {
		record, err = reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A rejected line is recorded, never silently lost.
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			table.Skipped = append(table.Skipped, SkippedLine{Line: line, Reason: err.Error()})
			continue
		}
		values := cleanFields(record)
		if len(values) > len(headers) {
			values = repairRow(values, len(headers), delimiter)
		}
		table.Rows = append(table.Rows, NewRow(headers, values))
	}

	return table, nil
}

// repairRow merges adjacent fragments of unquoted decimal-comma amounts until
// the row fits the header width. Irreparable overflow is truncated.
func repairRow(values []string, want int, delimiter rune) []string {
	for len(values) > want {
		merged := false
		for i := 0; i < len(values)-1; i++ {
			if amountHeadRe.MatchString(values[i]) && amountTailRe.MatchString(values[i+1]) {
				joined := values[i] + string(delimiter) + values[i+1]
				values = append(values[:i], append([]string{joined}, values[i+2:]...)...)
				merged = true
				break
			}
		}
		if !merged {
			values = values[:want]
		}
	}
	return values
}

func nonBlankLines(content string) []string {
	content = strings.TrimPrefix(content, "\uFEFF")
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// sniffDelimiter picks ';' or ',' based on the header line. Semicolon wins
// ties: it is the dominant delimiter in pt-BR exports, where commas also
// appear inside amounts.
func sniffDelimiter(headerLine string) rune {
	if strings.Count(headerLine, ";") >= strings.Count(headerLine, ",") && strings.Contains(headerLine, ";") {
		return ';'
	}
	return ','
}

func cleanFields(record []string) []string {
	cleaned := make([]string, len(record))
	for i, f := range record {
		f = strings.TrimSpace(f)
		if len(f) >= 2 && strings.HasPrefix(f, `"`) && strings.HasSuffix(f, `"`) {
			f = f[1 : len(f)-1]
		}
		cleaned[i] = strings.TrimSpace(f)
	}
	return cleaned
}
