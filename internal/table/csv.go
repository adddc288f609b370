package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseOptions control how a delimited file becomes a Table.
type ParseOptions struct {
	// Delimiter defaults to ','.
	Delimiter rune `yaml:"delimiter,omitempty"`
	// SkipRows drops this many leading records before the header.
	SkipRows int `yaml:"skip_rows,omitempty"`
	// HeaderRow is the record (after SkipRows) holding the column names.
	// Records before it are dropped. -1 means the file has no header and
	// Names supplies the columns.
	HeaderRow int `yaml:"header_row,omitempty"`
	// Names overrides the header. Required when HeaderRow is -1.
	Names []string `yaml:"names,omitempty"`
}

// ReadFile parses the file at path.
func ReadFile(path string, opts ParseOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return t, nil
}

// Read parses delimited text. Empty cells become null; columns whose
// non-null cells all parse as integers, floats or booleans are typed.
func Read(r io.Reader, opts ParseOptions) (*Table, error) {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	if opts.SkipRows > len(records) {
		return nil, errors.New("skip_rows is past the end of the file")
	}
	records = records[opts.SkipRows:]

	var header []string
	switch {
	case opts.HeaderRow < 0:
		if len(opts.Names) == 0 {
			return nil, errors.New("headerless read needs column names")
		}
		header = opts.Names
	default:
		if opts.HeaderRow >= len(records) {
			return nil, errors.New("no header row")
		}
		header = records[opts.HeaderRow]
		records = records[opts.HeaderRow+1:]
		if len(opts.Names) > 0 {
			header = opts.Names
		}
	}

	cols := headerNames(header)
	t := New(cols...)
	for n, rec := range records {
		if len(rec) > len(cols) {
			return nil, fmt.Errorf("record %d has %d fields, header has %d", n+1, len(rec), len(cols))
		}
		row := make([]any, len(cols))
		for j, s := range rec {
			if s != "" {
				row[j] = s
			}
		}
		t.rows = append(t.rows, row)
	}
	t.inferTypes()
	return t, nil
}

// headerNames fills blank names with "Unnamed: <pos>" and suffixes repeats
// with ".1", ".2", ...
func headerNames(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, name := range raw {
		name = strings.TrimPrefix(name, "\ufeff")
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

func (t *Table) inferTypes() {
	for j := range t.cols {
		kind := kindInt
		for _, r := range t.rows {
			s, ok := r[j].(string)
			if !ok {
				continue
			}
			kind = narrow(kind, s)
			if kind == kindString {
				break
			}
		}
		if kind == kindString {
			continue
		}
		for _, r := range t.rows {
			s, ok := r[j].(string)
			if !ok {
				continue
			}
			r[j] = convert(kind, s)
		}
	}
}

type cellKind int

const (
	kindInt cellKind = iota
	kindFloat
	kindBool
	kindString
)

// narrow widens kind until s fits it.
func narrow(kind cellKind, s string) cellKind {
	switch kind {
	case kindInt:
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			return kindInt
		}
		if isFloat(s) {
			return kindFloat
		}
		if isBool(s) {
			return kindBool
		}
	case kindFloat:
		if isFloat(s) {
			return kindFloat
		}
	case kindBool:
		if isBool(s) {
			return kindBool
		}
	}
	return kindString
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	// Reject spellings like "Inf" or "NaN" that are really text.
	c := s[len(s)-1]
	return c == '.' || (c >= '0' && c <= '9')
}

func isBool(s string) bool {
	switch s {
	case "True", "False", "TRUE", "FALSE", "true", "false":
		return true
	}
	return false
}

func convert(kind cellKind, s string) any {
	switch kind {
	case kindInt:
		n, _ := strconv.ParseInt(s, 10, 64)
		return n
	case kindFloat:
		f, _ := strconv.ParseFloat(s, 64)
		return f
	case kindBool:
		return strings.EqualFold(s, "true")
	}
	return s
}

// WriteCSV writes the table with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.cols); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	rec := make([]string, len(t.cols))
	for _, r := range t.rows {
		for j, v := range r {
			rec[j] = Format(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
