// Package ingestlog records one row per normalized file in
// data/logs/ingest-log.csv.
package ingestlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/mymoney/internal/importer"
	"github.com/cleared-dev/mymoney/internal/store"
)

// Entry is one row in the ingest log.
type Entry struct {
	Timestamp   time.Time
	RunID       string
	Source      string
	Institution string
	Service     string
	Account     string
	OutType     string
	Rows        int
	InvalidRows int
}

// Header is the CSV header for ingest-log.csv.
const Header = "timestamp,run_id,source,institution,service,account,out_type,rows,invalid_rows"

// File is the log path relative to the data root.
const File = store.LogsDir + "/ingest-log.csv"

const (
	numFields      = 9
	colTimestamp   = 0
	colRunID       = 1
	colSource      = 2
	colInstitution = 3
	colService     = 4
	colAccount     = 5
	colOutType     = 6
	colRows        = 7
	colInvalidRows = 8
)

// NewRunID returns an identifier shared by every entry of one ingest run.
func NewRunID() string {
	return uuid.NewString()
}

// EntryFor describes td as an entry of run runID.
func EntryFor(td *importer.TransformedData, runID string, at time.Time) Entry {
	return Entry{
		Timestamp:   at,
		RunID:       runID,
		Source:      filepath.Base(td.Source),
		Institution: td.Institution,
		Service:     td.Service.String(),
		Account:     td.Account,
		OutType:     string(td.Out),
		Rows:        td.Rows(),
		InvalidRows: td.Invalid(),
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colSource] = e.Source
	row[colInstitution] = e.Institution
	row[colService] = e.Service
	row[colAccount] = e.Account
	row[colOutType] = e.OutType
	row[colRows] = strconv.Itoa(e.Rows)
	row[colInvalidRows] = strconv.Itoa(e.InvalidRows)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	rows, err := strconv.Atoi(record[colRows])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing rows %q: %w", record[colRows], err)
	}
	invalid, err := strconv.Atoi(record[colInvalidRows])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing invalid_rows %q: %w", record[colInvalidRows], err)
	}

	return Entry{
		Timestamp:   ts,
		RunID:       record[colRunID],
		Source:      record[colSource],
		Institution: record[colInstitution],
		Service:     record[colService],
		Account:     record[colAccount],
		OutType:     record[colOutType],
		Rows:        rows,
		InvalidRows: invalid,
	}, nil
}

// Append writes entries to <root>/data/logs/ingest-log.csv, creating the
// file and header if needed.
func Append(root string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Join(root, store.LogsDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, File)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ingest log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from the ingest log, or nil when there is none.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, File))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ingest log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ingest log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
