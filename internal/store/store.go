// Package store persists canonical records. Every backend is append-only:
// nothing already written is rewritten or removed.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/mymoney/internal/model"
)

// Store is an append-only home for canonical records.
type Store interface {
	AppendExpenses(ctx context.Context, recs []model.ExpenseRecord) error
	AppendTrades(ctx context.Context, recs []model.TradeRecord) error
	AppendBalances(ctx context.Context, recs []model.BalanceRecord) error
	LoadExpenses(ctx context.Context) ([]model.ExpenseRecord, error)
	LoadTrades(ctx context.Context) ([]model.TradeRecord, error)
	LoadBalances(ctx context.Context) ([]model.BalanceRecord, error)
}

// Data folder layout, relative to the data root.
const (
	CoreDir   = "data/core"
	RawDir    = "data/raw"
	SanityDir = "data/sanity"
	LogsDir   = "data/logs"

	ExpenseFile = "expense.csv"
	TradeFile   = "trade.csv"
	BalanceFile = "balance.csv"
)

// Init creates the data folder layout under root. Existing folders and files
// are left alone.
func Init(root string) error {
	for _, d := range []string{CoreDir, RawDir, SanityDir, LogsDir} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}
	return nil
}

// Flat stores records in three CSV files under <root>/data/core.
type Flat struct {
	root string
}

// NewFlat creates a flat-file store rooted at root.
func NewFlat(root string) *Flat {
	return &Flat{root: root}
}

// Path returns the path of a core file.
func (s *Flat) Path(name string) string {
	return filepath.Join(s.root, CoreDir, name)
}

func (s *Flat) AppendExpenses(_ context.Context, recs []model.ExpenseRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return appendFile(s.Path(ExpenseFile), ExpenseHeader, func(w io.Writer) error {
		return appendRows(w, recs, MarshalExpense)
	})
}

func (s *Flat) AppendTrades(_ context.Context, recs []model.TradeRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return appendFile(s.Path(TradeFile), TradeHeader, func(w io.Writer) error {
		return appendRows(w, recs, MarshalTrade)
	})
}

func (s *Flat) AppendBalances(_ context.Context, recs []model.BalanceRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return appendFile(s.Path(BalanceFile), BalanceHeader, func(w io.Writer) error {
		return appendRows(w, recs, MarshalBalance)
	})
}

func (s *Flat) LoadExpenses(_ context.Context) ([]model.ExpenseRecord, error) {
	return loadFile(s.Path(ExpenseFile), ReadExpenses)
}

func (s *Flat) LoadTrades(_ context.Context) ([]model.TradeRecord, error) {
	return loadFile(s.Path(TradeFile), ReadTrades)
}

func (s *Flat) LoadBalances(_ context.Context) ([]model.BalanceRecord, error) {
	return loadFile(s.Path(BalanceFile), ReadBalances)
}

// appendFile opens path for appending, writing header first when the file is
// new.
func appendFile(path, header string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating core dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := write(f); err != nil {
		return fmt.Errorf("appending to %s: %w", filepath.Base(path), err)
	}
	return nil
}

func loadFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	recs, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return recs, nil
}

// Kind names a backend in configuration.
type Kind string

const (
	KindCSV    Kind = "csv"
	KindSQLite Kind = "sqlite"
	KindSheets Kind = "sheets"
)

// ParseKind maps a configured backend name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindCSV, KindSQLite, KindSheets:
		return k, nil
	case "":
		return KindCSV, nil
	}
	return "", fmt.Errorf("unknown storage backend %q", s)
}
