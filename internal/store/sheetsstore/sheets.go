// Package sheetsstore keeps canonical records in a Google spreadsheet with
// one worksheet per record kind.
package sheetsstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/store"
)

// Worksheet titles.
const (
	ExpenseSheet = "Expenses"
	TradeSheet   = "Trades"
	BalanceSheet = "Balances"
)

// DefaultTitle is the spreadsheet title used by CreateStructure.
const DefaultTitle = "MyMoney"

// Worksheets lists every worksheet the store needs, in creation order.
var Worksheets = []string{ExpenseSheet, TradeSheet, BalanceSheet}

var headers = map[string][]string{
	ExpenseSheet: model.ExpenseColumns,
	TradeSheet:   model.TradeColumns,
	BalanceSheet: model.BalanceColumns,
}

// StructureError reports worksheets missing from the spreadsheet.
type StructureError struct {
	SpreadsheetID string
	Missing       []string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("spreadsheet %s is missing worksheet(s) %s; run sheets-init to create them",
		e.SpreadsheetID, strings.Join(e.Missing, ", "))
}

// Store is a store.Store backed by a spreadsheet.
type Store struct {
	c     client
	id    string
	log   zerolog.Logger
	known *cache.Cache
}

var _ store.Store = (*Store)(nil)

// New connects to the spreadsheet with the given ID. An empty credentials
// file falls back to application default credentials.
func New(ctx context.Context, credentialsFile, spreadsheetID string, log zerolog.Logger) (*Store, error) {
	if spreadsheetID == "" {
		return nil, errors.New("no spreadsheet configured; run sheets-init first")
	}
	c, err := newAPIClient(ctx, credentialsFile)
	if err != nil {
		return nil, err
	}
	return newStore(c, spreadsheetID, log), nil
}

func newStore(c client, id string, log zerolog.Logger) *Store {
	return &Store{
		c:     c,
		id:    id,
		log:   log,
		known: cache.New(10*time.Minute, 20*time.Minute),
	}
}

// Check verifies every worksheet exists. A positive result is cached so
// repeated appends in one run do not refetch the sheet list.
func (s *Store) Check(ctx context.Context) error {
	if _, ok := s.known.Get(s.id); ok {
		return nil
	}
	titles, err := s.c.SheetTitles(ctx, s.id)
	if err != nil {
		return fmt.Errorf("opening spreadsheet %s: %w", s.id, err)
	}
	if missing := missingSheets(titles); len(missing) > 0 {
		return &StructureError{SpreadsheetID: s.id, Missing: missing}
	}
	s.known.Set(s.id, true, cache.DefaultExpiration)
	return nil
}

func missingSheets(titles []string) []string {
	have := make(map[string]bool, len(titles))
	for _, t := range titles {
		have[t] = true
	}
	var missing []string
	for _, w := range Worksheets {
		if !have[w] {
			missing = append(missing, w)
		}
	}
	return missing
}

func (s *Store) AppendExpenses(ctx context.Context, recs []model.ExpenseRecord) error {
	return appendAll(ctx, s, ExpenseSheet, recs, store.MarshalExpense)
}

func (s *Store) AppendTrades(ctx context.Context, recs []model.TradeRecord) error {
	return appendAll(ctx, s, TradeSheet, recs, store.MarshalTrade)
}

func (s *Store) AppendBalances(ctx context.Context, recs []model.BalanceRecord) error {
	return appendAll(ctx, s, BalanceSheet, recs, store.MarshalBalance)
}

func (s *Store) LoadExpenses(ctx context.Context) ([]model.ExpenseRecord, error) {
	return loadAll(ctx, s, ExpenseSheet, store.UnmarshalExpense)
}

func (s *Store) LoadTrades(ctx context.Context) ([]model.TradeRecord, error) {
	return loadAll(ctx, s, TradeSheet, store.UnmarshalTrade)
}

func (s *Store) LoadBalances(ctx context.Context) ([]model.BalanceRecord, error) {
	return loadAll(ctx, s, BalanceSheet, store.UnmarshalBalance)
}

func appendAll[T any](ctx context.Context, s *Store, sheet string, recs []T, marshal func(T) []string) error {
	if len(recs) == 0 {
		return nil
	}
	if err := s.Check(ctx); err != nil {
		return err
	}
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, toCells(marshal(r)))
	}
	if err := s.c.AppendRows(ctx, s.id, sheet, rows); err != nil {
		return fmt.Errorf("appending to %s: %w", sheet, err)
	}
	s.log.Debug().Str("sheet", sheet).Int("rows", len(rows)).Msg("appended")
	return nil
}

// loadAll reads a worksheet, skipping its header row.
func loadAll[T any](ctx context.Context, s *Store, sheet string, unmarshal func([]string) (T, error)) ([]T, error) {
	if err := s.Check(ctx); err != nil {
		return nil, err
	}
	values, err := s.c.GetRows(ctx, s.id, sheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", sheet, err)
	}
	if len(values) <= 1 {
		return nil, nil
	}

	width := len(headers[sheet])
	out := make([]T, 0, len(values)-1)
	for i, row := range values[1:] {
		v, err := unmarshal(fromCells(row, width))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// CreateStructure makes sure a spreadsheet with every worksheet and its
// header row exists and returns its ID. With an empty id a new spreadsheet
// titled title is created. A non-empty share address gets writer access.
func CreateStructure(ctx context.Context, credentialsFile, id, title, share string, log zerolog.Logger) (string, error) {
	c, err := newAPIClient(ctx, credentialsFile)
	if err != nil {
		return "", err
	}
	return createStructure(ctx, c, id, title, share, log)
}

func createStructure(ctx context.Context, c client, id, title, share string, log zerolog.Logger) (string, error) {
	var added []string
	if id == "" {
		if title == "" {
			title = DefaultTitle
		}
		created, err := c.Create(ctx, title, Worksheets)
		if err != nil {
			return "", fmt.Errorf("creating spreadsheet %q: %w", title, err)
		}
		id = created
		added = Worksheets
		log.Info().Str("spreadsheet", id).Str("title", title).Msg("spreadsheet created")
	} else {
		titles, err := c.SheetTitles(ctx, id)
		if err != nil {
			return "", fmt.Errorf("opening spreadsheet %s: %w", id, err)
		}
		added = missingSheets(titles)
		if err := c.AddSheets(ctx, id, added); err != nil {
			return "", fmt.Errorf("adding worksheets: %w", err)
		}
	}

	for _, w := range added {
		if err := c.AppendRows(ctx, id, w, [][]any{toCells(headers[w])}); err != nil {
			return "", fmt.Errorf("writing %s header: %w", w, err)
		}
		log.Info().Str("sheet", w).Msg("worksheet created")
	}

	if share != "" {
		if err := c.Share(ctx, id, share); err != nil {
			return "", fmt.Errorf("sharing with %s: %w", share, err)
		}
		log.Info().Str("with", share).Msg("spreadsheet shared")
	}
	return id, nil
}

func toCells(row []string) []any {
	cells := make([]any, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// fromCells pads trailing empty cells the API omits.
func fromCells(row []any, width int) []string {
	out := make([]string, width)
	for i := 0; i < width && i < len(row); i++ {
		if row[i] != nil {
			out[i] = fmt.Sprint(row[i])
		}
	}
	return out
}
