// Package sqlitestore keeps canonical records in a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a store.Store backed by SQLite.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

var _ store.Store = (*Store)(nil)

// Open opens or creates the database at path and applies pending migrations.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// migrate applies the embedded migrations. The migrate instance is not
// closed since that would close db as well.
func (s *Store) migrate() error {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			s.log.Debug().Msg("no new database migrations to apply")
			return nil
		}
		return fmt.Errorf("applying migrations: %w", err)
	}
	s.log.Info().Msg("database migrations applied")
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const (
	insertExpense = `INSERT INTO expenses (description, amount, date, institution, account_name,
	institution_category, my_category, is_transfer, is_valid, service, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	insertTrade = `INSERT INTO trades (datetime, from_account, to_account, from_asset, to_asset,
	in_amount, out_amount, fee_asset, fee_amount, fee_value, trx_type, trx_sub_type, asset_type, usd_amount)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	insertBalance = `INSERT INTO balances (date, institution, account_name, balance) VALUES (?, ?, ?, ?)`

	selectExpenses = `SELECT description, amount, date, institution, account_name,
	institution_category, my_category, is_transfer, is_valid, service, notes FROM expenses ORDER BY id`
	selectTrades = `SELECT datetime, from_account, to_account, from_asset, to_asset,
	in_amount, out_amount, fee_asset, fee_amount, fee_value, trx_type, trx_sub_type, asset_type, usd_amount
	FROM trades ORDER BY id`
	selectBalances = `SELECT date, institution, account_name, balance FROM balances ORDER BY id`
)

// AppendExpenses inserts recs. The CSV column encoding is reused so both
// backends store identical text.
func (s *Store) AppendExpenses(ctx context.Context, recs []model.ExpenseRecord) error {
	return insertAll(ctx, s.db, insertExpense, recs, func(r model.ExpenseRecord) []any {
		row := store.MarshalExpense(r)
		args := anys(row)
		args[8] = r.IsValid
		return args
	})
}

func (s *Store) AppendTrades(ctx context.Context, recs []model.TradeRecord) error {
	return insertAll(ctx, s.db, insertTrade, recs, func(r model.TradeRecord) []any {
		return anys(store.MarshalTrade(r))
	})
}

func (s *Store) AppendBalances(ctx context.Context, recs []model.BalanceRecord) error {
	return insertAll(ctx, s.db, insertBalance, recs, func(r model.BalanceRecord) []any {
		return anys(store.MarshalBalance(r))
	})
}

func (s *Store) LoadExpenses(ctx context.Context) ([]model.ExpenseRecord, error) {
	return queryAll(ctx, s.db, selectExpenses, 11, func(rows *sql.Rows, dst []any) (model.ExpenseRecord, error) {
		var valid bool
		dst[8] = &valid
		if err := rows.Scan(dst...); err != nil {
			return model.ExpenseRecord{}, err
		}
		rec := texts(dst)
		rec[8] = strconv.FormatBool(valid)
		return store.UnmarshalExpense(rec)
	})
}

func (s *Store) LoadTrades(ctx context.Context) ([]model.TradeRecord, error) {
	return queryAll(ctx, s.db, selectTrades, 14, func(rows *sql.Rows, dst []any) (model.TradeRecord, error) {
		if err := rows.Scan(dst...); err != nil {
			return model.TradeRecord{}, err
		}
		return store.UnmarshalTrade(texts(dst))
	})
}

func (s *Store) LoadBalances(ctx context.Context) ([]model.BalanceRecord, error) {
	return queryAll(ctx, s.db, selectBalances, 4, func(rows *sql.Rows, dst []any) (model.BalanceRecord, error) {
		if err := rows.Scan(dst...); err != nil {
			return model.BalanceRecord{}, err
		}
		return store.UnmarshalBalance(texts(dst))
	})
}

// insertAll inserts every record in one transaction, one statement per row.
func insertAll[T any](ctx context.Context, db *sql.DB, query string, recs []T, args func(T) []any) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range recs {
		if _, err := stmt.ExecContext(ctx, args(r)...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// queryAll runs query and decodes each row. dst holds one *string per
// column; decode may swap in other destinations before scanning.
func queryAll[T any](ctx context.Context, db *sql.DB, query string, cols int, decode func(*sql.Rows, []any) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	defer rows.Close()

	var out []T
	for n := 1; rows.Next(); n++ {
		dst := make([]any, cols)
		for i := range dst {
			dst[i] = new(string)
		}
		v, err := decode(rows, dst)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

func anys(row []string) []any {
	args := make([]any, len(row))
	for i, v := range row {
		args[i] = v
	}
	return args
}

// texts reads back the *string destinations; others become "".
func texts(dst []any) []string {
	out := make([]string, len(dst))
	for i, d := range dst {
		if p, ok := d.(*string); ok {
			out[i] = *p
		}
	}
	return out
}
