package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/mymoney/internal/model"
)

// Headers of the three core files. They match the canonical column names so
// an exported core file can be re-imported as is.
var (
	ExpenseHeader = strings.Join(model.ExpenseColumns, ",")
	TradeHeader   = strings.Join(model.TradeColumns, ",")
	BalanceHeader = strings.Join(model.BalanceColumns, ",")
)

const (
	dateFormat = "2006-01-02"

	expenseFields = 11
	colDesc       = 0
	colAmount     = 1
	colDate       = 2
	colInst       = 3
	colAccount    = 4
	colInstCat    = 5
	colMyCat      = 6
	colTransfer   = 7
	colValid      = 8
	colService    = 9
	colNotes      = 10

	tradeFields  = 14
	colDatetime  = 0
	colFromAcct  = 1
	colToAcct    = 2
	colFromAsset = 3
	colToAsset   = 4
	colIn        = 5
	colOut       = 6
	colFeeAsset  = 7
	colFeeAmount = 8
	colFeeValue  = 9
	colTrxType   = 10
	colTrxSub    = 11
	colAssetType = 12
	colUSD       = 13

	balanceFields = 4
	colBalDate    = 0
	colBalInst    = 1
	colBalAccount = 2
	colBalance    = 3
)

// MarshalExpense converts an ExpenseRecord to a CSV row.
func MarshalExpense(r model.ExpenseRecord) []string {
	row := make([]string, expenseFields)
	row[colDesc] = r.Description
	if r.AmountValid {
		row[colAmount] = money(r.Amount)
	}
	if !r.Date.IsZero() {
		row[colDate] = r.Date.Format(dateFormat)
	}
	row[colInst] = r.Institution
	row[colAccount] = r.AccountName
	row[colInstCat] = deref(r.InstitutionCategory)
	row[colMyCat] = deref(r.MyCategory)
	row[colTransfer] = string(r.IsTransfer)
	row[colValid] = strconv.FormatBool(r.IsValid)
	row[colService] = r.Service.String()
	row[colNotes] = deref(r.Notes)
	return row
}

// UnmarshalExpense converts a CSV row to an ExpenseRecord.
func UnmarshalExpense(record []string) (model.ExpenseRecord, error) {
	if len(record) != expenseFields {
		return model.ExpenseRecord{}, fmt.Errorf("expected %d fields, got %d", expenseFields, len(record))
	}

	r := model.ExpenseRecord{
		Description:         record[colDesc],
		Institution:         record[colInst],
		AccountName:         record[colAccount],
		InstitutionCategory: model.StrPtr(record[colInstCat]),
		MyCategory:          model.StrPtr(record[colMyCat]),
		IsTransfer:          model.TransferClass(record[colTransfer]),
		Notes:               model.StrPtr(record[colNotes]),
	}
	if !r.IsTransfer.Valid() {
		return model.ExpenseRecord{}, fmt.Errorf("unknown transfer class %q", record[colTransfer])
	}

	var err error
	if record[colAmount] != "" {
		r.Amount, err = decimal.NewFromString(record[colAmount])
		if err != nil {
			return model.ExpenseRecord{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
		}
		r.AmountValid = true
	}
	if record[colDate] != "" {
		r.Date, err = time.Parse(dateFormat, record[colDate])
		if err != nil {
			return model.ExpenseRecord{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
		}
	}
	r.IsValid, err = strconv.ParseBool(record[colValid])
	if err != nil {
		return model.ExpenseRecord{}, fmt.Errorf("parsing is_valid %q: %w", record[colValid], err)
	}
	r.Service, err = model.ParseServiceKind(record[colService])
	if err != nil {
		return model.ExpenseRecord{}, err
	}
	return r, nil
}

// MarshalTrade converts a TradeRecord to a CSV row.
func MarshalTrade(r model.TradeRecord) []string {
	row := make([]string, tradeFields)
	if !r.Datetime.IsZero() {
		row[colDatetime] = r.Datetime.Format(time.RFC3339)
	}
	row[colFromAcct] = r.FromAccount
	row[colToAcct] = r.ToAccount
	row[colFromAsset] = r.FromAsset
	row[colToAsset] = r.ToAsset
	row[colIn] = decString(r.InAmount)
	row[colOut] = decString(r.OutAmount)
	row[colFeeAsset] = r.FeeAsset
	row[colFeeAmount] = decString(r.FeeAmount)
	row[colFeeValue] = decString(r.FeeValue)
	row[colTrxType] = string(r.TrxType)
	row[colTrxSub] = string(r.TrxSubType)
	row[colAssetType] = r.AssetType
	row[colUSD] = decString(r.USDAmount)
	return row
}

// UnmarshalTrade converts a CSV row to a TradeRecord.
func UnmarshalTrade(record []string) (model.TradeRecord, error) {
	if len(record) != tradeFields {
		return model.TradeRecord{}, fmt.Errorf("expected %d fields, got %d", tradeFields, len(record))
	}

	r := model.TradeRecord{
		FromAccount: record[colFromAcct],
		ToAccount:   record[colToAcct],
		FromAsset:   record[colFromAsset],
		ToAsset:     record[colToAsset],
		FeeAsset:    record[colFeeAsset],
		TrxType:     model.TrxType(record[colTrxType]),
		TrxSubType:  model.TrxSubType(record[colTrxSub]),
		AssetType:   record[colAssetType],
	}

	var err error
	if record[colDatetime] != "" {
		r.Datetime, err = time.Parse(time.RFC3339, record[colDatetime])
		if err != nil {
			return model.TradeRecord{}, fmt.Errorf("parsing datetime %q: %w", record[colDatetime], err)
		}
	}
	for _, f := range []struct {
		name string
		col  int
		dst  **decimal.Decimal
	}{
		{"in_amount", colIn, &r.InAmount},
		{"out_amount", colOut, &r.OutAmount},
		{"fee_amount", colFeeAmount, &r.FeeAmount},
		{"fee_value", colFeeValue, &r.FeeValue},
		{"usd_amount", colUSD, &r.USDAmount},
	} {
		if *f.dst, err = parseDec(record[f.col]); err != nil {
			return model.TradeRecord{}, fmt.Errorf("parsing %s %q: %w", f.name, record[f.col], err)
		}
	}
	return r, nil
}

// MarshalBalance converts a BalanceRecord to a CSV row.
func MarshalBalance(r model.BalanceRecord) []string {
	row := make([]string, balanceFields)
	row[colBalDate] = r.Date.Format(dateFormat)
	row[colBalInst] = r.Institution
	row[colBalAccount] = r.AccountName
	row[colBalance] = money(r.Balance)
	return row
}

// UnmarshalBalance converts a CSV row to a BalanceRecord.
func UnmarshalBalance(record []string) (model.BalanceRecord, error) {
	if len(record) != balanceFields {
		return model.BalanceRecord{}, fmt.Errorf("expected %d fields, got %d", balanceFields, len(record))
	}
	d, err := time.Parse(dateFormat, record[colBalDate])
	if err != nil {
		return model.BalanceRecord{}, fmt.Errorf("parsing date %q: %w", record[colBalDate], err)
	}
	bal, err := decimal.NewFromString(record[colBalance])
	if err != nil {
		return model.BalanceRecord{}, fmt.Errorf("parsing balance %q: %w", record[colBalance], err)
	}
	return model.BalanceRecord{
		Date:        d,
		Institution: record[colBalInst],
		AccountName: record[colBalAccount],
		Balance:     bal,
	}, nil
}

// readRows reads a core file and decodes every row after the header.
func readRows[T any](r io.Reader, fields int, decode func([]string) (T, error)) ([]T, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	out := make([]T, 0, len(records)-1)
	for i, rec := range records[1:] {
		v, err := decode(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadExpenses reads an expense core file, header included.
func ReadExpenses(r io.Reader) ([]model.ExpenseRecord, error) {
	return readRows(r, expenseFields, UnmarshalExpense)
}

// ReadTrades reads a trade core file, header included.
func ReadTrades(r io.Reader) ([]model.TradeRecord, error) {
	return readRows(r, tradeFields, UnmarshalTrade)
}

// ReadBalances reads a balance core file, header included.
func ReadBalances(r io.Reader) ([]model.BalanceRecord, error) {
	return readRows(r, balanceFields, UnmarshalBalance)
}

// appendRows writes rows to w without a header.
func appendRows[T any](w io.Writer, recs []T, encode func(T) []string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, r := range recs {
		if err := cw.Write(encode(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// money formats d with at least two decimal places and never rounds.
func money(d decimal.Decimal) string {
	places := int32(2)
	if e := -d.Exponent(); e > places {
		places = e
	}
	return d.StringFixed(places)
}

func decString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func parseDec(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
