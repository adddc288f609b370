package institution

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
	"github.com/cleared-dev/mymoney/internal/validate"
)

// requireColumns fails when raw lacks any of cols.
func requireColumns(raw *table.Table, cols ...string) error {
	if err := validate.CheckColumns(raw.Columns(), cols, validate.MatchSuperset); err != nil {
		return fmt.Errorf("raw table: %w", err)
	}
	return nil
}

// text returns the cell as text; ok is false for nulls.
func text(raw *table.Table, i int, col string) (string, bool) {
	return raw.Str(i, col)
}

// textOr returns the cell as text, or "nan" for nulls, matching how missing
// values read inside composed descriptions.
func textOr(raw *table.Table, i int, col string) string {
	if s, ok := raw.Str(i, col); ok {
		return s
	}
	return "nan"
}

// amountCleaner removes currency decoration before parsing.
var amountCleaner = strings.NewReplacer("$", "", ",", "", " ", "")

// amount parses a money cell. Numbers are taken as is; text may carry a
// currency sign, thousands separators and a leading plus.
func amount(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Decimal{}, false
	case decimal.Decimal:
		return x, true
	case float64:
		return decimal.NewFromFloat(x), true
	case int64:
		return decimal.NewFromInt(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case string:
		s := strings.TrimPrefix(amountCleaner.Replace(x), "+")
		if s == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	return decimal.Decimal{}, false
}

var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05 -0700",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// timestamp parses a date or datetime cell. Times without a zone are UTC.
func timestamp(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), true
	case string:
		s := strings.TrimSpace(x)
		// Drop a trailing zone name such as "(Coordinated Universal Time)".
		if i := strings.Index(s, " ("); i > 0 {
			s = s[:i]
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// date parses a calendar date cell.
func date(v any) (time.Time, bool) {
	t, ok := timestamp(v)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// expense starts a record with the fields every expense adapter sets the
// same way.
func expense(institution, account string, service model.ServiceKind) model.ExpenseRecord {
	return model.ExpenseRecord{
		Institution: institution,
		AccountName: account,
		Service:     service,
	}
}

// setAmount stores a parsed amount, negated when negate is set.
func setAmount(r *model.ExpenseRecord, v any, negate bool) {
	d, ok := amount(v)
	if !ok {
		return
	}
	if negate {
		d = d.Neg()
	}
	r.Amount, r.AmountValid = d, true
}

func setDate(r *model.ExpenseRecord, v any) {
	if d, ok := date(v); ok {
		r.Date = d
	}
}

// classifyByPattern returns transfer when desc matches re, expense when it
// does not, and consider when there is no description to match.
func classifyByPattern(re *regexp.Regexp, desc string, ok bool) model.TransferClass {
	if !ok {
		return model.ClassConsider
	}
	if re.MatchString(desc) {
		return model.ClassTransfer
	}
	return model.ClassExpense
}

// keepAll returns a Result over every raw row.
func keepAll(raw *table.Table, recs []model.ExpenseRecord) Result {
	return Result{Raw: raw.Clone(), Expenses: recs}
}

// optionalDecimal parses v into a pointer, nil when absent or malformed.
func optionalDecimal(v any) *decimal.Decimal {
	d, ok := amount(v)
	if !ok {
		return nil
	}
	return &d
}
