package importer

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

// ExpenseTable lays expense records out under the canonical expense header.
// Unparsed amounts and dates become nulls.
func ExpenseTable(recs []model.ExpenseRecord) *table.Table {
	t := table.New(model.ExpenseColumns...)
	for _, r := range recs {
		var amount any
		if r.AmountValid {
			amount = r.Amount
		}
		// Appending a row of the header's width cannot fail.
		_ = t.Append(
			r.Description,
			amount,
			timeCell(r.Date),
			r.Institution,
			r.AccountName,
			strCell(r.InstitutionCategory),
			strCell(r.MyCategory),
			string(r.IsTransfer),
			r.IsValid,
			r.Service.String(),
			strCell(r.Notes),
		)
	}
	return t
}

// TradeTable lays trade records out under the canonical trade header.
func TradeTable(recs []model.TradeRecord) *table.Table {
	t := table.New(model.TradeColumns...)
	for _, r := range recs {
		_ = t.Append(
			timeCell(r.Datetime),
			emptyNull(r.FromAccount),
			emptyNull(r.ToAccount),
			emptyNull(r.FromAsset),
			emptyNull(r.ToAsset),
			decCell(r.InAmount),
			decCell(r.OutAmount),
			emptyNull(r.FeeAsset),
			decCell(r.FeeAmount),
			decCell(r.FeeValue),
			emptyNull(string(r.TrxType)),
			emptyNull(string(r.TrxSubType)),
			emptyNull(r.AssetType),
			decCell(r.USDAmount),
		)
	}
	return t
}

// BalanceTable lays balance records out under the canonical balance header.
func BalanceTable(recs []model.BalanceRecord) *table.Table {
	t := table.New(model.BalanceColumns...)
	for _, r := range recs {
		_ = t.Append(timeCell(r.Date), r.Institution, r.AccountName, r.Balance)
	}
	return t
}

func timeCell(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func strCell(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func emptyNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func decCell(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}

func sortedNames[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
