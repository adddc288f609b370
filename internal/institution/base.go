package institution

import (
	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
	"github.com/cleared-dev/mymoney/internal/validate"
)

// baseImport re-reads a table already in canonical form, such as an earlier
// export of the store. The canonical header decides which records it holds.
func baseImport(raw *table.Table, _ string) (Result, error) {
	cols := raw.Columns()
	switch {
	case validate.CheckColumns(cols, model.ExpenseColumns, validate.MatchSuperset) == nil:
		return Result{Raw: raw.Clone(), Expenses: baseExpenses(raw)}, nil
	case validate.CheckColumns(cols, model.TradeColumns, validate.MatchSuperset) == nil:
		return Result{Raw: raw.Clone(), Trades: baseTrades(raw)}, nil
	case validate.CheckColumns(cols, model.BalanceColumns, validate.MatchSuperset) == nil:
		return Result{Raw: raw.Clone(), Balances: baseBalances(raw)}, nil
	}
	return Result{}, requireColumns(raw, model.ExpenseColumns...)
}

func baseExpenses(raw *table.Table) []model.ExpenseRecord {
	recs := make([]model.ExpenseRecord, raw.Len())
	for i := range recs {
		r := model.ExpenseRecord{
			Description: textOrEmpty(raw, i, "Description"),
			Institution: textOrEmpty(raw, i, "Institution"),
			AccountName: textOrEmpty(raw, i, "AccountName"),
		}
		setAmount(&r, raw.Value(i, "Amount"), false)
		setDate(&r, raw.Value(i, "Date"))
		if s, ok := text(raw, i, "InstitutionCategory"); ok {
			r.InstitutionCategory = &s
		}
		if s, ok := text(raw, i, "MyCategory"); ok {
			r.MyCategory = &s
		}
		if s, ok := text(raw, i, "IsTransfer"); ok {
			r.IsTransfer = model.TransferClass(s)
		} else {
			r.IsTransfer = model.ClassConsider
		}
		if s, ok := text(raw, i, "Service"); ok {
			// Unknown names stay base, which no expense rule accepts.
			r.Service, _ = model.ParseServiceKind(s)
		}
		if s, ok := text(raw, i, "Notes"); ok {
			r.Notes = &s
		}
		recs[i] = r
	}
	return recs
}

func baseTrades(raw *table.Table) []model.TradeRecord {
	recs := make([]model.TradeRecord, raw.Len())
	for i := range recs {
		r := model.TradeRecord{
			TrxType:    model.TrxType(textOrEmpty(raw, i, "TrxType")),
			TrxSubType: model.TrxSubType(textOrEmpty(raw, i, "TrxSubType")),
			InAmount:   optionalDecimal(raw.Value(i, "InAmount")),
			OutAmount:  optionalDecimal(raw.Value(i, "OutAmount")),
			FeeAmount:  optionalDecimal(raw.Value(i, "FeeAmount")),
			FeeValue:   optionalDecimal(raw.Value(i, "FeeValue")),
			USDAmount:  optionalDecimal(raw.Value(i, "USDAmount")),
		}
		r.Datetime, _ = timestamp(raw.Value(i, "Datetime"))
		r.FromAccount = textOrEmpty(raw, i, "FromAccount")
		r.ToAccount = textOrEmpty(raw, i, "ToAccount")
		r.FromAsset = textOrEmpty(raw, i, "FromAsset")
		r.ToAsset = textOrEmpty(raw, i, "ToAsset")
		r.FeeAsset = textOrEmpty(raw, i, "FeeAsset")
		r.AssetType = textOrEmpty(raw, i, "AssetType")
		recs[i] = r
	}
	return recs
}

func baseBalances(raw *table.Table) []model.BalanceRecord {
	recs := make([]model.BalanceRecord, raw.Len())
	for i := range recs {
		r := model.BalanceRecord{
			Institution: textOrEmpty(raw, i, "Institution"),
			AccountName: textOrEmpty(raw, i, "AccountName"),
		}
		r.Date, _ = date(raw.Value(i, "Date"))
		r.Balance, _ = amount(raw.Value(i, "Balance"))
		recs[i] = r
	}
	return recs
}

func textOrEmpty(raw *table.Table, i int, col string) string {
	s, _ := text(raw, i, col)
	return s
}
