package institution

import (
	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

// soFiDebit handles SoFi checking and savings exports. The Type column
// doubles as the institution category.
func soFiDebit(raw *table.Table, account string) (Result, error) {
	if err := requireColumns(raw, "Date", "Description", "Type", "Amount"); err != nil {
		return Result{}, err
	}

	recs := make([]model.ExpenseRecord, raw.Len())
	for i := range recs {
		r := expense("SoFi", account, model.ServiceDebit)
		r.Description, _ = text(raw, i, "Description")
		setAmount(&r, raw.Value(i, "Amount"), false)
		setDate(&r, raw.Value(i, "Date"))

		typ, ok := text(raw, i, "Type")
		if ok {
			r.InstitutionCategory = &typ
		}
		switch {
		case !ok:
			r.IsTransfer = model.ClassConsider
		case typ == "Withdrawal" || typ == "Deposit":
			r.IsTransfer = model.ClassTransfer
		default:
			r.IsTransfer = model.ClassExpense
		}
		recs[i] = r
	}
	return keepAll(raw, recs), nil
}
