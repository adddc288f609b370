package institution

import (
	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

// citiCredit handles Citi card exports. Debit holds charges and Credit holds
// payments; which one is filled decides both the sign and the class.
func citiCredit(raw *table.Table, account string) (Result, error) {
	if err := requireColumns(raw, "Date", "Description", "Debit", "Credit"); err != nil {
		return Result{}, err
	}

	recs := make([]model.ExpenseRecord, raw.Len())
	for i := range recs {
		r := expense("Citi", account, model.ServiceCredit)
		r.Description, _ = text(raw, i, "Description")
		setDate(&r, raw.Value(i, "Date"))

		debit, credit := raw.Value(i, "Debit"), raw.Value(i, "Credit")
		if debit != nil {
			setAmount(&r, debit, true)
		} else {
			setAmount(&r, credit, false)
		}
		switch {
		case credit != nil:
			r.IsTransfer = model.ClassTransfer
		case debit != nil:
			r.IsTransfer = model.ClassExpense
		default:
			r.IsTransfer = model.ClassConsider
		}
		recs[i] = r
	}
	return keepAll(raw, recs), nil
}
