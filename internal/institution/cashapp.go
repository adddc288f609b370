package institution

import (
	"strings"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

// cashAppThirdParty handles Cash App activity exports. The Status column
// decides the class; Transaction Type shapes the description.
func cashAppThirdParty(raw *table.Table, account string) (Result, error) {
	if err := requireColumns(raw, "Date", "Transaction Type", "Amount", "Status", "Notes", "Name of sender/receiver"); err != nil {
		return Result{}, err
	}

	recs := make([]model.ExpenseRecord, raw.Len())
	for i := range recs {
		r := expense("CashApp", account, model.ServiceThirdParty)
		r.Description = cashAppDescription(raw, i)
		setAmount(&r, raw.Value(i, "Amount"), false)
		setDate(&r, raw.Value(i, "Date"))

		status, _ := text(raw, i, "Status")
		switch status {
		case "PAYMENT REVERSED":
			r.IsTransfer = model.ClassRedundant
		case "TRANSFER SENT":
			r.IsTransfer = model.ClassTransfer
		case "PAYMENT SENT", "PAYMENT DEPOSITED":
			r.IsTransfer = model.ClassExpense
		default:
			r.IsTransfer = model.ClassConsider
		}
		recs[i] = r
	}
	return keepAll(raw, recs), nil
}

func cashAppDescription(t *table.Table, i int) string {
	var notes string
	if n, ok := text(t, i, "Notes"); ok {
		notes = " (" + n + ")"
	}
	who := textOr(t, i, "Name of sender/receiver")

	typ, _ := text(t, i, "Transaction Type")
	var out string
	switch typ {
	case "Sent P2P":
		out = "Me -> " + who + notes
	case "Received P2P":
		out = "From " + who + " -> Me" + notes
	case "Cash out":
		out = "Cash out"
	default:
		out = "Consider"
	}
	return strings.TrimSpace(out)
}
