package institution

import (
	"fmt"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

// venmoThirdParty handles Venmo statements. Statement rows without a
// Datetime are balance and footer lines and are dropped.
func venmoThirdParty(raw *table.Table, account string) (Result, error) {
	if err := requireColumns(raw, "Datetime", "Type", "Note", "From", "To", "Amount (total)", "Destination"); err != nil {
		return Result{}, err
	}

	kept := raw.Filter(func(i int) bool { return raw.Value(i, "Datetime") != nil })
	recs := make([]model.ExpenseRecord, kept.Len())
	for i := range recs {
		r := expense("Venmo", account, model.ServiceThirdParty)
		r.Description = venmoDescription(kept, i)
		setAmount(&r, kept.Value(i, "Amount (total)"), false)
		setDate(&r, kept.Value(i, "Datetime"))

		typ, _ := text(kept, i, "Type")
		switch typ {
		case "Standard Transfer":
			r.IsTransfer = model.ClassTransfer
		case "Payment", "Charge", "Merchant Transaction":
			r.IsTransfer = model.ClassExpense
		default:
			r.IsTransfer = model.ClassConsider
		}
		recs[i] = r
	}
	return Result{Raw: kept, Expenses: recs}, nil
}

func venmoDescription(t *table.Table, i int) string {
	from, to, note := textOr(t, i, "From"), textOr(t, i, "To"), textOr(t, i, "Note")
	typ := textOr(t, i, "Type")
	switch typ {
	case "Standard Transfer":
		return "transfer to " + textOr(t, i, "Destination")
	case "Merchant Transaction":
		return to
	case "Payment":
		return fmt.Sprintf("%s -> %s: %s", from, to, note)
	case "Charge":
		return fmt.Sprintf("%s -> %s: %s", to, from, note)
	}
	return fmt.Sprintf("Consider: %s: %s -> %s. (Type: %s)", note, from, to, typ)
}
