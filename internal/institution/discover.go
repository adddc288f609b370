package institution

import (
	"regexp"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

var discoverTransfer = regexp.MustCompile(`PAYPAL`)

const discoverPayment = "INTERNET PAYMENT - THANK YOU"

// discoverCredit handles Discover card exports. Charges are positive in the
// export and are negated.
func discoverCredit(raw *table.Table, account string) (Result, error) {
	if err := requireColumns(raw, "Trans. Date", "Description", "Amount", "Category"); err != nil {
		return Result{}, err
	}

	recs := make([]model.ExpenseRecord, raw.Len())
	for i := range recs {
		r := expense("Discover", account, model.ServiceCredit)
		desc, ok := text(raw, i, "Description")
		r.Description = desc
		setAmount(&r, raw.Value(i, "Amount"), true)
		setDate(&r, raw.Value(i, "Trans. Date"))
		if cat, ok := text(raw, i, "Category"); ok {
			r.InstitutionCategory = &cat
		}
		switch {
		case !ok:
			r.IsTransfer = model.ClassConsider
		case desc == discoverPayment || discoverTransfer.MatchString(desc):
			r.IsTransfer = model.ClassTransfer
		default:
			r.IsTransfer = model.ClassExpense
		}
		recs[i] = r
	}
	return keepAll(raw, recs), nil
}
