package institution

import (
	"regexp"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

var amexTransfer = regexp.MustCompile(`PAYPAL|\w* PAYMENT - THANK YOU`)

// amexCredit handles AmEx card exports. AmEx reports charges as positive
// amounts, so the sign is flipped.
func amexCredit(raw *table.Table, account string) (Result, error) {
	if err := requireColumns(raw, "Date", "Description", "Amount", "Category"); err != nil {
		return Result{}, err
	}

	recs := make([]model.ExpenseRecord, raw.Len())
	for i := range recs {
		r := expense("AmEx", account, model.ServiceCredit)
		desc, ok := text(raw, i, "Description")
		r.Description = desc
		setAmount(&r, raw.Value(i, "Amount"), true)
		setDate(&r, raw.Value(i, "Date"))
		if cat, ok := text(raw, i, "Category"); ok {
			r.InstitutionCategory = &cat
		}
		r.IsTransfer = classifyByPattern(amexTransfer, desc, ok)
		recs[i] = r
	}
	return keepAll(raw, recs), nil
}
