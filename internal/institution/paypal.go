package institution

import (
	"regexp"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

// Authorizations and orders are later repeated as the settled payment.
var payPalRedundant = regexp.MustCompile(`Authorization|Order`)

// payPalThirdParty handles PayPal activity exports.
func payPalThirdParty(raw *table.Table, account string) (Result, error) {
	if err := requireColumns(raw, "Date", "Name", "Type", "Amount"); err != nil {
		return Result{}, err
	}

	recs := make([]model.ExpenseRecord, raw.Len())
	for i := range recs {
		r := expense("PayPal", account, model.ServiceThirdParty)
		name, hasName := text(raw, i, "Name")
		typ, hasType := text(raw, i, "Type")
		if hasName {
			r.Description = name + ": " + textOr(raw, i, "Type")
		} else {
			r.Description = textOr(raw, i, "Type")
		}
		setAmount(&r, raw.Value(i, "Amount"), false)
		setDate(&r, raw.Value(i, "Date"))

		switch {
		case !hasType:
			r.IsTransfer = model.ClassConsider
		case payPalRedundant.MatchString(typ):
			r.IsTransfer = model.ClassRedundant
		case !hasName:
			r.IsTransfer = model.ClassTransfer
		default:
			r.IsTransfer = model.ClassExpense
		}
		recs[i] = r
	}
	return keepAll(raw, recs), nil
}
