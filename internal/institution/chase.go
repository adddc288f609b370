package institution

import (
	"regexp"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

// chaseCredit handles Chase card exports. The Type column says whether a
// row is a purchase or a card payment.
func chaseCredit(raw *table.Table, account string) (Result, error) {
	if err := requireColumns(raw, "Transaction Date", "Description", "Category", "Type", "Amount"); err != nil {
		return Result{}, err
	}

	recs := make([]model.ExpenseRecord, raw.Len())
	for i := range recs {
		r := expense("Chase", account, model.ServiceCredit)
		r.Description, _ = text(raw, i, "Description")
		setAmount(&r, raw.Value(i, "Amount"), false)
		setDate(&r, raw.Value(i, "Transaction Date"))
		if cat, ok := text(raw, i, "Category"); ok {
			r.InstitutionCategory = &cat
		}
		typ, _ := text(raw, i, "Type")
		switch typ {
		case "Sale":
			r.IsTransfer = model.ClassExpense
		case "Payment":
			r.IsTransfer = model.ClassTransfer
		default:
			r.IsTransfer = model.ClassConsider
		}
		recs[i] = r
	}
	return keepAll(raw, recs), nil
}

// chaseTransferTypes are checking Type codes that move money between the
// owner's own accounts.
var chaseTransferTypes = map[string]bool{
	"ACCT_XFER": true,
	"LOAN_PMT":  true,
}

var chaseDebitTransfer = regexp.MustCompile(`(?i)PAYMENT TO CHASE CARD|ONLINE TRANSFER|AUTOPAY`)

// chaseDebit handles Chase checking exports
// (Details, Posting Date, Description, Amount, Type, Balance, Check or Slip #).
func chaseDebit(raw *table.Table, account string) (Result, error) {
	if err := requireColumns(raw, "Details", "Posting Date", "Description", "Amount", "Type"); err != nil {
		return Result{}, err
	}

	recs := make([]model.ExpenseRecord, raw.Len())
	for i := range recs {
		r := expense("Chase", account, model.ServiceDebit)
		r.Description, _ = text(raw, i, "Description")
		setAmount(&r, raw.Value(i, "Amount"), false)
		setDate(&r, raw.Value(i, "Posting Date"))
		if check, ok := text(raw, i, "Check or Slip #"); ok {
			r.Notes = model.StrPtr("check " + check)
		}

		typ, ok := text(raw, i, "Type")
		if ok {
			r.InstitutionCategory = &typ
		}
		switch {
		case !ok:
			r.IsTransfer = model.ClassConsider
		case chaseTransferTypes[typ] || chaseDebitTransfer.MatchString(r.Description):
			r.IsTransfer = model.ClassTransfer
		default:
			r.IsTransfer = model.ClassExpense
		}
		recs[i] = r
	}
	return keepAll(raw, recs), nil
}
