package institution

import (
	"regexp"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

var (
	capitalOneCreditTransfer = regexp.MustCompile(`PAYPAL|CAPITAL ONE \w* PYMT`)
	capitalOneDebitTransfer  = regexp.MustCompile(
		`VENMO|DISCOVER|AMEX|WELLS FARGO|PAYPAL|CITI CARD|` +
			`CAPITAL ONE [\w\s]*PMT|SOFI [\w\s\.]* CARD PAYMT|` +
			`360 Checking`)
)

// capitalOneCredit handles card exports with separate Debit and Credit
// columns. A row with no Debit is a credit to the card.
func capitalOneCredit(raw *table.Table, account string) (Result, error) {
	if err := requireColumns(raw, "Transaction Date", "Card No.", "Description", "Category", "Debit", "Credit"); err != nil {
		return Result{}, err
	}

	recs := make([]model.ExpenseRecord, raw.Len())
	for i := range recs {
		r := expense("Capital One", account, model.ServiceCredit)
		desc, ok := text(raw, i, "Description")
		r.Description = desc
		if debit := raw.Value(i, "Debit"); debit != nil {
			setAmount(&r, debit, true)
		} else {
			setAmount(&r, raw.Value(i, "Credit"), false)
		}
		setDate(&r, raw.Value(i, "Transaction Date"))
		if cat, ok := text(raw, i, "Category"); ok {
			r.InstitutionCategory = &cat
		}
		if card, ok := text(raw, i, "Card No."); ok {
			r.Notes = model.StrPtr("card " + card)
		}
		r.IsTransfer = classifyByPattern(capitalOneCreditTransfer, desc, ok)
		recs[i] = r
	}
	return keepAll(raw, recs), nil
}

// capitalOneDebit handles checking and savings exports. Amounts are already
// signed.
func capitalOneDebit(raw *table.Table, account string) (Result, error) {
	if err := requireColumns(raw, "Account Number", "Transaction Date", "Transaction Amount", "Transaction Description"); err != nil {
		return Result{}, err
	}

	recs := make([]model.ExpenseRecord, raw.Len())
	for i := range recs {
		r := expense("Capital One", account, model.ServiceDebit)
		desc, ok := text(raw, i, "Transaction Description")
		r.Description = desc
		setAmount(&r, raw.Value(i, "Transaction Amount"), false)
		setDate(&r, raw.Value(i, "Transaction Date"))
		if num, ok := text(raw, i, "Account Number"); ok {
			r.Notes = model.StrPtr("account " + num)
		}
		r.IsTransfer = classifyByPattern(capitalOneDebitTransfer, desc, ok)
		recs[i] = r
	}
	return keepAll(raw, recs), nil
}
