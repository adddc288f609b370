package institution

import (
	"regexp"
	"strings"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

var (
	wellsFargoCreditTransfer = regexp.MustCompile(`AUTOMATIC PAYMENT - THANK`)
	wellsFargoDebitTransfer  = regexp.MustCompile(`AUTOMATIC PAYMENT - THANK|ONLINE ACH PAYMENT THANK YOU`)
)

func wellsFargoCredit(raw *table.Table, account string) (Result, error) {
	return wellsFargo(raw, account, model.ServiceCredit, wellsFargoCreditTransfer)
}

func wellsFargoDebit(raw *table.Table, account string) (Result, error) {
	return wellsFargo(raw, account, model.ServiceDebit, wellsFargoDebitTransfer)
}

// wellsFargo handles the headerless Wells Fargo export. The two services
// differ only in which payment phrasings count as transfers.
func wellsFargo(raw *table.Table, account string, svc model.ServiceKind, transfer *regexp.Regexp) (Result, error) {
	if err := requireColumns(raw, "Date", "Amount", "Description"); err != nil {
		return Result{}, err
	}

	recs := make([]model.ExpenseRecord, raw.Len())
	for i := range recs {
		r := expense("Wells Fargo", account, svc)
		desc, ok := text(raw, i, "Description")
		r.Description = strings.TrimSpace(desc)
		setAmount(&r, raw.Value(i, "Amount"), false)
		setDate(&r, raw.Value(i, "Date"))
		r.IsTransfer = classifyByPattern(transfer, r.Description, ok)
		recs[i] = r
	}
	return keepAll(raw, recs), nil
}
