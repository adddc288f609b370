package institution

import (
	"regexp"
	"strings"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

var samsClubTransfer = regexp.MustCompile(`AUTOMATIC PAYMENT - THANK YOU`)

func samsClubCredit(raw *table.Table, account string) (Result, error) {
	if err := requireColumns(raw, "Transaction Date", "Description", "Amount"); err != nil {
		return Result{}, err
	}

	recs := make([]model.ExpenseRecord, raw.Len())
	for i := range recs {
		r := expense("SamsClub", account, model.ServiceCredit)
		desc, ok := text(raw, i, "Description")
		r.Description = strings.TrimSpace(desc)
		setAmount(&r, raw.Value(i, "Amount"), false)
		setDate(&r, raw.Value(i, "Transaction Date"))
		r.IsTransfer = classifyByPattern(samsClubTransfer, desc, ok)
		recs[i] = r
	}
	return keepAll(raw, recs), nil
}
