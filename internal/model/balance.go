package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceColumns is the canonical balance table header.
var BalanceColumns = []string{"Date", "Institution", "AccountName", "Balance"}

// BalanceRecord is a point-in-time account balance.
type BalanceRecord struct {
	Date        time.Time
	Institution string
	AccountName string
	Balance     decimal.Decimal
}
