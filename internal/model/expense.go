package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferClass is the role an expense-table row plays.
type TransferClass string

const (
	ClassExpense   TransferClass = "expense"
	ClassTransfer  TransferClass = "transfer"
	ClassRedundant TransferClass = "redundant"
	// ClassConsider means the heuristic could not decide and a human must.
	ClassConsider TransferClass = "consider"
)

// TransferClasses lists every valid TransferClass.
var TransferClasses = []TransferClass{ClassExpense, ClassTransfer, ClassRedundant, ClassConsider}

// Valid reports whether c is one of the enumerated classes.
func (c TransferClass) Valid() bool {
	for _, v := range TransferClasses {
		if c == v {
			return true
		}
	}
	return false
}

// ExpenseColumns is the canonical expense table header.
var ExpenseColumns = []string{
	"Description", "Amount", "Date",
	"Institution", "AccountName",
	"InstitutionCategory", "MyCategory",
	"IsTransfer", "IsValid", "Service", "Notes",
}

// ExpenseRecord is one normalized row of a bank, card or payment-app export.
type ExpenseRecord struct {
	Description         string
	Amount              decimal.Decimal // negative = money out, positive = money in
	AmountValid         bool            // false when the raw amount could not be parsed
	Date                time.Time       // zero when the raw date could not be parsed
	Institution         string
	AccountName         string
	InstitutionCategory *string
	MyCategory          *string
	IsTransfer          TransferClass
	IsValid             bool
	Service             ServiceKind
	Notes               *string
}

// StrPtr returns a pointer to s, or nil when s is empty.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
