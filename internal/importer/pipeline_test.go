package importer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/mymoney/internal/institution"
	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
	"github.com/cleared-dev/mymoney/internal/validate"
)

func newPipeline(log zerolog.Logger) *Pipeline {
	return NewPipeline(DefaultSignatures(), institution.DefaultRegistry(), log)
}

func TestPipeline_RunFile(t *testing.T) {
	path := copyFixture(t, "chase_checking.csv", t.TempDir(), "checking.csv")

	b, err := newPipeline(zerolog.Nop()).RunFile(path, "")
	require.NoError(t, err)
	require.Len(t, b.Results, 1)
	assert.Empty(t, b.Skipped)

	td := b.Results[0]
	assert.Equal(t, "chase", td.Institution)
	assert.Equal(t, model.ServiceDebit, td.Service)
	assert.Equal(t, model.OutExpense, td.Out)
	assert.Equal(t, "checking", td.Account)
	assert.Equal(t, 6, td.Rows())
	assert.Equal(t, 0, td.Invalid())
	assert.Equal(t, time.Date(2025, 1, 22, 0, 0, 0, 0, time.UTC), td.LastDate())

	assert.Equal(t, model.ExpenseColumns, td.Canonical.Columns())
	assert.True(t, td.Sanity.HasColumn("Check or Slip #"))
	assert.True(t, td.Sanity.HasColumn(table.DerivedPrefix+"IsTransfer"))
	assert.Equal(t, len(model.ExpenseColumns)+7, td.Sanity.Width())

	classes := make([]model.TransferClass, len(td.Expenses))
	for i, r := range td.Expenses {
		classes[i] = r.IsTransfer
		assert.True(t, r.IsValid)
		assert.Equal(t, true, td.Canonical.Value(i, "IsValid"))
	}
	assert.Equal(t, []model.TransferClass{
		model.ClassExpense, model.ClassTransfer, model.ClassTransfer,
		model.ClassExpense, model.ClassExpense, model.ClassConsider,
	}, classes)
	assert.Equal(t, "transfer", td.Canonical.Value(1, "IsTransfer"))
}

func TestPipeline_ProjectionIsIdempotent(t *testing.T) {
	path := copyFixture(t, "chase_checking.csv", t.TempDir(), "checking.csv")
	b, err := newPipeline(zerolog.Nop()).RunFile(path, "")
	require.NoError(t, err)

	canonical := b.Results[0].Canonical
	again := table.Project(canonical)
	assert.Equal(t, canonical.Columns(), again.Columns())
	for i := 0; i < canonical.Len(); i++ {
		assert.Equal(t, canonical.Row(i), again.Row(i))
	}
}

func TestPipeline_InvalidRowsAreFlagged(t *testing.T) {
	var buf bytes.Buffer
	path := writeFile(t, t.TempDir(), "checking.csv", `Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
DEBIT,01/03/2025,GITHUB,-4.00,ACH_DEBIT,4996.00,
DEBIT,NOTADATE,BROKEN DATE,-1.00,ACH_DEBIT,4995.00,
DEBIT,01/05/2025,BROKEN AMOUNT,n/a,ACH_DEBIT,4995.00,
`)
	b, err := newPipeline(zerolog.New(&buf)).RunFile(path, "")
	require.NoError(t, err)

	td := b.Results[0]
	assert.Equal(t, []bool{true, false, false}, td.Valid)
	assert.Equal(t, 2, td.Invalid())
	assert.False(t, td.Expenses[1].IsValid)
	assert.Equal(t, false, td.Canonical.Value(2, "IsValid"))
	assert.Nil(t, td.Canonical.Value(2, "Amount"))
	assert.Contains(t, buf.String(), "regex")
}

func TestPipeline_Run(t *testing.T) {
	dir := t.TempDir()
	copyFixture(t, "chase_checking.csv", dir, "checking.csv")
	copyFixture(t, "uphold.csv", dir, "uphold.csv")
	copyFixture(t, "chase_checking.csv", dir, "joint/checking.csv")
	mystery := writeFile(t, dir, "mystery.csv", "Foo,Bar\n1,2\n")
	writeFile(t, dir, "notes.txt", "hello\n")

	b, err := newPipeline(zerolog.Nop()).Run(dir)
	require.NoError(t, err)
	require.Len(t, b.Results, 3)
	assert.Equal(t, []string{mystery}, b.Skipped)

	assert.Len(t, b.Expenses(), 12)
	assert.Len(t, b.Trades(), 3)
	assert.Empty(t, b.Balances())

	expenses, err := b.Table(model.OutExpense)
	require.NoError(t, err)
	assert.Equal(t, 12, expenses.Len())
	assert.Equal(t, model.ExpenseColumns, expenses.Columns())

	trades, err := b.Table(model.OutTrade)
	require.NoError(t, err)
	assert.Equal(t, 3, trades.Len())
	assert.Equal(t, "Brave", trades.Value(0, "FromAccount"))

	balances, err := b.Table(model.OutBalance)
	require.NoError(t, err)
	assert.Equal(t, 0, balances.Len())
	assert.Equal(t, model.BalanceColumns, balances.Columns())

	for _, td := range b.Results {
		if td.Out == model.OutTrade {
			assert.Equal(t, 0, td.Invalid())
		}
	}
}

func TestPipeline_RunAs(t *testing.T) {
	path := copyFixture(t, "wellsfargo.csv", t.TempDir(), "card.csv")

	b, err := newPipeline(zerolog.Nop()).RunAs(path, "wellsfargo", model.ServiceCredit, "visa")
	require.NoError(t, err)
	td := b.Results[0]
	assert.Equal(t, model.ServiceCredit, td.Service)
	assert.Equal(t, "visa", td.Account)
	// The credit card phrasing list does not include ACH payments.
	assert.Equal(t, model.ClassExpense, td.Expenses[1].IsTransfer)
	assert.Equal(t, model.ClassTransfer, td.Expenses[2].IsTransfer)
	assert.Equal(t, model.ServiceCredit, td.Expenses[0].Service)
	assert.Equal(t, 0, td.Invalid())
}

func TestPipeline_BaseReimport(t *testing.T) {
	path := writeFile(t, t.TempDir(), "expense.csv", `Description,Amount,Date,Institution,AccountName,InstitutionCategory,MyCategory,IsTransfer,IsValid,Service,Notes
SAFEWAY,-42.50,2025-01-15,Chase,freedom,Groceries,Food,expense,true,credit,
`)
	b, err := newPipeline(zerolog.Nop()).RunFile(path, "")
	require.NoError(t, err)
	require.Len(t, b.Results, 1)

	td := b.Results[0]
	assert.Equal(t, "base", td.Institution)
	assert.Equal(t, model.ServiceBase, td.Service)
	assert.Equal(t, model.OutExpense, td.Out)
	assert.Equal(t, "freedom", td.Expenses[0].AccountName)
	assert.True(t, td.Expenses[0].IsValid)
}

func TestPipeline_UnsupportedInstitution(t *testing.T) {
	sigs, err := ParseSignatures([]byte(`
institutions:
  - name: acme
    services:
      - service: debit
        columns: [When, What, HowMuch]
`))
	require.NoError(t, err)
	path := writeFile(t, t.TempDir(), "acme.csv", "When,What,HowMuch\n2025-01-01,x,1\n")

	p := NewPipeline(sigs, institution.DefaultRegistry(), zerolog.Nop())
	_, err = p.RunFile(path, "")
	var uie *institution.UnsupportedInstitutionError
	require.ErrorAs(t, err, &uie)
	assert.Equal(t, "acme", uie.Institution)
	assert.Contains(t, err.Error(), "register an adapter")
}

func TestPipeline_NoRulesGivesAllValid(t *testing.T) {
	doc := `
institutions:
  - name: chase
    services:
      - service: debit
        columns: [Details, Posting Date, Description, Amount, Type, Balance, "Check or Slip #"]
`
	sigs, err := ParseSignatures([]byte(doc))
	require.NoError(t, err)
	path := writeFile(t, t.TempDir(), "checking.csv", `Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
DEBIT,NOTADATE,BROKEN DATE,-1.00,ACH_DEBIT,4995.00,
DEBIT,01/05/2025,OK,-1.00,ACH_DEBIT,4995.00,
`)
	p := NewPipeline(sigs, institution.DefaultRegistry(), zerolog.Nop())
	b, err := p.RunFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, b.Results[0].Valid)
}

func TestPipeline_StrictSchema(t *testing.T) {
	content := strings.Repeat("You can use this transaction report\n", 7) + `Timestamp,Transaction Type,Asset,Quantity Transacted,Spot Price Currency,Spot Price at Transaction,Subtotal,Total (inclusive of fees and/or spread),Fees and/or Spread,Notes
2025-01-15T10:00:00Z,Buy,BTC,lots,USD,40000,400.00,405.00,5.00,Bought BTC
`
	path := writeFile(t, t.TempDir(), "coinbase.csv", content)

	_, err := newPipeline(zerolog.Nop()).RunFile(path, "")
	var verr *validate.ViolationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Quantity Transacted", verr.Column)
}
