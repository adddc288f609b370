package institution

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
	"github.com/cleared-dev/mymoney/internal/validate"
)

func readCSV(t *testing.T, data string) *table.Table {
	t.Helper()
	tbl, err := table.Read(strings.NewReader(data), table.ParseOptions{})
	require.NoError(t, err)
	return tbl
}

func assertAmount(t *testing.T, want string, r model.ExpenseRecord) {
	t.Helper()
	require.True(t, r.AmountValid, "amount should parse for %q", r.Description)
	assert.True(t, decimal.RequireFromString(want).Equal(r.Amount), "want %s, got %s", want, r.Amount)
}

func assertDec(t *testing.T, want string, got *decimal.Decimal) {
	t.Helper()
	require.NotNil(t, got)
	assert.True(t, decimal.RequireFromString(want).Equal(*got), "want %s, got %s", want, got)
}

func TestRegistry_Lookup(t *testing.T) {
	r := DefaultRegistry()

	a, err := r.Lookup("AmEx", model.ServiceCredit)
	require.NoError(t, err)
	assert.NotNil(t, a)

	_, err = r.Lookup("amex", model.ServiceDebit)
	var svcErr *UnsupportedServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "amex", svcErr.Institution)

	_, err = r.Lookup("tdameritrade", model.ServiceExchange)
	var instErr *UnsupportedInstitutionError
	require.ErrorAs(t, err, &instErr)
	assert.Contains(t, err.Error(), "tdameritrade")
	assert.Contains(t, err.Error(), "register an adapter")
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register("amex", model.ServiceCredit, AdapterFunc(amexCredit))
	assert.Panics(t, func() {
		r.Register("AMEX", model.ServiceCredit, AdapterFunc(amexCredit))
	})
}

func TestRegistry_Services(t *testing.T) {
	svcs := DefaultRegistry().Services()
	assert.Contains(t, svcs, "chase/debit")
	assert.Contains(t, svcs, "venmo/thirdparty")
	assert.Contains(t, svcs, "uphold/exchange")
	assert.Len(t, svcs, 18)
}

func TestAdapters_MissingColumns(t *testing.T) {
	raw := readCSV(t, "Date,Description\n01/02/2025,X\n")
	_, err := amexCredit(raw, "gold")
	var dcn *validate.DifferentColumnNameError
	require.ErrorAs(t, err, &dcn)
	assert.Contains(t, dcn.Missing, "Amount")
}

func TestAmexCredit(t *testing.T) {
	raw := readCSV(t, `Date,Description,Amount,Category
01/15/2025,WHOLE FOODS,42.50,Groceries
01/20/2025,AUTOPAY PAYMENT - THANK YOU,-42.50,
01/21/2025,PAYPAL *SPOTIFY,9.99,Entertainment
01/22/2025,,1.00,
`)
	res, err := amexCredit(raw, "gold")
	require.NoError(t, err)
	recs := res.Expenses
	require.Len(t, recs, 4)
	assert.Equal(t, 4, res.Raw.Len())

	assertAmount(t, "-42.50", recs[0])
	assert.Equal(t, model.ClassExpense, recs[0].IsTransfer)
	assert.Equal(t, "AmEx", recs[0].Institution)
	assert.Equal(t, "gold", recs[0].AccountName)
	assert.Equal(t, model.ServiceCredit, recs[0].Service)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), recs[0].Date)
	require.NotNil(t, recs[0].InstitutionCategory)
	assert.Equal(t, "Groceries", *recs[0].InstitutionCategory)
	assert.Nil(t, recs[0].MyCategory)

	assertAmount(t, "42.50", recs[1])
	assert.Equal(t, model.ClassTransfer, recs[1].IsTransfer)
	assert.Nil(t, recs[1].InstitutionCategory)

	assert.Equal(t, model.ClassTransfer, recs[2].IsTransfer)
	assert.Equal(t, model.ClassConsider, recs[3].IsTransfer)
}

func TestCapitalOneCredit(t *testing.T) {
	raw := readCSV(t, `Transaction Date,Posted Date,Card No.,Description,Category,Debit,Credit
2025-01-15,2025-01-16,1234,GROCERY OUTLET,Groceries,42.50,
2025-01-20,2025-01-20,1234,CAPITAL ONE AUTOPAY PYMT,Payment/Credit,,42.50
2025-01-21,2025-01-21,1234,REFUND,Other,,
`)
	res, err := capitalOneCredit(raw, "quicksilver")
	require.NoError(t, err)
	recs := res.Expenses

	assertAmount(t, "-42.50", recs[0])
	assert.Equal(t, model.ClassExpense, recs[0].IsTransfer)
	require.NotNil(t, recs[0].Notes)
	assert.Equal(t, "card 1234", *recs[0].Notes)

	assertAmount(t, "42.50", recs[1])
	assert.Equal(t, model.ClassTransfer, recs[1].IsTransfer)

	assert.False(t, recs[2].AmountValid)
}

func TestCapitalOneDebit(t *testing.T) {
	raw := readCSV(t, `Account Number,Transaction Date,Transaction Amount,Transaction Type,Transaction Description,Balance
9876,01/15/25,-25.00,Debit,Deposit to 360 Checking,100.00
9876,01/16/25,-12.00,Debit,STARBUCKS,88.00
9876,01/17/25,-200.00,Debit,CAPITAL ONE MOBILE PMT,-112.00
`)
	res, err := capitalOneDebit(raw, "checking")
	require.NoError(t, err)
	recs := res.Expenses

	assertAmount(t, "-25.00", recs[0])
	assert.Equal(t, model.ClassTransfer, recs[0].IsTransfer)
	assert.Equal(t, model.ClassExpense, recs[1].IsTransfer)
	assert.Equal(t, model.ClassTransfer, recs[2].IsTransfer)
	assert.Equal(t, time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), recs[1].Date)
}

func TestChaseCredit(t *testing.T) {
	raw := readCSV(t, `Transaction Date,Post Date,Description,Category,Type,Amount,Memo
01/15/2025,01/16/2025,TRADER JOES,Groceries,Sale,-42.50,
01/20/2025,01/20/2025,AUTOMATIC PAYMENT - THANK,,Payment,42.50,
01/21/2025,01/21/2025,AMAZON,Shopping,Return,10.00,
`)
	res, err := chaseCredit(raw, "freedom")
	require.NoError(t, err)
	recs := res.Expenses

	assertAmount(t, "-42.50", recs[0])
	assert.Equal(t, model.ClassExpense, recs[0].IsTransfer)
	assertAmount(t, "42.50", recs[1])
	assert.Equal(t, model.ClassTransfer, recs[1].IsTransfer)
	assert.Equal(t, model.ClassConsider, recs[2].IsTransfer)
}

func TestChaseDebit(t *testing.T) {
	raw, err := table.ReadFile("testdata/chase_checking.csv", table.ParseOptions{})
	require.NoError(t, err)

	res, err := chaseDebit(raw, "checking")
	require.NoError(t, err)
	recs := res.Expenses
	require.Len(t, recs, 6)

	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", recs[0].Description)
	assertAmount(t, "-4.00", recs[0])
	assert.Equal(t, model.ClassExpense, recs[0].IsTransfer)
	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), recs[0].Date)
	require.NotNil(t, recs[0].InstitutionCategory)
	assert.Equal(t, "ACH_DEBIT", *recs[0].InstitutionCategory)

	assert.Equal(t, model.ClassTransfer, recs[1].IsTransfer, "ACCT_XFER")
	assert.Equal(t, model.ClassTransfer, recs[2].IsTransfer, "card payment")

	assert.Equal(t, "ACME CONSULTING INVOICE 1042", recs[3].Description)
	assertAmount(t, "3500.00", recs[3])
	assert.Equal(t, model.ClassExpense, recs[3].IsTransfer)

	require.NotNil(t, recs[4].Notes)
	assert.Equal(t, "check 1001", *recs[4].Notes)

	assert.Equal(t, model.ClassConsider, recs[5].IsTransfer, "missing Type")
	assert.Equal(t, time.Date(2025, 1, 22, 0, 0, 0, 0, time.UTC), recs[5].Date)
}

func TestChaseDebit_BadDate(t *testing.T) {
	raw := readCSV(t, "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\nDEBIT,NOTADATE,desc,-4.00,ACH_DEBIT,100.00,\n")
	res, err := chaseDebit(raw, "checking")
	require.NoError(t, err)
	assert.True(t, res.Expenses[0].Date.IsZero())
	assert.Equal(t, model.ClassExpense, res.Expenses[0].IsTransfer)
}

func TestCitiCredit(t *testing.T) {
	raw := readCSV(t, `Status,Date,Description,Debit,Credit
Cleared,01/15/2025,SHELL OIL,42.50,
Cleared,01/20/2025,ONLINE PAYMENT,,42.50
Pending,01/21/2025,UNKNOWN,,
`)
	res, err := citiCredit(raw, "double")
	require.NoError(t, err)
	recs := res.Expenses

	assertAmount(t, "-42.50", recs[0])
	assert.Equal(t, model.ClassExpense, recs[0].IsTransfer)
	assertAmount(t, "42.50", recs[1])
	assert.Equal(t, model.ClassTransfer, recs[1].IsTransfer)
	assert.False(t, recs[2].AmountValid)
	assert.Equal(t, model.ClassConsider, recs[2].IsTransfer)
}

func TestDiscoverCredit(t *testing.T) {
	raw := readCSV(t, `Trans. Date,Post Date,Description,Amount,Category
01/15/2025,01/16/2025,COSTCO,42.50,Warehouse Clubs
01/20/2025,01/20/2025,INTERNET PAYMENT - THANK YOU,-42.50,Payments and Credits
01/21/2025,01/21/2025,PAYPAL *EBAY,15.00,Merchandise
`)
	res, err := discoverCredit(raw, "it")
	require.NoError(t, err)
	recs := res.Expenses

	assertAmount(t, "-42.50", recs[0])
	assert.Equal(t, model.ClassExpense, recs[0].IsTransfer)
	assertAmount(t, "42.50", recs[1])
	assert.Equal(t, model.ClassTransfer, recs[1].IsTransfer)
	assert.Equal(t, model.ClassTransfer, recs[2].IsTransfer)
}

func TestPayPalThirdParty(t *testing.T) {
	raw := readCSV(t, `Date,Time,TimeZone,Name,Type,Status,Currency,Amount,Receipt ID,Balance
01/15/2025,10:00:00,PST,Spotify,Express Checkout Payment,Completed,USD,"-1,042.50",,0.00
01/15/2025,10:00:00,PST,,Bank Deposit to PP Account,Completed,USD,"1,042.50",,0.00
01/16/2025,10:00:00,PST,Shop,General Authorization,Pending,USD,-5.00,,0.00
01/17/2025,10:00:00,PST,Shop,,Pending,USD,-5.00,,0.00
`)
	res, err := payPalThirdParty(raw, "personal")
	require.NoError(t, err)
	recs := res.Expenses

	assert.Equal(t, "Spotify: Express Checkout Payment", recs[0].Description)
	assertAmount(t, "-1042.50", recs[0])
	assert.Equal(t, model.ClassExpense, recs[0].IsTransfer)

	assert.Equal(t, "Bank Deposit to PP Account", recs[1].Description)
	assertAmount(t, "1042.50", recs[1])
	assert.Equal(t, model.ClassTransfer, recs[1].IsTransfer)

	assert.Equal(t, model.ClassRedundant, recs[2].IsTransfer)
	assert.Equal(t, model.ClassConsider, recs[3].IsTransfer)
}

func TestSamsClubCredit(t *testing.T) {
	raw := readCSV(t, `Transaction Date,Posting Date,Reference Number,Description,Amount
01/15/2025,01/16/2025,111,  SAMS CLUB #123  ,-42.50
01/20/2025,01/20/2025,112,AUTOMATIC PAYMENT - THANK YOU,42.50
`)
	res, err := samsClubCredit(raw, "mastercard")
	require.NoError(t, err)
	recs := res.Expenses

	assert.Equal(t, "SAMS CLUB #123", recs[0].Description)
	assertAmount(t, "-42.50", recs[0])
	assert.Equal(t, model.ClassExpense, recs[0].IsTransfer)
	assert.Equal(t, model.ClassTransfer, recs[1].IsTransfer)
}

func TestSoFiDebit(t *testing.T) {
	raw := readCSV(t, `Date,Description,Type,Amount,Current balance,Status
2025-01-15,Payroll,Deposit,2000.00,2000.00,Posted
2025-01-16,Coffee,Debit Card,-4.50,1995.50,Posted
2025-01-17,Mystery,,-1.00,1994.50,Posted
`)
	res, err := soFiDebit(raw, "checking")
	require.NoError(t, err)
	recs := res.Expenses

	assert.Equal(t, model.ClassTransfer, recs[0].IsTransfer)
	require.NotNil(t, recs[0].InstitutionCategory)
	assert.Equal(t, "Deposit", *recs[0].InstitutionCategory)
	assertAmount(t, "-4.50", recs[1])
	assert.Equal(t, model.ClassExpense, recs[1].IsTransfer)
	assert.Equal(t, model.ClassConsider, recs[2].IsTransfer)
}

func TestWellsFargo(t *testing.T) {
	raw, err := table.Read(strings.NewReader(`"01/15/2025","-42.50","*","","PURCHASE AUTHORIZED ON 01/14 SAFEWAY  "
"01/20/2025","-500.00","*","","ONLINE ACH PAYMENT THANK YOU"
"01/21/2025","-300.00","*","","AUTOMATIC PAYMENT - THANK YOU"
`), table.ParseOptions{HeaderRow: -1, Names: []string{"Date", "Amount", "*", "Unnamed: 3", "Description"}})
	require.NoError(t, err)

	debit, err := wellsFargoDebit(raw, "checking")
	require.NoError(t, err)
	assert.Equal(t, "PURCHASE AUTHORIZED ON 01/14 SAFEWAY", debit.Expenses[0].Description)
	assertAmount(t, "-42.50", debit.Expenses[0])
	assert.Equal(t, model.ClassExpense, debit.Expenses[0].IsTransfer)
	assert.Equal(t, model.ClassTransfer, debit.Expenses[1].IsTransfer)
	assert.Equal(t, model.ClassTransfer, debit.Expenses[2].IsTransfer)

	credit, err := wellsFargoCredit(raw, "card")
	require.NoError(t, err)
	assert.Equal(t, model.ClassExpense, credit.Expenses[1].IsTransfer)
	assert.Equal(t, model.ClassTransfer, credit.Expenses[2].IsTransfer)
	assert.Equal(t, model.ServiceCredit, credit.Expenses[0].Service)
}

func TestVenmoThirdParty(t *testing.T) {
	raw := readCSV(t, `ID,Datetime,Type,Status,Note,From,To,Amount (total),Destination
,,,,,,,,
1,2025-01-15T10:00:00,Payment,Complete,pizza,Me,Alex,- $12.50,
2,2025-01-16T10:00:00,Charge,Complete,rent,Me,Sam,"+ $1,000.00",
3,2025-01-17T10:00:00,Standard Transfer,Issued,,Me,,- $50.00,Chase Bank
4,2025-01-18T10:00:00,Merchant Transaction,Complete,,Me,Coffee Co,- $4.00,
5,2025-01-19T10:00:00,Refund,Complete,oops,Shop,Me,+ $3.00,
`)
	res, err := venmoThirdParty(raw, "me")
	require.NoError(t, err)
	recs := res.Expenses
	require.Len(t, recs, 5)
	assert.Equal(t, 5, res.Raw.Len())

	assert.Equal(t, "Me -> Alex: pizza", recs[0].Description)
	assertAmount(t, "-12.50", recs[0])
	assert.Equal(t, model.ClassExpense, recs[0].IsTransfer)

	assert.Equal(t, "Sam -> Me: rent", recs[1].Description)
	assertAmount(t, "1000.00", recs[1])

	assert.Equal(t, "transfer to Chase Bank", recs[2].Description)
	assert.Equal(t, model.ClassTransfer, recs[2].IsTransfer)

	assert.Equal(t, "Coffee Co", recs[3].Description)
	assert.Equal(t, "Consider: oops: Shop -> Me. (Type: Refund)", recs[4].Description)
	assert.Equal(t, model.ClassConsider, recs[4].IsTransfer)
}

func TestCashAppThirdParty(t *testing.T) {
	raw := readCSV(t, `Transaction ID,Date,Transaction Type,Currency,Amount,Fee,Net Amount,Asset Type,Asset Price,Asset Amount,Status,Notes,Name of sender/receiver,Account
a,2025-01-15 10:00:00 EST,Sent P2P,USD,-$20.00,$0,-$20.00,,,,PAYMENT SENT,lunch,Alex,Visa
b,2025-01-16 10:00:00 EST,Received P2P,USD,"$1,020.00",$0,$20.00,,,,PAYMENT DEPOSITED,,Sam,
c,2025-01-17 10:00:00 EST,Cash out,USD,-$100.00,$0,-$100.00,,,,TRANSFER SENT,,,
d,2025-01-18 10:00:00 EST,Sent P2P,USD,-$5.00,$0,-$5.00,,,,PAYMENT REVERSED,,Alex,
e,2025-01-19 10:00:00 EST,Bitcoin Buy,USD,-$5.00,$0,-$5.00,,,,COMPLETE,,,
`)
	res, err := cashAppThirdParty(raw, "cash")
	require.NoError(t, err)
	recs := res.Expenses

	assert.Equal(t, "Me -> Alex (lunch)", recs[0].Description)
	assertAmount(t, "-20.00", recs[0])
	assert.Equal(t, model.ClassExpense, recs[0].IsTransfer)
	assert.Equal(t, "From Sam -> Me", recs[1].Description)
	assertAmount(t, "1020.00", recs[1])
	assert.Equal(t, "Cash out", recs[2].Description)
	assert.Equal(t, model.ClassTransfer, recs[2].IsTransfer)
	assert.Equal(t, model.ClassRedundant, recs[3].IsTransfer)
	assert.Equal(t, "Consider", recs[4].Description)
	assert.Equal(t, model.ClassConsider, recs[4].IsTransfer)
}

func TestExpenseAdapters_ClassesInEnum(t *testing.T) {
	raw, err := table.ReadFile("testdata/chase_checking.csv", table.ParseOptions{})
	require.NoError(t, err)
	res, err := chaseDebit(raw, "checking")
	require.NoError(t, err)
	for _, r := range res.Expenses {
		assert.True(t, r.IsTransfer.Valid(), "class %q", r.IsTransfer)
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		in   any
		want string
		ok   bool
	}{
		{42.5, "42.5", true},
		{int64(7), "7", true},
		{"- $1,234.50", "-1234.50", true},
		{"+ $3.00", "3", true},
		{"$0", "0", true},
		{"", "", false},
		{"abc", "", false},
		{nil, "", false},
	}
	for _, tt := range tests {
		got, ok := amount(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		if tt.ok {
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "%v -> %s", tt.in, got)
		}
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"01/15/2025", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"1/5/2025", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"2025-01-15T10:20:30Z", time.Date(2025, 1, 15, 10, 20, 30, 0, time.UTC)},
		{"2025-01-15 10:20:30", time.Date(2025, 1, 15, 10, 20, 30, 0, time.UTC)},
		{"2025-01-15 10:20:30 UTC", time.Date(2025, 1, 15, 10, 20, 30, 0, time.UTC)},
		{"Thu Jan 16 2025 18:00:12 GMT+0100", time.Date(2025, 1, 16, 17, 0, 12, 0, time.UTC)},
		{"Thu Jan 16 2025 18:00:12 GMT+0000 (Coordinated Universal Time)", time.Date(2025, 1, 16, 18, 0, 12, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := timestamp(tt.in)
		require.True(t, ok, tt.in)
		assert.True(t, tt.want.Equal(got), "%s -> %s", tt.in, got)
	}
	_, ok := timestamp("yesterday")
	assert.False(t, ok)
}
