package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/mymoney/internal/model"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mymoney.db")
	s, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestStore_Expenses(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	recs := []model.ExpenseRecord{
		{
			Description:         "TRADER JOES",
			Amount:              decimal.RequireFromString("-42.50"),
			AmountValid:         true,
			Date:                time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			Institution:         "Chase",
			AccountName:         "freedom",
			InstitutionCategory: model.StrPtr("Groceries"),
			IsTransfer:          model.ClassExpense,
			IsValid:             true,
			Service:             model.ServiceCredit,
		},
		{
			Description: "CARD ADJUSTMENT",
			Institution: "Chase",
			AccountName: "checking",
			IsTransfer:  model.ClassConsider,
			Service:     model.ServiceDebit,
		},
	}
	require.NoError(t, s.AppendExpenses(ctx, recs))
	require.NoError(t, s.AppendExpenses(ctx, recs[:1]))

	got, err := s.LoadExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "TRADER JOES", got[0].Description)
	assert.True(t, got[0].IsValid)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("-42.5")))
	assert.Equal(t, model.ServiceCredit, got[0].Service)
	assert.False(t, got[1].AmountValid)
	assert.False(t, got[1].IsValid)
	assert.True(t, got[1].Date.IsZero())
	assert.Nil(t, got[1].InstitutionCategory)
	assert.Equal(t, model.ClassConsider, got[1].IsTransfer)
}

func TestStore_TradesAndBalances(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	trade := model.TradeRecord{
		Datetime:    time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		FromAccount: "Bank",
		ToAccount:   "coinbase",
		FromAsset:   "USD",
		ToAsset:     "BTC",
		InAmount:    model.Dec(decimal.RequireFromString("400")),
		OutAmount:   model.Dec(decimal.RequireFromString("0.01")),
		TrxType:     model.TrxTransfer,
		TrxSubType:  model.SubBuy,
		AssetType:   model.AssetCrypto,
	}
	require.NoError(t, s.AppendTrades(ctx, []model.TradeRecord{trade}))

	trades, err := s.LoadTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, trade.Datetime, trades[0].Datetime)
	assert.True(t, trades[0].OutAmount.Equal(*trade.OutAmount))
	assert.Nil(t, trades[0].FeeAmount)
	assert.Equal(t, model.SubBuy, trades[0].TrxSubType)

	bal := model.BalanceRecord{
		Date:        time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Institution: "Chase",
		AccountName: "checking",
		Balance:     decimal.RequireFromString("1994.5"),
	}
	require.NoError(t, s.AppendBalances(ctx, []model.BalanceRecord{bal}))
	bals, err := s.LoadBalances(ctx)
	require.NoError(t, err)
	require.Len(t, bals, 1)
	assert.True(t, bals[0].Balance.Equal(bal.Balance))
}

func TestStore_EmptyLoadAndAppend(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.AppendExpenses(ctx, nil))
	got, err := s.LoadExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpen_Reopen(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.AppendBalances(ctx, []model.BalanceRecord{{
		Date:        time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Institution: "Sofi",
		AccountName: "savings",
		Balance:     decimal.NewFromInt(10),
	}}))
	require.NoError(t, s.Close())

	again, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer again.Close()
	bals, err := again.LoadBalances(ctx)
	require.NoError(t, err)
	assert.Len(t, bals, 1)
}
