package institution

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

const cryptoDotComAccount = "cryptodotcom"

var cryptoDotComTrxTypes = map[string]model.TrxType{
	"crypto_earn_interest_paid":         model.TrxHODL,
	"crypto_purchase":                   model.TrxTransfer,
	"crypto_withdrawal":                 model.TrxTransfer,
	"crypto_deposit":                    model.TrxTransfer,
	"crypto_exchange":                   model.TrxTrade,
	"rewards_platform_deposit_credited": model.TrxReward,
	"crypto_earn_program_withdrawn":     model.TrxHODL,
	"crypto_earn_program_created":       model.TrxHODL,
}

// cryptoDotComExchange handles Crypto.com app transaction exports.
func cryptoDotComExchange(raw *table.Table, _ string) (Result, error) {
	if err := requireColumns(raw, "Timestamp (UTC)", "Currency", "Amount", "To Currency", "To Amount",
		"Native Amount", "Transaction Kind"); err != nil {
		return Result{}, err
	}

	recs := make([]model.TradeRecord, raw.Len())
	for i := range recs {
		kind := textOr(raw, i, "Transaction Kind")
		currency, _ := text(raw, i, "Currency")
		toCurrency, hasTo := text(raw, i, "To Currency")
		qty := optionalDecimal(raw.Value(i, "Amount"))
		if qty != nil {
			qty = model.Dec(qty.Abs())
		}

		r := model.TradeRecord{
			AssetType: model.AssetCrypto,
			FeeAsset:  "USD",
			FeeAmount: model.Dec(decimal.Zero),
			FeeValue:  model.Dec(decimal.Zero),
			TrxType:   cryptoDotComTrxTypes[kind],
		}
		r.Datetime, _ = timestamp(raw.Value(i, "Timestamp (UTC)"))
		r.FromAccount = cryptoDotComFromAccount(kind)
		r.ToAccount = cryptoDotComToAccount(kind)
		r.FromAsset = cryptoDotComFromAsset(kind, currency)
		if hasTo {
			r.ToAsset = toCurrency
			r.OutAmount = optionalDecimal(raw.Value(i, "To Amount"))
		} else {
			r.ToAsset = currency
			r.OutAmount = qty
		}

		switch kind {
		case "crypto_purchase":
			if native := optionalDecimal(raw.Value(i, "Native Amount")); native != nil {
				r.InAmount = model.Dec(native.Abs())
			}
		case "rewards_platform_deposit_credited", "crypto_earn_interest_paid":
			r.InAmount = model.Dec(decimal.Zero)
		case "crypto_exchange", "crypto_withdrawal", "crypto_deposit",
			"crypto_earn_program_withdrawn", "crypto_earn_program_created":
			r.InAmount = qty
		}

		r.TrxSubType = cryptoDotComTrxSubType(kind, currency, toCurrency)
		recs[i] = r
	}
	return Result{Raw: raw.Clone(), Trades: recs}, nil
}

func cryptoDotComFromAccount(kind string) string {
	switch kind {
	case "crypto_exchange", "crypto_withdrawal", "crypto_earn_interest_paid",
		"crypto_earn_program_withdrawn", "crypto_earn_program_created",
		"rewards_platform_deposit_credited":
		return cryptoDotComAccount
	case "crypto_purchase":
		return "Bank"
	case "crypto_deposit":
		return "Wallet"
	}
	return ""
}

func cryptoDotComToAccount(kind string) string {
	switch kind {
	case "crypto_earn_interest_paid", "crypto_purchase", "crypto_deposit", "crypto_exchange",
		"rewards_platform_deposit_credited", "crypto_earn_program_withdrawn",
		"crypto_earn_program_created":
		return cryptoDotComAccount
	case "crypto_withdrawal":
		return "Wallet"
	}
	return ""
}

func cryptoDotComFromAsset(kind, currency string) string {
	switch kind {
	case "crypto_purchase":
		return "USD"
	case "rewards_platform_deposit_credited":
		return model.RewardAsset
	case "crypto_exchange", "crypto_withdrawal", "crypto_earn_interest_paid",
		"crypto_earn_program_withdrawn", "crypto_earn_program_created", "crypto_deposit":
		return currency
	}
	return ""
}

func cryptoDotComTrxSubType(kind, currency, toCurrency string) model.TrxSubType {
	switch kind {
	case "crypto_earn_interest_paid":
		return model.SubStake
	case "crypto_earn_program_withdrawn", "crypto_earn_program_created":
		return model.SubRedundant
	case "crypto_withdrawal", "crypto_deposit":
		return model.SubCrypto
	case "crypto_purchase":
		return model.SubBuy
	case "rewards_platform_deposit_credited":
		return model.SubCryptoDotComRewards
	case "crypto_exchange":
		return pairSubType(currency, toCurrency)
	}
	return ""
}
