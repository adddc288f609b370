package institution

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

// upholdExchange handles Uphold transaction exports. Incoming rows that
// originate inside uphold are Brave browser rewards.
func upholdExchange(raw *table.Table, _ string) (Result, error) {
	if err := requireColumns(raw, "Date", "Destination", "Destination Amount", "Destination Currency",
		"Fee Amount", "Fee Currency", "Origin", "Origin Amount", "Origin Currency", "Type"); err != nil {
		return Result{}, err
	}

	recs := make([]model.TradeRecord, raw.Len())
	for i := range recs {
		origin, typ := textOr(raw, i, "Origin"), textOr(raw, i, "Type")

		r := model.TradeRecord{AssetType: model.AssetCrypto}
		r.Datetime, _ = timestamp(raw.Value(i, "Date"))
		r.FromAccount = upholdFromAccount(origin, typ)
		r.ToAccount = upholdToAccount(textOr(raw, i, "Destination"))
		if r.FromAccount == "Brave" {
			r.FromAsset = model.RewardAsset
			r.InAmount = model.Dec(decimal.Zero)
		} else {
			r.FromAsset, _ = text(raw, i, "Origin Currency")
			r.InAmount = optionalDecimal(raw.Value(i, "Origin Amount"))
		}
		r.ToAsset, _ = text(raw, i, "Destination Currency")
		r.OutAmount = optionalDecimal(raw.Value(i, "Destination Amount"))

		r.FeeAsset = "USD"
		if cur, ok := text(raw, i, "Fee Currency"); ok {
			r.FeeAsset = cur
		}
		if fee := optionalDecimal(raw.Value(i, "Fee Amount")); fee != nil {
			r.FeeAmount = fee
		} else {
			// Fee-free rows have a known zero fee value; charged fees are
			// left unvalued.
			r.FeeAmount = model.Dec(decimal.Zero)
			r.FeeValue = model.Dec(decimal.Zero)
		}

		r.TrxType = upholdTrxType(typ, r.FromAccount)
		r.TrxSubType = upholdTrxSubType(r)
		recs[i] = r
	}
	return Result{Raw: raw.Clone(), Trades: recs}, nil
}

func upholdFromAccount(origin, typ string) string {
	switch origin {
	case "uphold":
		switch typ {
		case "in":
			return "Brave"
		case "out", "transfer":
			return "Uphold"
		}
	case "bank":
		return "Bank"
	}
	return ""
}

func upholdToAccount(dest string) string {
	switch dest {
	case "uphold":
		return "Uphold"
	case "ethereum":
		return "Wallet"
	case "bank":
		return "Bank"
	}
	return ""
}

func upholdTrxType(typ, fromAccount string) model.TrxType {
	switch typ {
	case "transfer":
		return model.TrxTrade
	case "out":
		return model.TrxTransfer
	case "in":
		switch fromAccount {
		case "Brave":
			return model.TrxReward
		case "Bank":
			return model.TrxTransfer
		}
	}
	return ""
}

func upholdTrxSubType(r model.TradeRecord) model.TrxSubType {
	switch r.TrxType {
	case model.TrxTrade:
		return pairSubType(r.FromAsset, r.ToAsset)
	case model.TrxTransfer:
		switch {
		case r.FromAccount == "Bank":
			if model.IsUSD(r.ToAsset) {
				return model.SubDeposit
			}
			return model.SubBuy
		case r.ToAccount == "Bank":
			if model.IsUSD(r.FromAsset) {
				return model.SubWithdrawal
			}
			return model.SubSell
		case r.ToAccount == "Wallet":
			return model.SubCrypto
		}
	case model.TrxReward:
		return model.SubBrave
	case model.TrxHODL:
		return model.SubHODL
	}
	return ""
}
