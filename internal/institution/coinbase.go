package institution

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

const coinbaseAccount = "coinbase"

// Transaction types where coinbase itself is the sending side.
var coinbaseOutgoing = map[string]bool{
	"Inflation Reward": true,
	"Staking Income":   true,
	"Convert":          true,
	"Send":             true,
	"Sell":             true,
	"Withdrawal":       true,
}

var coinbaseSendTo = regexp.MustCompile(`to\s(.*)$`)

// coinbaseRow is one export row with its Notes split into words.
type coinbaseRow struct {
	typ   string
	asset string
	notes []string
}

// word returns the n-th word from the end of Notes (1 = last), or "".
func (c coinbaseRow) word(n int) string {
	if n > len(c.notes) {
		return ""
	}
	return c.notes[len(c.notes)-n]
}

// earnReward is a Receive booked as "... Coinbase Earn" or "... Coinbase Rewards".
func (c coinbaseRow) earnReward() bool {
	last := c.word(1)
	return c.word(2) == "Coinbase" && (last == "Earn" || last == "Rewards")
}

// stakeReceive is a Receive whose Notes end in "from".
func (c coinbaseRow) stakeReceive() bool { return c.word(1) == "from" }

// coinbaseExchange handles Coinbase transaction reports.
func coinbaseExchange(raw *table.Table, _ string) (Result, error) {
	if err := requireColumns(raw, "Timestamp", "Transaction Type", "Asset", "Quantity Transacted",
		"Subtotal", "Fees and/or Spread", "Notes"); err != nil {
		return Result{}, err
	}

	recs := make([]model.TradeRecord, raw.Len())
	for i := range recs {
		row := coinbaseRow{
			typ:   textOr(raw, i, "Transaction Type"),
			asset: textOr(raw, i, "Asset"),
		}
		notes, _ := text(raw, i, "Notes")
		row.notes = strings.Fields(notes)

		r := model.TradeRecord{AssetType: model.AssetCrypto, FeeAsset: "USD"}
		r.Datetime, _ = timestamp(raw.Value(i, "Timestamp"))
		r.FromAccount = coinbaseFromAccount(row)
		r.ToAccount = coinbaseToAccount(row, notes)
		r.FromAsset = coinbaseFromAsset(row)
		r.ToAsset = coinbaseToAsset(row)
		r.InAmount = coinbaseInAmount(row, raw.Value(i, "Subtotal"), raw.Value(i, "Quantity Transacted"))
		r.OutAmount = coinbaseOutAmount(row, raw.Value(i, "Quantity Transacted"))
		r.FeeAmount = optionalDecimal(raw.Value(i, "Fees and/or Spread"))
		r.FeeValue = optionalDecimal(raw.Value(i, "Fees and/or Spread"))
		r.TrxType = coinbaseTrxType(row)
		r.TrxSubType = coinbaseTrxSubType(row, r.FromAsset, r.ToAsset)
		recs[i] = r
	}
	return Result{Raw: raw.Clone(), Trades: recs}, nil
}

func coinbaseFromAccount(c coinbaseRow) string {
	switch {
	case coinbaseOutgoing[c.typ]:
		return coinbaseAccount
	case c.typ == "Buy":
		return "Bank"
	case c.typ == "Learning Reward":
		return "Coinbase Reward"
	case c.typ == "Receive":
		if c.earnReward() {
			return "Coinbase Reward"
		}
		if c.stakeReceive() {
			return coinbaseAccount
		}
		return "Wallet"
	}
	return ""
}

func coinbaseToAccount(c coinbaseRow, notes string) string {
	switch c.typ {
	case "Send":
		m := coinbaseSendTo.FindStringSubmatch(notes)
		if m == nil {
			return ""
		}
		if m[1] == "" {
			return c.asset + " Network"
		}
		return m[1]
	case "Withdrawal":
		return "Bank"
	}
	return coinbaseAccount
}

func coinbaseFromAsset(c coinbaseRow) string {
	switch {
	case c.typ == "Learning Reward":
		return model.RewardAsset
	case c.typ == "Buy":
		return "USD"
	case coinbaseOutgoing[c.typ]:
		return c.asset
	case c.typ == "Receive":
		if c.earnReward() {
			return model.RewardAsset
		}
		if c.stakeReceive() {
			return c.asset
		}
	}
	return ""
}

func coinbaseToAsset(c coinbaseRow) string {
	switch c.typ {
	case "Learning Reward", "Buy", "Send", "Withdrawal", "Inflation Reward", "Staking Income", "Receive":
		return c.asset
	case "Convert", "Sell":
		return c.word(1)
	}
	return ""
}

func coinbaseInAmount(c coinbaseRow, subtotal, quantity any) *decimal.Decimal {
	switch c.typ {
	case "Learning Reward", "Inflation Reward", "Staking Income", "Receive":
		return model.Dec(decimal.Zero)
	case "Buy":
		return optionalDecimal(subtotal)
	case "Convert", "Send", "Sell", "Withdrawal":
		return optionalDecimal(quantity)
	}
	return nil
}

func coinbaseOutAmount(c coinbaseRow, quantity any) *decimal.Decimal {
	switch c.typ {
	case "Learning Reward", "Buy", "Send", "Withdrawal", "Inflation Reward", "Staking Income", "Receive":
		return optionalDecimal(quantity)
	case "Convert", "Sell":
		// Notes read "Converted 1 ETH to 1,500.00 USDC": the amount received
		// is the second-to-last word.
		return optionalDecimal(c.word(2))
	}
	return nil
}

func coinbaseTrxType(c coinbaseRow) model.TrxType {
	switch c.typ {
	case "Learning Reward":
		return model.TrxReward
	case "Buy", "Send", "Withdrawal":
		return model.TrxTransfer
	case "Convert", "Sell":
		return model.TrxTrade
	case "Inflation Reward", "Staking Income":
		return model.TrxHODL
	case "Receive":
		if c.earnReward() {
			return model.TrxReward
		}
		if c.stakeReceive() {
			return model.TrxHODL
		}
	}
	return ""
}

func coinbaseTrxSubType(c coinbaseRow, fromAsset, toAsset string) model.TrxSubType {
	switch c.typ {
	case "Learning Reward":
		return model.SubCoinbaseReward
	case "Inflation Reward", "Staking Income":
		return model.SubStake
	case "Receive":
		if c.earnReward() {
			return model.SubCoinbaseReward
		}
		if c.stakeReceive() {
			return model.SubStake
		}
	case "Send", "Withdrawal":
		return model.SubWithdraw
	case "Buy":
		return model.SubBuy
	case "Sell", "Convert":
		return pairSubType(fromAsset, toAsset)
	}
	return ""
}

// pairSubType classifies an exchange between two assets by which side, if
// any, is dollars.
func pairSubType(fromAsset, toAsset string) model.TrxSubType {
	switch {
	case model.IsUSD(fromAsset):
		return model.SubBuy
	case model.IsUSD(toAsset):
		return model.SubSell
	}
	return model.SubPairwise
}
