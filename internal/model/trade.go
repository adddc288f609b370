package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrxType is the top-level classification of an exchange row.
type TrxType string

const (
	TrxTransfer TrxType = "Transfer"
	TrxTrade    TrxType = "Trade"
	TrxReward   TrxType = "Reward"
	TrxHODL     TrxType = "HODL"
)

// TrxTypes lists every valid TrxType.
var TrxTypes = []TrxType{TrxTransfer, TrxTrade, TrxReward, TrxHODL}

// TrxSubType refines a TrxType.
type TrxSubType string

const (
	SubBuy                 TrxSubType = "Buy"
	SubSell                TrxSubType = "Sell"
	SubPairwise            TrxSubType = "Pairwise"
	SubDeposit             TrxSubType = "Deposit"
	SubWithdrawal          TrxSubType = "Withdrawal"
	SubWithdraw            TrxSubType = "Withdraw"
	SubCrypto              TrxSubType = "Crypto"
	SubStake               TrxSubType = "Stake"
	SubCoinbaseReward      TrxSubType = "Coinbase Reward"
	SubCryptoDotComRewards TrxSubType = "CryptoDotComRewards"
	SubBrave               TrxSubType = "Brave"
	SubHODL                TrxSubType = "HODL"
	SubRedundant           TrxSubType = "Redundant"
)

// TrxSubTypes lists every valid TrxSubType.
var TrxSubTypes = []TrxSubType{
	SubBuy, SubSell, SubPairwise, SubDeposit, SubWithdrawal, SubWithdraw,
	SubCrypto, SubStake, SubCoinbaseReward, SubCryptoDotComRewards,
	SubBrave, SubHODL, SubRedundant,
}

const (
	// AssetCrypto is the only asset type produced today.
	AssetCrypto = "Crypto"
	// RewardAsset stands in for point-like rewards that have no market price.
	RewardAsset = "R3W"
)

// USDs are the tickers treated as dollars when deciding Buy/Sell.
var USDs = []string{"USD", "USDC", "USDT"}

// IsUSD reports whether ticker is a dollar or dollar stablecoin.
func IsUSD(ticker string) bool {
	for _, u := range USDs {
		if ticker == u {
			return true
		}
	}
	return false
}

// TradeColumns is the canonical trade table header.
var TradeColumns = []string{
	"Datetime",
	"FromAccount", "ToAccount",
	"FromAsset", "ToAsset",
	"InAmount", "OutAmount",
	"FeeAsset", "FeeAmount", "FeeValue",
	"TrxType", "TrxSubType",
	"AssetType", "USDAmount",
}

// TradeRecord is one normalized row of an exchange export.
// Empty strings and nil decimals mean the source gave no value.
type TradeRecord struct {
	Datetime    time.Time
	FromAccount string
	ToAccount   string
	FromAsset   string
	ToAsset     string
	InAmount    *decimal.Decimal
	OutAmount   *decimal.Decimal
	FeeAsset    string
	FeeAmount   *decimal.Decimal
	FeeValue    *decimal.Decimal
	TrxType     TrxType
	TrxSubType  TrxSubType
	AssetType   string
	USDAmount   *decimal.Decimal
}

// Dec returns a pointer to d.
func Dec(d decimal.Decimal) *decimal.Decimal { return &d }
