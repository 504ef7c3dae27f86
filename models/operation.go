package models

import "time"

// Operation names one logical API operation. The catalog keys its path
// templates by these values.
type Operation string

const (
	OpRecentPools  Operation = "recent_pools"
	OpHotPools     Operation = "hot_pools"
	OpGainers      Operation = "gainers"
	OpLosers       Operation = "losers"
	OpPairDetail   Operation = "pair_detail"
	OpTokenDetail  Operation = "token_detail"
	OpPriceHistory Operation = "price_history"
	OpBlockchains  Operation = "blockchains"
)

var Operations = []Operation{
	OpRecentPools,
	OpHotPools,
	OpGainers,
	OpLosers,
	OpPairDetail,
	OpTokenDetail,
	OpPriceHistory,
	OpBlockchains,
}

// IsDetail reports whether the operation addresses a single pair or token.
func (o Operation) IsDetail() bool {
	switch o {
	case OpPairDetail, OpTokenDetail, OpPriceHistory:
		return true
	}
	return false
}

func (o Operation) Valid() bool {
	for _, op := range Operations {
		if op == o {
			return true
		}
	}
	return false
}

// Params carries the per-call inputs of a logical call.
type Params struct {
	Chain   string
	Address string
	Limit   int
	Sort    string
	Order   string
	From    time.Time
	To      time.Time
}
