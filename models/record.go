package models

import "time"

// Epoch is the default for a missing creation time.
var Epoch = time.Unix(0, 0).UTC()

// Record is the canonical representation of a pool, pair or token,
// independent of the response shape it was read from.
type Record struct {
	Address        string    `json:"address"`
	Symbol         string    `json:"symbol"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	PriceChange24h float64   `json:"price_change_24h"`
	Liquidity      float64   `json:"liquidity"`
	Volume24h      float64   `json:"volume_24h"`
	CreatedAt      time.Time `json:"created_at"`
	ExchangeName   string    `json:"exchange_name"`
	PairAddress    string    `json:"pair_address"`
	Incomplete     bool      `json:"incomplete"`
}

// PairName renders "SYMBOL" or "SYMBOL @ exchange" for console output.
func (r Record) PairName() string {
	symbol := r.Symbol
	if symbol == "" {
		symbol = "UNKNOWN"
	}
	if r.ExchangeName == "" {
		return symbol
	}
	return symbol + " @ " + r.ExchangeName
}
