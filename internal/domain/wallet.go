package domain

// Wallet tracks cumulative activity for one address.
// Created on first observation; counters grow on every later trade.
type Wallet struct {
	Address    string
	FirstSeen  int64 // unix seconds of the first observed trade
	LastSeen   int64
	TradeCount int64
	VolumeUSD  float64
}

// FundingEdge associates a wallet with an external funding-source
// identifier. Wallets sharing a source are implicitly linked.
// Upserted per (wallet, source) pair.
type FundingEdge struct {
	Wallet    string
	Source    string
	AmountUSD float64
	Timestamp int64
}
