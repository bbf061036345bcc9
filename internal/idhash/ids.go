// Package idhash computes deterministic record identifiers so that
// re-ingesting the same feed data never creates duplicate rows.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// TradeID computes a deterministic trade id for feeds that omit one.
// Formula: SHA256(tx_hash|wallet|market_id|outcome|timestamp).
func TradeID(txHash, wallet, marketID, outcome string, timestamp int64) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%d", txHash, wallet, marketID, outcome, timestamp)
	return hashHex(data)
}

// PositionID computes a deterministic position id from the entry trade.
// Formula: SHA256(wallet|market_id|outcome|entry_ts|entry_trade_id).
func PositionID(wallet, marketID, outcome string, entryTime int64, entryTradeID string) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%s", wallet, marketID, outcome, entryTime, entryTradeID)
	return hashHex(data)
}

// AlertID computes a deterministic alert id.
// Formula: SHA256(wallet|market_id|fired_ts|trade_id).
func AlertID(wallet, marketID string, firedTime int64, tradeID string) string {
	data := fmt.Sprintf("%s|%s|%d|%s", wallet, marketID, firedTime, tradeID)
	return hashHex(data)
}

func hashHex(data string) string {
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
