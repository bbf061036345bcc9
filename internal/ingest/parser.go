// Package ingest pulls trade events from the exchange data API and the
// realtime websocket feed and normalizes every record shape into
// domain.Trade at one boundary. Downstream code never sees raw feed
// payloads.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/idhash"
)

// record is the union of the field names the data API, the websocket
// feed and pre-normalized exports use for the same trade. Normalization
// coalesces the aliases left to right.
type record struct {
	ID              string    `json:"id"`
	TransactionHash string    `json:"transactionHash"`
	TxHash          string    `json:"tx_hash"`
	ProxyWallet     string    `json:"proxyWallet"`
	Wallet          string    `json:"wallet"`
	ConditionID     string    `json:"conditionId"`
	MarketID        string    `json:"market_id"`
	Title           string    `json:"title"`
	Question        string    `json:"question"`
	Category        string    `json:"category"`
	EventType       string    `json:"eventType"`
	Outcome         string    `json:"outcome"`
	Side            string    `json:"side"`
	Size            flexFloat `json:"size"`
	Price           flexFloat `json:"price"`
	USD             flexFloat `json:"usd"`
	Timestamp       flexInt   `json:"timestamp"`
}

// flexFloat accepts both JSON numbers and quoted numeric strings; the
// websocket feed quotes every numeric field.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parse float %q: %w", data, err)
	}
	*f = flexFloat(v)
	return nil
}

// flexInt accepts numbers, quoted numbers, and fractional-second
// timestamps, which it truncates.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if v, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*f = flexInt(v)
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", data, err)
	}
	*f = flexInt(int64(v))
	return nil
}

// Parse normalizes a feed payload, either a JSON array or a single
// object, into trades. Records that fail validation are dropped; a
// payload that yields no valid trades is not an error.
func Parse(data []byte) ([]*domain.Trade, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		var single record
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			return nil, fmt.Errorf("unmarshal trade payload: %w", err)
		}
		records = []record{single}
	}

	trades := make([]*domain.Trade, 0, len(records))
	for _, r := range records {
		t, err := normalize(r)
		if err != nil {
			continue
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// normalize maps one raw record onto domain.Trade, filling derivable
// gaps and rejecting records that cannot identify a wallet, market or
// price.
func normalize(r record) (*domain.Trade, error) {
	wallet := coalesce(r.ProxyWallet, r.Wallet)
	marketID := coalesce(r.ConditionID, r.MarketID)
	question := coalesce(r.Title, r.Question)
	txHash := coalesce(r.TransactionHash, r.TxHash)

	if wallet == "" {
		return nil, fmt.Errorf("record has no wallet")
	}
	if marketID == "" {
		return nil, fmt.Errorf("record has no market id")
	}
	price := float64(r.Price)
	if price <= 0 || price > 1 {
		return nil, fmt.Errorf("record has invalid price %v", price)
	}

	usd := float64(r.USD)
	if usd == 0 {
		usd = float64(r.Size) * price
	}
	if usd <= 0 {
		return nil, fmt.Errorf("record has no size")
	}

	ts := int64(r.Timestamp)
	if ts == 0 {
		ts = time.Now().Unix()
	}

	side := strings.ToUpper(r.Side)
	if side != domain.SideBuy && side != domain.SideSell {
		side = domain.SideBuy
	}

	outcome := r.Outcome
	if outcome == "" {
		outcome = "Yes"
	}

	tradeID := coalesce(r.ID, txHash)
	if tradeID == "" {
		tradeID = idhash.TradeID(txHash, wallet, marketID, outcome, ts)
	}

	return &domain.Trade{
		TradeID:   tradeID,
		TxHash:    txHash,
		Wallet:    wallet,
		MarketID:  marketID,
		Question:  question,
		Category:  coalesce(r.Category, r.EventType),
		Outcome:   outcome,
		Side:      side,
		Price:     price,
		SizeUSD:   usd,
		Timestamp: ts,
	}, nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
