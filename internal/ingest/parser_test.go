package ingest

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Solmidey/polymarket-insider/internal/domain"
)

func TestParseDataAPIShape(t *testing.T) {
	payload := `[{
		"transactionHash": "0xabc",
		"proxyWallet": "0xW",
		"conditionId": "0xM",
		"title": "Will X happen",
		"side": "BUY",
		"outcome": "Yes",
		"size": 60000,
		"price": 0.10,
		"timestamp": 1700000000
	}]`

	trades, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}

	tr := trades[0]
	if tr.Wallet != "0xW" || tr.MarketID != "0xM" || tr.Question != "Will X happen" {
		t.Errorf("identity fields = %+v", tr)
	}
	if tr.TradeID != "0xabc" {
		t.Errorf("trade id = %s, want transaction hash fallback", tr.TradeID)
	}
	// USD derives from size x price.
	if math.Abs(tr.SizeUSD-6000) > 1e-9 {
		t.Errorf("size usd = %v, want 6000", tr.SizeUSD)
	}
	if tr.Side != domain.SideBuy || tr.Timestamp != 1700000000 {
		t.Errorf("side/timestamp = %s/%d", tr.Side, tr.Timestamp)
	}
}

func TestParseNormalizedShape(t *testing.T) {
	payload := `{
		"id": "t-1",
		"wallet": "0xW",
		"market_id": "0xM",
		"question": "Will X happen",
		"category": "POLITICS",
		"side": "sell",
		"outcome": "No",
		"usd": "2500.5",
		"price": "0.85",
		"timestamp": "1700000000.25"
	}`

	trades, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}

	tr := trades[0]
	if tr.TradeID != "t-1" || tr.Wallet != "0xW" || tr.MarketID != "0xM" {
		t.Errorf("identity fields = %+v", tr)
	}
	if tr.Category != "POLITICS" || tr.Outcome != "No" {
		t.Errorf("category/outcome = %s/%s", tr.Category, tr.Outcome)
	}
	// Quoted numerics and fractional timestamps normalize.
	if math.Abs(tr.SizeUSD-2500.5) > 1e-9 || math.Abs(tr.Price-0.85) > 1e-9 {
		t.Errorf("usd/price = %v/%v", tr.SizeUSD, tr.Price)
	}
	if tr.Side != domain.SideSell || tr.Timestamp != 1700000000 {
		t.Errorf("side/timestamp = %s/%d", tr.Side, tr.Timestamp)
	}
}

func TestParseDropsInvalidRecords(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"missing wallet", `[{"conditionId":"M","price":0.5,"size":100,"timestamp":1}]`},
		{"missing market", `[{"proxyWallet":"W","price":0.5,"size":100,"timestamp":1}]`},
		{"zero price", `[{"proxyWallet":"W","conditionId":"M","price":0,"size":100,"timestamp":1}]`},
		{"price above one", `[{"proxyWallet":"W","conditionId":"M","price":1.5,"size":100,"timestamp":1}]`},
		{"zero size", `[{"proxyWallet":"W","conditionId":"M","price":0.5,"timestamp":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trades, err := Parse([]byte(tt.payload))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(trades) != 0 {
				t.Errorf("invalid record survived: %+v", trades[0])
			}
		})
	}
}

func TestParseSynthesizesTradeID(t *testing.T) {
	payload := `[{"proxyWallet":"W","conditionId":"M","outcome":"Yes","price":0.5,"size":100,"timestamp":1700000000}]`

	first, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	second, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}

	if first[0].TradeID == "" {
		t.Fatal("expected synthesized trade id")
	}
	if first[0].TradeID != second[0].TradeID {
		t.Errorf("synthesized id not deterministic: %s vs %s", first[0].TradeID, second[0].TradeID)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte(`not json`)); err == nil {
		t.Error("expected error for non-JSON payload")
	}
}

func TestFeedClientRecentTrades(t *testing.T) {
	var lastAfter string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trades" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("limit"); got != "20" {
			t.Errorf("limit = %s, want 20", got)
		}
		lastAfter = r.URL.Query().Get("after")
		w.Write([]byte(`[
			{"proxyWallet":"A","conditionId":"M","price":0.5,"size":100,"timestamp":1700000100},
			{"proxyWallet":"B","conditionId":"M","price":0.5,"size":100,"timestamp":1700000200}
		]`))
	}))
	defer srv.Close()

	client := NewFeedClient(srv.URL)

	t.Run("cursor sent upstream and filters seen trades", func(t *testing.T) {
		trades, err := client.RecentTrades(context.Background(), 20, 1700000100)
		if err != nil {
			t.Fatalf("recent trades: %v", err)
		}
		if lastAfter != "1700000100" {
			t.Errorf("after param = %q, want 1700000100", lastAfter)
		}
		if len(trades) != 1 || trades[0].Wallet != "B" {
			t.Fatalf("got %d trades, want only the one past the cursor", len(trades))
		}
	})

	t.Run("zero cursor returns everything", func(t *testing.T) {
		trades, err := client.RecentTrades(context.Background(), 20, 0)
		if err != nil {
			t.Fatalf("recent trades: %v", err)
		}
		if lastAfter != "" {
			t.Errorf("after param = %q, want omitted at zero cursor", lastAfter)
		}
		if len(trades) != 2 {
			t.Fatalf("got %d trades, want 2", len(trades))
		}
	})
}

func TestFeedClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := NewFeedClient(srv.URL).RecentTrades(context.Background(), 20, 0); err == nil {
		t.Error("expected error on non-200 response")
	}
}
