package signals

import (
	"context"
	"fmt"
	"testing"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/graph"
	"github.com/Solmidey/polymarket-insider/internal/positions"
	"github.com/Solmidey/polymarket-insider/internal/storage/memory"
)

type fixture struct {
	wallets *memory.WalletStore
	trades  *memory.TradeStore
	edges   *memory.FundingEdgeStore
	posns   *memory.PositionStore
	engine  *Engine
}

func newFixture(cfg Config) *fixture {
	f := &fixture{
		wallets: memory.NewWalletStore(),
		trades:  memory.NewTradeStore(),
		edges:   memory.NewFundingEdgeStore(),
		posns:   memory.NewPositionStore(),
	}
	f.engine = NewEngine(cfg,
		f.wallets, f.trades,
		graph.New(f.edges),
		positions.NewTracker(f.posns),
	)
	return f
}

func (f *fixture) seedTrade(t *testing.T, wallet string, usd float64, ts int64) {
	t.Helper()
	trade := &domain.Trade{
		TradeID:   fmt.Sprintf("seed-%s-%d", wallet, ts),
		Wallet:    wallet,
		MarketID:  "M",
		Outcome:   "Yes",
		Side:      domain.SideBuy,
		Price:     0.50,
		SizeUSD:   usd,
		Timestamp: ts,
	}
	if err := f.trades.Insert(context.Background(), trade); err != nil {
		t.Fatalf("seed trade: %v", err)
	}
}

const baseTS = int64(1_700_000_000)

func candidateTrade() *domain.Trade {
	return &domain.Trade{
		TradeID:   "candidate",
		Wallet:    "W",
		MarketID:  "M",
		Question:  "Will X happen",
		Category:  "POLITICS",
		Outcome:   "Yes",
		Side:      domain.SideBuy,
		Price:     0.10,
		SizeUSD:   6000,
		Timestamp: baseTS,
	}
}

func TestFreshWalletBigBet(t *testing.T) {
	ctx := context.Background()

	t.Run("unseen wallet with big bet fires", func(t *testing.T) {
		f := newFixture(DefaultConfig())
		fired, err := f.engine.Evaluate(ctx, candidateTrade())
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if !contains(fired, SignalFreshWalletBigBet) {
			t.Errorf("expected %s in %v", SignalFreshWalletBigBet, fired)
		}
	})

	t.Run("old wallet does not fire", func(t *testing.T) {
		f := newFixture(DefaultConfig())
		// First seen 30 days before the candidate trade.
		if _, err := f.wallets.Record(ctx, "W", baseTS-30*24*3600, 100); err != nil {
			t.Fatalf("record wallet: %v", err)
		}
		fired, err := f.engine.Evaluate(ctx, candidateTrade())
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if contains(fired, SignalFreshWalletBigBet) {
			t.Errorf("did not expect %s in %v", SignalFreshWalletBigBet, fired)
		}
	})

	t.Run("small bet does not fire", func(t *testing.T) {
		f := newFixture(DefaultConfig())
		trade := candidateTrade()
		trade.SizeUSD = 100
		fired, err := f.engine.Evaluate(ctx, trade)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if contains(fired, SignalFreshWalletBigBet) {
			t.Errorf("did not expect %s in %v", SignalFreshWalletBigBet, fired)
		}
	})
}

func TestSizeAnomaly(t *testing.T) {
	ctx := context.Background()

	t.Run("three times trailing average fires", func(t *testing.T) {
		f := newFixture(DefaultConfig())
		f.seedTrade(t, "other1", 1000, baseTS-3600)
		f.seedTrade(t, "other2", 1000, baseTS-1800)

		fired, err := f.engine.Evaluate(ctx, candidateTrade())
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if !contains(fired, SignalSizeAnomaly) {
			t.Errorf("expected %s in %v", SignalSizeAnomaly, fired)
		}
	})

	t.Run("unknown average never fires", func(t *testing.T) {
		f := newFixture(DefaultConfig())
		fired, err := f.engine.Evaluate(ctx, candidateTrade())
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if contains(fired, SignalSizeAnomaly) {
			t.Errorf("did not expect %s with no trailing trades: %v", SignalSizeAnomaly, fired)
		}
	})
}

func TestTightSensitiveMarket(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		price    float64
		category string
		want     bool
	}{
		{"low price sensitive category", 0.10, "POLITICS", true},
		{"high price sensitive category", 0.90, "WAR", true},
		{"mid price sensitive category", 0.50, "POLITICS", false},
		{"low price insensitive category", 0.10, "SPORTS", false},
		{"case-insensitive category", 0.10, "politics", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(DefaultConfig())
			trade := candidateTrade()
			trade.Price = tt.price
			trade.Category = tt.category
			trade.SizeUSD = 100 // keep other signals quiet

			fired, err := f.engine.Evaluate(ctx, trade)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if contains(fired, SignalTightSensitiveMarket) != tt.want {
				t.Errorf("fired = %v, want %s present=%v", fired, SignalTightSensitiveMarket, tt.want)
			}
		})
	}
}

func TestTemporalClustering(t *testing.T) {
	ctx := context.Background()

	t.Run("three other wallets in window fires", func(t *testing.T) {
		f := newFixture(DefaultConfig())
		f.seedTrade(t, "A", 100, baseTS-30*60)
		f.seedTrade(t, "B", 100, baseTS-60*60)
		f.seedTrade(t, "C", 100, baseTS-90*60)

		fired, err := f.engine.Evaluate(ctx, candidateTrade())
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if !contains(fired, SignalTemporalClustering) {
			t.Errorf("expected %s in %v", SignalTemporalClustering, fired)
		}
	})

	t.Run("stale activity outside window does not fire", func(t *testing.T) {
		f := newFixture(DefaultConfig())
		f.seedTrade(t, "A", 100, baseTS-3*3600)
		f.seedTrade(t, "B", 100, baseTS-4*3600)
		f.seedTrade(t, "C", 100, baseTS-5*3600)

		fired, err := f.engine.Evaluate(ctx, candidateTrade())
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if contains(fired, SignalTemporalClustering) {
			t.Errorf("did not expect %s in %v", SignalTemporalClustering, fired)
		}
	})

	t.Run("trader's own activity does not count", func(t *testing.T) {
		f := newFixture(DefaultConfig())
		f.seedTrade(t, "W", 100, baseTS-30*60)
		f.seedTrade(t, "A", 100, baseTS-60*60)
		f.seedTrade(t, "B", 100, baseTS-90*60)

		fired, err := f.engine.Evaluate(ctx, candidateTrade())
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if contains(fired, SignalTemporalClustering) {
			t.Errorf("did not expect %s when only 2 other wallets active: %v", SignalTemporalClustering, fired)
		}
	})
}

func TestSharedFundingSource(t *testing.T) {
	ctx := context.Background()

	f := newFixture(DefaultConfig())
	f.seedTrade(t, "A", 100, baseTS-30*60)

	g := graph.New(f.edges)
	if err := g.RecordFunding(ctx, "W", "S1", 100, baseTS-86400); err != nil {
		t.Fatalf("record funding: %v", err)
	}
	if err := g.RecordFunding(ctx, "A", "S1", 100, baseTS-86400); err != nil {
		t.Fatalf("record funding: %v", err)
	}

	fired, err := f.engine.Evaluate(ctx, candidateTrade())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !contains(fired, SignalSharedFundingSource) {
		t.Errorf("expected %s in %v", SignalSharedFundingSource, fired)
	}
}

func TestEarlyExitSignal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(DefaultConfig())
	tracker := positions.NewTracker(f.posns)

	// Two quick round-trips by W in market M.
	for i, entryTS := range []int64{baseTS - 100000, baseTS - 50000} {
		entry := &domain.Trade{
			TradeID: fmt.Sprintf("entry-%d", i), Wallet: "W", MarketID: "M", Outcome: "Yes",
			Side: domain.SideBuy, Price: 0.30, SizeUSD: 500, Timestamp: entryTS,
		}
		if _, err := tracker.RecordEntry(ctx, entry); err != nil {
			t.Fatalf("entry: %v", err)
		}
		exit := &domain.Trade{
			TradeID: fmt.Sprintf("exit-%d", i), Wallet: "W", MarketID: "M", Outcome: "Yes",
			Side: domain.SideSell, Price: 0.40, Timestamp: entryTS + 3600,
		}
		if _, err := tracker.RecordExit(ctx, exit); err != nil {
			t.Fatalf("exit: %v", err)
		}
	}

	fired, err := f.engine.Evaluate(ctx, candidateTrade())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !contains(fired, SignalEarlyExitPattern) {
		t.Errorf("expected %s in %v", SignalEarlyExitPattern, fired)
	}
}

// The documented end-to-end scenario: never-seen wallet, $6000 on a
// POLITICS market priced 0.10 with $1000 trailing average and three
// other wallets on the same outcome.
func TestEvaluateEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(DefaultConfig())

	f.seedTrade(t, "A", 1000, baseTS-30*60)
	f.seedTrade(t, "B", 1000, baseTS-60*60)
	f.seedTrade(t, "C", 1000, baseTS-90*60)

	fired, err := f.engine.Evaluate(ctx, candidateTrade())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	want := []string{
		SignalFreshWalletBigBet,
		SignalSizeAnomaly,
		SignalTightSensitiveMarket,
		SignalTemporalClustering,
	}
	if len(fired) != len(want) {
		t.Fatalf("fired = %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Errorf("fired[%d] = %s, want %s", i, fired[i], want[i])
		}
	}

	// Determinism: identical inputs, identical output.
	again, err := f.engine.Evaluate(ctx, candidateTrade())
	if err != nil {
		t.Fatalf("re-evaluate: %v", err)
	}
	if len(again) != len(fired) {
		t.Fatalf("second evaluation diverged: %v vs %v", again, fired)
	}
	for i := range fired {
		if again[i] != fired[i] {
			t.Errorf("second evaluation diverged at %d: %v vs %v", i, again, fired)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
