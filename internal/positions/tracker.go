// Package positions tracks open and closed bets per wallet, market and
// outcome, resolving exits against entries FIFO.
package positions

import (
	"context"
	"fmt"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/idhash"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

const (
	// earlyExitMinClosed and earlyExitMaxAvgHold bound the early-exit
	// heuristic: quick repeated round-trips in one market.
	earlyExitMinClosed  = 2
	earlyExitMaxAvgHold = 6.0 // hours
	secondsPerHour      = 3600.0
	defaultBeforeHours  = 24.0
	defaultAfterHours   = 48.0
)

// Tracker maintains positions over a position store. Stateless between
// calls; every operation rehydrates from storage.
type Tracker struct {
	store storage.PositionStore
}

// NewTracker creates a Tracker over the given store.
func NewTracker(store storage.PositionStore) *Tracker {
	return &Tracker{store: store}
}

// RecordEntry appends a new open position for the trade. Entries are
// never merged, so repeated buys model partial fills as separate
// positions.
func (t *Tracker) RecordEntry(ctx context.Context, trade *domain.Trade) (*domain.Position, error) {
	p := &domain.Position{
		PositionID:  idhash.PositionID(trade.Wallet, trade.MarketID, trade.Outcome, trade.Timestamp, trade.TradeID),
		Wallet:      trade.Wallet,
		MarketID:    trade.MarketID,
		Outcome:     trade.Outcome,
		EntryPrice:  trade.Price,
		EntryAmount: trade.SizeUSD,
		EntryTime:   trade.Timestamp,
		Status:      domain.PositionOpen,
	}

	if err := t.store.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("record entry: %w", err)
	}
	return p, nil
}

// RecordExit closes the oldest open position for the trade's
// (wallet, market, outcome) key. Returns (nil, nil) when no open
// position exists; an exit without an entry is a no-op, never a
// fabricated position. The full entry amount is closed.
func (t *Tracker) RecordExit(ctx context.Context, trade *domain.Trade) (*domain.ExitResult, error) {
	open, err := t.store.OpenByKey(ctx, trade.Wallet, trade.MarketID, trade.Outcome)
	if err != nil {
		return nil, fmt.Errorf("record exit: %w", err)
	}
	if len(open) == 0 {
		return nil, nil
	}

	oldest := open[0]
	profitLoss := (trade.Price - oldest.EntryPrice) * oldest.EntryAmount
	holdHours := float64(trade.Timestamp-oldest.EntryTime) / secondsPerHour

	if err := t.store.Close(ctx, oldest.PositionID, trade.Price, trade.Timestamp, profitLoss, holdHours); err != nil {
		return nil, fmt.Errorf("close position %s: %w", oldest.PositionID, err)
	}

	exitPrice := trade.Price
	exitTime := trade.Timestamp
	oldest.Status = domain.PositionClosed
	oldest.ExitPrice = &exitPrice
	oldest.ExitTime = &exitTime
	oldest.ProfitLoss = &profitLoss
	oldest.HoldHours = &holdHours

	return &domain.ExitResult{
		Position:   oldest,
		ProfitLoss: profitLoss,
		HoldHours:  holdHours,
	}, nil
}

// SuspiciousExits returns closed positions in the market whose exit
// fell inside [eventTime − beforeHours, eventTime + afterHours],
// annotated with signed hours from the event. Zero hour arguments take
// the defaults (24h before, 48h after).
func (t *Tracker) SuspiciousExits(ctx context.Context, marketID string, eventTime int64, beforeHours, afterHours float64) ([]*domain.SuspiciousExit, error) {
	if beforeHours <= 0 {
		beforeHours = defaultBeforeHours
	}
	if afterHours <= 0 {
		afterHours = defaultAfterHours
	}

	start := eventTime - int64(beforeHours*secondsPerHour)
	end := eventTime + int64(afterHours*secondsPerHour)

	closed, err := t.store.ClosedByExitRange(ctx, marketID, start, end)
	if err != nil {
		return nil, fmt.Errorf("suspicious exits: %w", err)
	}

	exits := make([]*domain.SuspiciousExit, 0, len(closed))
	for _, p := range closed {
		exits = append(exits, &domain.SuspiciousExit{
			Position:       p,
			HoursFromEvent: float64(*p.ExitTime-eventTime) / secondsPerHour,
		})
	}
	return exits, nil
}

// EarlyExitPattern reports whether the wallet shows quick-profit exit
// behavior in the market: at least two closed positions with an average
// hold under six hours. Legitimate scalping trips this too; accepted.
func (t *Tracker) EarlyExitPattern(ctx context.Context, wallet, marketID string) (bool, error) {
	closed, err := t.store.ClosedByWalletMarket(ctx, wallet, marketID)
	if err != nil {
		return false, fmt.Errorf("early exit pattern: %w", err)
	}
	if len(closed) < earlyExitMinClosed {
		return false, nil
	}

	var totalHold float64
	for _, p := range closed {
		totalHold += *p.HoldHours
	}
	avgHold := totalHold / float64(len(closed))

	return avgHold < earlyExitMaxAvgHold, nil
}
