package storage

import (
	"context"

	"github.com/Solmidey/polymarket-insider/internal/domain"
)

// TradeStore provides access to raw trades storage. Trades back the
// per-market statistics the signal engine reads each cycle.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.Trade) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.Trade, error)

	// AvgSizeUSD returns the mean trade size on a market since the cutoff,
	// plus the number of trades behind the mean. Zero trades yields (0, 0).
	AvgSizeUSD(ctx context.Context, marketID string, since int64) (float64, int, error)

	// DistinctWallets returns the distinct wallets that traded the given
	// market outcome at or after the cutoff.
	DistinctWallets(ctx context.Context, marketID, outcome string, since int64) ([]string, error)

	// CountByWallet returns the wallet's trade count at or after the cutoff.
	CountByWallet(ctx context.Context, wallet string, since int64) (int, error)

	// SumSizeUSD returns total traded USD on a market since the cutoff.
	SumSizeUSD(ctx context.Context, marketID string, since int64) (float64, error)

	// RecentByMarket retrieves trades on a market at or after the cutoff,
	// ordered by timestamp ASC.
	RecentByMarket(ctx context.Context, marketID string, since int64) ([]*domain.Trade, error)
}

// WalletStore provides access to wallets storage.
type WalletStore interface {
	// Record creates the wallet on first observation (first_seen = ts) or
	// increments trade count / volume for a known wallet. Returns the
	// wallet state after the write.
	Record(ctx context.Context, address string, ts int64, sizeUSD float64) (*domain.Wallet, error)

	// GetByAddress retrieves a wallet. Returns ErrNotFound if never seen.
	GetByAddress(ctx context.Context, address string) (*domain.Wallet, error)
}

// FundingEdgeStore provides access to funding_edges storage.
type FundingEdgeStore interface {
	// Upsert writes the edge for (wallet, source), overwriting amount and
	// timestamp. Idempotent.
	Upsert(ctx context.Context, e *domain.FundingEdge) error

	// SourcesByWallet returns the wallet's funding-source identifiers.
	SourcesByWallet(ctx context.Context, wallet string) ([]string, error)

	// All returns every edge. Cluster computation rebuilds the graph from
	// this full set on demand.
	All(ctx context.Context) ([]*domain.FundingEdge, error)
}

// PositionStore provides access to positions storage.
type PositionStore interface {
	// Insert adds a new open position. Returns ErrDuplicateKey if
	// position_id exists.
	Insert(ctx context.Context, p *domain.Position) error

	// OpenByKey retrieves open positions for (wallet, market, outcome)
	// ordered by entry time ASC, then position_id ASC.
	OpenByKey(ctx context.Context, wallet, marketID, outcome string) ([]*domain.Position, error)

	// Close transitions one position to closed. Returns ErrNotFound if the
	// position does not exist or is already closed.
	Close(ctx context.Context, positionID string, exitPrice float64, exitTime int64, profitLoss, holdHours float64) error

	// ClosedByWalletMarket retrieves the wallet's closed positions in a market.
	ClosedByWalletMarket(ctx context.Context, wallet, marketID string) ([]*domain.Position, error)

	// ClosedByExitRange retrieves closed positions in a market whose exit
	// time falls within [start, end] (inclusive).
	ClosedByExitRange(ctx context.Context, marketID string, start, end int64) ([]*domain.Position, error)
}

// MarketEventStore provides access to market_events storage.
type MarketEventStore interface {
	// Upsert writes the market's resolution record, last write wins.
	Upsert(ctx context.Context, e *domain.MarketEvent) error

	// GetByID retrieves a market event. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, marketID string) (*domain.MarketEvent, error)
}

// AlertStore provides access to alerts storage.
type AlertStore interface {
	// Insert adds a new pending alert. Returns ErrDuplicateKey if alert_id
	// exists.
	Insert(ctx context.Context, a *domain.Alert) error

	// GetByID retrieves an alert. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, alertID string) (*domain.Alert, error)

	// Pending retrieves all pending alerts ordered by fired time ASC.
	Pending(ctx context.Context) ([]*domain.Alert, error)

	// Resolved retrieves all resolved alerts ordered by fired time ASC.
	Resolved(ctx context.Context) ([]*domain.Alert, error)

	// UpdatePeak overwrites peak price/timestamp on a pending alert.
	// Returns ErrNotFound if the alert does not exist or is not pending.
	// Callers enforce peak monotonicity before writing.
	UpdatePeak(ctx context.Context, alertID string, peakPrice float64, peakTime int64) error

	// Resolve applies the terminal resolution to a pending alert. Returns
	// ErrAlreadyResolved if the alert is resolved, ErrNotFound if absent.
	Resolve(ctx context.Context, alertID string, res domain.AlertResolution) error

	// RecentlyFired reports whether any alert for (wallet, market) fired at
	// or after the cutoff.
	RecentlyFired(ctx context.Context, wallet, marketID string, since int64) (bool, error)
}

// FilteredAlertStore provides access to the filtered-alert audit log.
type FilteredAlertStore interface {
	// Insert appends an audit record.
	Insert(ctx context.Context, f *domain.FilteredAlert) error

	// CountByReason returns audit counts keyed by gate-failure reason.
	CountByReason(ctx context.Context) (map[string]int, error)
}
