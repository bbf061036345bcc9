package domain

// Position statuses.
const (
	PositionOpen   = "open"
	PositionClosed = "closed"
)

// Position is one directional bet on a market outcome by one wallet.
// Exits close the oldest still-open position for the same
// (wallet, market, outcome) key. Exit fields are nil while open.
// A position transitions to closed at most once.
type Position struct {
	PositionID  string
	Wallet      string
	MarketID    string
	Outcome     string
	EntryPrice  float64
	EntryAmount float64 // USD notional at entry; exits close the full amount
	EntryTime   int64
	Status      string

	ExitPrice  *float64
	ExitTime   *int64
	ProfitLoss *float64
	HoldHours  *float64
}

// ExitResult describes a closed position returned by exit matching.
type ExitResult struct {
	Position   *Position
	ProfitLoss float64
	HoldHours  float64
}

// SuspiciousExit is a closed position whose exit fell inside the
// window around a market event, annotated with signed distance.
type SuspiciousExit struct {
	Position       *Position
	HoursFromEvent float64 // negative = before the event
}
