package domain

// MarketEvent is the per-market resolution record. One row per market,
// upserted last-write-wins as resolution data becomes known.
type MarketEvent struct {
	MarketID        string
	Question        string
	Category        string
	EventType       string
	Resolved        bool
	ResolvedOutcome string
	ResolutionPrice float64
	ResolutionTime  int64
}
