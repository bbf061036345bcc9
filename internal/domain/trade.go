package domain

// Trade sides as reported by the feed.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Trade is one normalized trade event from the feed.
// Produced once by the ingestion boundary; never mutated afterwards.
type Trade struct {
	TradeID   string // deterministic hash when the feed omits an id
	TxHash    string
	Wallet    string
	MarketID  string
	Question  string // human-readable market question
	Category  string
	Outcome   string // outcome label, e.g. "Yes"
	Side      string // SideBuy or SideSell
	Price     float64 // probability price in [0,1]
	SizeUSD   float64
	Timestamp int64 // unix seconds
}
