package domain

import (
	"sort"
	"strings"
)

// Alert statuses.
const (
	AlertPending  = "pending"
	AlertResolved = "resolved"
)

// Alert is a fired detection. Immutable after creation except for
// monotonic peak updates while pending and a single terminal
// resolution write that flips status to resolved.
type Alert struct {
	AlertID     string
	Wallet      string
	MarketID    string
	Question    string
	Outcome     string
	FiredPrice  float64
	FiredTime   int64
	SizeUSD     float64
	Signals     []string // fired order, preserved for display
	SignalKey   string   // canonical aggregation key, see SignalKey()
	Confidence  int
	Sensitivity string // sensitivity level at fire time
	Status      string

	// Peak tracking, pending only.
	PeakPrice *float64
	PeakTime  *int64

	// Resolution, written exactly once.
	ResolvedOutcome *string
	ResolvedTime    *int64
	HoursToOutcome  *float64
	PriceChange     *float64
	PeakPriceChange *float64
	ProfitLoss      *float64
	IsCorrect       *bool
}

// AlertResolution carries the terminal fields of a pending→resolved
// transition.
type AlertResolution struct {
	Outcome         string
	ResolvedTime    int64
	HoursToOutcome  float64
	PriceChange     float64
	PeakPriceChange float64
	ProfitLoss      float64
	IsCorrect       bool
}

// SignalKey canonicalizes a fired signal list into the aggregation key:
// sorted and "|"-joined, so identical combinations never fragment on
// fire order.
func SignalKey(signals []string) string {
	if len(signals) == 0 {
		return ""
	}
	sorted := make([]string, len(signals))
	copy(sorted, signals)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// FilteredAlert is an audit record for a candidate alert rejected by
// a decision gate. Never retried.
type FilteredAlert struct {
	Wallet    string
	MarketID  string
	Question  string
	Signals   []string
	Reason    string // human-readable gate failure
	Price     float64
	SizeUSD   float64
	Timestamp int64
}
