package domain

// SignalPerformance aggregates resolved alerts sharing one canonical
// signal combination. All profit figures assume the fixed $100
// YES-side notional used at resolution time.
type SignalPerformance struct {
	SignalKey string
	Signals   []string // the combination, sorted

	Alerts  int
	Wins    int
	Losses  int
	WinRate float64 // wins / alerts

	AvgPriceChange float64
	AvgPeakChange  float64

	TotalProfit  float64
	AvgProfit    float64
	MedianProfit float64
	BestProfit   float64
	WorstProfit  float64

	AvgHoursToOutcome float64

	// ContentScore rewards combinations that preceded large moves in
	// either direction: |avg peak change| * 100.
	ContentScore float64

	// ROI on total notional deployed across the combination's alerts.
	ROI float64
}
