package signals

// Weight names carried over from the first-generation detector, still
// accepted so historical signal lists keep scoring.
const (
	weightFreshWallet      = 25
	weightLargeTrade       = 30
	weightLowProbEntry     = 20
	weightHighSensitivity  = 15
	weightClusteredTrading = 25
)

// signalWeights maps signal names to confidence weights. Signals
// without a published weight contribute 0, which keeps the scorer
// forward-compatible with new signals.
var signalWeights = map[string]int{
	"fresh_wallet":            weightFreshWallet,
	"large_trade":             weightLargeTrade,
	"low_probability_entry":   weightLowProbEntry,
	"high_sensitivity_market": weightHighSensitivity,
	"clustered_activity":      weightClusteredTrading,

	SignalFreshWalletBigBet:    weightFreshWallet,
	SignalSizeAnomaly:          weightLargeTrade,
	SignalTightSensitiveMarket: weightHighSensitivity,
	SignalTemporalClustering:   weightClusteredTrading,
}

// Confidence maps a fired signal set to a bounded [0,100] score. The
// score is advisory, secondary to the sensitivity-derived
// required-signal gate.
func Confidence(signals []string) int {
	score := 0
	for _, s := range signals {
		score += signalWeights[s]
	}
	if score > 100 {
		return 100
	}
	return score
}
