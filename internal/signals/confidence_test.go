package signals

import "testing"

func TestConfidence(t *testing.T) {
	tests := []struct {
		name    string
		signals []string
		want    int
	}{
		{"empty", nil, 0},
		{"single legacy name", []string{"fresh_wallet"}, 25},
		{"legacy combination", []string{"fresh_wallet", "large_trade", "clustered_activity"}, 80},
		{"clamp at 100", []string{"fresh_wallet", "large_trade", "clustered_activity", "low_probability_entry"}, 100},
		{"unknown contributes zero", []string{"fresh_wallet", "SOME_FUTURE_SIGNAL"}, 25},
		{"canonical names", []string{SignalFreshWalletBigBet, SignalSizeAnomaly}, 55},
		{"unweighted canonical signals", []string{SignalSharedFundingSource, SignalEarlyExitPattern}, 0},
		{"end-to-end combination", []string{
			SignalFreshWalletBigBet, SignalSizeAnomaly,
			SignalTightSensitiveMarket, SignalTemporalClustering,
		}, 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Confidence(tt.signals); got != tt.want {
				t.Errorf("Confidence(%v) = %d, want %d", tt.signals, got, tt.want)
			}
		})
	}
}
