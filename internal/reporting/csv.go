package reporting

import (
	"fmt"
	"strings"

	"github.com/Solmidey/polymarket-insider/internal/domain"
)

// RenderCSV renders signal-combination performance as CSV string.
func RenderCSV(perfs []*domain.SignalPerformance) string {
	var sb strings.Builder

	// Header
	sb.WriteString("signal_key,alerts,wins,losses,win_rate,")
	sb.WriteString("avg_price_change,avg_peak_change,")
	sb.WriteString("total_profit,avg_profit,median_profit,best_profit,worst_profit,")
	sb.WriteString("avg_hours_to_outcome,content_score,roi\n")

	// Rows
	for _, p := range perfs {
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			p.SignalKey,
			p.Alerts,
			p.Wins,
			p.Losses,
			p.WinRate,
			p.AvgPriceChange,
			p.AvgPeakChange,
			p.TotalProfit,
			p.AvgProfit,
			p.MedianProfit,
			p.BestProfit,
			p.WorstProfit,
			p.AvgHoursToOutcome,
			p.ContentScore,
			p.ROI,
		))
	}

	return sb.String()
}
