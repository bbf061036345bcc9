package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/Solmidey/polymarket-insider/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Signal Attribution Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Alert Summary
	sb.WriteString("## Alert Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Pending Alerts | %d |\n", r.Summary.PendingAlerts))
	sb.WriteString(fmt.Sprintf("| Resolved Alerts | %d |\n", r.Summary.ResolvedAlerts))
	sb.WriteString(fmt.Sprintf("| Wins | %d |\n", r.Summary.Wins))
	sb.WriteString(fmt.Sprintf("| Losses | %d |\n", r.Summary.Losses))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.4f |\n", r.Summary.WinRate))
	sb.WriteString(fmt.Sprintf("| Total Profit | $%.2f |\n", r.Summary.TotalProfit))
	sb.WriteString(fmt.Sprintf("| Filtered Candidates | %d |\n", r.Summary.FilteredCount))
	sb.WriteString("\n")

	// Performance table
	sb.WriteString("## Signal Combination Performance\n\n")
	if len(r.Performance) > 0 {
		sb.WriteString("| Signals | Alerts | Wins | Losses | WinRate | AvgΔ | PeakΔ | Total$ | Avg$ | Median$ | Best$ | Worst$ | AvgHours | Content | ROI |\n")
		sb.WriteString("|---------|--------|------|--------|---------|------|-------|--------|------|---------|-------|--------|----------|---------|-----|\n")
		for _, p := range r.Performance {
			sb.WriteString(performanceRow(p))
		}
	} else {
		sb.WriteString("No resolved alerts yet.\n")
	}
	sb.WriteString("\n")

	// Rankings
	renderRanking(&sb, "Top by Win Rate", r.TopByWinRate,
		func(p *domain.SignalPerformance) string { return fmt.Sprintf("%.4f", p.WinRate) })
	renderRanking(&sb, "Top by Total Profit", r.TopByTotalProfit,
		func(p *domain.SignalPerformance) string { return fmt.Sprintf("$%.2f", p.TotalProfit) })
	renderRanking(&sb, "Top by Content Score", r.TopByContentScore,
		func(p *domain.SignalPerformance) string { return fmt.Sprintf("%.2f", p.ContentScore) })
	renderRanking(&sb, "Top by ROI", r.TopByROI,
		func(p *domain.SignalPerformance) string { return fmt.Sprintf("%.4f", p.ROI) })

	// Filter Audit
	sb.WriteString("## Filter Audit\n\n")
	if len(r.FilterAudit) > 0 {
		sb.WriteString("| Reason | Count |\n")
		sb.WriteString("|--------|-------|\n")
		for _, row := range r.FilterAudit {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", row.Reason, row.Count))
		}
	} else {
		sb.WriteString("No filtered candidates.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func performanceRow(p *domain.SignalPerformance) string {
	return fmt.Sprintf("| %s | %d | %d | %d | %.4f | %.4f | %.4f | %.2f | %.2f | %.2f | %.2f | %.2f | %.1f | %.2f | %.4f |\n",
		strings.Join(p.Signals, ", "),
		p.Alerts, p.Wins, p.Losses, p.WinRate,
		p.AvgPriceChange, p.AvgPeakChange,
		p.TotalProfit, p.AvgProfit, p.MedianProfit, p.BestProfit, p.WorstProfit,
		p.AvgHoursToOutcome, p.ContentScore, p.ROI)
}

func renderRanking(sb *strings.Builder, title string, perfs []*domain.SignalPerformance, metric func(*domain.SignalPerformance) string) {
	sb.WriteString(fmt.Sprintf("## %s\n\n", title))
	if len(perfs) == 0 {
		sb.WriteString("No data available.\n\n")
		return
	}

	sb.WriteString("| Rank | Signals | Value | Alerts |\n")
	sb.WriteString("|------|---------|-------|--------|\n")
	for i, p := range perfs {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %d |\n",
			i+1, strings.Join(p.Signals, ", "), metric(p), p.Alerts))
	}
	sb.WriteString("\n")
}
