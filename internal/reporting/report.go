package reporting

import (
	"time"

	"github.com/Solmidey/polymarket-insider/internal/domain"
)

// Report is the retrospective attribution report: what the fired alerts
// did, which signal combinations carried them, and what the decision
// gates rejected.
type Report struct {
	// Metadata
	GeneratedAt time.Time

	// Alert Summary
	Summary AlertSummary

	// Performance per signal combination (sorted by signal key)
	Performance []*domain.SignalPerformance

	// Rankings (best first)
	TopByWinRate      []*domain.SignalPerformance
	TopByTotalProfit  []*domain.SignalPerformance
	TopByContentScore []*domain.SignalPerformance
	TopByROI          []*domain.SignalPerformance

	// Filter Audit (sorted by count DESC, then reason)
	FilterAudit []FilterAuditRow
}

// AlertSummary summarizes the alert population.
type AlertSummary struct {
	PendingAlerts  int
	ResolvedAlerts int
	Wins           int
	Losses         int
	WinRate        float64 // wins / resolved, 0 when nothing resolved
	TotalProfit    float64
	FilteredCount  int
}

// FilterAuditRow counts rejections per gate-failure reason.
type FilterAuditRow struct {
	Reason string
	Count  int
}
