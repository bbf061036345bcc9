package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Solmidey/polymarket-insider/internal/attribution"
	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// rankingDepth caps each ranking table.
const rankingDepth = 10

// Generator produces attribution reports from stored data.
type Generator struct {
	alertStore    storage.AlertStore
	filteredStore storage.FilteredAlertStore
	now           func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(alertStore storage.AlertStore, filteredStore storage.FilteredAlertStore) *Generator {
	return &Generator{
		alertStore:    alertStore,
		filteredStore: filteredStore,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete attribution report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	perfs, err := attribution.Aggregate(ctx, g.alertStore)
	if err != nil {
		return nil, fmt.Errorf("aggregate performance: %w", err)
	}

	summary, err := g.generateSummary(ctx, perfs)
	if err != nil {
		return nil, err
	}

	audit, err := g.generateFilterAudit(ctx)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt:       g.now(),
		Summary:           summary,
		Performance:       perfs,
		TopByWinRate:      truncateRanking(attribution.RankByWinRate(perfs)),
		TopByTotalProfit:  truncateRanking(attribution.RankByTotalProfit(perfs)),
		TopByContentScore: truncateRanking(attribution.RankByContentScore(perfs)),
		TopByROI:          truncateRanking(attribution.RankByROI(perfs)),
		FilterAudit:       audit,
	}, nil
}

func (g *Generator) generateSummary(ctx context.Context, perfs []*domain.SignalPerformance) (AlertSummary, error) {
	pending, err := g.alertStore.Pending(ctx)
	if err != nil {
		return AlertSummary{}, fmt.Errorf("load pending alerts: %w", err)
	}

	summary := AlertSummary{PendingAlerts: len(pending)}
	for _, p := range perfs {
		summary.ResolvedAlerts += p.Alerts
		summary.Wins += p.Wins
		summary.Losses += p.Losses
		summary.TotalProfit += p.TotalProfit
	}
	if summary.ResolvedAlerts > 0 {
		summary.WinRate = float64(summary.Wins) / float64(summary.ResolvedAlerts)
	}

	counts, err := g.filteredStore.CountByReason(ctx)
	if err != nil {
		return AlertSummary{}, fmt.Errorf("load filter counts: %w", err)
	}
	for _, n := range counts {
		summary.FilteredCount += n
	}
	return summary, nil
}

func (g *Generator) generateFilterAudit(ctx context.Context) ([]FilterAuditRow, error) {
	counts, err := g.filteredStore.CountByReason(ctx)
	if err != nil {
		return nil, fmt.Errorf("load filter counts: %w", err)
	}

	rows := make([]FilterAuditRow, 0, len(counts))
	for reason, count := range counts {
		rows = append(rows, FilterAuditRow{Reason: reason, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Reason < rows[j].Reason
	})
	return rows, nil
}

func truncateRanking(perfs []*domain.SignalPerformance) []*domain.SignalPerformance {
	if len(perfs) > rankingDepth {
		return perfs[:rankingDepth]
	}
	return perfs
}
