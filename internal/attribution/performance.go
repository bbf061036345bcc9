package attribution

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// Aggregate groups all resolved alerts by canonical signal combination
// and computes per-combination performance. The result is sorted by
// signal key for stable output.
func Aggregate(ctx context.Context, alerts storage.AlertStore) ([]*domain.SignalPerformance, error) {
	resolved, err := alerts.Resolved(ctx)
	if err != nil {
		return nil, fmt.Errorf("load resolved alerts: %w", err)
	}

	groups := make(map[string][]*domain.Alert)
	for _, a := range resolved {
		key := a.SignalKey
		if key == "" {
			key = domain.SignalKey(a.Signals)
		}
		groups[key] = append(groups[key], a)
	}

	perfs := make([]*domain.SignalPerformance, 0, len(groups))
	for key, group := range groups {
		perfs = append(perfs, aggregateGroup(key, group))
	}
	sort.Slice(perfs, func(i, j int) bool { return perfs[i].SignalKey < perfs[j].SignalKey })
	return perfs, nil
}

func aggregateGroup(key string, group []*domain.Alert) *domain.SignalPerformance {
	p := &domain.SignalPerformance{
		SignalKey: key,
		Signals:   strings.Split(key, "|"),
		Alerts:    len(group),
	}

	profits := make([]float64, 0, len(group))
	var priceSum, peakSum, hoursSum float64
	for _, a := range group {
		profit := deref(a.ProfitLoss)
		profits = append(profits, profit)
		p.TotalProfit += profit

		priceSum += deref(a.PriceChange)
		peakSum += deref(a.PeakPriceChange)
		if a.HoursToOutcome != nil {
			hoursSum += *a.HoursToOutcome
		}

		if a.IsCorrect != nil && *a.IsCorrect {
			p.Wins++
		} else {
			p.Losses++
		}
	}

	n := float64(len(group))
	p.WinRate = float64(p.Wins) / n
	p.AvgPriceChange = priceSum / n
	p.AvgPeakChange = peakSum / n
	p.AvgProfit = p.TotalProfit / n
	p.AvgHoursToOutcome = hoursSum / n
	p.MedianProfit = median(profits)

	sort.Float64s(profits)
	p.WorstProfit = profits[0]
	p.BestProfit = profits[len(profits)-1]

	p.ContentScore = math.Abs(p.AvgPeakChange) * 100
	p.ROI = p.TotalProfit / (n * notionalUSD)
	return p
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// rankBy returns a copy of perfs sorted descending by the given metric,
// signal key breaking ties.
func rankBy(perfs []*domain.SignalPerformance, metric func(*domain.SignalPerformance) float64) []*domain.SignalPerformance {
	ranked := make([]*domain.SignalPerformance, len(perfs))
	copy(ranked, perfs)
	sort.SliceStable(ranked, func(i, j int) bool {
		mi, mj := metric(ranked[i]), metric(ranked[j])
		if mi != mj {
			return mi > mj
		}
		return ranked[i].SignalKey < ranked[j].SignalKey
	})
	return ranked
}

// RankByWinRate orders combinations by win rate, best first.
func RankByWinRate(perfs []*domain.SignalPerformance) []*domain.SignalPerformance {
	return rankBy(perfs, func(p *domain.SignalPerformance) float64 { return p.WinRate })
}

// RankByTotalProfit orders combinations by total profit, best first.
func RankByTotalProfit(perfs []*domain.SignalPerformance) []*domain.SignalPerformance {
	return rankBy(perfs, func(p *domain.SignalPerformance) float64 { return p.TotalProfit })
}

// RankByContentScore orders combinations by the size of the move they
// preceded, regardless of direction.
func RankByContentScore(perfs []*domain.SignalPerformance) []*domain.SignalPerformance {
	return rankBy(perfs, func(p *domain.SignalPerformance) float64 { return p.ContentScore })
}

// RankByROI orders combinations by return on deployed notional.
func RankByROI(perfs []*domain.SignalPerformance) []*domain.SignalPerformance {
	return rankBy(perfs, func(p *domain.SignalPerformance) float64 { return p.ROI })
}
