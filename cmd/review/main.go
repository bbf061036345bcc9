// Package main runs a one-shot attribution pass and writes the
// performance report: score pending alerts against current market
// state, aggregate resolved alerts by signal combination, and render
// the results as Markdown and CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Solmidey/polymarket-insider/internal/attribution"
	"github.com/Solmidey/polymarket-insider/internal/config"
	"github.com/Solmidey/polymarket-insider/internal/reporting"
	"github.com/Solmidey/polymarket-insider/internal/resolution"
	"github.com/Solmidey/polymarket-insider/internal/storage/migrations"
	pgstore "github.com/Solmidey/polymarket-insider/internal/storage/postgres"
)

func main() {
	outputDir := flag.String("output-dir", "output", "Output directory for generated reports")
	skipReview := flag.Bool("skip-review", false, "Report on stored data without re-scoring pending alerts")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	alerts := pgstore.NewAlertStore(pool)
	filtered := pgstore.NewFilteredAlertStore(pool)
	events := pgstore.NewMarketEventStore(pool)

	if !*skipReview {
		reviewer := attribution.NewReviewer(alerts, events, resolution.NewClient(cfg.GammaURL), logger)
		stats, err := reviewer.Review(ctx)
		if err != nil {
			logger.Fatal("attribution review failed", zap.Error(err))
		}
		logger.Info("attribution review complete",
			zap.Int("checked", stats.Checked),
			zap.Int("peak_updates", stats.PeakUpdates),
			zap.Int("resolved", stats.Resolved),
			zap.Int("errors", stats.Errors))
	}

	report, err := reporting.NewGenerator(alerts, filtered).Generate(ctx)
	if err != nil {
		logger.Fatal("report generation failed", zap.Error(err))
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Fatal("create output dir", zap.Error(err))
	}

	mdPath := filepath.Join(*outputDir, "REPORT.md")
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		logger.Fatal("write markdown report", zap.Error(err))
	}
	csvPath := filepath.Join(*outputDir, "signal_performance.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.Performance)), 0o644); err != nil {
		logger.Fatal("write csv report", zap.Error(err))
	}

	s := report.Summary
	fmt.Printf("Report written to %s and %s\n", mdPath, csvPath)
	fmt.Printf("  pending=%d resolved=%d wins=%d losses=%d win_rate=%.1f%% total_profit=$%.2f filtered=%d\n",
		s.PendingAlerts, s.ResolvedAlerts, s.Wins, s.Losses, s.WinRate*100, s.TotalProfit, s.FilteredCount)
}
