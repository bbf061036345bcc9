// Package main runs the detection engine service: poll the trade feed,
// evaluate every trade against the signal set, fire alerts through the
// decision gates, and periodically score pending alerts against market
// outcomes.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Solmidey/polymarket-insider/internal/alerting"
	"github.com/Solmidey/polymarket-insider/internal/attribution"
	"github.com/Solmidey/polymarket-insider/internal/config"
	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/engine"
	"github.com/Solmidey/polymarket-insider/internal/graph"
	"github.com/Solmidey/polymarket-insider/internal/ingest"
	"github.com/Solmidey/polymarket-insider/internal/notify"
	"github.com/Solmidey/polymarket-insider/internal/observability"
	"github.com/Solmidey/polymarket-insider/internal/positions"
	"github.com/Solmidey/polymarket-insider/internal/resolution"
	"github.com/Solmidey/polymarket-insider/internal/signals"
	"github.com/Solmidey/polymarket-insider/internal/storage"
	chstore "github.com/Solmidey/polymarket-insider/internal/storage/clickhouse"
	"github.com/Solmidey/polymarket-insider/internal/storage/memory"
	"github.com/Solmidey/polymarket-insider/internal/storage/migrations"
	pgstore "github.com/Solmidey/polymarket-insider/internal/storage/postgres"
)

// stores groups the storage implementations the engine needs.
type stores struct {
	trades   storage.TradeStore
	wallets  storage.WalletStore
	alerts   storage.AlertStore
	filtered storage.FilteredAlertStore
	events   storage.MarketEventStore
	posns    storage.PositionStore
	funding  storage.FundingEdgeStore
}

func main() {
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL (state lost on restart)")
	flag.Parse()

	if *useMemory && os.Getenv("DATABASE_URL") == "" {
		// Config validation requires a DSN; memory mode never dials it.
		os.Setenv("DATABASE_URL", "memory://")
	}

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := createStores(ctx, cfg, *useMemory)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}
	defer cleanup()

	var archive engine.TradeArchiver
	if cfg.ClickhouseDSN != "" && !*useMemory {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			logger.Fatal("clickhouse init failed", zap.Error(err))
		}
		defer conn.Close()
		archive = chstore.NewTradeArchiveStore(conn)
	}

	tracker := positions.NewTracker(st.posns)
	fundingGraph := graph.New(st.funding)

	sigCfg := signals.DefaultConfig()
	sigCfg.FreshWalletMaxAgeDays = cfg.FreshWalletDays
	sigCfg.BigBetUSD = cfg.BigBetUSD
	sigCfg.ClusterWindowMinutes = int(cfg.ClusterWindow.Minutes())
	sigEngine := signals.NewEngine(sigCfg, st.wallets, st.trades, fundingGraph, tracker)

	noiseCfg := alerting.DefaultNoiseConfig()
	noiseCfg.MinMarketLiquidity = cfg.MinMarketLiquidity
	noiseCfg.MaxPriceJump = cfg.MaxPriceJump
	noiseCfg.HFTThreshold = cfg.HighFreqThreshold
	decider := alerting.NewDecider(alerting.Config{
		MinConfidence:   cfg.MinConfidence,
		CooldownMinutes: int(cfg.AlertCooldown.Minutes()),
	}, alerting.NewNoiseGate(noiseCfg, st.trades), st.alerts, st.filtered)

	reviewer := attribution.NewReviewer(st.alerts, st.events, resolution.NewClient(cfg.GammaURL), logger)

	runner := engine.New(engine.Options{
		Trades:         st.trades,
		Wallets:        st.wallets,
		Alerts:         st.alerts,
		Source:         ingest.NewFeedClient(cfg.FeedURL),
		Signals:        sigEngine,
		Tracker:        tracker,
		Decider:        decider,
		Reviewer:       reviewer,
		Notifier:       buildNotifier(cfg, logger),
		Archive:        archive,
		Log:            logger,
		PollInterval:   cfg.PollInterval,
		ReviewInterval: cfg.ReviewInterval,
		BatchSize:      cfg.BatchSize,
	})

	if cfg.WebsocketURL != "" {
		startRealtime(ctx, cfg.WebsocketURL, runner, logger)
	}

	metricsSrv := startMetricsServer(cfg.MetricsAddr, logger)
	defer shutdownMetricsServer(metricsSrv, logger)

	logger.Info("detection engine starting",
		zap.String("feed_url", cfg.FeedURL),
		zap.String("gamma_url", cfg.GammaURL),
		zap.String("database", cfg.MaskedDatabaseURL()),
		zap.Bool("memory_mode", *useMemory),
		zap.Bool("archive_enabled", archive != nil))

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("engine exited", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// createStores builds either the in-memory stack or the PostgreSQL
// stack with migrations applied.
func createStores(ctx context.Context, cfg *config.Config, useMemory bool) (*stores, func(), error) {
	if useMemory {
		return &stores{
			trades:   memory.NewTradeStore(),
			wallets:  memory.NewWalletStore(),
			alerts:   memory.NewAlertStore(),
			filtered: memory.NewFilteredAlertStore(),
			events:   memory.NewMarketEventStore(),
			posns:    memory.NewPositionStore(),
			funding:  memory.NewFundingEdgeStore(),
		}, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return &stores{
		trades:   pgstore.NewTradeStore(pool),
		wallets:  pgstore.NewWalletStore(pool),
		alerts:   pgstore.NewAlertStore(pool),
		filtered: pgstore.NewFilteredAlertStore(pool),
		events:   pgstore.NewMarketEventStore(pool),
		posns:    pgstore.NewPositionStore(pool),
		funding:  pgstore.NewFundingEdgeStore(pool),
	}, pool.Close, nil
}

// buildNotifier assembles the configured delivery channels. Returns nil
// when none are configured; alerts still land in storage.
func buildNotifier(cfg *config.Config, log *zap.Logger) notify.Notifier {
	var channels []notify.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		channels = append(channels, notify.NewTelegram(log, cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	if cfg.DiscordBotToken != "" && cfg.DiscordChannelID != "" {
		channels = append(channels, notify.NewDiscord(log, cfg.DiscordBotToken, cfg.DiscordChannelID))
	}
	if len(channels) == 0 {
		log.Warn("no notification channels configured")
		return nil
	}
	return notify.NewMulti(log, channels...)
}

// startRealtime feeds websocket trades into the pipeline alongside the
// polling loop.
func startRealtime(ctx context.Context, url string, runner *engine.Runner, log *zap.Logger) {
	out := make(chan *domain.Trade, 256)
	listener := ingest.NewListener(url, out, log)
	go listener.Run(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-out:
				if err := runner.Ingest(ctx, t); err != nil {
					log.Warn("realtime trade failed",
						zap.String("trade_id", t.TradeID),
						zap.Error(err))
				}
			}
		}
	}()
	log.Info("realtime listener started", zap.String("ws_url", url))
}

func startMetricsServer(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	log.Info("metrics server listening", zap.String("addr", addr))
	return srv
}

func shutdownMetricsServer(srv *http.Server, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("metrics server shutdown", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
