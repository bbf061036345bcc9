// Package config handles loading and validating configuration from
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the detection engine.
type Config struct {
	// Storage
	DatabaseURL   string
	ClickhouseDSN string // optional trade archive

	// Feeds
	FeedURL      string
	WebsocketURL string // optional realtime source
	GammaURL     string

	// Scheduling
	PollInterval   time.Duration
	ReviewInterval time.Duration
	BatchSize      int

	// Detection thresholds
	MinConfidence      int
	AlertCooldown      time.Duration
	FreshWalletDays    int
	BigBetUSD          float64
	ClusterWindow      time.Duration
	MinMarketLiquidity float64
	MaxPriceJump       float64
	HighFreqThreshold  int

	// Notifications
	TelegramBotToken string
	TelegramChatID   string
	DiscordBotToken  string
	DiscordChannelID string

	// Observability
	MetricsAddr string
	LogLevel    string
}

// Load reads configuration from environment variables with fallback to
// a .env file. Environment variables win over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		ClickhouseDSN: getEnv("CLICKHOUSE_DSN", ""),

		FeedURL:      getEnv("FEED_URL", "https://data-api.polymarket.com"),
		WebsocketURL: getEnv("WS_URL", ""),
		GammaURL:     getEnv("GAMMA_URL", "https://gamma-api.polymarket.com"),

		PollInterval:   time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 30)) * time.Second,
		ReviewInterval: time.Duration(getEnvInt("REVIEW_INTERVAL_SECONDS", 300)) * time.Second,
		BatchSize:      getEnvInt("BATCH_SIZE", 20),

		MinConfidence:      getEnvInt("MIN_CONFIDENCE", 0),
		AlertCooldown:      time.Duration(getEnvInt("ALERT_COOLDOWN_MINUTES", 60)) * time.Minute,
		FreshWalletDays:    getEnvInt("FRESH_WALLET_DAYS", 7),
		BigBetUSD:          getEnvFloat("BIG_BET_USD", 5000),
		ClusterWindow:      time.Duration(getEnvInt("CLUSTER_WINDOW_MINUTES", 120)) * time.Minute,
		MinMarketLiquidity: getEnvFloat("MIN_MARKET_LIQUIDITY", 10000),
		MaxPriceJump:       getEnvFloat("MAX_PRICE_JUMP", 0.20),
		HighFreqThreshold:  getEnvInt("HIGH_FREQ_TRADER_THRESHOLD", 50),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		DiscordBotToken:  getEnv("DISCORD_BOT_TOKEN", ""),
		DiscordChannelID: getEnv("DISCORD_CHANNEL_ID", ""),

		MetricsAddr: getEnv("METRICS_ADDR", ":9091"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that required configuration values are set and valid.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.FeedURL == "" {
		return fmt.Errorf("FEED_URL is required")
	}
	if c.GammaURL == "" {
		return fmt.Errorf("GAMMA_URL is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL_SECONDS must be positive")
	}
	if c.ReviewInterval <= 0 {
		return fmt.Errorf("REVIEW_INTERVAL_SECONDS must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE must be positive")
	}
	if c.BigBetUSD <= 0 {
		return fmt.Errorf("BIG_BET_USD must be positive")
	}
	if c.MaxPriceJump <= 0 || c.MaxPriceJump >= 1 {
		return fmt.Errorf("MAX_PRICE_JUMP must be in (0, 1)")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 100 {
		return fmt.Errorf("MIN_CONFIDENCE must be in [0, 100]")
	}
	return nil
}

// MaskedDatabaseURL returns the database URL safe for logging.
func (c *Config) MaskedDatabaseURL() string {
	return maskSecret(c.DatabaseURL)
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
