package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the relay and the signal engine.
type Config struct {
	Port string

	// Webhook relay
	WebhookSecret string
	RelayURL      string // where the engine posts its alerts; defaults to the local relay

	// Kraken
	KrakenAPIKey    string
	KrakenAPISecret string

	// Market data
	UseMockFeed  bool
	FeedPair     string // websocket OHLC pair, e.g. "XBT/USD"
	AlertSymbol  string // symbol written into outbound alerts, e.g. "BTC-USD"
	FeedInterval int    // candle interval in minutes

	// Engine
	InitialEquity  float64
	OrderAmountUSD float64
	StrategyConfig string // optional YAML file with strategy/risk parameters

	// Database
	DBPath string
}

// Load reads environment variables (optionally via .env) into Config.
func Load() (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		WebhookSecret:   os.Getenv("WEBHOOK_SECRET"),
		RelayURL:        getEnv("RELAY_URL", ""),
		KrakenAPIKey:    os.Getenv("KRAKEN_API_KEY"),
		KrakenAPISecret: os.Getenv("KRAKEN_API_SECRET"),
		UseMockFeed:     getEnv("USE_MOCK_FEED", "true") == "true",
		FeedPair:        getEnv("FEED_PAIR", "XBT/USD"),
		AlertSymbol:     getEnv("ALERT_SYMBOL", "BTC-USD"),
		FeedInterval:    getEnvInt("FEED_INTERVAL_MIN", 1),
		InitialEquity:   getEnvFloat("INITIAL_EQUITY", 100.0),
		OrderAmountUSD:  getEnvFloat("ORDER_AMOUNT_USD", 10.0),
		StrategyConfig:  getEnv("STRATEGY_CONFIG", ""),
		DBPath:          getEnv("DB_PATH", "./data/trades.db"),
	}, nil
}

// HasExchangeCredentials reports whether live order submission is configured.
func (c *Config) HasExchangeCredentials() bool {
	return c.KrakenAPIKey != "" && c.KrakenAPISecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return def
}
