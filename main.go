package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"trend-relay/internal/engine"
	"trend-relay/internal/events"
	"trend-relay/internal/market"
	"trend-relay/internal/relay"
	"trend-relay/internal/stats"
	"trend-relay/pkg/config"
	"trend-relay/pkg/db"
	"trend-relay/pkg/exchange"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	params, err := config.LoadParams(cfg.StrategyConfig)
	if err != nil {
		log.Fatalf("load strategy params: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer database.Close()
	if err := db.ApplyMigrations(database); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	bus := events.NewBus()
	tracker := stats.NewTracker()

	// The public endpoints (ticker, markets) need no credentials; order
	// submission does. Without credentials the relay acknowledges alerts in
	// dry-run mode instead of trading.
	kraken := exchange.NewKraken(cfg.KrakenAPIKey, cfg.KrakenAPISecret)
	var venue exchange.Client
	if cfg.HasExchangeCredentials() {
		venue = kraken
		log.Println("[MAIN] exchange credentials found, live order submission enabled")
	} else {
		log.Println("[MAIN] no exchange credentials, relay runs in dry-run mode")
	}

	server := relay.NewServer(cfg.WebhookSecret, venue, &relay.SymbolMapper{ListMarkets: kraken.LoadMarkets})
	server.Journal = database
	server.Stats = tracker
	server.Bus = bus

	go func() {
		addr := ":" + cfg.Port
		log.Printf("[MAIN] relay listening on %s", addr)
		if err := server.Start(addr); err != nil {
			log.Fatalf("relay server: %v", err)
		}
	}()

	candles, stopFeed, err := startFeed(ctx, cfg)
	if err != nil {
		log.Fatalf("start feed: %v", err)
	}
	defer stopFeed()

	session := engine.NewSession(cfg.AlertSymbol, cfg.OrderAmountUSD, cfg.InitialEquity, params.Strategy, params.Risk, tracker)
	session.Sender = engine.NewHTTPSender(relayURL(cfg))
	session.Bus = bus
	session.Journal = engine.DBJournal{DB: database}

	log.Printf("[MAIN] session started: symbol=%s equity=%.2f amount=%.2f",
		cfg.AlertSymbol, cfg.InitialEquity, cfg.OrderAmountUSD)
	session.Run(ctx, candles)

	log.Println("[MAIN] candle stream ended, shutting down")
}

func startFeed(ctx context.Context, cfg *config.Config) (<-chan market.Candle, func(), error) {
	if cfg.UseMockFeed {
		log.Println("[MAIN] using mock candle feed")
		feed := &market.MockFeed{StartPrice: 100, Interval: time.Second}
		return feed.Start(ctx), func() {}, nil
	}
	log.Printf("[MAIN] subscribing to %s ohlc, interval %dm", cfg.FeedPair, cfg.FeedInterval)
	return market.NewFeed().Subscribe(ctx, cfg.FeedPair, cfg.FeedInterval)
}

func relayURL(cfg *config.Config) string {
	if cfg.RelayURL != "" {
		return cfg.RelayURL
	}
	token := cfg.WebhookSecret
	if token == "" {
		token = "local"
	}
	return "http://127.0.0.1:" + cfg.Port + "/webhook/" + token
}
