package relay

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"trend-relay/internal/events"
	"trend-relay/internal/stats"
	"trend-relay/pkg/db"
	"trend-relay/pkg/exchange"
)

// messageKeys are the JSON fields probed for the alert text before falling
// back to the raw body.
var messageKeys = []string{"message", "text", "alert", "payload"}

const maxBodyBytes = 1 << 20

// Server translates webhook alerts into exchange orders.
type Server struct {
	Router *gin.Engine

	// Secret authenticates the webhook path token; empty disables auth.
	Secret string
	// Exchange executes live orders; nil puts the relay in dry-run mode.
	Exchange exchange.Client
	Mapper   *SymbolMapper
	Dedup    *Deduper

	// Optional collaborators; each may be nil.
	Journal *db.Database
	Stats   *stats.Tracker
	Bus     *events.Bus

	// QtyDecimals rounds the converted base quantity. Fixed per server for
	// now; per-pair lot-size awareness would move this into market metadata.
	QtyDecimals int
}

// NewServer wires routes and middleware around the relay pipeline.
func NewServer(secret string, exch exchange.Client, mapper *SymbolMapper) *Server {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger())
	r.Use(RateLimitMiddleware(rate.Limit(20), 50))

	s := &Server{
		Router:      r,
		Secret:      secret,
		Exchange:    exch,
		Mapper:      mapper,
		Dedup:       NewDeduper(time.Minute),
		QtyDecimals: 8,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/stats", s.getStats)
	s.Router.GET("/trades", s.getTrades)
	s.Router.POST("/webhook/:token", s.webhook)
}

// Start runs the HTTP server on addr.
func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "dry_run": s.Exchange == nil})
}

func (s *Server) getStats(c *gin.Context) {
	if s.Stats == nil {
		c.JSON(http.StatusOK, stats.Summary{})
		return
	}
	c.JSON(http.StatusOK, s.Stats.Snapshot())
}

func (s *Server) getTrades(c *gin.Context) {
	if s.Journal == nil {
		c.JSON(http.StatusOK, []db.ClosedTradeRow{})
		return
	}
	rows, err := s.Journal.ListClosedTrades(c.Request.Context(), 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []db.ClosedTradeRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// webhook is the alert-to-order pipeline: authenticate, extract, parse,
// validate, map, then either acknowledge (dry-run) or execute.
func (s *Server) webhook(c *gin.Context) {
	if !s.authenticate(c.Param("token")) {
		c.JSON(http.StatusForbidden, gin.H{"error": ErrBadToken.Error()})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body", "body": ""})
		return
	}

	text := extractMessage(body)
	msg, err := ParseAlert(text)
	if err != nil {
		var reason string
		if pe, ok := err.(*PayloadError); ok {
			reason = pe.Reason
		} else {
			reason = err.Error()
		}
		log.Printf("[RELAY] rejected alert: %s body=%q", reason, string(body))
		c.JSON(http.StatusBadRequest, gin.H{"error": reason, "body": string(body)})
		return
	}

	pair := s.Mapper.Map(c.Request.Context(), msg.Symbol)

	// An at-least-once sender may deliver the same alert twice; acknowledge
	// the repeat without producing a second order. Only acted-on deliveries
	// are marked, so a retry after a 500 goes through.
	if s.Dedup != nil && s.Dedup.Seen(body, time.Now()) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "duplicate",
			"symbol":     pair,
			"action":     msg.Action,
			"amount_usd": msg.AmountUSD,
		})
		return
	}

	if s.Exchange == nil {
		s.acknowledgeDryRun(c, pair, msg)
		s.markDelivered(body)
		return
	}
	if s.execute(c, pair, msg) {
		s.markDelivered(body)
	}
}

func (s *Server) markDelivered(body []byte) {
	if s.Dedup != nil {
		s.Dedup.Mark(body, time.Now())
	}
}

// authenticate compares the path token against the secret in constant time.
// An empty secret accepts everything (local development).
func (s *Server) authenticate(token string) bool {
	if s.Secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.Secret)) == 1
}

// extractMessage pulls the alert text out of a JSON body under one of the
// recognized keys, falling back to the raw body.
func extractMessage(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, key := range messageKeys {
			if v, ok := obj[key].(string); ok && v != "" {
				return v
			}
		}
	}
	return strings.TrimSpace(string(body))
}

func (s *Server) acknowledgeDryRun(c *gin.Context, pair string, msg AlertMessage) {
	log.Printf("[RELAY] dry-run %s %s $%.2f", msg.Action, pair, msg.AmountUSD)
	s.journalOrder(c, db.RelayOrderRow{
		ID: uuid.NewString(), Symbol: pair, Side: sideOf(msg),
		AmountUSD: msg.AmountUSD, Status: "dry_run", DryRun: true,
	})
	s.publishOrder(pair, sideOf(msg), 0, msg.AmountUSD, true)

	c.JSON(http.StatusOK, gin.H{
		"status":     "dry_run",
		"symbol":     pair,
		"action":     msg.Action,
		"amount_usd": msg.AmountUSD,
	})
}

// execute runs the live order path and reports whether an order was placed.
func (s *Server) execute(c *gin.Context, pair string, msg AlertMessage) bool {
	ctx := c.Request.Context()

	ticker, err := s.Exchange.FetchTicker(ctx, pair)
	if err != nil {
		execErr := &ExecutionError{Err: err}
		log.Printf("[RELAY] %v", execErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": execErr.Error()})
		return false
	}
	price := usablePrice(ticker)
	if price <= 0 {
		perr := &PriceUnavailableError{Symbol: pair}
		log.Printf("[RELAY] %v", perr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": perr.Error()})
		return false
	}

	side := sideOf(msg)
	qty := roundTo(msg.AmountUSD/price, s.QtyDecimals)

	order, err := s.Exchange.CreateMarketOrder(ctx, pair, side, qty)
	if err != nil {
		execErr := &ExecutionError{Err: err}
		log.Printf("[RELAY] %v", execErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": execErr.Error()})
		return false
	}

	log.Printf("[RELAY] submitted %s %s qty=%v @ %.2f", side, pair, qty, price)
	s.journalOrder(c, db.RelayOrderRow{
		ID: orderID(order), Symbol: pair, Side: side,
		AmountUSD: msg.AmountUSD, QtyBase: qty, Price: price, Status: order.Status,
	})
	s.publishOrder(pair, side, qty, msg.AmountUSD, false)

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"symbol":     pair,
		"action":     msg.Action,
		"amount_usd": msg.AmountUSD,
		"order":      order,
	})
	return true
}

func (s *Server) journalOrder(c *gin.Context, row db.RelayOrderRow) {
	if s.Journal == nil {
		return
	}
	if err := s.Journal.InsertRelayOrder(c.Request.Context(), row); err != nil {
		log.Printf("[RELAY] journal order: %v", err)
	}
}

func (s *Server) publishOrder(symbol, side string, qty, amountUSD float64, dryRun bool) {
	if s.Bus == nil {
		return
	}
	s.Bus.Publish(events.EventOrderSubmitted, events.OrderSubmittedPayload{
		Symbol: symbol, Side: side, QtyBase: qty, AmountUSD: amountUSD, DryRun: dryRun,
	})
}

func sideOf(msg AlertMessage) string {
	if msg.SellSide() {
		return "sell"
	}
	return "buy"
}

// usablePrice prefers the last trade, then the bid/ask mid.
func usablePrice(t exchange.Ticker) float64 {
	if t.Last > 0 {
		return t.Last
	}
	if t.Bid > 0 && t.Ask > 0 {
		return (t.Bid + t.Ask) / 2
	}
	return 0
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

func orderID(o exchange.Order) string {
	if o.ID != "" {
		return o.ID
	}
	return uuid.NewString()
}
