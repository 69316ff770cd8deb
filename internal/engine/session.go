package engine

import (
	"context"
	"log"

	"github.com/google/uuid"

	"trend-relay/internal/events"
	"trend-relay/internal/market"
	"trend-relay/internal/relay"
	"trend-relay/internal/risk"
	"trend-relay/internal/stats"
	"trend-relay/internal/strategy"
	"trend-relay/pkg/db"
)

// Session owns all per-run trading state: indicator state, the open bracket,
// equity and aggregates. It consumes one ordered candle stream strictly
// sequentially, so none of its members need locking on this path.
type Session struct {
	Symbol      string  // alert symbol, e.g. "BTC-USD"
	AlertAmount float64 // USD amount written into outbound alerts

	detector *strategy.Detector
	riskPar  risk.Parameters
	brackets *risk.BracketManager
	tracker  *stats.Tracker
	equity   float64

	// Optional collaborators; each may be nil.
	Sender  AlertSender
	Bus     *events.Bus
	Journal TradeJournal
}

// TradeJournal persists closed trades; satisfied by the db layer.
type TradeJournal interface {
	RecordClosedTrade(ctx context.Context, ct risk.ClosedTrade) error
}

// NewSession builds a session with fresh state.
func NewSession(symbol string, amountUSD, initialEquity float64, sp strategy.Params, rp risk.Parameters, tracker *stats.Tracker) *Session {
	return &Session{
		Symbol:      symbol,
		AlertAmount: amountUSD,
		detector:    strategy.NewDetector(sp),
		riskPar:     rp,
		brackets:    risk.NewBracketManager(),
		tracker:     tracker,
		equity:      initialEquity,
	}
}

// Equity returns the current session equity.
func (s *Session) Equity() float64 {
	return s.equity
}

// Run consumes the candle stream until it closes or ctx is cancelled.
func (s *Session) Run(ctx context.Context, candles <-chan market.Candle) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-candles:
			if !ok {
				return
			}
			s.Step(ctx, c)
		}
	}
}

// Step processes one candle: exits are resolved against the previous bracket
// state first, then indicators advance and a new entry is considered.
// Unconfirmed candles are dropped here so no downstream component ever sees
// one.
func (s *Session) Step(ctx context.Context, c market.Candle) {
	if !c.Confirmed {
		return
	}

	if ct := s.brackets.OnCandle(s.Symbol, c); ct != nil {
		s.onClosed(ctx, *ct)
	}

	sig := s.detector.OnCandle(c)
	s.publish(events.EventCandleClosed, c)
	if sig == nil {
		return
	}
	s.publish(events.EventSignal, *sig)

	if s.brackets.IsOpen(s.Symbol) {
		// Pyramiding limit is 1; the signal is dropped.
		return
	}

	bracket, ok := risk.Size(sig.Direction, sig.Price, s.detector.ATR(), s.equity, s.riskPar)
	if !ok {
		log.Printf("[ENGINE] %s signal skipped: sizing produced no trade", sig.Direction)
		return
	}

	pos := s.brackets.Open(s.Symbol, bracket, sig.Time)
	log.Printf("[ENGINE] opened %s %s qty=%.6f entry=%.2f stop=%.2f target=%.2f",
		sig.Direction, s.Symbol, pos.Quantity, pos.EntryPrice, pos.StopPrice, pos.TargetPrice)
	s.publish(events.EventPositionOpened, *pos)

	s.emitAlert(ctx, sig.Direction)
}

func (s *Session) onClosed(ctx context.Context, ct risk.ClosedTrade) {
	s.equity += ct.PnL
	if s.tracker != nil {
		s.tracker.Record(ct)
	}
	log.Printf("[ENGINE] closed %s %s exit=%.2f pnl=%.2f reason=%s equity=%.2f",
		ct.Direction, ct.Symbol, ct.ExitPrice, ct.PnL, ct.Reason, s.equity)

	if s.Journal != nil {
		if err := s.Journal.RecordClosedTrade(ctx, ct); err != nil {
			log.Printf("[ENGINE] journal trade: %v", err)
		}
	}
	s.publish(events.EventTradeClosed, events.TradeClosedPayload{
		Symbol:      ct.Symbol,
		Direction:   ct.Direction.String(),
		EntryPrice:  ct.EntryPrice,
		ExitPrice:   ct.ExitPrice,
		Quantity:    ct.Quantity,
		PnL:         ct.PnL,
		RiskAtEntry: ct.RiskAtEntry,
		ClosedAt:    ct.ClosedAt,
		Reason:      ct.Reason,
	})
}

func (s *Session) emitAlert(ctx context.Context, dir strategy.Direction) {
	if s.Sender == nil {
		return
	}
	action := "buy"
	if dir == strategy.DirectionShort {
		action = "sell"
	}
	msg := relay.AlertMessage{Symbol: s.Symbol, Action: action, AmountUSD: s.AlertAmount}
	if err := s.Sender.Send(ctx, msg); err != nil {
		log.Printf("[ENGINE] alert delivery failed: %v", err)
	}
}

func (s *Session) publish(e events.Event, payload any) {
	if s.Bus != nil {
		s.Bus.Publish(e, payload)
	}
}

// DBJournal persists closed trades into the sqlite journal.
type DBJournal struct {
	DB *db.Database
}

func (j DBJournal) RecordClosedTrade(ctx context.Context, ct risk.ClosedTrade) error {
	var r float64
	if ct.RiskAtEntry > 0 {
		r = ct.PnL / ct.RiskAtEntry
	}
	return j.DB.InsertClosedTrade(ctx, db.ClosedTradeRow{
		ID:          uuid.NewString(),
		Symbol:      ct.Symbol,
		Direction:   ct.Direction.String(),
		EntryPrice:  ct.EntryPrice,
		ExitPrice:   ct.ExitPrice,
		Qty:         ct.Quantity,
		PnL:         ct.PnL,
		RiskAtEntry: ct.RiskAtEntry,
		RMultiple:   r,
		Reason:      ct.Reason,
		OpenedAt:    ct.OpenedAt,
		ClosedAt:    ct.ClosedAt,
	})
}
