package relay

import (
	"fmt"
	"strconv"
	"strings"
)

// AlertMessage is the alert payload exchanged between the signal engine and
// the relay: `symbol: <SYMBOL>; action: buy|sell; amount: <amountUsd>`.
type AlertMessage struct {
	Symbol    string
	Action    string // "buy" or "sell"
	AmountUSD float64
}

// Encode renders the message with fixed key order. Amounts use the shortest
// exact decimal representation so ParseAlert round-trips the grammar.
func (m AlertMessage) Encode() string {
	return fmt.Sprintf("symbol: %s; action: %s; amount: %s",
		m.Symbol, m.Action, strconv.FormatFloat(m.AmountUSD, 'f', -1, 64))
}

// ParseAlert parses the alert grammar: `key: value` segments joined by `;`,
// keys case-insensitive, unrecognized keys ignored. Recognized keys are
// symbol|product|pair, action (defaults to "buy") and amount|amt. A missing
// symbol or non-positive amount yields a PayloadError, never a panic.
func ParseAlert(raw string) (AlertMessage, error) {
	msg := AlertMessage{Action: "buy"}

	for _, segment := range strings.Split(raw, ";") {
		key, value, found := strings.Cut(segment, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "symbol", "product", "pair":
			msg.Symbol = value
		case "action":
			if value != "" {
				msg.Action = strings.ToLower(value)
			}
		case "amount", "amt":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return AlertMessage{}, &PayloadError{Reason: fmt.Sprintf("unparseable amount %q", value), Body: raw}
			}
			msg.AmountUSD = f
		}
	}

	if msg.Symbol == "" {
		return AlertMessage{}, &PayloadError{Reason: "missing symbol", Body: raw}
	}
	if msg.AmountUSD <= 0 {
		return AlertMessage{}, &PayloadError{Reason: "amount must be positive", Body: raw}
	}
	return msg, nil
}

// SellSide reports whether the action maps to a sell order; anything that
// does not start with "sell" buys.
func (m AlertMessage) SellSide() bool {
	return strings.HasPrefix(strings.ToLower(m.Action), "sell")
}
