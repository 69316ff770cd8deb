package relay

import (
	"errors"
	"testing"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	tests := []AlertMessage{
		{Symbol: "BTC-USD", Action: "buy", AmountUSD: 25},
		{Symbol: "XBT/USD", Action: "sell", AmountUSD: 10.5},
		{Symbol: "ETHUSD", Action: "buy", AmountUSD: 0.01},
	}
	for _, want := range tests {
		got, err := ParseAlert(want.Encode())
		if err != nil {
			t.Fatalf("round trip %q: %v", want.Encode(), err)
		}
		if got != want {
			t.Fatalf("round trip %q: got %+v, want %+v", want.Encode(), got, want)
		}
	}
}

func TestEncodeFixedKeyOrder(t *testing.T) {
	m := AlertMessage{Symbol: "BTC-USD", Action: "buy", AmountUSD: 25}
	if got, want := m.Encode(), "symbol: BTC-USD; action: buy; amount: 25"; got != want {
		t.Fatalf("encoded %q, want %q", got, want)
	}
}

func TestParseAlert(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want AlertMessage
	}{
		{
			"canonical",
			"symbol: BTC-USD; action: buy; amount: 25",
			AlertMessage{Symbol: "BTC-USD", Action: "buy", AmountUSD: 25},
		},
		{
			"case insensitive keys and alternate names",
			"PAIR: ethusd; ACTION: SELL; AMT: 12.5",
			AlertMessage{Symbol: "ethusd", Action: "sell", AmountUSD: 12.5},
		},
		{
			"action defaults to buy",
			"product: BTC-USD; amount: 5",
			AlertMessage{Symbol: "BTC-USD", Action: "buy", AmountUSD: 5},
		},
		{
			"unrecognized keys ignored",
			"symbol: BTC-USD; venue: kraken; amount: 1; note: hello",
			AlertMessage{Symbol: "BTC-USD", Action: "buy", AmountUSD: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAlert(tt.raw)
			if err != nil {
				t.Fatalf("ParseAlert(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("ParseAlert(%q)=%+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseAlertFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing symbol", "action: buy; amount: 25"},
		{"zero amount", "symbol: BTC-USD; amount: 0"},
		{"negative amount", "symbol: BTC-USD; amount: -5"},
		{"missing amount", "symbol: BTC-USD; action: buy"},
		{"garbage amount", "symbol: BTC-USD; amount: lots"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAlert(tt.raw)
			if err == nil {
				t.Fatalf("ParseAlert(%q) succeeded, expected PayloadError", tt.raw)
			}
			var pe *PayloadError
			if !errors.As(err, &pe) {
				t.Fatalf("error type %T, expected *PayloadError", err)
			}
		})
	}
}

func TestSellSide(t *testing.T) {
	if (AlertMessage{Action: "buy"}).SellSide() {
		t.Fatal("buy should not map to sell")
	}
	if !(AlertMessage{Action: "SELL"}).SellSide() {
		t.Fatal("SELL should map to sell")
	}
	if !(AlertMessage{Action: "sell_short"}).SellSide() {
		t.Fatal("actions starting with sell should map to sell")
	}
	if (AlertMessage{Action: "close"}).SellSide() {
		t.Fatal("unknown actions default to buy")
	}
}
