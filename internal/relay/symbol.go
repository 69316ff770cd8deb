package relay

import (
	"context"
	"log"
	"strings"
)

// baseAliases are asset prefixes recognized directly; everything else falls
// back to the first three characters.
var baseAliases = []string{"BTC", "XBT"}

// SymbolMapper normalizes free-form instrument identifiers into an exchange
// pair. With a market lister it prefers pairs the venue actually trades; a
// failed market lookup degrades to the naive guess rather than failing the
// request.
type SymbolMapper struct {
	// ListMarkets returns the tradable pair set; nil means no live data.
	ListMarkets func(ctx context.Context) (map[string]bool, error)
}

// Map converts raw ("BTC-USD", "btcusd", "BTC/USD", ...) into a trading pair.
// Never fails: malformed input still produces a best-effort `{base}/USD`.
func (m *SymbolMapper) Map(ctx context.Context, raw string) string {
	normalized := strings.ToUpper(raw)
	for _, sep := range []string{"-", ":", "/"} {
		normalized = strings.ReplaceAll(normalized, sep, "")
	}

	base := normalized
	for _, alias := range baseAliases {
		if strings.HasPrefix(normalized, alias) {
			base = alias
			break
		}
	}
	if base == normalized && len(normalized) > 3 {
		base = normalized[:3]
	}

	preferred := base + "/USD"
	if m == nil || m.ListMarkets == nil {
		return preferred
	}

	markets, err := m.ListMarkets(ctx)
	if err != nil {
		// Non-fatal: fall back to the naive guess.
		log.Printf("[RELAY] market lookup failed, using %s: %v", preferred, err)
		return preferred
	}

	if markets[preferred] {
		return preferred
	}
	if base == "BTC" && markets["XBT/USD"] {
		return "XBT/USD"
	}
	for pair := range markets {
		if b, _, found := strings.Cut(pair, "/"); found && b == base {
			return pair
		}
	}
	return preferred
}
