package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Kraken is a REST client for the Kraken spot API covering the Client
// capability. Public calls need no credentials; AddOrder does.
type Kraken struct {
	APIKey     string
	APISecret  string
	BaseURL    string
	HTTPClient *http.Client
	limiter    *rate.Limiter
}

// NewKraken builds a Kraken client. Calls are paced to stay inside the public
// API rate tier.
func NewKraken(apiKey, apiSecret string) *Kraken {
	return &Kraken{
		APIKey:     apiKey,
		APISecret:  apiSecret,
		BaseURL:    "https://api.kraken.com",
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 3),
	}
}

// krakenEnvelope is the common {error: [...], result: ...} response shape.
type krakenEnvelope struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

// FetchTicker returns the current quote for a pair such as "XBT/USD".
func (k *Kraken) FetchTicker(ctx context.Context, symbol string) (Ticker, error) {
	params := url.Values{}
	params.Set("pair", strings.ReplaceAll(symbol, "/", ""))

	raw, err := k.public(ctx, "/0/public/Ticker", params)
	if err != nil {
		return Ticker{}, err
	}

	// Result maps the venue's internal pair name to the quote; take the
	// first (and only) entry.
	var byPair map[string]struct {
		C []string `json:"c"` // last trade [price, lot volume]
		B []string `json:"b"` // best bid [price, whole lot volume, lot volume]
		A []string `json:"a"` // best ask
	}
	if err := json.Unmarshal(raw, &byPair); err != nil {
		return Ticker{}, fmt.Errorf("decode ticker: %w", err)
	}
	for _, q := range byPair {
		t := Ticker{Symbol: symbol}
		if len(q.C) > 0 {
			t.Last, _ = strconv.ParseFloat(q.C[0], 64)
		}
		if len(q.B) > 0 {
			t.Bid, _ = strconv.ParseFloat(q.B[0], 64)
		}
		if len(q.A) > 0 {
			t.Ask, _ = strconv.ParseFloat(q.A[0], 64)
		}
		return t, nil
	}
	return Ticker{}, fmt.Errorf("ticker for %s: empty result", symbol)
}

// LoadMarkets returns the tradable pair names keyed by websocket name
// (e.g. "XBT/USD").
func (k *Kraken) LoadMarkets(ctx context.Context) (map[string]bool, error) {
	raw, err := k.public(ctx, "/0/public/AssetPairs", nil)
	if err != nil {
		return nil, err
	}

	var pairs map[string]struct {
		WSName string `json:"wsname"`
	}
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, fmt.Errorf("decode asset pairs: %w", err)
	}

	markets := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		if p.WSName != "" {
			markets[p.WSName] = true
		}
	}
	return markets, nil
}

// CreateMarketOrder submits a market order via the private AddOrder endpoint.
func (k *Kraken) CreateMarketOrder(ctx context.Context, symbol, side string, qty float64) (Order, error) {
	data := url.Values{}
	data.Set("pair", strings.ReplaceAll(symbol, "/", ""))
	data.Set("type", strings.ToLower(side))
	data.Set("ordertype", "market")
	data.Set("volume", strconv.FormatFloat(qty, 'f', -1, 64))

	raw, err := k.private(ctx, "/0/private/AddOrder", data)
	if err != nil {
		return Order{}, err
	}

	var res struct {
		TxID  []string `json:"txid"`
		Descr struct {
			Order string `json:"order"`
		} `json:"descr"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return Order{}, fmt.Errorf("decode add order: %w", err)
	}

	o := Order{
		Symbol:    symbol,
		Side:      strings.ToLower(side),
		QtyBase:   qty,
		Status:    "submitted",
		CreatedAt: time.Now(),
	}
	if len(res.TxID) > 0 {
		o.ID = res.TxID[0]
	}
	return o, nil
}

func (k *Kraken) public(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	if err := k.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := k.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return k.do(req, path)
}

func (k *Kraken) private(ctx context.Context, path string, data url.Values) (json.RawMessage, error) {
	if k.APIKey == "" || k.APISecret == "" {
		return nil, fmt.Errorf("%s: missing API credentials", path)
	}
	if err := k.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	nonce := strconv.FormatInt(time.Now().UnixNano()/int64(time.Millisecond), 10)
	data.Set("nonce", nonce)
	body := data.Encode()

	sign, err := k.sign(path, nonce, body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.BaseURL+path, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("API-Key", k.APIKey)
	req.Header.Set("API-Sign", sign)
	return k.do(req, path)
}

// sign implements the Kraken API-Sign scheme:
// HMAC-SHA512(path + SHA256(nonce + postdata), base64-decoded secret).
func (k *Kraken) sign(path, nonce, body string) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(k.APISecret)
	if err != nil {
		return "", fmt.Errorf("decode api secret: %w", err)
	}

	digest := sha256.Sum256([]byte(nonce + body))
	mac := hmac.New(sha512.New, secret)
	mac.Write([]byte(path))
	mac.Write(digest[:])
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func (k *Kraken) do(req *http.Request, path string) (json.RawMessage, error) {
	res, err := k.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d", path, res.StatusCode)
	}

	var env krakenEnvelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", path, err)
	}
	if len(env.Error) > 0 {
		return nil, fmt.Errorf("%s: %s", path, strings.Join(env.Error, ", "))
	}
	return env.Result, nil
}
