package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"trend-relay/internal/relay"
)

// AlertSender delivers encoded alerts to a webhook endpoint.
type AlertSender interface {
	Send(ctx context.Context, msg relay.AlertMessage) error
}

// HTTPSender posts alerts as JSON to the relay webhook URL.
type HTTPSender struct {
	URL        string
	HTTPClient *http.Client
}

// NewHTTPSender builds a sender with a bounded request timeout.
func NewHTTPSender(url string) *HTTPSender {
	return &HTTPSender{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSender) Send(ctx context.Context, msg relay.AlertMessage) error {
	body, err := json.Marshal(map[string]string{"message": msg.Encode()})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send alert: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("send alert: status %d", res.StatusCode)
	}
	return nil
}
