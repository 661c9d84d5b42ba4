// Package notifier renders scoring reports and delivers them to a webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aforti1/clarity-cash/internal/logger"

	"github.com/rs/zerolog"
)

// WebhookPublisher posts text messages as {"text": ...} JSON, the payload
// accepted by Slack-style incoming webhooks.
type WebhookPublisher struct {
	URL     string
	Client  *http.Client
	Backoff time.Duration // first retry delay, doubled per attempt
	Log     zerolog.Logger
}

// NewWebhookPublisher creates a publisher with optional proxy support.
func NewWebhookPublisher(webhookURL, proxyURL string, log zerolog.Logger) *WebhookPublisher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &WebhookPublisher{
		URL: webhookURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Backoff: time.Second,
		Log:     log,
	}
}

// Publish sends one message.
func (w *WebhookPublisher) Publish(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// PublishWithRetry sends a message with exponential backoff retry.
func (w *WebhookPublisher) PublishWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := w.Publish(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := w.Backoff * time.Duration(1<<uint(i))
		log := logger.FromContext(ctx, w.Log)
		log.Warn().Err(err).
			Int("attempt", i+1).
			Int("attempts", maxRetries+1).
			Dur("backoff", backoff).
			Msg("webhook publish failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", maxRetries+1, lastErr)
}
