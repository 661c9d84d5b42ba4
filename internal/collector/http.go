package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aforti1/clarity-cash/internal/model"
)

// HTTPSource fetches transactions from a REST endpoint that accepts
// start/end query parameters and answers with JSON.
type HTTPSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	// LookbackDays widens the requested range before the window start. The
	// engine scores only in-window transactions; earlier ones feed the
	// savings lookback.
	LookbackDays int
}

// NewHTTPSource creates a source with optional proxy support.
func NewHTTPSource(baseURL, apiKey, proxyURL string, timeout time.Duration) *HTTPSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		LookbackDays: 30,
	}
}

func (h *HTTPSource) Name() string { return "http" }

func (h *HTTPSource) Fetch(ctx context.Context, w model.Window) ([]model.Transaction, error) {
	q := url.Values{}
	q.Set("start", w.Start.AddDays(-h.LookbackDays).String())
	q.Set("end", w.End.String())
	endpoint := fmt.Sprintf("%s/api/v1/transactions?%s", h.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if h.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.APIKey)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch transactions: status %d, body: %s", resp.StatusCode, string(body))
	}
	return decodeBatch(body)
}
