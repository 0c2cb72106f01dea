package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

// Paths served by the remote service.
const (
	MutationsPath = "/v1/mutations"
	HealthPath    = "/healthz"
)

// IdempotencyHeader carries the mutation's idempotency key.
const IdempotencyHeader = "Idempotency-Key"

// HTTPDeliverer posts mutations to {baseURL}/v1/mutations.
type HTTPDeliverer struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPDeliverer creates a deliverer for baseURL. Per-call deadlines come
// from the context; timeout is only a backstop for callers that pass none.
func NewHTTPDeliverer(baseURL string, timeout time.Duration) *HTTPDeliverer {
	return &HTTPDeliverer{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Deliver posts m and succeeds on any 2xx reply.
func (d *HTTPDeliverer) Deliver(ctx context.Context, m model.Mutation) error {
	data, err := json.Marshal(m)
	if err != nil {
		return model.RemoteDelivery("remote.deliver", fmt.Errorf("marshal mutation: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+MutationsPath, bytes.NewReader(data))
	if err != nil {
		return model.RemoteDelivery("remote.deliver", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(IdempotencyHeader, m.IdempotencyKey)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return model.RemoteDelivery("remote.deliver", fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return model.RemoteDelivery("remote.deliver", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.RemoteDelivery("remote.deliver",
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}
	return nil
}

// Ping succeeds when GET /healthz returns 2xx.
func (d *HTTPDeliverer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+HealthPath, nil)
	if err != nil {
		return model.RemoteDelivery("remote.ping", fmt.Errorf("create request: %w", err))
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return model.RemoteDelivery("remote.ping", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.RemoteDelivery("remote.ping", fmt.Errorf("HTTP %d", resp.StatusCode))
	}
	return nil
}
