// Package nas talks to the network access server's admin hook. Disconnect
// requests are retried with exponential backoff because the NAS reloads its
// firewall rules and can briefly refuse connections.
package nas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Disconnector terminates a user's sessions at the gateway.
type Disconnector interface {
	Disconnect(ctx context.Context, req DisconnectRequest) error
}

// DisconnectRequest identifies the sessions to kill.
type DisconnectRequest struct {
	Username      string `json:"username"`
	MAC           string `json:"mac,omitempty"`
	AcctSessionID string `json:"acct_session_id,omitempty"`
	Reason        string `json:"reason"`
}

// Client posts disconnect requests to the NAS webhook.
type Client struct {
	url      string
	secret   string
	http     *http.Client
	retryMax time.Duration
	logger   *slog.Logger
}

// Options configure the NAS client.
type Options struct {
	URL      string
	Secret   string
	Timeout  time.Duration
	RetryMax time.Duration
	Logger   *slog.Logger
}

// NewClient builds a NAS webhook client. URL may be empty, in which case
// Disconnect becomes a no-op; the panel still closes sessions locally.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	retryMax := opts.RetryMax
	if retryMax <= 0 {
		retryMax = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:      opts.URL,
		secret:   opts.Secret,
		http:     &http.Client{Timeout: timeout},
		retryMax: retryMax,
		logger:   logger,
	}
}

// Disconnect posts the request, retrying transient failures until the backoff
// budget is exhausted.
func (c *Client) Disconnect(ctx context.Context, req DisconnectRequest) error {
	if c == nil || c.url == "" {
		return nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal disconnect request: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = c.retryMax

	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.secret != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.secret)
		}

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("nas responded %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("nas responded %d", resp.StatusCode))
		}
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		c.logger.WarnContext(ctx, "nas disconnect failed", "username", req.Username, "error", err)
		return err
	}
	return nil
}
