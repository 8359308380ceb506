// Package revalidate notifies the Next.js frontend that content changed so it
// can rebuild the affected pages. Notification is strictly best-effort: a
// down or slow frontend must never fail an admin write, so calls run on a
// background goroutine and only log their outcome.
package revalidate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/masterskaya-studio/site-backend/internal/safego"
	"github.com/masterskaya-studio/site-backend/internal/telemetry"
)

// Client posts revalidation requests to the frontend webhook.
type Client struct {
	url    string
	secret string
	client *http.Client
}

// NewClient builds a revalidation client. An empty url disables notification.
func NewClient(url, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a webhook URL is configured.
func (c *Client) Enabled() bool {
	return c.url != ""
}

// Trigger fires a background revalidation for the given page paths.
// It returns immediately; the HTTP call happens on its own goroutine.
func (c *Client) Trigger(paths ...string) {
	if !c.Enabled() {
		telemetry.RevalidationsTotal.WithLabelValues("skipped").Inc()
		return
	}
	safego.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.client.Timeout)
		defer cancel()
		if err := c.send(ctx, paths); err != nil {
			telemetry.RevalidationsTotal.WithLabelValues("error").Inc()
			slog.Warn("frontend revalidation failed", "paths", paths, "error", err)
			return
		}
		telemetry.RevalidationsTotal.WithLabelValues("ok").Inc()
		slog.Debug("frontend revalidated", "paths", paths)
	})
}

func (c *Client) send(ctx context.Context, paths []string) error {
	payload, err := json.Marshal(map[string]interface{}{"paths": paths})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("X-Revalidate-Secret", c.secret)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("revalidation endpoint returned %d", resp.StatusCode)
	}
	return nil
}
