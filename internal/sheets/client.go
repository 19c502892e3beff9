// Package sheets posts moderation events to the spreadsheet webhook that
// mirrors ban state for staff.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"banrelay/internal/observability"
)

// Client posts events to a configured webhook URL.
type Client struct {
	httpClient *http.Client
	webhookURL string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient returns a client for the given webhook URL.
func NewClient(webhookURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 8 * time.Second},
		webhookURL: webhookURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type event struct {
	Action string `json:"action"`
	UserID string `json:"userId"`
}

// Unban records an unban for the user on the spreadsheet.
func (c *Client) Unban(ctx context.Context, userID string) error {
	return c.post(ctx, event{Action: "unban", UserID: userID})
}

func (c *Client) post(ctx context.Context, ev event) error {
	ctx, finish := observability.StartClientSpan(ctx, "sheets", ev.Action)
	var err error
	defer func() { finish(err) }()

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err = fmt.Errorf("sheet webhook failed: status %d: %s", resp.StatusCode, detail)
		return err
	}
	return nil
}
