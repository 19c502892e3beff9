// Package roblox wraps the Roblox Open Cloud user-restrictions API.
package roblox

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"banrelay/internal/observability"
)

const defaultBaseURL = "https://apis.roblox.com"

// Client calls the Open Cloud API for a single universe.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	universeID string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient returns an Open Cloud client scoped to the given universe.
func NewClient(apiKey, universeID string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 8 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		universeID: universeID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DeleteUserRestriction lifts the game ban for the user. A 404 from the API
// means no restriction exists, which is the state we want, so it is treated
// as success.
func (c *Client) DeleteUserRestriction(ctx context.Context, userID string) error {
	ctx, finish := observability.StartClientSpan(ctx, "roblox", "DeleteUserRestriction")
	var err error
	defer func() { finish(err) }()

	url := fmt.Sprintf("%s/cloud/v2/universes/%s/user-restrictions/%s", c.baseURL, c.universeID, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete restriction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err = fmt.Errorf("roblox restriction delete failed: status %d: %s", resp.StatusCode, detail)
		return err
	}
	return nil
}
