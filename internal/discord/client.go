package discord

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

const defaultBaseURL = "https://discord.com/api/v10"

// Client is a minimal Discord REST client authenticated by bot token for
// channel messages and by interaction token for webhook message edits.
type Client struct {
	httpClient *http.Client
	baseURL    string
	botToken   string
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

// NewClient returns a Discord REST client for the given bot token.
func NewClient(botToken string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		botToken:   botToken,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateMessage posts a message to the channel and returns the created
// message, primarily for its ID.
func (c *Client) CreateMessage(ctx context.Context, channelID string, msg ChannelMessage) (*Message, error) {
	ctx, finish := observability.StartClientSpan(ctx, "discord", "CreateMessage")
	var err error
	defer func() { finish(err) }()

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}

	url := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err = fmt.Errorf("discord message create failed: status %d: %s", resp.StatusCode, detail)
		return nil, err
	}

	var created Message
	if err = json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode message response: %w", err)
	}
	return &created, nil
}

// EditWebhookMessage patches a message previously posted for an interaction,
// using the interaction token rather than the bot token.
func (c *Client) EditWebhookMessage(ctx context.Context, applicationID, token, messageID string, edit MessageEdit) error {
	ctx, finish := observability.StartClientSpan(ctx, "discord", "EditWebhookMessage")
	var err error
	defer func() { finish(err) }()

	body, err := json.Marshal(edit)
	if err != nil {
		return fmt.Errorf("encode edit: %w", err)
	}

	url := fmt.Sprintf("%s/webhooks/%s/%s/messages/%s", c.baseURL, applicationID, token, messageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("patch message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err = fmt.Errorf("discord message edit failed: status %d: %s", resp.StatusCode, detail)
		return err
	}
	return nil
}
