package glean

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultStreamTimeout = 120 * time.Second
)

// Client communicates with the Glean chat and feedback endpoints using
// bearer authentication.
type Client struct {
	chatURL       string
	feedbackURL   string
	token         string
	timeout       time.Duration
	streamTimeout time.Duration
	httpClient    *http.Client
}

// NewClient creates a Client. Zero timeouts select the defaults (30s for
// plain calls, 120s for full stream consumption).
func NewClient(chatURL, feedbackURL, token string, timeout, streamTimeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if streamTimeout <= 0 {
		streamTimeout = defaultStreamTimeout
	}
	return &Client{
		chatURL:       chatURL,
		feedbackURL:   feedbackURL,
		token:         token,
		timeout:       timeout,
		streamTimeout: streamTimeout,
		httpClient: &http.Client{
			Timeout: 0,
		},
	}
}

// Chat submits a conversational request and returns the response body as a
// ReadCloser. For streaming requests the body carries line-delimited JSON
// events; the caller is responsible for closing it. The stream timeout
// covers the whole consumption, not just the first byte.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (io.ReadCloser, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling chat request: %w", err)
	}

	timeout := c.timeout
	if req.Stream {
		timeout = c.streamTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.chatURL, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("creating chat request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("chat request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("chat: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	// Wrap the body so the timeout context cancel fires when the caller closes it.
	return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

// Feedback relays one vote event for the given tracking tokens.
func (c *Client) Feedback(ctx context.Context, trackingTokens []string, event string) error {
	body, err := json.Marshal(FeedbackRequest{TrackingTokens: trackingTokens, Event: event})
	if err != nil {
		return fmt.Errorf("marshaling feedback request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.feedbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating feedback request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("feedback request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("feedback: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
}

// cancelOnClose wraps a ReadCloser and cancels a context on Close.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
