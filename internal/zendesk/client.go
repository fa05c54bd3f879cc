package zendesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client communicates with the Zendesk REST API (v2) using basic
// authentication with an API token.
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a Client for the given Zendesk subdomain.
// If timeout is <= 0, the default (10s) is used per call.
func NewClient(subdomain, email, apiToken string, timeout time.Duration) *Client {
	c := newClient(email, apiToken, timeout)
	c.baseURL = fmt.Sprintf("https://%s.zendesk.com", subdomain)
	return c
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for testing).
func NewClientWithBaseURL(baseURL, email, apiToken string, timeout time.Duration) *Client {
	c := newClient(email, apiToken, timeout)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

func newClient(email, apiToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		email:    email,
		apiToken: apiToken,
		timeout:  timeout,
		httpClient: &http.Client{
			Timeout: 0,
		},
	}
}

// GetTicket fetches the ticket with the given id.
func (c *Client) GetTicket(ctx context.Context, id string) (Ticket, error) {
	var envelope struct {
		Ticket Ticket `json:"ticket"`
	}
	if err := c.get(ctx, fmt.Sprintf("/api/v2/tickets/%s.json", id), &envelope); err != nil {
		return Ticket{}, fmt.Errorf("fetching ticket %s: %w", id, err)
	}
	return envelope.Ticket, nil
}

// GetComments fetches the ticket's comments in chronological order.
func (c *Client) GetComments(ctx context.Context, id string) ([]Comment, error) {
	var envelope struct {
		Comments []Comment `json:"comments"`
	}
	if err := c.get(ctx, fmt.Sprintf("/api/v2/tickets/%s/comments.json", id), &envelope); err != nil {
		return nil, fmt.Errorf("fetching comments for ticket %s: %w", id, err)
	}
	return envelope.Comments, nil
}

// GetUser fetches a user by id.
func (c *Client) GetUser(ctx context.Context, userID int64) (User, error) {
	var envelope struct {
		User User `json:"user"`
	}
	if err := c.get(ctx, fmt.Sprintf("/api/v2/users/%d.json", userID), &envelope); err != nil {
		return User{}, fmt.Errorf("fetching user %d: %w", userID, err)
	}
	return envelope.User, nil
}

// GetUserGroups fetches the groups a user belongs to.
func (c *Client) GetUserGroups(ctx context.Context, userID int64) ([]Group, error) {
	var envelope struct {
		Groups []Group `json:"groups"`
	}
	if err := c.get(ctx, fmt.Sprintf("/api/v2/users/%d/groups.json", userID), &envelope); err != nil {
		return nil, fmt.Errorf("fetching groups for user %d: %w", userID, err)
	}
	return envelope.Groups, nil
}

// GetTicketForm fetches the metadata of a single ticket form.
func (c *Client) GetTicketForm(ctx context.Context, formID int64) (TicketForm, error) {
	var envelope struct {
		TicketForm TicketForm `json:"ticket_form"`
	}
	if err := c.get(ctx, fmt.Sprintf("/api/v2/ticket_forms/%d.json", formID), &envelope); err != nil {
		return TicketForm{}, fmt.Errorf("fetching ticket form %d: %w", formID, err)
	}
	return envelope.TicketForm, nil
}

// ListTicketForms fetches all ticket forms of the account.
func (c *Client) ListTicketForms(ctx context.Context) ([]TicketForm, error) {
	var envelope struct {
		TicketForms []TicketForm `json:"ticket_forms"`
	}
	if err := c.get(ctx, "/api/v2/ticket_forms.json", &envelope); err != nil {
		return nil, fmt.Errorf("listing ticket forms: %w", err)
	}
	return envelope.TicketForms, nil
}

// PostInternalNote appends a private comment to the ticket.
func (c *Client) PostInternalNote(ctx context.Context, id string, body string) error {
	payload := map[string]any{
		"ticket": map[string]any{
			"comment": map[string]any{
				"body":   body,
				"public": false,
			},
		},
	}
	if err := c.put(ctx, fmt.Sprintf("/api/v2/tickets/%s.json", id), payload); err != nil {
		return fmt.Errorf("posting internal note on ticket %s: %w", id, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) put(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Zendesk API token auth: "{email}/token" as the basic auth username.
	req.SetBasicAuth(c.email+"/token", c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
