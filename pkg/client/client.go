// Package client talks to the link-in-bio REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

// APIError is a non-2xx response from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session is the body returned by the login endpoint
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// Login exchanges credentials for a session token and keeps it for later calls
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &s); err != nil {
		return nil, err
	}
	c.token = s.Token
	return &s, nil
}

func (c *Client) Links(ctx context.Context) ([]domain.Link, error) {
	var links []domain.Link
	err := c.do(ctx, http.MethodGet, "/api/v1/links", nil, &links)
	return links, err
}

func (c *Client) ReorderLinks(ctx context.Context, group string, items []domain.OrderUpdate) error {
	body := struct {
		Group string               `json:"group"`
		Items []domain.OrderUpdate `json:"items"`
	}{group, items}
	return c.do(ctx, http.MethodPut, "/api/v1/links/order", body, nil)
}

func (c *Client) Groups(ctx context.Context) ([]domain.GroupView, error) {
	var groups []domain.GroupView
	err := c.do(ctx, http.MethodGet, "/api/v1/groups", nil, &groups)
	return groups, err
}

func (c *Client) ReorderGroups(ctx context.Context, items []domain.GroupOrder) error {
	body := struct {
		Items []domain.GroupOrder `json:"items"`
	}{items}
	return c.do(ctx, http.MethodPut, "/api/v1/groups/order", body, nil)
}

func (c *Client) Timeline(ctx context.Context) ([]domain.TimelineEvent, error) {
	var events []domain.TimelineEvent
	err := c.do(ctx, http.MethodGet, "/api/v1/timeline", nil, &events)
	return events, err
}

func (c *Client) ReorderTimeline(ctx context.Context, items []domain.OrderUpdate) error {
	body := struct {
		Items []domain.OrderUpdate `json:"items"`
	}{items}
	return c.do(ctx, http.MethodPut, "/api/v1/timeline/order", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
