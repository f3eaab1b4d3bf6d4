// Package client provides a Go client for the Inkwell article API.
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
)

// Client is an Inkwell API client. Token, when set, is sent as a bearer
// credential with every request.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Article mirrors the API response, including the derived canUpvote field.
type Article struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Upvote    int      `json:"upvote"`
	UpvoteIDs []string `json:"upvoteIds"`
	Comments  []string `json:"comments"`
	CanUpvote bool     `json:"canUpvote"`
}

// APIError carries the server's client-facing message for a non-200 reply.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

func (c *Client) GetArticle(ctx context.Context, id int64) (Article, error) {
	return c.doArticle(ctx, http.MethodGet, fmt.Sprintf("/api/articles/%d", id), nil)
}

func (c *Client) UpvoteArticle(ctx context.Context, id int64) (Article, error) {
	return c.doArticle(ctx, http.MethodPut, fmt.Sprintf("/api/articles/%d/upvote", id), nil)
}

func (c *Client) AddComment(ctx context.Context, id int64, text string) (Article, error) {
	return c.doArticle(ctx, http.MethodPost, fmt.Sprintf("/api/articles/%d/comment", id), map[string]string{"text": text})
}

func (c *Client) doArticle(ctx context.Context, method, path string, body any) (Article, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Article{}, err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return Article{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Article{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Article{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Article{}, apiError(resp.StatusCode, raw)
	}

	var article Article
	if err := json.Unmarshal(raw, &article); err != nil {
		return Article{}, fmt.Errorf("decode article: %w", err)
	}
	return article, nil
}

func apiError(status int, raw []byte) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &payload)
	msg := payload.Error
	if msg == "" {
		msg = payload.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	return &APIError{StatusCode: status, Message: msg}
}
