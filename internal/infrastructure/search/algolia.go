package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// =====================================================
// ALGOLIA SEARCH CLIENT
// =====================================================

// Client talks to the Algolia indexing REST API. Only the write path is
// needed server-side; queries run from the browser with a search-only key.
type Client struct {
	appID      string
	apiKey     string
	baseURL    string // override for tests; empty means the Algolia default
	httpClient *http.Client
}

// NewClient creates a new Algolia client with admin credentials.
func NewClient(appID, apiKey string) *Client {
	return &Client{
		appID:  appID,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithBaseURL creates a client pointed at a custom endpoint.
func NewClientWithBaseURL(appID, apiKey, baseURL string) *Client {
	c := NewClient(appID, apiKey)
	c.baseURL = baseURL
	return c
}

func (c *Client) endpoint(index, objectID string) string {
	base := c.baseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.algolia.net", c.appID)
	}
	return fmt.Sprintf("%s/1/indexes/%s/%s",
		base, url.PathEscape(index), url.PathEscape(objectID))
}

// SaveObject upserts an object under objectID. Same key overwrites, so the
// call is idempotent by construction.
func (c *Client) SaveObject(ctx context.Context, index, objectID string, object interface{}) error {
	body, err := json.Marshal(object)
	if err != nil {
		return fmt.Errorf("failed to marshal index object: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint(index, objectID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create index request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Algolia-Application-Id", c.appID)
	req.Header.Set("X-Algolia-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("index write failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("index write rejected: status %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
