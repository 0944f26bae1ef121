// Package search queries a SearxNG-compatible metasearch endpoint for
// public context about font families and foundries.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultLimit = 5

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Client queries one search endpoint.
type Client struct {
	baseURL string
	limit   int
	httpc   *http.Client
	logger  *slog.Logger
}

// New creates a client for the endpoint at baseURL, returning at most limit
// results per query. A non-positive limit uses the default.
func New(baseURL string, limit int, logger *slog.Logger) *Client {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   limit,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		logger:  logger.With("system", "search"),
	}
}

// Search runs one query and returns up to the configured number of hits.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&format=json", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search endpoint returned %d", resp.StatusCode)
	}

	var body struct {
		Results []Result `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	if len(body.Results) > c.limit {
		body.Results = body.Results[:c.limit]
	}

	c.logger.DebugContext(ctx, "search complete", "query", query, "results", len(body.Results))
	return body.Results, nil
}
