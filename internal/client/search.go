package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/liliang-cn/chatrelay/internal/config"
)

// SearchClient fetches a short synthesized answer for a query from the
// external search service.
type SearchClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewSearchClient creates a new search service client
func NewSearchClient(cfg config.SearchConfig) *SearchClient {
	return &SearchClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type searchResponse struct {
	Answer string `json:"answer"`
}

// Answer returns a synthesized answer for the query, or an empty string when
// the service has none. Failures are returned as errors for the caller to
// degrade on.
func (c *SearchClient) Answer(ctx context.Context, query string) (string, error) {
	payload, err := json.Marshal(searchRequest{
		APIKey:        c.apiKey,
		Query:         query,
		SearchDepth:   "basic",
		MaxResults:    3,
		IncludeAnswer: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("search service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search service returned status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode search response: %w", err)
	}

	return body.Answer, nil
}
