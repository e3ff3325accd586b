package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/liliang-cn/chatrelay/internal/config"
)

// TimeClient fetches the current time for a configured timezone from the
// external time service.
type TimeClient struct {
	baseURL  string
	timezone string
	http     *http.Client
}

// NewTimeClient creates a new time service client
func NewTimeClient(cfg config.TimeConfig) *TimeClient {
	return &TimeClient{
		baseURL:  cfg.BaseURL,
		timezone: cfg.Timezone,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

type timeResponse struct {
	Datetime string `json:"datetime"`
}

// Now returns the current time in the configured timezone. Any failure
// (network, status, malformed body) is returned as an error; callers are
// expected to degrade rather than propagate.
func (c *TimeClient) Now(ctx context.Context) (time.Time, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, c.timezone)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to build time request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("time service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("time service returned status %d", resp.StatusCode)
	}

	var body timeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode time response: %w", err)
	}
	if body.Datetime == "" {
		return time.Time{}, fmt.Errorf("time response missing datetime field")
	}

	t, err := time.Parse(time.RFC3339, body.Datetime)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse datetime %q: %w", body.Datetime, err)
	}

	return t, nil
}
