package sleeper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// BaseURL for the Sleeper public API.
	BaseURL = "https://api.sleeper.app"

	playersPath = "/v1/players/nfl"
)

// Client fetches NFL player data from the Sleeper API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Sleeper client with a custom base URL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClient creates a Sleeper client with default settings.
func NewClient() *Client {
	return New(BaseURL)
}

// FetchPlayers downloads the full NFL player map. The response is large
// (~5MB) and refreshed by Sleeper roughly hourly; callers should cache it.
func (c *Client) FetchPlayers(ctx context.Context) (map[string]Player, error) {
	url := c.baseURL + playersPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching sleeper players: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("sleeper returned %d: %s", resp.StatusCode, string(body))
	}

	var players map[string]Player
	if err := json.NewDecoder(resp.Body).Decode(&players); err != nil {
		return nil, fmt.Errorf("decoding sleeper response: %w", err)
	}

	return players, nil
}
