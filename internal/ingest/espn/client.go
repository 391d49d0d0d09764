package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
)

const (
	// BaseURL for the ESPN core API (injury listings).
	BaseURL = "https://sports.core.api.espn.com/v2/sports/football/leagues/nfl"

	// SiteBaseURL for the ESPN site API (depth charts).
	SiteBaseURL = "https://site.api.espn.com/apis/site/v2/sports/football/nfl"
)

// Client handles ESPN API requests
// Note: Uses curl internally because ESPN blocks Go's HTTP client fingerprint
type Client struct {
	baseURL     string
	siteBaseURL string
}

// New creates a new ESPN API client with custom base URLs.
func New(baseURL, siteBaseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	if siteBaseURL == "" {
		siteBaseURL = SiteBaseURL
	}
	return &Client{baseURL: baseURL, siteBaseURL: siteBaseURL}
}

// NewClient creates a new ESPN API client with default settings.
func NewClient() *Client {
	return New(BaseURL, SiteBaseURL)
}

// FetchTeamInjuries fetches the injury list for a single team (IDs 1-34).
func (c *Client) FetchTeamInjuries(ctx context.Context, teamID int) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/teams/%d/injuries", c.baseURL, teamID)
	return c.fetch(ctx, url)
}

// FetchDepthChart fetches a team's depth chart from the site API.
func (c *Client) FetchDepthChart(ctx context.Context, teamID int) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/teams/%d/depthcharts", c.siteBaseURL, teamID)
	return c.fetch(ctx, url)
}

// fetch makes an HTTP GET request using curl
// ESPN blocks Go's HTTP client but curl works reliably
func (c *Client) fetch(ctx context.Context, url string) (map[string]interface{}, error) {
	cmd := exec.CommandContext(ctx, "curl", "-s", "-L", "-m", "15", url)

	output, err := cmd.Output()
	if err != nil {
		log.Printf("[espn-client] ❌ curl failed: %v", err)
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("curl failed: %s (stderr: %s)", err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("curl execution failed: %w", err)
	}

	// Check if we got HTML error page (403, 404, etc.)
	if len(output) > 0 && output[0] == '<' {
		return nil, fmt.Errorf("ESPN returned HTML error page: %s", string(output[:min(len(output), 200)]))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w (body: %s)", err, string(output[:min(len(output), 200)]))
	}

	return result, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
