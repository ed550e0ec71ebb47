package espn

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

const (
	// BaseURL is the public ESPN site API root.
	BaseURL = "https://site.api.espn.com/apis/site/v2/sports"
)

// sportPaths maps factory sport names to ESPN API path segments.
var sportPaths = map[string]string{
	"nba": "basketball/nba",
	"nfl": "football/nfl",
	"epl": "soccer/eng.1",
}

// Client handles ESPN API requests.
// Note: uses curl internally because ESPN blocks Go's HTTP client fingerprint.
type Client struct {
	baseURL string
}

// NewClient creates an ESPN client, defaulting the base URL when empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{baseURL: baseURL}
}

// FetchScoreboard fetches the raw scoreboard payload for a sport and date.
func (c *Client) FetchScoreboard(ctx context.Context, sport string, date time.Time) ([]byte, error) {
	path, ok := sportPaths[sport]
	if !ok {
		return nil, fmt.Errorf("espn: unsupported sport %q", sport)
	}
	url := fmt.Sprintf("%s/%s/scoreboard?dates=%s", c.baseURL, path, date.Format("20060102"))
	return c.fetch(ctx, url)
}

// fetch makes an HTTP GET request using curl.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "curl", "-s", "-L", "-m", "15", url)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("curl failed: %s (stderr: %s)", err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("curl execution failed: %w", err)
	}

	// An HTML body here means ESPN served an error page (403, 404, ...).
	if len(output) > 0 && output[0] == '<' {
		return nil, fmt.Errorf("ESPN returned HTML error page: %s", string(output[:min(len(output), 200)]))
	}
	return output, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
