package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	// APIBaseURL serves scoreboard JSON.
	APIBaseURL = "https://api-secure.sports.yahoo.com/v1/editorial/s/scoreboard"

	// SiteBaseURL serves the public match pages.
	SiteBaseURL = "https://sports.yahoo.com"

	// UserAgent for requests.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client fetches Yahoo scoreboard data. The JSON API is preferred; the HTML
// scoreboard page is the fallback, rendered through headless Chrome when
// Yahoo blocks the plain fetch.
type Client struct {
	httpClient *http.Client
	apiBase    string
	siteBase   string

	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewClient creates a Yahoo client. Base URLs default when empty.
func NewClient(httpClient *http.Client, apiBase, siteBase string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if apiBase == "" {
		apiBase = APIBaseURL
	}
	if siteBase == "" {
		siteBase = SiteBaseURL
	}
	return &Client{
		httpClient: httpClient,
		apiBase:    apiBase,
		siteBase:   siteBase,
	}
}

// Close releases the headless browser, if one was started.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// FetchScoreboard fetches the scoreboard JSON for a league and date.
func (c *Client) FetchScoreboard(ctx context.Context, league string, date time.Time) ([]byte, error) {
	url := fmt.Sprintf("%s?leagues=%s&date=%s", c.apiBase, league, date.Format("2006-01-02"))
	return c.get(ctx, url)
}

// FetchScoreboardHTML fetches the scoreboard page HTML, falling back to a
// headless render when the plain fetch is refused.
func (c *Client) FetchScoreboardHTML(ctx context.Context, league string, date time.Time) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/scoreboard/?confId=&schedState=&dateRange=%s", c.siteBase, league, date.Format("2006-01-02"))
	body, err := c.get(ctx, url)
	if err == nil {
		return body, nil
	}
	return c.render(ctx, url)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo returned %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

// render loads the page in headless Chrome and returns the rendered HTML.
func (c *Client) render(ctx context.Context, url string) ([]byte, error) {
	if c.allocCtx == nil {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(UserAgent),
		)
		c.allocCtx, c.cancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}

	tabCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, 30*time.Second)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", url, err)
	}
	return []byte(html), nil
}
