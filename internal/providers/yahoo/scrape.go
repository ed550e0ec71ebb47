package yahoo

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/reconcile"
)

// boxscoreHref matches game links on the scoreboard page, capturing the slug.
var boxscoreHref = regexp.MustCompile(`^/([a-z-]+(?:/[a-z-]+)?)/([a-z0-9-]+-\d+)/?$`)

// fetchEventsFromHTML scrapes game slugs out of the scoreboard page's
// boxscore links. Used when the JSON API refuses to serve.
func (p *Provider) fetchEventsFromHTML(ctx context.Context, sport, league string, date time.Time) ([]reconcile.ProviderEvent, error) {
	html, err := p.client.FetchScoreboardHTML(ctx, league, date)
	if err != nil {
		return nil, fmt.Errorf("yahoo scoreboard page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("yahoo scoreboard page: parsing HTML: %w", err)
	}

	seen := make(map[string]bool)
	var events []reconcile.ProviderEvent
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		groups := boxscoreHref.FindStringSubmatch(href)
		if groups == nil || groups[1] != league {
			return
		}
		slug := groups[2]
		if seen[slug] {
			return
		}
		seen[slug] = true
		if event, ok := p.eventFromSlug(sport, slug, date); ok {
			events = append(events, event)
		}
	})
	return events, nil
}
