// Package yahoo implements the Yahoo Sports provider.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/cache"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/providers"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/reconcile"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/teams"
)

const Name = "yahoo"

// leaguePaths maps factory sport names to Yahoo league slugs. EPL is mapped
// for job compilation only; its event listing needs a team slug table that
// does not exist yet.
var leaguePaths = map[string]string{
	"nba": "nba",
	"nfl": "nfl",
	"epl": "soccer/premier-league",
}

func init() {
	providers.Register(Name, func(deps providers.Deps) providers.Provider {
		return &Provider{
			client: NewClient(deps.HTTPClient, "", ""),
			cache:  deps.Cache,
			teams:  teams.Default(),
		}
	})
}

// Provider lists Yahoo scoreboard events and compiles Yahoo job graphs.
type Provider struct {
	client *Client
	cache  *cache.PayloadCache
	teams  *teams.Index
}

// NewProvider builds a provider against custom base URLs (tests).
func NewProvider(client *Client, payloadCache *cache.PayloadCache) *Provider {
	return &Provider{client: client, cache: payloadCache, teams: teams.Default()}
}

func (p *Provider) Name() string { return Name }

// scoreboardResponse is the slice of the scoreboard API payload event
// listing needs. Games arrive as an object keyed by game ID.
type scoreboardResponse struct {
	Service struct {
		Scoreboard struct {
			Games map[string]scoreboardGame `json:"games"`
		} `json:"scoreboard"`
	} `json:"service"`
}

type scoreboardGame struct {
	NavigationLinks struct {
		Boxscore struct {
			URL string `json:"url"`
		} `json:"boxscore"`
	} `json:"navigation_links"`
}

// FetchEvents lists Yahoo's events for the date. The JSON API is tried
// first; on failure the public scoreboard page is scraped instead.
func (p *Provider) FetchEvents(ctx context.Context, sport string, date time.Time) ([]reconcile.ProviderEvent, error) {
	league, ok := leaguePaths[sport]
	if !ok {
		return nil, nil
	}
	// Slug parsing needs the sport's team table; without one the listing
	// could only ever produce warnings.
	if len(teams.Keys(sport)) == 0 {
		return nil, nil
	}

	raw, cached := p.cachedPayload(ctx, sport, date)
	if !cached {
		var err error
		raw, err = p.client.FetchScoreboard(ctx, league, date)
		if err != nil {
			log.Printf("[yahoo] ⚠️  scoreboard API failed, scraping page instead: %v", err)
			return p.fetchEventsFromHTML(ctx, sport, league, date)
		}
		p.storePayload(ctx, sport, date, raw)
	}

	var resp scoreboardResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("yahoo scoreboard: decoding response: %w", err)
	}

	var events []reconcile.ProviderEvent
	for _, game := range resp.Service.Scoreboard.Games {
		slug := gameSlug(game.NavigationLinks.Boxscore.URL)
		if slug == "" {
			continue
		}
		event, ok := p.eventFromSlug(sport, slug, date)
		if !ok {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// gameSlug strips "/nba/memphis-grizzlies-charlotte-hornets-2021100730/"
// down to the slug itself.
func gameSlug(boxscoreURL string) string {
	trimmed := strings.Trim(boxscoreURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return trimmed
}

// eventFromSlug recovers the away and home teams from a game slug. Yahoo
// embeds full kebab-case team names, away first: away-home-gamenumber.
func (p *Provider) eventFromSlug(sport, slug string, date time.Time) (reconcile.ProviderEvent, bool) {
	away, rest := matchTeamPrefix(sport, slug)
	if away == "" {
		log.Printf("[yahoo] ⚠️  failed to get away team for %s", slug)
		return reconcile.ProviderEvent{}, false
	}
	home, _ := matchTeamPrefix(sport, rest)
	if home == "" || home == away {
		log.Printf("[yahoo] ⚠️  failed to get home team for %s", slug)
		return reconcile.ProviderEvent{}, false
	}
	homeKey, _ := p.teams.Canonicalize(sport, Name, home)
	awayKey, _ := p.teams.Canonicalize(sport, Name, away)
	return reconcile.ProviderEvent{
		Provider:   Name,
		ExternalID: slug,
		HomeTeam:   homeKey,
		AwayTeam:   awayKey,
		EventDate:  date,
	}, true
}

// matchTeamPrefix finds the team key prefixing the slug and returns the
// remainder after it.
func matchTeamPrefix(sport, slug string) (string, string) {
	for _, key := range teams.Keys(sport) {
		prefix := string(key) + "-"
		if strings.HasPrefix(slug, prefix) {
			return string(key), strings.TrimPrefix(slug, prefix)
		}
	}
	return "", slug
}

func (p *Provider) cachedPayload(ctx context.Context, sport string, date time.Time) ([]byte, bool) {
	if p.cache == nil {
		return nil, false
	}
	return p.cache.GetPayload(ctx, Name, sport, date)
}

func (p *Provider) storePayload(ctx context.Context, sport string, date time.Time, raw []byte) {
	if p.cache == nil {
		return
	}
	if err := p.cache.SetPayload(ctx, Name, sport, date, raw); err != nil {
		log.Printf("[yahoo] ⚠️  caching payload: %v", err)
	}
}
