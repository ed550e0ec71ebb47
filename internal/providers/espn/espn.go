// Package espn implements the ESPN provider: scoreboard event listing and
// match-result job compilation.
package espn

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

const Name = "espn"

func init() {
	providers.Register(Name, func(deps providers.Deps) providers.Provider {
		return &Provider{
			client: NewClient(""),
			cache:  deps.Cache,
			teams:  teams.Default(),
		}
	})
}

// Provider lists ESPN scoreboard events and compiles ESPN job graphs.
type Provider struct {
	client *Client
	cache  *cache.PayloadCache
	teams  *teams.Index
}

// NewProvider builds a provider against a custom base URL (tests).
func NewProvider(baseURL string, payloadCache *cache.PayloadCache) *Provider {
	return &Provider{
		client: NewClient(baseURL),
		cache:  payloadCache,
		teams:  teams.Default(),
	}
}

func (p *Provider) Name() string { return Name }

// scoreboardEvent is the slice of the scoreboard payload event listing needs.
type scoreboardEvent struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	ShortName string `json:"shortName"` // "AWAY @ HOME"
}

type scoreboardResponse struct {
	Events []scoreboardEvent `json:"events"`
}

// FetchEvents lists ESPN's events for the date, canonicalized.
func (p *Provider) FetchEvents(ctx context.Context, sport string, date time.Time) ([]reconcile.ProviderEvent, error) {
	raw, cached := p.cachedPayload(ctx, sport, date)
	if !cached {
		var err error
		raw, err = p.client.FetchScoreboard(ctx, sport, date)
		if err != nil {
			return nil, fmt.Errorf("espn scoreboard: %w", err)
		}
		p.storePayload(ctx, sport, date, raw)
	}

	var resp scoreboardResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("espn scoreboard: decoding response: %w", err)
	}

	events := make([]reconcile.ProviderEvent, 0, len(resp.Events))
	for _, e := range resp.Events {
		away, home, ok := splitShortName(e.ShortName)
		if !ok {
			log.Printf("[espn] ⚠️  skipping event %s: unexpected shortName %q", e.ID, e.ShortName)
			continue
		}
		homeKey, _ := p.teams.Canonicalize(sport, Name, home)
		awayKey, _ := p.teams.Canonicalize(sport, Name, away)
		events = append(events, reconcile.ProviderEvent{
			Provider:   Name,
			ExternalID: e.ID,
			HomeTeam:   homeKey,
			AwayTeam:   awayKey,
			EventDate:  parseEventDate(e.Date, date),
		})
	}
	return events, nil
}

// splitShortName splits ESPN's "AWAY @ HOME" form.
func splitShortName(shortName string) (away, home string, ok bool) {
	parts := strings.SplitN(shortName, " @ ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// parseEventDate handles both RFC3339 and ESPN's shortened form without
// seconds, falling back to the requested date.
func parseEventDate(raw string, fallback time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04Z", raw); err == nil {
		return t
	}
	return fallback
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
		log.Printf("[espn] ⚠️  caching payload: %v", err)
	}
}
