// Package nba implements the NBA.com provider. The league's own schedule is
// the anchor record other providers are reconciled against.
package nba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/cache"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/providers"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/reconcile"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/teams"
)

const (
	Name = "nba"

	// BaseURL is the league data API root.
	BaseURL = "https://data.nba.net"
)

func init() {
	providers.Register(Name, func(deps providers.Deps) providers.Provider {
		httpClient := deps.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: 30 * time.Second}
		}
		return &Provider{
			httpClient: httpClient,
			baseURL:    BaseURL,
			cache:      deps.Cache,
			teams:      teams.Default(),
		}
	})
}

// Provider lists NBA.com scoreboard events and compiles boxscore job graphs.
type Provider struct {
	httpClient *http.Client
	baseURL    string
	cache      *cache.PayloadCache
	teams      *teams.Index
}

// NewProvider builds a provider against a custom base URL (tests).
func NewProvider(httpClient *http.Client, baseURL string, payloadCache *cache.PayloadCache) *Provider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Provider{httpClient: httpClient, baseURL: baseURL, cache: payloadCache, teams: teams.Default()}
}

func (p *Provider) Name() string { return Name }

type scoreboardResponse struct {
	Games []scoreboardGame `json:"games"`
}

type scoreboardGame struct {
	GameID       string   `json:"gameId"`
	StartTimeUTC string   `json:"startTimeUTC"`
	HTeam        teamCode `json:"hTeam"`
	VTeam        teamCode `json:"vTeam"`
}

type teamCode struct {
	TriCode string `json:"triCode"`
}

// FetchEvents lists the league's events for the date. Only the NBA sport is
// served; anything else returns an empty list.
func (p *Provider) FetchEvents(ctx context.Context, sport string, date time.Time) ([]reconcile.ProviderEvent, error) {
	if sport != "nba" {
		return nil, nil
	}

	raw, cached := p.cachedPayload(ctx, sport, date)
	if !cached {
		var err error
		raw, err = p.fetchScoreboard(ctx, date)
		if err != nil {
			return nil, err
		}
		p.storePayload(ctx, sport, date, raw)
	}

	var resp scoreboardResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("nba scoreboard: decoding response: %w", err)
	}

	events := make([]reconcile.ProviderEvent, 0, len(resp.Games))
	for _, g := range resp.Games {
		homeKey, _ := p.teams.Canonicalize(sport, Name, g.HTeam.TriCode)
		awayKey, _ := p.teams.Canonicalize(sport, Name, g.VTeam.TriCode)
		events = append(events, reconcile.ProviderEvent{
			Provider:   Name,
			ExternalID: g.GameID,
			HomeTeam:   homeKey,
			AwayTeam:   awayKey,
			EventDate:  parseStartTime(g.StartTimeUTC, date),
		})
	}
	return events, nil
}

func (p *Provider) fetchScoreboard(ctx context.Context, date time.Time) ([]byte, error) {
	url := fmt.Sprintf("%s/prod/v2/%s/scoreboard.json", p.baseURL, date.Format("20060102"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nba scoreboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nba scoreboard returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func parseStartTime(raw string, fallback time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
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
		log.Printf("[nba] ⚠️  caching payload: %v", err)
	}
}
