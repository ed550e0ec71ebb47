package reconcile

import (
	"fmt"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/teams"
)

// ProviderEvent is one scheduled match as reported by a single provider,
// with team naming already canonicalized. Events are produced fresh per
// fetch and never mutated.
type ProviderEvent struct {
	Provider   string    `json:"endpoint"`
	ExternalID string    `json:"endpointId"`
	HomeTeam   teams.Key `json:"homeTeam"`
	AwayTeam   teams.Key `json:"awayTeam"`
	EventDate  time.Time `json:"eventDate"`
}

// Matchup renders the event as "away @ home" for log lines.
func (e ProviderEvent) Matchup() string {
	return fmt.Sprintf("%s @ %s", e.AwayTeam, e.HomeTeam)
}

// ReconciledEvent joins one anchor event with the matching event from each
// secondary provider. A missing map entry means no match was found for that
// provider; the event is still usable with reduced provider coverage.
type ReconciledEvent struct {
	Anchor  ProviderEvent            `json:"anchor"`
	Matches map[string]ProviderEvent `json:"matches"`
}

// FeedName derives the unique feed name for the event:
// "Away_at_Home_YYYY-MM-DD" with display-cased team names.
func (r ReconciledEvent) FeedName() string {
	return fmt.Sprintf("%s_at_%s_%s",
		teams.DisplayName(r.Anchor.AwayTeam),
		teams.DisplayName(r.Anchor.HomeTeam),
		r.Anchor.EventDate.Format("2006-01-02"))
}
