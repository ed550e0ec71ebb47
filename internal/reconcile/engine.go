// Package reconcile joins independently-fetched provider event lists into
// one canonical record per anchor event.
package reconcile

import (
	"log"
	"time"
)

// Engine reconciles an anchor provider's schedule against any number of
// secondary providers. The engine never fetches or retries; callers own
// fetch policy.
type Engine struct {
	metrics *Metrics
}

// Metrics tracks reconciliation statistics across passes.
type Metrics struct {
	TotalEvents        int
	MatchedEntries     int
	MissingEntries     int
	LastReconciliation time.Time
}

// NewEngine creates a new reconciliation engine.
func NewEngine() *Engine {
	return &Engine{metrics: &Metrics{}}
}

// Reconcile links each anchor event to the first event in every secondary
// list with the same (home, away) pair. No match is a warning, not an
// error: the event stays usable with the providers that did resolve.
//
// First-match is deliberate: a date's schedule has unique home/away pairs,
// so ties are not expected. If a provider's list does repeat a pair, the
// first occurrence wins; that is a known limitation.
func (e *Engine) Reconcile(anchor []ProviderEvent, secondary map[string][]ProviderEvent) []ReconciledEvent {
	e.metrics.LastReconciliation = time.Now()
	if len(anchor) == 0 {
		return nil
	}

	reconciled := make([]ReconciledEvent, 0, len(anchor))
	for _, anchorEvent := range anchor {
		e.metrics.TotalEvents++
		rec := ReconciledEvent{
			Anchor:  anchorEvent,
			Matches: make(map[string]ProviderEvent, len(secondary)),
		}
		for provider, events := range secondary {
			match, ok := findEvent(anchorEvent, events)
			if !ok {
				e.metrics.MissingEntries++
				log.Printf("[reconcile] ⚠️  failed to match %s event for %s", provider, anchorEvent.Matchup())
				continue
			}
			e.metrics.MatchedEntries++
			rec.Matches[provider] = match
		}
		reconciled = append(reconciled, rec)
	}
	return reconciled
}

// findEvent returns the first event sharing the anchor's home/away pair.
func findEvent(anchor ProviderEvent, events []ProviderEvent) (ProviderEvent, bool) {
	for _, candidate := range events {
		if candidate.HomeTeam == anchor.HomeTeam && candidate.AwayTeam == anchor.AwayTeam {
			return candidate, true
		}
	}
	return ProviderEvent{}, false
}

// GetMetrics returns current reconciliation metrics.
func (e *Engine) GetMetrics() *Metrics {
	return e.metrics
}
