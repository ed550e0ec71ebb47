package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/reconcile"
)

// JobRef names one provider match backing a feed. EventDate travels with
// the ref because some providers key their result resources by date.
type JobRef struct {
	Provider   string    `json:"provider"`
	ExternalID string    `json:"id"`
	EventDate  time.Time `json:"eventDate"`
}

// FeedInput is everything needed to provision one feed. Name is the
// idempotency key and must be unique within a batch.
type FeedInput struct {
	Name  string   `json:"name"`
	Sport string   `json:"sport"`
	Jobs  []JobRef `json:"jobs"`
}

// InputsFromEvents converts reconciled events into feed inputs. The anchor
// event and every matched secondary event contribute one job each.
func InputsFromEvents(sport string, events []reconcile.ReconciledEvent) []FeedInput {
	inputs := make([]FeedInput, 0, len(events))
	for _, ev := range events {
		jobs := []JobRef{{Provider: ev.Anchor.Provider, ExternalID: ev.Anchor.ExternalID, EventDate: ev.Anchor.EventDate}}
		for provider, match := range ev.Matches {
			jobs = append(jobs, JobRef{Provider: provider, ExternalID: match.ExternalID, EventDate: match.EventDate})
		}
		inputs = append(inputs, FeedInput{
			Name:  ev.FeedName(),
			Sport: sport,
			Jobs:  jobs,
		})
	}
	return inputs
}

// LoadInputs reads feed inputs from a JSON file.
func LoadInputs(path string) ([]FeedInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(JsonInputError, "reading input file %s: %v", path, err)
	}
	var inputs []FeedInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, newError(JsonInputError, "parsing input file %s: %v", path, err)
	}
	return inputs, nil
}

// ValidateInputs rejects batches with duplicate feed names before any
// remote mutation happens.
func ValidateInputs(inputs []FeedInput) error {
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if in.Name == "" {
			return newError(JsonInputError, "feed input with empty name")
		}
		if seen[in.Name] {
			return newError(JsonInputError, "duplicate feed name %s", in.Name)
		}
		seen[in.Name] = true
	}
	return nil
}

// String renders the input for log lines.
func (in FeedInput) String() string {
	return fmt.Sprintf("%s (%s, %d jobs)", in.Name, in.Sport, len(in.Jobs))
}
