// Package report aggregates per-feed provisioning outcomes into the
// created-feeds and errors artifacts a batch run always leaves behind.
package report

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/factory"
)

// CreatedFeed is one successfully provisioned feed in the created report.
type CreatedFeed struct {
	Name       string       `json:"name"`
	DataFeed   string       `json:"dataFeed"`
	UpdateAuth string       `json:"updateAuth"`
	Jobs       []CreatedJob `json:"jobs"`
}

// CreatedJob is one attached job in the created report.
type CreatedJob struct {
	Provider string `json:"provider"`
	ID       string `json:"id"`
	PubKey   string `json:"pubKey"`
}

// Summary partitions a batch's results. Both halves are always present:
// a run must be distinguishable as full success, partial failure, or full
// failure after the fact.
type Summary struct {
	RunID   string            `json:"runId"`
	Created []CreatedFeed     `json:"created"`
	Errors  map[string]string `json:"errors"`
}

// Build partitions results by the created flag.
func Build(runID string, results []*factory.Result) Summary {
	summary := Summary{
		RunID:   runID,
		Created: []CreatedFeed{},
		Errors:  map[string]string{},
	}
	for _, res := range results {
		if res.Err != nil {
			summary.Errors[res.Input.Name] = res.Err.Error()
		}
		if !res.Created {
			continue
		}
		feed := CreatedFeed{
			Name:       res.Input.Name,
			DataFeed:   res.Feed.PublicKey,
			UpdateAuth: res.Authority.PublicKey,
		}
		for _, job := range res.Jobs {
			feed.Jobs = append(feed.Jobs, CreatedJob{
				Provider: job.Ref.Provider,
				ID:       job.Ref.ExternalID,
				PubKey:   job.Handle.PublicKey,
			})
		}
		summary.Created = append(summary.Created, feed)
	}
	return summary
}

// WriteFiles writes the two report artifacts into dir, named by timestamp,
// and returns their paths. Empty partitions still produce a file.
func WriteFiles(dir string, summary Summary) (createdPath, errorsPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating report dir: %w", err)
	}
	now := time.Now().UnixMilli()

	createdPath = filepath.Join(dir, fmt.Sprintf("CreatedFeeds-%d.json", now))
	if err := writeJSON(createdPath, summary.Created); err != nil {
		return "", "", err
	}
	if len(summary.Created) == 0 {
		log.Println("[report] No newly created data feeds")
	}

	errorsPath = filepath.Join(dir, fmt.Sprintf("Errors-%d.json", now))
	if err := writeJSON(errorsPath, summary.Errors); err != nil {
		return "", "", err
	}
	if len(summary.Errors) == 0 {
		log.Println("[report] No errors")
	}
	return createdPath, errorsPath, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
