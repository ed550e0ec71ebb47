package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/cache"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/config"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/factory"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/providers"
	_ "github.com/switchboard-xyz/switchboard-feed-factory/internal/providers/all"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/reconcile"
)

const (
	appName    = "fetch-events"
	appVersion = "1.0.0"
)

// fetch-events pulls every provider's schedule for a date window, reconciles
// it, and writes the feed inputs the provisioner consumes. It never touches
// the ledger, so it is safe to run as often as needed.
func main() {
	log.Printf("=== %s v%s ===", appName, appVersion)

	var (
		configPath = flag.String("config", "", "path to yaml config file")
		startStr   = flag.String("start", "", "first date to fetch (YYYY-MM-DD, default today)")
		endStr     = flag.String("end", "", "last date to fetch (YYYY-MM-DD, default start)")
		outDir     = flag.String("out", "inputs", "directory for JSON and CSV output")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	start := time.Now().UTC()
	if *startStr != "" {
		start, err = time.Parse("2006-01-02", *startStr)
		if err != nil {
			log.Fatalf("Invalid -start %q: %v", *startStr, err)
		}
	}
	end := start
	if *endStr != "" {
		end, err = time.Parse("2006-01-02", *endStr)
		if err != nil {
			log.Fatalf("Invalid -end %q: %v", *endStr, err)
		}
	}
	if end.Before(start) {
		log.Fatalf("-end %s is before -start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	ctx := context.Background()

	var payloadCache *cache.PayloadCache
	if cfg.Redis.URL != "" {
		payloadCache, err = cache.New(cfg.Redis.URL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable: %v (continuing without cache)", err)
		} else {
			defer payloadCache.Close()
		}
	}

	deps := providers.Deps{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Cache:      payloadCache,
	}
	names := append([]string{cfg.Providers.Anchor}, cfg.Providers.Secondary...)
	providerSet := make(map[string]providers.Provider, len(names))
	for _, name := range names {
		p, err := providers.New(name, deps)
		if err != nil {
			log.Fatalf("Failed to build provider: %v", err)
		}
		providerSet[p.Name()] = p
	}

	engine := reconcile.NewEngine()
	var allInputs []factory.FeedInput
	var allEvents []reconcile.ReconciledEvent

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		anchor := providerSet[cfg.Providers.Anchor]
		anchorEvents, err := anchor.FetchEvents(ctx, cfg.Feeds.Sport, date)
		if err != nil {
			log.Fatalf("Anchor fetch failed for %s: %v", date.Format("2006-01-02"), err)
		}

		secondary := make(map[string][]reconcile.ProviderEvent)
		for name, p := range providerSet {
			if name == cfg.Providers.Anchor {
				continue
			}
			events, err := p.FetchEvents(ctx, cfg.Feeds.Sport, date)
			if err != nil {
				log.Printf("⚠️  %s fetch failed for %s: %v", name, date.Format("2006-01-02"), err)
				continue
			}
			secondary[name] = events
		}

		reconciled := engine.Reconcile(anchorEvents, secondary)
		log.Printf("✓ %s: %d events", date.Format("2006-01-02"), len(reconciled))
		allEvents = append(allEvents, reconciled...)
		allInputs = append(allInputs, factory.InputsFromEvents(cfg.Feeds.Sport, reconciled)...)
	}

	m := engine.GetMetrics()
	log.Printf("✓ Fetched %d events total (%d matched, %d missing)", m.TotalEvents, m.MatchedEntries, m.MissingEntries)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	stamp := time.Now().UnixMilli()
	jsonPath := filepath.Join(*outDir, fmt.Sprintf("FeedInputs-%d.json", stamp))
	if err := writeJSON(jsonPath, allInputs); err != nil {
		log.Fatalf("Failed to write inputs: %v", err)
	}
	csvPath := filepath.Join(*outDir, fmt.Sprintf("Events-%d.csv", stamp))
	if err := writeCSV(csvPath, allEvents); err != nil {
		log.Fatalf("Failed to write event CSV: %v", err)
	}

	log.Printf("✓ Wrote %s and %s", jsonPath, csvPath)
}

func writeJSON(path string, inputs []factory.FeedInput) error {
	data, err := json.MarshalIndent(inputs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// writeCSV renders one row per event with the external ID each provider
// resolved, blank where reconciliation found no match.
func writeCSV(path string, events []reconcile.ReconciledEvent) error {
	providerNames := map[string]bool{}
	for _, ev := range events {
		for name := range ev.Matches {
			providerNames[name] = true
		}
	}
	columns := make([]string, 0, len(providerNames))
	for name := range providerNames {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"date", "matchup", "anchor_id"}, columns...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, ev := range events {
		row := []string{
			ev.Anchor.EventDate.Format("2006-01-02"),
			ev.Anchor.Matchup(),
			ev.Anchor.ExternalID,
		}
		for _, name := range columns {
			if match, ok := ev.Matches[name]; ok {
				row = append(row, match.ExternalID)
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
