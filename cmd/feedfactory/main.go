package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/api/rest"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/cache"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/config"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/factory"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/keystore"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/ledger"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/metrics"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/providers"
	_ "github.com/switchboard-xyz/switchboard-feed-factory/internal/providers/all"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/reconcile"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/report"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/store"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/store/repository"
)

const (
	serviceName    = "feed-factory"
	serviceVersion = "1.0.0"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to yaml config file")
		dateFlag   = flag.String("date", "", "event date to provision (YYYY-MM-DD, default today)")
		inputPath  = flag.String("input", "", "provision from a JSON input file instead of fetching")
	)
	flag.Parse()

	log.Printf("Starting %s v%s - Oracle Feed Provisioner", serviceName, serviceVersion)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	date := time.Now().UTC()
	if *dateFlag != "" {
		date, err = time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			log.Fatalf("Invalid -date %q: %v", *dateFlag, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Interrupt received, shutting down...")
		cancel()
	}()

	// Optional run history database.
	var runs *repository.RunRepository
	if cfg.Postgres.DSN != "" {
		db, err := store.NewDatabase(cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.RunMigrations(); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
		runs = repository.NewRunRepository(db)
		log.Println("✓ Connected to run history database")
	}

	// Optional payload cache.
	var payloadCache *cache.PayloadCache
	if cfg.Redis.URL != "" {
		payloadCache, err = cache.New(cfg.Redis.URL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable: %v (continuing without cache)", err)
		} else {
			defer payloadCache.Close()
			log.Println("✓ Connected to Redis")
		}
	}

	factoryMetrics := metrics.New()

	// Optional status server; useful when the run is long.
	if cfg.API.Enabled {
		statusServer := rest.NewServer(cfg.API.Port, runs, factoryMetrics)
		go func() {
			if err := statusServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Printf("Status server error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			statusServer.Shutdown(shutdownCtx)
		}()
	}

	providerSet := buildProviders(cfg, payloadCache)

	var inputs []factory.FeedInput
	if *inputPath != "" {
		inputs, err = factory.LoadInputs(*inputPath)
		if err != nil {
			log.Fatalf("Failed to load inputs: %v", err)
		}
		log.Printf("✓ Loaded %d feed inputs from %s", len(inputs), *inputPath)
	} else {
		inputs, err = fetchInputs(ctx, cfg, providerSet, date, factoryMetrics)
		if err != nil {
			log.Fatalf("Failed to build inputs: %v", err)
		}
	}
	if len(inputs) == 0 {
		log.Printf("No events found for %s on %s, nothing to do", cfg.Feeds.Sport, date.Format("2006-01-02"))
		return
	}

	svc := ledger.NewClient(cfg.Ledger.GatewayURL)
	keys := keystore.New(cfg.Output.KeypairDir)

	f := factory.New(svc, providerSet, keys, factoryMetrics, factory.Config{
		ProgramID:             cfg.Ledger.ProgramID,
		ManagerRef:            cfg.Ledger.ManagerRef,
		MinConfirmations:      cfg.Feeds.MinConfirmations,
		MinUpdateDelaySeconds: cfg.Feeds.MinUpdateDelaySeconds,
		RetryBudget:           cfg.Feeds.RetryBudget,
		FeedDelay:             cfg.Feeds.Delay,
	})

	runID := uuid.NewString()
	startedAt := time.Now().UTC()
	if runs != nil {
		if err := runs.StartRun(ctx, runID, cfg.Feeds.Sport, startedAt); err != nil {
			log.Printf("⚠️  Failed to record run start: %v", err)
		}
	}

	log.Printf("Provisioning %d feeds (run %s)", len(inputs), runID)
	results, err := f.BuildFeeds(ctx, inputs)
	if err != nil {
		log.Fatalf("Batch aborted: %v", err)
	}

	summary := report.Build(runID, results)
	createdPath, errorsPath, err := report.WriteFiles(cfg.Output.ReportDir, summary)
	if err != nil {
		log.Fatalf("Failed to write reports: %v", err)
	}
	log.Printf("✓ Reports written: %s, %s", createdPath, errorsPath)

	if runs != nil {
		if err := runs.FinishRun(ctx, runID, results); err != nil {
			log.Printf("⚠️  Failed to record run results: %v", err)
		}
	}

	log.Printf("✓ Run %s complete: %d created, %d errors (%v)",
		runID, len(summary.Created), len(summary.Errors), time.Since(startedAt).Round(time.Second))
}

// buildProviders instantiates the anchor plus every configured secondary
// provider. An unknown name is fatal: a typo here silently dropping a data
// source would be worse than refusing to start.
func buildProviders(cfg *config.Config, payloadCache *cache.PayloadCache) map[string]providers.Provider {
	deps := providers.Deps{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Cache:      payloadCache,
	}

	names := append([]string{cfg.Providers.Anchor}, cfg.Providers.Secondary...)
	set := make(map[string]providers.Provider, len(names))
	for _, name := range names {
		p, err := providers.New(name, deps)
		if err != nil {
			log.Fatalf("Failed to build provider: %v", err)
		}
		set[p.Name()] = p
	}
	return set
}

// fetchInputs pulls every provider's schedule for the date, reconciles the
// secondary providers against the anchor, and converts the result into feed
// inputs. A secondary provider failing to fetch degrades the batch, it does
// not abort it.
func fetchInputs(ctx context.Context, cfg *config.Config, providerSet map[string]providers.Provider, date time.Time, m *metrics.FactoryMetrics) ([]factory.FeedInput, error) {
	anchor, ok := providerSet[cfg.Providers.Anchor]
	if !ok {
		log.Fatalf("Anchor provider %q not built", cfg.Providers.Anchor)
	}

	anchorEvents, err := anchor.FetchEvents(ctx, cfg.Feeds.Sport, date)
	if err != nil {
		return nil, err
	}
	m.EventsMatched.WithLabelValues(anchor.Name()).Add(float64(len(anchorEvents)))
	log.Printf("✓ %s: %d events for %s", anchor.Name(), len(anchorEvents), date.Format("2006-01-02"))

	secondary := make(map[string][]reconcile.ProviderEvent)
	for name, p := range providerSet {
		if name == cfg.Providers.Anchor {
			continue
		}
		events, err := p.FetchEvents(ctx, cfg.Feeds.Sport, date)
		if err != nil {
			log.Printf("⚠️  %s fetch failed: %v (feeds will be missing its jobs)", name, err)
			continue
		}
		m.EventsMatched.WithLabelValues(name).Add(float64(len(events)))
		log.Printf("✓ %s: %d events for %s", name, len(events), date.Format("2006-01-02"))
		secondary[name] = events
	}

	engine := reconcile.NewEngine()
	reconciled := engine.Reconcile(anchorEvents, secondary)
	rm := engine.GetMetrics()
	log.Printf("✓ Reconciled %d events (%d matched, %d missing)", rm.TotalEvents, rm.MatchedEntries, rm.MissingEntries)

	return factory.InputsFromEvents(cfg.Feeds.Sport, reconciled), nil
}
