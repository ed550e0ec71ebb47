// Package factory drives reconciled events through the feed provisioning
// pipeline: compile job graphs, create the feed on the ledger, attach jobs,
// configure, verify, and persist the update authority credential.
package factory

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/keystore"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/ledger"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/metrics"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/providers"
)

// Config holds the provisioning parameters for one batch run.
type Config struct {
	// ProgramID is the on-ledger oracle program feeds are created under.
	ProgramID string

	// ManagerRef is the fulfillment manager account reference.
	ManagerRef string

	MinConfirmations      int
	MinUpdateDelaySeconds int

	// RetryBudget is how many extra whole-feed attempts a retryable
	// failure gets before the last error is recorded.
	RetryBudget int

	// FeedDelay spaces out feed-level operations so the ledger RPC node is
	// not hammered. This is deliberate backpressure, not politeness.
	FeedDelay time.Duration
}

// DefaultConfig returns the provisioning defaults.
func DefaultConfig() Config {
	return Config{
		MinConfirmations:      5,
		MinUpdateDelaySeconds: 60,
		RetryBudget:           2,
		FeedDelay:             time.Second,
	}
}

// Factory provisions feeds sequentially against a ledger service.
type Factory struct {
	svc       ledger.Service
	providers map[string]providers.Provider
	keys      *keystore.Store
	metrics   *metrics.FactoryMetrics
	cfg       Config
}

// New creates a factory. The provider set maps registry names to instances;
// metrics may be nil, in which case a private registry is used.
func New(svc ledger.Service, providerSet map[string]providers.Provider, keys *keystore.Store, m *metrics.FactoryMetrics, cfg Config) *Factory {
	if m == nil {
		m = metrics.New()
	}
	if cfg.MinConfirmations == 0 {
		cfg.MinConfirmations = 5
	}
	if cfg.MinUpdateDelaySeconds == 0 {
		cfg.MinUpdateDelaySeconds = 60
	}
	return &Factory{
		svc:       svc,
		providers: providerSet,
		keys:      keys,
		metrics:   m,
		cfg:       cfg,
	}
}

// BuildFeeds provisions every input sequentially with a fixed inter-feed
// delay. Batch-level problems (duplicate names, bad manager account) abort
// before any remote mutation; per-feed failures are recorded on the result
// and do not stop the rest of the batch.
func (f *Factory) BuildFeeds(ctx context.Context, inputs []FeedInput) ([]*Result, error) {
	if err := ValidateInputs(inputs); err != nil {
		return nil, err
	}

	if f.cfg.ManagerRef != "" {
		if err := f.svc.VerifyManagerAccount(ctx, f.cfg.ManagerRef); err != nil {
			return nil, newError(ConfigError, "not a valid fulfillment manager account: %v", err)
		}
	}

	delay := f.cfg.FeedDelay
	if delay <= 0 {
		delay = time.Second
	}
	limiter := rate.NewLimiter(rate.Every(delay), 1)

	results := make([]*Result, 0, len(inputs))
	for _, input := range inputs {
		if err := limiter.Wait(ctx); err != nil {
			return results, err
		}
		res := f.provisionWithRetry(ctx, input)
		if res.Err != nil {
			f.metrics.FeedsTotal.WithLabelValues("failed").Inc()
			log.Printf("[factory] ❌ %s", res)
		} else {
			f.metrics.FeedsTotal.WithLabelValues("created").Inc()
			log.Printf("[factory] ✓ %s", res)
		}
		results = append(results, res)
	}
	return results, nil
}

// provisionWithRetry re-runs the whole sequence from Pending on retryable
// failures, up to the retry budget. A later success clears any error a
// prior attempt recorded, because only the final result is returned.
func (f *Factory) provisionWithRetry(ctx context.Context, input FeedInput) *Result {
	attempts := 1 + f.cfg.RetryBudget
	var res *Result
	for attempt := 1; attempt <= attempts; attempt++ {
		res = f.provision(ctx, input)
		if res.Err == nil {
			return res
		}
		if res.Err.Kind == ConfigError {
			// Bad input does not get better by retrying.
			return res
		}
		if attempt < attempts {
			f.metrics.FeedRetries.Inc()
			log.Printf("[factory] ⚠️  %s attempt %d/%d failed: %v (retrying)",
				input.Name, attempt, attempts, res.Err)
		}
	}
	return res
}

// provision runs one full pass of the state machine for one feed.
func (f *Factory) provision(ctx context.Context, input FeedInput) *Result {
	res := newResult(input)

	// Pending -> JobsCompiled. A feed with zero compilable jobs never
	// touches the ledger.
	for _, ref := range input.Jobs {
		provider, ok := f.providers[ref.Provider]
		if !ok {
			log.Printf("[factory] ⚠️  %s: unknown provider %q for job %s", input.Name, ref.Provider, ref.ExternalID)
			continue
		}
		graph, err := provider.CompileJob(input.Sport, ref.ExternalID, ref.EventDate)
		if err != nil {
			log.Printf("[factory] ⚠️  %s: compiling %s job %s: %v", input.Name, ref.Provider, ref.ExternalID, err)
			continue
		}
		res.Jobs = append(res.Jobs, JobOutcome{Ref: ref, Graph: graph})
	}
	if len(res.Jobs) == 0 {
		res.fail(newError(ConfigError, "no valid jobs defined for %s", input.Name))
		return res
	}
	if err := res.advance(StateJobsCompiled); err != nil {
		res.fail(newError(ConfigError, "%v", err))
		return res
	}

	// JobsCompiled -> Created.
	feed, err := f.timedCreateFeed(ctx)
	if err != nil {
		res.fail(newError(SwitchboardError, "failed to create data feed account: %v", err))
		return res
	}
	res.Feed = feed
	if err := res.advance(StateCreated); err != nil {
		res.fail(newError(ConfigError, "%v", err))
		return res
	}

	// Created -> JobsAttached. Fan out, join, keep going on partial
	// failure: partial job coverage is still useful signal. Zero
	// successful attachments is not.
	attached := f.attachJobs(ctx, feed, res.Jobs)
	if attached == 0 {
		res.fail(newError(SwitchboardError, "no jobs attached for %s", input.Name))
		return res
	}
	if err := res.advance(StateJobsAttached); err != nil {
		res.fail(newError(ConfigError, "%v", err))
		return res
	}

	// JobsAttached -> Configured.
	start := time.Now()
	err = f.svc.SetFeedConfig(ctx, feed, ledger.FeedConfig{
		MinConfirmations:      f.cfg.MinConfirmations,
		MinUpdateDelaySeconds: f.cfg.MinUpdateDelaySeconds,
		AuthorityRef:          f.cfg.ManagerRef,
		Lock:                  false,
	})
	f.metrics.LedgerCalls.WithLabelValues("configure").Observe(time.Since(start).Seconds())
	if err != nil {
		res.fail(newError(SwitchboardError, "failed to set data feed config %s: %v", input.Name, err))
		return res
	}

	authority, err := f.svc.CreateAuthority(ctx, f.cfg.ManagerRef, feed, ledger.AuthorityPerms{
		AuthorizeHeartbeat: false,
		AuthorizeUsage:     true,
	})
	if err != nil {
		res.fail(newError(SwitchboardError, "failed to add data feed to fulfillment manager %s: %v", input.Name, err))
		return res
	}
	res.Authority = authority
	if err := res.advance(StateConfigured); err != nil {
		res.fail(newError(ConfigError, "%v", err))
		return res
	}
	res.Created = true

	// Configured -> Verified. The read-back must report exactly as many
	// attached job definitions as we compiled.
	start = time.Now()
	state, err := f.svc.ReadFeedState(ctx, feed)
	f.metrics.LedgerCalls.WithLabelValues("verify").Observe(time.Since(start).Seconds())
	if err != nil {
		res.fail(newError(VerifyError, "failed to verify feed on-chain %s: %v", input.Name, err))
		return res
	}
	if state.AttachedJobCount != len(res.Jobs) {
		res.fail(newError(VerifyError,
			"data feed has the wrong number of jobs, expected %d, received %d",
			len(res.Jobs), state.AttachedJobCount))
		return res
	}

	// The authority credential must be durable before this feed counts as
	// a success; without it the feed can never be updated again.
	if f.keys != nil {
		path, err := f.keys.Save(input.Sport, input.Name, authority.Secret)
		if err != nil {
			res.fail(newError(SwitchboardError, "failed to persist authority keypair for %s: %v", input.Name, err))
			return res
		}
		res.KeypairPath = path
	}

	if err := res.advance(StateVerified); err != nil {
		res.fail(newError(ConfigError, "%v", err))
		return res
	}
	res.Verified = true
	return res
}

func (f *Factory) timedCreateFeed(ctx context.Context) (ledger.FeedHandle, error) {
	start := time.Now()
	feed, err := f.svc.CreateFeed(ctx, f.cfg.ProgramID)
	f.metrics.LedgerCalls.WithLabelValues("create").Observe(time.Since(start).Seconds())
	return feed, err
}

// attachJobs fans attachment calls out across the feed's jobs and waits for
// all to settle. Each goroutine writes only its own slot; failures are
// logged per job and counted, never escalated here.
func (f *Factory) attachJobs(ctx context.Context, feed ledger.FeedHandle, jobs []JobOutcome) int {
	type outcome struct {
		handle ledger.JobHandle
		err    error
	}
	outcomes := make([]outcome, len(jobs))

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := time.Now()
			handle, err := f.svc.AttachJob(ctx, feed, jobs[i].Graph)
			f.metrics.LedgerCalls.WithLabelValues("attach").Observe(time.Since(start).Seconds())
			outcomes[i] = outcome{handle: handle, err: err}
		}(i)
	}
	wg.Wait()

	attached := 0
	for i, out := range outcomes {
		if out.err != nil {
			f.metrics.AttachFailures.Inc()
			log.Printf("[factory] ⚠️  failed to create job %s/%s: %v",
				jobs[i].Ref.Provider, jobs[i].Ref.ExternalID, out.err)
			continue
		}
		jobs[i].Handle = out.handle
		attached++
	}
	return attached
}
