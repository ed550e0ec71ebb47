// Package providers defines the capability interface each sports data source
// implements, plus a registry so callers never dispatch on provider identity
// strings.
package providers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/cache"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/oraclejob"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/reconcile"
)

// Provider is one external sports data source: it can list the events it
// knows for a date and compile the job graph that resolves one of its
// matches to an outcome code.
type Provider interface {
	// Name returns the provider's registry name.
	Name() string

	// FetchEvents lists the provider's events for a sport and date,
	// canonicalized. A provider that cannot serve the sport returns
	// an empty list, not an error.
	FetchEvents(ctx context.Context, sport string, date time.Time) ([]reconcile.ProviderEvent, error)

	// CompileJob emits the deterministic task graph deriving the match
	// outcome for one of the provider's external match IDs. eventDate is
	// the match date; some providers key their result resources by it.
	CompileJob(sport, externalID string, eventDate time.Time) (*oraclejob.Graph, error)
}

// Deps carries shared infrastructure into provider factories.
type Deps struct {
	HTTPClient *http.Client
	Cache      *cache.PayloadCache
}

// Factory builds one provider instance.
type Factory func(deps Deps) Provider

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds a provider factory under a unique name. Provider packages
// call this from init; duplicates are a programming error.
func Register(name string, f Factory) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		panic("providers: empty name in Register")
	}
	if f == nil {
		panic("providers: nil factory in Register for " + n)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[n]; exists {
		panic("providers: duplicate registration for " + n)
	}
	registry[n] = f
}

// New instantiates a registered provider.
func New(name string, deps Deps) (Provider, error) {
	registryMu.RLock()
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %s)", name, strings.Join(AvailableNames(), ", "))
	}
	return f(deps), nil
}

// AvailableNames lists registered providers, sorted.
func AvailableNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
