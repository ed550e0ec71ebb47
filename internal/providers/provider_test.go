package providers

import (
	"context"
	"testing"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/oraclejob"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/reconcile"
)

type fakeProvider struct{ name string }

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) FetchEvents(ctx context.Context, sport string, date time.Time) ([]reconcile.ProviderEvent, error) {
	return nil, nil
}

func (p *fakeProvider) CompileJob(sport, externalID string, eventDate time.Time) (*oraclejob.Graph, error) {
	return nil, nil
}

func TestRegisterAndNew(t *testing.T) {
	Register("test-source", func(deps Deps) Provider {
		return &fakeProvider{name: "test-source"}
	})

	p, err := New("test-source", Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "test-source" {
		t.Errorf("Name() = %s", p.Name())
	}

	// Lookup is case and whitespace insensitive.
	if _, err := New("  Test-Source ", Deps{}); err != nil {
		t.Errorf("normalized lookup failed: %v", err)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New("never-registered", Deps{}); err == nil {
		t.Error("unknown provider should error")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("dup-source", func(deps Deps) Provider {
		return &fakeProvider{name: "dup-source"}
	})
	defer func() {
		if recover() == nil {
			t.Error("duplicate registration should panic")
		}
	}()
	Register("dup-source", func(deps Deps) Provider {
		return &fakeProvider{name: "dup-source"}
	})
}

func TestAvailableNamesSorted(t *testing.T) {
	Register("zz-source", func(deps Deps) Provider { return &fakeProvider{name: "zz-source"} })
	Register("aa-source", func(deps Deps) Provider { return &fakeProvider{name: "aa-source"} })

	names := AvailableNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("names not sorted: %v", names)
			break
		}
	}
}
