// Package ledger defines the contract the provisioning pipeline relies on
// from the on-chain oracle ledger. The concrete wire protocol, transaction
// signing, and account encoding live behind this interface; the factory only
// ever sees opaque handles.
package ledger

import (
	"context"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/oraclejob"
)

// FeedHandle references a created data feed resource.
type FeedHandle struct {
	PublicKey string
}

// JobHandle references one job graph attached to a feed.
type JobHandle struct {
	PublicKey string
}

// AuthorityHandle references the update-authority account granted to a feed,
// including the secret material the keystore must persist. Losing the secret
// means the feed can never be remotely updated again.
type AuthorityHandle struct {
	PublicKey string
	Secret    []byte
}

// FeedConfig is the on-ledger configuration applied after jobs are attached.
type FeedConfig struct {
	MinConfirmations      int
	MinUpdateDelaySeconds int
	AuthorityRef          string
	Lock                  bool
}

// AuthorityPerms scopes what an update authority may do.
type AuthorityPerms struct {
	AuthorizeHeartbeat bool
	AuthorizeUsage     bool
}

// FeedState is the read-back of a feed's on-ledger account.
type FeedState struct {
	AttachedJobCount int
	MinConfirmations int
	Locked           bool
}

// Service is the set of ledger operations the pipeline consumes. The funding
// credential is fixed at construction and shared read-only across all calls
// in a run.
type Service interface {
	// VerifyManagerAccount checks the fulfillment manager reference is a
	// valid manager account. Runs once before any feed work begins.
	VerifyManagerAccount(ctx context.Context, managerRef string) error

	// CreateFeed allocates a new feed resource under the given program.
	CreateFeed(ctx context.Context, programID string) (FeedHandle, error)

	// AttachJob attaches one compiled job graph to a feed.
	AttachJob(ctx context.Context, feed FeedHandle, graph *oraclejob.Graph) (JobHandle, error)

	// SetFeedConfig applies the feed configuration.
	SetFeedConfig(ctx context.Context, feed FeedHandle, cfg FeedConfig) error

	// CreateAuthority grants the manager's oracles update rights on the feed.
	CreateAuthority(ctx context.Context, managerRef string, feed FeedHandle, perms AuthorityPerms) (AuthorityHandle, error)

	// ReadFeedState reads back the feed's on-ledger state for verification.
	ReadFeedState(ctx context.Context, feed FeedHandle) (FeedState, error)
}
