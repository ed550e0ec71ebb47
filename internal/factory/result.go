package factory

import (
	"fmt"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/ledger"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/oraclejob"
)

// JobOutcome records one job's compilation and attachment.
type JobOutcome struct {
	Ref    JobRef
	Graph  *oraclejob.Graph
	Handle ledger.JobHandle
}

// Result tracks one feed input through the provisioning lifecycle. It is
// mutated by exactly one provisioning pass and immutable once returned.
type Result struct {
	Input FeedInput
	State State

	Feed      ledger.FeedHandle
	Authority ledger.AuthorityHandle
	Jobs      []JobOutcome

	// Created is true once the whole create/attach/configure sequence
	// succeeded; Verified once the on-ledger read-back matched.
	Created  bool
	Verified bool

	// KeypairPath is where the authority credential was persisted.
	KeypairPath string

	Err *Error
}

// newResult starts a result in the pending state.
func newResult(input FeedInput) *Result {
	return &Result{Input: input, State: StatePending}
}

// String renders the result the way run logs report it.
func (r *Result) String() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	if r.Created && r.Verified {
		return fmt.Sprintf("%s (%s) verified successfully with %d jobs",
			r.Input.Name, r.Feed.PublicKey, len(r.Jobs))
	}
	return fmt.Sprintf("%s logic error", r.Input.Name)
}
