package factory

import "fmt"

// State is where a feed sits in the provisioning lifecycle. Transitions are
// linear; Failed is reachable from any state. The explicit tag makes
// illegal combinations ("verified but never created") unrepresentable.
type State string

const (
	StatePending      State = "pending"
	StateJobsCompiled State = "jobs_compiled"
	StateCreated      State = "created"
	StateJobsAttached State = "jobs_attached"
	StateConfigured   State = "configured"
	StateVerified     State = "verified"
	StateFailed       State = "failed"
)

// next holds the only legal forward transition from each state.
var next = map[State]State{
	StatePending:      StateJobsCompiled,
	StateJobsCompiled: StateCreated,
	StateCreated:      StateJobsAttached,
	StateJobsAttached: StateConfigured,
	StateConfigured:   StateVerified,
}

// advance moves the result to the given state, enforcing the lifecycle.
func (r *Result) advance(to State) error {
	if r.State == StateFailed || r.State == StateVerified {
		return fmt.Errorf("feed %s: cannot leave terminal state %s", r.Input.Name, r.State)
	}
	if to == StateFailed {
		r.State = StateFailed
		return nil
	}
	if next[r.State] != to {
		return fmt.Errorf("feed %s: illegal transition %s -> %s", r.Input.Name, r.State, to)
	}
	r.State = to
	return nil
}

// fail marks the result failed with a classified error.
func (r *Result) fail(err *Error) {
	r.State = StateFailed
	r.Err = err
}
