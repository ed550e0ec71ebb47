package oraclejob

// CascadeProbes holds the provider-specific probe pipelines for the outcome
// cascade. A probe is a task list that structurally succeeds (produces a
// numeric result) only when its condition holds against the fetched payload.
// Providers supply probes; the cascade shape itself lives in one place so the
// check order cannot drift between providers.
type CascadeProbes struct {
	// HomeWinner succeeds when the home team is marked the winner.
	HomeWinner []*Task
	// AwayWinner succeeds when the away team is marked the winner.
	AwayWinner []*Task
	// FinalNoWinner succeeds when the match is finalized, winner or not.
	// It is only consulted after both winner probes fail, because providers
	// flag a match final before they always flag a winner.
	FinalNoWinner []*Task
}

// OutcomeCascade builds the fixed match-outcome conditional:
//
//	home winner    -> 1
//	away winner    -> 2
//	final, no winner -> 0
//	otherwise      -> -1 (not yet determinable)
//
// The order is load-bearing and must not change.
func OutcomeCascade(p CascadeProbes) *Task {
	winner := NewConditional(
		append(append([]*Task{}, p.HomeWinner...), NewValue(OutcomeHomeWin)),
		append(append([]*Task{}, p.AwayWinner...), NewValue(OutcomeAwayWin)),
	)
	finalOrPending := NewConditional(
		append(append([]*Task{}, p.FinalNoWinner...), NewValue(OutcomeDraw)),
		[]*Task{NewValue(OutcomeUnresolved)},
	)
	return NewConditional(
		[]*Task{winner},
		[]*Task{finalOrPending},
	)
}
