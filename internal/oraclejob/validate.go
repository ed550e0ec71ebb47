package oraclejob

import "fmt"

// Validate checks the structural guarantees the remote executor relies on:
// every task sets exactly one variant, every conditional has a non-empty
// attempt list, and the deepest reachable onFailure branch terminates in
// either a value task (guaranteed resolution) or an explicitly empty list.
func Validate(g *Graph) error {
	if g == nil {
		return fmt.Errorf("nil graph")
	}
	if len(g.Tasks) == 0 {
		return fmt.Errorf("graph %s/%s has no tasks", g.Provider, g.ExternalID)
	}
	for i, t := range g.Tasks {
		if err := validateTask(t); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
	}
	return nil
}

func validateTask(t *Task) error {
	if t == nil {
		return fmt.Errorf("nil task")
	}
	if _, err := t.Kind(); err != nil {
		return err
	}
	switch {
	case t.Max != nil:
		return validateChildren(t.Max.Tasks, "maxTask")
	case t.Min != nil:
		return validateChildren(t.Min.Tasks, "minTask")
	case t.Conditional != nil:
		if len(t.Conditional.Attempt) == 0 {
			return fmt.Errorf("conditionalTask has empty attempt list")
		}
		if err := validateChildren(t.Conditional.Attempt, "attempt"); err != nil {
			return err
		}
		if err := validateChildren(t.Conditional.OnFailure, "onFailure"); err != nil {
			return err
		}
		return validateTerminal(t.Conditional)
	}
	return nil
}

func validateChildren(tasks []*Task, where string) error {
	for i, c := range tasks {
		if err := validateTask(c); err != nil {
			return fmt.Errorf("%s[%d]: %w", where, i, err)
		}
	}
	return nil
}

// validateTerminal walks the onFailure chain to its deepest branch and
// checks it ends in a value task or is empty. An empty onFailure is the
// explicit "produce nothing" terminal.
func validateTerminal(c *ConditionalTask) error {
	if len(c.OnFailure) == 0 {
		return nil
	}
	last := c.OnFailure[len(c.OnFailure)-1]
	if last.Conditional != nil {
		return validateTerminal(last.Conditional)
	}
	if last.Value == nil {
		kind, _ := last.Kind()
		return fmt.Errorf("deepest onFailure branch ends in %s, want valueTask or empty list", kind)
	}
	return nil
}
