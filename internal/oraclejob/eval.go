package oraclejob

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// Fetcher retrieves a raw resource for an http task. The remote oracle
// network does its own fetching; this one exists so graphs can be dry-run
// locally before a feed is provisioned, and so tests can replay captured
// payloads.
type Fetcher func(ctx context.Context, url string) ([]byte, error)

// Evaluate runs a graph against the given fetcher and returns the numeric
// result the remote executor would publish. Task failures inside a
// conditional trigger its onFailure branch; a failure with no fallback
// surfaces as an error.
func Evaluate(ctx context.Context, g *Graph, fetch Fetcher) (float64, error) {
	if err := Validate(g); err != nil {
		return 0, err
	}
	out, err := runTasks(ctx, g.Tasks, "", fetch)
	if err != nil {
		return 0, err
	}
	n, ok := asNumber(out)
	if !ok {
		return 0, fmt.Errorf("graph %s/%s produced non-numeric result %v", g.Provider, g.ExternalID, out)
	}
	return n, nil
}

// runTasks threads the running value through a task pipeline.
func runTasks(ctx context.Context, tasks []*Task, input interface{}, fetch Fetcher) (interface{}, error) {
	current := input
	for _, t := range tasks {
		next, err := runTask(ctx, t, current, fetch)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func runTask(ctx context.Context, t *Task, input interface{}, fetch Fetcher) (interface{}, error) {
	switch {
	case t.HTTP != nil:
		if fetch == nil {
			return nil, fmt.Errorf("httpTask %s: no fetcher configured", t.HTTP.URL)
		}
		body, err := fetch(ctx, t.HTTP.URL)
		if err != nil {
			return nil, fmt.Errorf("httpTask %s: %w", t.HTTP.URL, err)
		}
		return string(body), nil

	case t.RegexExtract != nil:
		s, ok := input.(string)
		if !ok {
			return nil, fmt.Errorf("regexExtractTask needs string input, got %T", input)
		}
		re, err := regexp.Compile(t.RegexExtract.Pattern)
		if err != nil {
			return nil, fmt.Errorf("regexExtractTask: %w", err)
		}
		groups := re.FindStringSubmatch(s)
		if len(groups) <= t.RegexExtract.GroupNumber {
			return nil, fmt.Errorf("regexExtractTask: pattern %q did not match group %d", t.RegexExtract.Pattern, t.RegexExtract.GroupNumber)
		}
		return groups[t.RegexExtract.GroupNumber], nil

	case t.JSONParse != nil:
		return runJSONParse(t.JSONParse, input)

	case t.Value != nil:
		return t.Value.Value, nil

	case t.Max != nil:
		return runAggregate(ctx, t.Max.Tasks, input, fetch, true)

	case t.Min != nil:
		return runAggregate(ctx, t.Min.Tasks, input, fetch, false)

	case t.Conditional != nil:
		out, err := runTasks(ctx, t.Conditional.Attempt, input, fetch)
		if err == nil {
			return out, nil
		}
		if len(t.Conditional.OnFailure) == 0 {
			return nil, fmt.Errorf("conditionalTask: attempt failed with no fallback: %w", err)
		}
		return runTasks(ctx, t.Conditional.OnFailure, input, fetch)
	}
	return nil, fmt.Errorf("task has no variant set")
}

// runJSONParse queries the payload and requires a numeric (or
// numeric-convertible) result. Empty and non-numeric results are failures,
// which is what lets winner probes double as structural condition checks.
func runJSONParse(task *JSONParseTask, input interface{}) (interface{}, error) {
	var doc interface{}
	switch in := input.(type) {
	case string:
		if err := json.Unmarshal([]byte(in), &doc); err != nil {
			return nil, fmt.Errorf("jsonParseTask %s: decoding payload: %w", task.Path, err)
		}
	case nil:
		return nil, fmt.Errorf("jsonParseTask %s: no input", task.Path)
	default:
		doc = in
	}

	segments, err := parsePath(task.Path)
	if err != nil {
		return nil, fmt.Errorf("jsonParseTask: %w", err)
	}
	results := queryPath(doc, segments)
	if len(results) == 0 {
		return nil, fmt.Errorf("jsonParseTask %s: no match", task.Path)
	}
	n, ok := asNumber(results[0])
	if !ok {
		return nil, fmt.Errorf("jsonParseTask %s: non-numeric result %v", task.Path, results[0])
	}
	return n, nil
}

func runAggregate(ctx context.Context, tasks []*Task, input interface{}, fetch Fetcher, max bool) (interface{}, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("aggregate task has no children")
	}
	var best float64
	for i, child := range tasks {
		out, err := runTask(ctx, child, input, fetch)
		if err != nil {
			return nil, fmt.Errorf("aggregate child %d: %w", i, err)
		}
		n, ok := asNumber(out)
		if !ok {
			return nil, fmt.Errorf("aggregate child %d: non-numeric result %v", i, out)
		}
		if i == 0 || (max && n > best) || (!max && n < best) {
			best = n
		}
	}
	return best, nil
}
