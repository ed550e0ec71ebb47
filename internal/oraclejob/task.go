package oraclejob

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Outcome codes produced by every compiled match-result graph. These four
// values are the only legal final outputs of a cascade.
const (
	OutcomeHomeWin    = 1
	OutcomeAwayWin    = 2
	OutcomeDraw       = 0
	OutcomeUnresolved = -1
)

// Graph is an ordered sequence of root tasks compiled for one provider match.
// The remote oracle network executes the tasks in order, threading each task's
// output into the next, and publishes the final numeric result.
type Graph struct {
	Provider   string  `json:"provider"`
	ExternalID string  `json:"id"`
	Tasks      []*Task `json:"tasks"`
}

// Task is a tagged variant: exactly one of the pointer fields is set.
// Field names follow the OracleJob wire format so a marshalled graph can be
// attached to a feed as-is.
type Task struct {
	HTTP         *HTTPTask         `json:"httpTask,omitempty"`
	RegexExtract *RegexExtractTask `json:"regexExtractTask,omitempty"`
	JSONParse    *JSONParseTask    `json:"jsonParseTask,omitempty"`
	Value        *ValueTask        `json:"valueTask,omitempty"`
	Max          *AggregateTask    `json:"maxTask,omitempty"`
	Min          *AggregateTask    `json:"minTask,omitempty"`
	Conditional  *ConditionalTask  `json:"conditionalTask,omitempty"`
}

// HTTPTask fetches the raw match resource (HTML or JSON).
type HTTPTask struct {
	URL string `json:"url"`
}

// RegexExtractTask pulls one capture group out of the current payload,
// typically an embedded JSON blob inside an HTML page.
type RegexExtractTask struct {
	Pattern     string `json:"pattern"`
	GroupNumber int    `json:"groupNumber"`
}

// JSONParseTask queries the current payload with a JSONPath expression and
// must yield a numeric result. A non-numeric or empty result is a task
// failure, which a surrounding conditional treats as fallthrough.
type JSONParseTask struct {
	Path string `json:"path"`
}

// ValueTask resolves to a literal number.
type ValueTask struct {
	Value float64 `json:"value"`
}

// AggregateKind selects how an aggregate combines its children.
type AggregateKind string

const (
	AggregateMax AggregateKind = "max"
	AggregateMin AggregateKind = "min"
)

// AggregateTask runs each child task against the current payload and keeps
// the max (or min) of their numeric results.
type AggregateTask struct {
	Tasks []*Task `json:"tasks"`
}

// ConditionalTask tries the attempt tasks and falls back to the onFailure
// tasks when any attempt task fails to produce output.
type ConditionalTask struct {
	Attempt   []*Task `json:"attempt"`
	OnFailure []*Task `json:"onFailure"`
}

// NewHTTP builds an http fetch task.
func NewHTTP(url string) *Task {
	return &Task{HTTP: &HTTPTask{URL: url}}
}

// NewRegexExtract builds a regex extraction task.
func NewRegexExtract(pattern string, group int) *Task {
	return &Task{RegexExtract: &RegexExtractTask{Pattern: pattern, GroupNumber: group}}
}

// NewJSONParse builds a JSONPath query task.
func NewJSONParse(path string) *Task {
	return &Task{JSONParse: &JSONParseTask{Path: path}}
}

// NewValue builds a literal value task.
func NewValue(value float64) *Task {
	return &Task{Value: &ValueTask{Value: value}}
}

// NewAggregate builds a max or min aggregation over child tasks.
func NewAggregate(kind AggregateKind, tasks ...*Task) *Task {
	agg := &AggregateTask{Tasks: tasks}
	if kind == AggregateMin {
		return &Task{Min: agg}
	}
	return &Task{Max: agg}
}

// NewConditional builds a conditional task.
func NewConditional(attempt, onFailure []*Task) *Task {
	return &Task{Conditional: &ConditionalTask{Attempt: attempt, OnFailure: onFailure}}
}

// Kind reports which variant is set, or an error when the task is malformed.
func (t *Task) Kind() (string, error) {
	var kinds []string
	if t.HTTP != nil {
		kinds = append(kinds, "httpTask")
	}
	if t.RegexExtract != nil {
		kinds = append(kinds, "regexExtractTask")
	}
	if t.JSONParse != nil {
		kinds = append(kinds, "jsonParseTask")
	}
	if t.Value != nil {
		kinds = append(kinds, "valueTask")
	}
	if t.Max != nil {
		kinds = append(kinds, "maxTask")
	}
	if t.Min != nil {
		kinds = append(kinds, "minTask")
	}
	if t.Conditional != nil {
		kinds = append(kinds, "conditionalTask")
	}
	if len(kinds) != 1 {
		return "", fmt.Errorf("task must set exactly one variant, has %d", len(kinds))
	}
	return kinds[0], nil
}

// Equal reports whether two graphs are structurally identical.
func (g *Graph) Equal(other *Graph) bool {
	return reflect.DeepEqual(g, other)
}

// MarshalIndent renders the graph as indented JSON for report artifacts.
func (g *Graph) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}
