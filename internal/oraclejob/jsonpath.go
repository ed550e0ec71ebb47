package oraclejob

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// The job paths the compilers emit only use a narrow JSONPath subset:
// root access, dotted field navigation, and `[?(...)]` filters whose
// predicate is a conjunction of truthy checks and equality comparisons
// against literals or other fields of the same element. This file
// implements exactly that subset over decoded JSON values.

type pathSegment struct {
	field  string
	filter *pathFilter
}

type pathFilter struct {
	terms []filterTerm
}

type filterTerm struct {
	left  string // @-relative path, e.g. "status.type.completed"
	op    string // "" (truthy) or "=="
	right filterOperand
}

type filterOperand struct {
	path   string // set when comparing against another field
	str    string
	num    float64
	isStr  bool
	isNum  bool
	isPath bool
}

func parsePath(path string) ([]pathSegment, error) {
	s := strings.TrimSpace(path)
	if !strings.HasPrefix(s, "$") {
		return nil, fmt.Errorf("path must start with $: %q", path)
	}
	s = s[1:]

	var segments []pathSegment
	for len(s) > 0 {
		switch s[0] {
		case '.':
			s = s[1:]
			end := 0
			for end < len(s) && s[end] != '.' && s[end] != '[' {
				end++
			}
			if end == 0 {
				return nil, fmt.Errorf("empty field in path %q", path)
			}
			segments = append(segments, pathSegment{field: s[:end]})
			s = s[end:]
		case '[':
			close := findFilterEnd(s)
			if close < 0 {
				return nil, fmt.Errorf("unterminated filter in path %q", path)
			}
			inner := s[1:close]
			if !strings.HasPrefix(inner, "?(") || !strings.HasSuffix(inner, ")") {
				return nil, fmt.Errorf("unsupported subscript %q in path %q", inner, path)
			}
			f, err := parseFilter(inner[2 : len(inner)-1])
			if err != nil {
				return nil, fmt.Errorf("path %q: %w", path, err)
			}
			segments = append(segments, pathSegment{filter: f})
			s = s[close+1:]
		default:
			return nil, fmt.Errorf("unexpected character %q in path %q", s[0], path)
		}
	}
	return segments, nil
}

// findFilterEnd returns the index of the ']' closing the subscript opened at
// s[0], skipping over quoted strings.
func findFilterEnd(s string) int {
	inQuote := false
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\'':
			inQuote = !inQuote
		case ']':
			if !inQuote {
				return i
			}
		}
	}
	return -1
}

func parseFilter(expr string) (*pathFilter, error) {
	f := &pathFilter{}
	for _, raw := range strings.Split(expr, "&&") {
		term := strings.TrimSpace(raw)
		if term == "" {
			return nil, fmt.Errorf("empty filter term in %q", expr)
		}
		if idx := strings.Index(term, "=="); idx >= 0 {
			left, err := atField(term[:idx])
			if err != nil {
				return nil, err
			}
			right, err := parseOperand(strings.TrimSpace(term[idx+2:]))
			if err != nil {
				return nil, err
			}
			f.terms = append(f.terms, filterTerm{left: left, op: "==", right: right})
			continue
		}
		left, err := atField(term)
		if err != nil {
			return nil, err
		}
		f.terms = append(f.terms, filterTerm{left: left})
	}
	return f, nil
}

func atField(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "@.") {
		return "", fmt.Errorf("filter operand must start with @.: %q", s)
	}
	return s[2:], nil
}

func parseOperand(s string) (filterOperand, error) {
	switch {
	case strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") && len(s) >= 2:
		return filterOperand{str: s[1 : len(s)-1], isStr: true}, nil
	case strings.HasPrefix(s, "@."):
		return filterOperand{path: s[2:], isPath: true}, nil
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return filterOperand{}, fmt.Errorf("unsupported filter operand %q", s)
		}
		return filterOperand{num: n, isNum: true}, nil
	}
}

// queryPath evaluates a parsed path against a decoded JSON value and returns
// the matching leaves. Filters narrow arrays element-wise and treat a plain
// object as a single-element candidate set.
func queryPath(root interface{}, segments []pathSegment) []interface{} {
	current := []interface{}{root}
	for _, seg := range segments {
		var next []interface{}
		for _, v := range current {
			if seg.filter != nil {
				switch vv := v.(type) {
				case []interface{}:
					for _, el := range vv {
						if seg.filter.matches(el) {
							next = append(next, el)
						}
					}
				case map[string]interface{}:
					// A collection keyed by ID filters over its values
					// when none of its own fields satisfy the predicate.
					if seg.filter.matches(vv) {
						next = append(next, vv)
						continue
					}
					for _, key := range sortedKeys(vv) {
						if el := vv[key]; seg.filter.matches(el) {
							next = append(next, el)
						}
					}
				default:
					if seg.filter.matches(v) {
						next = append(next, v)
					}
				}
				continue
			}
			// Field access; a list fans out over its elements.
			switch vv := v.(type) {
			case map[string]interface{}:
				if child, ok := vv[seg.field]; ok {
					next = append(next, child)
				}
			case []interface{}:
				for _, el := range vv {
					if m, ok := el.(map[string]interface{}); ok {
						if child, ok := m[seg.field]; ok {
							next = append(next, child)
						}
					}
				}
			}
		}
		current = next
		if len(current) == 0 {
			return nil
		}
	}
	return current
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f *pathFilter) matches(v interface{}) bool {
	for _, term := range f.terms {
		left, ok := lookupDotted(v, term.left)
		if !ok {
			return false
		}
		if term.op == "" {
			if !truthy(left) {
				return false
			}
			continue
		}
		switch {
		case term.right.isStr:
			s, ok := left.(string)
			if !ok || s != term.right.str {
				return false
			}
		case term.right.isNum:
			n, ok := asNumber(left)
			if !ok || n != term.right.num {
				return false
			}
		case term.right.isPath:
			right, ok := lookupDotted(v, term.right.path)
			if !ok || !looseEqual(left, right) {
				return false
			}
		}
	}
	return true
}

func lookupDotted(v interface{}, dotted string) (interface{}, bool) {
	current := v
	for _, part := range strings.Split(dotted, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func truthy(v interface{}) bool {
	switch vv := v.(type) {
	case nil:
		return false
	case bool:
		return vv
	case float64:
		return vv != 0
	case string:
		return vv != ""
	default:
		return true
	}
}

func looseEqual(a, b interface{}) bool {
	if an, ok := asNumber(a); ok {
		if bn, ok := asNumber(b); ok {
			return an == bn
		}
	}
	return a == b
}

// asNumber converts JSON numbers and numeric strings; providers frequently
// serve numeric fields as strings (e.g. attendance).
func asNumber(v interface{}) (float64, bool) {
	switch vv := v.(type) {
	case float64:
		return vv, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(vv), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
