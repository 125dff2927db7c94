package schema

import (
	"regexp"
	"strconv"
	"strings"
)

// Check runs the static RuleSpec invariants. Issue paths are relative to the
// rule ("message", "min", ...).
func (r RuleSpec) Check() []Issue {
	var issues []Issue
	add := func(path, message string) {
		issues = append(issues, Issue{Index: -1, Path: path, Message: message})
	}

	if strings.TrimSpace(r.Message) == "" {
		add("message", "message is required")
	}
	if r.Kind != "" && !r.Kind.IsValid() {
		add("type", "unknown validation type "+strconv.Quote(string(r.Kind)))
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		add("min", "min must be less than or equal to max")
	}
	if !r.Kind.Numeric() {
		if r.Min != nil && *r.Min < 0 {
			add("min", "length bound must not be negative")
		}
		if r.Max != nil && *r.Max < 0 {
			add("max", "length bound must not be negative")
		}
	}
	if r.Len != nil && *r.Len < 0 {
		add("len", "len must not be negative")
	}
	if r.Pattern != "" {
		if _, err := regexp.Compile(r.Pattern); err != nil {
			add("pattern", "pattern does not compile: "+err.Error())
		}
	}
	if r.Kind == KindPattern && r.Pattern == "" {
		add("pattern", "pattern type requires a pattern")
	}
	if r.Kind == KindEnum && len(r.Enum) == 0 {
		add("enum", "enum type requires at least one value")
	}
	return issues
}

// Empty reports whether the rule asserts nothing besides its message.
func (r RuleSpec) Empty() bool {
	return !r.Required && r.Kind == "" && r.Min == nil && r.Max == nil &&
		r.Len == nil && r.Pattern == "" && len(r.Enum) == 0
}

func itoa(v int) string { return strconv.Itoa(v) }
