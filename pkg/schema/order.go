package schema

import (
	"regexp"
	"sort"
	"strings"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidKey reports whether key matches the identifier grammar.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// NormalizeOrder rewrites SortOrder to the dense sequence 1..n following the
// slice order. The slice is modified in place and returned for chaining.
func NormalizeOrder(fields []FieldDefinition) []FieldDefinition {
	for idx := range fields {
		fields[idx].SortOrder = idx + 1
	}
	return fields
}

// Ordered returns a copy sorted by SortOrder ascending; ties keep their input
// order.
func Ordered(fields []FieldDefinition) []FieldDefinition {
	out := append([]FieldDefinition(nil), fields...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

// OrderIssues reports fields whose SortOrder breaks the dense 1..n sequence
// in slice order.
func OrderIssues(fields []FieldDefinition) []Issue {
	var issues []Issue
	for idx, field := range fields {
		if field.SortOrder != idx+1 {
			issues = append(issues, Issue{
				Index:   idx,
				Path:    fieldPath(idx, "sortOrder"),
				Field:   field.Key,
				Message: "sort order must be a dense sequence starting at 1",
			})
		}
	}
	return issues
}

// KeyIssues reports blank, malformed, and duplicate field keys.
func KeyIssues(fields []FieldDefinition) []Issue {
	var issues []Issue
	seen := make(map[string]int, len(fields))
	for idx, field := range fields {
		key := strings.TrimSpace(field.Key)
		switch {
		case key == "":
			issues = append(issues, Issue{Index: idx, Path: fieldPath(idx, "key"), Message: "field key is required"})
			continue
		case !ValidKey(key):
			issues = append(issues, Issue{Index: idx, Path: fieldPath(idx, "key"), Field: key, Message: "field key must start with a letter or underscore and contain only letters, digits, and underscores"})
		}
		if first, ok := seen[key]; ok {
			issues = append(issues, Issue{
				Index:   idx,
				Path:    fieldPath(idx, "key"),
				Field:   key,
				Message: "duplicate field key (first used by fields[" + itoa(first) + "])",
			})
			continue
		}
		seen[key] = idx
	}
	return issues
}

func fieldPath(idx int, prop string) string {
	return "fields[" + itoa(idx) + "]." + prop
}
