package schema

import (
	"fmt"
	"strings"
)

// Issue is a single authoring defect. Index points at the offending list
// element (rule index, field index) or is -1 when the issue is not indexed.
// Path is a dotted location such as "fields[2].validationRules[0].message";
// Field holds the field key when one is known.
type Issue struct {
	Index   int    `json:"index"`
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError reports every structural defect found before acceptance.
// It blocks the triggering save, mode switch, import, or commit.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "schema: validation failed"
	}
	if len(e.Issues) == 1 {
		return "schema: validation failed: " + e.Issues[0].String()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("schema: validation failed (%d issues): %s", len(e.Issues), strings.Join(parts, "; "))
}

// IssuesFor returns the issues whose path starts with prefix.
func (e *ValidationError) IssuesFor(prefix string) []Issue {
	if e == nil {
		return nil
	}
	var out []Issue
	for _, issue := range e.Issues {
		if strings.HasPrefix(issue.Path, prefix) {
			out = append(out, issue)
		}
	}
	return out
}

// AsError returns nil when issues is empty, otherwise a *ValidationError.
func AsError(issues []Issue) error {
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

// Prefix rewrites each issue path under prefix, keeping the original index.
func Prefix(prefix string, issues []Issue) []Issue {
	if len(issues) == 0 {
		return nil
	}
	out := make([]Issue, len(issues))
	for idx, issue := range issues {
		switch {
		case issue.Path == "":
			issue.Path = prefix
		case strings.HasPrefix(issue.Path, "["):
			issue.Path = prefix + issue.Path
		default:
			issue.Path = prefix + "." + issue.Path
		}
		out[idx] = issue
	}
	return out
}
