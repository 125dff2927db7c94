// Package rules authors validation-rule sets and visibility predicates for a
// single field. Everything here is static: rules are checked structurally and
// predicates are compiled, never executed.
package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-endpointschema/pkg/schema"
)

// ErrParse marks serialized rule text that does not decode into a rule list.
var ErrParse = errors.New("rules: invalid rule text")

// Validate runs the static checks on every rule and reports one issue per
// defect, indexed by rule position ("rules[1].message").
func Validate(rules []schema.RuleSpec) []schema.Issue {
	var issues []schema.Issue
	for idx, rule := range rules {
		for _, issue := range schema.Prefix(fmt.Sprintf("rules[%d]", idx), rule.Check()) {
			issue.Index = idx
			issues = append(issues, issue)
		}
	}
	return issues
}

// Serialize renders rules in the canonical text form: an indented JSON array.
func Serialize(rules []schema.RuleSpec) (string, error) {
	if len(rules) == 0 {
		return "[]", nil
	}
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return "", fmt.Errorf("rules: serialize: %w", err)
	}
	return string(data), nil
}

// Parse decodes the canonical text form. Blank text is an empty rule set;
// unknown keys and trailing content are rejected.
func Parse(text string) ([]schema.RuleSpec, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	dec.DisallowUnknownFields()
	var rules []schema.RuleSpec
	if err := dec.Decode(&rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected content after the rule list", ErrParse)
	}
	return rules, nil
}

// DefaultMessage suggests an author-facing message for a new rule of kind.
func DefaultMessage(kind schema.ValidationKind, required bool) string {
	if required && kind == "" {
		return "This field is required"
	}
	switch kind {
	case schema.KindEmail:
		return "Enter a valid email address"
	case schema.KindURL:
		return "Enter a valid URL"
	case schema.KindNumber, schema.KindFloat:
		return "Enter a number"
	case schema.KindInteger:
		return "Enter a whole number"
	case schema.KindBoolean:
		return "Choose true or false"
	case schema.KindDate:
		return "Enter a valid date"
	case schema.KindEnum:
		return "Choose one of the allowed values"
	case schema.KindPattern, schema.KindRegexp:
		return "Value does not match the expected format"
	case schema.KindHex:
		return "Enter a hexadecimal value"
	case schema.KindMethod:
		return "Enter a valid HTTP method"
	case schema.KindArray:
		return "Enter a list"
	case schema.KindObject:
		return "Enter an object"
	default:
		return "Invalid value"
	}
}
