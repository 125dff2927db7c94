package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-endpointschema/pkg/visibility/expr"
)

// PredicateKind distinguishes Expression from Function sources.
type PredicateKind = expr.Kind

const (
	PredicateExpression = expr.KindExpression
	PredicateFunction   = expr.KindFunction
)

// Predicate is a field's visibility condition. It serializes as plain source
// text; the kind is re-detected whenever the source is decoded.
type Predicate struct {
	Kind   PredicateKind
	Source string
}

// NewPredicate classifies source and returns nil for blank input.
func NewPredicate(source string) *Predicate {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil
	}
	return &Predicate{Kind: expr.Classify(trimmed), Source: trimmed}
}

// Empty reports whether the predicate carries no source.
func (p *Predicate) Empty() bool {
	return p == nil || strings.TrimSpace(p.Source) == ""
}

func (p Predicate) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Source)
}

func (p *Predicate) UnmarshalJSON(data []byte) error {
	var source string
	if err := json.Unmarshal(data, &source); err != nil {
		return fmt.Errorf("schema: predicate must be source text: %w", err)
	}
	p.set(source)
	return nil
}

func (p Predicate) MarshalYAML() (any, error) {
	return p.Source, nil
}

func (p *Predicate) UnmarshalYAML(node *yaml.Node) error {
	var source string
	if err := node.Decode(&source); err != nil {
		return fmt.Errorf("schema: predicate must be source text: %w", err)
	}
	p.set(source)
	return nil
}

func (p *Predicate) set(source string) {
	p.Source = strings.TrimSpace(source)
	p.Kind = expr.Classify(p.Source)
}
