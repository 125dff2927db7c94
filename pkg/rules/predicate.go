package rules

import (
	"strings"

	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/visibility/expr"
)

// PredicateIssues statically checks a visibility predicate. The predicate is
// compiled, never run. Issue paths are empty so callers can Prefix them.
func PredicateIssues(p *schema.Predicate) []schema.Issue {
	if p.Empty() {
		return nil
	}
	if err := expr.Check(p.Source); err != nil {
		return []schema.Issue{{Index: -1, Message: err.Error()}}
	}
	return nil
}

// PredicateDialog edits the visibility predicate of one field.
type PredicateDialog struct {
	fieldID string
	source  string
}

// OpenPredicate starts a dialog seeded with field's current predicate.
func OpenPredicate(field schema.FieldDefinition) *PredicateDialog {
	d := &PredicateDialog{fieldID: field.ID}
	if field.Visibility != nil {
		d.source = field.Visibility.Source
	}
	return d
}

func (d *PredicateDialog) FieldID() string { return d.fieldID }

func (d *PredicateDialog) Source() string { return d.source }

func (d *PredicateDialog) SetSource(source string) { d.source = source }

// Kind reports how the pending source is classified.
func (d *PredicateDialog) Kind() schema.PredicateKind {
	return expr.Classify(d.source)
}

// Check reports static defects in the pending source.
func (d *PredicateDialog) Check() []schema.Issue {
	return schema.Prefix("visibilityPredicate", PredicateIssues(schema.NewPredicate(d.source)))
}

// Accept returns the checked predicate, or nil when the source is blank.
func (d *PredicateDialog) Accept() (*schema.Predicate, error) {
	if strings.TrimSpace(d.source) == "" {
		return nil, nil
	}
	if err := schema.AsError(d.Check()); err != nil {
		return nil, err
	}
	return schema.NewPredicate(d.source), nil
}
