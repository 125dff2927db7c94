package interpreter

import (
	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/widgets"
)

// SectionRetry names the retry-policy section.
const SectionRetry = "retry"

// ControlDescriptor is everything the host rendering layer needs to render one
// control and report its value back.
type ControlDescriptor struct {
	ID          string            `json:"id,omitempty"`
	Key         string            `json:"key"`
	Label       string            `json:"label"`
	Description string            `json:"description,omitempty"`
	Widget      schema.WidgetKind `json:"widget"`
	Control     widgets.Control   `json:"control"`
	Value       any               `json:"value,omitempty"`
	Required    bool              `json:"required,omitempty"`
	Rules       []Rule            `json:"rules,omitempty"`
	Section     string            `json:"section,omitempty"`
}

// RetrySection is the fixed retry-policy block appended when an endpoint type
// supports retries.
type RetrySection struct {
	Title  string              `json:"title"`
	Fields []ControlDescriptor `json:"fields"`
}

// Tree is the ordered, mode-filtered, visibility-resolved render tree.
type Tree struct {
	Mode   schema.Mode         `json:"mode"`
	Fields []ControlDescriptor `json:"fields"`
	Retry  *RetrySection       `json:"retry,omitempty"`
}

// Controls returns the main fields followed by the retry fields.
func (t Tree) Controls() []ControlDescriptor {
	out := append([]ControlDescriptor(nil), t.Fields...)
	if t.Retry != nil {
		out = append(out, t.Retry.Fields...)
	}
	return out
}

// Keys lists the keys of every control in render order.
func (t Tree) Keys() []string {
	controls := t.Controls()
	keys := make([]string, 0, len(controls))
	for _, c := range controls {
		keys = append(keys, c.Key)
	}
	return keys
}

// Result is one interpreter pass.
type Result struct {
	Tree Tree `json:"tree"`
	// Defaults holds the input values with every kept field's default merged
	// in where a value was absent.
	Defaults schema.FormValues `json:"defaults"`
}

// VisibleCount reports how many controls the tree renders, including the retry
// section.
func (r Result) VisibleCount() int {
	return len(r.Tree.Controls())
}
