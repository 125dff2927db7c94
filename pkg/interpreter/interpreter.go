// Package interpreter turns a stored schema, a mode, and live form values into
// a render tree. It holds no state between calls: hosts re-run it whenever a
// value changes, since one field can toggle another's visibility.
//
// Malformed schemas never fail a pass. Predicate failures leave the field
// visible and rule failures leave it without rules; both are logged as
// warnings and never returned.
package interpreter

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/visibility"
	"github.com/goliatone/go-endpointschema/pkg/visibility/expr"
	"github.com/goliatone/go-endpointschema/pkg/widgets"
)

// Interpreter evaluates schemas. The zero value is not usable; call New.
type Interpreter struct {
	evaluator visibility.Evaluator
	registry  *widgets.Registry
	logger    *slog.Logger
}

// New constructs an interpreter with the sandboxed predicate evaluator, the
// built-in widget table, and a discarding logger.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		evaluator: expr.New(),
		registry:  widgets.Default(),
		logger:    discardLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

var defaultInterpreter = New()

// Interpret runs the default interpreter.
func Interpret(doc schema.EndpointTypeSchema, mode schema.Mode, values schema.FormValues) Result {
	return defaultInterpreter.Interpret(doc, mode, values)
}

// Interpret filters doc's fields by mode, orders them, merges defaults into a
// copy of values, resolves visibility, compiles rules, and maps each visible
// field to a control descriptor. The retry section is appended when the
// endpoint type supports retries, regardless of mode.
func (i *Interpreter) Interpret(doc schema.EndpointTypeSchema, mode schema.Mode, values schema.FormValues) Result {
	current := values.Clone()
	if current == nil {
		current = schema.FormValues{}
	}

	kept := make([]schema.FieldDefinition, 0, len(doc.Fields))
	for _, field := range doc.Fields {
		if field.AppliesTo(mode) {
			kept = append(kept, field)
		}
	}
	kept = schema.Ordered(kept)

	for _, field := range kept {
		if field.Key == "" {
			continue
		}
		if _, present := current[field.Key]; present {
			continue
		}
		if def, ok := i.registry.DefaultValue(field.Widget, field.Properties); ok {
			current[field.Key] = def
		}
	}

	if doc.SupportsRetry {
		mergeRetryDefaults(current)
	}

	tree := Tree{Mode: mode, Fields: make([]ControlDescriptor, 0, len(kept))}
	for _, field := range kept {
		if !i.visible(field, mode, current) {
			continue
		}
		tree.Fields = append(tree.Fields, i.describe(field, mode, current))
	}

	if doc.SupportsRetry {
		tree.Retry = i.retrySection(current)
	}

	return Result{Tree: tree, Defaults: current}
}

// visible evaluates the field's predicate in isolation. Any failure, including
// a panicking custom evaluator, is logged and treated as visible.
func (i *Interpreter) visible(field schema.FieldDefinition, mode schema.Mode, values schema.FormValues) (visible bool) {
	if field.Visibility.Empty() {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			i.warn("interpreter: predicate evaluation failed", field, mode, fmt.Errorf("panic: %v", r))
			visible = true
		}
	}()

	ok, err := i.evaluator.Eval(field.Key, field.Visibility.Source, visibility.Context{Values: values})
	if err != nil {
		i.warn("interpreter: predicate evaluation failed", field, mode, err)
		return true
	}
	return ok
}

func (i *Interpreter) describe(field schema.FieldDefinition, mode schema.Mode, values schema.FormValues) ControlDescriptor {
	rules, err := CompileRules(field.Rules)
	if err != nil {
		i.warn("interpreter: validation rules dropped", field, mode, err)
		rules = nil
	}

	control := i.registry.Control(field.Widget, field.Properties)
	if control.Type == widgets.ControlUnsupported {
		i.logger.Warn("interpreter: unsupported widget kind",
			"field", field.Key, "mode", string(mode), "widget", string(field.Widget))
	}

	descriptor := ControlDescriptor{
		ID:          field.ID,
		Key:         field.Key,
		Label:       widgets.SanitizeText(field.Label),
		Description: strings.TrimSpace(field.Description),
		Widget:      field.Widget,
		Control:     control,
		Value:       values[field.Key],
		Rules:       rules,
	}
	for _, rule := range rules {
		if rule.Required {
			descriptor.Required = true
			break
		}
	}
	return descriptor
}

func (i *Interpreter) warn(msg string, field schema.FieldDefinition, mode schema.Mode, err error) {
	i.logger.Warn(msg, "field", field.Key, "mode", string(mode), "err", err)
}
