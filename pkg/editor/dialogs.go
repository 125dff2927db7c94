package editor

import (
	"fmt"

	"github.com/goliatone/go-endpointschema/pkg/rules"
	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/widgets"
)

// OpenWidgetDialog opens the property dialog for the field being edited,
// seeded from the buffer.
func (e *Editor) OpenWidgetDialog(id string) (*widgets.Dialog, error) {
	if err := e.target(id); err != nil {
		return nil, err
	}
	return e.registry.Open(e.edit.buffer), nil
}

// ApplyWidgetDialog validates the dialog and stores its canonical property
// map in the buffer. The buffer is untouched on error.
func (e *Editor) ApplyWidgetDialog(d *widgets.Dialog) error {
	if d == nil {
		return nil
	}
	if err := e.target(d.FieldID()); err != nil {
		return err
	}
	if d.Kind() != e.edit.buffer.Widget {
		return fmt.Errorf("editor: widget kind changed from %s to %s since the dialog was opened", d.Kind(), e.edit.buffer.Widget)
	}
	props, err := d.Apply()
	if err != nil {
		return err
	}
	e.edit.buffer.Properties = props
	return nil
}

// OpenRuleDialog opens the rule dialog for the field being edited.
func (e *Editor) OpenRuleDialog(id string) (*rules.Dialog, error) {
	if err := e.target(id); err != nil {
		return nil, err
	}
	return rules.Open(e.edit.buffer), nil
}

// ApplyRuleDialog accepts the dialog's rule set into the buffer.
func (e *Editor) ApplyRuleDialog(d *rules.Dialog) error {
	if d == nil {
		return nil
	}
	if err := e.target(d.FieldID()); err != nil {
		return err
	}
	accepted, err := d.Accept()
	if err != nil {
		return err
	}
	e.edit.buffer.Rules = accepted
	return nil
}

// OpenPredicateDialog opens the visibility dialog for the field being edited.
func (e *Editor) OpenPredicateDialog(id string) (*rules.PredicateDialog, error) {
	if err := e.target(id); err != nil {
		return nil, err
	}
	return rules.OpenPredicate(e.edit.buffer), nil
}

// ApplyPredicateDialog accepts the dialog's predicate into the buffer. A blank
// source clears the predicate.
func (e *Editor) ApplyPredicateDialog(d *rules.PredicateDialog) error {
	if d == nil {
		return nil
	}
	if err := e.target(d.FieldID()); err != nil {
		return err
	}
	predicate, err := d.Accept()
	if err != nil {
		return err
	}
	e.edit.buffer.Visibility = predicate
	return nil
}

// SetWidget changes the buffer's widget kind. Properties are dropped when the
// kind changes since they are interpreted per kind.
func (e *Editor) SetWidget(kind schema.WidgetKind) error {
	if e.edit == nil {
		return ErrNotEditing
	}
	if e.edit.buffer.Widget != kind {
		e.edit.buffer.Widget = kind
		e.edit.buffer.Properties = nil
	}
	return nil
}

func (e *Editor) target(id string) error {
	if e.edit == nil {
		return ErrNotEditing
	}
	if e.edit.id != id {
		return fmt.Errorf("%w: %q is being edited, not %q", ErrDialogTarget, e.edit.id, id)
	}
	return nil
}
