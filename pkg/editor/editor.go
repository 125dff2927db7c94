// Package editor implements the single-row edit lock over an ordered field
// list. At most one field is open for edit; its changes live in a buffer
// until Save merges them back or Cancel discards them.
//
// An Editor is owned by one authoring session and is not safe for concurrent
// use.
package editor

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/validation"
	"github.com/goliatone/go-endpointschema/pkg/widgets"
)

// State is the editor's lock state.
type State int

const (
	Idle State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

type session struct {
	id          string
	index       int
	provisional bool
	buffer      schema.FieldDefinition
}

// Editor owns the field list of one schema for an authoring session.
type Editor struct {
	fields    []schema.FieldDefinition
	supported []schema.Mode
	registry  *widgets.Registry
	newID     func() string
	edit      *session
	drafts    int
}

// New builds an editor over a copy of fields. Fields are ordered by their
// sortOrder and renumbered densely.
func New(fields []schema.FieldDefinition, opts ...Option) *Editor {
	e := &Editor{
		fields:   schema.NormalizeOrder(schema.CloneFields(schema.Ordered(fields))),
		registry: widgets.Default(),
		newID:    defaultID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Fields returns a copy of the committed list. A provisional row appears with
// the values it had when it was added.
func (e *Editor) Fields() []schema.FieldDefinition {
	return schema.CloneFields(e.fields)
}

// Len reports the number of rows, including a provisional one.
func (e *Editor) Len() int { return len(e.fields) }

func (e *Editor) State() State {
	if e.edit != nil {
		return Editing
	}
	return Idle
}

// IsEditing reports whether a field is open for edit.
func (e *Editor) IsEditing() bool { return e.edit != nil }

// EditingID returns the id of the field open for edit.
func (e *Editor) EditingID() (string, bool) {
	if e.edit == nil {
		return "", false
	}
	return e.edit.id, true
}

// IsProvisional reports whether the field open for edit was added and not yet
// saved.
func (e *Editor) IsProvisional() bool {
	return e.edit != nil && e.edit.provisional
}

// Buffer returns a copy of the pending edit.
func (e *Editor) Buffer() (schema.FieldDefinition, bool) {
	if e.edit == nil {
		return schema.FieldDefinition{}, false
	}
	return e.edit.buffer.Clone(), true
}

// Add appends a provisional field with the default widget kind and opens it
// for edit. The provisional id is replaced by a permanent one on save.
func (e *Editor) Add() (string, error) {
	if err := e.guard("add"); err != nil {
		return "", err
	}
	e.drafts++
	field := schema.FieldDefinition{
		ID:        fmt.Sprintf("provisional-%d", e.drafts),
		Widget:    schema.DefaultWidget,
		SortOrder: len(e.fields) + 1,
	}
	e.fields = append(e.fields, field)
	e.edit = &session{
		id:          field.ID,
		index:       len(e.fields) - 1,
		provisional: true,
		buffer:      field.Clone(),
	}
	return field.ID, nil
}

// StartEdit snapshots the field into the edit buffer. It is rejected with a
// *ConcurrencyViolation while another field is open; reopening the field
// already being edited is a no-op.
func (e *Editor) StartEdit(id string) error {
	if e.edit != nil {
		if e.edit.id == id {
			return nil
		}
		return &ConcurrencyViolation{Op: "start edit", Editing: e.edit.id}
	}
	idx := e.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	e.edit = &session{id: id, index: idx, buffer: e.fields[idx].Clone()}
	return nil
}

// SetBuffer replaces the pending edit. Identity and position are kept.
func (e *Editor) SetBuffer(def schema.FieldDefinition) error {
	if e.edit == nil {
		return ErrNotEditing
	}
	buffer := def.Clone()
	buffer.ID = e.edit.id
	buffer.SortOrder = e.edit.index + 1
	e.edit.buffer = buffer
	return nil
}

// UpdateBuffer applies fn to the pending edit.
func (e *Editor) UpdateBuffer(fn func(*schema.FieldDefinition)) error {
	if e.edit == nil {
		return ErrNotEditing
	}
	if fn == nil {
		return nil
	}
	buffer := e.edit.buffer.Clone()
	fn(&buffer)
	return e.SetBuffer(buffer)
}

// Save validates the buffer and merges it back at its original index. On
// failure the editor stays in Editing and the returned *schema.ValidationError
// lists every field-level problem.
func (e *Editor) Save() error {
	if e.edit == nil {
		return ErrNotEditing
	}
	buffer := e.edit.buffer.Clone()
	buffer.Key = strings.TrimSpace(buffer.Key)
	buffer.Label = strings.TrimSpace(buffer.Label)

	issues := validation.Field(buffer, e.supported,
		validation.WithRegistry(e.registry),
		validation.WithStrictWidgets(true),
	)
	if buffer.Key != "" {
		for idx, other := range e.fields {
			if idx != e.edit.index && strings.TrimSpace(other.Key) == buffer.Key {
				issues = append(issues, schema.Issue{
					Index:   -1,
					Path:    "key",
					Field:   buffer.Key,
					Message: fmt.Sprintf("duplicate field key (first used by fields[%d])", idx),
				})
				break
			}
		}
	}
	if err := schema.AsError(issues); err != nil {
		return err
	}

	if e.edit.provisional {
		buffer.ID = e.newID()
	}
	e.fields[e.edit.index] = buffer
	schema.NormalizeOrder(e.fields)
	e.edit = nil
	return nil
}

// Cancel discards the pending edit. A provisional row is removed; any other
// row keeps its pre-edit values. Cancel while idle does nothing.
func (e *Editor) Cancel() {
	if e.edit == nil {
		return
	}
	if e.edit.provisional {
		idx := e.edit.index
		e.fields = append(e.fields[:idx], e.fields[idx+1:]...)
		schema.NormalizeOrder(e.fields)
	}
	e.edit = nil
}

// CancelEdit is the page-level cancel contract; it behaves like Cancel.
func (e *Editor) CancelEdit() { e.Cancel() }

// MoveUp swaps the row at index with its predecessor. It is a no-op at the
// top of the list, for out-of-range indexes, and while editing.
func (e *Editor) MoveUp(index int) bool {
	return e.swap(index, index-1)
}

// MoveDown swaps the row at index with its successor. It is a no-op at the
// bottom of the list, for out-of-range indexes, and while editing.
func (e *Editor) MoveDown(index int) bool {
	return e.swap(index, index+1)
}

func (e *Editor) swap(i, j int) bool {
	if e.edit != nil || i < 0 || j < 0 || i >= len(e.fields) || j >= len(e.fields) {
		return false
	}
	e.fields[i], e.fields[j] = e.fields[j], e.fields[i]
	schema.NormalizeOrder(e.fields)
	return true
}

// Delete removes the field with id. Deleting the row being edited is a
// no-op; deleting another row keeps the open edit anchored to its field.
func (e *Editor) Delete(id string) bool {
	if e.edit != nil && e.edit.id == id {
		return false
	}
	idx := e.indexOf(id)
	if idx < 0 {
		return false
	}
	e.fields = append(e.fields[:idx], e.fields[idx+1:]...)
	schema.NormalizeOrder(e.fields)
	if e.edit != nil && idx < e.edit.index {
		e.edit.index--
		e.edit.buffer.SortOrder = e.edit.index + 1
	}
	return true
}

// FlushPendingEdit returns the field list with any in-progress edit validated
// and merged. Idle editors return the list unchanged. When the buffer fails
// validation the editor stays in Editing and the validation error is
// returned, so an outstanding edit is never dropped or applied unvalidated.
func (e *Editor) FlushPendingEdit() ([]schema.FieldDefinition, error) {
	if e.edit != nil {
		if err := e.Save(); err != nil {
			return nil, err
		}
	}
	return e.Fields(), nil
}

// Reset replaces the whole list, as an import does. It is refused while
// editing.
func (e *Editor) Reset(fields []schema.FieldDefinition) error {
	if err := e.guard("replace fields"); err != nil {
		return err
	}
	e.fields = schema.NormalizeOrder(schema.CloneFields(schema.Ordered(fields)))
	return nil
}

// SupportedModes returns the modes field modes are restricted to.
func (e *Editor) SupportedModes() []schema.Mode {
	return append([]schema.Mode(nil), e.supported...)
}

// SetSupportedModes updates the mode restriction applied on save.
func (e *Editor) SetSupportedModes(modes []schema.Mode) {
	e.supported = append([]schema.Mode(nil), modes...)
}

func (e *Editor) guard(op string) error {
	if e.edit != nil {
		return &ConcurrencyViolation{Op: op, Editing: e.edit.id}
	}
	return nil
}

func (e *Editor) indexOf(id string) int {
	for idx, field := range e.fields {
		if field.ID == id {
			return idx
		}
	}
	return -1
}
