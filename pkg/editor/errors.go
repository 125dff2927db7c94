package editor

import (
	"errors"
	"fmt"
)

var (
	// ErrEditInProgress marks operations refused because a field is open for
	// edit. It is always wrapped in a *ConcurrencyViolation.
	ErrEditInProgress = errors.New("editor: edit in progress")
	// ErrNotEditing is returned by buffer and dialog operations while idle.
	ErrNotEditing = errors.New("editor: no field is being edited")
	// ErrUnknownField is returned when an id does not match any row.
	ErrUnknownField = errors.New("editor: unknown field")
	// ErrDialogTarget is returned when a dialog belongs to a different field
	// than the one being edited.
	ErrDialogTarget = errors.New("editor: dialog targets a different field")
)

// ConcurrencyViolation reports an attempt to start a second edit, or to act
// on the list while an edit is outstanding. It is a notice for the author, not
// a fault: the editor state is unchanged.
type ConcurrencyViolation struct {
	Op      string
	Editing string
}

func (e *ConcurrencyViolation) Error() string {
	return "finish editing first"
}

// Detail describes the rejected operation for logs.
func (e *ConcurrencyViolation) Detail() string {
	return fmt.Sprintf("editor: %s rejected while field %q is being edited", e.Op, e.Editing)
}

func (e *ConcurrencyViolation) Unwrap() error { return ErrEditInProgress }
