package editor

import (
	"github.com/google/uuid"

	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/widgets"
)

// Option configures an Editor.
type Option func(*Editor)

// WithIDGenerator overrides how permanent field ids are minted on save.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithSupportedModes restricts field modes to the endpoint type's modes.
func WithSupportedModes(modes []schema.Mode) Option {
	return func(e *Editor) {
		e.supported = append([]schema.Mode(nil), modes...)
	}
}

// WithRegistry sets the widget registry used for property dialogs and save
// checks.
func WithRegistry(reg *widgets.Registry) Option {
	return func(e *Editor) {
		if reg != nil {
			e.registry = reg
		}
	}
}

func defaultID() string {
	return uuid.NewString()
}
