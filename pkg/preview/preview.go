// Package preview shows how a schema renders in each of its supported modes.
// A Host is transient: it works on a snapshot and never writes back.
package preview

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/goliatone/go-endpointschema/pkg/codec"
	"github.com/goliatone/go-endpointschema/pkg/interpreter"
	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/widgets"
)

// ErrModeNotSupported reports a mode the previewed schema does not list.
var ErrModeNotSupported = errors.New("preview: mode not supported by schema")

// View is one mode's rendering.
type View struct {
	Mode         schema.Mode         `json:"mode"`
	VisibleCount int                 `json:"visibleCount"`
	Tree         interpreter.Tree    `json:"tree"`
	Values       schema.FormValues   `json:"values"`
	Errors       map[string][]string `json:"errors,omitempty"`
}

// Host drives the interpreter once per supported mode.
type Host struct {
	doc         schema.EndpointTypeSchema
	interpreter *interpreter.Interpreter
	modes       []schema.Mode
	initial     schema.FormValues
	values      map[schema.Mode]schema.FormValues
}

// Option customises a Host.
type Option func(*Host)

// WithInterpreter replaces the default interpreter.
func WithInterpreter(i *interpreter.Interpreter) Option {
	return func(h *Host) {
		if i != nil {
			h.interpreter = i
		}
	}
}

// WithValues seeds every mode with values.
func WithValues(values schema.FormValues) Option {
	return func(h *Host) {
		h.initial = values.Clone()
	}
}

// WithModes restricts the preview to modes. Modes the schema does not list are
// previewed anyway, the way a host would render a misconfigured instance.
func WithModes(modes ...schema.Mode) Option {
	return func(h *Host) {
		if len(modes) > 0 {
			h.modes = append([]schema.Mode(nil), modes...)
		}
	}
}

// New snapshots doc. A schema without supported modes previews every mode.
func New(doc schema.EndpointTypeSchema, opts ...Option) *Host {
	h := &Host{
		doc:         doc.Clone(),
		interpreter: interpreter.New(),
		modes:       append([]schema.Mode(nil), doc.SupportedModes...),
		values:      make(map[schema.Mode]schema.FormValues),
	}
	if len(h.modes) == 0 {
		h.modes = schema.AllModes()
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	for _, mode := range h.modes {
		h.values[mode] = h.initial.Clone()
		if h.values[mode] == nil {
			h.values[mode] = schema.FormValues{}
		}
	}
	return h
}

// Modes lists the previewed modes in schema order.
func (h *Host) Modes() []schema.Mode {
	return append([]schema.Mode(nil), h.modes...)
}

// Views renders every mode.
func (h *Host) Views() []View {
	out := make([]View, 0, len(h.modes))
	for _, mode := range h.modes {
		out = append(out, h.render(mode))
	}
	return out
}

// View renders one mode.
func (h *Host) View(mode schema.Mode) (View, error) {
	if _, ok := h.values[mode]; !ok {
		return View{}, fmt.Errorf("%w: %s", ErrModeNotSupported, mode)
	}
	return h.render(mode), nil
}

// SetValue records a host form change for mode and re-renders that view, so
// predicates depending on key are re-evaluated. A nil value clears the key.
func (h *Host) SetValue(mode schema.Mode, key string, value any) (View, error) {
	values, ok := h.values[mode]
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrModeNotSupported, mode)
	}
	if value == nil {
		delete(values, key)
	} else {
		values[key] = value
	}
	return h.render(mode), nil
}

// Raw serializes the previewed schema exactly as export would.
func (h *Host) Raw(format codec.Format) ([]byte, error) {
	return codec.Export(h.doc, format)
}

func (h *Host) render(mode schema.Mode) View {
	result := h.interpreter.Interpret(h.doc, mode, h.values[mode])
	return View{
		Mode:         mode,
		VisibleCount: result.VisibleCount(),
		Tree:         result.Tree,
		Values:       result.Defaults,
		Errors:       interpreter.Validate(result.Tree, result.Defaults),
	}
}

// WriteJSON writes every view as an indented JSON array.
func (h *Host) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(h.Views()); err != nil {
		return fmt.Errorf("preview: encode: %w", err)
	}
	return nil
}

// WriteText writes a heading and a table per mode.
func (h *Host) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s (%s) v%s\n", h.doc.TypeName, h.doc.TypeCode, versionOrDash(h.doc.SchemaVersion)); err != nil {
		return err
	}
	for _, view := range h.Views() {
		if _, err := fmt.Fprintf(w, "\nMode %s: %d visible\n", view.Mode, view.VisibleCount); err != nil {
			return err
		}
		tw := tablewriter.NewWriter(w)
		tw.SetHeader([]string{"Key", "Label", "Control", "Value", "Required", "Errors"})
		tw.SetAutoWrapText(false)
		for _, control := range view.Tree.Controls() {
			label := control.Label
			if control.Section != "" {
				label = control.Section + ": " + label
			}
			tw.Append([]string{
				control.Key,
				label,
				control.Control.Type,
				displayValue(control),
				fmt.Sprint(control.Required),
				strings.Join(view.Errors[control.Key], "; "),
			})
		}
		tw.Render()
	}
	return nil
}

func displayValue(control interpreter.ControlDescriptor) string {
	if control.Value == nil {
		return ""
	}
	if control.Control.Type == widgets.ControlPasswordInput {
		return "********"
	}
	switch v := control.Value.(type) {
	case string:
		return v
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v[k]))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

func versionOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
