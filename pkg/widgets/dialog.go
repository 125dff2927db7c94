package widgets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-endpointschema/pkg/schema"
)

// ErrUnsupportedKind is returned when a dialog is applied for a widget kind the
// registry does not know.
var ErrUnsupportedKind = errors.New("widgets: unsupported widget kind")

// Dialog is a transient property editor for one field. It copies the field's
// properties on open and only hands back a validated canonical map on Apply.
type Dialog struct {
	registry *Registry
	fieldID  string
	kind     schema.WidgetKind
	values   map[string]any
}

// Open starts a dialog for field using the default registry.
func Open(field schema.FieldDefinition) *Dialog {
	return defaultRegistry.Open(field)
}

// Open starts a dialog for field.
func (r *Registry) Open(field schema.FieldDefinition) *Dialog {
	values := schema.CloneProperties(field.Properties)
	if values == nil {
		values = map[string]any{}
	}
	return &Dialog{registry: r, fieldID: field.ID, kind: field.Widget, values: values}
}

// FieldID identifies the field the dialog was opened for.
func (d *Dialog) FieldID() string { return d.fieldID }

func (d *Dialog) Kind() schema.WidgetKind { return d.kind }

// Supported reports whether the registry has an arm for the dialog's kind.
func (d *Dialog) Supported() bool {
	_, ok := d.registry.Lookup(d.kind)
	return ok
}

// Fields lists the subform rows for the dialog's kind.
func (d *Dialog) Fields() []PropertyField {
	spec, ok := d.registry.Lookup(d.kind)
	if !ok {
		return nil
	}
	return append([]PropertyField(nil), spec.Fields...)
}

func (d *Dialog) Value(key string) (any, bool) {
	value, ok := d.values[key]
	return value, ok
}

// Values returns a copy of the pending property map.
func (d *Dialog) Values() map[string]any {
	return schema.CloneProperties(d.values)
}

// Set stages a property value. Nil and blank strings clear the property.
func (d *Dialog) Set(key string, value any) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	if value == nil {
		delete(d.values, key)
		return
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		delete(d.values, key)
		return
	}
	d.values[key] = value
}

// SetText parses text according to the subform row for key and stages the
// result. It is the entry point for line-oriented front ends.
func (d *Dialog) SetText(key, text string) error {
	field, ok := d.field(key)
	if !ok {
		return fmt.Errorf("widgets: %s has no property %q", d.kind, key)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		d.Set(key, nil)
		return nil
	}

	switch field.Type {
	case PropertyNumber:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("widgets: %s must be a number", key)
		}
		d.Set(key, n)
	case PropertyInteger:
		n, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("widgets: %s must be a whole number", key)
		}
		d.Set(key, n)
	case PropertyBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return fmt.Errorf("widgets: %s must be true or false", key)
		}
		d.Set(key, b)
	case PropertyOptions:
		d.Set(key, parseOptionLines(text))
	case PropertyMap:
		entries, err := parsePairs(text)
		if err != nil {
			return fmt.Errorf("widgets: %s: %w", key, err)
		}
		d.Set(key, entries)
	default:
		d.Set(key, text)
	}
	return nil
}

// Check validates the pending values without closing the dialog.
func (d *Dialog) Check() Result {
	return d.registry.Configure(d.kind, d.values)
}

// Apply validates the pending values and returns the canonical property map.
func (d *Dialog) Apply() (map[string]any, error) {
	result := d.Check()
	if !result.Supported {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, string(d.kind))
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return result.Props.Map(), nil
}

func (d *Dialog) field(key string) (PropertyField, bool) {
	for _, field := range d.Fields() {
		if field.Key == key {
			return field, true
		}
	}
	return PropertyField{}, false
}

// parseOptionLines reads "label=value" lines. A line without "=" uses the
// same text for both.
func parseOptionLines(text string) []any {
	var options []any
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label, value, found := strings.Cut(line, "=")
		if !found {
			value = label
		}
		options = append(options, map[string]any{
			"label": strings.TrimSpace(label),
			"value": strings.TrimSpace(value),
		})
	}
	return options
}

func parsePairs(text string) (map[string]any, error) {
	out := map[string]any{}
	for idx, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("line %d: expected key=value", idx+1)
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out, nil
}
