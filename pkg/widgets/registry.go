package widgets

import (
	"sort"
	"sync"

	"github.com/goliatone/go-endpointschema/pkg/schema"
)

// PropertyType describes how an authoring subform should collect a property.
type PropertyType string

const (
	PropertyText    PropertyType = "text"
	PropertyNumber  PropertyType = "number"
	PropertyInteger PropertyType = "integer"
	PropertyBool    PropertyType = "bool"
	PropertyChoice  PropertyType = "choice"
	PropertyOptions PropertyType = "options"
	PropertyMap     PropertyType = "map"
	PropertyJSON    PropertyType = "json"
)

// PropertyField is one row of a widget kind's authoring subform.
type PropertyField struct {
	Key     string
	Label   string
	Type    PropertyType
	Choices []string
	Help    string
}

// Spec is one arm of the widget dispatch table.
type Spec struct {
	Kind   schema.WidgetKind
	Label  string
	Fields []PropertyField

	narrow  func(b *bag) Props
	control func(Props) Control
}

// Result is the outcome of configuring one widget kind.
type Result struct {
	Kind      schema.WidgetKind
	Supported bool
	Props     Props
	Issues    []schema.Issue
}

// Err returns the issues as a *schema.ValidationError, or nil. Unsupported
// kinds carry no issues and therefore no error.
func (r Result) Err() error {
	return schema.AsError(r.Issues)
}

// Registry is the finite widget dispatch table keyed by WidgetKind. Kinds that
// are not registered resolve to the unsupported arm. The table is fixed at
// construction.
type Registry struct {
	mu    sync.RWMutex
	specs map[schema.WidgetKind]Spec
	order []schema.WidgetKind
}

// NewRegistry constructs a registry with every built-in widget kind.
func NewRegistry() *Registry {
	reg := &Registry{specs: make(map[schema.WidgetKind]Spec)}
	reg.registerBuiltins()
	return reg
}

var defaultRegistry = NewRegistry()

// Default returns the shared built-in registry.
func Default() *Registry { return defaultRegistry }

func (r *Registry) register(spec Spec) {
	kind := spec.Kind
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.specs[kind]; !exists {
		r.order = append(r.order, kind)
	}
	r.specs[kind] = spec
}

// Lookup returns the spec registered for kind.
func (r *Registry) Lookup(kind schema.WidgetKind) (Spec, bool) {
	if r == nil {
		return Spec{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[kind]
	return spec, ok
}

// Kinds lists registered kinds in registration order.
func (r *Registry) Kinds() []schema.WidgetKind {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]schema.WidgetKind(nil), r.order...)
}

// Configure narrows props for kind and validates them. Every defect is
// reported at once; paths are relative to the properties map.
func (r *Registry) Configure(kind schema.WidgetKind, props map[string]any) Result {
	spec, ok := r.Lookup(kind)
	if !ok {
		return Result{Kind: kind}
	}
	b := newBag(props)
	typed := spec.narrow(b)
	b.unknown()
	sortIssues(b.issues)
	return Result{Kind: kind, Supported: true, Props: typed, Issues: b.issues}
}

// Control maps kind and props to a control descriptor. Unknown kinds degrade to
// a disabled placeholder; property defects travel as warnings on an otherwise
// usable control.
func (r *Registry) Control(kind schema.WidgetKind, props map[string]any) Control {
	spec, ok := r.Lookup(kind)
	if !ok {
		return Unsupported(kind)
	}
	b := newBag(props)
	typed := spec.narrow(b)
	control := spec.control(typed)
	if len(b.issues) > 0 {
		control.Warnings = make([]string, 0, len(b.issues))
		for _, issue := range b.issues {
			control.Warnings = append(control.Warnings, issue.String())
		}
	}
	return control
}

// DefaultValue reports the default value the kind contributes for props. Props
// that fail to narrow contribute whatever was recoverable.
func (r *Registry) DefaultValue(kind schema.WidgetKind, props map[string]any) (any, bool) {
	spec, ok := r.Lookup(kind)
	if !ok {
		return nil, false
	}
	return spec.narrow(newBag(props)).DefaultValue()
}

// Configure runs the default registry.
func Configure(kind schema.WidgetKind, props map[string]any) Result {
	return defaultRegistry.Configure(kind, props)
}

func sortIssues(issues []schema.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Path < issues[j].Path
	})
}

func (r *Registry) registerBuiltins() {
	placeholder := PropertyField{Key: PropPlaceholder, Label: "Placeholder", Type: PropertyText}
	maxLength := PropertyField{Key: PropMaxLength, Label: "Max length", Type: PropertyInteger}
	allowClear := PropertyField{Key: PropAllowClear, Label: "Allow clear", Type: PropertyBool}
	options := PropertyField{Key: PropOptions, Label: "Options", Type: PropertyOptions, Help: "label=value, one per line"}

	r.register(Spec{
		Kind:  schema.WidgetInput,
		Label: "Text input",
		Fields: []PropertyField{
			placeholder, maxLength, allowClear,
			{Key: PropDefault, Label: "Default value", Type: PropertyText},
		},
		narrow:  narrowInput,
		control: inputControl,
	})
	r.register(Spec{
		Kind:    schema.WidgetPassword,
		Label:   "Password",
		Fields:  []PropertyField{placeholder, maxLength},
		narrow:  narrowPassword,
		control: passwordControl,
	})
	r.register(Spec{
		Kind:  schema.WidgetTextArea,
		Label: "Text area",
		Fields: []PropertyField{
			placeholder,
			{Key: PropRows, Label: "Rows", Type: PropertyInteger},
			maxLength,
			{Key: PropDefault, Label: "Default value", Type: PropertyText},
		},
		narrow:  narrowTextArea,
		control: textAreaControl,
	})
	r.register(Spec{
		Kind:  schema.WidgetNumber,
		Label: "Number",
		Fields: []PropertyField{
			placeholder,
			{Key: PropMin, Label: "Minimum", Type: PropertyNumber},
			{Key: PropMax, Label: "Maximum", Type: PropertyNumber},
			{Key: PropStep, Label: "Step", Type: PropertyNumber, Help: "greater than zero"},
			{Key: PropPrecision, Label: "Precision", Type: PropertyInteger},
			{Key: PropDefault, Label: "Default value", Type: PropertyNumber},
		},
		narrow:  narrowNumber,
		control: numberControl,
	})
	r.register(Spec{
		Kind:  schema.WidgetSwitch,
		Label: "Switch",
		Fields: []PropertyField{
			{Key: PropCheckedLabel, Label: "Checked label", Type: PropertyText},
			{Key: PropUncheckedLabel, Label: "Unchecked label", Type: PropertyText},
			{Key: PropDefault, Label: "On by default", Type: PropertyBool},
		},
		narrow:  narrowSwitch,
		control: switchControl,
	})
	r.register(Spec{
		Kind:  schema.WidgetCheckbox,
		Label: "Checkbox",
		Fields: []PropertyField{
			{Key: PropText, Label: "Text", Type: PropertyText},
			{Key: PropDefault, Label: "Checked by default", Type: PropertyBool},
		},
		narrow:  narrowCheckbox,
		control: checkboxControl,
	})
	for _, kind := range []schema.WidgetKind{schema.WidgetSelect, schema.WidgetMultiSelect, schema.WidgetRadio} {
		fields := []PropertyField{options}
		if kind != schema.WidgetRadio {
			fields = append(fields, placeholder, allowClear)
		}
		fields = append(fields, PropertyField{Key: PropDefault, Label: "Default option", Type: PropertyText})
		r.register(Spec{
			Kind:    kind,
			Label:   choiceLabel(kind),
			Fields:  fields,
			narrow:  narrowChoice(kind),
			control: choiceControl,
		})
	}
	r.register(Spec{
		Kind:  schema.WidgetDatePicker,
		Label: "Date picker",
		Fields: []PropertyField{
			{Key: PropGrain, Label: "Grain", Type: PropertyChoice, Choices: Grains()},
			{Key: PropFormat, Label: "Display format", Type: PropertyText},
			{Key: PropShowTime, Label: "Show time", Type: PropertyBool},
			placeholder,
			{Key: PropDefault, Label: "Default value", Type: PropertyText},
		},
		narrow:  narrowDatePicker,
		control: datePickerControl,
	})
	r.register(Spec{
		Kind:  schema.WidgetJSONEditor,
		Label: "JSON editor",
		Fields: []PropertyField{
			{Key: PropHeight, Label: "Height", Type: PropertyInteger},
			{Key: PropDefault, Label: "Default document", Type: PropertyJSON},
		},
		narrow:  narrowJSONEditor,
		control: jsonEditorControl,
	})
	r.register(Spec{
		Kind:  schema.WidgetKeyValue,
		Label: "Key/value list",
		Fields: []PropertyField{
			{Key: PropKeyPlaceholder, Label: "Key placeholder", Type: PropertyText},
			{Key: PropValuePlaceholder, Label: "Value placeholder", Type: PropertyText},
			{Key: PropDefault, Label: "Default entries", Type: PropertyMap},
		},
		narrow:  narrowKeyValue,
		control: keyValueControl,
	})
}

func choiceLabel(kind schema.WidgetKind) string {
	switch kind {
	case schema.WidgetMultiSelect:
		return "Multi-select"
	case schema.WidgetRadio:
		return "Radio group"
	default:
		return "Select"
	}
}
