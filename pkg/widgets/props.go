package widgets

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-endpointschema/pkg/schema"
)

// Property keys shared across widget kinds.
const (
	PropPlaceholder      = "placeholder"
	PropMaxLength        = "maxLength"
	PropDefault          = "defaultValue"
	PropAllowClear       = "allowClear"
	PropRows             = "rows"
	PropMin              = "min"
	PropMax              = "max"
	PropStep             = "step"
	PropPrecision        = "precision"
	PropCheckedLabel     = "checkedLabel"
	PropUncheckedLabel   = "uncheckedLabel"
	PropText             = "text"
	PropOptions          = "options"
	PropGrain            = "grain"
	PropFormat           = "format"
	PropShowTime         = "showTime"
	PropHeight           = "height"
	PropKeyPlaceholder   = "keyPlaceholder"
	PropValuePlaceholder = "valuePlaceholder"
)

// Date picker grains.
const (
	GrainDate    = "date"
	GrainWeek    = "week"
	GrainMonth   = "month"
	GrainQuarter = "quarter"
	GrainYear    = "year"
)

// Grains lists the accepted date picker grains.
func Grains() []string {
	return []string{GrainDate, GrainWeek, GrainMonth, GrainQuarter, GrainYear}
}

// Option is one entry of a select, multi-select, or radio option list.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Props is the typed property record a widget kind narrows its raw map into.
type Props interface {
	Kind() schema.WidgetKind
	// Map returns the canonical persisted form. Zero values are omitted.
	Map() map[string]any
	// DefaultValue reports the value merged into form values when absent.
	DefaultValue() (any, bool)
}

type InputProps struct {
	Placeholder string
	MaxLength   *int
	AllowClear  bool
	Default     string
}

func (InputProps) Kind() schema.WidgetKind { return schema.WidgetInput }

func (p InputProps) Map() map[string]any {
	out := map[string]any{}
	putText(out, PropPlaceholder, p.Placeholder)
	putInt(out, PropMaxLength, p.MaxLength)
	putBool(out, PropAllowClear, p.AllowClear)
	putText(out, PropDefault, p.Default)
	return out
}

func (p InputProps) DefaultValue() (any, bool) { return p.Default, p.Default != "" }

type PasswordProps struct {
	Placeholder string
	MaxLength   *int
}

func (PasswordProps) Kind() schema.WidgetKind { return schema.WidgetPassword }

func (p PasswordProps) Map() map[string]any {
	out := map[string]any{}
	putText(out, PropPlaceholder, p.Placeholder)
	putInt(out, PropMaxLength, p.MaxLength)
	return out
}

// DefaultValue is never set for secrets.
func (PasswordProps) DefaultValue() (any, bool) { return nil, false }

type TextAreaProps struct {
	Placeholder string
	Rows        int
	MaxLength   *int
	Default     string
}

// DefaultRows is used when a textarea does not configure its height.
const DefaultRows = 4

func (TextAreaProps) Kind() schema.WidgetKind { return schema.WidgetTextArea }

func (p TextAreaProps) Map() map[string]any {
	out := map[string]any{}
	putText(out, PropPlaceholder, p.Placeholder)
	if p.Rows != 0 && p.Rows != DefaultRows {
		out[PropRows] = p.Rows
	}
	putInt(out, PropMaxLength, p.MaxLength)
	putText(out, PropDefault, p.Default)
	return out
}

func (p TextAreaProps) DefaultValue() (any, bool) { return p.Default, p.Default != "" }

type NumberProps struct {
	Placeholder string
	Min         *float64
	Max         *float64
	Step        float64
	Precision   *int
	Default     *float64
}

func (NumberProps) Kind() schema.WidgetKind { return schema.WidgetNumber }

func (p NumberProps) Map() map[string]any {
	out := map[string]any{}
	putText(out, PropPlaceholder, p.Placeholder)
	putFloat(out, PropMin, p.Min)
	putFloat(out, PropMax, p.Max)
	if p.Step != 0 && p.Step != 1 {
		out[PropStep] = p.Step
	}
	putInt(out, PropPrecision, p.Precision)
	putFloat(out, PropDefault, p.Default)
	return out
}

func (p NumberProps) DefaultValue() (any, bool) {
	if p.Default == nil {
		return nil, false
	}
	return *p.Default, true
}

type SwitchProps struct {
	CheckedLabel   string
	UncheckedLabel string
	Default        bool
}

func (SwitchProps) Kind() schema.WidgetKind { return schema.WidgetSwitch }

func (p SwitchProps) Map() map[string]any {
	out := map[string]any{}
	putText(out, PropCheckedLabel, p.CheckedLabel)
	putText(out, PropUncheckedLabel, p.UncheckedLabel)
	putBool(out, PropDefault, p.Default)
	return out
}

// DefaultValue always reports a value so the host never sees an unset toggle.
func (p SwitchProps) DefaultValue() (any, bool) { return p.Default, true }

type CheckboxProps struct {
	Text    string
	Default bool
}

func (CheckboxProps) Kind() schema.WidgetKind { return schema.WidgetCheckbox }

func (p CheckboxProps) Map() map[string]any {
	out := map[string]any{}
	putText(out, PropText, p.Text)
	putBool(out, PropDefault, p.Default)
	return out
}

func (p CheckboxProps) DefaultValue() (any, bool) { return p.Default, true }

// ChoiceProps backs select, multi-select, and radio widgets.
type ChoiceProps struct {
	kind        schema.WidgetKind
	Options     []Option
	Placeholder string
	AllowClear  bool
	// Default holds one option value, or several for multi-select.
	Default []string
}

func (p ChoiceProps) Kind() schema.WidgetKind { return p.kind }

// Multiple reports whether more than one option may be chosen.
func (p ChoiceProps) Multiple() bool { return p.kind == schema.WidgetMultiSelect }

func (p ChoiceProps) Map() map[string]any {
	out := map[string]any{}
	if len(p.Options) > 0 {
		options := make([]any, 0, len(p.Options))
		for _, opt := range p.Options {
			options = append(options, map[string]any{"label": opt.Label, "value": opt.Value})
		}
		out[PropOptions] = options
	}
	putText(out, PropPlaceholder, p.Placeholder)
	putBool(out, PropAllowClear, p.AllowClear)
	switch {
	case len(p.Default) == 0:
	case p.Multiple():
		values := make([]any, 0, len(p.Default))
		for _, v := range p.Default {
			values = append(values, v)
		}
		out[PropDefault] = values
	default:
		out[PropDefault] = p.Default[0]
	}
	return out
}

func (p ChoiceProps) DefaultValue() (any, bool) {
	if len(p.Default) == 0 {
		return nil, false
	}
	if p.Multiple() {
		values := make([]any, 0, len(p.Default))
		for _, v := range p.Default {
			values = append(values, v)
		}
		return values, true
	}
	return p.Default[0], true
}

type DatePickerProps struct {
	Grain       string
	Format      string
	ShowTime    bool
	Placeholder string
	Default     string
}

func (DatePickerProps) Kind() schema.WidgetKind { return schema.WidgetDatePicker }

func (p DatePickerProps) Map() map[string]any {
	out := map[string]any{}
	if p.Grain != "" && p.Grain != GrainDate {
		out[PropGrain] = p.Grain
	}
	putText(out, PropFormat, p.Format)
	putBool(out, PropShowTime, p.ShowTime)
	putText(out, PropPlaceholder, p.Placeholder)
	putText(out, PropDefault, p.Default)
	return out
}

func (p DatePickerProps) DefaultValue() (any, bool) { return p.Default, p.Default != "" }

type JSONEditorProps struct {
	Height  int
	Default string
}

func (JSONEditorProps) Kind() schema.WidgetKind { return schema.WidgetJSONEditor }

func (p JSONEditorProps) Map() map[string]any {
	out := map[string]any{}
	if p.Height > 0 {
		out[PropHeight] = p.Height
	}
	putText(out, PropDefault, p.Default)
	return out
}

func (p JSONEditorProps) DefaultValue() (any, bool) { return p.Default, p.Default != "" }

type KeyValueProps struct {
	KeyPlaceholder   string
	ValuePlaceholder string
	Default          map[string]string
}

func (KeyValueProps) Kind() schema.WidgetKind { return schema.WidgetKeyValue }

func (p KeyValueProps) Map() map[string]any {
	out := map[string]any{}
	putText(out, PropKeyPlaceholder, p.KeyPlaceholder)
	putText(out, PropValuePlaceholder, p.ValuePlaceholder)
	if len(p.Default) > 0 {
		values := make(map[string]any, len(p.Default))
		for k, v := range p.Default {
			values[k] = v
		}
		out[PropDefault] = values
	}
	return out
}

func (p KeyValueProps) DefaultValue() (any, bool) {
	if len(p.Default) == 0 {
		return nil, false
	}
	values := make(map[string]any, len(p.Default))
	for k, v := range p.Default {
		values[k] = v
	}
	return values, true
}

func narrowInput(b *bag) Props {
	p := InputProps{
		Placeholder: b.text(PropPlaceholder),
		MaxLength:   b.integer(PropMaxLength),
		AllowClear:  b.boolean(PropAllowClear),
		Default:     b.plain(PropDefault),
	}
	checkMaxLength(b, p.MaxLength, p.Default)
	return p
}

func narrowPassword(b *bag) Props {
	p := PasswordProps{
		Placeholder: b.text(PropPlaceholder),
		MaxLength:   b.integer(PropMaxLength),
	}
	if _, ok := b.lookup(PropDefault); ok {
		b.fail(PropDefault, "password fields cannot carry a default value")
	}
	checkMaxLength(b, p.MaxLength, "")
	return p
}

func narrowTextArea(b *bag) Props {
	p := TextAreaProps{
		Placeholder: b.text(PropPlaceholder),
		Rows:        DefaultRows,
		MaxLength:   b.integer(PropMaxLength),
		Default:     b.plain(PropDefault),
	}
	if rows := b.integer(PropRows); rows != nil {
		if *rows <= 0 {
			b.fail(PropRows, "must be greater than zero")
		} else {
			p.Rows = *rows
		}
	}
	checkMaxLength(b, p.MaxLength, p.Default)
	return p
}

func narrowNumber(b *bag) Props {
	p := NumberProps{
		Placeholder: b.text(PropPlaceholder),
		Min:         b.number(PropMin),
		Max:         b.number(PropMax),
		Step:        1,
		Precision:   b.integer(PropPrecision),
		Default:     b.number(PropDefault),
	}
	if step := b.number(PropStep); step != nil {
		if *step <= 0 {
			b.fail(PropStep, "must be greater than zero")
		} else {
			p.Step = *step
		}
	}
	if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
		b.fail(PropMin, "min must be less than or equal to max")
	}
	if p.Precision != nil && (*p.Precision < 0 || *p.Precision > 10) {
		b.fail(PropPrecision, "must be between 0 and 10")
	}
	if p.Default != nil {
		if p.Min != nil && *p.Default < *p.Min {
			b.fail(PropDefault, "default is below min")
		}
		if p.Max != nil && *p.Default > *p.Max {
			b.fail(PropDefault, "default is above max")
		}
	}
	return p
}

func narrowSwitch(b *bag) Props {
	return SwitchProps{
		CheckedLabel:   b.text(PropCheckedLabel),
		UncheckedLabel: b.text(PropUncheckedLabel),
		Default:        b.boolean(PropDefault),
	}
}

func narrowCheckbox(b *bag) Props {
	return CheckboxProps{
		Text:    b.text(PropText),
		Default: b.boolean(PropDefault),
	}
}

func narrowChoice(kind schema.WidgetKind) func(b *bag) Props {
	return func(b *bag) Props {
		p := ChoiceProps{
			kind:        kind,
			Options:     b.options(PropOptions),
			Placeholder: b.text(PropPlaceholder),
			AllowClear:  b.boolean(PropAllowClear),
		}
		if len(p.Options) == 0 {
			b.fail(PropOptions, "at least one option is required")
		}
		checkOptions(b, p.Options)
		p.Default = choiceDefault(b, p)
		return p
	}
}

func choiceDefault(b *bag, p ChoiceProps) []string {
	raw, ok := b.lookup(PropDefault)
	if !ok {
		return nil
	}
	var values []string
	switch typed := raw.(type) {
	case []any:
		if !p.Multiple() {
			b.fail(PropDefault, "must be a single option value")
			return nil
		}
		for _, item := range typed {
			values = append(values, optionValue(item))
		}
	case []string:
		if !p.Multiple() {
			b.fail(PropDefault, "must be a single option value")
			return nil
		}
		values = append(values, typed...)
	default:
		value := optionValue(typed)
		if value == "" {
			return nil
		}
		values = []string{value}
	}

	known := make(map[string]struct{}, len(p.Options))
	for _, opt := range p.Options {
		known[opt.Value] = struct{}{}
	}
	for _, value := range values {
		if _, ok := known[value]; !ok {
			b.fail(PropDefault, fmt.Sprintf("default %q is not one of the options", value))
		}
	}
	return values
}

func checkOptions(b *bag, options []Option) {
	labels := make(map[string]int, len(options))
	values := make(map[string]int, len(options))
	for idx, opt := range options {
		path := fmt.Sprintf("%s[%d]", PropOptions, idx)
		if opt.Label == "" {
			b.fail(path+".label", "label is required")
		} else if first, dup := labels[opt.Label]; dup {
			b.fail(path+".label", fmt.Sprintf("duplicate option label (first used by %s[%d])", PropOptions, first))
		} else {
			labels[opt.Label] = idx
		}
		if opt.Value == "" {
			b.fail(path+".value", "value is required")
		} else if first, dup := values[opt.Value]; dup {
			b.fail(path+".value", fmt.Sprintf("duplicate option value (first used by %s[%d])", PropOptions, first))
		} else {
			values[opt.Value] = idx
		}
	}
}

func narrowDatePicker(b *bag) Props {
	p := DatePickerProps{
		Grain:       GrainDate,
		Format:      b.plain(PropFormat),
		ShowTime:    b.boolean(PropShowTime),
		Placeholder: b.text(PropPlaceholder),
		Default:     b.plain(PropDefault),
	}
	if grain := strings.ToLower(b.plain(PropGrain)); grain != "" {
		valid := false
		for _, known := range Grains() {
			if grain == known {
				valid = true
				break
			}
		}
		if !valid {
			b.fail(PropGrain, fmt.Sprintf("must be one of %s", strings.Join(Grains(), ", ")))
		} else {
			p.Grain = grain
		}
	}
	if p.ShowTime && p.Grain != GrainDate {
		b.fail(PropShowTime, "time selection requires the date grain")
	}
	return p
}

func narrowJSONEditor(b *bag) Props {
	p := JSONEditorProps{}
	if height := b.integer(PropHeight); height != nil {
		if *height <= 0 {
			b.fail(PropHeight, "must be greater than zero")
		} else {
			p.Height = *height
		}
	}
	if raw, ok := b.lookup(PropDefault); ok {
		switch typed := raw.(type) {
		case string:
			if strings.TrimSpace(typed) != "" && !json.Valid([]byte(typed)) {
				b.fail(PropDefault, "default must be valid JSON")
			}
			p.Default = strings.TrimSpace(typed)
		default:
			encoded, err := json.Marshal(typed)
			if err != nil {
				b.fail(PropDefault, "default must be valid JSON")
			}
			p.Default = string(encoded)
		}
	}
	return p
}

func narrowKeyValue(b *bag) Props {
	p := KeyValueProps{
		KeyPlaceholder:   b.text(PropKeyPlaceholder),
		ValuePlaceholder: b.text(PropValuePlaceholder),
		Default:          b.stringMap(PropDefault),
	}
	keys := make([]string, 0, len(p.Default))
	for k := range p.Default {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			b.fail(PropDefault, "default entries need a non-empty key")
		}
	}
	return p
}

func checkMaxLength(b *bag, maxLength *int, def string) {
	if maxLength == nil {
		return
	}
	if *maxLength <= 0 {
		b.fail(PropMaxLength, "must be greater than zero")
		return
	}
	if len([]rune(def)) > *maxLength {
		b.fail(PropDefault, "default is longer than maxLength")
	}
}

func putText(out map[string]any, key, value string) {
	if value != "" {
		out[key] = value
	}
}

func putBool(out map[string]any, key string, value bool) {
	if value {
		out[key] = true
	}
}

func putInt(out map[string]any, key string, value *int) {
	if value != nil {
		out[key] = *value
	}
}

func putFloat(out map[string]any, key string, value *float64) {
	if value != nil {
		out[key] = *value
	}
}
