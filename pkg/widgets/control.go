package widgets

import (
	"fmt"

	"github.com/goliatone/go-endpointschema/pkg/schema"
)

// Control types understood by the host rendering layer.
const (
	ControlTextInput     = "text-input"
	ControlPasswordInput = "password-input"
	ControlTextArea      = "textarea"
	ControlNumberInput   = "number-input"
	ControlSwitch        = "switch"
	ControlCheckbox      = "checkbox"
	ControlSelect        = "select"
	ControlRadioGroup    = "radio-group"
	ControlDatePicker    = "date-picker"
	ControlJSONEditor    = "json-editor"
	ControlKeyValue      = "key-value-list"
	ControlUnsupported   = "unsupported"
)

// Control is the descriptor handed to the host rendering layer. It never
// renders anything itself.
type Control struct {
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Options    []Option       `json:"options,omitempty"`
	Multiple   bool           `json:"multiple,omitempty"`
	Disabled   bool           `json:"disabled,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
}

// Unsupported returns the disabled placeholder used for unknown widget kinds.
func Unsupported(kind schema.WidgetKind) Control {
	return Control{
		Type:     ControlUnsupported,
		Disabled: true,
		Reason:   fmt.Sprintf("unsupported widget kind %q", string(kind)),
	}
}

func inputControl(p Props) Control {
	props := p.(InputProps)
	return Control{Type: ControlTextInput, Attributes: attributes(props.Map())}
}

func passwordControl(p Props) Control {
	props := p.(PasswordProps)
	return Control{Type: ControlPasswordInput, Attributes: attributes(props.Map())}
}

func textAreaControl(p Props) Control {
	props := p.(TextAreaProps)
	attrs := attributes(props.Map())
	attrs[PropRows] = props.Rows
	return Control{Type: ControlTextArea, Attributes: attrs}
}

func numberControl(p Props) Control {
	props := p.(NumberProps)
	attrs := attributes(props.Map())
	attrs[PropStep] = props.Step
	return Control{Type: ControlNumberInput, Attributes: attrs}
}

func switchControl(p Props) Control {
	return Control{Type: ControlSwitch, Attributes: attributes(p.Map())}
}

func checkboxControl(p Props) Control {
	return Control{Type: ControlCheckbox, Attributes: attributes(p.Map())}
}

func choiceControl(p Props) Control {
	props := p.(ChoiceProps)
	attrs := attributes(props.Map())
	delete(attrs, PropOptions)
	controlType := ControlSelect
	if props.Kind() == schema.WidgetRadio {
		controlType = ControlRadioGroup
	}
	return Control{
		Type:       controlType,
		Attributes: attrs,
		Options:    append([]Option(nil), props.Options...),
		Multiple:   props.Multiple(),
	}
}

func datePickerControl(p Props) Control {
	props := p.(DatePickerProps)
	attrs := attributes(props.Map())
	attrs[PropGrain] = props.Grain
	return Control{Type: ControlDatePicker, Attributes: attrs}
}

func jsonEditorControl(p Props) Control {
	return Control{Type: ControlJSONEditor, Attributes: attributes(p.Map())}
}

func keyValueControl(p Props) Control {
	return Control{Type: ControlKeyValue, Attributes: attributes(p.Map())}
}

// attributes drops the default value; the host receives it through form values.
func attributes(m map[string]any) map[string]any {
	delete(m, PropDefault)
	return m
}
