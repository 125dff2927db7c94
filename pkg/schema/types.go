package schema

// Mode partitions which fields apply when a schema configures an inbound or
// outbound endpoint instance.
type Mode string

const (
	ModeIn    Mode = "IN"
	ModeOut   Mode = "OUT"
	ModeInOut Mode = "IN_OUT"
	ModeOutIn Mode = "OUT_IN"
)

// AllModes returns every mode tag in display order.
func AllModes() []Mode {
	return []Mode{ModeIn, ModeOut, ModeInOut, ModeOutIn}
}

// IsValid reports whether the mode is one of the known tags.
func (m Mode) IsValid() bool {
	switch m {
	case ModeIn, ModeOut, ModeInOut, ModeOutIn:
		return true
	default:
		return false
	}
}

func (m Mode) String() string { return string(m) }

// WidgetKind tags the control used to enter a field value. The set is closed;
// unknown kinds may still appear in stored documents and degrade to a disabled
// placeholder at render time.
type WidgetKind string

const (
	WidgetInput       WidgetKind = "input"
	WidgetPassword    WidgetKind = "password"
	WidgetTextArea    WidgetKind = "textarea"
	WidgetNumber      WidgetKind = "number"
	WidgetSwitch      WidgetKind = "switch"
	WidgetCheckbox    WidgetKind = "checkbox"
	WidgetSelect      WidgetKind = "select"
	WidgetMultiSelect WidgetKind = "multi-select"
	WidgetRadio       WidgetKind = "radio"
	WidgetDatePicker  WidgetKind = "date-picker"
	WidgetJSONEditor  WidgetKind = "json-editor"
	WidgetKeyValue    WidgetKind = "key-value"
)

// DefaultWidget is assigned to freshly added fields.
const DefaultWidget = WidgetInput

// AllWidgetKinds returns the closed widget set.
func AllWidgetKinds() []WidgetKind {
	return []WidgetKind{
		WidgetInput,
		WidgetPassword,
		WidgetTextArea,
		WidgetNumber,
		WidgetSwitch,
		WidgetCheckbox,
		WidgetSelect,
		WidgetMultiSelect,
		WidgetRadio,
		WidgetDatePicker,
		WidgetJSONEditor,
		WidgetKeyValue,
	}
}

// IsValid reports whether the widget kind belongs to the closed set.
func (k WidgetKind) IsValid() bool {
	for _, known := range AllWidgetKinds() {
		if k == known {
			return true
		}
	}
	return false
}

func (k WidgetKind) String() string { return string(k) }

// ValidationKind is the value type a RuleSpec asserts.
type ValidationKind string

const (
	KindString  ValidationKind = "string"
	KindNumber  ValidationKind = "number"
	KindBoolean ValidationKind = "boolean"
	KindInteger ValidationKind = "integer"
	KindFloat   ValidationKind = "float"
	KindEmail   ValidationKind = "email"
	KindURL     ValidationKind = "url"
	KindDate    ValidationKind = "date"
	KindArray   ValidationKind = "array"
	KindObject  ValidationKind = "object"
	KindEnum    ValidationKind = "enum"
	KindPattern ValidationKind = "pattern"
	KindMethod  ValidationKind = "method"
	KindRegexp  ValidationKind = "regexp"
	KindHex     ValidationKind = "hex"
)

// AllValidationKinds lists every supported validation kind.
func AllValidationKinds() []ValidationKind {
	return []ValidationKind{
		KindString, KindNumber, KindBoolean, KindInteger, KindFloat,
		KindEmail, KindURL, KindDate, KindArray, KindObject,
		KindEnum, KindPattern, KindMethod, KindRegexp, KindHex,
	}
}

// IsValid reports whether the kind is known.
func (k ValidationKind) IsValid() bool {
	for _, known := range AllValidationKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Numeric reports whether min/max compare against the value itself rather
// than its length.
func (k ValidationKind) Numeric() bool {
	switch k {
	case KindNumber, KindInteger, KindFloat:
		return true
	default:
		return false
	}
}

// Status is the lifecycle state of an endpoint type.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusActive     Status = "active"
	StatusDeprecated Status = "deprecated"
)

// IsValid reports whether the status is known.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusDeprecated:
		return true
	default:
		return false
	}
}

// RuleSpec is one authored validation constraint attached to a field. Min and
// Max bound the value for numeric kinds and the length otherwise.
type RuleSpec struct {
	Required bool           `json:"required,omitempty" yaml:"required,omitempty"`
	Kind     ValidationKind `json:"type,omitempty" yaml:"type,omitempty"`
	Message  string         `json:"message" yaml:"message"`
	Min      *float64       `json:"min,omitempty" yaml:"min,omitempty"`
	Max      *float64       `json:"max,omitempty" yaml:"max,omitempty"`
	Len      *int           `json:"len,omitempty" yaml:"len,omitempty"`
	Pattern  string         `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enum     []any          `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// FieldDefinition is one field's full authoring record.
type FieldDefinition struct {
	ID          string         `json:"id" yaml:"id"`
	Key         string         `json:"key" yaml:"key"`
	Label       string         `json:"label" yaml:"label"`
	Widget      WidgetKind     `json:"widget" yaml:"widget"`
	Properties  map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	SortOrder   int            `json:"sortOrder" yaml:"sortOrder"`
	Modes       []Mode         `json:"modes,omitempty" yaml:"modes,omitempty"`
	Rules       []RuleSpec     `json:"validationRules,omitempty" yaml:"validationRules,omitempty"`
	Visibility  *Predicate     `json:"visibilityPredicate,omitempty" yaml:"visibilityPredicate,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
}

// AppliesTo reports whether the field participates in the given mode. Fields
// without modes apply everywhere.
func (f FieldDefinition) AppliesTo(mode Mode) bool {
	if len(f.Modes) == 0 {
		return true
	}
	for _, m := range f.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// EndpointTypeSchema is the authored definition of one connector type's
// configuration form.
type EndpointTypeSchema struct {
	ID             string            `json:"id" yaml:"id"`
	TypeCode       string            `json:"typeCode" yaml:"typeCode"`
	TypeName       string            `json:"typeName" yaml:"typeName"`
	Category       string            `json:"category,omitempty" yaml:"category,omitempty"`
	SupportedModes []Mode            `json:"supportedModes,omitempty" yaml:"supportedModes,omitempty"`
	SchemaVersion  string            `json:"schemaVersion,omitempty" yaml:"schemaVersion,omitempty"`
	Status         Status            `json:"status,omitempty" yaml:"status,omitempty"`
	SupportsRetry  bool              `json:"supportsRetry,omitempty" yaml:"supportsRetry,omitempty"`
	Fields         []FieldDefinition `json:"fields" yaml:"fields"`
}

// Field returns the definition with the given id.
func (s EndpointTypeSchema) Field(id string) (FieldDefinition, bool) {
	for _, field := range s.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return FieldDefinition{}, false
}

// FormValues maps field keys to the live values of a host form.
type FormValues map[string]any

// Clone returns a shallow copy; nested values are shared.
func (v FormValues) Clone() FormValues {
	out := make(FormValues, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}
