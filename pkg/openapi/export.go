package openapi

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/iancoleman/strcase"

	"github.com/goliatone/go-endpointschema/pkg/interpreter"
	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/widgets"
)

// Extension keys written on exported properties and honoured when seeding.
const (
	ExtWidget     = "x-widget"
	ExtVisibility = "x-visibility"
	ExtSortOrder  = "x-sort-order"
	ExtSection    = "x-section"
)

// Version is the OpenAPI version emitted by Document.
const Version = "3.0.3"

// ComponentName names the component for one mode, e.g. "HttpWebhookInOut".
func ComponentName(doc schema.EndpointTypeSchema, mode schema.Mode) string {
	base := strcase.ToCamel(doc.TypeCode)
	if base == "" {
		base = "EndpointType"
	}
	return base + strcase.ToCamel(string(mode))
}

// ComponentSchema describes the configuration payload of an instance in
// mode. Every field applying to the mode is present; conditionally visible
// fields are never listed as required and carry their predicate as an
// extension.
func ComponentSchema(doc schema.EndpointTypeSchema, mode schema.Mode) *openapi3.Schema {
	out := openapi3.NewObjectSchema()
	out.Title = fmt.Sprintf("%s (%s)", doc.TypeName, mode)
	out.Extensions = map[string]any{"x-type-code": doc.TypeCode, "x-mode": string(mode)}

	var required []string
	add := func(field schema.FieldDefinition, section string) {
		if strings.TrimSpace(field.Key) == "" {
			return
		}
		prop := propertySchema(field)
		if section != "" {
			prop.Extensions[ExtSection] = section
		}
		out.WithProperty(field.Key, prop)
		if field.Visibility.Empty() && isRequired(field.Rules) {
			required = append(required, field.Key)
		}
	}

	for _, field := range schema.Ordered(doc.Fields) {
		if field.AppliesTo(mode) {
			add(field, "")
		}
	}
	if doc.SupportsRetry {
		for _, field := range interpreter.RetryDefinitions() {
			add(field, interpreter.SectionRetry)
		}
	}
	if len(required) > 0 {
		out.Required = required
	}
	return out
}

// Document builds an OpenAPI document with one component per supported
// mode. A schema without supported modes exports every mode.
func Document(doc schema.EndpointTypeSchema) *openapi3.T {
	version := doc.SchemaVersion
	if strings.TrimSpace(version) == "" {
		version = "0.0.0"
	}
	modes := doc.SupportedModes
	if len(modes) == 0 {
		modes = schema.AllModes()
	}

	components := openapi3.NewComponents()
	components.Schemas = make(openapi3.Schemas, len(modes))
	for _, mode := range modes {
		components.Schemas[ComponentName(doc, mode)] = openapi3.NewSchemaRef("", ComponentSchema(doc, mode))
	}

	return &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:       doc.TypeName,
			Description: fmt.Sprintf("Configuration payloads for the %s endpoint type.", doc.TypeCode),
			Version:     version,
		},
		Paths:      openapi3.NewPaths(),
		Components: &components,
	}
}

// Marshal encodes Document(doc) as indented JSON.
func Marshal(doc schema.EndpointTypeSchema) ([]byte, error) {
	data, err := json.MarshalIndent(Document(doc), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: encode: %w", err)
	}
	return append(data, '\n'), nil
}

func propertySchema(field schema.FieldDefinition) *openapi3.Schema {
	var prop *openapi3.Schema
	result := widgets.Configure(field.Widget, field.Properties)

	switch p := result.Props.(type) {
	case widgets.InputProps:
		prop = openapi3.NewStringSchema()
		if p.MaxLength != nil {
			prop.WithMaxLength(int64(*p.MaxLength))
		}
	case widgets.PasswordProps:
		prop = openapi3.NewStringSchema().WithFormat("password")
		prop.WriteOnly = true
		if p.MaxLength != nil {
			prop.WithMaxLength(int64(*p.MaxLength))
		}
	case widgets.TextAreaProps:
		prop = openapi3.NewStringSchema()
		if p.MaxLength != nil {
			prop.WithMaxLength(int64(*p.MaxLength))
		}
	case widgets.NumberProps:
		prop = openapi3.NewFloat64Schema()
		if p.Precision != nil && *p.Precision == 0 {
			prop = openapi3.NewIntegerSchema()
		}
		if p.Min != nil {
			prop.WithMin(*p.Min)
		}
		if p.Max != nil {
			prop.WithMax(*p.Max)
		}
	case widgets.SwitchProps, widgets.CheckboxProps:
		prop = openapi3.NewBoolSchema()
	case widgets.ChoiceProps:
		values := make([]any, 0, len(p.Options))
		for _, option := range p.Options {
			values = append(values, option.Value)
		}
		item := openapi3.NewStringSchema().WithEnum(values...)
		if p.Multiple() {
			prop = openapi3.NewArraySchema().WithItems(item).WithUniqueItems(true)
		} else {
			prop = item
		}
	case widgets.DatePickerProps:
		prop = openapi3.NewStringSchema().WithFormat("date")
		if p.ShowTime {
			prop.WithFormat("date-time")
		}
	case widgets.JSONEditorProps:
		prop = openapi3.NewSchema()
	case widgets.KeyValueProps:
		prop = openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema())
	default:
		prop = openapi3.NewSchema()
	}

	prop.Title = field.Label
	prop.Description = field.Description
	if result.Props != nil {
		if def, ok := result.Props.DefaultValue(); ok {
			prop.Default = def
			if raw, isJSON := def.(string); isJSON && result.Kind == schema.WidgetJSONEditor {
				var decoded any
				if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
					prop.Default = decoded
				}
			}
		}
	}
	applyRules(prop, field.Rules)

	prop.Extensions = map[string]any{
		ExtWidget:    string(field.Widget),
		ExtSortOrder: field.SortOrder,
	}
	if !field.Visibility.Empty() {
		prop.Extensions[ExtVisibility] = field.Visibility.Source
	}
	return prop
}

func applyRules(prop *openapi3.Schema, rules []schema.RuleSpec) {
	for _, rule := range rules {
		switch rule.Kind {
		case schema.KindEmail:
			prop.Format = "email"
		case schema.KindURL:
			prop.Format = "uri"
		case schema.KindDate:
			if prop.Format == "" {
				prop.Format = "date"
			}
		case schema.KindInteger:
			prop.Type = &openapi3.Types{openapi3.TypeInteger}
		case schema.KindEnum:
			if len(prop.Enum) == 0 {
				prop.Enum = append([]any(nil), rule.Enum...)
			}
		}
		if rule.Pattern != "" {
			prop.Pattern = rule.Pattern
		}
		if rule.Kind.Numeric() {
			if rule.Min != nil {
				prop.WithMin(*rule.Min)
			}
			if rule.Max != nil {
				prop.WithMax(*rule.Max)
			}
			continue
		}
		if !prop.Type.Is(openapi3.TypeString) {
			continue
		}
		if rule.Min != nil {
			prop.WithMinLength(int64(*rule.Min))
		}
		if rule.Max != nil {
			prop.WithMaxLength(int64(*rule.Max))
		}
		if rule.Len != nil {
			prop.WithLength(int64(*rule.Len))
		}
	}
}

func isRequired(rules []schema.RuleSpec) bool {
	for _, rule := range rules {
		if rule.Required {
			return true
		}
	}
	return false
}

func sortedKeys(schemas openapi3.Schemas) []string {
	keys := make([]string, 0, len(schemas))
	for key := range schemas {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
