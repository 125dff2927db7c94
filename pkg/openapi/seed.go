package openapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"github.com/iancoleman/strcase"

	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/rules"
	"github.com/goliatone/go-endpointschema/pkg/widgets"
)

var (
	// ErrComponentNotFound reports a component name absent from the document.
	ErrComponentNotFound = errors.New("openapi: component not found")
	// ErrNotObject reports a component that has no properties to seed from.
	ErrNotObject = errors.New("openapi: component is not an object schema")
)

// SeedOption customises SeedFields.
type SeedOption func(*seedConfig)

type seedConfig struct {
	newID func() string
	modes []schema.Mode
}

// WithIDGenerator overrides how seeded field ids are minted.
func WithIDGenerator(fn func() string) SeedOption {
	return func(c *seedConfig) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithModes assigns modes to every seeded field.
func WithModes(modes ...schema.Mode) SeedOption {
	return func(c *seedConfig) {
		c.modes = append([]schema.Mode(nil), modes...)
	}
}

// Load parses an OpenAPI document from JSON or YAML. Remote references are
// not followed.
func Load(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errors.New("openapi: document is empty")
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = false
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return doc, nil
}

// Components lists the component schema names of doc in sorted order.
func Components(doc *openapi3.T) []string {
	if doc == nil || doc.Components == nil {
		return nil
	}
	return sortedKeys(doc.Components.Schemas)
}

// SeedFields loads raw and converts the named component's properties into
// field definitions. Fields follow x-sort-order when present and property
// name otherwise. Properties whose widget configuration would not validate
// are seeded without properties rather than dropped.
func SeedFields(ctx context.Context, raw []byte, component string, opts ...SeedOption) ([]schema.FieldDefinition, error) {
	doc, err := Load(ctx, raw)
	if err != nil {
		return nil, err
	}
	return SeedFromDocument(doc, component, opts...)
}

// SeedFromDocument converts a component of an already loaded document.
func SeedFromDocument(doc *openapi3.T, component string, opts ...SeedOption) ([]schema.FieldDefinition, error) {
	cfg := seedConfig{newID: uuid.NewString}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if doc == nil || doc.Components == nil {
		return nil, fmt.Errorf("%w: %q", ErrComponentNotFound, component)
	}
	ref, ok := doc.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("%w: %q", ErrComponentNotFound, component)
	}
	root := ref.Value
	if len(root.Properties) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotObject, component)
	}

	required := make(map[string]struct{}, len(root.Required))
	for _, name := range root.Required {
		required[name] = struct{}{}
	}

	names := sortedKeys(root.Properties)
	sort.SliceStable(names, func(i, j int) bool {
		return sortHint(root.Properties[names[i]]) < sortHint(root.Properties[names[j]])
	})

	fields := make([]schema.FieldDefinition, 0, len(names))
	used := make(map[string]struct{}, len(names))
	for _, name := range names {
		propRef := root.Properties[name]
		if propRef == nil || propRef.Value == nil {
			continue
		}
		if section, _ := propRef.Value.Extensions[ExtSection].(string); section != "" {
			continue
		}
		_, req := required[name]
		field := seedField(name, propRef.Value, req)
		field.Key = uniqueKey(field.Key, used)
		field.ID = cfg.newID()
		field.Modes = append([]schema.Mode(nil), cfg.modes...)
		fields = append(fields, field)
	}
	return schema.NormalizeOrder(fields), nil
}

func sortHint(ref *openapi3.SchemaRef) float64 {
	if ref == nil || ref.Value == nil {
		return math.MaxFloat64
	}
	switch v := ref.Value.Extensions[ExtSortOrder].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return math.MaxFloat64
	}
}

func seedField(name string, s *openapi3.Schema, required bool) schema.FieldDefinition {
	field := schema.FieldDefinition{
		Key:         seedKey(name),
		Label:       seedLabel(name, s.Title),
		Description: strings.TrimSpace(s.Description),
	}
	field.Widget, field.Properties = seedWidget(s)

	if hinted, ok := s.Extensions[ExtWidget].(string); ok && schema.WidgetKind(hinted).IsValid() {
		kind := schema.WidgetKind(hinted)
		if kind != field.Widget {
			field.Widget = kind
			if widgets.Configure(kind, field.Properties).Err() != nil {
				field.Properties = nil
			}
		}
	}
	if src, ok := s.Extensions[ExtVisibility].(string); ok {
		if predicate := schema.NewPredicate(src); len(rules.PredicateIssues(predicate)) == 0 {
			field.Visibility = predicate
		}
	}
	if res := widgets.Configure(field.Widget, field.Properties); res.Err() != nil {
		field.Properties = nil
	}

	field.Rules = seedRules(field.Label, s, required)
	return field
}

func seedWidget(s *openapi3.Schema) (schema.WidgetKind, map[string]any) {
	props := map[string]any{}
	switch {
	case s.Type.Is(openapi3.TypeBoolean):
		if def, ok := s.Default.(bool); ok {
			props[widgets.PropDefault] = def
		}
		return schema.WidgetSwitch, props
	case s.Type.Is(openapi3.TypeInteger), s.Type.Is(openapi3.TypeNumber):
		if s.Min != nil {
			props[widgets.PropMin] = *s.Min
		}
		if s.Max != nil {
			props[widgets.PropMax] = *s.Max
		}
		if s.Type.Is(openapi3.TypeInteger) {
			props[widgets.PropPrecision] = 0
		}
		if def, ok := s.Default.(float64); ok {
			props[widgets.PropDefault] = def
		}
		return schema.WidgetNumber, props
	case s.Type.Is(openapi3.TypeArray):
		if s.Items != nil && s.Items.Value != nil && len(s.Items.Value.Enum) > 0 {
			props[widgets.PropOptions] = enumOptions(s.Items.Value.Enum)
			return schema.WidgetMultiSelect, props
		}
		return schema.WidgetJSONEditor, nil
	case s.Type.Is(openapi3.TypeObject):
		if s.AdditionalProperties.Schema != nil && len(s.Properties) == 0 {
			return schema.WidgetKeyValue, nil
		}
		return schema.WidgetJSONEditor, nil
	case s.Type.Is(openapi3.TypeString) || s.Type == nil:
		if len(s.Enum) > 0 {
			props[widgets.PropOptions] = enumOptions(s.Enum)
			if def, ok := s.Default.(string); ok {
				props[widgets.PropDefault] = def
			}
			return schema.WidgetSelect, props
		}
		switch s.Format {
		case "password":
			return schema.WidgetPassword, nil
		case "date":
			return schema.WidgetDatePicker, nil
		case "date-time":
			return schema.WidgetDatePicker, map[string]any{widgets.PropShowTime: true}
		}
		if s.MaxLength != nil {
			props[widgets.PropMaxLength] = int(*s.MaxLength)
		}
		if def, ok := s.Default.(string); ok {
			props[widgets.PropDefault] = def
		}
		if s.MaxLength != nil && *s.MaxLength > 255 {
			return schema.WidgetTextArea, props
		}
		return schema.WidgetInput, props
	default:
		return schema.WidgetJSONEditor, nil
	}
}

func seedRules(label string, s *openapi3.Schema, required bool) []schema.RuleSpec {
	var out []schema.RuleSpec
	if required {
		out = append(out, schema.RuleSpec{Required: true, Message: label + " is required"})
	}
	switch s.Format {
	case "email":
		out = append(out, schema.RuleSpec{Kind: schema.KindEmail, Message: "Enter a valid email address"})
	case "uri", "url":
		out = append(out, schema.RuleSpec{Kind: schema.KindURL, Message: "Enter a valid URL"})
	}
	if s.Pattern != "" {
		out = append(out, schema.RuleSpec{Kind: schema.KindPattern, Pattern: s.Pattern, Message: label + " has an invalid format"})
	}
	if s.Type.Is(openapi3.TypeString) && (s.MinLength > 0 || s.MaxLength != nil) {
		rule := schema.RuleSpec{Kind: schema.KindString, Message: label + " has an invalid length"}
		if s.MinLength > 0 {
			rule.Min = ptr(float64(s.MinLength))
		}
		if s.MaxLength != nil {
			rule.Max = ptr(float64(*s.MaxLength))
		}
		out = append(out, rule)
	}
	if (s.Type.Is(openapi3.TypeInteger) || s.Type.Is(openapi3.TypeNumber)) && (s.Min != nil || s.Max != nil) {
		kind := schema.KindNumber
		if s.Type.Is(openapi3.TypeInteger) {
			kind = schema.KindInteger
		}
		out = append(out, schema.RuleSpec{Kind: kind, Min: copyFloat(s.Min), Max: copyFloat(s.Max), Message: label + " is out of range"})
	}

	valid := out[:0]
	for _, rule := range out {
		if len(rule.Check()) == 0 {
			valid = append(valid, rule)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	return valid
}

func enumOptions(values []any) []any {
	out := make([]any, 0, len(values))
	for _, value := range values {
		text := fmt.Sprint(value)
		out = append(out, map[string]any{"label": text, "value": text})
	}
	return out
}

func seedKey(name string) string {
	if schema.ValidKey(name) {
		return name
	}
	key := strcase.ToLowerCamel(name)
	if key == "" {
		return "field"
	}
	if !schema.ValidKey(key) {
		key = "_" + key
	}
	if !schema.ValidKey(key) {
		return "field"
	}
	return key
}

func seedLabel(name, title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	words := strcase.ToDelimited(name, ' ')
	if words == "" {
		return name
	}
	return strings.ToUpper(words[:1]) + words[1:]
}

func uniqueKey(key string, used map[string]struct{}) string {
	candidate := key
	for n := 2; ; n++ {
		if _, taken := used[candidate]; !taken {
			used[candidate] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s%d", key, n)
	}
}

func ptr(v float64) *float64 { return &v }

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(*v)
}
