package interpreter

import (
	"github.com/goliatone/go-endpointschema/pkg/schema"
)

// Retry-policy value keys.
const (
	RetryMaxAttempts        = "retryMaxAttempts"
	RetryInitialDelay       = "retryInitialDelay"
	RetryExponentialBackoff = "retryExponentialBackoff"
	RetryBackoffMultiplier  = "retryBackoffMultiplier"
	RetryMaxDelay           = "retryMaxDelay"
)

// Retry-policy defaults. Delays are in milliseconds.
const (
	DefaultRetryMaxAttempts       = 3
	DefaultRetryInitialDelay      = 1000
	DefaultRetryBackoffMultiplier = 2
	DefaultRetryMaxDelay          = 30000
)

type retryField struct {
	key    string
	label  string
	widget schema.WidgetKind
	props  map[string]any
	rules  []schema.RuleSpec
	def    any
}

func retryFields() []retryField {
	return []retryField{
		{
			key:    RetryMaxAttempts,
			label:  "Max attempts",
			widget: schema.WidgetNumber,
			props:  map[string]any{"min": 1, "max": 10, "precision": 0},
			rules: []schema.RuleSpec{
				{Required: true, Message: "Max attempts is required"},
				{Kind: schema.KindInteger, Min: float(1), Max: float(10), Message: "Max attempts must be between 1 and 10"},
			},
			def: float64(DefaultRetryMaxAttempts),
		},
		{
			key:    RetryInitialDelay,
			label:  "Initial delay (ms)",
			widget: schema.WidgetNumber,
			props:  map[string]any{"min": 0, "step": 100},
			rules: []schema.RuleSpec{
				{Kind: schema.KindInteger, Min: float(0), Message: "Initial delay must be a non-negative number of milliseconds"},
			},
			def: float64(DefaultRetryInitialDelay),
		},
		{
			key:    RetryExponentialBackoff,
			label:  "Exponential backoff",
			widget: schema.WidgetSwitch,
			def:    false,
		},
		{
			key:    RetryBackoffMultiplier,
			label:  "Backoff multiplier",
			widget: schema.WidgetNumber,
			props:  map[string]any{"min": 1, "step": 0.5},
			rules: []schema.RuleSpec{
				{Kind: schema.KindNumber, Min: float(1), Message: "Backoff multiplier must be at least 1"},
			},
			def: float64(DefaultRetryBackoffMultiplier),
		},
		{
			key:    RetryMaxDelay,
			label:  "Max delay (ms)",
			widget: schema.WidgetNumber,
			props:  map[string]any{"min": 0, "step": 1000},
			rules: []schema.RuleSpec{
				{Kind: schema.KindInteger, Min: float(0), Message: "Max delay must be a non-negative number of milliseconds"},
			},
			def: float64(DefaultRetryMaxDelay),
		},
	}
}

func mergeRetryDefaults(values schema.FormValues) {
	for _, field := range retryFields() {
		if _, present := values[field.key]; !present {
			values[field.key] = field.def
		}
	}
}

// retrySection builds the retry block. The multiplier only appears while
// exponential backoff is switched on.
func (i *Interpreter) retrySection(values schema.FormValues) *RetrySection {
	section := &RetrySection{Title: "Retry policy"}
	backoff := truthy(values[RetryExponentialBackoff])
	for _, field := range retryFields() {
		if field.key == RetryBackoffMultiplier && !backoff {
			continue
		}
		rules, err := CompileRules(field.rules)
		if err != nil {
			i.logger.Warn("interpreter: retry rules dropped", "field", field.key, "err", err)
		}
		descriptor := ControlDescriptor{
			Key:     field.key,
			Label:   field.label,
			Widget:  field.widget,
			Control: i.registry.Control(field.widget, field.props),
			Value:   values[field.key],
			Rules:   rules,
			Section: SectionRetry,
		}
		for _, rule := range rules {
			if rule.Required {
				descriptor.Required = true
			}
		}
		section.Fields = append(section.Fields, descriptor)
	}
	return section
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

func float(v float64) *float64 { return &v }

// RetryDefinitions describes the retry section as field definitions, for
// consumers such as schema exporters that work on fields rather than render
// trees. The multiplier carries the predicate that gates it on backoff.
func RetryDefinitions() []schema.FieldDefinition {
	fields := retryFields()
	out := make([]schema.FieldDefinition, 0, len(fields))
	for idx, field := range fields {
		props := schema.CloneProperties(field.props)
		if props == nil {
			props = map[string]any{}
		}
		props["defaultValue"] = field.def
		def := schema.FieldDefinition{
			Key:        field.key,
			Label:      field.label,
			Widget:     field.widget,
			Properties: props,
			SortOrder:  idx + 1,
			Rules:      field.rules,
		}
		if field.key == RetryBackoffMultiplier {
			def.Visibility = schema.NewPredicate("formValues." + RetryExponentialBackoff + " === true")
		}
		out = append(out, def)
	}
	return out
}
