package interpreter

import (
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-endpointschema/pkg/schema"
)

var (
	hexPattern  = regexp.MustCompile(`^(0[xX])?[0-9a-fA-F]+$`)
	httpMethods = map[string]struct{}{
		"GET": {}, "HEAD": {}, "POST": {}, "PUT": {}, "PATCH": {},
		"DELETE": {}, "OPTIONS": {}, "TRACE": {}, "CONNECT": {},
	}
	dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05", "2006-01"}
)

// Rule is a RuleSpec in the structured form consumed by validation.
type Rule struct {
	Required bool                  `json:"required,omitempty"`
	Kind     schema.ValidationKind `json:"type,omitempty"`
	Message  string                `json:"message"`
	Min      *float64              `json:"min,omitempty"`
	Max      *float64              `json:"max,omitempty"`
	Len      *int                  `json:"len,omitempty"`
	Pattern  string                `json:"pattern,omitempty"`
	Enum     []any                 `json:"enum,omitempty"`

	re *regexp.Regexp
}

// CompileRules turns a field's rule list into validation rules. Any defect
// fails the whole list so a field is never validated by half its rules.
func CompileRules(specs []schema.RuleSpec) ([]Rule, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]Rule, 0, len(specs))
	for idx, spec := range specs {
		if issues := spec.Check(); len(issues) > 0 {
			return nil, fmt.Errorf("rule %d: %s", idx, issues[0].String())
		}
		rule := Rule{
			Required: spec.Required,
			Kind:     spec.Kind,
			Message:  strings.TrimSpace(spec.Message),
			Min:      spec.Min,
			Max:      spec.Max,
			Len:      spec.Len,
			Pattern:  spec.Pattern,
			Enum:     spec.Enum,
		}
		if spec.Pattern != "" {
			re, err := regexp.Compile(spec.Pattern)
			if err != nil {
				return nil, fmt.Errorf("rule %d: pattern: %w", idx, err)
			}
			rule.re = re
		}
		out = append(out, rule)
	}
	return out, nil
}

// Check reports whether value satisfies the rule. Empty values only fail
// required rules; every other rule is skipped for them.
func (r Rule) Check(value any) bool {
	if isEmpty(value) {
		return !r.Required
	}
	if !r.kindOK(value) {
		return false
	}
	if !r.boundsOK(value) {
		return false
	}
	if r.re != nil {
		s, ok := value.(string)
		if !ok || !r.re.MatchString(s) {
			return false
		}
	}
	if len(r.Enum) > 0 && !inEnum(value, r.Enum) {
		return false
	}
	return true
}

// Validate returns the message of every rule value violates, in rule order.
func (d ControlDescriptor) Validate(value any) []string {
	var messages []string
	for _, rule := range d.Rules {
		if !rule.Check(value) {
			messages = append(messages, rule.Message)
		}
	}
	return normalizeMessages(messages)
}

// Validate checks values against every control in tree. Only failing keys
// appear in the result.
func Validate(tree Tree, values schema.FormValues) map[string][]string {
	out := make(map[string][]string)
	for _, control := range tree.Controls() {
		if messages := control.Validate(values[control.Key]); len(messages) > 0 {
			out[control.Key] = messages
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (r Rule) kindOK(value any) bool {
	switch r.Kind {
	case "", schema.KindEnum, schema.KindPattern:
		return true
	case schema.KindString:
		_, ok := value.(string)
		return ok
	case schema.KindNumber, schema.KindFloat:
		_, ok := number(value)
		return ok
	case schema.KindInteger:
		n, ok := number(value)
		return ok && n == math.Trunc(n)
	case schema.KindBoolean:
		switch v := value.(type) {
		case bool:
			return true
		case string:
			_, err := strconv.ParseBool(v)
			return err == nil
		}
		return false
	case schema.KindEmail:
		s, ok := value.(string)
		if !ok {
			return false
		}
		addr, err := mail.ParseAddress(s)
		return err == nil && addr.Address == strings.TrimSpace(s)
	case schema.KindURL:
		s, ok := value.(string)
		if !ok {
			return false
		}
		u, err := url.ParseRequestURI(strings.TrimSpace(s))
		return err == nil && u.Scheme != "" && u.Host != ""
	case schema.KindDate:
		s, ok := value.(string)
		if !ok {
			_, isTime := value.(time.Time)
			return isTime
		}
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
				return true
			}
		}
		return false
	case schema.KindArray:
		return kindOf(value) == reflect.Slice
	case schema.KindObject:
		return kindOf(value) == reflect.Map
	case schema.KindMethod:
		s, ok := value.(string)
		if !ok {
			return false
		}
		_, known := httpMethods[strings.ToUpper(strings.TrimSpace(s))]
		return known
	case schema.KindRegexp:
		s, ok := value.(string)
		if !ok {
			return false
		}
		_, err := regexp.Compile(s)
		return err == nil
	case schema.KindHex:
		s, ok := value.(string)
		return ok && hexPattern.MatchString(strings.TrimSpace(s))
	default:
		return true
	}
}

func (r Rule) boundsOK(value any) bool {
	if r.Min == nil && r.Max == nil && r.Len == nil {
		return true
	}
	var measure float64
	if r.Kind.Numeric() {
		n, ok := number(value)
		if !ok {
			return false
		}
		measure = n
	} else {
		l, ok := length(value)
		if !ok {
			return false
		}
		measure = float64(l)
	}
	if r.Min != nil && measure < *r.Min {
		return false
	}
	if r.Max != nil && measure > *r.Max {
		return false
	}
	if r.Len != nil {
		l, ok := length(value)
		if !ok || l != *r.Len {
			return false
		}
	}
	return true
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	}
	switch kindOf(value) {
	case reflect.Slice, reflect.Map:
		return reflect.ValueOf(value).Len() == 0
	}
	return false
}

func length(value any) (int, bool) {
	switch v := value.(type) {
	case string:
		return len([]rune(v)), true
	}
	switch kindOf(value) {
	case reflect.Slice, reflect.Map, reflect.Array:
		return reflect.ValueOf(value).Len(), true
	}
	if n, ok := number(value); ok {
		return len(strconv.FormatFloat(n, 'f', -1, 64)), true
	}
	return 0, false
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func inEnum(value any, enum []any) bool {
	want := fmt.Sprint(value)
	for _, candidate := range enum {
		if fmt.Sprint(candidate) == want {
			return true
		}
	}
	if n, ok := number(value); ok {
		for _, candidate := range enum {
			if m, ok := number(candidate); ok && m == n {
				return true
			}
		}
	}
	return false
}

func kindOf(value any) reflect.Kind {
	if value == nil {
		return reflect.Invalid
	}
	return reflect.TypeOf(value).Kind()
}
