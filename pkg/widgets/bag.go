package widgets

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-endpointschema/pkg/schema"
)

// bag narrows an untyped property map, collecting an issue for every value
// whose shape does not match what the widget kind expects.
type bag struct {
	raw    map[string]any
	issues []schema.Issue
	known  map[string]struct{}
}

func newBag(raw map[string]any) *bag {
	return &bag{raw: raw, known: make(map[string]struct{})}
}

func (b *bag) fail(key, message string) {
	b.issues = append(b.issues, schema.Issue{Index: -1, Path: key, Message: message})
}

func (b *bag) lookup(key string) (any, bool) {
	b.known[key] = struct{}{}
	value, ok := b.raw[key]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

// text reads display text and strips any markup from it.
func (b *bag) text(key string) string {
	return sanitizeText(b.plain(key))
}

// plain reads a string value as authored. Defaults and formats are data, not
// display text, so they are never sanitized.
func (b *bag) plain(key string) string {
	value, ok := b.lookup(key)
	if !ok {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case fmt.Stringer:
		return strings.TrimSpace(typed.String())
	default:
		b.fail(key, "must be text")
		return ""
	}
}

func (b *bag) boolean(key string) bool {
	value, ok := b.lookup(key)
	if !ok {
		return false
	}
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		if err != nil {
			b.fail(key, "must be true or false")
		}
		return parsed
	default:
		b.fail(key, "must be true or false")
		return false
	}
}

func (b *bag) number(key string) *float64 {
	value, ok := b.lookup(key)
	if !ok {
		return nil
	}
	n, ok := toFloat(value)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		b.fail(key, "must be a number")
		return nil
	}
	return &n
}

func (b *bag) integer(key string) *int {
	n := b.number(key)
	if n == nil {
		return nil
	}
	if *n != math.Trunc(*n) {
		b.fail(key, "must be a whole number")
		return nil
	}
	v := int(*n)
	return &v
}

func (b *bag) options(key string) []Option {
	value, ok := b.lookup(key)
	if !ok {
		return nil
	}
	var items []any
	switch typed := value.(type) {
	case []any:
		items = typed
	case []map[string]any:
		for _, item := range typed {
			items = append(items, item)
		}
	case []Option:
		for _, item := range typed {
			items = append(items, map[string]any{"label": item.Label, "value": item.Value})
		}
	default:
		b.fail(key, "must be a list of {label, value} entries")
		return nil
	}

	out := make([]Option, 0, len(items))
	for idx, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			b.fail(fmt.Sprintf("%s[%d]", key, idx), "must be a {label, value} entry")
			continue
		}
		label, _ := entry["label"].(string)
		out = append(out, Option{
			Label: sanitizeText(label),
			Value: optionValue(entry["value"]),
		})
	}
	return out
}

func (b *bag) stringMap(key string) map[string]string {
	value, ok := b.lookup(key)
	if !ok {
		return nil
	}
	switch typed := value.(type) {
	case map[string]string:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = v
		}
		return out
	case map[string]any:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			s, ok := v.(string)
			if !ok {
				b.fail(key+"."+k, "must be text")
				continue
			}
			out[k] = s
		}
		return out
	default:
		b.fail(key, "must be a map of text values")
		return nil
	}
}

// unknown reports keys that the widget kind does not define.
func (b *bag) unknown() {
	var extra []string
	for key := range b.raw {
		if _, ok := b.known[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		b.fail(key, "unknown property")
	}
}

func optionValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}

func toFloat(value any) (float64, bool) {
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
