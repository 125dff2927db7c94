package editor

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
)

// SuggestKey derives a lowerCamel field key from label that satisfies the key
// grammar and does not collide with another row.
func (e *Editor) SuggestKey(label string) string {
	base := keyFromLabel(label)
	if base == "" {
		base = "field"
	}

	taken := make(map[string]struct{}, len(e.fields))
	for _, field := range e.fields {
		if e.edit != nil && field.ID == e.edit.id {
			continue
		}
		taken[field.Key] = struct{}{}
	}
	if _, clash := taken[base]; !clash {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + strconv.Itoa(n)
		if _, clash := taken[candidate]; !clash {
			return candidate
		}
	}
}

func keyFromLabel(label string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		default:
			return ' '
		}
	}, label)
	key := strcase.ToLowerCamel(strings.TrimSpace(cleaned))
	if key != "" && unicode.IsDigit(rune(key[0])) {
		key = "_" + key
	}
	return key
}
