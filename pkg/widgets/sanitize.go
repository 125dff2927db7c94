package widgets

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

const maxSanitizePasses = 8

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// sanitizeText strips markup from authored display text (labels,
// placeholders, option labels) so the host rendering layer only ever receives
// plain text.
func sanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	// Unescaping can surface entity-encoded markup, so strip until the text
	// stops changing.
	current := trimmed
	for pass := 0; pass < maxSanitizePasses; pass++ {
		next := strings.TrimSpace(html.UnescapeString(textSanitizer().Sanitize(current)))
		if next == current {
			return next
		}
		current = next
	}
	return strings.TrimSpace(textSanitizer().Sanitize(current))
}

// SanitizeText exposes the display-text policy to other authoring components.
func SanitizeText(raw string) string {
	return sanitizeText(raw)
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
