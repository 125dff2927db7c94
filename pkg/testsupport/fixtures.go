package testsupport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-endpointschema/pkg/schema"
)

// WebhookSchema returns a valid HTTP webhook endpoint type covering every
// feature the authoring and interpreter packages handle: mode-scoped fields,
// choice widgets with defaults, expression and function predicates, rules,
// and the retry section.
func WebhookSchema() schema.EndpointTypeSchema {
	basic := `formValues.authType === "basic"`
	return schema.EndpointTypeSchema{
		ID:             "ep-webhook",
		TypeCode:       "http.webhook",
		TypeName:       "HTTP Webhook",
		Category:       "http",
		SupportedModes: []schema.Mode{schema.ModeIn, schema.ModeOut},
		SchemaVersion:  "1.0.0",
		Status:         schema.StatusDraft,
		SupportsRetry:  true,
		Fields: []schema.FieldDefinition{
			{
				ID: "fld-url", Key: "url", Label: "URL", Widget: schema.WidgetInput, SortOrder: 1,
				Properties: map[string]any{"placeholder": "https://example.com/hook"},
				Rules: []schema.RuleSpec{
					{Required: true, Message: "URL is required"},
					{Kind: schema.KindURL, Message: "Enter a valid URL"},
				},
			},
			{
				ID: "fld-method", Key: "method", Label: "Method", Widget: schema.WidgetSelect, SortOrder: 2,
				Modes: []schema.Mode{schema.ModeOut},
				Properties: map[string]any{
					"options": []any{
						map[string]any{"label": "GET", "value": "GET"},
						map[string]any{"label": "POST", "value": "POST"},
					},
					"defaultValue": "POST",
				},
				Rules: []schema.RuleSpec{
					{Kind: schema.KindEnum, Enum: []any{"GET", "POST"}, Message: "Choose GET or POST"},
				},
			},
			{
				ID: "fld-auth", Key: "authType", Label: "Authentication", Widget: schema.WidgetRadio, SortOrder: 3,
				Properties: map[string]any{
					"options": []any{
						map[string]any{"label": "None", "value": "none"},
						map[string]any{"label": "Basic", "value": "basic"},
						map[string]any{"label": "Bearer token", "value": "bearer"},
					},
					"defaultValue": "none",
				},
			},
			{
				ID: "fld-user", Key: "username", Label: "Username", Widget: schema.WidgetInput, SortOrder: 4,
				Visibility: schema.NewPredicate(basic),
				Rules:      []schema.RuleSpec{{Required: true, Message: "Username is required"}},
			},
			{
				ID: "fld-pass", Key: "password", Label: "Password", Widget: schema.WidgetPassword, SortOrder: 5,
				Visibility: schema.NewPredicate(basic),
			},
			{
				ID: "fld-token", Key: "token", Label: "Token", Widget: schema.WidgetPassword, SortOrder: 6,
				Visibility: schema.NewPredicate(`(v) => { return v.authType === "bearer"; }`),
			},
			{
				ID: "fld-timeout", Key: "timeoutMs", Label: "Timeout (ms)", Widget: schema.WidgetNumber, SortOrder: 7,
				Properties: map[string]any{"min": 100, "max": 60000, "step": 100, "defaultValue": 5000},
				Rules: []schema.RuleSpec{
					{Kind: schema.KindInteger, Min: float(100), Max: float(60000), Message: "Timeout must be between 100 and 60000 ms"},
				},
			},
			{
				ID: "fld-headers", Key: "headers", Label: "Headers", Widget: schema.WidgetKeyValue, SortOrder: 8,
				Properties:  map[string]any{"keyPlaceholder": "Header", "valuePlaceholder": "Value"},
				Description: "Sent with every request.",
			},
		},
	}
}

func float(v float64) *float64 { return &v }

// LoadSchema reads a YAML or JSON schema fixture.
func LoadSchema(t *testing.T, path string) schema.EndpointTypeSchema {
	t.Helper()

	doc, err := LoadSchemaFromPath(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return doc
}

// LoadSchemaFromPath decodes a fixture without requiring testing.T. JSON is
// read through the YAML decoder.
func LoadSchemaFromPath(path string) (schema.EndpointTypeSchema, error) {
	if path == "" {
		return schema.EndpointTypeSchema{}, errors.New("testsupport: schema path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.EndpointTypeSchema{}, fmt.Errorf("testsupport: read schema: %w", err)
	}
	var doc schema.EndpointTypeSchema
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return schema.EndpointTypeSchema{}, fmt.Errorf("testsupport: decode schema: %w", err)
	}
	return doc, nil
}

// CaptureLogger returns a debug-level text logger writing to the returned
// buffer.
func CaptureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
