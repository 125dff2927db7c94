package validation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-endpointschema/pkg/schema"
)

func validDoc() schema.EndpointTypeSchema {
	return schema.EndpointTypeSchema{
		ID:             "ep-http",
		TypeCode:       "http.webhook",
		TypeName:       "HTTP Webhook",
		SupportedModes: []schema.Mode{schema.ModeIn, schema.ModeOut},
		SchemaVersion:  "1.2",
		Status:         schema.StatusDraft,
		Fields: []schema.FieldDefinition{
			{ID: "f1", Key: "host", Label: "Host", Widget: schema.WidgetInput, SortOrder: 1, Modes: []schema.Mode{schema.ModeIn}},
			{ID: "f2", Key: "port", Label: "Port", Widget: schema.WidgetNumber, SortOrder: 2,
				Properties: map[string]any{"min": 1, "max": 65535}},
		},
	}
}

func paths(issues []schema.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Path)
	}
	return out
}

func TestSchema_Valid(t *testing.T) {
	t.Parallel()

	result := Schema(validDoc())
	if !result.Valid {
		t.Fatalf("expected document to be valid: %#v", result.Issues)
	}
	if err := result.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSchema_ReportsEveryDefect(t *testing.T) {
	t.Parallel()

	doc := validDoc()
	doc.SchemaVersion = "next"
	doc.Fields = append(doc.Fields, schema.FieldDefinition{
		ID:        "f3",
		Key:       "host",
		Label:     "",
		Widget:    schema.WidgetInput,
		SortOrder: 7,
		Modes:     []schema.Mode{schema.ModeInOut},
		Rules: []schema.RuleSpec{
			{Min: ptr(10.0), Max: ptr(5.0), Message: "x"},
		},
		Visibility: schema.NewPredicate(`formValues.constructor == 1`),
	})

	result := Schema(doc)
	want := []string{
		"schemaVersion",
		"fields[2].key",
		"fields[2].sortOrder",
		"fields[2].label",
		"fields[2].modes[0]",
		"fields[2].validationRules[0].min",
		"fields[2].visibilityPredicate",
	}
	if diff := cmp.Diff(want, paths(result.Issues)); diff != "" {
		t.Fatalf("issue paths mismatch (-want +got):\n%s", diff)
	}
	var verr *schema.ValidationError
	if !errors.As(result.Err(), &verr) {
		t.Fatalf("expected *schema.ValidationError, got %T", result.Err())
	}
	for _, issue := range verr.IssuesFor("fields[2]") {
		if issue.Index != 2 || issue.Field != "host" {
			t.Fatalf("expected issue indexed at field 2 with key host, got %+v", issue)
		}
	}
}

func TestSchema_WidgetKindLeniency(t *testing.T) {
	t.Parallel()

	doc := validDoc()
	doc.Fields[0].Widget = "sketchpad"
	if result := Schema(doc); !result.Valid {
		t.Fatalf("unknown widget kinds should not block stored documents: %v", result.Issues)
	}
	result := Schema(doc, WithStrictWidgets(true))
	if diff := cmp.Diff([]string{"fields[0].widget"}, paths(result.Issues)); diff != "" {
		t.Fatalf("issue paths mismatch (-want +got):\n%s", diff)
	}
}

func TestField_ChecksKeyAndProperties(t *testing.T) {
	t.Parallel()

	issues := Field(schema.FieldDefinition{
		Key:        "1port",
		Label:      "Port",
		Widget:     schema.WidgetNumber,
		Properties: map[string]any{"step": -1},
	}, nil)
	if diff := cmp.Diff([]string{"key", "properties.step"}, paths(issues)); diff != "" {
		t.Fatalf("issue paths mismatch (-want +got):\n%s", diff)
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	v, err := Version("2.1")
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if got := v.String(); got != "2.1.0" {
		t.Fatalf("expected normalized 2.1.0, got %q", got)
	}
	if _, err := Version("latest"); err == nil {
		t.Fatalf("expected error for non-semver input")
	}
}

func ptr[T any](v T) *T { return &v }
