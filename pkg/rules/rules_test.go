package rules

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-endpointschema/pkg/schema"
)

func ptr[T any](v T) *T { return &v }

func TestValidate_ReportsEveryRuleTogether(t *testing.T) {
	t.Parallel()

	issues := Validate([]schema.RuleSpec{
		{Required: true, Message: "required"},
		{Min: ptr(10.0), Max: ptr(5.0), Message: "x"},
		{Kind: schema.KindPattern, Pattern: "([", Message: ""},
		{Kind: schema.KindEnum, Message: "pick one"},
	})

	type entry struct {
		Index int
		Path  string
	}
	got := make([]entry, 0, len(issues))
	for _, issue := range issues {
		got = append(got, entry{Index: issue.Index, Path: issue.Path})
	}
	want := []entry{
		{Index: 1, Path: "rules[1].min"},
		{Index: 2, Path: "rules[2].message"},
		{Index: 2, Path: "rules[2].pattern"},
		{Index: 3, Path: "rules[3].enum"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_RejectsUnknownKeysAndTrailingData(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		`[{"message":"x","minimum":3}]`,
		`[{"message":"x"}] []`,
		`{"message":"x"}`,
		`[{"message":`,
	} {
		if _, err := Parse(text); !errors.Is(err, ErrParse) {
			t.Fatalf("Parse(%q) error = %v, want ErrParse", text, err)
		}
	}

	rules, err := Parse("  ")
	if err != nil || rules != nil {
		t.Fatalf("expected blank text to parse as empty, got %v, %v", rules, err)
	}
}

func TestDialog_ModeSwitchRoundTrips(t *testing.T) {
	t.Parallel()

	original := []schema.RuleSpec{
		{Required: true, Message: "Host is required"},
		{Kind: schema.KindString, Min: ptr(3.0), Max: ptr(64.0), Message: "3 to 64 characters"},
		{Kind: schema.KindEnum, Enum: []any{"GET", "POST"}, Message: "GET or POST"},
		{Kind: schema.KindPattern, Pattern: `^[a-z]+$`, Message: "lowercase only"},
	}
	if issues := Validate(original); len(issues) != 0 {
		t.Fatalf("fixture must be valid: %v", issues)
	}

	dialog := Open(schema.FieldDefinition{ID: "f-1", Rules: original})
	if err := dialog.SwitchMode(ModeText); err != nil {
		t.Fatalf("to text: %v", err)
	}
	if dialog.Text() == "" {
		t.Fatalf("expected serialized text")
	}
	if err := dialog.SwitchMode(ModeStructured); err != nil {
		t.Fatalf("to structured: %v", err)
	}
	if diff := cmp.Diff(original, dialog.Rules()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDialog_LeavingTextModeRequiresParse(t *testing.T) {
	t.Parallel()

	dialog := Open(schema.FieldDefinition{ID: "f-1"})
	if err := dialog.SwitchMode(ModeText); err != nil {
		t.Fatalf("to text: %v", err)
	}
	if err := dialog.SetText(`[{"message": "x",]`); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if err := dialog.SwitchMode(ModeStructured); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if dialog.Mode() != ModeText {
		t.Fatalf("dialog must stay in text mode after a failed switch")
	}
	if _, err := dialog.Add(schema.RuleSpec{Message: "y"}); !errors.Is(err, ErrTextMode) {
		t.Fatalf("expected ErrTextMode, got %v", err)
	}
}

func TestDialog_AcceptRejectsMinAboveMax(t *testing.T) {
	t.Parallel()

	dialog := Open(schema.FieldDefinition{ID: "f-1"})
	if _, err := dialog.Add(schema.RuleSpec{Min: ptr(10.0), Max: ptr(5.0), Message: "x"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err := dialog.Accept()
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.IssuesFor("rules[0].min")) != 1 {
		t.Fatalf("expected a min issue, got %v", verr.Issues)
	}
}

func TestDialog_StructuredEdits(t *testing.T) {
	t.Parallel()

	dialog := Open(schema.FieldDefinition{ID: "f-1"})
	for _, msg := range []string{"a", "b", "c"} {
		if _, err := dialog.Add(schema.RuleSpec{Required: true, Message: msg}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := dialog.Move(2, 0); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if err := dialog.Update(1, schema.RuleSpec{Kind: schema.KindEmail, Message: "mail"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := dialog.Remove(2); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := dialog.Remove(5); !errors.Is(err, ErrIndex) {
		t.Fatalf("expected ErrIndex, got %v", err)
	}

	got, err := dialog.Accept()
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	want := []schema.RuleSpec{
		{Required: true, Message: "c"},
		{Kind: schema.KindEmail, Message: "mail"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestPredicateDialog(t *testing.T) {
	t.Parallel()

	field := schema.FieldDefinition{ID: "f-9", Visibility: schema.NewPredicate(`formValues.authType === "basic"`)}
	dialog := OpenPredicate(field)
	if dialog.Kind() != schema.PredicateExpression {
		t.Fatalf("expected expression kind, got %s", dialog.Kind())
	}

	dialog.SetSource(`(v) => { return eval("v.authType") == "basic"; }`)
	if dialog.Kind() != schema.PredicateFunction {
		t.Fatalf("expected function kind, got %s", dialog.Kind())
	}
	if _, err := dialog.Accept(); err == nil {
		t.Fatalf("expected dynamic code to be rejected")
	}

	dialog.SetSource(`function (v) { v.authType == "basic" }`)
	issues := dialog.Check()
	if len(issues) != 1 || issues[0].Path != "visibilityPredicate" {
		t.Fatalf("expected a single predicate issue, got %v", issues)
	}

	dialog.SetSource("   ")
	predicate, err := dialog.Accept()
	if err != nil || predicate != nil {
		t.Fatalf("blank source should clear the predicate, got %v, %v", predicate, err)
	}
}
