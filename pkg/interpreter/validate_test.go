package interpreter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-endpointschema/pkg/schema"
)

func ptr[T any](v T) *T { return &v }

func compile(t *testing.T, specs ...schema.RuleSpec) []Rule {
	t.Helper()
	rules, err := CompileRules(specs)
	if err != nil {
		t.Fatalf("CompileRules: %v", err)
	}
	return rules
}

func TestRuleCheck(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		spec  schema.RuleSpec
		value any
		want  bool
	}{
		{"required empty", schema.RuleSpec{Required: true, Message: "m"}, "  ", false},
		{"optional empty skips checks", schema.RuleSpec{Kind: schema.KindEmail, Message: "m"}, "", true},
		{"email ok", schema.RuleSpec{Kind: schema.KindEmail, Message: "m"}, "ops@example.com", true},
		{"email bad", schema.RuleSpec{Kind: schema.KindEmail, Message: "m"}, "ops at example", false},
		{"url ok", schema.RuleSpec{Kind: schema.KindURL, Message: "m"}, "https://example.com/hook", true},
		{"url relative", schema.RuleSpec{Kind: schema.KindURL, Message: "m"}, "/hook", false},
		{"integer from string", schema.RuleSpec{Kind: schema.KindInteger, Message: "m"}, "42", true},
		{"integer fraction", schema.RuleSpec{Kind: schema.KindInteger, Message: "m"}, 4.5, false},
		{"numeric bounds", schema.RuleSpec{Kind: schema.KindNumber, Min: ptr(1.0), Max: ptr(10.0), Message: "m"}, 11, false},
		{"length bounds", schema.RuleSpec{Kind: schema.KindString, Min: ptr(3.0), Message: "m"}, "ab", false},
		{"exact length", schema.RuleSpec{Len: ptr(2), Message: "m"}, []any{"a", "b"}, true},
		{"pattern", schema.RuleSpec{Kind: schema.KindPattern, Pattern: `^[a-z]+$`, Message: "m"}, "Abc", false},
		{"enum numeric", schema.RuleSpec{Kind: schema.KindEnum, Enum: []any{1.0, 2.0}, Message: "m"}, 2, true},
		{"enum miss", schema.RuleSpec{Kind: schema.KindEnum, Enum: []any{"GET"}, Message: "m"}, "POST", false},
		{"method", schema.RuleSpec{Kind: schema.KindMethod, Message: "m"}, "patch", true},
		{"hex", schema.RuleSpec{Kind: schema.KindHex, Message: "m"}, "0xFF", true},
		{"regexp value", schema.RuleSpec{Kind: schema.KindRegexp, Message: "m"}, "([", false},
		{"date", schema.RuleSpec{Kind: schema.KindDate, Message: "m"}, "2024-02-29", true},
		{"object", schema.RuleSpec{Kind: schema.KindObject, Message: "m"}, map[string]any{"a": 1}, true},
		{"boolean string", schema.RuleSpec{Kind: schema.KindBoolean, Message: "m"}, "maybe", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rule := compile(t, tc.spec)[0]
			if got := rule.Check(tc.value); got != tc.want {
				t.Fatalf("Check(%v) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestValidateTree(t *testing.T) {
	t.Parallel()

	doc := schema.EndpointTypeSchema{
		SupportsRetry: true,
		Fields: []schema.FieldDefinition{
			{Key: "host", Widget: schema.WidgetInput, SortOrder: 1, Rules: []schema.RuleSpec{
				{Required: true, Message: "Host is required"},
				{Kind: schema.KindString, Max: ptr(5.0), Message: "Host is too long"},
			}},
			{Key: "port", Widget: schema.WidgetNumber, SortOrder: 2, Rules: []schema.RuleSpec{
				{Kind: schema.KindInteger, Min: ptr(1.0), Max: ptr(65535.0), Message: "Port must be 1-65535"},
			}},
		},
	}
	values := schema.FormValues{"port": 70000, RetryMaxAttempts: 11}
	result := Interpret(doc, schema.ModeIn, values)

	got := Validate(result.Tree, result.Defaults)
	want := map[string][]string{
		"host":           {"Host is required"},
		"port":           {"Port must be 1-65535"},
		RetryMaxAttempts: {"Max attempts must be between 1 and 10"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("validation mismatch (-want +got):\n%s", diff)
	}

	values = schema.FormValues{"host": "db", "port": 5432}
	result = Interpret(doc, schema.ModeIn, values)
	if errs := Validate(result.Tree, result.Defaults); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}
