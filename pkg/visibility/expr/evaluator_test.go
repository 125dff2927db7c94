package expr

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-endpointschema/pkg/visibility"
)

func evalSource(t *testing.T, source string, values map[string]any) bool {
	t.Helper()
	ok, err := New().Eval("field", source, visibility.Context{Values: values})
	if err != nil {
		t.Fatalf("Eval(%q) returned error: %v", source, err)
	}
	return ok
}

func TestEvaluatorStrictEquality(t *testing.T) {
	t.Parallel()

	source := `formValues.authType === "basic"`
	if evalSource(t, source, map[string]any{"authType": "none"}) {
		t.Fatalf("expected false for authType none")
	}
	if !evalSource(t, source, map[string]any{"authType": "basic"}) {
		t.Fatalf("expected true for authType basic")
	}
}

func TestEvaluatorLooseEqualityCoercion(t *testing.T) {
	t.Parallel()

	if !evalSource(t, "formValues.enabled == true", map[string]any{"enabled": "true"}) {
		t.Fatalf("expected string true to loosely equal true")
	}
	if !evalSource(t, "formValues.port == 8080", map[string]any{"port": "8080"}) {
		t.Fatalf("expected numeric string to loosely equal number")
	}
	if evalSource(t, "formValues.port === 8080", map[string]any{"port": "8080"}) {
		t.Fatalf("expected strict equality to reject string vs number")
	}
	if !evalSource(t, "formValues.port === 8080", map[string]any{"port": 8080}) {
		t.Fatalf("expected int to strictly equal number literal")
	}
}

func TestEvaluatorOrderingAndComposition(t *testing.T) {
	t.Parallel()

	values := map[string]any{"retries": 3, "mode": "OUT", "tags": []any{"a", "b"}}
	cases := map[string]bool{
		`formValues.retries > 2 && formValues.mode != "IN"`:  true,
		`formValues.retries >= 4 || formValues.mode == "IN"`: false,
		`!(formValues.retries < 3)`:                          true,
		`formValues.tags.length == 2`:                        true,
		`formValues["mode"] === 'OUT'`:                       true,
		`formValues.missing === undefined`:                   true,
		`formValues.missing == null && !formValues.missing`:  true,
		`formValues.retries <= -1`:                           false,
		`formValues.nested.deep.value === "x"`:               false,
	}
	for source, want := range cases {
		if got := evalSource(t, source, values); got != want {
			t.Fatalf("Eval(%q) = %v, want %v", source, got, want)
		}
	}
}

func TestEvaluatorNestedLookup(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"auth": map[string]any{"kind": "oauth"},
	}
	if !evalSource(t, `formValues.auth.kind == "oauth"`, values) {
		t.Fatalf("expected nested map lookup to match")
	}
}

func TestFunctionForms(t *testing.T) {
	t.Parallel()

	sources := []string{
		`function (values) { return values.authType === "basic"; }`,
		`function visible(v) { return v.authType == "basic" }`,
		`(v) => { return v.authType === "basic"; }`,
		`v => { return v.authType === "basic" }`,
	}
	for _, source := range sources {
		if Classify(source) != KindFunction {
			t.Fatalf("expected %q to classify as function", source)
		}
		program, err := Compile(source)
		if err != nil {
			t.Fatalf("Compile(%q): %v", source, err)
		}
		ok, err := program.Eval(map[string]any{"authType": "basic"})
		if err != nil || !ok {
			t.Fatalf("Eval(%q) = %v, %v; want true", source, ok, err)
		}
		ok, err = program.Eval(map[string]any{"authType": "none"})
		if err != nil || ok {
			t.Fatalf("Eval(%q) = %v, %v; want false", source, ok, err)
		}
	}
}

func TestCompileRejectsForbiddenConstructs(t *testing.T) {
	t.Parallel()

	sources := []string{
		`eval("formValues.a") == 1`,
		`formValues.constructor.constructor == 1`,
		`function (v) { return new Function("return 1"); }`,
		`formValues.__proto__ == null`,
		`(v) => { return globalThis.process; }`,
	}
	for _, source := range sources {
		_, err := Compile(source)
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("Compile(%q) error = %v, want ErrForbidden", source, err)
		}
	}
}

func TestCompileRequiresReturnInFunctions(t *testing.T) {
	t.Parallel()

	for _, source := range []string{
		`function (v) { v.enabled == true }`,
		`(v) => v.enabled == true`,
	} {
		if _, err := Compile(source); !errors.Is(err, ErrMissingReturn) {
			t.Fatalf("Compile(%q) error = %v, want ErrMissingReturn", source, err)
		}
	}
}

func TestCompileRejectsOutOfGrammar(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		`enabled == true`:                            "unknown identifier",
		`formValues.a = 1`:                           "assignment",
		`formValues.a.toString() == "x"`:             "function calls",
		`formValues[formValues.key] == 1`:            "computed member access",
		`formValues.a + 1 == 2`:                      "unsupported character",
		`function (v) { if (v.a) { return true; } }`: "single return statement",
		`function (a, b) { return a.x; }`:            "single values parameter",
		`formValues.a == "unterminated`:              "unterminated",
		`(formValues.a == 1`:                         "missing closing",
	}
	for source, fragment := range cases {
		_, err := Compile(source)
		if err == nil {
			t.Fatalf("Compile(%q) succeeded; want error containing %q", source, fragment)
		}
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("Compile(%q) error = %q; want fragment %q", source, err.Error(), fragment)
		}
	}
}

func TestBlankPredicateIsVisible(t *testing.T) {
	t.Parallel()

	if !evalSource(t, "   ", nil) {
		t.Fatalf("expected blank predicate to be visible")
	}
	if Classify("") != KindExpression {
		t.Fatalf("expected blank source to classify as expression")
	}
}

func TestEvaluatorFuncAdapter(t *testing.T) {
	t.Parallel()

	var eval visibility.Evaluator = visibility.EvaluatorFunc(func(fieldKey, predicate string, ctx visibility.Context) (bool, error) {
		return fieldKey == "keep", nil
	})
	if ok, _ := eval.Eval("keep", "", visibility.Context{}); !ok {
		t.Fatalf("expected adapter to delegate")
	}
}
