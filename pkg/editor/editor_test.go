package editor

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-endpointschema/pkg/schema"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("fld-%d", n)
	}
}

func seedFields() []schema.FieldDefinition {
	return []schema.FieldDefinition{
		{ID: "a", Key: "host", Label: "Host", Widget: schema.WidgetInput, SortOrder: 1},
		{ID: "b", Key: "port", Label: "Port", Widget: schema.WidgetNumber, SortOrder: 2},
		{ID: "c", Key: "token", Label: "Token", Widget: schema.WidgetPassword, SortOrder: 3},
	}
}

func ids(fields []schema.FieldDefinition) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.ID)
	}
	return out
}

func assertDense(t *testing.T, fields []schema.FieldDefinition) {
	t.Helper()
	for idx, f := range fields {
		if f.SortOrder != idx+1 {
			t.Fatalf("sortOrder not dense at %d: %d", idx, f.SortOrder)
		}
	}
}

func assertUniqueKeys(t *testing.T, fields []schema.FieldDefinition) {
	t.Helper()
	seen := map[string]bool{}
	for _, f := range fields {
		if f.Key == "" {
			continue
		}
		if seen[f.Key] {
			t.Fatalf("duplicate key %q in %v", f.Key, fields)
		}
		seen[f.Key] = true
	}
}

func TestNew_OrdersAndRenumbers(t *testing.T) {
	t.Parallel()

	ed := New([]schema.FieldDefinition{
		{ID: "x", Key: "x", SortOrder: 20},
		{ID: "y", Key: "y", SortOrder: 5},
		{ID: "z", Key: "z", SortOrder: 20},
	})
	fields := ed.Fields()
	if diff := cmp.Diff([]string{"y", "x", "z"}, ids(fields)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	assertDense(t, fields)
}

func TestAddSaveMintsPermanentID(t *testing.T) {
	t.Parallel()

	ed := New(seedFields(), WithIDGenerator(sequentialIDs()))
	id, err := ed.Add()
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !ed.IsEditing() || !ed.IsProvisional() {
		t.Fatalf("expected provisional edit after Add")
	}
	buffer, _ := ed.Buffer()
	if buffer.Widget != schema.DefaultWidget || buffer.SortOrder != 4 {
		t.Fatalf("unexpected provisional defaults: %+v", buffer)
	}

	if err := ed.UpdateBuffer(func(f *schema.FieldDefinition) {
		f.Key = "path"
		f.Label = "Path"
	}); err != nil {
		t.Fatalf("UpdateBuffer: %v", err)
	}
	if err := ed.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ed.IsEditing() {
		t.Fatalf("expected idle after save")
	}
	fields := ed.Fields()
	last := fields[len(fields)-1]
	if last.ID == id || last.ID != "fld-1" {
		t.Fatalf("expected permanent id fld-1, got %q", last.ID)
	}
	assertDense(t, fields)
}

func TestSaveReportsFieldErrorsAndStaysEditing(t *testing.T) {
	t.Parallel()

	ed := New(seedFields(), WithSupportedModes([]schema.Mode{schema.ModeIn}))
	if _, err := ed.Add(); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_ = ed.UpdateBuffer(func(f *schema.FieldDefinition) {
		f.Key = "port"
		f.Modes = []schema.Mode{schema.ModeOut}
		f.Rules = []schema.RuleSpec{{Min: ptr(10.0), Max: ptr(5.0), Message: "x"}}
	})

	err := ed.Save()
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got := make([]string, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		got = append(got, issue.Path)
	}
	want := []string{"label", "modes[0]", "validationRules[0].min", "key"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issue paths mismatch (-want +got):\n%s", diff)
	}
	if !ed.IsEditing() {
		t.Fatalf("editor must stay in editing after a failed save")
	}
}

func TestSecondEditIsRejectedWithoutMutation(t *testing.T) {
	t.Parallel()

	ed := New(seedFields())
	if err := ed.StartEdit("a"); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}
	before := ed.Fields()
	beforeBuffer, _ := ed.Buffer()

	err := ed.StartEdit("b")
	var violation *ConcurrencyViolation
	if !errors.As(err, &violation) || !errors.Is(err, ErrEditInProgress) {
		t.Fatalf("expected concurrency violation, got %v", err)
	}
	if err.Error() != "finish editing first" {
		t.Fatalf("unexpected notice %q", err.Error())
	}
	if _, err := ed.Add(); !errors.Is(err, ErrEditInProgress) {
		t.Fatalf("expected Add to be refused, got %v", err)
	}

	if diff := cmp.Diff(before, ed.Fields()); diff != "" {
		t.Fatalf("fields mutated (-want +got):\n%s", diff)
	}
	afterBuffer, _ := ed.Buffer()
	if diff := cmp.Diff(beforeBuffer, afterBuffer); diff != "" {
		t.Fatalf("buffer mutated (-want +got):\n%s", diff)
	}
	if id, _ := ed.EditingID(); id != "a" {
		t.Fatalf("expected a to remain open, got %q", id)
	}
}

func TestCancelProvisionalRemovesOnlyThatRow(t *testing.T) {
	t.Parallel()

	ed := New(seedFields())
	before := ed.Fields()
	if _, err := ed.Add(); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_ = ed.UpdateBuffer(func(f *schema.FieldDefinition) { f.Key = "draft" })
	ed.Cancel()

	if ed.IsEditing() {
		t.Fatalf("expected idle after cancel")
	}
	if diff := cmp.Diff(before, ed.Fields()); diff != "" {
		t.Fatalf("fields changed (-want +got):\n%s", diff)
	}
}

func TestCancelRestoresPreEditValues(t *testing.T) {
	t.Parallel()

	ed := New(seedFields())
	before := ed.Fields()
	if err := ed.StartEdit("b"); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}
	_ = ed.UpdateBuffer(func(f *schema.FieldDefinition) {
		f.Label = "Changed"
		f.Properties = map[string]any{"min": 1}
	})
	ed.CancelEdit()

	if diff := cmp.Diff(before, ed.Fields()); diff != "" {
		t.Fatalf("fields changed (-want +got):\n%s", diff)
	}
}

func TestMoveIsNoOpAtBoundsAndWhileEditing(t *testing.T) {
	t.Parallel()

	ed := New(seedFields())
	if ed.MoveUp(0) || ed.MoveDown(2) || ed.MoveUp(9) {
		t.Fatalf("boundary moves must be no-ops")
	}
	if !ed.MoveDown(0) {
		t.Fatalf("expected move down to succeed")
	}
	if diff := cmp.Diff([]string{"b", "a", "c"}, ids(ed.Fields())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	assertDense(t, ed.Fields())

	_ = ed.StartEdit("c")
	if ed.MoveUp(2) {
		t.Fatalf("moves must be no-ops while editing")
	}
}

func TestDeleteSkipsEditingRowAndKeepsAnchor(t *testing.T) {
	t.Parallel()

	ed := New(seedFields())
	_ = ed.StartEdit("c")
	if ed.Delete("c") {
		t.Fatalf("deleting the row being edited must be a no-op")
	}
	if !ed.Delete("a") {
		t.Fatalf("expected delete of another row to succeed")
	}
	_ = ed.UpdateBuffer(func(f *schema.FieldDefinition) { f.Label = "Secret" })
	if err := ed.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	fields := ed.Fields()
	if diff := cmp.Diff([]string{"b", "c"}, ids(fields)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if fields[1].Label != "Secret" {
		t.Fatalf("expected edit to land on c, got %+v", fields[1])
	}
	assertDense(t, fields)
}

func TestFlushPendingEdit(t *testing.T) {
	t.Parallel()

	ed := New(seedFields())
	idle, err := ed.FlushPendingEdit()
	if err != nil {
		t.Fatalf("flush idle: %v", err)
	}
	if diff := cmp.Diff(ed.Fields(), idle); diff != "" {
		t.Fatalf("idle flush changed the list (-want +got):\n%s", diff)
	}

	_ = ed.StartEdit("a")
	_ = ed.UpdateBuffer(func(f *schema.FieldDefinition) { f.Key = "9bad" })
	if _, err := ed.FlushPendingEdit(); err == nil {
		t.Fatalf("expected flush to surface the validation failure")
	}
	if !ed.IsEditing() {
		t.Fatalf("failed flush must keep the edit open")
	}

	_ = ed.UpdateBuffer(func(f *schema.FieldDefinition) { f.Key = "hostname" })
	flushed, err := ed.FlushPendingEdit()
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	if flushed[0].Key != "hostname" || ed.IsEditing() {
		t.Fatalf("expected merged edit and idle editor, got %+v", flushed[0])
	}
}

func TestRandomSequencesKeepOrderDenseAndKeysUnique(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	ed := New(nil, WithIDGenerator(sequentialIDs()))
	next := 0

	for step := 0; step < 500; step++ {
		fields := ed.Fields()
		switch op := rng.Intn(5); {
		case op == 0 || len(fields) == 0:
			if _, err := ed.Add(); err != nil {
				t.Fatalf("Add: %v", err)
			}
			key := fmt.Sprintf("k%d", rng.Intn(40))
			if rng.Intn(3) == 0 {
				next++
				key = fmt.Sprintf("fresh%d", next)
			}
			_ = ed.UpdateBuffer(func(f *schema.FieldDefinition) {
				f.Key = key
				f.Label = key
			})
			if err := ed.Save(); err != nil {
				ed.Cancel()
			}
		case op == 1:
			ed.Delete(fields[rng.Intn(len(fields))].ID)
		case op == 2:
			ed.MoveUp(rng.Intn(len(fields)))
		case op == 3:
			ed.MoveDown(rng.Intn(len(fields)))
		default:
			idx := rng.Intn(len(fields))
			_ = ed.StartEdit(fields[idx].ID)
			other := fields[rng.Intn(len(fields))].Key
			_ = ed.UpdateBuffer(func(f *schema.FieldDefinition) { f.Key = other })
			if err := ed.Save(); err != nil {
				ed.Cancel()
			}
		}

		if ed.IsEditing() {
			t.Fatalf("step %d left the editor editing", step)
		}
		got := ed.Fields()
		assertDense(t, got)
		assertUniqueKeys(t, got)
	}
}

func TestDialogsTargetTheEditedField(t *testing.T) {
	t.Parallel()

	ed := New(seedFields())
	if _, err := ed.OpenWidgetDialog("b"); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}
	_ = ed.StartEdit("b")
	if _, err := ed.OpenRuleDialog("a"); !errors.Is(err, ErrDialogTarget) {
		t.Fatalf("expected ErrDialogTarget, got %v", err)
	}

	wd, err := ed.OpenWidgetDialog("b")
	if err != nil {
		t.Fatalf("OpenWidgetDialog: %v", err)
	}
	wd.Set("min", 1)
	wd.Set("max", 65535)
	if err := ed.ApplyWidgetDialog(wd); err != nil {
		t.Fatalf("ApplyWidgetDialog: %v", err)
	}

	rd, _ := ed.OpenRuleDialog("b")
	if _, err := rd.Add(schema.RuleSpec{Required: true, Message: "Port is required"}); err != nil {
		t.Fatalf("Add rule: %v", err)
	}
	if err := ed.ApplyRuleDialog(rd); err != nil {
		t.Fatalf("ApplyRuleDialog: %v", err)
	}

	pd, _ := ed.OpenPredicateDialog("b")
	pd.SetSource(`formValues.mode == "tcp"`)
	if err := ed.ApplyPredicateDialog(pd); err != nil {
		t.Fatalf("ApplyPredicateDialog: %v", err)
	}

	if err := ed.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved := ed.Fields()[1]
	want := schema.FieldDefinition{
		ID:         "b",
		Key:        "port",
		Label:      "Port",
		Widget:     schema.WidgetNumber,
		SortOrder:  2,
		Properties: map[string]any{"min": 1.0, "max": 65535.0},
		Rules:      []schema.RuleSpec{{Required: true, Message: "Port is required"}},
		Visibility: schema.NewPredicate(`formValues.mode == "tcp"`),
	}
	if diff := cmp.Diff(want, saved); diff != "" {
		t.Fatalf("saved field mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyPredicateDialogRejectsForbiddenSource(t *testing.T) {
	t.Parallel()

	ed := New(seedFields())
	_ = ed.StartEdit("a")
	pd, _ := ed.OpenPredicateDialog("a")
	pd.SetSource(`formValues.x == eval("1")`)
	if err := ed.ApplyPredicateDialog(pd); err == nil {
		t.Fatalf("expected forbidden predicate to be rejected")
	}
	buffer, _ := ed.Buffer()
	if buffer.Visibility != nil {
		t.Fatalf("buffer must be untouched on rejection")
	}
}

func TestSuggestKey(t *testing.T) {
	t.Parallel()

	ed := New(seedFields())
	cases := map[string]string{
		"Base URL":      "baseUrl",
		"Host":          "host2",
		"  max retries": "maxRetries",
		"2FA code":      "_2FaCode",
		"!!!":           "field",
	}
	for label, want := range cases {
		if got := ed.SuggestKey(label); got != want {
			t.Fatalf("SuggestKey(%q) = %q, want %q", label, got, want)
		}
		if !schema.ValidKey(ed.SuggestKey(label)) {
			t.Fatalf("SuggestKey(%q) produced an invalid key", label)
		}
	}
}

func ptr[T any](v T) *T { return &v }
