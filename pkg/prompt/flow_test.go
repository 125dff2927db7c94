package prompt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-endpointschema/pkg/authoring"
	"github.com/goliatone/go-endpointschema/pkg/editor"
	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/store"
	"github.com/goliatone/go-endpointschema/pkg/testsupport"
)

// scriptedDriver replays answers in order and records every Info message.
type scriptedDriver struct {
	selects   []int
	inputs    []string
	confirms  []bool
	multis    [][]int
	textAreas []string
	infos     []string
	prompts   []string
}

var errScriptExhausted = errors.New("script exhausted")

func (s *scriptedDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.inputs) == 0 {
		return "", fmt.Errorf("input %q: %w", cfg.Message, errScriptExhausted)
	}
	val := s.inputs[0]
	s.inputs = s.inputs[1:]
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *scriptedDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.confirms) == 0 {
		return false, fmt.Errorf("confirm %q: %w", cfg.Message, errScriptExhausted)
	}
	val := s.confirms[0]
	s.confirms = s.confirms[1:]
	return val, nil
}

func (s *scriptedDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.selects) == 0 {
		return -1, fmt.Errorf("select %q: %w", cfg.Message, errScriptExhausted)
	}
	val := s.selects[0]
	s.selects = s.selects[1:]
	return val, nil
}

func (s *scriptedDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.multis) == 0 {
		return nil, fmt.Errorf("multiselect %q: %w", cfg.Message, errScriptExhausted)
	}
	val := s.multis[0]
	s.multis = s.multis[1:]
	return val, nil
}

func (s *scriptedDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.textAreas) == 0 {
		return "", fmt.Errorf("textarea %q: %w", cfg.Message, errScriptExhausted)
	}
	val := s.textAreas[0]
	s.textAreas = s.textAreas[1:]
	return val, nil
}

func (s *scriptedDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func menu(items []string, name string) int {
	for i, item := range items {
		if item == name {
			return i
		}
	}
	panic("unknown menu entry " + name)
}

func mainItem(name string) int { return menu(mainMenu, name) }
func fieldItem(name string) int { return menu(fieldMenu, name) }

func widgetIndex(kind schema.WidgetKind) int {
	for i, k := range schema.AllWidgetKinds() {
		if k == kind {
			return i
		}
	}
	panic("unknown widget " + string(kind))
}

func openSession(t *testing.T) (*authoring.Session, *store.Memory) {
	t.Helper()
	n := 0
	st := store.NewMemory(testsupport.WebhookSchema())
	s, err := authoring.Open(testsupport.Context(), st, "ep-webhook",
		authoring.WithEditorOptions(editor.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("fld-new-%d", n)
		})))
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return s, st
}

func TestFlow_AddFieldAndCommit(t *testing.T) {
	t.Parallel()

	session, st := openSession(t)
	driver := &scriptedDriver{
		selects: []int{
			mainItem(ActionAdd),
			fieldItem(FieldLabel),
			fieldItem(FieldWidget), widgetIndex(schema.WidgetPassword),
			fieldItem(FieldSave),
			mainItem(ActionCommit),
			mainItem(ActionQuit),
		},
		inputs: []string{"Signing Secret"},
	}

	if err := NewFlow(session, driver, WithOutput(&bytes.Buffer{})).Run(testsupport.Context()); err != nil {
		t.Fatalf("run: %v", err)
	}

	stored, err := st.Load(testsupport.Context(), "ep-webhook")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.SchemaVersion != "1.0.1" {
		t.Fatalf("expected bumped version, got %q", stored.SchemaVersion)
	}
	added := stored.Fields[len(stored.Fields)-1]
	want := schema.FieldDefinition{
		ID: "fld-new-1", Key: "signingSecret", Label: "Signing Secret",
		Widget: schema.WidgetPassword, SortOrder: 9,
	}
	if diff := cmp.Diff(want, added); diff != "" {
		t.Fatalf("added field mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Committed ep-webhook version 1.0.1."}, driver.infos); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestFlow_SaveFailureKeepsFieldOpen(t *testing.T) {
	t.Parallel()

	session, _ := openSession(t)
	driver := &scriptedDriver{
		selects: []int{
			mainItem(ActionAdd),
			fieldItem(FieldSave),
			fieldItem(FieldCancel),
			mainItem(ActionQuit),
		},
	}

	if err := NewFlow(session, driver).Run(testsupport.Context()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(driver.infos) != 1 {
		t.Fatalf("expected one report, got %v", driver.infos)
	}
	report := driver.infos[0]
	if !strings.HasPrefix(report, "save failed") || !strings.Contains(report, "label is required") {
		t.Fatalf("expected validation issues in report, got %q", report)
	}
	if session.Editor().Len() != 8 {
		t.Fatalf("cancel must drop the provisional row, got %d fields", session.Editor().Len())
	}
}

func TestFlow_EditMoveDeleteAndQuitConfirmation(t *testing.T) {
	t.Parallel()

	session, st := openSession(t)
	driver := &scriptedDriver{
		selects: []int{
			mainItem(ActionEdit), 0,
			fieldItem(FieldRules),
			fieldItem(FieldVisibility),
			fieldItem(FieldModes),
			fieldItem(FieldSave),
			mainItem(ActionMoveDown), 0,
			mainItem(ActionDelete), 7,
			mainItem(ActionQuit),
			mainItem(ActionQuit),
		},
		textAreas: []string{`[{"required": true, "message": "URL is required"}]`},
		inputs:    []string{`formValues.authType === "none"`},
		multis:    [][]int{{1}},
		confirms:  []bool{true, false, true},
	}

	if err := NewFlow(session, driver).Run(testsupport.Context()); err != nil {
		t.Fatalf("run: %v", err)
	}

	fields := session.Editor().Fields()
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	if diff := cmp.Diff([]string{"method", "url", "authType", "username", "password", "token", "timeoutMs"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	url := fields[1]
	if len(url.Rules) != 1 || !url.Rules[0].Required {
		t.Fatalf("expected rules replaced from text, got %+v", url.Rules)
	}
	if url.Visibility == nil || url.Visibility.Source != `formValues.authType === "none"` {
		t.Fatalf("expected predicate, got %+v", url.Visibility)
	}
	if diff := cmp.Diff([]schema.Mode{schema.ModeOut}, url.Modes); diff != "" {
		t.Fatalf("modes mismatch (-want +got):\n%s", diff)
	}

	stored, err := st.Load(testsupport.Context(), "ep-webhook")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(stored.Fields) != 8 {
		t.Fatalf("quitting must not commit, store has %d fields", len(stored.Fields))
	}
}

func TestFlow_MoveUpSwapsWithPredecessor(t *testing.T) {
	t.Parallel()

	session, _ := openSession(t)
	driver := &scriptedDriver{
		selects: []int{
			mainItem(ActionMoveUp), 2,
			mainItem(ActionMoveUp), 0,
			mainItem(ActionQuit),
		},
		confirms: []bool{true},
	}

	if err := NewFlow(session, driver).Run(testsupport.Context()); err != nil {
		t.Fatalf("run: %v", err)
	}

	fields := session.Editor().Fields()
	keys := make([]string, 0, len(fields))
	for i, f := range fields {
		keys = append(keys, f.Key)
		if f.SortOrder != i+1 {
			t.Fatalf("expected dense sort order, %s has %d at index %d", f.Key, f.SortOrder, i)
		}
	}
	want := []string{"url", "authType", "method", "username", "password", "token", "timeoutMs", "headers"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Field is already at the edge of the list."}, driver.infos); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestFlow_InvalidPredicateIsReported(t *testing.T) {
	t.Parallel()

	session, _ := openSession(t)
	driver := &scriptedDriver{
		selects: []int{
			mainItem(ActionEdit), 0,
			fieldItem(FieldVisibility),
			fieldItem(FieldCancel),
			mainItem(ActionQuit),
		},
		inputs: []string{`eval("1")`},
	}

	if err := NewFlow(session, driver).Run(testsupport.Context()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(driver.infos) != 1 || !strings.HasPrefix(driver.infos[0], "visibility failed") {
		t.Fatalf("expected predicate report, got %v", driver.infos)
	}
	if got := session.Editor().Fields()[0].Visibility; got != nil {
		t.Fatalf("cancelled edit must leave the field unchanged, got %+v", got)
	}
}

func TestFlow_PreviewWritesTable(t *testing.T) {
	t.Parallel()

	session, _ := openSession(t)
	out := &bytes.Buffer{}
	driver := &scriptedDriver{selects: []int{mainItem(ActionPreview), mainItem(ActionQuit)}}

	if err := NewFlow(session, driver, WithOutput(out)).Run(testsupport.Context()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "HTTP Webhook (http.webhook)") || !strings.Contains(out.String(), "Mode OUT") {
		t.Fatalf("unexpected preview output:\n%s", out.String())
	}
}

func TestFlow_DriverErrorsEndTheLoop(t *testing.T) {
	t.Parallel()

	session, _ := openSession(t)
	driver := &scriptedDriver{}
	if err := NewFlow(session, driver).Run(testsupport.Context()); !errors.Is(err, errScriptExhausted) {
		t.Fatalf("expected driver error, got %v", err)
	}
}

func TestPropertyText(t *testing.T) {
	t.Parallel()

	options := []any{
		map[string]any{"label": "None", "value": "none"},
		map[string]any{"label": "Basic", "value": "basic"},
	}
	if got := propertyText(options); got != "None=none\nBasic=basic" {
		t.Fatalf("unexpected options text %q", got)
	}
	if got := propertyText(map[string]any{"b": "2", "a": "1"}); got != "a=1\nb=2" {
		t.Fatalf("unexpected map text %q", got)
	}
	if got := propertyText(100.0); got != "100" {
		t.Fatalf("unexpected number text %q", got)
	}
}
