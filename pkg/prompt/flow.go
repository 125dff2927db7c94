// Package prompt drives an authoring session from a terminal. The menu loop
// maps each choice onto one editor or session operation, so every rule the
// editor enforces (single open edit, validation on save, commit flushing)
// applies unchanged to interactive use.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-endpointschema/pkg/authoring"
	"github.com/goliatone/go-endpointschema/pkg/editor"
	"github.com/goliatone/go-endpointschema/pkg/rules"
	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/widgets"
)

// Main menu entries.
const (
	ActionAdd      = "Add field"
	ActionEdit     = "Edit field"
	ActionMoveUp   = "Move field up"
	ActionMoveDown = "Move field down"
	ActionDelete   = "Delete field"
	ActionPreview  = "Preview"
	ActionCommit   = "Commit"
	ActionQuit     = "Quit"
)

// Field menu entries, shown while a field is open for edit.
const (
	FieldLabel       = "Label"
	FieldKey         = "Key"
	FieldDescription = "Description"
	FieldWidget      = "Widget"
	FieldModes       = "Modes"
	FieldProperties  = "Widget properties"
	FieldRules       = "Validation rules"
	FieldVisibility  = "Visibility"
	FieldSave        = "Save"
	FieldCancel      = "Cancel"
)

var (
	mainMenu = []string{
		ActionAdd, ActionEdit, ActionMoveUp, ActionMoveDown, ActionDelete,
		ActionPreview, ActionCommit, ActionQuit,
	}
	fieldMenu = []string{
		FieldLabel, FieldKey, FieldDescription, FieldWidget, FieldModes,
		FieldProperties, FieldRules, FieldVisibility, FieldSave, FieldCancel,
	}
)

// Option configures a Flow.
type Option func(*Flow)

// WithOutput sets where previews are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(f *Flow) {
		if w != nil {
			f.out = w
		}
	}
}

// WithLogger sets the logger for rejected operations.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Flow is the interactive authoring loop over one session.
type Flow struct {
	session *authoring.Session
	driver  Driver
	out     io.Writer
	logger  *slog.Logger
}

// NewFlow binds driver to session.
func NewFlow(session *authoring.Session, driver Driver, opts ...Option) *Flow {
	f := &Flow{
		session: session,
		driver:  driver,
		out:     os.Stdout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Run shows the main menu until the author quits. Operation failures are
// reported through Driver.Info and the loop continues; only driver errors,
// including ErrAborted, end the loop early.
func (f *Flow) Run(ctx context.Context) error {
	for {
		header := f.session.Header()
		choice, err := f.driver.Select(ctx, SelectConfig{
			Message:  fmt.Sprintf("%s (%d fields)", headerTitle(header), f.session.Editor().Len()),
			Options:  mainMenu,
			PageSize: len(mainMenu),
		})
		if err != nil {
			return err
		}
		if choice < 0 || choice >= len(mainMenu) {
			continue
		}

		var done bool
		switch mainMenu[choice] {
		case ActionAdd:
			err = f.add(ctx)
		case ActionEdit:
			err = f.edit(ctx)
		case ActionMoveUp:
			err = f.move(ctx, true)
		case ActionMoveDown:
			err = f.move(ctx, false)
		case ActionDelete:
			err = f.delete(ctx)
		case ActionPreview:
			err = f.preview(ctx)
		case ActionCommit:
			err = f.commit(ctx)
		case ActionQuit:
			done, err = f.quit(ctx)
		}
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (f *Flow) add(ctx context.Context) error {
	id, err := f.session.Editor().Add()
	if err != nil {
		return f.report(ctx, "add", err)
	}
	return f.editField(ctx, id)
}

func (f *Flow) edit(ctx context.Context) error {
	idx, ok, err := f.pickField(ctx, "Field to edit")
	if err != nil || !ok {
		return err
	}
	id := f.session.Editor().Fields()[idx].ID
	if err := f.session.Editor().StartEdit(id); err != nil {
		return f.report(ctx, "start edit", err)
	}
	return f.editField(ctx, id)
}

func (f *Flow) move(ctx context.Context, up bool) error {
	idx, ok, err := f.pickField(ctx, "Field to move")
	if err != nil || !ok {
		return err
	}
	ed := f.session.Editor()
	var moved bool
	if up {
		moved = ed.MoveUp(idx)
	} else {
		moved = ed.MoveDown(idx)
	}
	if !moved {
		return f.driver.Info(ctx, "Field is already at the edge of the list.")
	}
	return nil
}

func (f *Flow) delete(ctx context.Context) error {
	idx, ok, err := f.pickField(ctx, "Field to delete")
	if err != nil || !ok {
		return err
	}
	field := f.session.Editor().Fields()[idx]
	confirmed, err := f.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Delete %s?", describe(field))})
	if err != nil || !confirmed {
		return err
	}
	if !f.session.Editor().Delete(field.ID) {
		return f.driver.Info(ctx, "Field was not deleted.")
	}
	return nil
}

func (f *Flow) preview(ctx context.Context) error {
	if err := f.session.Preview().WriteText(f.out); err != nil {
		return f.report(ctx, "preview", err)
	}
	return nil
}

func (f *Flow) commit(ctx context.Context) error {
	committed, err := f.session.Commit(ctx)
	if err != nil {
		return f.report(ctx, "commit", err)
	}
	return f.driver.Info(ctx, fmt.Sprintf("Committed %s version %s.", committed.ID, committed.SchemaVersion))
}

func (f *Flow) quit(ctx context.Context) (bool, error) {
	if f.session.Editor().IsEditing() || f.session.Dirty() {
		return f.driver.Confirm(ctx, ConfirmConfig{Message: "Discard uncommitted changes?"})
	}
	return true, nil
}

// editField runs the field menu until the edit is saved or cancelled.
func (f *Flow) editField(ctx context.Context, id string) error {
	ed := f.session.Editor()
	for ed.IsEditing() {
		buffer, _ := ed.Buffer()
		choice, err := f.driver.Select(ctx, SelectConfig{
			Message:  "Editing " + describe(buffer),
			Options:  fieldMenu,
			PageSize: len(fieldMenu),
		})
		if err != nil {
			return err
		}
		if choice < 0 || choice >= len(fieldMenu) {
			continue
		}

		switch fieldMenu[choice] {
		case FieldLabel:
			err = f.editLabel(ctx, buffer)
		case FieldKey:
			err = f.editKey(ctx, buffer)
		case FieldDescription:
			err = f.editDescription(ctx, buffer)
		case FieldWidget:
			err = f.editWidget(ctx, buffer)
		case FieldModes:
			err = f.editModes(ctx, buffer)
		case FieldProperties:
			err = f.editProperties(ctx, id)
		case FieldRules:
			err = f.editRules(ctx, id)
		case FieldVisibility:
			err = f.editVisibility(ctx, id)
		case FieldSave:
			if saveErr := ed.Save(); saveErr != nil {
				err = f.report(ctx, "save", saveErr)
			}
		case FieldCancel:
			ed.Cancel()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (f *Flow) editLabel(ctx context.Context, buffer schema.FieldDefinition) error {
	label, err := f.driver.Input(ctx, InputConfig{Message: "Label", Default: buffer.Label})
	if err != nil {
		return err
	}
	ed := f.session.Editor()
	suggested := ed.SuggestKey(label)
	return ed.UpdateBuffer(func(def *schema.FieldDefinition) {
		def.Label = strings.TrimSpace(label)
		if strings.TrimSpace(def.Key) == "" {
			def.Key = suggested
		}
	})
}

func (f *Flow) editKey(ctx context.Context, buffer schema.FieldDefinition) error {
	def := buffer.Key
	if def == "" {
		def = f.session.Editor().SuggestKey(buffer.Label)
	}
	key, err := f.driver.Input(ctx, InputConfig{
		Message: "Key",
		Default: def,
		Help:    "Letters, digits and underscores; must not start with a digit.",
		Validator: func(s string) error {
			if !schema.ValidKey(strings.TrimSpace(s)) {
				return errors.New("key must match ^[A-Za-z_][A-Za-z0-9_]*$")
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	return f.session.Editor().UpdateBuffer(func(d *schema.FieldDefinition) {
		d.Key = strings.TrimSpace(key)
	})
}

func (f *Flow) editDescription(ctx context.Context, buffer schema.FieldDefinition) error {
	text, err := f.driver.TextArea(ctx, TextAreaConfig{Message: "Description", Default: buffer.Description})
	if err != nil {
		return err
	}
	return f.session.Editor().UpdateBuffer(func(d *schema.FieldDefinition) {
		d.Description = strings.TrimSpace(text)
	})
}

func (f *Flow) editWidget(ctx context.Context, buffer schema.FieldDefinition) error {
	kinds := schema.AllWidgetKinds()
	options := make([]string, len(kinds))
	current := 0
	for i, kind := range kinds {
		options[i] = string(kind)
		if kind == buffer.Widget {
			current = i
		}
	}
	choice, err := f.driver.Select(ctx, SelectConfig{Message: "Widget", Options: options, DefaultIndex: current})
	if err != nil {
		return err
	}
	if choice < 0 || choice >= len(kinds) {
		return nil
	}
	return f.session.Editor().SetWidget(kinds[choice])
}

func (f *Flow) editModes(ctx context.Context, buffer schema.FieldDefinition) error {
	modes := f.session.Editor().SupportedModes()
	if len(modes) == 0 {
		modes = schema.AllModes()
	}
	options := make([]string, len(modes))
	var defaults []int
	for i, mode := range modes {
		options[i] = string(mode)
		for _, selected := range buffer.Modes {
			if selected == mode {
				defaults = append(defaults, i)
			}
		}
	}
	picked, err := f.driver.MultiSelect(ctx, SelectConfig{
		Message:  "Modes (none selected means every mode)",
		Options:  options,
		Defaults: defaults,
	})
	if err != nil {
		return err
	}
	sort.Ints(picked)
	var chosen []schema.Mode
	for _, idx := range picked {
		if idx >= 0 && idx < len(modes) {
			chosen = append(chosen, modes[idx])
		}
	}
	return f.session.Editor().UpdateBuffer(func(d *schema.FieldDefinition) {
		d.Modes = chosen
	})
}

func (f *Flow) editProperties(ctx context.Context, id string) error {
	ed := f.session.Editor()
	dialog, err := ed.OpenWidgetDialog(id)
	if err != nil {
		return f.report(ctx, "widget properties", err)
	}
	if !dialog.Supported() {
		return f.driver.Info(ctx, fmt.Sprintf("Widget %q has no configurable properties.", dialog.Kind()))
	}

	for _, prop := range dialog.Fields() {
		current, _ := dialog.Value(prop.Key)
		var text string
		switch prop.Type {
		case widgets.PropertyOptions, widgets.PropertyMap:
			text, err = f.driver.TextArea(ctx, TextAreaConfig{
				Message: prop.Label,
				Default: propertyText(current),
				Help:    joinHelp(prop.Help, "One label=value pair per line."),
			})
		default:
			text, err = f.driver.Input(ctx, InputConfig{
				Message: prop.Label,
				Default: propertyText(current),
				Help:    joinHelp(prop.Help, strings.Join(prop.Choices, ", ")),
			})
		}
		if err != nil {
			return err
		}
		if setErr := dialog.SetText(prop.Key, text); setErr != nil {
			return f.report(ctx, "widget properties", setErr)
		}
	}

	if err := ed.ApplyWidgetDialog(dialog); err != nil {
		return f.report(ctx, "widget properties", err)
	}
	return nil
}

func (f *Flow) editRules(ctx context.Context, id string) error {
	ed := f.session.Editor()
	dialog, err := ed.OpenRuleDialog(id)
	if err != nil {
		return f.report(ctx, "validation rules", err)
	}
	if err := dialog.SwitchMode(rules.ModeText); err != nil {
		return f.report(ctx, "validation rules", err)
	}
	text, err := f.driver.TextArea(ctx, TextAreaConfig{
		Message: "Validation rules (JSON)",
		Default: dialog.Text(),
		Help:    `A JSON array such as [{"required": true, "message": "Name is required"}].`,
	})
	if err != nil {
		return err
	}
	if err := dialog.SetText(text); err != nil {
		return f.report(ctx, "validation rules", err)
	}
	if err := ed.ApplyRuleDialog(dialog); err != nil {
		return f.report(ctx, "validation rules", err)
	}
	return nil
}

func (f *Flow) editVisibility(ctx context.Context, id string) error {
	ed := f.session.Editor()
	dialog, err := ed.OpenPredicateDialog(id)
	if err != nil {
		return f.report(ctx, "visibility", err)
	}
	source, err := f.driver.Input(ctx, InputConfig{
		Message: "Visibility predicate",
		Default: dialog.Source(),
		Help:    `Leave blank to always show. Example: formValues.authType === "basic"`,
	})
	if err != nil {
		return err
	}
	dialog.SetSource(source)
	if err := ed.ApplyPredicateDialog(dialog); err != nil {
		return f.report(ctx, "visibility", err)
	}
	return nil
}

// pickField asks for a row. ok is false when the list is empty.
func (f *Flow) pickField(ctx context.Context, message string) (int, bool, error) {
	fields := f.session.Editor().Fields()
	if len(fields) == 0 {
		return 0, false, f.driver.Info(ctx, "No fields yet.")
	}
	options := make([]string, len(fields))
	for i, field := range fields {
		options[i] = fmt.Sprintf("%d. %s", i+1, describe(field))
	}
	idx, err := f.driver.Select(ctx, SelectConfig{Message: message, Options: options})
	if err != nil {
		return 0, false, err
	}
	if idx < 0 || idx >= len(fields) {
		return 0, false, nil
	}
	return idx, true, nil
}

// report shows an operation failure to the author. Validation failures list
// every issue.
func (f *Flow) report(ctx context.Context, op string, err error) error {
	f.logger.Debug("prompt: operation rejected", "op", op, "err", err)

	var b strings.Builder
	var violation *editor.ConcurrencyViolation
	if errors.As(err, &violation) {
		b.WriteString(violation.Error())
	} else {
		fmt.Fprintf(&b, "%s failed", op)
	}

	var invalid *schema.ValidationError
	if errors.As(err, &invalid) {
		for _, issue := range invalid.Issues {
			b.WriteString("\n  - ")
			b.WriteString(issue.String())
		}
	} else if violation == nil {
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	return f.driver.Info(ctx, b.String())
}

func describe(field schema.FieldDefinition) string {
	label := field.Label
	if label == "" {
		label = "(untitled)"
	}
	if field.Key == "" {
		return fmt.Sprintf("%s [%s]", label, field.Widget)
	}
	return fmt.Sprintf("%s (%s) [%s]", label, field.Key, field.Widget)
}

func headerTitle(doc schema.EndpointTypeSchema) string {
	name := doc.TypeName
	if name == "" {
		name = "Untitled endpoint type"
	}
	if doc.TypeCode == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, doc.TypeCode)
}

func joinHelp(parts ...string) string {
	var kept []string
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}

// propertyText renders a staged property value in the form SetText parses.
func propertyText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			if opt, ok := item.(map[string]any); ok {
				lines = append(lines, fmt.Sprintf("%v=%v", opt["label"], opt["value"]))
				continue
			}
			lines = append(lines, fmt.Sprint(item))
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, key := range keys {
			lines = append(lines, fmt.Sprintf("%s=%v", key, v[key]))
		}
		return strings.Join(lines, "\n")
	case map[string]string:
		converted := make(map[string]any, len(v))
		for key, val := range v {
			converted[key] = val
		}
		return propertyText(converted)
	default:
		return fmt.Sprint(v)
	}
}
