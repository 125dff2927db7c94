package rules

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-endpointschema/pkg/schema"
)

// Mode selects how a Dialog edits its rule set.
type Mode string

const (
	ModeStructured Mode = "structured"
	ModeText       Mode = "text"
)

var (
	// ErrTextMode is returned by structured operations while the dialog is in
	// text mode.
	ErrTextMode = errors.New("rules: switch to structured mode first")
	// ErrStructuredMode is returned by SetText outside text mode.
	ErrStructuredMode = errors.New("rules: switch to text mode first")
	// ErrIndex is returned for rule positions outside the list.
	ErrIndex = errors.New("rules: rule index out of range")
)

// Dialog edits the rule set of one field. Structured and text modes
// round-trip through Serialize and Parse; leaving text mode requires the text
// to parse.
type Dialog struct {
	fieldID string
	mode    Mode
	rules   []schema.RuleSpec
	text    string
}

// Open starts a structured-mode dialog over a copy of field's rules.
func Open(field schema.FieldDefinition) *Dialog {
	return &Dialog{
		fieldID: field.ID,
		mode:    ModeStructured,
		rules:   cloneRules(field.Rules),
	}
}

func (d *Dialog) FieldID() string { return d.fieldID }

func (d *Dialog) Mode() Mode { return d.mode }

// Rules returns a copy of the structured rule list. In text mode it reflects
// the list as of the last switch.
func (d *Dialog) Rules() []schema.RuleSpec { return cloneRules(d.rules) }

// Text returns the pending serialized text; empty outside text mode.
func (d *Dialog) Text() string { return d.text }

// SwitchMode moves between structured and text editing. Switching out of text
// mode parses the pending text; on failure the dialog stays in text mode and
// the parse error is returned.
func (d *Dialog) SwitchMode(mode Mode) error {
	if mode == d.mode {
		return nil
	}
	switch mode {
	case ModeText:
		text, err := Serialize(d.rules)
		if err != nil {
			return err
		}
		d.text = text
		d.mode = ModeText
		return nil
	case ModeStructured:
		parsed, err := Parse(d.text)
		if err != nil {
			return err
		}
		d.rules = parsed
		d.text = ""
		d.mode = ModeStructured
		return nil
	default:
		return fmt.Errorf("rules: unknown dialog mode %q", string(mode))
	}
}

// SetText replaces the pending text. Parsing is deferred to SwitchMode or
// Accept.
func (d *Dialog) SetText(text string) error {
	if d.mode != ModeText {
		return ErrStructuredMode
	}
	d.text = text
	return nil
}

// Add appends rule and returns its index.
func (d *Dialog) Add(rule schema.RuleSpec) (int, error) {
	if d.mode != ModeStructured {
		return -1, ErrTextMode
	}
	d.rules = append(d.rules, rule.Clone())
	return len(d.rules) - 1, nil
}

func (d *Dialog) Update(idx int, rule schema.RuleSpec) error {
	if err := d.checkIndex(idx); err != nil {
		return err
	}
	d.rules[idx] = rule.Clone()
	return nil
}

func (d *Dialog) Remove(idx int) error {
	if err := d.checkIndex(idx); err != nil {
		return err
	}
	d.rules = append(d.rules[:idx], d.rules[idx+1:]...)
	return nil
}

// Move relocates the rule at from to position to.
func (d *Dialog) Move(from, to int) error {
	if err := d.checkIndex(from); err != nil {
		return err
	}
	if err := d.checkIndex(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	rule := d.rules[from]
	d.rules = append(d.rules[:from], d.rules[from+1:]...)
	d.rules = append(d.rules[:to], append([]schema.RuleSpec{rule}, d.rules[to:]...)...)
	return nil
}

// Check reports every defect in the pending rule set without closing the
// dialog. In text mode a parse failure is returned as the error.
func (d *Dialog) Check() ([]schema.Issue, error) {
	rules, err := d.pending()
	if err != nil {
		return nil, err
	}
	return Validate(rules), nil
}

// Accept returns the validated rule list. All defects are reported together as
// a *schema.ValidationError.
func (d *Dialog) Accept() ([]schema.RuleSpec, error) {
	rules, err := d.pending()
	if err != nil {
		return nil, err
	}
	if err := schema.AsError(Validate(rules)); err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return cloneRules(rules), nil
}

func (d *Dialog) pending() ([]schema.RuleSpec, error) {
	if d.mode == ModeText {
		return Parse(d.text)
	}
	return d.rules, nil
}

func (d *Dialog) checkIndex(idx int) error {
	if d.mode != ModeStructured {
		return ErrTextMode
	}
	if idx < 0 || idx >= len(d.rules) {
		return fmt.Errorf("%w: %d", ErrIndex, idx)
	}
	return nil
}

func cloneRules(rules []schema.RuleSpec) []schema.RuleSpec {
	if rules == nil {
		return nil
	}
	out := make([]schema.RuleSpec, len(rules))
	for idx, rule := range rules {
		out[idx] = rule.Clone()
	}
	return out
}
