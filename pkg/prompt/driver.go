package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the author interrupts a question. The flow
// treats it as a request to leave the session.
var ErrAborted = errors.New("prompt: authoring aborted")

// InputConfig describes a one-line answer such as a label, key, or predicate.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// ConfirmConfig describes a yes/no question such as a delete or discard.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig describes a menu. Options are shown in order; answers are
// reported as indexes into Options, -1 when the answer matches none.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	// Defaults preselects entries of a multi-select menu.
	Defaults []int
	Help     string
	PageSize int
}

// TextAreaConfig describes a multi-line answer, used for serialized rule sets
// and list-valued widget properties.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// Driver is the terminal surface the authoring flow talks to. Tests replace it
// with a scripted implementation.
type Driver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out io.Writer
}

// NewSurveyDriver asks questions on the process terminal. Notices printed by
// Info go to out, or stdout when out is nil.
func NewSurveyDriver(out io.Writer) Driver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out}
}

// ask runs one survey question. Context cancellation is checked up front,
// since survey itself blocks on the terminal.
func ask(ctx context.Context, question survey.Prompt, answer any, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := survey.AskOne(question, answer, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return ErrAborted
		}
		return fmt.Errorf("prompt: ask: %w", err)
	}
	return nil
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var opts []survey.AskOpt
	if check := cfg.Validator; check != nil {
		opts = append(opts, survey.WithValidator(func(ans any) error {
			text, _ := ans.(string)
			return check(text)
		}))
	}
	var answer string
	err := ask(ctx, &survey.Input{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer, opts...)
	return answer, err
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var answer bool
	err := ask(ctx, &survey.Confirm{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer)
	return answer, err
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	menu := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if picked := pick(cfg.Options, []int{cfg.DefaultIndex}); len(picked) == 1 {
		menu.Default = picked[0]
	}
	var answer string
	if err := ask(ctx, menu, &answer); err != nil {
		return -1, err
	}
	found := positions(cfg.Options, []string{answer})
	if len(found) == 0 {
		return -1, nil
	}
	return found[0], nil
}

func (d *surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	menu := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if picked := pick(cfg.Options, cfg.Defaults); len(picked) > 0 {
		menu.Default = picked
	}
	var answers []string
	if err := ask(ctx, menu, &answers); err != nil {
		return nil, err
	}
	return positions(cfg.Options, answers), nil
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	var answer string
	err := ask(ctx, &survey.Multiline{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer)
	return answer, err
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(d.out, msg); err != nil {
		return fmt.Errorf("prompt: notice: %w", err)
	}
	return nil
}

// positions maps chosen option labels back to their menu indexes, in menu
// order.
func positions(options, chosen []string) []int {
	want := make(map[string]bool, len(chosen))
	for _, label := range chosen {
		want[label] = true
	}
	var out []int
	for i, option := range options {
		if want[option] {
			out = append(out, i)
		}
	}
	return out
}

// pick returns the labels at the given indexes, skipping any out of range.
func pick(options []string, indexes []int) []string {
	var out []string
	for _, idx := range indexes {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}
