package prompt

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSurveyDriver_CancelledContextSkipsTerminal(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := &bytes.Buffer{}
	driver := NewSurveyDriver(out)
	if _, err := driver.Select(ctx, SelectConfig{Message: "Action", Options: []string{"a"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled from Select, got %v", err)
	}
	if _, err := driver.Input(ctx, InputConfig{Message: "Label"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled from Input, got %v", err)
	}
	if err := driver.Info(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled from Info, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected nothing written, got %q", out.String())
	}
}

func TestSurveyDriver_InfoWritesLine(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	if err := NewSurveyDriver(out).Info(context.Background(), "Committed ep-1 version 0.1.1."); err != nil {
		t.Fatalf("info: %v", err)
	}
	if got := out.String(); got != "Committed ep-1 version 0.1.1.\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestMenuIndexHelpers(t *testing.T) {
	t.Parallel()

	options := []string{"IN", "OUT", "IN_OUT", "OUT_IN"}
	if diff := cmp.Diff([]int{1, 3}, positions(options, []string{"OUT_IN", "OUT", "missing"})); diff != "" {
		t.Fatalf("positions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"IN_OUT", "IN"}, pick(options, []int{2, -1, 0, 9})); diff != "" {
		t.Fatalf("pick mismatch (-want +got):\n%s", diff)
	}
	if got := positions(options, nil); got != nil {
		t.Fatalf("expected no positions, got %v", got)
	}
}
