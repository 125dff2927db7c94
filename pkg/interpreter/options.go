package interpreter

import (
	"io"
	"log/slog"

	"github.com/goliatone/go-endpointschema/pkg/visibility"
	"github.com/goliatone/go-endpointschema/pkg/widgets"
)

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger routes interpretation warnings to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithEvaluator swaps the predicate evaluator.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(i *Interpreter) {
		if evaluator != nil {
			i.evaluator = evaluator
		}
	}
}

// WithRegistry swaps the widget dispatch table.
func WithRegistry(reg *widgets.Registry) Option {
	return func(i *Interpreter) {
		if reg != nil {
			i.registry = reg
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
