package visibility

// Evaluator determines whether a field should be visible based on a predicate
// source and the live form values.
type Evaluator interface {
	Eval(fieldKey, predicate string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values holds the current form
// values keyed by field key; predicates see it as their single bound variable.
type Context struct {
	Values map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldKey, predicate string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldKey, predicate string, ctx Context) (bool, error) {
	return fn(fieldKey, predicate, ctx)
}
