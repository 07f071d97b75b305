package health

import "context"

// ExpressionResult is the outcome of evaluating one calculation, warning, or
// critical expression against a lookup value.
type ExpressionResult struct {
	// Value is the numeric result, valid only when Failed is false.
	Value float64
	// Failed indicates the expression could not be evaluated (missing
	// variable, division by zero, parse error deferred to evaluation time).
	Failed bool
	// FailureReason is a short human-readable explanation, used in log
	// entries and notifier arguments when Failed is true.
	FailureReason string
}

// Expression is the opaque evaluator contract for calc/warn/crit
// expressions. Its grammar is deliberately not specified here: a concrete
// implementation owns parsing and variable resolution, this package only
// needs to evaluate and report source text.
//
// Implementations must be safe for concurrent Eval calls on the same
// Expression, since the same compiled alarm template is shared across
// charts with identical expressions.
type Expression interface {
	// Eval evaluates the expression given the named inputs ($this and any
	// alarm cross-references the implementation supports) and returns the
	// result. ctx carries at most a deadline; expressions are expected to
	// be cheap, pure computations.
	Eval(ctx context.Context, vars map[string]float64) ExpressionResult

	// Source returns the original, unparsed expression text, used verbatim
	// in log entries and notifier argument vectors.
	Source() string
}
