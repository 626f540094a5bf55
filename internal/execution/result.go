package execution

import (
	"maps"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-steps/internal/step"
)

// StepEvaluationResult is the immutable outcome of one step attempt.
type StepEvaluationResult struct {
	success   bool
	message   string
	timestamp optional.Option[time.Time]
	outputs   step.Outputs
	err       error
	stack     string
}

// Success creates a successful result. outputs are copied.
func Success(timestamp optional.Option[time.Time], outputs step.Outputs) StepEvaluationResult {
	copied := maps.Clone(outputs)
	if copied == nil {
		copied = step.Outputs{}
	}

	return StepEvaluationResult{
		success:   true,
		message:   "",
		timestamp: timestamp,
		outputs:   copied,
		err:       nil,
		stack:     "",
	}
}

// Failure creates a failed result with no outputs. cause may be nil.
func Failure(timestamp optional.Option[time.Time], message string, cause error) StepEvaluationResult {
	if message == "" && cause != nil {
		message = cause.Error()
	}

	return StepEvaluationResult{
		success:   false,
		message:   message,
		timestamp: timestamp,
		outputs:   step.Outputs{},
		err:       cause,
		stack:     "",
	}
}

// WithStack returns a copy of the result carrying a stack trace.
func (r StepEvaluationResult) WithStack(stack string) StepEvaluationResult {
	r.stack = stack

	return r
}

// IsSuccess reports whether the attempt succeeded.
func (r StepEvaluationResult) IsSuccess() bool { return r.success }

// Message returns the failure message, empty on success.
func (r StepEvaluationResult) Message() string { return r.message }

// Timestamp returns the bar timestamp the attempt ran against, if any.
func (r StepEvaluationResult) Timestamp() optional.Option[time.Time] { return r.timestamp }

// Outputs returns a copy of the named outputs. Empty on failure.
func (r StepEvaluationResult) Outputs() step.Outputs { return maps.Clone(r.outputs) }

// Output returns one named output.
func (r StepEvaluationResult) Output(name string) (any, bool) {
	v, ok := r.outputs[name]

	return v, ok
}

// Err returns the failure cause, if any.
func (r StepEvaluationResult) Err() error { return r.err }

// Stack returns the captured stack trace of a panicking step, if any.
func (r StepEvaluationResult) Stack() string { return r.stack }
