package errors

import (
	"errors"
	"fmt"
	"strings"
)

// LoadError is returned when a function reference or a step definition
// cannot be resolved.
type LoadError struct {
	Reference string
	Reason    string
	Cause     error
}

// NewLoadError creates a LoadError for the given reference.
func NewLoadError(reference, reason string, cause error) *LoadError {
	return &LoadError{Reference: reference, Reason: reason, Cause: cause}
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("cannot load %q: %s", e.Reference, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

func (e *LoadError) Unwrap() error { return e.Cause }

// ErrorCode returns ErrCodeLoadError.
func (e *LoadError) ErrorCode() ErrorCode { return ErrCodeLoadError }

// ContractError is returned when a function is incompatible with the
// bindings declared by a step definition.
type ContractError struct {
	StepID  string
	Missing []string
	Reason  string
}

// NewContractError creates a ContractError. missing may be nil.
func NewContractError(stepID string, missing []string, reason string) *ContractError {
	return &ContractError{StepID: stepID, Missing: missing, Reason: reason}
}

func (e *ContractError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("step %q: %s: %s", e.StepID, e.Reason, strings.Join(e.Missing, ", "))
	}

	return fmt.Sprintf("step %q: %s", e.StepID, e.Reason)
}

// ErrorCode returns ErrCodeContractError.
func (e *ContractError) ErrorCode() ErrorCode { return ErrCodeContractError }

// CycleError is returned when the reevaluation graph of a strategy has a cycle.
// Cycle lists the instance ids along the cycle, with the first id repeated at the end.
type CycleError struct {
	Strategy string
	Cycle    []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("strategy %q: reevaluation cycle %s", e.Strategy, strings.Join(e.Cycle, " -> "))
}

// ErrorCode returns ErrCodeCycleError.
func (e *CycleError) ErrorCode() ErrorCode { return ErrCodeCycleError }

// MissingRuntimeValue is returned when a runtime (or market) binding has no value yet.
type MissingRuntimeValue struct {
	StepID string
	Param  string
	Key    string
}

func (e *MissingRuntimeValue) Error() string {
	return fmt.Sprintf("step %q: no runtime value %q for parameter %q", e.StepID, e.Key, e.Param)
}

// ErrorCode returns ErrCodeMissingRuntimeValue.
func (e *MissingRuntimeValue) ErrorCode() ErrorCode { return ErrCodeMissingRuntimeValue }

// MissingConfigValue is returned when a config binding is absent from the step instance.
type MissingConfigValue struct {
	StepID string
	Param  string
	Key    string
}

func (e *MissingConfigValue) Error() string {
	return fmt.Sprintf("step %q: no config value %q for parameter %q", e.StepID, e.Key, e.Param)
}

// ErrorCode returns ErrCodeMissingConfigValue.
func (e *MissingConfigValue) ErrorCode() ErrorCode { return ErrCodeMissingConfigValue }

// OutputCollisionError is returned when two different step instances claim the
// same output name with differing values.
type OutputCollisionError struct {
	Output   string
	Existing string
	Incoming string
}

func (e *OutputCollisionError) Error() string {
	return fmt.Sprintf("output %q produced by both %q and %q with differing values",
		e.Output, e.Existing, e.Incoming)
}

// ErrorCode returns ErrCodeOutputCollision.
func (e *OutputCollisionError) ErrorCode() ErrorCode { return ErrCodeOutputCollision }

// IsOutputCollision reports whether err contains an OutputCollisionError.
func IsOutputCollision(err error) bool {
	var collision *OutputCollisionError

	return errors.As(err, &collision)
}
