// Package errz defines the errors raised while checking and executing
// instruction trees.
//
// Traps and interpreter faults travel as ordinary Go errors. Branch signals
// never do: they are returned as values by the vm package.
package errz

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrUnreachable indicates an unreachable instruction was executed.
	ErrUnreachable ErrorKind = iota
	// ErrDivideByZero indicates an integer division or remainder by zero.
	ErrDivideByZero
	// ErrIntegerOverflow indicates a signed division overflow.
	ErrIntegerOverflow
	// ErrStackExhausted indicates the instruction nesting limit was reached.
	ErrStackExhausted
	// ErrStackOverflow indicates the operand stack limit was reached.
	ErrStackOverflow
	// ErrInterpreter indicates a broken interpreter invariant, such as a
	// branch signal escaping the outermost scope.
	ErrInterpreter
	// ErrValidation indicates a malformed instruction tree.
	ErrValidation
	// ErrHalted indicates execution was stopped by an observer.
	ErrHalted
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnreachable, ErrDivideByZero, ErrIntegerOverflow, ErrStackExhausted, ErrStackOverflow:
		return "trap"
	case ErrInterpreter:
		return "interpreter error"
	case ErrValidation:
		return "validation error"
	case ErrHalted:
		return "halted"
	default:
		return "error"
	}
}

// Code returns the error code of the kind.
func (k ErrorKind) Code() ErrorCode {
	switch k {
	case ErrUnreachable:
		return E3001
	case ErrDivideByZero:
		return E3002
	case ErrIntegerOverflow:
		return E3003
	case ErrStackExhausted:
		return E3004
	case ErrStackOverflow:
		return E3005
	case ErrInterpreter:
		return E4001
	case ErrHalted:
		return E4002
	default:
		return ""
	}
}

// IsTrap returns true for the kinds that abort a thread because the
// program did something illegal.
func (k ErrorKind) IsTrap() bool {
	return k.String() == "trap"
}

// StructuredError carries the instruction that failed and the chain of
// instructions enclosing it.
type StructuredError struct {
	Message string
	Kind    ErrorKind
	Code    ErrorCode

	// Instruction is the name of the instruction that raised the error.
	Instruction string

	// Scopes lists the names of the enclosing instructions, innermost
	// first. It is extended while the error unwinds.
	Scopes []string

	// Function is the name of the function being executed, if known.
	Function string

	Cause error
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	var msg strings.Builder
	msg.WriteString(e.Kind.String())
	msg.WriteString(": ")
	msg.WriteString(e.Message)
	if e.Instruction != "" {
		msg.WriteString(" (at ")
		msg.WriteString(e.Instruction)
		if e.Function != "" {
			msg.WriteString(" in ")
			msg.WriteString(e.Function)
		}
		msg.WriteString(")")
	}
	return msg.String()
}

// Unwrap returns the underlying cause of the error.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// IsFatal returns whether the error aborts the current thread. Validation
// errors are reported before execution starts.
func (e *StructuredError) IsFatal() bool {
	return e.Kind != ErrValidation
}

// FriendlyErrorMessage returns a human-friendly error message including the
// scope path of the failing instruction.
func (e *StructuredError) FriendlyErrorMessage() string {
	var msg bytes.Buffer
	if e.Code != "" {
		msg.WriteString(fmt.Sprintf("%s[%s]: %s\n", e.Kind.String(), e.Code, e.Message))
	} else {
		msg.WriteString(fmt.Sprintf("%s: %s\n", e.Kind.String(), e.Message))
	}
	if e.Instruction != "" {
		msg.WriteString("\n")
		msg.WriteString(FormatScopes(e.Instruction, e.Scopes, e.Function))
	}
	return msg.String()
}

// WithCause wraps the error with a cause.
func (e *StructuredError) WithCause(cause error) *StructuredError {
	e.Cause = cause
	return e
}

// FormatScopes renders an instruction and its enclosing scopes, innermost
// first.
func FormatScopes(instruction string, scopes []string, function string) string {
	var sb strings.Builder
	sb.WriteString("Instruction path (innermost first):\n")
	sb.WriteString("  at ")
	sb.WriteString(instruction)
	sb.WriteString("\n")
	for _, scope := range scopes {
		sb.WriteString("  in ")
		sb.WriteString(scope)
		sb.WriteString("\n")
	}
	if function != "" {
		sb.WriteString("  in function ")
		sb.WriteString(function)
		sb.WriteString("\n")
	}
	return sb.String()
}

// NewTrapf creates a trap raised by the named instruction.
func NewTrapf(kind ErrorKind, instruction string, format string, args ...any) *StructuredError {
	return &StructuredError{
		Message:     fmt.Sprintf(format, args...),
		Kind:        kind,
		Code:        kind.Code(),
		Instruction: instruction,
	}
}

// NewInterpreterErrorf creates an interpreter fault.
func NewInterpreterErrorf(instruction string, format string, args ...any) *StructuredError {
	return NewTrapf(ErrInterpreter, instruction, format, args...)
}

// NewValidationErrorf creates a validation error for the instruction at the
// given path. The path lists enclosing instruction names, innermost first.
func NewValidationErrorf(code ErrorCode, instruction string, path []string, format string, args ...any) *StructuredError {
	return &StructuredError{
		Message:     fmt.Sprintf(format, args...),
		Kind:        ErrValidation,
		Code:        code,
		Instruction: instruction,
		Scopes:      path,
	}
}

// AddScope records that err unwound through the named instruction. Errors
// that are not structured are returned unchanged.
func AddScope(err error, scope string) error {
	var se *StructuredError
	if errors.As(err, &se) {
		se.Scopes = append(se.Scopes, scope)
	}
	return err
}

// SetFunction records the function in which err was raised, if not already
// set.
func SetFunction(err error, function string) error {
	var se *StructuredError
	if errors.As(err, &se) && se.Function == "" {
		se.Function = function
	}
	return err
}

// AsStructured returns the StructuredError in err's chain, if any.
func AsStructured(err error) (*StructuredError, bool) {
	var se *StructuredError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsTrap returns true if err is a trap.
func IsTrap(err error) bool {
	se, ok := AsStructured(err)
	return ok && se.Kind.IsTrap()
}

// IsKind returns true if err is a StructuredError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	se, ok := AsStructured(err)
	return ok && se.Kind == kind
}
