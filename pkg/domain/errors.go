package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDeclaration is the root of every invalid declaration.
var ErrDeclaration = errors.New("invalid declaration")

// ErrUnreachable is returned when declared states or transitions cannot be reached.
var ErrUnreachable = errors.New("unreachable declarations")

// ErrReportNotFound is returned when a store holds no report for a suite.
var ErrReportNotFound = errors.New("report not found")

// Step failure kinds.
var (
	ErrTransitionFailed     = errors.New("transition failed")
	ErrStateTestFailed      = errors.New("state test failed")
	ErrTransitionTestFailed = errors.New("transition test failed")
	ErrSpawnIdentity        = errors.New("spawned context is not expected to have the same reference as the parent context")
)

// DeclarationError describes one invalid declaration.
type DeclarationError struct {
	Message string
}

// Declarationf builds a DeclarationError.
func Declarationf(format string, args ...any) *DeclarationError {
	return &DeclarationError{Message: fmt.Sprintf(format, args...)}
}

func (e *DeclarationError) Error() string { return e.Message }

func (e *DeclarationError) Unwrap() error { return ErrDeclaration }

// UnreachableError lists what the search could not reach.
type UnreachableError struct {
	States      []string
	Transitions []string
}

func (e *UnreachableError) Error() string {
	var parts []string
	if len(e.States) > 0 {
		parts = append(parts, "Unreachable states:\n  "+strings.Join(e.States, "\n  "))
	}
	if len(e.Transitions) > 0 {
		parts = append(parts, "Unreachable transitions:\n  "+strings.Join(e.Transitions, "\n  "))
	}
	return strings.Join(parts, "\n")
}

func (e *UnreachableError) Unwrap() error { return ErrUnreachable }

// StepError is a failure of one step of a test case.
type StepError struct {
	CaseID string
	Node   *Node
	// State is set for state test failures.
	State string
	Kind  error
	Err   error
}

// Title is the short badge text printed for the failure.
func (e *StepError) Title() string {
	switch {
	case errors.Is(e.Kind, ErrStateTestFailed):
		return fmt.Sprintf("State %q test failed", e.State)
	case errors.Is(e.Kind, ErrTransitionTestFailed):
		return "Transition test failed"
	default:
		return "Transition failed"
	}
}

func (e *StepError) Error() string {
	if e.Err == nil || e.Err == e.Kind {
		return fmt.Sprintf("test case %s: %s", e.CaseID, e.Title())
	}
	return fmt.Sprintf("test case %s: %s: %v", e.CaseID, e.Title(), e.Err)
}

func (e *StepError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
