package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock is returned when a versioned row was modified by another operation.
var ErrOptimisticLock = errors.New("record was modified by another operation, reload and retry")

// Kind classifies business errors so callers can branch without string matching.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindPrecondition Kind = "precondition"
	KindConflict     Kind = "conflict"
	KindWorkflow     Kind = "workflow"
	KindTransient    Kind = "transient"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
)

// Error is the typed business error. Rule names the violated rule in machine form.
type Error struct {
	Kind    Kind
	Rule    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind, and on Rule when the target carries one.
//
//	errors.Is(err, ErrConflict)                   // any conflict
//	errors.Is(err, Conflict(RuleDuplicateNumber, "")) // that specific rule
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Rule == "" || t.Rule == e.Rule
}

// Kind sentinels for errors.Is.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrPrecondition = &Error{Kind: KindPrecondition}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrWorkflow     = &Error{Kind: KindWorkflow}
	ErrTransient    = &Error{Kind: KindTransient}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrForbidden    = &Error{Kind: KindForbidden}
)

// Rules raised by the persistence layer.
const (
	RuleDuplicateNumber = "duplicate_number"
	RuleDuplicate       = "duplicate"
	RuleLockTimeout     = "lock_timeout"
	RuleSerialization   = "serialization_failure"
	RuleDeadlock        = "deadlock"
)

func newError(kind Kind, rule, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Rule: rule, Message: msg}
}

// Validation reports a field or cross-field invariant violation.
func Validation(rule, format string, args ...any) *Error {
	return newError(KindValidation, rule, format, args...)
}

// Precondition reports an entity that is not in the state an operation requires.
func Precondition(rule, format string, args ...any) *Error {
	return newError(KindPrecondition, rule, format, args...)
}

// Conflict reports a uniqueness or one-to-one violation.
func Conflict(rule, format string, args ...any) *Error {
	return newError(KindConflict, rule, format, args...)
}

// Workflow reports an illegal status transition.
func Workflow(rule, format string, args ...any) *Error {
	return newError(KindWorkflow, rule, format, args...)
}

// NotFound reports a missing entity.
func NotFound(rule, format string, args ...any) *Error {
	return newError(KindNotFound, rule, format, args...)
}

// Forbidden reports a missing capability or ownership.
func Forbidden(rule, format string, args ...any) *Error {
	return newError(KindForbidden, rule, format, args...)
}

// Transient wraps a lock or serialization failure. The transaction has been rolled back.
func Transient(rule string, err error) *Error {
	return &Error{Kind: KindTransient, Rule: rule, Message: "operation aborted by a concurrent write, retry", Err: err}
}

// KindOf returns the kind of a typed error, or "" for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// RuleOf returns the rule of a typed error, or "".
func RuleOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Rule
	}
	return ""
}
