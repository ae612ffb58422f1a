// Package apperr defines the error kinds the HTTP boundary distinguishes
// between. LLM, cache, and critique-log failures never surface here — each
// agent absorbs them into a degraded output instead.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is one of the error kinds in §7 of the specification.
type Kind string

const (
	KindInput       Kind = "input_error"
	KindIngestion   Kind = "ingestion_failed"
	KindStore       Kind = "store_unavailable"
	KindCancelled   Kind = "cancelled"
)

// Error wraps a Kind with a human message and, for InputError, the offending
// field name.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Input builds an InputError naming the offending field.
func Input(field, message string) error {
	return &Error{Kind: KindInput, Field: field, Message: message}
}

// Ingestion builds an IngestionFailed error wrapping cause.
func Ingestion(message string, cause error) error {
	return &Error{Kind: KindIngestion, Message: message, Cause: cause}
}

// Store builds a StoreUnavailable error wrapping cause; used only where the
// specification requires propagation (report store writes).
func Store(message string, cause error) error {
	return &Error{Kind: KindStore, Message: message, Cause: cause}
}

// Cancelled builds a Cancelled error wrapping cause (normally
// context.Canceled).
func Cancelled(cause error) error {
	return &Error{Kind: KindCancelled, Message: "task cancelled", Cause: cause}
}

// KindOf extracts the Kind from err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// FieldOf extracts the offending field name from err, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
