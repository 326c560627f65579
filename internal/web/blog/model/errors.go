package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Laisky/errors/v2"
)

var (
	// ErrNotFound is returned by record stores when nothing matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned by record stores on a unique index violation.
	ErrDuplicateKey = errors.New("duplicate key")
)

// ErrorKind classifies errors returned by the blog services.
type ErrorKind string

const (
	// KindValidation input failed field checks, nothing was written
	KindValidation ErrorKind = "validation"
	// KindDuplicate the derived identifier is already taken
	KindDuplicate ErrorKind = "duplicate_identifier"
	// KindNotFound no record for the given slug or id
	KindNotFound ErrorKind = "not_found"
	// KindIntegrity the record store and the content store disagree
	KindIntegrity ErrorKind = "integrity"
	// KindStorage an I/O or connectivity failure not caused by the input
	KindStorage ErrorKind = "storage"
)

// Error is the typed error returned by the blog services.
type Error struct {
	Kind    ErrorKind
	Message string
	// Fields maps field names to problems, set for KindValidation only
	Fields map[string]string
	cause  error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e == nil {
		return "blog error: <nil>"
	}

	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if len(e.Fields) != 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+": "+e.Fields[name])
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Public reports whether the message may be shown to the caller as is.
// Integrity and storage details stay in the server log.
func (e *Error) Public() bool {
	switch e.Kind {
	case KindIntegrity, KindStorage:
		return false
	default:
		return true
	}
}

// NewValidationError reports field-level problems.
func NewValidationError(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// NewDuplicateError reports an identifier collision.
func NewDuplicateError(format string, args ...any) *Error {
	return &Error{Kind: KindDuplicate, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError reports a missing record.
func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewIntegrityError reports a divergence between the two stores.
func NewIntegrityError(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindIntegrity, Message: fmt.Sprintf(format, args...), cause: cause}
}

// NewStorageError wraps a store failure.
func NewStorageError(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindStorage, Message: fmt.Sprintf(format, args...), cause: cause}
}

// AsError extracts a typed blog error from the error chain.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed, true
	}

	return nil, false
}

// IsKind reports whether the error chain contains a blog error of kind.
func IsKind(err error, kind ErrorKind) bool {
	typed, ok := AsError(err)
	return ok && typed.Kind == kind
}
