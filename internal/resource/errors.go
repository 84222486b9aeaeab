package resource

import "fmt"

// ErrorKind classifies a pipeline failure. Every kind maps to a stable
// HTTP status and user-visible message at the transport boundary; nothing
// in the pipeline panics or retries.
type ErrorKind int

const (
	// KindInvalidField is a requested field or ordering key that does not
	// exist on the resource.
	KindInvalidField ErrorKind = iota
	// KindMalformedInput is an unparseable structured request body.
	KindMalformedInput
	// KindUnauthenticated is a missing or invalid credential on a verb
	// that requires one.
	KindUnauthenticated
	// KindUnauthorized is a verb-level or object-level denial.
	KindUnauthorized
	// KindNotFound is a lookup that matched nothing.
	KindNotFound
	// KindGone is a lookup that matched a removed object.
	KindGone
	// KindTooManyResults is an ambiguous single-object lookup.
	KindTooManyResults
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidField:
		return "invalid_field"
	case KindMalformedInput:
		return "malformed_input"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindGone:
		return "gone"
	case KindTooManyResults:
		return "too_many_results"
	default:
		return "error"
	}
}

// Error is the explicit failure value threaded up the pipeline in place of
// non-local control flow. Field is set for KindInvalidField.
type Error struct {
	Kind    ErrorKind
	Message string
	Field   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NewError creates an Error with the given kind and message.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewInvalidField creates the error for a field name outside the
// resource's valid-field closure.
func NewInvalidField(field string) *Error {
	return &Error{
		Kind:    KindInvalidField,
		Message: fmt.Sprintf("Field '%s' is not a valid field.", field),
		Field:   field,
	}
}

// Errorf creates an Error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
