package validate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationErrors contains the aggregated validation errors for a request.
// Every failing field contributes its messages; the request is aborted only
// after all fields have been checked.
type ValidationErrors struct {
	Fields map[string][]string `json:"errors"`
}

// NewValidationErrors creates an empty ValidationErrors instance.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Fields: make(map[string][]string),
	}
}

// Add adds a validation error message for a specific field.
func (ve *ValidationErrors) Add(field, message string) {
	if ve.Fields == nil {
		ve.Fields = make(map[string][]string)
	}
	ve.Fields[field] = append(ve.Fields[field], message)
}

// HasErrors returns true if any field collected an error.
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Fields) > 0
}

// Count returns the total number of messages across all fields.
func (ve *ValidationErrors) Count() int {
	count := 0
	for _, messages := range ve.Fields {
		count += len(messages)
	}
	return count
}

// Error implements the error interface.
func (ve *ValidationErrors) Error() string {
	if !ve.HasErrors() {
		return "validation failed"
	}

	var messages []string
	for field, errs := range ve.Fields {
		for _, msg := range errs {
			messages = append(messages, fmt.Sprintf("  - %s: %s", field, msg))
		}
	}

	if len(messages) == 1 {
		return fmt.Sprintf("validation failed: %s", strings.TrimPrefix(messages[0], "  - "))
	}

	return fmt.Sprintf("validation failed:\n%s", strings.Join(messages, "\n"))
}

// MarshalJSON serializes the errors in the wire format the API responds
// with: {"errors": {field: [messages...]}}.
func (ve *ValidationErrors) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Errors map[string][]string `json:"errors"`
	}{
		Errors: ve.Fields,
	})
}

// LimitError is returned by the whole-schema check when an
// externally-originated request asks for a page size above the configured
// ceiling. Trusted in-process callers are exempt.
type LimitError struct {
	Requested int
	Ceiling   int
}

// Error implements the error interface.
func (le *LimitError) Error() string {
	return fmt.Sprintf("the requested limit of %d is above the maximum of %d", le.Requested, le.Ceiling)
}
