// Package validation provides the result type every blockchain check
// reports through.
package validation

import "fmt"

// Validation represents the outcome of a check. A failed check carries the
// reason in Message. Values are never modified after construction.
type Validation struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// New constructs a successful validation.
func New() Validation {
	return Validation{Success: true}
}

// Fail constructs a failed validation with the specified reason.
func Fail(message string) Validation {
	return Validation{Message: message}
}

// Failf constructs a failed validation using a format string.
func Failf(format string, args ...any) Validation {
	return Validation{Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a failed validation with the prefix added to the message.
// A successful validation is returned unchanged.
func (v Validation) Wrap(prefix string) Validation {
	if v.Success {
		return v
	}
	return Validation{Message: prefix + v.Message}
}

// String implements the fmt.Stringer interface for logging.
func (v Validation) String() string {
	if v.Success {
		return "valid"
	}
	return v.Message
}
