package intake

import (
	"errors"
	"strings"
)

// Validation failure classes. Use errors.Is against a *ValidationError.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrInvalidPhone         = errors.New("invalid phone number")
	ErrMalformedPayload     = errors.New("malformed payload")
)

// ValidationError reports why a payload could not become a Submission.
type ValidationError struct {
	Kind   error    // one of the Err* classes above
	Fields []string // offending fields, if known
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error { return e.Kind }
