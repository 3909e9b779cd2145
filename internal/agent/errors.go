package agent

import (
	"errors"
	"fmt"
)

// Kind classifies why a model-backed call failed.
type Kind string

const (
	// KindTemplate: the prompt template is missing or malformed.
	KindTemplate Kind = "template"
	// KindTransport: the model endpoint was unreachable, timed out or
	// answered with a non-success status.
	KindTransport Kind = "transport"
	// KindExtraction: the response contained no recoverable JSON.
	KindExtraction Kind = "extraction"
	// KindValidation: the JSON did not satisfy the expected shape.
	KindValidation Kind = "validation"
)

// Error is the single typed failure returned by Runner calls.
type Error struct {
	Kind       Kind
	TemplateID string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("agent %s: %s: %v", e.TemplateID, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of an *Error anywhere in err's chain, or "" when
// err did not come from a Runner.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}
