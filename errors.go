package mdrender

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies a failed entry-point call.
type ErrorCategory string

const (
	// CategoryDecode covers malformed or ill-typed options values.
	CategoryDecode ErrorCategory = "decode"
	// CategoryDeserialize covers host AST trees that do not match the
	// node schema in the format-from-AST entry points.
	CategoryDeserialize ErrorCategory = "deserialize"
	// CategoryRender covers formatter failures writing output.
	CategoryRender ErrorCategory = "render"
	// CategoryInternal covers everything else.
	CategoryInternal ErrorCategory = "internal"
)

// Error is the structured error every entry point returns on failure. Hook
// callable failures never surface here; they are swallowed during rendering.
type Error struct {
	Category ErrorCategory `json:"category"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCategory checks whether err is an Error of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var re *Error
	return errors.As(err, &re) && re.Category == category
}

// GetCategory extracts the category from an error; non-Error values are
// reported as internal.
func GetCategory(err error) ErrorCategory {
	var re *Error
	if errors.As(err, &re) {
		return re.Category
	}
	return CategoryInternal
}

func decodeError(err error) *Error {
	return &Error{Category: CategoryDecode, Message: "invalid options", Cause: err}
}

func deserializeError(err error) *Error {
	return &Error{Category: CategoryDeserialize, Message: "invalid ast", Cause: err}
}

func renderError(format string, err error) *Error {
	return &Error{Category: CategoryRender, Message: format + " rendering failed", Cause: err}
}
