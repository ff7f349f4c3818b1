package errors

import "fmt"

// ValidationError reports a value that is not acceptable for a field
type ValidationError struct {
	*BaseError
	Field    string // field that failed validation
	Expected string // what was expected
	Actual   string // what was provided
}

// NewValidationError creates a new validation error
func NewValidationError(field, expected, actual string) *ValidationError {
	message := fmt.Sprintf("invalid %s: expected %s, got %q", field, expected, actual)

	return &ValidationError{
		BaseError: New(ValidationErrorCode, message).
			WithContext("field", field),
		Field:    field,
		Expected: expected,
		Actual:   actual,
	}
}

// WithLocation adds location information to the error
func (e *ValidationError) WithLocation(loc SourceLocation) *ValidationError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *ValidationError) WithSuggestion(suggestion string) *ValidationError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// SyntaxError represents a malformed query or document
type SyntaxError struct {
	*BaseError
	Token    string // the token that caused the error
	Position int    // byte offset in the input, -1 when unknown
}

// NewSyntaxError creates a new syntax error
func NewSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
		Position:  -1,
	}
}

// NewSyntaxErrorWithToken creates a syntax error with token information
func NewSyntaxErrorWithToken(message, token string, position int) *SyntaxError {
	if token != "" {
		message = fmt.Sprintf("%s (near token '%s')", message, token)
	}

	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
		Token:     token,
		Position:  position,
	}
}

// WithLocation adds location information to the error
func (e *SyntaxError) WithLocation(loc SourceLocation) *SyntaxError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithCause adds an underlying error cause
func (e *SyntaxError) WithCause(cause error) *SyntaxError {
	e.BaseError.WithCause(cause)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *SyntaxError) WithSuggestion(suggestion string) *SyntaxError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}
