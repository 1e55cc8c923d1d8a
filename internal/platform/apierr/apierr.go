package apierr

import "fmt"

// FieldError names one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an error that already knows how it should be rendered over HTTP.
// Err carries the operator-facing text placed in the "error" key; Message is the
// optional user-facing sentence.
type Error struct {
	Status  int
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// WithMessage sets the user-facing message and returns e.
func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

// WithFields attaches per-field validation errors and returns e.
func (e *Error) WithFields(fields []FieldError) *Error {
	e.Fields = fields
	return e
}
