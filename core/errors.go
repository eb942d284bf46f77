package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	if len(err.Fields) > 0 {
		return err.Fields[0].Field + ": " + err.Fields[0].Error
	}
	return ""
}

// IsValidationError reports whether a *ValidationError is found in err's chain.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// NotFoundError reports a reference to a resource that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
	message  string
}

func NewNotFoundError(resource, id, msg string) error {
	return &NotFoundError{Resource: resource, ID: id, message: msg}
}

func (err NotFoundError) Error() string {
	if err.message != "" {
		return err.message
	}
	return err.Resource + " not found"
}

// IsNotFound reports whether a *NotFoundError is found in err's chain.
func IsNotFound(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
