package core

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by stores when a document does not exist.
var ErrNotFound = errors.New("document not found")

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
	if err.Err == nil {
		if len(err.Fields) == 0 {
			return ""
		}
		msgs := make([]string, 0, len(err.Fields))
		for _, f := range err.Fields {
			msgs = append(msgs, f.Field+": "+f.Error)
		}
		return strings.Join(msgs, ", ")
	}
	return err.Err.Error()
}

// NotFoundError reports a missing record of the named entity.
type NotFoundError struct {
	Name string
}

func NewNotFoundError(name string) error {
	return &NotFoundError{Name: name}
}

func (err NotFoundError) Error() string {
	return err.Name + " not found"
}

// ConflictError reports a request that contradicts the current state of a record.
type ConflictError struct {
	Message string
}

func NewConflictError(msg string) error {
	return &ConflictError{Message: msg}
}

func (err ConflictError) Error() string {
	return err.Message
}

// DeliveryError wraps a failure of the outbound mail transport.
type DeliveryError struct {
	Err error
}

func NewDeliveryError(err error) error {
	return &DeliveryError{Err: err}
}

func (err DeliveryError) Error() string {
	if err.Err == nil {
		return "delivery failed"
	}
	return err.Err.Error()
}

func (err DeliveryError) Unwrap() error {
	return err.Err
}
