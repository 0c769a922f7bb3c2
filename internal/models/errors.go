package models

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// DuplicateInvoiceError blocks creation and points the caller at the
// occurrence that already carries the invoice number.
type DuplicateInvoiceError struct {
	InvoiceNumber string
	ExistingID    string
}

func (e *DuplicateInvoiceError) Error() string {
	return fmt.Sprintf("invoice %s already registered on occurrence %s", e.InvoiceNumber, e.ExistingID)
}

type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}
