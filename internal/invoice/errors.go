package invoice

import (
	"errors"
	"fmt"
	"strings"
)

// Common invoice errors
var (
	// ErrValidation is wrapped by every *ValidationError.
	ErrValidation = errors.New("invalid invoice data")

	// ErrInvoiceNotFound is returned when no invoice has the requested id.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrClientNotFound is returned when a client id does not resolve.
	ErrClientNotFound = errors.New("client not found")

	// ErrProductNotFound is returned when a product id does not resolve.
	ErrProductNotFound = errors.New("product not found")

	// ErrItemNotFound is returned when a draft has no item with the given id.
	ErrItemNotFound = errors.New("invoice item not found")

	// ErrNoBuyer is returned when a draft is saved without a buyer.
	ErrNoBuyer = errors.New("no buyer selected")
)

// InvoiceError wraps errors with the failing operation and record id.
type InvoiceError struct {
	// Op is the operation that failed (e.g., "Create", "SetStatus").
	Op string

	// ID is the invoice, client or product id involved, if any.
	ID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *InvoiceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("invoice: %s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("invoice: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *InvoiceError) Unwrap() error {
	return e.Err
}

// wrap returns err as an *InvoiceError unless it already is one.
func wrap(op, id string, err error) error {
	if err == nil {
		return nil
	}

	var invoiceErr *InvoiceError
	if errors.As(err, &invoiceErr) {
		return err
	}
	return &InvoiceError{Op: op, ID: id, Err: err}
}

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ValidationErrors collects every rejected field of one record.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes each field error to errors.Is and errors.As.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, e := range v {
		errs[i] = e
	}
	return errs
}
