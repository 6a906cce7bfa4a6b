package fulfillment

import (
	"errors"
	"fmt"
)

// Messages returned to restlet callers.
const (
	MsgMissingSourceOrder      = "Missing sourceOrderId in request body"
	MsgMissingFulfillmentBody  = "Missing itemFulfillmentId in request body"
	MsgMissingFulfillmentParam = "Missing itemFulfillmentId in request parameters"
	MsgFulfillmentNotFound     = "Item Fulfillment record not found"
)

var (
	// ErrInvalidTranDate indicates the trandate could not be parsed.
	ErrInvalidTranDate = errors.New("invalid trandate")
	// ErrNegativeQuantity indicates an adjustment or receipt carried a negative quantity.
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	// ErrEmptyItemID indicates an adjustment without an item identifier.
	ErrEmptyItemID = errors.New("itemId is required")
)

// ValidationError reports input that was rejected before the record store was touched.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundError reports a record missing from the record store.
type NotFoundError struct {
	Type string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Type, e.ID)
}

// StoreError wraps a failure raised by the record store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func validationf(err error, format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...), Err: err}
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
