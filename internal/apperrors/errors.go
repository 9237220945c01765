package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidState indicates an operation was attempted against an entity in the
// wrong lifecycle state (e.g. mutating a posted transaction).
var ErrInvalidState = errors.New("invalid state for operation")

// ErrForbidden indicates the acting user is not allowed to perform the operation.
var ErrForbidden = errors.New("operation not permitted")

// ErrConflict indicates the operation lost a concurrent update race and should
// be retried against fresh state.
var ErrConflict = errors.New("conflicting concurrent update")

// AppError wraps a lower-level error with a status code and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that wraps ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// UnbalancedTransactionError is returned when a transaction's debit and credit
// totals do not match at post time. It carries both computed totals so callers
// can show the operator exactly how far off the entry is.
type UnbalancedTransactionError struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

func (e *UnbalancedTransactionError) Error() string {
	return fmt.Sprintf("transaction does not balance: debits %s, credits %s",
		e.Debits.StringFixed(2), e.Credits.StringFixed(2))
}

// HasDependentAllocationsError is returned when a reversal is blocked because
// payments have been allocated against the transaction being reversed.
type HasDependentAllocationsError struct {
	TransactionID   string
	AllocatedAmount decimal.Decimal
}

func (e *HasDependentAllocationsError) Error() string {
	return fmt.Sprintf("transaction %s has %s in dependent allocations and cannot be reversed",
		e.TransactionID, e.AllocatedAmount.StringFixed(2))
}
