package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrRecordNotFound     = errors.New("payment record not found")
	ErrRecordConflict     = errors.New("payment record already exists for this period")
	ErrUserNotFound       = errors.New("user not found")
	ErrPaymentRequired    = errors.New("payment required")
	ErrUserNotApproved    = errors.New("user account not approved")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidStatus      = errors.New("invalid payment status")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeRecordNotFound     = "RECORD_NOT_FOUND"
	ErrCodeRecordConflict     = "RECORD_CONFLICT"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodePaymentRequired    = "PAYMENT_REQUIRED"
	ErrCodeUserNotApproved    = "USER_NOT_APPROVED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeDependencyFailure  = "DEPENDENCY_FAILURE"
)

// Wrap common errors with business context

func WrapRecordNotFound(recordID string) *BusinessError {
	return NewBusinessError(
		ErrCodeRecordNotFound,
		fmt.Sprintf("Payment record %s not found", recordID),
		ErrRecordNotFound,
	)
}

func WrapRecordConflict(userID, periodKey string) *BusinessError {
	return NewBusinessError(
		ErrCodeRecordConflict,
		fmt.Sprintf("User %s already has a payment record for period %s", userID, periodKey),
		ErrRecordConflict,
	)
}

func WrapUserNotFound(userID string) *BusinessError {
	return NewBusinessError(
		ErrCodeUserNotFound,
		fmt.Sprintf("User %s not found", userID),
		ErrUserNotFound,
	)
}

func WrapPaymentRequired(amountDue, instructions string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentRequired,
		fmt.Sprintf("Monthly payment of %s is due. %s", amountDue, instructions),
		ErrPaymentRequired,
	)
}

func WrapInvalidStatus(status string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidStatus,
		fmt.Sprintf("%q is not a valid payment status", status),
		ErrInvalidStatus,
	)
}

func WrapDependencyFailure(op string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDependencyFailure,
		fmt.Sprintf("%s failed", op),
		err,
	)
}
