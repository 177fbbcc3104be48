package common

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies failures so the HTTP layer can choose a status code
// without inspecting messages.
type ErrorKind string

const (
	KindValidation             ErrorKind = "VALIDATION_ERROR"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindConflict               ErrorKind = "CONFLICT"
	KindDuplicateInvoiceNumber ErrorKind = "DUPLICATE_INVOICE_NUMBER"
	KindUnauthorized           ErrorKind = "UNAUTHORIZED"
	KindForbidden              ErrorKind = "FORBIDDEN"
	KindPayment                ErrorKind = "PAYMENT_ERROR"
	KindRateLimited            ErrorKind = "RATE_LIMITED"
)

// AppError is the structured failure returned by services and repositories.
type AppError struct {
	Kind    ErrorKind
	Message string
	Field   string
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

// Is matches on kind so callers can write errors.Is(err, common.ErrNotFound).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrValidation             = &AppError{Kind: KindValidation}
	ErrNotFound               = &AppError{Kind: KindNotFound}
	ErrConflict               = &AppError{Kind: KindConflict}
	ErrDuplicateInvoiceNumber = &AppError{Kind: KindDuplicateInvoiceNumber}
	ErrUnauthorized           = &AppError{Kind: KindUnauthorized}
	ErrForbidden              = &AppError{Kind: KindForbidden}
	ErrPayment                = &AppError{Kind: KindPayment}
	ErrRateLimited            = &AppError{Kind: KindRateLimited}
)

func NewValidationError(field, message string) *AppError {
	return &AppError{Kind: KindValidation, Field: field, Message: message}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewConflictError(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Err: err}
}

func NewDuplicateInvoiceNumberError(number string, err error) *AppError {
	return &AppError{Kind: KindDuplicateInvoiceNumber, Message: fmt.Sprintf("invoice number %s already exists", number), Err: err}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewPaymentError(message string, err error) *AppError {
	return &AppError{Kind: KindPayment, Message: message, Err: err}
}

func NewRateLimitedError(message string) *AppError {
	return &AppError{Kind: KindRateLimited, Message: message}
}

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindDuplicateInvoiceNumber:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindPayment:
		return http.StatusPaymentRequired
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
