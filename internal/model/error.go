package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string            `json:"error"`
	Message       string            `json:"message"`
	Fields        map[string]string `json:"fields,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
}

// ErrorKind classifies domain errors for propagation and HTTP mapping.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindConflict
	KindNotFound
	KindAuthentication
	KindMalformedPayload
	KindGateway
	KindNotification
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuthentication:
		return "authentication"
	case KindMalformedPayload:
		return "malformed_payload"
	case KindGateway:
		return "gateway"
	case KindNotification:
		return "notification"
	default:
		return "unknown"
	}
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeMissingSource      = "MISSING_ORDER_SOURCE"
	ErrCodeEmptyOrder         = "EMPTY_ORDER"
	ErrCodeBelowMinimum       = "BELOW_MINIMUM_AMOUNT"
	ErrCodeAmountPrecision    = "AMOUNT_NOT_REPRESENTABLE"
	ErrCodeAmountOutOfRange   = "AMOUNT_OUT_OF_RANGE"
	ErrCodeQuantityOutOfRange = "QUANTITY_OUT_OF_RANGE"
	ErrCodePaymentCompleted   = "PAYMENT_ALREADY_COMPLETED"
	ErrCodeDuplicate          = "DUPLICATE_RESOURCE"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeCartNotFound       = "CART_NOT_FOUND"
	ErrCodeCartItemNotFound   = "CART_ITEM_NOT_FOUND"
	ErrCodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	ErrCodePaymentNotFound    = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidSignature   = "INVALID_SIGNATURE"
	ErrCodeInvalidPayload     = "INVALID_PAYLOAD"
	ErrCodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"
	ErrCodeNotificationFailed = "NOTIFICATION_FAILED"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business error carrying its kind, a stable code and,
// for validation failures, the offending fields.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *DomainError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, field := range names {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on kind and code so sentinel errors work with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error naming the invalid fields.
func NewValidationError(message string, fields map[string]string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    ErrCodeValidation,
		Message: message,
		Fields:  fields,
	}
}

// NewConflictError creates a conflict error.
func NewConflictError(code, message string) *DomainError {
	return NewDomainError(KindConflict, code, message)
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(code, message string) *DomainError {
	return NewDomainError(KindNotFound, code, message)
}

// NewGatewayError wraps a failure of the external payment processor.
func NewGatewayError(message string, err error) *DomainError {
	return &DomainError{
		Kind:    KindGateway,
		Code:    ErrCodeGatewayUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewNotificationError wraps a failed message delivery.
func NewNotificationError(message string, err error) *DomainError {
	return &DomainError{
		Kind:    KindNotification,
		Code:    ErrCodeNotificationFailed,
		Message: message,
		Err:     err,
	}
}

// KindOf returns the kind of the first DomainError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// IsKind reports whether err carries a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// Common domain errors
var (
	ErrMissingOrderSource = NewDomainError(KindValidation, ErrCodeMissingSource, "Either cart_id or product_id must be provided")
	ErrPaymentCompleted   = NewConflictError(ErrCodePaymentCompleted, "payment already completed")
	ErrEmptyOrder         = NewDomainError(KindValidation, ErrCodeEmptyOrder, "Order total cannot be zero. Add items to your order before paying.")
	ErrProductNotFound    = NewNotFoundError(ErrCodeProductNotFound, "No product with the given ID was found")
	ErrOrderNotFound      = NewNotFoundError(ErrCodeOrderNotFound, "Order not found")
	ErrCartNotFound       = NewNotFoundError(ErrCodeCartNotFound, "Cart not found")
	ErrCartItemNotFound   = NewNotFoundError(ErrCodeCartItemNotFound, "The cart has no item for this product")
	ErrAccountNotFound    = NewNotFoundError(ErrCodeAccountNotFound, "Account not found")
	ErrPaymentNotFound    = NewNotFoundError(ErrCodePaymentNotFound, "No payment matches the gateway transaction")
	ErrInvalidSignature   = NewDomainError(KindAuthentication, ErrCodeInvalidSignature, "Invalid signature")
	ErrInvalidPayload     = NewDomainError(KindMalformedPayload, ErrCodeInvalidPayload, "Invalid payload")
)

// Storage range errors, raised when a value passes request validation but does
// not fit the column it is written to.
var (
	ErrQuantityOutOfRange = &DomainError{
		Kind:    KindValidation,
		Code:    ErrCodeQuantityOutOfRange,
		Message: "Quantity is out of range",
		Fields:  map[string]string{"quantity": fmt.Sprintf("Must be at most %d.", MaxItemQuantity)},
	}
	ErrAmountOutOfRange = NewDomainError(KindValidation, ErrCodeAmountOutOfRange, "The order total exceeds the largest amount that can be recorded")
)
