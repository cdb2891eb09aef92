package domain

import "fmt"

// ErrorCategory is the machine-readable class of a checkout failure.
type ErrorCategory string

const (
	// ErrorValidation is detectable before submission: missing address,
	// incomplete payment selection, malformed tax id, empty cart.
	ErrorValidation ErrorCategory = "validation"
	// ErrorRedemption means requested points exceeded balance or policy cap.
	// Always resolved by clamping, never a hard failure.
	ErrorRedemption ErrorCategory = "redemption"
	// ErrorStock means a line's quantity exceeds current capacity.
	ErrorStock ErrorCategory = "stock"
	// ErrorBusiness is a server-reported rule failure (store closed,
	// invalid discount, rejected address). Surfaced verbatim, no retry.
	ErrorBusiness ErrorCategory = "business"
	// ErrorTransport is a network/timeout failure after bounded retries.
	ErrorTransport ErrorCategory = "transport"
)

// CheckoutError is the structured failure result passed across component
// boundaries. Components return it rather than raising; the orchestrator
// branches on Category without exception-style control flow.
type CheckoutError struct {
	Category           ErrorCategory `json:"category"`
	Field              string        `json:"field,omitempty"`
	ProductID          int64         `json:"product_id,omitempty"`
	LimitingIngredient string        `json:"limiting_ingredient,omitempty"`
	MaxQuantity        int           `json:"max_quantity,omitempty"`
	Message            string        `json:"message"`
}

func (e *CheckoutError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Category, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Recoverable reports whether the UI should re-enable submission and
// re-prompt. Only transport exhaustion is treated as fatal.
func (e *CheckoutError) Recoverable() bool {
	return e.Category != ErrorTransport
}

func NewValidationError(field, msg string) *CheckoutError {
	return &CheckoutError{Category: ErrorValidation, Field: field, Message: msg}
}

func NewRedemptionError(msg string) *CheckoutError {
	return &CheckoutError{Category: ErrorRedemption, Message: msg}
}

func NewStockError(productID int64, maxQty int, limiting, msg string) *CheckoutError {
	return &CheckoutError{
		Category:           ErrorStock,
		ProductID:          productID,
		MaxQuantity:        maxQty,
		LimitingIngredient: limiting,
		Message:            msg,
	}
}

func NewBusinessError(field, msg string) *CheckoutError {
	return &CheckoutError{Category: ErrorBusiness, Field: field, Message: msg}
}

func NewTransportError(msg string) *CheckoutError {
	return &CheckoutError{Category: ErrorTransport, Message: msg}
}
