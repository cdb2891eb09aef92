package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentKind is the top-level payment method selection.
type PaymentKind string

const (
	PaymentPix  PaymentKind = "pix"
	PaymentCard PaymentKind = "card"
	PaymentCash PaymentKind = "cash"
)

// CardSubtype narrows a card payment. Empty means not chosen yet; a card
// payment is not submittable until the subtype is picked.
type CardSubtype string

const (
	CardSubtypeUnset  CardSubtype = ""
	CardSubtypeCredit CardSubtype = "credit"
	CardSubtypeDebit  CardSubtype = "debit"
)

// PaymentMethod is the tagged payment-method variant. Subtype is meaningful
// only for card, Tendered only for cash.
type PaymentMethod struct {
	Kind     PaymentKind      `json:"kind"`
	Subtype  CardSubtype      `json:"subtype,omitempty"`
	Tendered *decimal.Decimal `json:"tendered,omitempty"`
}

// WireString maps the variant to the backend's payment_method values. This
// is the only place the tagged type meets the wire format.
func (m PaymentMethod) WireString() (string, error) {
	switch m.Kind {
	case PaymentPix:
		return "pix", nil
	case PaymentCard:
		switch m.Subtype {
		case CardSubtypeCredit:
			return "credit", nil
		case CardSubtypeDebit:
			return "debit", nil
		default:
			return "", fmt.Errorf("card payment has no subtype")
		}
	case PaymentCash:
		return "money", nil
	default:
		return "", fmt.Errorf("unknown payment method %q", m.Kind)
	}
}

// Validate checks the method is complete enough to submit an order of the
// given type and total. Cash needs no tendered amount for pickup orders
// (change is handled at the counter) or when points cover the whole total.
func (m PaymentMethod) Validate(orderType OrderType, total decimal.Decimal) *CheckoutError {
	switch m.Kind {
	case PaymentPix:
		return nil
	case PaymentCard:
		if m.Subtype == CardSubtypeUnset {
			return NewValidationError("card_subtype", "card subtype required")
		}
		return nil
	case PaymentCash:
		if orderType == OrderTypePickup || total.IsZero() {
			return nil
		}
		if m.Tendered == nil {
			return NewValidationError("amount_paid", "cash amount required for delivery")
		}
		if m.Tendered.LessThan(total) {
			return NewValidationError("amount_paid", "cash amount is less than the order total")
		}
		return nil
	default:
		return NewValidationError("payment_method", "payment method required")
	}
}

// Change returns the change due for a cash payment, zero otherwise.
func (m PaymentMethod) Change(total decimal.Decimal) decimal.Decimal {
	if m.Kind != PaymentCash || m.Tendered == nil {
		return decimal.Zero
	}
	change := m.Tendered.Sub(total)
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}
