package domain

import "github.com/shopspring/decimal"

// OrderType is the fulfillment mode for an order.
type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
)

// LoyaltyAccount is the customer's point balance and the store's conversion
// policy, fetched once at session start.
type LoyaltyAccount struct {
	Balance        int             `json:"balance"`
	ConversionRate decimal.Decimal `json:"conversion_rate"` // currency per point
}

// StoreSettings are the public storefront settings the engine reads at
// session start: fee, loyalty rates and timing estimates.
type StoreSettings struct {
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	ConversionRate decimal.Decimal `json:"conversion_rate"` // currency per redeemed point
	EarnRate       decimal.Decimal `json:"earn_rate"`       // points per currency unit spent

	// Redemption discounts are bounded as fractions of the pre-discount
	// total. A zero MaxRedeemFraction means the whole order is redeemable;
	// a zero MinRedeemFraction means any positive redemption is accepted.
	MinRedeemFraction decimal.Decimal `json:"min_redeem_fraction"`
	MaxRedeemFraction decimal.Decimal `json:"max_redeem_fraction"`

	EstimatedDeliveryMin int `json:"estimated_delivery_min"`
	EstimatedPickupMin   int `json:"estimated_pickup_min"`
}

// OrderDraft is the single source of truth for one checkout attempt. It is
// owned by the orchestrator; nothing else mutates it.
type OrderDraft struct {
	Lines              []PricedLine    `json:"lines"`
	OrderType          OrderType       `json:"order_type"`
	DeliveryFee        decimal.Decimal `json:"delivery_fee"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	RequestedPoints    int             `json:"requested_points"`
	AcceptedPoints     int             `json:"accepted_points"`
	RedemptionDiscount decimal.Decimal `json:"redemption_discount"`
	RedemptionNotice   string          `json:"redemption_notice,omitempty"`
	Payment            PaymentMethod   `json:"payment"`
	AddressID          int64           `json:"address_id,omitempty"`
	CPF                string          `json:"cpf,omitempty"`
	Notes              string          `json:"notes,omitempty"`
}

// PreDiscountTotal is subtotal plus delivery fee, before point redemption.
func (d *OrderDraft) PreDiscountTotal() decimal.Decimal {
	return d.Subtotal.Add(d.DeliveryFee)
}

// ResolveTotal is the one place an order total is read from a draft:
// subtotal after promotions, plus delivery fee, minus redemption discount,
// clamped at zero from below.
func (d *OrderDraft) ResolveTotal() decimal.Decimal {
	total := d.Subtotal.Add(d.DeliveryFee).Sub(d.RedemptionDiscount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// SubmittableLines filters out lines excluded by input sanitation.
func (d *OrderDraft) SubmittableLines() []PricedLine {
	out := make([]PricedLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		if !l.Item.Excluded {
			out = append(out, l)
		}
	}
	return out
}
