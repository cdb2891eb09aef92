package backend

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmitOrderRequest is the storefront backend's order-creation payload.
// Line items are resolved server-side from the persisted cart (use_cart);
// the engine submits only the decisions it owns.
type SubmitOrderRequest struct {
	PaymentMethod  string           `json:"payment_method"` // "pix" | "credit" | "debit" | "money"
	OrderType      string           `json:"order_type"`     // "delivery" | "pickup"
	AddressID      *int64           `json:"address_id,omitempty"`
	AmountPaid     *decimal.Decimal `json:"amount_paid,omitempty"`
	PointsToRedeem int              `json:"points_to_redeem"`
	CPFOnInvoice   *string          `json:"cpf_on_invoice,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	UseCart        bool             `json:"use_cart"`
	Promotions     []PromotionEcho  `json:"promotions,omitempty"`

	// IdempotencyKey travels as a header, not in the body.
	IdempotencyKey string `json:"-"`
}

// PromotionEcho tells the server which promotions the client priced with so
// it can reject a stale discount instead of honouring it.
type PromotionEcho struct {
	ProductID          int64            `json:"product_id"`
	PromotionID        int64            `json:"promotion_id"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	DiscountValue      *decimal.Decimal `json:"discount_value,omitempty"`
}

// SubmitOrderResponse is the success payload.
type SubmitOrderResponse struct {
	OrderID          int64  `json:"order_id"`
	ConfirmationCode string `json:"confirmation_code"`
}

// errorDTO is the backend's structured failure payload. Stock failures
// name the offending product so the client can offer to drop it.
type errorDTO struct {
	Error struct {
		Category           string `json:"category"`
		Field              string `json:"field,omitempty"`
		ProductID          int64  `json:"product_id,omitempty"`
		MaxQuantity        int    `json:"max_quantity,omitempty"`
		LimitingIngredient string `json:"limiting_ingredient,omitempty"`
		Message            string `json:"message"`
	} `json:"error"`
}

type settingsDTO struct {
	DeliveryFee          decimal.Decimal `json:"delivery_fee"`
	ConversionRate       decimal.Decimal `json:"loyalty_conversion_rate"`
	EarnRate             decimal.Decimal `json:"loyalty_earn_rate"`
	MinRedeemFraction    decimal.Decimal `json:"loyalty_min_redeem_fraction"`
	MaxRedeemFraction    decimal.Decimal `json:"loyalty_max_redeem_fraction"`
	EstimatedDeliveryMin int             `json:"estimated_delivery_min"`
	EstimatedPickupMin   int             `json:"estimated_pickup_min"`
}

type balanceDTO struct {
	Balance int `json:"balance"`
}

type promotionDTO struct {
	ID                 int64            `json:"id"`
	ProductID          int64            `json:"product_id"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	DiscountValue      *decimal.Decimal `json:"discount_value,omitempty"`
	StartsAt           time.Time        `json:"starts_at"`
	EndsAt             time.Time        `json:"ends_at"`
}

type simulateRequestDTO struct {
	ProductID     int64               `json:"product_id"`
	Quantity      int                 `json:"quantity"`
	Extras        []simulateExtraDTO  `json:"extras,omitempty"`
	Modifications []simulateModifyDTO `json:"modifications,omitempty"`
}

type simulateExtraDTO struct {
	IngredientID int64 `json:"ingredient_id"`
	Quantity     int   `json:"quantity"`
}

type simulateModifyDTO struct {
	IngredientID int64 `json:"ingredient_id"`
	Delta        int   `json:"delta"`
}

type simulateResponseDTO struct {
	MaxQuantity        int    `json:"max_quantity"`
	LimitingIngredient string `json:"limiting_ingredient,omitempty"`
}
