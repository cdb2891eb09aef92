package domain

import "github.com/shopspring/decimal"

// ExtraSelection is an ingredient added on top of the recipe default.
// Extras are always billable.
type ExtraSelection struct {
	IngredientID int64           `json:"ingredient_id"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
}

// BaseModification is a signed adjustment to a recipe's default ingredient
// quantity. Positive deltas are billed at UnitPrice, negative deltas are
// free removals.
type BaseModification struct {
	IngredientID int64           `json:"ingredient_id"`
	Delta        int             `json:"delta"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// CartItem is one line of the customer's cart as supplied at session start.
// The engine never owns the cart; it prices and validates a snapshot of it.
type CartItem struct {
	ProductID     int64              `json:"product_id"`
	Name          string             `json:"name"`
	BasePrice     decimal.Decimal    `json:"base_price"`
	Quantity      int                `json:"quantity"`
	Extras        []ExtraSelection   `json:"extras,omitempty"`
	Modifications []BaseModification `json:"modifications,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	PrepMinutes   int                `json:"prep_minutes,omitempty"`

	// Excluded marks a line whose numeric input failed parsing. Excluded
	// lines price to zero and never reach submission.
	Excluded        bool   `json:"excluded,omitempty"`
	ExclusionReason string `json:"exclusion_reason,omitempty"`
}

// PricedLine is a CartItem after promotion resolution and pricing.
type PricedLine struct {
	Item           CartItem        `json:"item"`
	Original       decimal.Decimal `json:"original"`
	Discounted     decimal.Decimal `json:"discounted"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Promotion      *Promotion      `json:"promotion,omitempty"`
}
