package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported promotion discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the unit base price.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a flat per-unit value, capped at the base price.
	DiscountFixed DiscountType = "fixed"
)

// Promotion is a time-bounded discount tied to a single product. At most one
// promotion is active per product per instant; expired promotions are inert.
type Promotion struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Type      DiscountType    `json:"type"`
	Value     decimal.Decimal `json:"value"`
	StartsAt  time.Time       `json:"starts_at"`
	EndsAt    time.Time       `json:"ends_at"`
}

// ActiveAt reports whether the promotion applies at the given instant.
// Both window ends are inclusive so a promotion created for a single day
// still covers its closing second.
func (p *Promotion) ActiveAt(t time.Time) bool {
	if p == nil {
		return false
	}
	return !t.Before(p.StartsAt) && !t.After(p.EndsAt)
}
