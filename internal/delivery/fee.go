// Package delivery resolves the delivery fee for an order type.
package delivery

import (
	"github.com/shopspring/decimal"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
)

// FallbackFee is charged when the settings service cannot be reached.
// Updated whenever the store changes its published fee.
var FallbackFee = decimal.RequireFromString("8.00")

// Resolve returns the applicable fee: zero for pickup regardless of the
// configured value, the configured fee for delivery. A negative configured
// fee is treated as misconfiguration and falls back.
func Resolve(orderType domain.OrderType, configured decimal.Decimal) decimal.Decimal {
	if orderType == domain.OrderTypePickup {
		return decimal.Zero
	}
	if configured.IsNegative() {
		return FallbackFee
	}
	return configured
}
