// Package loyalty validates point redemption against balance and policy and
// converts points to monetary discounts.
package loyalty

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
)

// Result is the outcome of a redemption request. A clamped request carries
// a Reason so the caller can notify the user and adjust state silently;
// clamping is never a hard failure.
type Result struct {
	Accepted   int
	MaxAllowed int
	Discount   decimal.Decimal
	Reason     string
}

// Validate clamps a redemption request to min(requested, available,
// policyMax) where policyMax keeps the monetary discount within the
// store's redemption-fraction cap on the pre-discount total. A request
// whose discount would fall below the minimum fraction is zeroed with a
// reason instead of clamped up. The discount is floored to the centavo.
func Validate(available, requested int, preDiscountTotal decimal.Decimal, settings domain.StoreSettings) Result {
	if requested < 0 {
		requested = 0
	}
	if available < 0 {
		available = 0
	}

	maxAllowed := policyMax(preDiscountTotal, settings)
	if available < maxAllowed {
		maxAllowed = available
	}

	accepted := requested
	var reason string
	if accepted > maxAllowed {
		accepted = maxAllowed
		switch {
		case requested > available:
			reason = fmt.Sprintf("only %d points available", available)
		default:
			reason = fmt.Sprintf("redemption limited to %d points on this order", maxAllowed)
		}
	}

	discount := Convert(accepted, settings.ConversionRate)
	if accepted > 0 && settings.MinRedeemFraction.IsPositive() {
		minDiscount := preDiscountTotal.Mul(settings.MinRedeemFraction)
		if discount.LessThan(minDiscount) {
			accepted = 0
			discount = decimal.Zero
			reason = fmt.Sprintf("a redemption must be worth at least %s on this order", minDiscount.StringFixed(2))
		}
	}

	return Result{
		Accepted:   accepted,
		MaxAllowed: maxAllowed,
		Discount:   discount,
		Reason:     reason,
	}
}

// Convert turns redeemed points into a discount, rounded down to the
// currency's minor unit.
func Convert(points int, conversionRate decimal.Decimal) decimal.Decimal {
	if points <= 0 {
		return decimal.Zero
	}
	return domain.FloorToCents(decimal.NewFromInt(int64(points)).Mul(conversionRate))
}

// policyMax is the largest point count whose converted discount stays
// within the redeemable share of the pre-discount total. Without a
// configured cap the whole total is redeemable: no negative totals, no
// implied cash-back.
func policyMax(preDiscountTotal decimal.Decimal, settings domain.StoreSettings) int {
	if !settings.ConversionRate.IsPositive() || !preDiscountTotal.IsPositive() {
		return 0
	}
	limit := preDiscountTotal
	if settings.MaxRedeemFraction.IsPositive() {
		limit = preDiscountTotal.Mul(settings.MaxRedeemFraction)
	}
	return int(limit.Div(settings.ConversionRate).IntPart())
}

// EarnedPoints computes the points this order will earn. Policy reading
// confirmed with product: earning is based on the subtotal only, promotion
// discounts already baked into it; the point-redemption discount is prorated
// out of the subtotal by the subtotal's share of the pre-discount total; the
// delivery fee never earns points.
func EarnedPoints(subtotal, redemptionDiscount, deliveryFee, earnRate decimal.Decimal) int {
	if !subtotal.IsPositive() || !earnRate.IsPositive() {
		return 0
	}
	base := subtotal
	preDiscount := subtotal.Add(deliveryFee)
	if redemptionDiscount.IsPositive() && preDiscount.IsPositive() {
		share := redemptionDiscount.Mul(subtotal).Div(preDiscount)
		base = subtotal.Sub(share)
	}
	if base.IsNegative() {
		return 0
	}
	return int(base.Mul(earnRate).IntPart())
}
