// Package pricing turns cart items and resolved promotions into priced lines.
// All arithmetic is decimal; a line flagged by input sanitation prices to
// zero and stays excluded from submission.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
)

// PriceLine computes the original and discounted totals for one cart line.
//
// Extras are always billable. Base modifications bill only positive deltas;
// removals are free. A fixed promotion never exceeds the unit base price, so
// a discounted unit can reach zero but never go negative.
func PriceLine(item domain.CartItem, promo *domain.Promotion) domain.PricedLine {
	line := domain.PricedLine{Item: item}
	if item.Excluded {
		line.Original = decimal.Zero
		line.Discounted = decimal.Zero
		line.DiscountAmount = decimal.Zero
		return line
	}

	qty := decimal.NewFromInt(int64(item.Quantity))

	extras := decimal.Zero
	for _, e := range item.Extras {
		extras = extras.Add(e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity))))
	}

	mods := decimal.Zero
	for _, m := range item.Modifications {
		if m.Delta > 0 {
			mods = mods.Add(m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Delta))))
		}
	}

	line.Original = item.BasePrice.Mul(qty).Add(extras).Add(mods)
	line.Discounted = line.Original

	// activeness is the resolver's concern; a non-nil promotion here is
	// already validated against the reference timestamp
	if promo != nil {
		unitDiscount := unitDiscount(item.BasePrice, promo)
		if unitDiscount.IsPositive() {
			discounted := line.Original.Sub(unitDiscount.Mul(qty))
			if discounted.IsNegative() {
				discounted = decimal.Zero
			}
			line.Discounted = discounted
			line.Promotion = promo
		}
	}

	line.DiscountAmount = line.Original.Sub(line.Discounted)
	return line
}

// PriceAll prices every line and returns the subtotal of the submittable
// ones. Excluded lines contribute nothing.
func PriceAll(items []domain.CartItem, promos map[int64]*domain.Promotion) ([]domain.PricedLine, decimal.Decimal) {
	lines := make([]domain.PricedLine, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		line := PriceLine(item, promos[item.ProductID])
		lines = append(lines, line)
		if !line.Item.Excluded {
			subtotal = subtotal.Add(line.Discounted)
		}
	}
	return lines, subtotal
}

// unitDiscount converts a promotion into a per-unit monetary discount.
// Percentage promotions discount a share of the base price; fixed promotions
// are clamped at the base price.
func unitDiscount(basePrice decimal.Decimal, promo *domain.Promotion) decimal.Decimal {
	if promo == nil {
		return decimal.Zero
	}
	switch promo.Type {
	case domain.DiscountPercentage:
		return basePrice.Mul(promo.Value).Div(decimal.NewFromInt(100))
	case domain.DiscountFixed:
		if promo.Value.GreaterThan(basePrice) {
			return basePrice
		}
		return promo.Value
	default:
		return decimal.Zero
	}
}
