package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPriceLine_NoPromotion(t *testing.T) {
	item := domain.CartItem{
		ProductID: 1,
		BasePrice: d("24.90"),
		Quantity:  2,
	}

	line := PriceLine(item, nil)

	assert.True(t, line.Original.Equal(d("49.80")))
	assert.True(t, line.Discounted.Equal(d("49.80")))
	assert.True(t, line.DiscountAmount.IsZero())
	assert.Nil(t, line.Promotion)
}

func TestPriceLine_ExtrasAndModifications(t *testing.T) {
	item := domain.CartItem{
		ProductID: 2,
		BasePrice: d("20.00"),
		Quantity:  1,
		Extras: []domain.ExtraSelection{
			{IngredientID: 10, UnitPrice: d("3.00"), Quantity: 2}, // +6.00
		},
		Modifications: []domain.BaseModification{
			{IngredientID: 11, Delta: 1, UnitPrice: d("1.50")},  // +1.50
			{IngredientID: 12, Delta: -2, UnitPrice: d("9.99")}, // removal, free
		},
	}

	line := PriceLine(item, nil)

	assert.True(t, line.Original.Equal(d("27.50")), "got %s", line.Original)
}

func TestPriceLine_PercentagePromotion(t *testing.T) {
	// 20% off a R$30.00 item with quantity 2: 60.00 -> 48.00
	item := domain.CartItem{ProductID: 3, BasePrice: d("30.00"), Quantity: 2}
	promo := &domain.Promotion{ProductID: 3, Type: domain.DiscountPercentage, Value: d("20")}

	line := PriceLine(item, promo)

	assert.True(t, line.Original.Equal(d("60.00")))
	assert.True(t, line.Discounted.Equal(d("48.00")), "got %s", line.Discounted)
	assert.True(t, line.DiscountAmount.Equal(d("12.00")))
	require.NotNil(t, line.Promotion)
}

func TestPriceLine_FixedPromotionClampedAtBasePrice(t *testing.T) {
	// R$5.00 off an item whose base price is R$3.00: unit discount clamps
	// to 3.00, never a negative unit price
	item := domain.CartItem{ProductID: 4, BasePrice: d("3.00"), Quantity: 2}
	promo := &domain.Promotion{ProductID: 4, Type: domain.DiscountFixed, Value: d("5.00")}

	line := PriceLine(item, promo)

	assert.True(t, line.Original.Equal(d("6.00")))
	assert.True(t, line.Discounted.IsZero())
	assert.True(t, line.DiscountAmount.Equal(d("6.00")))
}

func TestPriceLine_DiscountNeverExceedsOriginal(t *testing.T) {
	// extras keep the discounted total positive even at 100% off the base
	item := domain.CartItem{
		ProductID: 5,
		BasePrice: d("10.00"),
		Quantity:  1,
		Extras:    []domain.ExtraSelection{{IngredientID: 1, UnitPrice: d("4.00"), Quantity: 1}},
	}
	promo := &domain.Promotion{ProductID: 5, Type: domain.DiscountPercentage, Value: d("100")}

	line := PriceLine(item, promo)

	assert.True(t, line.Discounted.Equal(d("4.00")))
	assert.True(t, line.DiscountAmount.LessThanOrEqual(line.Original))
	assert.False(t, line.Discounted.IsNegative())
}

func TestPriceLine_ExcludedLinePricesToZero(t *testing.T) {
	item := domain.CartItem{
		ProductID:       6,
		BasePrice:       d("10.00"),
		Quantity:        1,
		Excluded:        true,
		ExclusionReason: "malformed price",
	}

	line := PriceLine(item, &domain.Promotion{Type: domain.DiscountPercentage, Value: d("50")})

	assert.True(t, line.Original.IsZero())
	assert.True(t, line.Discounted.IsZero())
	assert.True(t, line.Item.Excluded)
}

func TestPriceAll(t *testing.T) {
	items := []domain.CartItem{
		{ProductID: 1, BasePrice: d("30.00"), Quantity: 2},
		{ProductID: 2, BasePrice: d("12.00"), Quantity: 1},
		{ProductID: 3, BasePrice: d("99.00"), Quantity: 1, Excluded: true},
	}
	promos := map[int64]*domain.Promotion{
		1: {ProductID: 1, Type: domain.DiscountPercentage, Value: d("20")},
	}

	lines, subtotal := PriceAll(items, promos)

	require.Len(t, lines, 3)
	// 48.00 + 12.00, excluded line contributes nothing
	assert.True(t, subtotal.Equal(d("60.00")), "got %s", subtotal)
}
