package delivery

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
)

func TestResolve(t *testing.T) {
	fee := decimal.RequireFromString("12.50")

	// pickup is always free, whatever the store configured
	assert.True(t, Resolve(domain.OrderTypePickup, fee).IsZero())
	assert.True(t, Resolve(domain.OrderTypePickup, decimal.Zero).IsZero())

	assert.True(t, Resolve(domain.OrderTypeDelivery, fee).Equal(fee))
	assert.True(t, Resolve(domain.OrderTypeDelivery, decimal.Zero).IsZero())

	// garbage configuration falls back instead of crediting the customer
	got := Resolve(domain.OrderTypeDelivery, decimal.RequireFromString("-3"))
	assert.True(t, got.Equal(FallbackFee))
}
