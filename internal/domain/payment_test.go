package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWireString(t *testing.T) {
	tendered := d("50.00")

	cases := []struct {
		name   string
		method PaymentMethod
		want   string
		err    bool
	}{
		{"pix", PaymentMethod{Kind: PaymentPix}, "pix", false},
		{"credit card", PaymentMethod{Kind: PaymentCard, Subtype: CardSubtypeCredit}, "credit", false},
		{"debit card", PaymentMethod{Kind: PaymentCard, Subtype: CardSubtypeDebit}, "debit", false},
		{"cash", PaymentMethod{Kind: PaymentCash, Tendered: &tendered}, "money", false},
		{"card without subtype", PaymentMethod{Kind: PaymentCard}, "", true},
		{"unknown", PaymentMethod{Kind: PaymentKind("gold")}, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.method.WireString()
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidate_CardSubtypeRequired(t *testing.T) {
	m := PaymentMethod{Kind: PaymentCard}

	cerr := m.Validate(OrderTypeDelivery, d("30.00"))

	require.NotNil(t, cerr)
	assert.Equal(t, ErrorValidation, cerr.Category)
	assert.Equal(t, "card_subtype", cerr.Field)

	m.Subtype = CardSubtypeCredit
	assert.Nil(t, m.Validate(OrderTypeDelivery, d("30.00")))
}

func TestValidate_CashDelivery(t *testing.T) {
	total := d("42.50")

	// no tendered amount on a delivery order is incomplete
	m := PaymentMethod{Kind: PaymentCash}
	cerr := m.Validate(OrderTypeDelivery, total)
	require.NotNil(t, cerr)
	assert.Equal(t, "amount_paid", cerr.Field)

	// insufficient cash
	low := d("40.00")
	m.Tendered = &low
	require.NotNil(t, m.Validate(OrderTypeDelivery, total))

	// enough cash
	enough := d("50.00")
	m.Tendered = &enough
	assert.Nil(t, m.Validate(OrderTypeDelivery, total))
	assert.True(t, m.Change(total).Equal(d("7.50")))
}

func TestValidate_CashExemptions(t *testing.T) {
	m := PaymentMethod{Kind: PaymentCash}

	// pickup never needs a tendered amount
	assert.Nil(t, m.Validate(OrderTypePickup, d("42.50")))

	// a fully point-covered order never needs a tendered amount
	assert.Nil(t, m.Validate(OrderTypeDelivery, decimal.Zero))
}
