package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return New(srv.URL, 2*time.Second, nil), srv
}

func TestSettings_Success(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/settings/public", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"delivery_fee":                "11.90",
			"loyalty_conversion_rate":     "0.01",
			"loyalty_earn_rate":           "1",
			"loyalty_min_redeem_fraction": "0.02",
			"loyalty_max_redeem_fraction": "0.5",
			"estimated_delivery_min":      45,
		})
	}))
	defer srv.Close()

	settings, err := client.Settings(context.Background())

	require.NoError(t, err)
	assert.True(t, settings.DeliveryFee.Equal(d("11.90")))
	assert.True(t, settings.MinRedeemFraction.Equal(d("0.02")))
	assert.True(t, settings.MaxRedeemFraction.Equal(d("0.5")))
	assert.Equal(t, 45, settings.EstimatedDeliveryMin)
}

func TestSettings_FallbackWhenUnreachable(t *testing.T) {
	var calls atomic.Int64
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	settings, err := client.Settings(context.Background())

	require.NoError(t, err)
	assert.True(t, settings.DeliveryFee.Equal(fallbackSettings.DeliveryFee))
	assert.Equal(t, int64(defaultReadAttempts), calls.Load(), "read calls retry silently")
}

func TestBalance_DegradesToZero(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	balance, err := client.Balance(context.Background(), 42)

	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestGetPromotion(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("product_id") {
		case "7":
			json.NewEncoder(w).Encode(map[string]any{
				"id":                  3,
				"product_id":          7,
				"discount_percentage": "20",
				"starts_at":           now.Add(-time.Hour),
				"ends_at":             now.Add(time.Hour),
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	promo, err := client.GetPromotion(context.Background(), 7, now)
	require.NoError(t, err)
	require.NotNil(t, promo)
	assert.Equal(t, domain.DiscountPercentage, promo.Type)
	assert.True(t, promo.Value.Equal(d("20")))

	promo, err = client.GetPromotion(context.Background(), 8, now)
	require.NoError(t, err)
	assert.Nil(t, promo)
}

func TestSimulateCapacity(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req simulateRequestDTO
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(5), req.ProductID)
		require.Len(t, req.Extras, 1)
		assert.Equal(t, int64(10), req.Extras[0].IngredientID)

		json.NewEncoder(w).Encode(simulateResponseDTO{MaxQuantity: 2, LimitingIngredient: "bacon"})
	}))
	defer srv.Close()

	cap, err := client.SimulateCapacity(context.Background(), domain.CartItem{
		ProductID: 5,
		Quantity:  3,
		Extras:    []domain.ExtraSelection{{IngredientID: 10, UnitPrice: d("2.00"), Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, cap.MaxQuantity)
	assert.Equal(t, "bacon", cap.LimitingIngredient)
}

func TestSubmitOrder_Success(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/orders", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("Idempotency-Key"))

		var req SubmitOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "credit", req.PaymentMethod)
		assert.True(t, req.UseCart)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(SubmitOrderResponse{OrderID: 981, ConfirmationCode: "RB-2210"})
	}))
	defer srv.Close()

	resp, err := client.SubmitOrder(context.Background(), SubmitOrderRequest{
		PaymentMethod:  "credit",
		OrderType:      "delivery",
		UseCart:        true,
		IdempotencyKey: "key-123",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(981), resp.OrderID)
	assert.Equal(t, "RB-2210", resp.ConfirmationCode)
}

func TestSubmitOrder_BusinessError(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"category": "store_closed", "message": "store is closed"},
		})
	}))
	defer srv.Close()

	_, err := client.SubmitOrder(context.Background(), SubmitOrderRequest{PaymentMethod: "pix", UseCart: true})

	var cerr *domain.CheckoutError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, domain.ErrorBusiness, cerr.Category)
	assert.Equal(t, "store is closed", cerr.Message)
}

func TestSubmitOrder_StockErrorCategory(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"category":            "insufficient_stock",
				"product_id":          14,
				"max_quantity":        1,
				"limiting_ingredient": "picanha",
				"message":             "not enough picanha",
			},
		})
	}))
	defer srv.Close()

	_, err := client.SubmitOrder(context.Background(), SubmitOrderRequest{PaymentMethod: "pix", UseCart: true})

	var cerr *domain.CheckoutError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, domain.ErrorStock, cerr.Category)
	assert.Equal(t, int64(14), cerr.ProductID)
	assert.Equal(t, 1, cerr.MaxQuantity)
	assert.Equal(t, "picanha", cerr.LimitingIngredient)
}

func TestSubmitOrder_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // server gone: pure transport failure

	client := New(url, time.Second, nil)
	_, err := client.SubmitOrder(context.Background(), SubmitOrderRequest{PaymentMethod: "pix", UseCart: true})

	require.Error(t, err)
	var cerr *domain.CheckoutError
	assert.False(t, errors.As(err, &cerr), "transport failures are not checkout errors")
}
