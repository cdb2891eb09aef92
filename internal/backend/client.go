// Package backend is the HTTP client for the storefront's own services:
// public settings, loyalty balance, active promotions, capacity simulation
// and order submission. Read calls retry silently and fall back; the
// submission call maps structured business errors and never auto-retries
// them.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/delivery"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/stock"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/pkg/circuitbreaker"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/pkg/metrics"
)

const (
	defaultReadAttempts = 3
	readRetryDelay      = 200 * time.Millisecond
)

// fallbackSettings is used when the settings service stays unreachable
// through the silent retries. The checkout degrades, it does not block.
var fallbackSettings = domain.StoreSettings{
	DeliveryFee:          delivery.FallbackFee,
	ConversionRate:       decimal.RequireFromString("0.01"),
	EarnRate:             decimal.RequireFromString("1"),
	MaxRedeemFraction:    decimal.RequireFromString("1"),
	EstimatedDeliveryMin: 50,
	EstimatedPickupMin:   20,
}

type Client struct {
	baseURL string
	http    *http.Client
	reads   *gobreaker.CircuitBreaker[[]byte]
	submits *gobreaker.CircuitBreaker[[]byte]
	m       *metrics.CheckoutMetrics
}

func New(baseURL string, timeout time.Duration, m *metrics.CheckoutMetrics) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		reads:   circuitbreaker.New[[]byte]("backend-reads"),
		submits: circuitbreaker.New[[]byte]("backend-submit"),
		m:       m,
	}
}

// Settings fetches the public storefront settings. Unreachable service
// resolves to the hard-coded fallback after bounded retries.
func (c *Client) Settings(ctx context.Context) (domain.StoreSettings, error) {
	var dto settingsDTO
	err := c.getWithRetry(ctx, "settings", "/api/v1/settings/public", &dto)
	if err != nil {
		log.Printf("settings fetch failed, using fallback: %v", err)
		return fallbackSettings, nil
	}
	return domain.StoreSettings{
		DeliveryFee:          dto.DeliveryFee,
		ConversionRate:       dto.ConversionRate,
		EarnRate:             dto.EarnRate,
		MinRedeemFraction:    dto.MinRedeemFraction,
		MaxRedeemFraction:    dto.MaxRedeemFraction,
		EstimatedDeliveryMin: dto.EstimatedDeliveryMin,
		EstimatedPickupMin:   dto.EstimatedPickupMin,
	}, nil
}

// Balance fetches the loyalty point balance for an account. Failure
// degrades to a zero balance so checkout proceeds without redemption.
func (c *Client) Balance(ctx context.Context, accountID int64) (int, error) {
	var dto balanceDTO
	path := fmt.Sprintf("/api/v1/loyalty/%d/balance", accountID)
	if err := c.getWithRetry(ctx, "balance", path, &dto); err != nil {
		log.Printf("balance fetch failed for account %d, assuming zero: %v", accountID, err)
		return 0, nil
	}
	return dto.Balance, nil
}

// GetPromotion looks up the promotion active for a product at the given
// instant. A 404 means no promotion; transport errors bubble up so the
// resolver can degrade on its own terms.
func (c *Client) GetPromotion(ctx context.Context, productID int64, at time.Time) (*domain.Promotion, error) {
	q := url.Values{}
	q.Set("product_id", strconv.FormatInt(productID, 10))
	q.Set("at", at.UTC().Format(time.RFC3339))

	body, status, err := c.do(ctx, c.reads, "promotion", http.MethodGet, "/api/v1/promotions/active?"+q.Encode(), nil, "")
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("promotion lookup returned status %d", status)
	}

	var dto promotionDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("decode promotion: %w", err)
	}
	return promotionFromDTO(dto), nil
}

// SimulateCapacity asks the capacity service for the maximum fulfillable
// quantity of the exact product+extras+modifications combination.
func (c *Client) SimulateCapacity(ctx context.Context, item domain.CartItem) (stock.Capacity, error) {
	req := simulateRequestDTO{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
	}
	for _, e := range item.Extras {
		req.Extras = append(req.Extras, simulateExtraDTO{IngredientID: e.IngredientID, Quantity: e.Quantity})
	}
	for _, m := range item.Modifications {
		req.Modifications = append(req.Modifications, simulateModifyDTO{IngredientID: m.IngredientID, Delta: m.Delta})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return stock.Capacity{}, fmt.Errorf("marshal simulation request: %w", err)
	}

	body, status, err := c.do(ctx, c.reads, "simulate", http.MethodPost, "/api/v1/stock/simulate", payload, "")
	if err != nil {
		return stock.Capacity{}, err
	}
	if status != http.StatusOK {
		return stock.Capacity{}, fmt.Errorf("capacity simulation returned status %d", status)
	}

	var dto simulateResponseDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return stock.Capacity{}, fmt.Errorf("decode simulation response: %w", err)
	}
	return stock.Capacity{MaxQuantity: dto.MaxQuantity, LimitingIngredient: dto.LimitingIngredient}, nil
}

// SubmitOrder posts the order. Business failures come back as
// *domain.CheckoutError; anything else is a transport error the caller may
// retry within its own bounds.
func (c *Client) SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*SubmitOrderResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	body, status, err := c.do(ctx, c.submits, "submit", http.MethodPost, "/api/v1/orders", payload, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	if status == http.StatusOK || status == http.StatusCreated {
		var resp SubmitOrderResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode order response: %w", err)
		}
		return &resp, nil
	}

	if cerr := decodeBusinessError(body, status); cerr != nil {
		return nil, cerr
	}
	return nil, fmt.Errorf("order submission returned status %d", status)
}

// decodeBusinessError converts a structured backend failure into the
// engine's error taxonomy. Unknown categories in the 4xx range are still
// business errors; 5xx without a payload stays transport.
func decodeBusinessError(body []byte, status int) *domain.CheckoutError {
	var dto errorDTO
	if err := json.Unmarshal(body, &dto); err != nil || dto.Error.Message == "" {
		if status >= 400 && status < 500 {
			return domain.NewBusinessError("", fmt.Sprintf("order rejected with status %d", status))
		}
		return nil
	}

	switch dto.Error.Category {
	case "insufficient_stock":
		return domain.NewStockError(dto.Error.ProductID, dto.Error.MaxQuantity, dto.Error.LimitingIngredient, dto.Error.Message)
	case "invalid_discount":
		return domain.NewRedemptionError(dto.Error.Message)
	case "invalid_address":
		return domain.NewBusinessError("address_id", dto.Error.Message)
	case "store_closed", "empty_cart":
		return domain.NewBusinessError(dto.Error.Field, dto.Error.Message)
	default:
		return domain.NewBusinessError(dto.Error.Field, dto.Error.Message)
	}
}

func promotionFromDTO(dto promotionDTO) *domain.Promotion {
	promo := &domain.Promotion{
		ID:        dto.ID,
		ProductID: dto.ProductID,
		StartsAt:  dto.StartsAt,
		EndsAt:    dto.EndsAt,
	}
	switch {
	case dto.DiscountPercentage != nil:
		promo.Type = domain.DiscountPercentage
		promo.Value = *dto.DiscountPercentage
	case dto.DiscountValue != nil:
		promo.Type = domain.DiscountFixed
		promo.Value = *dto.DiscountValue
	default:
		return nil
	}
	return promo
}

// getWithRetry performs the silent bounded retry used by read calls.
func (c *Client) getWithRetry(ctx context.Context, call, path string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= defaultReadAttempts; attempt++ {
		body, status, err := c.do(ctx, c.reads, call, http.MethodGet, path, nil, "")
		if err == nil && status == http.StatusOK {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
			return nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("%s returned status %d", path, status)
		}
		if errors.Is(lastErr, gobreaker.ErrOpenState) || ctx.Err() != nil {
			break
		}
		select {
		case <-time.After(readRetryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// do runs one HTTP round-trip through the given breaker and records its
// latency under the logical call name. Only transport-level failures count
// against the breaker.
func (c *Client) do(ctx context.Context, brk *gobreaker.CircuitBreaker[[]byte], call, method, path string, payload []byte, idempotencyKey string) ([]byte, int, error) {
	start := time.Now()
	var status int

	body, err := brk.Execute(func() ([]byte, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", idempotencyKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		return data, nil
	})

	if c.m != nil {
		c.m.BackendMS.WithLabelValues(call).Observe(float64(time.Since(start).Milliseconds()))
	}
	if err != nil {
		return nil, 0, err
	}
	return body, status, nil
}
