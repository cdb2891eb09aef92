package checkout

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/backend"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/events"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/stock"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// waitFor polls cond until it holds or the test deadline is hopeless.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never held")
}

type settingsMock struct {
	settings domain.StoreSettings
	err      error
}

func (m *settingsMock) Settings(_ context.Context) (domain.StoreSettings, error) {
	return m.settings, m.err
}

type balanceMock struct {
	balance int
	err     error
	calls   atomic.Int64
}

func (m *balanceMock) Balance(_ context.Context, _ int64) (int, error) {
	m.calls.Add(1)
	return m.balance, m.err
}

type promosMock struct {
	promos map[int64]*domain.Promotion
}

func (m *promosMock) ResolveAll(_ context.Context, _ []domain.CartItem, _ time.Time) map[int64]*domain.Promotion {
	return m.promos
}

type stockMock struct {
	capacity map[int64]stock.Capacity
	err      error
	calls    atomic.Int64
}

func (m *stockMock) ValidateAll(_ context.Context, lines []domain.PricedLine) ([]stock.LineAvailability, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	results := make([]stock.LineAvailability, len(lines))
	for i, line := range lines {
		cap, ok := m.capacity[line.Item.ProductID]
		if !ok {
			cap = stock.Capacity{MaxQuantity: 99}
		}
		results[i] = stock.LineAvailability{
			Line:               line,
			Available:          cap.MaxQuantity >= line.Item.Quantity,
			MaxQuantity:        cap.MaxQuantity,
			LimitingIngredient: cap.LimitingIngredient,
			CheckedAt:          time.Now(),
		}
	}
	return results, nil
}

type submitterMock struct {
	mu       sync.Mutex
	resp     *backend.SubmitOrderResponse
	errs     []error // consumed one per call, last one repeats
	requests []backend.SubmitOrderRequest
	release  chan struct{} // when set, calls block until closed
}

func (m *submitterMock) SubmitOrder(_ context.Context, req backend.SubmitOrderRequest) (*backend.SubmitOrderResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	var err error
	if len(m.errs) > 0 {
		err = m.errs[0]
		if len(m.errs) > 1 {
			m.errs = m.errs[1:]
		}
	}
	release := m.release
	m.mu.Unlock()

	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	return m.resp, nil
}

func (m *submitterMock) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *submitterMock) lastRequest() backend.SubmitOrderRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

type eventsMock struct {
	mu     sync.Mutex
	events []events.OrderConfirmed
}

func (m *eventsMock) OrderConfirmed(_ context.Context, evt events.OrderConfirmed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

func (m *eventsMock) published() []events.OrderConfirmed {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.OrderConfirmed, len(m.events))
	copy(out, m.events)
	return out
}

// testDeps returns a working dependency set with fast retries.
func testDeps(submitter *submitterMock, stockM *stockMock) (Deps, *settingsMock, *balanceMock) {
	settings := &settingsMock{settings: domain.StoreSettings{
		DeliveryFee:    d("8.00"),
		ConversionRate: d("0.01"),
		EarnRate:       d("1"),
	}}
	balance := &balanceMock{balance: 1000}
	if stockM == nil {
		stockM = &stockMock{}
	}
	deps := Deps{
		Settings:       settings,
		Balance:        balance,
		Promotions:     &promosMock{},
		Stock:          stockM,
		Submitter:      submitter,
		SubmitAttempts: 3,
		RetryDelay:     time.Millisecond,
	}
	return deps, settings, balance
}

func burgerCart() []domain.CartItem {
	return []domain.CartItem{
		{ProductID: 1, Name: "Royal Classic", BasePrice: d("30.00"), Quantity: 2},
		{ProductID: 2, Name: "Fries", BasePrice: d("12.00"), Quantity: 1},
	}
}
