// Package checkout is the engine's top-level state machine. One
// Orchestrator owns one OrderDraft for one checkout session; every mutation
// goes through its methods, nothing else touches the draft.
package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/backend"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/events"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/stock"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/pkg/metrics"
)

// SettingsSource provides the public storefront settings.
type SettingsSource interface {
	Settings(ctx context.Context) (domain.StoreSettings, error)
}

// BalanceSource provides the loyalty point balance for an account.
type BalanceSource interface {
	Balance(ctx context.Context, accountID int64) (int, error)
}

// PromotionResolver resolves active promotions for the cart at an instant.
type PromotionResolver interface {
	ResolveAll(ctx context.Context, items []domain.CartItem, at time.Time) map[int64]*domain.Promotion
}

// StockChecker revalidates line capacity immediately before submission.
type StockChecker interface {
	ValidateAll(ctx context.Context, lines []domain.PricedLine) ([]stock.LineAvailability, error)
}

// OrderSubmitter posts the final order to the backend.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, req backend.SubmitOrderRequest) (*backend.SubmitOrderResponse, error)
}

// EventSink receives the confirmed-order event. Best effort only.
type EventSink interface {
	OrderConfirmed(ctx context.Context, evt events.OrderConfirmed) error
}

// Deps wires the orchestrator to its collaborators. Events and Metrics may
// be nil; Now defaults to time.Now.
type Deps struct {
	Settings   SettingsSource
	Balance    BalanceSource
	Promotions PromotionResolver
	Stock      StockChecker
	Submitter  OrderSubmitter
	Events     EventSink
	Metrics    *metrics.CheckoutMetrics

	Now            func() time.Time
	SubmitAttempts int
	RetryDelay     time.Duration
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) attempts() int {
	if d.SubmitAttempts > 0 {
		return d.SubmitAttempts
	}
	return 3
}

// Confirmation is the successful submission outcome.
type Confirmation struct {
	OrderID          int64
	ConfirmationCode string
	EarnedPoints     int
}

type Orchestrator struct {
	mu   sync.Mutex
	deps Deps

	sessionID string
	accountID int64

	items          []domain.CartItem
	balance        int
	balanceFetched bool

	draft  domain.OrderDraft
	status domain.CheckoutStatus

	errs       []domain.CheckoutError
	shortfalls []stock.LineAvailability

	// gen is bumped on every mutation and on cancel; an async pass whose
	// captured gen no longer matches discards its result instead of
	// mutating state.
	gen       uint64
	cancelled bool

	// cancelRequested records a Cancel that arrived while a submission
	// was in flight. It is honoured when the submission fails and
	// discarded when it confirms, since the order then exists.
	cancelRequested bool

	submitKey string
	result    *Confirmation
}

func NewOrchestrator(deps Deps, sessionID string, accountID int64, items []domain.CartItem) *Orchestrator {
	return &Orchestrator{
		deps:      deps,
		sessionID: sessionID,
		accountID: accountID,
		items:     items,
		status:    domain.StatusDraft,
		draft: domain.OrderDraft{
			OrderType: domain.OrderTypeDelivery,
			Subtotal:  decimal.Zero,
		},
	}
}

func (o *Orchestrator) SessionID() string {
	return o.sessionID
}

func (o *Orchestrator) Status() domain.CheckoutStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Draft returns a snapshot of the current draft.
func (o *Orchestrator) Draft() domain.OrderDraft {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.draft
}

// Errors returns the failures from the last validation or submission pass.
func (o *Orchestrator) Errors() []domain.CheckoutError {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]domain.CheckoutError, len(o.errs))
	copy(out, o.errs)
	return out
}

// Confirmation returns the submission outcome once the session confirmed.
func (o *Orchestrator) Confirmation() *Confirmation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// SetOrderType switches between delivery and pickup.
func (o *Orchestrator) SetOrderType(t domain.OrderType) error {
	return o.mutate(func() {
		o.draft.OrderType = t
	})
}

// SetAddress records the delivery address reference.
func (o *Orchestrator) SetAddress(addressID int64) error {
	return o.mutate(func() {
		o.draft.AddressID = addressID
	})
}

// SetPaymentMethod replaces the whole payment selection.
func (o *Orchestrator) SetPaymentMethod(m domain.PaymentMethod) error {
	return o.mutate(func() {
		o.draft.Payment = m
	})
}

// SetCardSubtype narrows a card payment to credit or debit.
func (o *Orchestrator) SetCardSubtype(s domain.CardSubtype) error {
	return o.mutate(func() {
		o.draft.Payment.Kind = domain.PaymentCard
		o.draft.Payment.Subtype = s
		o.draft.Payment.Tendered = nil
	})
}

// SetCashTendered records the cash amount the customer will pay with.
func (o *Orchestrator) SetCashTendered(amount decimal.Decimal) error {
	return o.mutate(func() {
		o.draft.Payment.Kind = domain.PaymentCash
		o.draft.Payment.Subtype = domain.CardSubtypeUnset
		o.draft.Payment.Tendered = &amount
	})
}

// SetPointsToRedeem records the requested redemption; the accepted value is
// clamped on the next Quote.
func (o *Orchestrator) SetPointsToRedeem(points int) error {
	return o.mutate(func() {
		o.draft.RequestedPoints = points
	})
}

// SetCPF records the optional invoice tax id. Format is checked at review.
func (o *Orchestrator) SetCPF(cpf string) error {
	return o.mutate(func() {
		o.draft.CPF = cpf
	})
}

// SetNotes records the free-text order notes.
func (o *Orchestrator) SetNotes(notes string) error {
	return o.mutate(func() {
		o.draft.Notes = notes
	})
}

// RemoveLine drops a cart line by product id.
func (o *Orchestrator) RemoveLine(productID int64) error {
	return o.mutate(func() {
		o.items = removeByProduct(o.items, productID)
	})
}

// DropUnavailableLines removes every line named by the last stock failure
// so the customer can retry with a fulfillable cart.
func (o *Orchestrator) DropUnavailableLines() error {
	return o.mutate(func() {
		for _, s := range o.shortfalls {
			o.items = removeByProduct(o.items, s.Line.Item.ProductID)
		}
		o.shortfalls = nil
		o.errs = nil
	})
}

// Cancel discards the draft. Pending asynchronous passes complete but
// their results are discarded. An in-flight submission cannot be
// interrupted, the order may already be placed; the cancel intent is
// recorded and applied if the submission fails.
func (o *Orchestrator) Cancel() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status == domain.StatusSubmitting {
		o.cancelRequested = true
		return ErrSubmissionInFlight
	}
	if o.status.IsTerminal() {
		if o.status == domain.StatusCancelled {
			return nil
		}
		return ErrSessionCompleted
	}
	o.status = domain.StatusCancelled
	o.cancelled = true
	o.gen++
	return nil
}

// mutate runs fn under the lock after reopening the draft. Mutations are
// rejected while a submission is in flight or after the session closed.
func (o *Orchestrator) mutate(fn func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.reopenLocked(); err != nil {
		return err
	}
	fn()
	o.gen++
	return nil
}

// reopenLocked returns the machine to Draft so a mutation can apply. A
// mutation invalidates a ready or failed draft; it never interrupts
// validation or submission.
func (o *Orchestrator) reopenLocked() error {
	switch o.status {
	case domain.StatusDraft:
		return nil
	case domain.StatusReadyToSubmit, domain.StatusFailedRecoverable, domain.StatusFailedFatal:
		o.status = domain.StatusDraft
		o.errs = nil
		return nil
	case domain.StatusValidating, domain.StatusSubmitting:
		return ErrSubmissionInFlight
	case domain.StatusCancelled:
		return ErrSessionCancelled
	default:
		return ErrSessionCompleted
	}
}

func removeByProduct(items []domain.CartItem, productID int64) []domain.CartItem {
	out := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}
