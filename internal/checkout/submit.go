package checkout

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/backend"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/events"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/loyalty"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/stock"
)

// SubmitResult is the outcome of one Submit call. InFlight marks the
// duplicate-click no-op; Err carries a recoverable failure.
type SubmitResult struct {
	Confirmed    bool
	InFlight     bool
	Confirmation *Confirmation
	Err          *domain.CheckoutError
}

// Submit drives ReadyToSubmit -> Submitting and executes the order call.
// A second Submit while one is in flight is a no-op: the submit action is
// locked for the duration, the client-side half of duplicate prevention
// (the idempotency key is the server-side half). Transport failures retry
// a bounded number of times with backoff; business failures never retry.
func (o *Orchestrator) Submit(ctx context.Context) (SubmitResult, error) {
	o.mu.Lock()
	if o.cancelled {
		o.mu.Unlock()
		return SubmitResult{}, ErrSessionCancelled
	}
	if o.status == domain.StatusSubmitting {
		o.mu.Unlock()
		return SubmitResult{InFlight: true}, nil
	}
	if o.status == domain.StatusConfirmed {
		// duplicate confirm after success: hand back the same confirmation
		result := o.result
		o.mu.Unlock()
		return SubmitResult{Confirmed: true, Confirmation: result}, nil
	}
	if !domain.CanTransitionTo(o.status, domain.StatusSubmitting) {
		o.mu.Unlock()
		return SubmitResult{}, ErrNotReady
	}
	o.status = domain.StatusSubmitting
	draft := o.draft
	key := o.submitKey
	o.mu.Unlock()

	req, err := buildSubmitRequest(&draft, key)
	if err != nil {
		// an unmappable payment method means validation was skipped
		return o.failSubmit(domain.NewValidationError("payment_method", err.Error()), domain.StatusFailedRecoverable)
	}

	resp, submitErr := o.submitWithRetry(ctx, req)
	if submitErr != nil {
		var cerr *domain.CheckoutError
		if errors.As(submitErr, &cerr) {
			// known business rule failure, surfaced verbatim, no retry
			return o.failSubmit(cerr, domain.StatusFailedRecoverable)
		}
		return o.failSubmit(
			domain.NewTransportError("order submission failed, check your connection and try again"),
			domain.StatusFailedFatal,
		)
	}

	return o.confirm(ctx, &draft, resp)
}

// submitWithRetry retries transport failures only, with linear backoff.
func (o *Orchestrator) submitWithRetry(ctx context.Context, req backend.SubmitOrderRequest) (*backend.SubmitOrderResponse, error) {
	delay := o.deps.RetryDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= o.deps.attempts(); attempt++ {
		resp, err := o.deps.Submitter.SubmitOrder(ctx, req)
		if err == nil {
			return resp, nil
		}
		var cerr *domain.CheckoutError
		if errors.As(err, &cerr) {
			return nil, err
		}
		lastErr = err
		log.Printf("order submission attempt %d failed: %v", attempt, err)

		if attempt == o.deps.attempts() {
			break
		}
		select {
		case <-time.After(delay * time.Duration(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (o *Orchestrator) confirm(ctx context.Context, draft *domain.OrderDraft, resp *backend.SubmitOrderResponse) (SubmitResult, error) {
	settings, err := o.deps.Settings.Settings(ctx)
	if err != nil {
		settings = domain.StoreSettings{}
	}
	earned := loyalty.EarnedPoints(draft.Subtotal, draft.RedemptionDiscount, draft.DeliveryFee, settings.EarnRate)

	o.mu.Lock()
	o.cancelRequested = false // the order exists now, the cancel is moot
	o.status = domain.StatusConfirmed
	o.result = &Confirmation{
		OrderID:          resp.OrderID,
		ConfirmationCode: resp.ConfirmationCode,
		EarnedPoints:     earned,
	}
	o.items = nil // cart-side state is cleared on confirmation
	o.errs = nil
	result := o.result
	o.mu.Unlock()

	o.observe("confirmed")
	o.publishConfirmed(ctx, draft, result)

	return SubmitResult{Confirmed: true, Confirmation: result}, nil
}

func (o *Orchestrator) failSubmit(cerr *domain.CheckoutError, status domain.CheckoutStatus) (SubmitResult, error) {
	o.mu.Lock()
	if o.cancelRequested {
		// no order was placed, honour the cancel that arrived mid-flight
		o.cancelRequested = false
		o.status = domain.StatusCancelled
		o.cancelled = true
		o.gen++
		o.errs = nil
		o.mu.Unlock()
		o.observe("cancelled")
		return SubmitResult{}, ErrSessionCancelled
	}
	o.status = status
	o.errs = []domain.CheckoutError{*cerr}
	if cerr.Category == domain.ErrorStock {
		// server-side shortfall: rebuild the drop list so the customer
		// can drop the named line and retry
		if s := o.shortfallsFromErrorLocked(cerr); len(s) > 0 {
			o.shortfalls = s
		}
	}
	o.mu.Unlock()

	o.observe(string(cerr.Category))
	return SubmitResult{Err: cerr}, nil
}

// shortfallsFromErrorLocked maps a server-reported stock failure back onto
// the draft lines it names. An unnamed product yields nothing; the next
// review pass will re-run the local stock check and repopulate the list.
func (o *Orchestrator) shortfallsFromErrorLocked(cerr *domain.CheckoutError) []stock.LineAvailability {
	if cerr.ProductID == 0 {
		return nil
	}
	var out []stock.LineAvailability
	for _, line := range o.draft.Lines {
		if line.Item.ProductID != cerr.ProductID {
			continue
		}
		out = append(out, stock.LineAvailability{
			Line:               line,
			Available:          false,
			MaxQuantity:        cerr.MaxQuantity,
			LimitingIngredient: cerr.LimitingIngredient,
			CheckedAt:          o.deps.now(),
		})
	}
	return out
}

func (o *Orchestrator) observe(outcome string) {
	if o.deps.Metrics != nil {
		o.deps.Metrics.Submissions.WithLabelValues(outcome).Inc()
	}
}

// publishConfirmed emits the order-confirmed event. Failures are logged,
// never surfaced: the order is already placed.
func (o *Orchestrator) publishConfirmed(ctx context.Context, draft *domain.OrderDraft, c *Confirmation) {
	if o.deps.Events == nil {
		return
	}
	evt := events.OrderConfirmed{
		OrderID:          c.OrderID,
		ConfirmationCode: c.ConfirmationCode,
		SessionID:        o.sessionID,
		OrderType:        string(draft.OrderType),
		Total:            draft.ResolveTotal(),
		PointsRedeemed:   draft.AcceptedPoints,
		PointsEarned:     c.EarnedPoints,
		ConfirmedAt:      o.deps.now(),
	}
	if err := o.deps.Events.OrderConfirmed(ctx, evt); err != nil {
		log.Printf("failed to publish order-confirmed for order %d: %v", c.OrderID, err)
	}
}

// buildSubmitRequest maps the draft to the wire format. This is the single
// boundary where the tagged payment method becomes a wire string.
func buildSubmitRequest(draft *domain.OrderDraft, idempotencyKey string) (backend.SubmitOrderRequest, error) {
	method, err := draft.Payment.WireString()
	if err != nil {
		return backend.SubmitOrderRequest{}, err
	}

	req := backend.SubmitOrderRequest{
		PaymentMethod:  method,
		OrderType:      string(draft.OrderType),
		PointsToRedeem: draft.AcceptedPoints,
		Notes:          draft.Notes,
		UseCart:        true,
		IdempotencyKey: idempotencyKey,
	}

	if draft.OrderType == domain.OrderTypeDelivery {
		addressID := draft.AddressID
		req.AddressID = &addressID
	}

	total := draft.ResolveTotal()
	if draft.Payment.Kind == domain.PaymentCash &&
		draft.OrderType == domain.OrderTypeDelivery &&
		total.IsPositive() &&
		draft.Payment.Tendered != nil {
		amount := *draft.Payment.Tendered
		req.AmountPaid = &amount
	}

	if draft.CPF != "" {
		cpf := draft.CPF
		req.CPFOnInvoice = &cpf
	}

	for _, line := range draft.SubmittableLines() {
		if line.Promotion == nil {
			continue
		}
		echo := backend.PromotionEcho{
			ProductID:   line.Item.ProductID,
			PromotionID: line.Promotion.ID,
		}
		value := line.Promotion.Value
		switch line.Promotion.Type {
		case domain.DiscountPercentage:
			echo.DiscountPercentage = &value
		case domain.DiscountFixed:
			echo.DiscountValue = &value
		}
		req.Promotions = append(req.Promotions, echo)
	}

	return req, nil
}

// newSubmitKeyLocked mints the idempotency key for the next submission
// attempt. Reused across transport retries so the server can deduplicate.
func (o *Orchestrator) newSubmitKeyLocked() {
	o.submitKey = uuid.NewString()
}
