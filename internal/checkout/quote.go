package checkout

import (
	"context"
	"fmt"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/delivery"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/loyalty"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/pricing"
)

// Quote rebuilds the draft: promotions are resolved per line (concurrently,
// all complete before aggregation), lines are priced, the fee and the
// redemption clamp applied. An over-asked redemption is clamped with a
// notice on the draft, never a failure.
func (o *Orchestrator) Quote(ctx context.Context) (domain.OrderDraft, error) {
	o.mu.Lock()
	if o.cancelled {
		o.mu.Unlock()
		return domain.OrderDraft{}, ErrSessionCancelled
	}
	if err := o.reopenLocked(); err != nil {
		o.mu.Unlock()
		return domain.OrderDraft{}, err
	}
	gen := o.gen
	items := make([]domain.CartItem, len(o.items))
	copy(items, o.items)
	orderType := o.draft.OrderType
	requested := o.draft.RequestedPoints
	needBalance := !o.balanceFetched
	accountID := o.accountID
	o.mu.Unlock()

	settings, err := o.deps.Settings.Settings(ctx)
	if err != nil {
		return domain.OrderDraft{}, fmt.Errorf("fetch settings: %w", err)
	}

	balance := 0
	if needBalance {
		balance, err = o.deps.Balance.Balance(ctx, accountID)
		if err != nil {
			return domain.OrderDraft{}, fmt.Errorf("fetch balance: %w", err)
		}
	}

	promos := o.deps.Promotions.ResolveAll(ctx, items, o.deps.now())
	lines, subtotal := pricing.PriceAll(items, promos)
	fee := delivery.Resolve(orderType, settings.DeliveryFee)
	available := balance
	if !needBalance {
		o.mu.Lock()
		available = o.balance
		o.mu.Unlock()
	}
	redemption := loyalty.Validate(available, requested, subtotal.Add(fee), settings)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancelled {
		return domain.OrderDraft{}, ErrSessionCancelled
	}
	if o.gen != gen {
		// a newer mutation happened while we were pricing
		return domain.OrderDraft{}, ErrSuperseded
	}

	if needBalance {
		o.balance = balance
		o.balanceFetched = true
	}

	o.draft.Lines = lines
	o.draft.Subtotal = subtotal
	o.draft.DeliveryFee = fee
	o.draft.AcceptedPoints = redemption.Accepted
	o.draft.RedemptionDiscount = redemption.Discount
	o.draft.RedemptionNotice = redemption.Reason

	if o.deps.Metrics != nil {
		o.deps.Metrics.Quotes.Inc()
	}
	return o.draft, nil
}
