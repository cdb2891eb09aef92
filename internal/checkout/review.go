package checkout

import (
	"context"
	"fmt"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/stock"
)

// ReviewResult reports whether the draft may be submitted and, if not,
// every failing field so the UI can re-prompt.
type ReviewResult struct {
	Ready      bool
	Errors     []domain.CheckoutError
	Shortfalls []stock.LineAvailability
}

// Review drives Draft -> Validating and, when every check passes,
// Validating -> ReadyToSubmit. Local checks run first (address, payment
// completeness, CPF format, empty cart); only then is stock revalidated
// against the live capacity service. Stock always completes before the
// submission call can be issued: Submit refuses anything but ReadyToSubmit.
func (o *Orchestrator) Review(ctx context.Context) (ReviewResult, error) {
	o.mu.Lock()
	if o.cancelled {
		o.mu.Unlock()
		return ReviewResult{}, ErrSessionCancelled
	}
	if err := o.reopenLocked(); err != nil {
		o.mu.Unlock()
		return ReviewResult{}, err
	}
	if !domain.CanTransitionTo(o.status, domain.StatusValidating) {
		o.mu.Unlock()
		return ReviewResult{}, ErrIllegalTransition
	}
	o.status = domain.StatusValidating
	gen := o.gen
	draft := o.draft
	o.mu.Unlock()

	if errs := localChecks(&draft); len(errs) > 0 {
		return o.failReview(gen, errs, nil)
	}

	results, err := o.deps.Stock.ValidateAll(ctx, draft.SubmittableLines())
	if err != nil {
		// transport failure of the gate: back to Draft, user decides
		return o.failReview(gen, []domain.CheckoutError{
			*domain.NewTransportError(fmt.Sprintf("stock validation unavailable: %v", err)),
		}, nil)
	}

	if short := stock.Shortfalls(results); len(short) > 0 {
		errs := make([]domain.CheckoutError, 0, len(short))
		for _, s := range short {
			errs = append(errs, *domain.NewStockError(
				s.Line.Item.ProductID,
				s.MaxQuantity,
				s.LimitingIngredient,
				fmt.Sprintf("%s: only %d available, reduce the quantity or remove the item", s.Line.Item.Name, s.MaxQuantity),
			))
		}
		return o.failReview(gen, errs, short)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancelled {
		return ReviewResult{}, ErrSessionCancelled
	}
	if o.gen != gen {
		o.status = domain.StatusDraft
		return ReviewResult{}, ErrSuperseded
	}
	o.status = domain.StatusReadyToSubmit
	o.errs = nil
	o.shortfalls = nil
	o.newSubmitKeyLocked()
	return ReviewResult{Ready: true}, nil
}

// failReview returns the machine to Draft with the failing checks recorded.
func (o *Orchestrator) failReview(gen uint64, errs []domain.CheckoutError, short []stock.LineAvailability) (ReviewResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancelled {
		return ReviewResult{}, ErrSessionCancelled
	}
	o.status = domain.StatusDraft
	if o.gen != gen {
		return ReviewResult{}, ErrSuperseded
	}
	o.errs = errs
	o.shortfalls = short
	return ReviewResult{Ready: false, Errors: errs, Shortfalls: short}, nil
}

// localChecks are the validations that need no network round-trip.
func localChecks(draft *domain.OrderDraft) []domain.CheckoutError {
	var errs []domain.CheckoutError

	if len(draft.SubmittableLines()) == 0 {
		errs = append(errs, *domain.NewValidationError("items", "cart is empty, nothing to checkout"))
	}
	if draft.OrderType == domain.OrderTypeDelivery && draft.AddressID <= 0 {
		errs = append(errs, *domain.NewValidationError("address_id", "delivery address required"))
	}
	if cerr := draft.Payment.Validate(draft.OrderType, draft.ResolveTotal()); cerr != nil {
		errs = append(errs, *cerr)
	}
	if draft.CPF != "" && !domain.ValidCPF(draft.CPF) {
		errs = append(errs, *domain.NewValidationError("cpf_on_invoice", "invalid CPF"))
	}
	return errs
}
