// Package httpapi exposes the checkout engine over REST. Handlers parse
// and validate the wire payloads; every state decision belongs to the
// orchestrator.
package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/cache"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/checkout"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/session"
)

// SettingsRefresher busts the cached storefront settings on an explicit
// user refresh. Settings are never invalidated mid-checkout otherwise.
type SettingsRefresher interface {
	Refresh(ctx context.Context) (domain.StoreSettings, error)
}

type CheckoutHandler struct {
	sessions *session.Store
	prices   cache.PriceCache
	settings SettingsRefresher
	timeout  time.Duration
}

func NewCheckoutHandler(sessions *session.Store, prices cache.PriceCache, settings SettingsRefresher, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		prices:   prices,
		settings: settings,
		timeout:  timeout,
	}
}

// Routes mounts the checkout resource on the given router.
func (h *CheckoutHandler) Routes(r chi.Router) {
	r.Post("/settings/refresh", h.RefreshSettings)
	r.Post("/checkout", h.Open)
	r.Route("/checkout/{session_id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Patch)
		r.Delete("/", h.Cancel)
		r.Post("/quote", h.Quote)
		r.Post("/review", h.Review)
		r.Post("/submit", h.Submit)
		r.Post("/drop-unavailable", h.DropUnavailable)
	})
}

// Open starts a checkout session around the supplied cart snapshot and
// returns the first quoted draft.
func (h *CheckoutHandler) Open(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req OpenCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.AccountID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_account_id", "account_id must be positive")
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "at least one cart item is required")
		return
	}

	items := ingestCart(ctx, req.Items, h.prices)
	o := h.sessions.Create(req.AccountID, items)

	// price the opening draft; a failed first quote still opens the session
	if _, err := o.Quote(ctx); err != nil {
		log.Printf("initial quote for session %s failed: %v", o.SessionID(), err)
	}

	respondJSON(w, http.StatusCreated, draftResponse(o))
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.sessions.Get(chi.URLParam(r, "session_id"))
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, draftResponse(o))
}

// Patch applies draft mutations. Changed fields invalidate any earlier
// quote or review; the client re-quotes afterwards.
func (h *CheckoutHandler) Patch(w http.ResponseWriter, r *http.Request) {
	o, err := h.sessions.Get(chi.URLParam(r, "session_id"))
	if err != nil {
		respondSessionError(w, err)
		return
	}

	var req PatchCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := applyPatch(o, &req); err != nil {
		if badReq, ok := err.(*badRequestError); ok {
			respondError(w, http.StatusBadRequest, badReq.code, badReq.message)
			return
		}
		respondSessionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, draftResponse(o))
}

func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	o, err := h.sessions.Get(chi.URLParam(r, "session_id"))
	if err != nil {
		respondSessionError(w, err)
		return
	}

	if _, err := o.Quote(ctx); err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, draftResponse(o))
}

func (h *CheckoutHandler) Review(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	o, err := h.sessions.Get(chi.URLParam(r, "session_id"))
	if err != nil {
		respondSessionError(w, err)
		return
	}

	result, err := o.Review(ctx)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	resp := draftResponse(o)
	resp.Errors = errorDTOs(result.Errors)
	if result.Ready {
		respondJSON(w, http.StatusOK, resp)
		return
	}
	// the draft is not submittable; the payload says exactly why
	respondJSON(w, http.StatusUnprocessableEntity, resp)
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	o, err := h.sessions.Get(chi.URLParam(r, "session_id"))
	if err != nil {
		respondSessionError(w, err)
		return
	}

	result, err := o.Submit(ctx)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	resp := draftResponse(o)
	switch {
	case result.InFlight:
		respondJSON(w, http.StatusAccepted, resp)
	case result.Confirmed:
		respondJSON(w, http.StatusOK, resp)
	default:
		resp.Errors = errorDTOs([]domain.CheckoutError{*result.Err})
		if result.Err.Category == domain.ErrorTransport {
			respondJSON(w, http.StatusBadGateway, resp)
			return
		}
		respondJSON(w, http.StatusUnprocessableEntity, resp)
	}
}

// DropUnavailable removes the lines the last review reported as short and
// returns the reopened draft for a fresh quote.
func (h *CheckoutHandler) DropUnavailable(w http.ResponseWriter, r *http.Request) {
	o, err := h.sessions.Get(chi.URLParam(r, "session_id"))
	if err != nil {
		respondSessionError(w, err)
		return
	}

	if err := o.DropUnavailableLines(); err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, draftResponse(o))
}

func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.sessions.Get(chi.URLParam(r, "session_id"))
	if err != nil {
		respondSessionError(w, err)
		return
	}

	if err := o.Cancel(); err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, draftResponse(o))
}

// RefreshSettings busts the settings cache on explicit user request
// (pull-to-refresh) and returns the fresh values.
func (h *CheckoutHandler) RefreshSettings(w http.ResponseWriter, r *http.Request) {
	if h.settings == nil {
		respondError(w, http.StatusNotImplemented, "refresh_unavailable", "settings refresh is not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	settings, err := h.settings.Refresh(ctx)
	if err != nil {
		respondError(w, http.StatusBadGateway, "settings_unavailable", "could not refresh settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (h *CheckoutHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type badRequestError struct {
	code    string
	message string
}

func (e *badRequestError) Error() string {
	return e.message
}

// applyPatch maps each provided field to its orchestrator mutation.
func applyPatch(o *checkout.Orchestrator, req *PatchCheckoutRequest) error {
	if req.OrderType != nil {
		t := domain.OrderType(*req.OrderType)
		if t != domain.OrderTypeDelivery && t != domain.OrderTypePickup {
			return &badRequestError{"invalid_order_type", "order_type must be delivery or pickup"}
		}
		if err := o.SetOrderType(t); err != nil {
			return err
		}
	}
	if req.AddressID != nil {
		if *req.AddressID <= 0 {
			return &badRequestError{"invalid_address_id", "address_id must be positive"}
		}
		if err := o.SetAddress(*req.AddressID); err != nil {
			return err
		}
	}
	if req.PaymentKind != nil {
		kind := domain.PaymentKind(*req.PaymentKind)
		switch kind {
		case domain.PaymentPix, domain.PaymentCard, domain.PaymentCash:
		default:
			return &badRequestError{"invalid_payment_kind", "payment_kind must be pix, card or cash"}
		}
		if err := o.SetPaymentMethod(domain.PaymentMethod{Kind: kind}); err != nil {
			return err
		}
	}
	if req.CardSubtype != nil {
		s := domain.CardSubtype(*req.CardSubtype)
		if s != domain.CardSubtypeCredit && s != domain.CardSubtypeDebit {
			return &badRequestError{"invalid_card_subtype", "card_subtype must be credit or debit"}
		}
		if err := o.SetCardSubtype(s); err != nil {
			return err
		}
	}
	if req.CashTendered != nil {
		amount, ok := domain.ParseAmount(*req.CashTendered)
		if !ok {
			return &badRequestError{"invalid_cash_tendered", "cash_tendered must be a non-negative amount"}
		}
		if err := o.SetCashTendered(amount); err != nil {
			return err
		}
	}
	if req.PointsToRedeem != nil {
		if *req.PointsToRedeem < 0 {
			return &badRequestError{"invalid_points", "points_to_redeem cannot be negative"}
		}
		if err := o.SetPointsToRedeem(*req.PointsToRedeem); err != nil {
			return err
		}
	}
	if req.CPFOnInvoice != nil {
		if err := o.SetCPF(*req.CPFOnInvoice); err != nil {
			return err
		}
	}
	if req.Notes != nil {
		if err := o.SetNotes(*req.Notes); err != nil {
			return err
		}
	}
	if req.RemoveProductID != nil {
		if err := o.RemoveLine(*req.RemoveProductID); err != nil {
			return err
		}
	}
	return nil
}
