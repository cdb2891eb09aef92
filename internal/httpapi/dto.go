package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/cache"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/checkout"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
)

// Monetary amounts arrive as strings: the storefront serializes decimals
// as text and the engine never trusts client-side floats.

type ExtraDTO struct {
	IngredientID int64       `json:"ingredient_id"`
	UnitPrice    string      `json:"unit_price,omitempty"`
	Quantity     json.Number `json:"quantity"`
}

type ModificationDTO struct {
	IngredientID int64  `json:"ingredient_id"`
	Delta        int    `json:"delta"`
	UnitPrice    string `json:"unit_price,omitempty"`
}

type CartItemDTO struct {
	ProductID     int64             `json:"product_id"`
	Name          string            `json:"name"`
	BasePrice     string            `json:"base_price"`
	Quantity      json.Number       `json:"quantity"`
	Extras        []ExtraDTO        `json:"extras,omitempty"`
	Modifications []ModificationDTO `json:"modifications,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	PrepMinutes   int               `json:"prep_minutes,omitempty"`
}

type OpenCheckoutRequest struct {
	AccountID int64         `json:"account_id"`
	Items     []CartItemDTO `json:"items"`
}

// PatchCheckoutRequest carries the draft mutations; only non-nil fields
// apply, in declaration order.
type PatchCheckoutRequest struct {
	OrderType       *string `json:"order_type,omitempty"`
	AddressID       *int64  `json:"address_id,omitempty"`
	PaymentKind     *string `json:"payment_kind,omitempty"`
	CardSubtype     *string `json:"card_subtype,omitempty"`
	CashTendered    *string `json:"cash_tendered,omitempty"`
	PointsToRedeem  *int    `json:"points_to_redeem,omitempty"`
	CPFOnInvoice    *string `json:"cpf_on_invoice,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	RemoveProductID *int64  `json:"remove_product_id,omitempty"`
}

type CheckoutErrorDTO struct {
	Category           string `json:"category"`
	Field              string `json:"field,omitempty"`
	ProductID          int64  `json:"product_id,omitempty"`
	MaxQuantity        int    `json:"max_quantity,omitempty"`
	LimitingIngredient string `json:"limiting_ingredient,omitempty"`
	Message            string `json:"message"`
}

type DraftResponse struct {
	SessionID    string             `json:"session_id"`
	Status       string             `json:"status"`
	Draft        domain.OrderDraft  `json:"draft"`
	Total        decimal.Decimal    `json:"total"`
	Change       decimal.Decimal    `json:"change"`
	Errors       []CheckoutErrorDTO `json:"errors,omitempty"`
	Confirmation *ConfirmationDTO   `json:"confirmation,omitempty"`
}

type ConfirmationDTO struct {
	OrderID          int64  `json:"order_id"`
	ConfirmationCode string `json:"confirmation_code"`
	EarnedPoints     int    `json:"earned_points"`
}

func draftResponse(o *checkout.Orchestrator) DraftResponse {
	draft := o.Draft()
	resp := DraftResponse{
		SessionID: o.SessionID(),
		Status:    string(o.Status()),
		Draft:     draft,
		Total:     draft.ResolveTotal(),
		Change:    draft.Payment.Change(draft.ResolveTotal()),
		Errors:    errorDTOs(o.Errors()),
	}
	if c := o.Confirmation(); c != nil {
		resp.Confirmation = &ConfirmationDTO{
			OrderID:          c.OrderID,
			ConfirmationCode: c.ConfirmationCode,
			EarnedPoints:     c.EarnedPoints,
		}
	}
	return resp
}

func errorDTOs(errs []domain.CheckoutError) []CheckoutErrorDTO {
	if len(errs) == 0 {
		return nil
	}
	out := make([]CheckoutErrorDTO, len(errs))
	for i, e := range errs {
		out[i] = CheckoutErrorDTO{
			Category:           string(e.Category),
			Field:              e.Field,
			ProductID:          e.ProductID,
			MaxQuantity:        e.MaxQuantity,
			LimitingIngredient: e.LimitingIngredient,
			Message:            e.Message,
		}
	}
	return out
}

// ingestCart converts the wire cart to domain items. A line with a
// malformed amount or quantity is kept but excluded, so the customer sees
// it flagged instead of silently vanishing. Missing extra prices are
// filled from the ingredient price cache when one is wired and default to
// zero otherwise.
func ingestCart(ctx context.Context, dtos []CartItemDTO, prices cache.PriceCache) []domain.CartItem {
	var priceMap map[int64]decimal.Decimal
	if prices != nil && anyMissingPrice(dtos) {
		m, err := prices.GetPrices(ctx)
		if err != nil {
			log.Printf("ingredient price lookup failed: %v", err)
		} else {
			priceMap = m
		}
	}

	items := make([]domain.CartItem, 0, len(dtos))
	for _, dto := range dtos {
		items = append(items, ingestItem(dto, priceMap))
	}
	return items
}

func ingestItem(dto CartItemDTO, priceMap map[int64]decimal.Decimal) domain.CartItem {
	item := domain.CartItem{
		ProductID:   dto.ProductID,
		Name:        dto.Name,
		Notes:       dto.Notes,
		PrepMinutes: dto.PrepMinutes,
	}

	exclude := func(reason string) {
		if !item.Excluded {
			item.Excluded = true
			item.ExclusionReason = reason
		}
	}

	base, ok := domain.ParseAmount(dto.BasePrice)
	if !ok {
		exclude(fmt.Sprintf("unreadable price for %s", dto.Name))
	}
	item.BasePrice = base

	qty, ok := domain.ParseQuantity(dto.Quantity.String())
	if !ok {
		exclude(fmt.Sprintf("invalid quantity for %s", dto.Name))
	}
	item.Quantity = qty

	for _, e := range dto.Extras {
		price, ok := resolvePrice(e.UnitPrice, e.IngredientID, priceMap)
		if !ok {
			exclude(fmt.Sprintf("unreadable extra price on %s", dto.Name))
		}
		extraQty, ok := domain.ParseQuantity(e.Quantity.String())
		if !ok {
			exclude(fmt.Sprintf("invalid extra quantity on %s", dto.Name))
		}
		item.Extras = append(item.Extras, domain.ExtraSelection{
			IngredientID: e.IngredientID,
			UnitPrice:    price,
			Quantity:     extraQty,
		})
	}

	for _, m := range dto.Modifications {
		price := decimal.Zero
		if m.Delta > 0 {
			var ok bool
			price, ok = resolvePrice(m.UnitPrice, m.IngredientID, priceMap)
			if !ok {
				exclude(fmt.Sprintf("unreadable modification price on %s", dto.Name))
			}
		}
		item.Modifications = append(item.Modifications, domain.BaseModification{
			IngredientID: m.IngredientID,
			Delta:        m.Delta,
			UnitPrice:    price,
		})
	}

	return item
}

// resolvePrice parses a wire price, falling back to the cached ingredient
// price when the payload omitted it. An ingredient with no known price
// anywhere prices at zero and the line stays submittable; only a malformed
// wire amount fails.
func resolvePrice(wire string, ingredientID int64, priceMap map[int64]decimal.Decimal) (decimal.Decimal, bool) {
	if wire == "" {
		if price, ok := priceMap[ingredientID]; ok {
			return price, true
		}
		log.Printf("no known price for ingredient %d, pricing at zero", ingredientID)
		return decimal.Zero, true
	}
	return domain.ParseAmount(wire)
}

func anyMissingPrice(dtos []CartItemDTO) bool {
	for _, dto := range dtos {
		for _, e := range dto.Extras {
			if e.UnitPrice == "" {
				return true
			}
		}
		for _, m := range dto.Modifications {
			if m.Delta > 0 && m.UnitPrice == "" {
				return true
			}
		}
	}
	return false
}
