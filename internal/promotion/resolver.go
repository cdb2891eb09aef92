// Package promotion resolves the active discount for a product at a given
// instant. Resolution degrades gracefully: a lookup failure means "no
// promotion", it never blocks checkout.
package promotion

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
)

// Lookup is the external promotion source.
type Lookup interface {
	GetPromotion(ctx context.Context, productID int64, at time.Time) (*domain.Promotion, error)
}

type Resolver struct {
	lookup  Lookup
	timeout time.Duration
}

func NewResolver(lookup Lookup, timeout time.Duration) *Resolver {
	return &Resolver{lookup: lookup, timeout: timeout}
}

// Resolve returns the promotion active for the product at the reference
// timestamp, or nil. The explicit timestamp keeps live checkout (now) and
// historical re-display of past orders (the order's creation time) on the
// same code path.
func (r *Resolver) Resolve(ctx context.Context, productID int64, at time.Time) *domain.Promotion {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	promo, err := r.lookup.GetPromotion(lookupCtx, productID, at)
	if err != nil {
		log.Printf("promotion lookup failed for product %d: %v", productID, err)
		return nil
	}
	if !promo.ActiveAt(at) {
		return nil
	}
	return promo
}

// ResolveAll resolves promotions for every distinct product in the cart
// concurrently. Per-line lookups have no ordering dependency between them;
// the caller aggregates only after all of them complete.
func (r *Resolver) ResolveAll(ctx context.Context, items []domain.CartItem, at time.Time) map[int64]*domain.Promotion {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if item.Excluded || seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}

	results := make([]*domain.Promotion, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = r.Resolve(gctx, id, at)
			return nil
		})
	}
	_ = g.Wait() // Resolve never errors, it degrades to nil

	promos := make(map[int64]*domain.Promotion, len(ids))
	for i, id := range ids {
		if results[i] != nil {
			promos[id] = results[i]
		}
	}
	return promos
}
