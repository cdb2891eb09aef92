// Package stock revalidates cart lines against live ingredient capacity
// immediately before submission. Capacity is combinatorial: the same product
// with different extras or modifications consumes different ingredients, so
// every line is simulated with its exact combination.
package stock

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
)

// Capacity is the simulation result for one line combination.
type Capacity struct {
	MaxQuantity        int
	LimitingIngredient string
}

// CapacityClient runs the capacity simulation on the external service.
type CapacityClient interface {
	SimulateCapacity(ctx context.Context, item domain.CartItem) (Capacity, error)
}

// LineAvailability is the per-line verdict. CheckedAt marks when the
// simulation ran; results from an earlier validation pass are stale and
// must not gate a submission.
type LineAvailability struct {
	Line               domain.PricedLine
	Available          bool
	MaxQuantity        int
	LimitingIngredient string
	CheckedAt          time.Time
}

type Validator struct {
	client  CapacityClient
	timeout time.Duration
}

func NewValidator(client CapacityClient, timeout time.Duration) *Validator {
	return &Validator{client: client, timeout: timeout}
}

// ValidateAll simulates every submittable line concurrently and reports the
// per-line verdicts in cart order. Unlike promotion lookup, a transport
// failure here is an error: stock is a gate, it never degrades.
func (v *Validator) ValidateAll(ctx context.Context, lines []domain.PricedLine) ([]LineAvailability, error) {
	results := make([]LineAvailability, len(lines))
	g, gctx := errgroup.WithContext(ctx)

	for i, line := range lines {
		i, line := i, line
		if line.Item.Excluded {
			results[i] = LineAvailability{Line: line, Available: false, CheckedAt: time.Now()}
			continue
		}
		g.Go(func() error {
			simCtx, cancel := context.WithTimeout(gctx, v.timeout)
			defer cancel()

			cap, err := v.client.SimulateCapacity(simCtx, line.Item)
			if err != nil {
				return err
			}
			results[i] = LineAvailability{
				Line:               line,
				Available:          cap.MaxQuantity >= line.Item.Quantity,
				MaxQuantity:        cap.MaxQuantity,
				LimitingIngredient: cap.LimitingIngredient,
				CheckedAt:          time.Now(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Shortfalls filters a validation result down to the rejected lines.
func Shortfalls(results []LineAvailability) []LineAvailability {
	var out []LineAvailability
	for _, r := range results {
		if !r.Available {
			out = append(out, r)
		}
	}
	return out
}
