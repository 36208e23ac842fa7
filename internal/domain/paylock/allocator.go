package paylock

import (
	"context"
	"time"

	"upi-checkout/internal/pkg/clock"
)

// CollisionChecker reports whether an amount is unavailable for allocation:
// an active lock holds it, or an expired lock holds it with expiry at or
// after the grace cutoff.
type CollisionChecker interface {
	AmountTaken(ctx context.Context, amount Amount, graceCutoff time.Time) (bool, error)
}

// Allocator finds the lowest payable amount at or above a base price that no
// live reservation holds. The fractional surcharge keeps concurrent buyers
// distinguishable when the payment rail only reports the paid amount.
type Allocator struct {
	checker CollisionChecker
	clock   clock.Clock
	grace   time.Duration
	budget  int
}

func NewAllocator(checker CollisionChecker, clk clock.Clock, grace time.Duration, budget int) *Allocator {
	return &Allocator{
		checker: checker,
		clock:   clk,
		grace:   grace,
		budget:  budget,
	}
}

// Allocate returns the payable amount and the surcharge over base. When the
// increment budget is exhausted it falls back to the base amount with zero
// surcharge; the caller is expected to let lock creation fail on the
// collision rather than hand out a duplicate amount.
func (a *Allocator) Allocate(ctx context.Context, base Amount) (Amount, Amount, error) {
	if !base.IsPositive() {
		return Amount{}, Amount{}, ErrNonPositiveAmount
	}

	graceCutoff := a.clock.Now().Add(-a.grace)
	candidate := base

	for i := 0; i <= a.budget; i++ {
		taken, err := a.checker.AmountTaken(ctx, candidate, graceCutoff)
		if err != nil {
			return Amount{}, Amount{}, err
		}
		if !taken {
			return candidate, candidate.Sub(base), nil
		}
		candidate = candidate.AddPaise(1)
	}

	return base, ZeroAmount(), nil
}
