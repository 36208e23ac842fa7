package commands

import (
	"context"
	"log/slog"
	"time"

	"upi-checkout/internal/domain/paylock"
	"upi-checkout/internal/infra"
	"upi-checkout/internal/infra/db"
	"upi-checkout/internal/pkg/clock"
	"upi-checkout/internal/pkg/config"
	"upi-checkout/internal/pkg/errs"
	"upi-checkout/internal/usecase/shared"

	"github.com/google/uuid"
)

// Coins never cover more than half the base price, so every payable amount
// stays large enough to carry a disambiguating surcharge.
const maxCoinDiscountPercent = 50

type PayableAmountResult struct {
	LockID         uuid.UUID
	AmountPaise    int64
	SurchargePaise int64
	ExpiresAt      time.Time
}

type CheckoutCommands interface {
	RequestPayableAmount(ctx context.Context, buyerID, productID uuid.UUID) (*PayableAmountResult, error)
	CancelLock(ctx context.Context, buyerID, lockID uuid.UUID) error
}

type checkoutCommandsImpl struct {
	uow     shared.UnitOfWork
	locks   shared.LockRepository
	clock   clock.Clock
	payment config.PaymentConfig
}

func NewCheckoutCommands(
	uow shared.UnitOfWork,
	locks shared.LockRepository,
	clk clock.Clock,
	cfg config.Config,
) CheckoutCommands {
	return &checkoutCommandsImpl{
		uow:     uow,
		locks:   locks,
		clock:   clk,
		payment: cfg.Payment,
	}
}

func (c *checkoutCommandsImpl) RequestPayableAmount(ctx context.Context, buyerID, productID uuid.UUID) (*PayableAmountResult, error) {
	c.sweepStaleLocks(ctx)

	reads := c.uow.CommandReads()

	buyer, err := reads.BuyerByID(ctx, buyerID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBuyerNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	product, err := reads.ProductByID(ctx, productID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrProductNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	base, err := paylock.NewAmount(product.BasePricePaise - coinDiscountPaise(buyer, product))
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	allocator := paylock.NewAllocator(reads, c.clock, c.payment.GraceWindow, c.payment.IncrementBudget)

	// The allocator pre-check is an optimization; the partial unique index
	// behind Create is the source of truth. A lost race is retried once with
	// a fresh allocation before surfacing the collision.
	var lock *paylock.PaymentLock
	for attempt := 0; ; attempt++ {
		amount, _, err := allocator.Allocate(ctx, base)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		lock, err = c.createLock(ctx, buyerID, product, amount)
		if err == nil {
			break
		}
		if !errs.Is(err, errs.ErrAmountCollision) || attempt >= 1 {
			return nil, err
		}
	}

	return &PayableAmountResult{
		LockID:         lock.ID(),
		AmountPaise:    lock.Amount().Paise(),
		SurchargePaise: lock.Amount().Sub(base).Paise(),
		ExpiresAt:      lock.ExpiresAt(),
	}, nil
}

func (c *checkoutCommandsImpl) createLock(ctx context.Context, buyerID uuid.UUID, product *shared.ProductSnapshot, amount paylock.Amount) (*paylock.PaymentLock, error) {
	services := &paylock.Services{Clock: c.clock, LockTTL: c.payment.LockTTL}
	lock, err := paylock.NewPaymentLock(services, buyerID, paylock.ProductSpec{ID: product.ID, Name: product.Name}, amount)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, createErr := tx.Locks().Create(ctx, tx.DB(), lock)
		return createErr
	})
	if err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, errs.Mark(err, errs.ErrAmountCollision)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return lock, nil
}

// CancelLock releases a buyer's own active lock. Release overwrites expiry to
// now instead of waiting out the TTL; the grace window still covers the slot
// afterward, preferring a false "amount busy" over a false match.
func (c *checkoutCommandsImpl) CancelLock(ctx context.Context, buyerID, lockID uuid.UUID) error {
	lock, err := c.uow.CommandReads().LockByID(ctx, lockID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrLockNotFound
		}
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if lock.BuyerID != buyerID {
		return errs.ErrLockForbidden
	}

	err = c.uow.WithDB(ctx, func(ctx context.Context, d db.DBTX) error {
		return c.locks.MarkExpired(ctx, d, lockID, c.clock.Now())
	})
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}

// Opportunistic sweep keeps stale active locks from inflating collision
// counts when no background scheduler is running. Failures only log.
func (c *checkoutCommandsImpl) sweepStaleLocks(ctx context.Context) {
	err := c.uow.WithDB(ctx, func(ctx context.Context, d db.DBTX) error {
		_, sweepErr := c.locks.SweepExpired(ctx, d, c.clock.Now())
		return sweepErr
	})
	if err != nil {
		slog.Warn("opportunistic lock sweep failed", "error", err)
	}
}

func coinDiscountPaise(buyer *shared.BuyerSnapshot, product *shared.ProductSnapshot) int64 {
	if !product.CoinApplicable {
		return 0
	}
	maxDiscount := product.BasePricePaise * maxCoinDiscountPercent / 100
	if buyer.CoinBalancePaise < maxDiscount {
		return buyer.CoinBalancePaise
	}
	return maxDiscount
}
