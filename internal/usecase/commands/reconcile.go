package commands

import (
	"context"
	"fmt"
	"log/slog"

	"upi-checkout/internal/domain/confirmation"
	"upi-checkout/internal/domain/paylock"
	"upi-checkout/internal/infra"
	"upi-checkout/internal/infra/db"
	"upi-checkout/internal/pkg/clock"
	"upi-checkout/internal/pkg/config"
	"upi-checkout/internal/pkg/errs"
	"upi-checkout/internal/usecase/shared"

	"github.com/google/uuid"
)

// Referrers earn a cut of every auto-fulfilled order placed by a buyer they
// brought in.
const referralRewardPercent = 5

const orderStatusCompleted = "completed"
const orderStatusProcessing = "processing"

type ReconcileResult struct {
	EventID uuid.UUID
	Matched bool
	LockID  *uuid.UUID
	OrderID *uuid.UUID
}

type ApproveResult struct {
	LockID  uuid.UUID
	OrderID uuid.UUID
}

type ReconcileCommands interface {
	SubmitConfirmation(ctx context.Context, channel confirmation.Channel, sender, rawPayload string) (*ReconcileResult, error)
	ManualApprove(ctx context.Context, lockID uuid.UUID) (*ApproveResult, error)
	ForceExpire(ctx context.Context, lockID uuid.UUID) error
}

type reconcileCommandsImpl struct {
	uow      shared.UnitOfWork
	locks    shared.LockRepository
	journal  shared.JournalRepository
	notifier shared.Notifier
	clock    clock.Clock
	payment  config.PaymentConfig
}

func NewReconcileCommands(
	uow shared.UnitOfWork,
	locks shared.LockRepository,
	journal shared.JournalRepository,
	notifier shared.Notifier,
	clk clock.Clock,
	cfg config.Config,
) ReconcileCommands {
	return &reconcileCommandsImpl{
		uow:      uow,
		locks:    locks,
		journal:  journal,
		notifier: notifier,
		clock:    clk,
		payment:  cfg.Payment,
	}
}

// SubmitConfirmation journals the raw signal first, then parses and matches
// it against a lock. The journal write happens before any matching so a
// failing match never loses the signal.
func (r *reconcileCommandsImpl) SubmitConfirmation(ctx context.Context, channel confirmation.Channel, sender, rawPayload string) (*ReconcileResult, error) {
	r.sweepStaleLocks(ctx)

	event, err := confirmation.NewEvent(r.clock, channel, sender, rawPayload)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	if err := r.journalEvent(ctx, event); err != nil {
		return nil, err
	}

	amount, err := confirmation.Parse(channel, rawPayload)
	if err != nil {
		if resolveErr := r.resolveEvent(ctx, event, event.MarkNotPayment); resolveErr != nil {
			return nil, resolveErr
		}
		slog.Info("confirmation ignored: not a payment",
			"event_id", event.ID(), "channel", channel.String(), "sender", sender)
		return &ReconcileResult{EventID: event.ID(), Matched: false}, nil
	}
	event.SetAmount(amount)

	lock, err := r.findMatchingLock(ctx, amount)
	if err != nil {
		return nil, err
	}
	if lock == nil {
		if resolveErr := r.resolveEvent(ctx, event, event.MarkNoMatch); resolveErr != nil {
			return nil, resolveErr
		}
		slog.Warn("confirmation ignored: no matching lock",
			"event_id", event.ID(), "amount", amount.String(), "channel", channel.String())
		return &ReconcileResult{EventID: event.ID(), Matched: false}, nil
	}

	var orderID uuid.UUID
	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		materializedID, matErr := r.materialize(ctx, tx, lock)
		if matErr != nil {
			return matErr
		}
		orderID = materializedID

		// The UoW replays this closure after a retryable rollback, so the
		// shared event must stay untouched; each attempt persists a fresh
		// verified copy.
		verified, markErr := event.WithVerified(lock.ID, lock.BuyerID)
		if markErr != nil {
			return errs.Mark(markErr, errs.ErrDomainValidation)
		}
		return r.journal.UpdateResolution(ctx, tx.DB(), verified)
	})
	if err != nil {
		if errs.Is(err, errs.ErrAlreadyCompleted) {
			// A concurrent delivery won the race; the lock is spoken for, so
			// this duplicate resolves as unmatched.
			if resolveErr := r.resolveEvent(ctx, event, event.MarkNoMatch); resolveErr != nil {
				return nil, resolveErr
			}
			return &ReconcileResult{EventID: event.ID(), Matched: false}, nil
		}
		return nil, err
	}

	r.notifyBestEffort(ctx, lock.BuyerID, fmt.Sprintf("Payment of ₹%s received for %s", amount.String(), lock.ProductName))

	lockID := lock.ID
	return &ReconcileResult{EventID: event.ID(), Matched: true, LockID: &lockID, OrderID: &orderID}, nil
}

// ManualApprove materializes a lock that no external signal matched. The
// synthetic journal entry keeps the audit trail complete.
func (r *reconcileCommandsImpl) ManualApprove(ctx context.Context, lockID uuid.UUID) (*ApproveResult, error) {
	lock, err := r.uow.CommandReads().LockByID(ctx, lockID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrLockNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if lock.Status == paylock.StatusCompleted.String() {
		return nil, errs.ErrAlreadyCompleted
	}

	amount, err := paylock.NewAmount(lock.AmountPaise)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	event, err := confirmation.NewEvent(r.clock, confirmation.ChannelManual, "admin",
		fmt.Sprintf("manual approval of lock %s for ₹%s", lock.ID, amount.String()))
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}
	event.SetAmount(amount)

	var orderID uuid.UUID
	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		materializedID, matErr := r.materialize(ctx, tx, lock)
		if matErr != nil {
			return matErr
		}
		orderID = materializedID

		verified, markErr := event.WithVerified(lock.ID, lock.BuyerID)
		if markErr != nil {
			return errs.Mark(markErr, errs.ErrDomainValidation)
		}
		return r.journal.Create(ctx, tx.DB(), verified)
	})
	if err != nil {
		return nil, err
	}

	r.notifyBestEffort(ctx, lock.BuyerID, fmt.Sprintf("Payment of ₹%s confirmed for %s", amount.String(), lock.ProductName))

	return &ApproveResult{LockID: lock.ID, OrderID: orderID}, nil
}

// ForceExpire frees a lock's amount immediately. Idempotent for locks that
// already lapsed; completed locks are never reopened.
func (r *reconcileCommandsImpl) ForceExpire(ctx context.Context, lockID uuid.UUID) error {
	lock, err := r.uow.CommandReads().LockByID(ctx, lockID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrLockNotFound
		}
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if lock.Status == paylock.StatusCompleted.String() {
		return errs.ErrAlreadyCompleted
	}

	err = r.uow.WithDB(ctx, func(ctx context.Context, d db.DBTX) error {
		return r.locks.MarkExpired(ctx, d, lockID, r.clock.Now())
	})
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}

// materialize runs the order side of a match inside the caller's
// transaction: verify references, re-derive the coin discount from current
// buyer state, create the order, move balances, reward the referrer, and
// flip the lock. The conditional lock transition makes the whole block
// exactly-once: the losing writer rolls back everything here.
func (r *reconcileCommandsImpl) materialize(ctx context.Context, tx shared.Tx, lock *shared.LockSnapshot) (uuid.UUID, error) {
	buyer, err := tx.Reads().BuyerByID(ctx, lock.BuyerID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return uuid.Nil, errs.Mark(err, errs.ErrReferenceNotFound)
		}
		return uuid.Nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	product, err := tx.Reads().ProductByID(ctx, lock.ProductID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return uuid.Nil, errs.Mark(err, errs.ErrReferenceNotFound)
		}
		return uuid.Nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	// Discount is re-derived from the buyer's current balance, not trusted
	// from allocation time.
	discount := coinDiscountPaise(buyer, product)

	status := orderStatusProcessing
	if product.CoinValuePaise > 0 {
		status = orderStatusCompleted
	}

	orderID, err := tx.Orders().Create(ctx, tx.DB(), shared.CreateOrderParams{
		BuyerID:           buyer.ID,
		ProductID:         product.ID,
		LockID:            lock.ID,
		ProductName:       product.Name,
		FinalPricePaise:   lock.AmountPaise,
		CoinDiscountPaise: discount,
		Status:            status,
	})
	if err != nil {
		// One order per lock: a conflict here means a concurrent delivery
		// already materialized this lock.
		if infra.IsKind(err, infra.KindConflict) {
			return uuid.Nil, errs.Mark(err, errs.ErrAlreadyCompleted)
		}
		return uuid.Nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if discount > 0 {
		if err := tx.Buyers().DebitCoins(ctx, tx.DB(), buyer.ID, discount); err != nil {
			// The balance moved between the snapshot read and the debit.
			// Abort and leave the lock matchable for a retry.
			if infra.IsKind(err, infra.KindPrecondition) {
				return uuid.Nil, errs.Mark(err, errs.ErrInsufficientCoins)
			}
			return uuid.Nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	}
	if product.CoinValuePaise > 0 {
		if err := tx.Buyers().CreditCoins(ctx, tx.DB(), buyer.ID, product.CoinValuePaise); err != nil {
			return uuid.Nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	}

	if buyer.ReferrerID != nil && status == orderStatusCompleted {
		reward := lock.AmountPaise * referralRewardPercent / 100
		if reward > 0 {
			if err := tx.Buyers().CreditCoins(ctx, tx.DB(), *buyer.ReferrerID, reward); err != nil {
				return uuid.Nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}
	}

	if err := tx.Locks().CompleteLock(ctx, tx.DB(), lock.ID); err != nil {
		if infra.IsKind(err, infra.KindPrecondition) {
			return uuid.Nil, errs.Mark(err, errs.ErrAlreadyCompleted)
		}
		return uuid.Nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	message := fmt.Sprintf("Order confirmed: %s", product.Name)
	if err := tx.Notifications().CreateInApp(ctx, tx.DB(), buyer.ID, message, nil); err != nil {
		return uuid.Nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return orderID, nil
}

// findMatchingLock prefers an active lock at the exact amount, falling back
// to the most recently lapsed expired lock still inside the grace window.
func (r *reconcileCommandsImpl) findMatchingLock(ctx context.Context, amount paylock.Amount) (*shared.LockSnapshot, error) {
	reads := r.uow.CommandReads()

	lock, err := reads.ActiveLockByAmount(ctx, amount)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if lock != nil {
		return lock, nil
	}

	graceCutoff := r.clock.Now().Add(-r.payment.GraceWindow)
	lock, err = reads.LatestGraceExpiredLockByAmount(ctx, amount, graceCutoff)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return lock, nil
}

func (r *reconcileCommandsImpl) journalEvent(ctx context.Context, event *confirmation.Event) error {
	err := r.uow.WithDB(ctx, func(ctx context.Context, d db.DBTX) error {
		return r.journal.Create(ctx, d, event)
	})
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}

func (r *reconcileCommandsImpl) resolveEvent(ctx context.Context, event *confirmation.Event, mark func() error) error {
	if err := mark(); err != nil {
		return errs.Mark(err, errs.ErrDomainValidation)
	}
	err := r.uow.WithDB(ctx, func(ctx context.Context, d db.DBTX) error {
		return r.journal.UpdateResolution(ctx, d, event)
	})
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}

func (r *reconcileCommandsImpl) notifyBestEffort(ctx context.Context, buyerID uuid.UUID, message string) {
	if err := r.notifier.Notify(ctx, buyerID, message, nil); err != nil {
		slog.Warn("push notification failed", "buyer_id", buyerID, "error", err)
	}
}

func (r *reconcileCommandsImpl) sweepStaleLocks(ctx context.Context) {
	err := r.uow.WithDB(ctx, func(ctx context.Context, d db.DBTX) error {
		_, sweepErr := r.locks.SweepExpired(ctx, d, r.clock.Now())
		return sweepErr
	})
	if err != nil {
		slog.Warn("opportunistic lock sweep failed", "error", err)
	}
}
