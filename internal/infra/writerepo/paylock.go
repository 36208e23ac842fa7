package writerepo

import (
	"context"
	"time"

	"upi-checkout/internal/domain/paylock"
	"upi-checkout/internal/infra"
	"upi-checkout/internal/infra/db"
	"upi-checkout/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LockRepository struct{}

func NewLockRepository() *LockRepository {
	return &LockRepository{}
}

const createLockSQL = `
INSERT INTO payment_locks (id, buyer_id, product_id, product_name, amount_paise, status, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// Create inserts the lock. The partial unique index on
// (amount_paise) WHERE status = 'active' is the authoritative guard against
// two concurrent buyers holding the same amount; the allocator's pre-check
// only reduces how often this fails.
func (r *LockRepository) Create(ctx context.Context, d db.DBTX, lock *paylock.PaymentLock) (uuid.UUID, error) {
	_, err := d.Exec(ctx, createLockSQL,
		lock.ID(),
		lock.BuyerID(),
		lock.ProductID(),
		lock.ProductName(),
		lock.Amount().Paise(),
		lock.Status().String(),
		pgconv.TimeToPgtype(lock.CreatedAt()),
		pgconv.TimeToPgtype(lock.ExpiresAt()),
	)
	if err != nil {
		if infra.PgErrorKind(err) == infra.KindConflict {
			return uuid.Nil, infra.WrapRepoErr("amount already reserved", err, infra.KindConflict)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create payment lock", err)
	}
	return lock.ID(), nil
}

const markExpiredSQL = `
UPDATE payment_locks
SET status = 'expired', expires_at = $2
WHERE id = $1 AND status = 'active'
`

// MarkExpired releases an active lock and rewinds its expiry to the release
// time. Zero rows affected means the lock is missing or already terminal;
// both are fine, release must stay idempotent.
func (r *LockRepository) MarkExpired(ctx context.Context, d db.DBTX, id uuid.UUID, expiresAt time.Time) error {
	_, err := d.Exec(ctx, markExpiredSQL, id, pgconv.TimeToPgtype(expiresAt))
	if err != nil {
		return infra.WrapRepoErr("failed to expire payment lock", err)
	}
	return nil
}

const completeLockSQL = `
UPDATE payment_locks
SET status = 'completed'
WHERE id = $1 AND status <> 'completed'
RETURNING id
`

// CompleteLock is the exactly-once transition: the conditional update admits
// a single winner, and every later caller gets a precondition failure.
func (r *LockRepository) CompleteLock(ctx context.Context, d db.DBTX, id uuid.UUID) error {
	var completed uuid.UUID
	err := d.QueryRow(ctx, completeLockSQL, id).Scan(&completed)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return infra.WrapRepoErr("lock already completed or missing", pgx.ErrNoRows, infra.KindPrecondition)
		}
		return infra.WrapRepoErr("failed to complete payment lock", err)
	}
	return nil
}

const sweepExpiredSQL = `
UPDATE payment_locks
SET status = 'expired'
WHERE status = 'active' AND expires_at < $1
`

// SweepExpired bulk-lapses overdue active locks. Timed-out locks keep their
// original expiry so the grace window runs from the natural TTL.
func (r *LockRepository) SweepExpired(ctx context.Context, d db.DBTX, now time.Time) (int64, error) {
	tag, err := d.Exec(ctx, sweepExpiredSQL, pgconv.TimeToPgtype(now))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to sweep expired locks", err)
	}
	return tag.RowsAffected(), nil
}
