package readstore

import (
	"context"
	"time"

	"upi-checkout/internal/domain/paylock"
	"upi-checkout/internal/infra"
	"upi-checkout/internal/infra/db"
	"upi-checkout/internal/pkg/pgconv"
	"upi-checkout/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// CommandReadStore serves the validation and matching reads the command side
// needs. It binds either the pool or an open transaction, so the same
// queries work inside and outside the materialization transaction.
type CommandReadStore struct {
	db db.DBTX
}

func NewCommandReadStore(d db.DBTX) *CommandReadStore {
	return &CommandReadStore{db: d}
}

const buyerByIDSQL = `
SELECT id, name, coin_balance_paise, referrer_id
FROM buyers
WHERE id = $1
`

func (s *CommandReadStore) BuyerByID(ctx context.Context, id uuid.UUID) (*shared.BuyerSnapshot, error) {
	var (
		snap       shared.BuyerSnapshot
		referrerID pgtype.UUID
	)
	err := s.db.QueryRow(ctx, buyerByIDSQL, id).Scan(&snap.ID, &snap.Name, &snap.CoinBalancePaise, &referrerID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("buyer not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find buyer by ID", err)
	}
	snap.ReferrerID = pgconv.UUIDPtrFromPgtype(referrerID)
	return &snap, nil
}

const productByIDSQL = `
SELECT id, name, base_price_paise, coin_value_paise, coin_applicable
FROM products
WHERE id = $1
`

func (s *CommandReadStore) ProductByID(ctx context.Context, id uuid.UUID) (*shared.ProductSnapshot, error) {
	var snap shared.ProductSnapshot
	err := s.db.QueryRow(ctx, productByIDSQL, id).Scan(
		&snap.ID, &snap.Name, &snap.BasePricePaise, &snap.CoinValuePaise, &snap.CoinApplicable,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find product by ID", err)
	}
	return &snap, nil
}

const lockByIDSQL = `
SELECT id, buyer_id, product_id, product_name, amount_paise, status, created_at, expires_at
FROM payment_locks
WHERE id = $1
`

func (s *CommandReadStore) LockByID(ctx context.Context, id uuid.UUID) (*shared.LockSnapshot, error) {
	snap, err := scanLockSnapshot(s.db.QueryRow(ctx, lockByIDSQL, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("lock not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find lock by ID", err)
	}
	return snap, nil
}

const amountTakenSQL = `
SELECT EXISTS (
	SELECT 1 FROM payment_locks
	WHERE amount_paise = $1
	  AND (status = 'active' OR (status = 'expired' AND expires_at >= $2))
)
`

func (s *CommandReadStore) AmountTaken(ctx context.Context, amount paylock.Amount, graceCutoff time.Time) (bool, error) {
	var taken bool
	err := s.db.QueryRow(ctx, amountTakenSQL, amount.Paise(), pgconv.TimeToPgtype(graceCutoff)).Scan(&taken)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check amount availability", err)
	}
	return taken, nil
}

const activeLockByAmountSQL = `
SELECT id, buyer_id, product_id, product_name, amount_paise, status, created_at, expires_at
FROM payment_locks
WHERE amount_paise = $1 AND status = 'active'
`

func (s *CommandReadStore) ActiveLockByAmount(ctx context.Context, amount paylock.Amount) (*shared.LockSnapshot, error) {
	snap, err := scanLockSnapshot(s.db.QueryRow(ctx, activeLockByAmountSQL, amount.Paise()))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("no active lock at amount", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find active lock by amount", err)
	}
	return snap, nil
}

const graceExpiredLockByAmountSQL = `
SELECT id, buyer_id, product_id, product_name, amount_paise, status, created_at, expires_at
FROM payment_locks
WHERE amount_paise = $1 AND status = 'expired' AND expires_at >= $2
ORDER BY expires_at DESC
LIMIT 1
`

// LatestGraceExpiredLockByAmount picks the most recently lapsed candidate so
// a late payment lands on the lock whose countdown ended last.
func (s *CommandReadStore) LatestGraceExpiredLockByAmount(ctx context.Context, amount paylock.Amount, graceCutoff time.Time) (*shared.LockSnapshot, error) {
	snap, err := scanLockSnapshot(s.db.QueryRow(ctx, graceExpiredLockByAmountSQL, amount.Paise(), pgconv.TimeToPgtype(graceCutoff)))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("no grace-expired lock at amount", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find grace-expired lock by amount", err)
	}
	return snap, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLockSnapshot(row rowScanner) (*shared.LockSnapshot, error) {
	var (
		snap      shared.LockSnapshot
		createdAt pgtype.Timestamptz
		expiresAt pgtype.Timestamptz
	)
	err := row.Scan(
		&snap.ID, &snap.BuyerID, &snap.ProductID, &snap.ProductName,
		&snap.AmountPaise, &snap.Status, &createdAt, &expiresAt,
	)
	if err != nil {
		return nil, err
	}
	snap.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	snap.ExpiresAt = pgconv.TimeFromPgtype(expiresAt)
	return &snap, nil
}
