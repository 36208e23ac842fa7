package readstore

import (
	"context"
	"time"

	"upi-checkout/internal/infra"
	"upi-checkout/internal/infra/db"
	"upi-checkout/internal/pkg/pgconv"
	"upi-checkout/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type LockReadStore struct {
	db db.DBTX
}

func NewLockReadStore(d db.DBTX) *LockReadStore {
	return &LockReadStore{db: d}
}

const lockViewByIDSQL = `
SELECT id, buyer_id, product_id, product_name, amount_paise, status, created_at, expires_at
FROM payment_locks
WHERE id = $1
`

func (r *LockReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.LockListItem, error) {
	row := r.db.QueryRow(ctx, lockViewByIDSQL, id)
	item, err := scanLockListItem(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("lock not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find lock by ID", err)
	}
	return item, nil
}

const lockListFirstPageSQL = `
SELECT id, buyer_id, product_id, product_name, amount_paise, status, created_at, expires_at
FROM payment_locks
WHERE ($1::text IS NULL OR status = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2
`

func (r *LockReadStore) ListFirstPage(ctx context.Context, status *string, limit int32) ([]*queries.LockListItem, error) {
	rows, err := r.db.Query(ctx, lockListFirstPageSQL, pgconv.StringPtrToPgtype(status), limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list locks first page", err)
	}
	defer rows.Close()
	return collectLockListItems(rows)
}

const lockListKeysetSQL = `
SELECT id, buyer_id, product_id, product_name, amount_paise, status, created_at, expires_at
FROM payment_locks
WHERE ($1::text IS NULL OR status = $1)
  AND (created_at, id) < ($2, $3)
ORDER BY created_at DESC, id DESC
LIMIT $4
`

func (r *LockReadStore) ListKeyset(ctx context.Context, status *string, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.LockListItem, error) {
	rows, err := r.db.Query(ctx, lockListKeysetSQL,
		pgconv.StringPtrToPgtype(status), pgconv.TimeToPgtype(lastCreatedAt), lastID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list locks keyset", err)
	}
	defer rows.Close()
	return collectLockListItems(rows)
}

func collectLockListItems(rows pgx.Rows) ([]*queries.LockListItem, error) {
	result := make([]*queries.LockListItem, 0)
	for rows.Next() {
		item, err := scanLockListItem(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan lock row", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate lock rows", err)
	}
	return result, nil
}

func scanLockListItem(row rowScanner) (*queries.LockListItem, error) {
	var (
		item      queries.LockListItem
		createdAt pgtype.Timestamptz
		expiresAt pgtype.Timestamptz
	)
	err := row.Scan(
		&item.ID, &item.BuyerID, &item.ProductID, &item.ProductName,
		&item.AmountPaise, &item.Status, &createdAt, &expiresAt,
	)
	if err != nil {
		return nil, err
	}
	item.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	item.ExpiresAt = pgconv.TimeFromPgtype(expiresAt)
	return &item, nil
}
