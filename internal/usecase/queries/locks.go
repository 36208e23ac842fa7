package queries

import (
	"context"

	"upi-checkout/internal/domain/paylock"
	"upi-checkout/internal/infra"
	"upi-checkout/internal/pkg/errs"

	"github.com/google/uuid"
)

type lockQueriesImpl struct {
	store LockReadStore
}

func NewLockQueries(store LockReadStore) LockQueries {
	return &lockQueriesImpl{store: store}
}

func (q *lockQueriesImpl) PollStatus(ctx context.Context, lockID uuid.UUID) (*LockStatusView, error) {
	lock, err := q.store.FindByID(ctx, lockID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrLockNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return &LockStatusView{
		LockID:    lock.ID,
		Status:    lock.Status,
		Completed: lock.Status == paylock.StatusCompleted.String(),
		ExpiresAt: lock.ExpiresAt,
	}, nil
}

func (q *lockQueriesImpl) ListLocks(ctx context.Context, filter LockFilter, after *Cursor, limit int) ([]*LockListItem, *Cursor, error) {
	limit = clampLimit(limit)

	var (
		rows []*LockListItem
		err  error
	)
	if after == nil || after.After == "" {
		rows, err = q.store.ListFirstPage(ctx, filter.Status, int32(limit))
	} else {
		lastCreatedAt, lastID, decodeErr := DecodeAfterCursor(after.After)
		if decodeErr != nil {
			return nil, nil, errs.Mark(decodeErr, errs.ErrDomainValidation)
		}
		rows, err = q.store.ListKeyset(ctx, filter.Status, lastCreatedAt, lastID, int32(limit))
	}
	if err != nil {
		return nil, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	var next *Cursor
	if len(rows) == limit {
		last := rows[len(rows)-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
	}
	return rows, next, nil
}
