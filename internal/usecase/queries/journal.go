package queries

import (
	"context"

	"upi-checkout/internal/pkg/errs"
)

type journalQueriesImpl struct {
	store JournalReadStore
}

func NewJournalQueries(store JournalReadStore) JournalQueries {
	return &journalQueriesImpl{store: store}
}

func (q *journalQueriesImpl) ListEvents(ctx context.Context, filter JournalFilter, after *Cursor, limit int) ([]*JournalListItem, *Cursor, error) {
	limit = clampLimit(limit)

	var (
		rows []*JournalListItem
		err  error
	)
	if after == nil || after.After == "" {
		rows, err = q.store.ListFirstPage(ctx, filter.Resolution, int32(limit))
	} else {
		lastReceivedAt, lastID, decodeErr := DecodeAfterCursor(after.After)
		if decodeErr != nil {
			return nil, nil, errs.Mark(decodeErr, errs.ErrDomainValidation)
		}
		rows, err = q.store.ListKeyset(ctx, filter.Resolution, lastReceivedAt, lastID, int32(limit))
	}
	if err != nil {
		return nil, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	var next *Cursor
	if len(rows) == limit {
		last := rows[len(rows)-1]
		next = &Cursor{After: EncodeAfterCursor(last.ReceivedAt, last.ID)}
	}
	return rows, next, nil
}
