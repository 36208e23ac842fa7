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

type JournalReadStore struct {
	db db.DBTX
}

func NewJournalReadStore(d db.DBTX) *JournalReadStore {
	return &JournalReadStore{db: d}
}

const journalListFirstPageSQL = `
SELECT id, channel, sender, raw_payload, amount_paise, resolution, matched_lock_id, matched_buyer_id, received_at
FROM confirmation_events
WHERE ($1::text IS NULL OR resolution = $1)
ORDER BY received_at DESC, id DESC
LIMIT $2
`

func (r *JournalReadStore) ListFirstPage(ctx context.Context, resolution *string, limit int32) ([]*queries.JournalListItem, error) {
	rows, err := r.db.Query(ctx, journalListFirstPageSQL, pgconv.StringPtrToPgtype(resolution), limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list journal first page", err)
	}
	defer rows.Close()
	return collectJournalListItems(rows)
}

const journalListKeysetSQL = `
SELECT id, channel, sender, raw_payload, amount_paise, resolution, matched_lock_id, matched_buyer_id, received_at
FROM confirmation_events
WHERE ($1::text IS NULL OR resolution = $1)
  AND (received_at, id) < ($2, $3)
ORDER BY received_at DESC, id DESC
LIMIT $4
`

func (r *JournalReadStore) ListKeyset(ctx context.Context, resolution *string, lastReceivedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.JournalListItem, error) {
	rows, err := r.db.Query(ctx, journalListKeysetSQL,
		pgconv.StringPtrToPgtype(resolution), pgconv.TimeToPgtype(lastReceivedAt), lastID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list journal keyset", err)
	}
	defer rows.Close()
	return collectJournalListItems(rows)
}

func collectJournalListItems(rows pgx.Rows) ([]*queries.JournalListItem, error) {
	result := make([]*queries.JournalListItem, 0)
	for rows.Next() {
		var (
			item           queries.JournalListItem
			amountPaise    pgtype.Int8
			matchedLockID  pgtype.UUID
			matchedBuyerID pgtype.UUID
			receivedAt     pgtype.Timestamptz
		)
		err := rows.Scan(
			&item.ID, &item.Channel, &item.Sender, &item.RawPayload,
			&amountPaise, &item.Resolution, &matchedLockID, &matchedBuyerID, &receivedAt,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan journal row", err)
		}
		item.AmountPaise = pgconv.Int64PtrFromPgtype(amountPaise)
		item.MatchedLockID = pgconv.UUIDPtrFromPgtype(matchedLockID)
		item.MatchedBuyerID = pgconv.UUIDPtrFromPgtype(matchedBuyerID)
		item.ReceivedAt = pgconv.TimeFromPgtype(receivedAt)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate journal rows", err)
	}
	return result, nil
}
