package writerepo

import (
	"context"

	"upi-checkout/internal/domain/confirmation"
	"upi-checkout/internal/infra"
	"upi-checkout/internal/infra/db"
	"upi-checkout/internal/pkg/pgconv"
)

type JournalRepository struct{}

func NewJournalRepository() *JournalRepository {
	return &JournalRepository{}
}

const createEventSQL = `
INSERT INTO confirmation_events (id, channel, sender, raw_payload, amount_paise, resolution, matched_lock_id, matched_buyer_id, received_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

func (r *JournalRepository) Create(ctx context.Context, d db.DBTX, event *confirmation.Event) error {
	_, err := d.Exec(ctx, createEventSQL,
		event.ID(),
		event.Channel().String(),
		event.Sender(),
		event.RawPayload(),
		amountToPg(event),
		event.Resolution().String(),
		pgconv.UUIDPtrToPgtype(event.MatchedLockID()),
		pgconv.UUIDPtrToPgtype(event.MatchedBuyerID()),
		pgconv.TimeToPgtype(event.ReceivedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to journal confirmation event", err)
	}
	return nil
}

const updateResolutionSQL = `
UPDATE confirmation_events
SET amount_paise = $2, resolution = $3, matched_lock_id = $4, matched_buyer_id = $5
WHERE id = $1
`

func (r *JournalRepository) UpdateResolution(ctx context.Context, d db.DBTX, event *confirmation.Event) error {
	_, err := d.Exec(ctx, updateResolutionSQL,
		event.ID(),
		amountToPg(event),
		event.Resolution().String(),
		pgconv.UUIDPtrToPgtype(event.MatchedLockID()),
		pgconv.UUIDPtrToPgtype(event.MatchedBuyerID()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update event resolution", err)
	}
	return nil
}

func amountToPg(event *confirmation.Event) any {
	if event.Amount() == nil {
		return pgconv.Int64PtrToPgtype(nil)
	}
	paise := event.Amount().Paise()
	return pgconv.Int64PtrToPgtype(&paise)
}
