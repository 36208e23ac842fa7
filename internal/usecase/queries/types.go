package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type LockStatusView struct {
	LockID    uuid.UUID `json:"lock_id"`
	Status    string    `json:"status"`
	Completed bool      `json:"completed"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LockListItem struct {
	ID          uuid.UUID `json:"id"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	AmountPaise int64     `json:"amount_paise"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type JournalListItem struct {
	ID             uuid.UUID  `json:"id"`
	Channel        string     `json:"channel"`
	Sender         string     `json:"sender"`
	RawPayload     string     `json:"raw_payload"`
	AmountPaise    *int64     `json:"amount_paise,omitempty"`
	Resolution     string     `json:"resolution"`
	MatchedLockID  *uuid.UUID `json:"matched_lock_id,omitempty"`
	MatchedBuyerID *uuid.UUID `json:"matched_buyer_id,omitempty"`
	ReceivedAt     time.Time  `json:"received_at"`
}

type Cursor struct {
	After string
}

type LockFilter struct {
	Status *string
}

type JournalFilter struct {
	Resolution *string
}

type LockQueries interface {
	// PollStatus is the buyer-side polling read; it never mutates state.
	PollStatus(ctx context.Context, lockID uuid.UUID) (*LockStatusView, error)
	ListLocks(ctx context.Context, filter LockFilter, after *Cursor, limit int) ([]*LockListItem, *Cursor, error)
}

type JournalQueries interface {
	ListEvents(ctx context.Context, filter JournalFilter, after *Cursor, limit int) ([]*JournalListItem, *Cursor, error)
}

type LockReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*LockListItem, error)
	ListFirstPage(ctx context.Context, status *string, limit int32) ([]*LockListItem, error)
	ListKeyset(ctx context.Context, status *string, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*LockListItem, error)
}

type JournalReadStore interface {
	ListFirstPage(ctx context.Context, resolution *string, limit int32) ([]*JournalListItem, error)
	ListKeyset(ctx context.Context, resolution *string, lastReceivedAt time.Time, lastID uuid.UUID, limit int32) ([]*JournalListItem, error)
}
