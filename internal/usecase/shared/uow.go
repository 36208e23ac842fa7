package shared

import (
	"context"
	"time"

	"upi-checkout/internal/domain/confirmation"
	"upi-checkout/internal/domain/paylock"
	"upi-checkout/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, d db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Locks() LockRepository
	Journal() JournalRepository
	Orders() OrderRepository
	Buyers() BuyerRepository
	Notifications() NotificationRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	BuyerByID(ctx context.Context, id uuid.UUID) (*BuyerSnapshot, error)
	ProductByID(ctx context.Context, id uuid.UUID) (*ProductSnapshot, error)
	LockByID(ctx context.Context, id uuid.UUID) (*LockSnapshot, error)
	// AmountTaken backs the allocator pre-check: an active lock at the
	// amount, or an expired one with expiry at or after graceCutoff.
	AmountTaken(ctx context.Context, amount paylock.Amount, graceCutoff time.Time) (bool, error)
	ActiveLockByAmount(ctx context.Context, amount paylock.Amount) (*LockSnapshot, error)
	// LatestGraceExpiredLockByAmount picks the most recently lapsed expired
	// lock at the amount, expiry at or after graceCutoff.
	LatestGraceExpiredLockByAmount(ctx context.Context, amount paylock.Amount, graceCutoff time.Time) (*LockSnapshot, error)
}

type LockRepository interface {
	Create(ctx context.Context, d db.DBTX, lock *paylock.PaymentLock) (uuid.UUID, error)
	// MarkExpired is a conditional active-only transition; a no-op when the
	// lock is missing or already terminal, so release stays idempotent.
	MarkExpired(ctx context.Context, d db.DBTX, id uuid.UUID, expiresAt time.Time) error
	// CompleteLock succeeds only when the lock is not already completed.
	// This conditional transition is the exactly-once reconciliation guard.
	CompleteLock(ctx context.Context, d db.DBTX, id uuid.UUID) error
	SweepExpired(ctx context.Context, d db.DBTX, now time.Time) (int64, error)
}

type JournalRepository interface {
	Create(ctx context.Context, d db.DBTX, event *confirmation.Event) error
	UpdateResolution(ctx context.Context, d db.DBTX, event *confirmation.Event) error
}

type OrderRepository interface {
	Create(ctx context.Context, d db.DBTX, params CreateOrderParams) (uuid.UUID, error)
}

type BuyerRepository interface {
	DebitCoins(ctx context.Context, d db.DBTX, buyerID uuid.UUID, paise int64) error
	CreditCoins(ctx context.Context, d db.DBTX, buyerID uuid.UUID, paise int64) error
}

type NotificationRepository interface {
	CreateInApp(ctx context.Context, d db.DBTX, buyerID uuid.UUID, message string, imageURL *string) error
}
