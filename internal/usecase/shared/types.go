package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BuyerSnapshot is the read-only session/balance state consumed from the
// account subsystem.
type BuyerSnapshot struct {
	ID               uuid.UUID
	Name             string
	CoinBalancePaise int64
	ReferrerID       *uuid.UUID
}

// ProductSnapshot is the read-only catalog state. CoinValuePaise > 0 marks a
// coin top-up product whose orders fulfill immediately.
type ProductSnapshot struct {
	ID             uuid.UUID
	Name           string
	BasePricePaise int64
	CoinValuePaise int64
	CoinApplicable bool
}

// Minimal snapshot for command read operations
type LockSnapshot struct {
	ID          uuid.UUID
	BuyerID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	AmountPaise int64
	Status      string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

type CreateOrderParams struct {
	BuyerID           uuid.UUID
	ProductID         uuid.UUID
	LockID            uuid.UUID
	ProductName       string
	FinalPricePaise   int64
	CoinDiscountPaise int64
	Status            string
}

// Notifier delivers a best-effort push to the buyer after materialization.
// Failures are logged, never retried from this core.
type Notifier interface {
	Notify(ctx context.Context, buyerID uuid.UUID, message string, imageURL *string) error
}
