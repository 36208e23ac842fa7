package paylock

import (
	"errors"
	"time"

	"upi-checkout/internal/pkg/clock"

	"github.com/google/uuid"
)

var (
	ErrMissingBuyer   = errors.New("buyer is required")
	ErrMissingProduct = errors.New("product is required")
	ErrInvalidStatus  = errors.New("invalid lock status")
)

type ProductSpec struct {
	ID   uuid.UUID
	Name string
}

type Services struct {
	Clock   clock.Clock
	LockTTL time.Duration
}

// PaymentLock reserves one exact payable amount for a buyer/product pair.
// The amount is the correlation key for inbound confirmations, so it is
// immutable once created.
type PaymentLock struct {
	id          uuid.UUID
	buyerID     uuid.UUID
	productID   uuid.UUID
	productName string
	amount      Amount
	status      Status
	createdAt   time.Time
	expiresAt   time.Time
}

func NewPaymentLock(services *Services, buyerID uuid.UUID, product ProductSpec, amount Amount) (*PaymentLock, error) {
	if buyerID == uuid.Nil {
		return nil, ErrMissingBuyer
	}
	if product.ID == uuid.Nil {
		return nil, ErrMissingProduct
	}
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	now := services.Clock.Now()
	return &PaymentLock{
		id:          uuid.New(),
		buyerID:     buyerID,
		productID:   product.ID,
		productName: product.Name,
		amount:      amount,
		status:      StatusActive,
		createdAt:   now,
		expiresAt:   now.Add(services.LockTTL),
	}, nil
}

func ReconstructPaymentLock(
	id, buyerID, productID uuid.UUID,
	productName string,
	amount Amount,
	status Status,
	createdAt, expiresAt time.Time,
) *PaymentLock {
	return &PaymentLock{
		id:          id,
		buyerID:     buyerID,
		productID:   productID,
		productName: productName,
		amount:      amount,
		status:      status,
		createdAt:   createdAt,
		expiresAt:   expiresAt,
	}
}

func (l *PaymentLock) IsActive() bool {
	return l.status == StatusActive
}

func (l *PaymentLock) IsCompleted() bool {
	return l.status == StatusCompleted
}

func (l *PaymentLock) HasExpired(now time.Time) bool {
	return now.After(l.expiresAt)
}

// InGraceWindow reports whether an expired lock may still be matched against
// a late confirmation.
func (l *PaymentLock) InGraceWindow(now time.Time, grace time.Duration) bool {
	if l.status != StatusExpired {
		return false
	}
	return !now.After(l.expiresAt.Add(grace))
}

func (l *PaymentLock) ID() uuid.UUID       { return l.id }
func (l *PaymentLock) BuyerID() uuid.UUID  { return l.buyerID }
func (l *PaymentLock) ProductID() uuid.UUID { return l.productID }
func (l *PaymentLock) ProductName() string { return l.productName }
func (l *PaymentLock) Amount() Amount      { return l.amount }
func (l *PaymentLock) Status() Status      { return l.status }
func (l *PaymentLock) CreatedAt() time.Time { return l.createdAt }
func (l *PaymentLock) ExpiresAt() time.Time { return l.expiresAt }
