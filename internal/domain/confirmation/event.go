package confirmation

import (
	"errors"
	"time"

	"upi-checkout/internal/domain/paylock"
	"upi-checkout/internal/pkg/clock"

	"github.com/google/uuid"
)

var (
	ErrEmptyPayload     = errors.New("payload is required")
	ErrInvalidChannel   = errors.New("invalid confirmation channel")
	ErrAlreadyResolved  = errors.New("event is already resolved")
	ErrMissingReference = errors.New("verified event needs lock and buyer references")
)

// Event is one journaled payment-confirmation signal. Every inbound payload
// is persisted as unprocessed before matching so no signal is lost.
type Event struct {
	id             uuid.UUID
	channel        Channel
	sender         string
	rawPayload     string
	amount         *paylock.Amount
	resolution     Resolution
	matchedLockID  *uuid.UUID
	matchedBuyerID *uuid.UUID
	receivedAt     time.Time
}

func NewEvent(clk clock.Clock, channel Channel, sender, rawPayload string) (*Event, error) {
	if !channel.IsValid() {
		return nil, ErrInvalidChannel
	}
	if rawPayload == "" {
		return nil, ErrEmptyPayload
	}

	return &Event{
		id:         uuid.New(),
		channel:    channel,
		sender:     sender,
		rawPayload: rawPayload,
		resolution: ResolutionUnprocessed,
		receivedAt: clk.Now(),
	}, nil
}

func ReconstructEvent(
	id uuid.UUID,
	channel Channel,
	sender, rawPayload string,
	amount *paylock.Amount,
	resolution Resolution,
	matchedLockID, matchedBuyerID *uuid.UUID,
	receivedAt time.Time,
) *Event {
	return &Event{
		id:             id,
		channel:        channel,
		sender:         sender,
		rawPayload:     rawPayload,
		amount:         amount,
		resolution:     resolution,
		matchedLockID:  matchedLockID,
		matchedBuyerID: matchedBuyerID,
		receivedAt:     receivedAt,
	}
}

func (e *Event) SetAmount(amount paylock.Amount) {
	a := amount
	e.amount = &a
}

func (e *Event) MarkNotPayment() error {
	if e.resolution != ResolutionUnprocessed {
		return ErrAlreadyResolved
	}
	e.resolution = ResolutionIgnoredNotPayment
	return nil
}

func (e *Event) MarkNoMatch() error {
	if e.resolution != ResolutionUnprocessed {
		return ErrAlreadyResolved
	}
	e.resolution = ResolutionIgnoredNoMatch
	return nil
}

func (e *Event) MarkVerified(lockID, buyerID uuid.UUID) error {
	if e.resolution != ResolutionUnprocessed {
		return ErrAlreadyResolved
	}
	if lockID == uuid.Nil || buyerID == uuid.Nil {
		return ErrMissingReference
	}
	e.resolution = ResolutionVerified
	e.matchedLockID = &lockID
	e.matchedBuyerID = &buyerID
	return nil
}

// WithVerified returns a copy of the event resolved as verified. The
// receiver stays unprocessed, so a caller whose transaction rolls back can
// replay the transition or fall back to a different resolution.
func (e *Event) WithVerified(lockID, buyerID uuid.UUID) (*Event, error) {
	verified := *e
	if err := verified.MarkVerified(lockID, buyerID); err != nil {
		return nil, err
	}
	return &verified, nil
}

func (e *Event) ID() uuid.UUID              { return e.id }
func (e *Event) Channel() Channel           { return e.channel }
func (e *Event) Sender() string             { return e.sender }
func (e *Event) RawPayload() string         { return e.rawPayload }
func (e *Event) Amount() *paylock.Amount    { return e.amount }
func (e *Event) Resolution() Resolution     { return e.resolution }
func (e *Event) MatchedLockID() *uuid.UUID  { return e.matchedLockID }
func (e *Event) MatchedBuyerID() *uuid.UUID { return e.matchedBuyerID }
func (e *Event) ReceivedAt() time.Time      { return e.receivedAt }
