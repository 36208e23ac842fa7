package response

import (
	"upi-checkout/internal/usecase/commands"

	"github.com/google/uuid"
)

// ConfirmationAck is returned to webhook providers. Delivery is acknowledged
// even when the payload turns out not to be a payment, so providers do not
// retry messages we have already journaled.
type ConfirmationAck struct {
	EventID uuid.UUID  `json:"event_id"`
	Matched bool       `json:"matched"`
	LockID  *uuid.UUID `json:"lock_id,omitempty"`
	OrderID *uuid.UUID `json:"order_id,omitempty"`
}

func FromReconcileResult(result *commands.ReconcileResult) *ConfirmationAck {
	return &ConfirmationAck{
		EventID: result.EventID,
		Matched: result.Matched,
		LockID:  result.LockID,
		OrderID: result.OrderID,
	}
}
