package response

import (
	"time"

	"upi-checkout/internal/domain/paylock"
	"upi-checkout/internal/usecase/commands"
	"upi-checkout/internal/usecase/queries"

	"github.com/google/uuid"
)

type PayableAmountResponse struct {
	LockID    uuid.UUID `json:"lock_id"`
	Amount    string    `json:"amount"`
	Surcharge string    `json:"surcharge"`
	ExpiresAt time.Time `json:"expires_at"`
}

func FromPayableAmountResult(result *commands.PayableAmountResult) *PayableAmountResponse {
	amount, _ := paylock.NewAmount(result.AmountPaise)
	surcharge, _ := paylock.NewAmount(result.SurchargePaise)
	return &PayableAmountResponse{
		LockID:    result.LockID,
		Amount:    amount.String(),
		Surcharge: surcharge.String(),
		ExpiresAt: result.ExpiresAt,
	}
}

type LockStatusResponse struct {
	Completed bool `json:"completed"`
}

func FromLockStatusView(view *queries.LockStatusView) *LockStatusResponse {
	return &LockStatusResponse{Completed: view.Completed}
}
