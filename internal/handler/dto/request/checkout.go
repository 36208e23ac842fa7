package request

import "github.com/google/uuid"

type PayableAmountRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}
