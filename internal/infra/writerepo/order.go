package writerepo

import (
	"context"

	"upi-checkout/internal/infra"
	"upi-checkout/internal/infra/db"
	"upi-checkout/internal/usecase/shared"

	"github.com/google/uuid"
)

type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

const createOrderSQL = `
INSERT INTO orders (id, buyer_id, product_id, lock_id, product_name, final_price_paise, coin_discount_paise, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id
`

// Create inserts the order materialized from a completed lock. The unique
// constraint on lock_id backstops the conditional lock transition: even a
// logic bug cannot produce two orders for one lock.
func (r *OrderRepository) Create(ctx context.Context, d db.DBTX, params shared.CreateOrderParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := d.QueryRow(ctx, createOrderSQL,
		uuid.New(),
		params.BuyerID,
		params.ProductID,
		params.LockID,
		params.ProductName,
		params.FinalPricePaise,
		params.CoinDiscountPaise,
		params.Status,
	).Scan(&id)
	if err != nil {
		if infra.PgErrorKind(err) == infra.KindConflict {
			return uuid.Nil, infra.WrapRepoErr("order already exists for lock", err, infra.KindConflict)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create order", err)
	}
	return id, nil
}
