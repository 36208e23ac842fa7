package writerepo

import (
	"context"

	"upi-checkout/internal/infra"
	"upi-checkout/internal/infra/db"
	"upi-checkout/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BuyerRepository struct{}

func NewBuyerRepository() *BuyerRepository {
	return &BuyerRepository{}
}

const debitCoinsSQL = `
UPDATE buyers
SET coin_balance_paise = coin_balance_paise - $2
WHERE id = $1 AND coin_balance_paise >= $2
RETURNING id
`

// DebitCoins is conditional on sufficient balance so a stale discount
// computed from an outdated snapshot can never drive the balance negative.
func (r *BuyerRepository) DebitCoins(ctx context.Context, d db.DBTX, buyerID uuid.UUID, paise int64) error {
	var id uuid.UUID
	err := d.QueryRow(ctx, debitCoinsSQL, buyerID, paise).Scan(&id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return infra.WrapRepoErr("insufficient coin balance", pgx.ErrNoRows, infra.KindPrecondition)
		}
		return infra.WrapRepoErr("failed to debit coins", err)
	}
	return nil
}

const creditCoinsSQL = `
UPDATE buyers
SET coin_balance_paise = coin_balance_paise + $2
WHERE id = $1
RETURNING id
`

func (r *BuyerRepository) CreditCoins(ctx context.Context, d db.DBTX, buyerID uuid.UUID, paise int64) error {
	var id uuid.UUID
	err := d.QueryRow(ctx, creditCoinsSQL, buyerID, paise).Scan(&id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return infra.WrapRepoErr("buyer not found", pgx.ErrNoRows, infra.KindNotFound)
		}
		return infra.WrapRepoErr("failed to credit coins", err)
	}
	return nil
}
