package writerepo

import (
	"context"

	"upi-checkout/internal/infra"
	"upi-checkout/internal/infra/db"
	"upi-checkout/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

const createNotificationSQL = `
INSERT INTO notifications (id, buyer_id, message, image_url)
VALUES ($1, $2, $3, $4)
`

func (r *NotificationRepository) CreateInApp(ctx context.Context, d db.DBTX, buyerID uuid.UUID, message string, imageURL *string) error {
	_, err := d.Exec(ctx, createNotificationSQL,
		uuid.New(),
		buyerID,
		message,
		pgconv.StringPtrToPgtype(imageURL),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create in-app notification", err)
	}
	return nil
}
