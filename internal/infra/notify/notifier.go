package notify

import (
	"context"
	"log/slog"

	"upi-checkout/internal/usecase/shared"

	"github.com/google/uuid"
)

// SlogNotifier stands in for the external push-delivery collaborator. The
// storefront's delivery service consumes the in-app notification rows; this
// hook only logs so the core never blocks on push failures.
type SlogNotifier struct {
	logger *slog.Logger
}

func NewSlogNotifier() shared.Notifier {
	return &SlogNotifier{logger: slog.Default()}
}

func (n *SlogNotifier) Notify(_ context.Context, buyerID uuid.UUID, message string, imageURL *string) error {
	args := []any{"buyer_id", buyerID, "message", message}
	if imageURL != nil {
		args = append(args, "image_url", *imageURL)
	}
	n.logger.Info("push notification dispatched", args...)
	return nil
}
