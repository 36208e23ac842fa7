package components

import (
	"upi-checkout/internal/handler"
	"upi-checkout/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCheckoutHandler,
		api.NewWebhookHandler,
		api.NewAdminHandler,
	),
	fx.Invoke(handler.NewRouter),
)
