package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"upi-checkout/internal/handler/api"
	"upi-checkout/internal/handler/middleware"
	"upi-checkout/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, checkoutHandler *api.CheckoutHandler, webhookHandler *api.WebhookHandler, adminHandler *api.AdminHandler) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, cfg, checkoutHandler, webhookHandler, adminHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, cfg config.Config, checkoutHandler *api.CheckoutHandler, webhookHandler *api.WebhookHandler, adminHandler *api.AdminHandler) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	{
		checkout := apiGroup.Group("/checkout")
		checkout.Use(middleware.BuyerContext())
		{
			addRoutes(checkout, []route{
				{Method: http.MethodPost, Path: "/locks", Handler: checkoutHandler.RequestPayableAmount},
				{Method: http.MethodGet, Path: "/locks/:id/status", Handler: checkoutHandler.PollLockStatus},
				{Method: http.MethodDelete, Path: "/locks/:id", Handler: checkoutHandler.CancelLock},
			})
		}

		webhooks := apiGroup.Group("/webhooks")
		{
			addRoutes(webhooks, []route{
				{Method: http.MethodPost, Path: "/sms", Handler: webhookHandler.ReceiveSMS},
				{Method: http.MethodPost, Path: "/gateway", Handler: webhookHandler.ReceiveGateway},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(middleware.AdminAuth(cfg.Admin))
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/locks", Handler: adminHandler.ListLocks},
				{Method: http.MethodGet, Path: "/journal", Handler: adminHandler.ListJournal},
				{Method: http.MethodPost, Path: "/locks/:id/approve", Handler: adminHandler.ApproveLock},
				{Method: http.MethodPost, Path: "/locks/:id/expire", Handler: adminHandler.ExpireLock},
			})
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
