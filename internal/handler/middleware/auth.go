package middleware

import (
	"crypto/subtle"
	"net/http"

	"upi-checkout/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxBuyerIDKey = "buyer_id"

	buyerIDHeader    = "X-Buyer-ID"
	adminTokenHeader = "X-Admin-Token"
)

// BuyerContext extracts the buyer identity injected by the storefront gateway.
// Requests without a valid buyer id never reach checkout handlers.
func BuyerContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(buyerIDHeader)
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Buyer identity required",
			})
			c.Abort()
			return
		}

		buyerID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid buyer identity",
			})
			c.Abort()
			return
		}

		c.Set(ctxBuyerIDKey, buyerID)
		c.Next()
	}
}

func GetBuyerID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(ctxBuyerIDKey)
	if !exists {
		return uuid.Nil, false
	}
	buyerID, ok := val.(uuid.UUID)
	return buyerID, ok
}

// AdminAuth gates operational endpoints behind a shared secret.
func AdminAuth(cfg config.AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(adminTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Token)) != 1 {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access denied",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
