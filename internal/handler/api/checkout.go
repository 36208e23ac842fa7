package api

import (
	"net/http"

	reqdto "upi-checkout/internal/handler/dto/request"
	resdto "upi-checkout/internal/handler/dto/response"
	"upi-checkout/internal/handler/middleware"
	"upi-checkout/internal/pkg/errs"
	"upi-checkout/internal/usecase/commands"
	"upi-checkout/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CheckoutHandler struct {
	checkout commands.CheckoutCommands
	locks    queries.LockQueries
}

func NewCheckoutHandler(checkout commands.CheckoutCommands, locks queries.LockQueries) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		locks:    locks,
	}
}

func (h *CheckoutHandler) RequestPayableAmount(c *gin.Context) {
	buyerID, ok := middleware.GetBuyerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.PayableAmountRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.checkout.RequestPayableAmount(c.Request.Context(), buyerID, req.ProductID)
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrBuyerNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Buyer not found",
			})
		case errs.Is(err, errs.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
		case errs.Is(err, errs.ErrAmountCollision):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Payable amount is temporarily unavailable, retry shortly",
			})
		case errs.Is(err, errs.ErrDomainValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Domain validation failed",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromPayableAmountResult(result))
}

func (h *CheckoutHandler) PollLockStatus(c *gin.Context) {
	lockID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid lock ID format",
		})
		return
	}

	view, err := h.locks.PollStatus(c.Request.Context(), lockID)
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrLockNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Lock not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromLockStatusView(view))
}

func (h *CheckoutHandler) CancelLock(c *gin.Context) {
	buyerID, ok := middleware.GetBuyerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	lockID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid lock ID format",
		})
		return
	}

	if err := h.checkout.CancelLock(c.Request.Context(), buyerID, lockID); err != nil {
		switch {
		case errs.Is(err, errs.ErrLockNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Lock not found",
			})
		case errs.Is(err, errs.ErrLockForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Lock belongs to another buyer",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
