package api

import (
	"net/http"

	"upi-checkout/internal/domain/confirmation"
	reqdto "upi-checkout/internal/handler/dto/request"
	resdto "upi-checkout/internal/handler/dto/response"
	"upi-checkout/internal/pkg/errs"
	"upi-checkout/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	reconcile commands.ReconcileCommands
}

func NewWebhookHandler(reconcile commands.ReconcileCommands) *WebhookHandler {
	return &WebhookHandler{
		reconcile: reconcile,
	}
}

// ReceiveSMS ingests a forwarded bank SMS. Unparseable or unmatched
// messages are still journaled and acknowledged with 200 so the
// forwarder does not retry them.
func (h *WebhookHandler) ReceiveSMS(c *gin.Context) {
	var req reqdto.SMSWebhookRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.reconcile.SubmitConfirmation(c.Request.Context(), confirmation.ChannelSMS, req.Sender, req.Body)
	if err != nil {
		h.writeSubmitError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromReconcileResult(result))
}

// ReceiveGateway ingests a payment gateway notification. The raw body is
// journaled verbatim before any parsing happens.
func (h *WebhookHandler) ReceiveGateway(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Empty request body",
		})
		return
	}

	sender := c.GetHeader("X-Gateway-Source")
	if sender == "" {
		sender = "gateway"
	}

	result, err := h.reconcile.SubmitConfirmation(c.Request.Context(), confirmation.ChannelGateway, sender, string(body))
	if err != nil {
		h.writeSubmitError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromReconcileResult(result))
}

func (h *WebhookHandler) writeSubmitError(c *gin.Context, err error) {
	switch {
	case errs.Is(err, errs.ErrDomainValidation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid confirmation payload",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
