package api

import (
	"net/http"
	"strconv"

	resdto "upi-checkout/internal/handler/dto/response"
	"upi-checkout/internal/pkg/errs"
	"upi-checkout/internal/usecase/commands"
	"upi-checkout/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	reconcile commands.ReconcileCommands
	locks     queries.LockQueries
	journal   queries.JournalQueries
}

func NewAdminHandler(reconcile commands.ReconcileCommands, locks queries.LockQueries, journal queries.JournalQueries) *AdminHandler {
	return &AdminHandler{
		reconcile: reconcile,
		locks:     locks,
		journal:   journal,
	}
}

func (h *AdminHandler) ListLocks(c *gin.Context) {
	var filter queries.LockFilter
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}

	after, limit, ok := h.pageParams(c)
	if !ok {
		return
	}

	items, next, err := h.locks.ListLocks(c.Request.Context(), filter, after, limit)
	if err != nil {
		h.writeListError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromLockList(items, next))
}

func (h *AdminHandler) ListJournal(c *gin.Context) {
	var filter queries.JournalFilter
	if resolution := c.Query("resolution"); resolution != "" {
		filter.Resolution = &resolution
	}

	after, limit, ok := h.pageParams(c)
	if !ok {
		return
	}

	items, next, err := h.journal.ListEvents(c.Request.Context(), filter, after, limit)
	if err != nil {
		h.writeListError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromJournalList(items, next))
}

func (h *AdminHandler) ApproveLock(c *gin.Context) {
	lockID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid lock ID format",
		})
		return
	}

	result, err := h.reconcile.ManualApprove(c.Request.Context(), lockID)
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrLockNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Lock not found",
			})
		case errs.Is(err, errs.ErrAlreadyCompleted):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Lock already completed",
			})
		case errs.Is(err, errs.ErrReferenceNotFound):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Lock references a missing buyer or product",
			})
		case errs.Is(err, errs.ErrInsufficientCoins):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Buyer no longer has the coin balance for this discount",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromApproveResult(result))
}

func (h *AdminHandler) ExpireLock(c *gin.Context) {
	lockID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid lock ID format",
		})
		return
	}

	if err := h.reconcile.ForceExpire(c.Request.Context(), lockID); err != nil {
		switch {
		case errs.Is(err, errs.ErrLockNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Lock not found",
			})
		case errs.Is(err, errs.ErrAlreadyCompleted):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Lock already completed",
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

func (h *AdminHandler) pageParams(c *gin.Context) (*queries.Cursor, int, bool) {
	var after *queries.Cursor
	if raw := c.Query("after"); raw != "" {
		after = &queries.Cursor{After: raw}
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit parameter",
			})
			return nil, 0, false
		}
		limit = parsed
	}

	return after, limit, true
}

func (h *AdminHandler) writeListError(c *gin.Context, err error) {
	switch {
	case errs.Is(err, errs.ErrDomainValidation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid pagination cursor",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
