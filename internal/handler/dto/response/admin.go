package response

import (
	"upi-checkout/internal/usecase/commands"
	"upi-checkout/internal/usecase/queries"

	"github.com/google/uuid"
)

type LockListResponse struct {
	Locks      []*queries.LockListItem `json:"locks"`
	NextCursor *string                 `json:"next_cursor,omitempty"`
}

func FromLockList(items []*queries.LockListItem, next *queries.Cursor) *LockListResponse {
	resp := &LockListResponse{Locks: items}
	if resp.Locks == nil {
		resp.Locks = []*queries.LockListItem{}
	}
	if next != nil {
		resp.NextCursor = &next.After
	}
	return resp
}

type JournalListResponse struct {
	Events     []*queries.JournalListItem `json:"events"`
	NextCursor *string                    `json:"next_cursor,omitempty"`
}

func FromJournalList(items []*queries.JournalListItem, next *queries.Cursor) *JournalListResponse {
	resp := &JournalListResponse{Events: items}
	if resp.Events == nil {
		resp.Events = []*queries.JournalListItem{}
	}
	if next != nil {
		resp.NextCursor = &next.After
	}
	return resp
}

type ApproveResponse struct {
	LockID  uuid.UUID `json:"lock_id"`
	OrderID uuid.UUID `json:"order_id"`
}

func FromApproveResult(result *commands.ApproveResult) *ApproveResponse {
	return &ApproveResponse{LockID: result.LockID, OrderID: result.OrderID}
}
