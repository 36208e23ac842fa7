package errs

import "errors"

// Domain-specific sentinel errors for CQRS usecase layers
var (
	// Allocation / lock lifecycle errors
	ErrAmountCollision = errors.New("payable amount collision")
	ErrLockNotFound    = errors.New("payment lock not found")
	ErrLockForbidden   = errors.New("payment lock belongs to another buyer")

	// Reconciliation errors
	ErrAlreadyCompleted  = errors.New("payment lock already completed")
	ErrReferenceNotFound = errors.New("referenced buyer or product missing")
	ErrInsufficientCoins = errors.New("insufficient coin balance for discount")

	// Collaborator lookup errors
	ErrBuyerNotFound   = errors.New("buyer not found")
	ErrProductNotFound = errors.New("product not found")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
