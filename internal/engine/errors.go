package engine

import "errors"

// Rejection errors returned by Apply. These reject the operation without
// mutating state; the caller ACKs and moves on. Anything else is a
// processing failure worth retrying or halting on.
var (
	ErrAlreadyInitialized     = errors.New("registry already initialized")
	ErrNotInitialized         = errors.New("registry not initialized")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidRate            = errors.New("rate must be between 1 and 100")
	ErrInvalidDuration        = errors.New("duration must be positive")
	ErrUnsupportedAsset       = errors.New("asset not on supported list")
	ErrInsufficientCollateral = errors.New("collateral below 150% of principal")
	ErrInsufficientFunds      = errors.New("insufficient wallet balance")
	ErrUnauthorized           = errors.New("caller not authorized")
	ErrAlreadyRepaid          = errors.New("loan already repaid")
	ErrInvalidLoanIndex       = errors.New("no loan at index")
	ErrInvalidShard           = errors.New("shard id out of range")
	ErrPoolFull               = errors.New("shard pool at capacity")
)

// RejectReason maps a rejection error to a stable metrics label.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyInitialized):
		return "already_initialized"
	case errors.Is(err, ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInvalidRate):
		return "invalid_rate"
	case errors.Is(err, ErrInvalidDuration):
		return "invalid_duration"
	case errors.Is(err, ErrUnsupportedAsset):
		return "unsupported_asset"
	case errors.Is(err, ErrInsufficientCollateral):
		return "insufficient_collateral"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrAlreadyRepaid):
		return "already_repaid"
	case errors.Is(err, ErrInvalidLoanIndex):
		return "invalid_loan_index"
	case errors.Is(err, ErrInvalidShard):
		return "invalid_shard"
	case errors.Is(err, ErrPoolFull):
		return "pool_full"
	default:
		return "other"
	}
}

// IsRejection reports whether the error is a validation rejection rather
// than a processing failure.
func IsRejection(err error) bool {
	return RejectReason(err) != "other"
}
