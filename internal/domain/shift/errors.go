package shift

import "errors"

// Per-action rejections. ReasonCode maps them to the wire codes.
var (
	ErrActionExpired = errors.New("action is older than the freshness window")
	ErrSaturday      = errors.New("the academy is closed on saturday")
	ErrAlreadyActive = errors.New("trainer already has an active shift")
	ErrNoActiveShift = errors.New("trainer has no active shift")
	ErrInvalidType   = errors.New("invalid action type")
)

// Request level errors
var (
	ErrEmptyBatch         = errors.New("actions is required")
	ErrFailedSyncNotFound = errors.New("failed shift sync not found")
	ErrFailedSyncResolved = errors.New("failed shift sync already resolved")
)

const (
	ReasonExpired       = "expired"
	ReasonSaturday      = "saturday"
	ReasonAlreadyActive = "already_active"
	ReasonNoActiveShift = "no_active_shift"
	ReasonInvalidType   = "invalid_type"
	ReasonDBError       = "db_error"
)

// ReasonCode returns the wire reason for a per-action error.
// Anything that is not a known rejection is an infrastructure failure.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrActionExpired):
		return ReasonExpired
	case errors.Is(err, ErrSaturday):
		return ReasonSaturday
	case errors.Is(err, ErrAlreadyActive):
		return ReasonAlreadyActive
	case errors.Is(err, ErrNoActiveShift):
		return ReasonNoActiveShift
	case errors.Is(err, ErrInvalidType):
		return ReasonInvalidType
	default:
		return ReasonDBError
	}
}
