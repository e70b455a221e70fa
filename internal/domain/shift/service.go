package shift

import (
	"context"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/user"
)

// ShiftService defines the authoritative attendance transitions
type ShiftService interface {
	// SyncActions validates and applies a batch of clock actions for the session's trainer
	SyncActions(ctx context.Context, session user.Session, req SyncRequest) (SyncResponse, error)

	// GetActiveShift returns the caller's open shift, if any
	GetActiveShift(ctx context.Context, session user.Session) (*ShiftResponse, error)

	// GetMyShifts lists the caller's shift history
	GetMyShifts(ctx context.Context, session user.Session, filter MyShiftFilter) (ListShiftResponse, error)

	// ListFailedSyncs lists expired-action audit rows (admin)
	ListFailedSyncs(ctx context.Context, filter FailedSyncFilter) (ListFailedSyncResponse, error)

	// ResolveFailedSync marks an audit row as manually reconciled (admin)
	ResolveFailedSync(ctx context.Context, id string) error
}

// AutoClockoutService force-closes shifts left open past closing hour
type AutoClockoutService interface {
	Sweep(ctx context.Context) (SweepResult, error)
}
