package shift

import (
	"context"
	"time"
)

// ShiftRepository defines data access for shifts.
// Every state transition is a conditional write guarded by end_time IS NULL.
type ShiftRepository interface {
	// Create inserts an open shift. Returns ErrAlreadyActive if the trainer already has one.
	Create(ctx context.Context, shift Shift) (Shift, error)

	// GetOpenShift returns the trainer's open shift, or nil when there is none
	GetOpenShift(ctx context.Context, trainerID string) (*Shift, error)

	// CloseShift sets end_time on the shift only if it is still open.
	// Reports whether a row was updated.
	CloseShift(ctx context.Context, id string, endTime time.Time, flaggedForReview bool) (bool, error)

	// ListOpenShifts returns all open shifts except those of the excluded trainers
	ListOpenShifts(ctx context.Context, excludedTrainerIDs []string) ([]Shift, error)

	// AutoCloseShifts ends the given shifts that are still open and returns the rows it changed
	AutoCloseShifts(ctx context.Context, ids []string, endTime time.Time) ([]Shift, error)

	// ListByTrainer returns a trainer's shifts, newest first
	ListByTrainer(ctx context.Context, trainerID string, filter MyShiftFilter) ([]Shift, int64, error)
}

// FailedShiftSyncRepository stores the audit trail of expired actions.
type FailedShiftSyncRepository interface {
	Create(ctx context.Context, failed FailedShiftSync) (FailedShiftSync, error)
	List(ctx context.Context, filter FailedSyncFilter) ([]FailedShiftSync, int64, error)
	MarkResolved(ctx context.Context, id string) error
}
