package shift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
	"github.com/cmlabs-hris/academy-shift-go/internal/domain/user"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/sse"
)

const (
	EventShiftSynced    = "shift-synced"
	EventShiftAutoEnded = "shift-auto-ended"
)

// Publisher fans shift events out to a trainer's open streams
type Publisher interface {
	Publish(topic string, event sse.Event)
}

type ShiftServiceImpl struct {
	shiftRepo      shift.ShiftRepository
	failedSyncRepo shift.FailedShiftSyncRepository
	publisher      Publisher
	policy         shift.Policy
	now            func() time.Time
}

// SyncActions implements shift.ShiftService.
// Actions are applied one after another; a rejection never aborts the rest of the batch.
func (s *ShiftServiceImpl) SyncActions(ctx context.Context, session user.Session, req shift.SyncRequest) (shift.SyncResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.SyncResponse{}, err
	}
	if !session.Role.CanClockShifts() {
		return shift.SyncResponse{}, user.ErrTrainerAccessRequired
	}

	actions := req.Actions
	if limit := s.policy.MaxBatchSize; limit > 0 && len(actions) > limit {
		actions = actions[:limit]
	}

	results := make([]shift.ActionResult, 0, len(actions))
	for _, action := range actions {
		results = append(results, s.processAction(ctx, session, action))
	}

	if s.publisher != nil {
		s.publisher.Publish(session.UserID, sse.Event{
			Event: EventShiftSynced,
			Data:  shift.SyncResponse{Results: results},
		})
	}

	return shift.SyncResponse{Results: results}, nil
}

func (s *ShiftServiceImpl) processAction(ctx context.Context, session user.Session, action shift.ActionRequest) shift.ActionResult {
	result := shift.ActionResult{Type: string(action.Type)}

	at, err := shift.ResolveTimestamp(action.ClientTimestamp, s.now(), s.policy)
	if errors.Is(err, shift.ErrActionExpired) {
		s.recordExpired(ctx, session, action)
		result.Status = shift.StatusExpired
		result.Error = shift.ReasonExpired
		return result
	}

	switch action.Type {
	case shift.ActionClockIn:
		err = s.clockIn(ctx, session, at)
	case shift.ActionClockOut:
		err = s.clockOut(ctx, session, at)
	default:
		err = shift.ErrInvalidType
	}

	if err != nil {
		reason := shift.ReasonCode(err)
		if reason == shift.ReasonDBError {
			slog.Error("Shift action failed",
				"trainer_id", session.UserID,
				"action_type", action.Type,
				"error", err)
		}
		result.Status = shift.StatusError
		result.Error = reason
		return result
	}

	result.Status = shift.StatusOK
	return result
}

func (s *ShiftServiceImpl) clockIn(ctx context.Context, session user.Session, at time.Time) error {
	if s.policy.IsSaturday(at) {
		return shift.ErrSaturday
	}

	open, err := s.shiftRepo.GetOpenShift(ctx, session.UserID)
	if err != nil {
		return fmt.Errorf("failed to check open shift: %w", err)
	}
	if open != nil {
		return shift.ErrAlreadyActive
	}

	_, err = s.shiftRepo.Create(ctx, shift.Shift{
		TrainerID:   session.UserID,
		TrainerName: session.Name,
		StartTime:   at.UTC(),
	})
	return err
}

func (s *ShiftServiceImpl) clockOut(ctx context.Context, session user.Session, at time.Time) error {
	open, err := s.shiftRepo.GetOpenShift(ctx, session.UserID)
	if err != nil {
		return fmt.Errorf("failed to check open shift: %w", err)
	}
	if open == nil {
		return shift.ErrNoActiveShift
	}

	flagged := s.policy.ShouldFlag(at.Sub(open.StartTime))

	closed, err := s.shiftRepo.CloseShift(ctx, open.ID, at.UTC(), flagged)
	if err != nil {
		return err
	}
	if !closed {
		// Closed by the sweep between the read and the write
		return shift.ErrNoActiveShift
	}
	return nil
}

// recordExpired writes the audit row for a stale action. A failed write is
// logged only; the action is still reported as expired.
func (s *ShiftServiceImpl) recordExpired(ctx context.Context, session user.Session, action shift.ActionRequest) {
	_, err := s.failedSyncRepo.Create(ctx, shift.FailedShiftSync{
		TrainerID:       session.UserID,
		TrainerName:     session.Name,
		ActionType:      string(action.Type),
		ClientTimestamp: action.ClientTimestamp,
		FailureReason:   shift.FailureReasonExpired,
	})
	if err != nil {
		slog.Error("Failed to record expired shift action",
			"trainer_id", session.UserID,
			"action_type", action.Type,
			"client_timestamp", action.ClientTimestamp,
			"error", err)
	}
}

// GetActiveShift implements shift.ShiftService.
func (s *ShiftServiceImpl) GetActiveShift(ctx context.Context, session user.Session) (*shift.ShiftResponse, error) {
	open, err := s.shiftRepo.GetOpenShift(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active shift: %w", err)
	}
	if open == nil {
		return nil, nil
	}
	resp := shift.NewShiftResponse(*open)
	return &resp, nil
}

// GetMyShifts implements shift.ShiftService.
func (s *ShiftServiceImpl) GetMyShifts(ctx context.Context, session user.Session, filter shift.MyShiftFilter) (shift.ListShiftResponse, error) {
	if err := filter.Validate(); err != nil {
		return shift.ListShiftResponse{}, err
	}

	shifts, total, err := s.shiftRepo.ListByTrainer(ctx, session.UserID, filter)
	if err != nil {
		return shift.ListShiftResponse{}, fmt.Errorf("failed to list shifts: %w", err)
	}

	items := make([]shift.ShiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		items = append(items, shift.NewShiftResponse(sh))
	}

	return shift.ListShiftResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
		Shifts:     items,
	}, nil
}

// ListFailedSyncs implements shift.ShiftService.
func (s *ShiftServiceImpl) ListFailedSyncs(ctx context.Context, filter shift.FailedSyncFilter) (shift.ListFailedSyncResponse, error) {
	if err := filter.Validate(); err != nil {
		return shift.ListFailedSyncResponse{}, err
	}

	failed, total, err := s.failedSyncRepo.List(ctx, filter)
	if err != nil {
		return shift.ListFailedSyncResponse{}, fmt.Errorf("failed to list failed shift syncs: %w", err)
	}

	items := make([]shift.FailedSyncResponse, 0, len(failed))
	for _, f := range failed {
		items = append(items, shift.FailedSyncResponse{
			ID:              f.ID,
			TrainerID:       f.TrainerID,
			TrainerName:     f.TrainerName,
			ActionType:      f.ActionType,
			ClientTimestamp: f.ClientTimestamp,
			FailureReason:   f.FailureReason,
			Resolved:        f.Resolved,
			CreatedAt:       f.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return shift.ListFailedSyncResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages(total, filter.Limit),
		FailedSyncs: items,
	}, nil
}

// ResolveFailedSync implements shift.ShiftService.
func (s *ShiftServiceImpl) ResolveFailedSync(ctx context.Context, id string) error {
	return s.failedSyncRepo.MarkResolved(ctx, id)
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

func NewShiftService(
	shiftRepo shift.ShiftRepository,
	failedSyncRepo shift.FailedShiftSyncRepository,
	publisher Publisher,
	policy shift.Policy,
) shift.ShiftService {
	return &ShiftServiceImpl{
		shiftRepo:      shiftRepo,
		failedSyncRepo: failedSyncRepo,
		publisher:      publisher,
		policy:         policy,
		now:            time.Now,
	}
}
