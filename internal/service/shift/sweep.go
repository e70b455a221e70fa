package shift

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/sse"
)

type AutoClockoutServiceImpl struct {
	shiftRepo shift.ShiftRepository
	publisher Publisher
	policy    shift.Policy
	now       func() time.Time
}

// Sweep implements shift.AutoClockoutService.
// Running it again in the same window ends nothing, since the previous run left no open shifts.
func (s *AutoClockoutServiceImpl) Sweep(ctx context.Context) (shift.SweepResult, error) {
	now := s.now()
	weekday, hour, minute := s.policy.LocalClock(now)

	closingHour, ok := shift.ClosingHour(weekday)
	if !ok {
		return shift.SweepResult{
			Success: true,
			Action:  shift.SweepActionSkipped,
			Reason:  "no auto-clockout on saturday",
		}, nil
	}
	if hour < closingHour {
		return shift.SweepResult{
			Success: true,
			Action:  shift.SweepActionSkipped,
			Reason:  fmt.Sprintf("before closing hour %02d:00 (now %02d:%02d)", closingHour, hour, minute),
		}, nil
	}

	open, err := s.shiftRepo.ListOpenShifts(ctx, s.policy.ExcludedIDs())
	if err != nil {
		return shift.SweepResult{}, fmt.Errorf("failed to list open shifts: %w", err)
	}
	if len(open) == 0 {
		return shift.SweepResult{
			Success: true,
			Action:  shift.SweepActionNoActiveShifts,
		}, nil
	}

	ids := make([]string, 0, len(open))
	for _, sh := range open {
		ids = append(ids, sh.ID)
	}

	ended, err := s.shiftRepo.AutoCloseShifts(ctx, ids, now.UTC())
	if err != nil {
		return shift.SweepResult{}, fmt.Errorf("failed to auto-close shifts: %w", err)
	}

	attempted := len(ids)
	slog.Info("Auto-clockout ended shifts",
		"attempted", attempted,
		"ended", len(ended),
		"skipped_concurrently_closed", attempted-len(ended))

	if s.publisher != nil {
		for _, sh := range ended {
			s.publisher.Publish(sh.TrainerID, sse.Event{
				Event: EventShiftAutoEnded,
				Data:  shift.NewShiftResponse(sh),
			})
		}
	}

	return shift.SweepResult{
		Success:   true,
		Action:    shift.SweepActionEndedShifts,
		Ended:     len(ended),
		Attempted: &attempted,
	}, nil
}

func NewAutoClockoutService(shiftRepo shift.ShiftRepository, publisher Publisher, policy shift.Policy) shift.AutoClockoutService {
	return &AutoClockoutServiceImpl{
		shiftRepo: shiftRepo,
		publisher: publisher,
		policy:    policy,
		now:       time.Now,
	}
}
