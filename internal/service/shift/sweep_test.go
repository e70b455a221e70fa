package shift

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSweepService(t *testing.T, repo shift.ShiftRepository, pub Publisher, now time.Time, excluded ...string) *AutoClockoutServiceImpl {
	t.Helper()
	policy := testPolicy(t)
	policy.ExcludedTrainerIDs = shift.NewTrainerSet(excluded...)
	svc := NewAutoClockoutService(repo, pub, policy).(*AutoClockoutServiceImpl)
	svc.now = func() time.Time { return now }
	return svc
}

func TestSweep_SkipsSaturday(t *testing.T) {
	repo := newMemShiftRepo()
	repo.add(shift.Shift{TrainerID: "t1", StartTime: time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)})

	// Saturday 22:00 in Israel
	svc := newSweepService(t, repo, nil, time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC))
	result, err := svc.Sweep(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, shift.SweepActionSkipped, result.Action)
	assert.NotEmpty(t, result.Reason)
	assert.Equal(t, 1, repo.openCount("t1"))
}

func TestSweep_FridayClosesAtThree(t *testing.T) {
	repo := newMemShiftRepo()
	repo.add(shift.Shift{TrainerID: "t1", StartTime: time.Date(2025, 3, 7, 6, 0, 0, 0, time.UTC)})

	// Friday 14:59 in Israel
	before := newSweepService(t, repo, nil, time.Date(2025, 3, 7, 12, 59, 0, 0, time.UTC))
	result, err := before.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, shift.SweepActionSkipped, result.Action)
	assert.Equal(t, "before closing hour 15:00 (now 14:59)", result.Reason)

	// Friday 15:00 in Israel
	at := newSweepService(t, repo, nil, time.Date(2025, 3, 7, 13, 0, 0, 0, time.UTC))
	result, err = at.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, shift.SweepActionEndedShifts, result.Action)
	assert.Equal(t, 1, result.Ended)
}

func TestSweep_EndsOpenShiftsAndIsIdempotent(t *testing.T) {
	repo := newMemShiftRepo()
	s1 := repo.add(shift.Shift{TrainerID: "t1", StartTime: time.Date(2025, 3, 2, 6, 0, 0, 0, time.UTC)})
	repo.add(shift.Shift{TrainerID: "t2", StartTime: time.Date(2025, 3, 2, 7, 0, 0, 0, time.UTC)})
	repo.add(shift.Shift{TrainerID: "self-managed", StartTime: time.Date(2025, 3, 2, 7, 0, 0, 0, time.UTC)})
	pub := &recordingPublisher{}

	// Sunday 20:30 in Israel
	now := time.Date(2025, 3, 2, 18, 30, 0, 0, time.UTC)
	svc := newSweepService(t, repo, pub, now, "self-managed")

	result, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, shift.SweepActionEndedShifts, result.Action)
	assert.Equal(t, 2, result.Ended)
	require.NotNil(t, result.Attempted)
	assert.Equal(t, 2, *result.Attempted)

	ended := repo.get(s1.ID)
	require.NotNil(t, ended.EndTime)
	assert.True(t, now.Equal(*ended.EndTime))
	assert.True(t, ended.AutoEnded)
	assert.True(t, ended.FlaggedForReview)
	assert.Equal(t, 1, repo.openCount("self-managed"))

	require.Len(t, pub.events, 2)
	assert.Equal(t, EventShiftAutoEnded, pub.events[0].Event)
	assert.ElementsMatch(t, []string{"t1", "t2"}, pub.topics)

	again, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, shift.SweepActionNoActiveShifts, again.Action)
	assert.Zero(t, again.Ended)
}

// racingRepo closes one shift right after the sweep has read it
type racingRepo struct {
	*memShiftRepo
	closeID string
}

func (r *racingRepo) ListOpenShifts(ctx context.Context, excluded []string) ([]shift.Shift, error) {
	open, err := r.memShiftRepo.ListOpenShifts(ctx, excluded)
	if err != nil {
		return nil, err
	}
	if _, err := r.memShiftRepo.CloseShift(ctx, r.closeID, time.Date(2025, 3, 2, 18, 0, 0, 0, time.UTC), false); err != nil {
		return nil, err
	}
	return open, nil
}

func TestSweep_ConcurrentClockOutIsNotOverwritten(t *testing.T) {
	mem := newMemShiftRepo()
	s1 := mem.add(shift.Shift{TrainerID: "t1", StartTime: time.Date(2025, 3, 2, 6, 0, 0, 0, time.UTC)})
	mem.add(shift.Shift{TrainerID: "t2", StartTime: time.Date(2025, 3, 2, 7, 0, 0, 0, time.UTC)})
	repo := &racingRepo{memShiftRepo: mem, closeID: s1.ID}

	svc := newSweepService(t, repo, nil, time.Date(2025, 3, 2, 18, 30, 0, 0, time.UTC))
	result, err := svc.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Ended)
	require.NotNil(t, result.Attempted)
	assert.Equal(t, 2, *result.Attempted)

	manual := mem.get(s1.ID)
	assert.False(t, manual.AutoEnded)
	assert.True(t, time.Date(2025, 3, 2, 18, 0, 0, 0, time.UTC).Equal(*manual.EndTime))
}

func TestSweep_NoOpenShifts(t *testing.T) {
	svc := newSweepService(t, newMemShiftRepo(), nil, time.Date(2025, 3, 3, 19, 0, 0, 0, time.UTC))
	result, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, shift.SweepActionNoActiveShifts, result.Action)
	assert.Nil(t, result.Attempted)
}
