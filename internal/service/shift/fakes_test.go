package shift

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/sse"
)

// memShiftRepo mirrors the Postgres repository, including the one-open-shift index.
type memShiftRepo struct {
	mu     sync.Mutex
	shifts []shift.Shift
	nextID int

	// failures injected per method name
	fail map[string]error
	// beforeClose runs between the read and the conditional write of CloseShift
	beforeClose func()
}

func newMemShiftRepo() *memShiftRepo {
	return &memShiftRepo{fail: map[string]error{}}
}

func (r *memShiftRepo) Create(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail["Create"]; err != nil {
		return shift.Shift{}, err
	}
	for _, existing := range r.shifts {
		if existing.TrainerID == s.TrainerID && existing.IsOpen() {
			return shift.Shift{}, shift.ErrAlreadyActive
		}
	}
	r.nextID++
	s.ID = fmt.Sprintf("shift-%d", r.nextID)
	s.CreatedAt = s.StartTime
	r.shifts = append(r.shifts, s)
	return s, nil
}

func (r *memShiftRepo) GetOpenShift(ctx context.Context, trainerID string) (*shift.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail["GetOpenShift"]; err != nil {
		return nil, err
	}
	for _, s := range r.shifts {
		if s.TrainerID == trainerID && s.IsOpen() {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memShiftRepo) CloseShift(ctx context.Context, id string, endTime time.Time, flagged bool) (bool, error) {
	if r.beforeClose != nil {
		r.beforeClose()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail["CloseShift"]; err != nil {
		return false, err
	}
	for i := range r.shifts {
		if r.shifts[i].ID == id && r.shifts[i].IsOpen() {
			end := endTime
			r.shifts[i].EndTime = &end
			r.shifts[i].FlaggedForReview = flagged
			return true, nil
		}
	}
	return false, nil
}

func (r *memShiftRepo) ListOpenShifts(ctx context.Context, excluded []string) ([]shift.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	skip := shift.NewTrainerSet(excluded...)
	var open []shift.Shift
	for _, s := range r.shifts {
		if _, ok := skip[s.TrainerID]; ok || !s.IsOpen() {
			continue
		}
		open = append(open, s)
	}
	return open, nil
}

func (r *memShiftRepo) AutoCloseShifts(ctx context.Context, ids []string, endTime time.Time) ([]shift.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := shift.NewTrainerSet(ids...)
	var ended []shift.Shift
	for i := range r.shifts {
		if _, ok := want[r.shifts[i].ID]; !ok || !r.shifts[i].IsOpen() {
			continue
		}
		end := endTime
		r.shifts[i].EndTime = &end
		r.shifts[i].AutoEnded = true
		r.shifts[i].FlaggedForReview = true
		ended = append(ended, r.shifts[i])
	}
	return ended, nil
}

func (r *memShiftRepo) ListByTrainer(ctx context.Context, trainerID string, filter shift.MyShiftFilter) ([]shift.Shift, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var mine []shift.Shift
	for _, s := range r.shifts {
		if s.TrainerID == trainerID {
			mine = append(mine, s)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].StartTime.After(mine[j].StartTime) })
	total := int64(len(mine))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(mine) {
		return nil, total, nil
	}
	end := start + filter.Limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], total, nil
}

func (r *memShiftRepo) openCount(trainerID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.shifts {
		if s.TrainerID == trainerID && s.IsOpen() {
			n++
		}
	}
	return n
}

// add seeds a shift directly
func (r *memShiftRepo) add(s shift.Shift) shift.Shift {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	if s.ID == "" {
		s.ID = fmt.Sprintf("shift-%d", r.nextID)
	}
	r.shifts = append(r.shifts, s)
	return s
}

func (r *memShiftRepo) get(id string) shift.Shift {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.shifts {
		if s.ID == id {
			return s
		}
	}
	return shift.Shift{}
}

type memFailedSyncRepo struct {
	mu   sync.Mutex
	rows []shift.FailedShiftSync
	err  error
}

func (r *memFailedSyncRepo) Create(ctx context.Context, f shift.FailedShiftSync) (shift.FailedShiftSync, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return shift.FailedShiftSync{}, r.err
	}
	f.ID = fmt.Sprintf("failed-%d", len(r.rows)+1)
	r.rows = append(r.rows, f)
	return f, nil
}

func (r *memFailedSyncRepo) List(ctx context.Context, filter shift.FailedSyncFilter) ([]shift.FailedShiftSync, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []shift.FailedShiftSync
	for _, f := range r.rows {
		if filter.Resolved != nil && f.Resolved != *filter.Resolved {
			continue
		}
		out = append(out, f)
	}
	return out, int64(len(out)), nil
}

func (r *memFailedSyncRepo) MarkResolved(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			if r.rows[i].Resolved {
				return shift.ErrFailedSyncResolved
			}
			r.rows[i].Resolved = true
			return nil
		}
	}
	return shift.ErrFailedSyncNotFound
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []sse.Event
}

func (p *recordingPublisher) Publish(topic string, event sse.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
}
