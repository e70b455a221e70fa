package shift

import (
	"encoding/json"
	"time"
)

// ActionType is the kind of attendance intent submitted by a trainer.
type ActionType string

const (
	ActionClockIn  ActionType = "clock_in"
	ActionClockOut ActionType = "clock_out"
)

func (t ActionType) IsValid() bool {
	return t == ActionClockIn || t == ActionClockOut
}

// UnmarshalJSON keeps a non-string type as its raw JSON text so that one
// malformed action is answered invalid_type instead of failing the batch.
func (t *ActionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = ActionType(data)
		return nil
	}
	*t = ActionType(s)
	return nil
}

// Shift is one trainer's attendance interval. EndTime nil means the shift is open.
type Shift struct {
	ID               string
	TrainerID        string
	TrainerName      string
	StartTime        time.Time
	EndTime          *time.Time
	AutoEnded        bool
	FlaggedForReview bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (s Shift) IsOpen() bool {
	return s.EndTime == nil
}

// Hours returns the shift length up to end, or up to EndTime when end is zero.
func (s Shift) Hours(end time.Time) float64 {
	if end.IsZero() && s.EndTime != nil {
		end = *s.EndTime
	}
	return end.Sub(s.StartTime).Hours()
}

const FailureReasonExpired = "expired"

// FailedShiftSync records an action rejected as stale so an administrator can reconcile it.
type FailedShiftSync struct {
	ID              string
	TrainerID       string
	TrainerName     string
	ActionType      string
	ClientTimestamp string
	FailureReason   string
	Resolved        bool
	CreatedAt       time.Time
}
