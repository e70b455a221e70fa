package shift

import (
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/validator"
)

// ========================================
// SYNC DTOs
// ========================================

type ActionRequest struct {
	ID              string     `json:"id,omitempty"`
	Type            ActionType `json:"type"`
	ClientTimestamp string     `json:"clientTimestamp"`
}

type SyncRequest struct {
	Actions []ActionRequest `json:"actions"`
}

func (r *SyncRequest) Validate() error {
	if len(r.Actions) == 0 {
		return ErrEmptyBatch
	}
	return nil
}

const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusExpired = "expired"
)

// ActionResult is the outcome of one action, positionally aligned with the request.
// The client id is deliberately not echoed back.
type ActionResult struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type SyncResponse struct {
	Results []ActionResult `json:"results"`
}

// ========================================
// SHIFT DTOs
// ========================================

type ShiftResponse struct {
	ID               string   `json:"id"`
	TrainerID        string   `json:"trainer_id"`
	TrainerName      string   `json:"trainer_name"`
	StartTime        string   `json:"start_time"`
	EndTime          *string  `json:"end_time"`
	Hours            *float64 `json:"hours,omitempty"`
	AutoEnded        bool     `json:"auto_ended"`
	FlaggedForReview bool     `json:"flagged_for_review"`
}

func NewShiftResponse(s Shift) ShiftResponse {
	resp := ShiftResponse{
		ID:               s.ID,
		TrainerID:        s.TrainerID,
		TrainerName:      s.TrainerName,
		StartTime:        s.StartTime.UTC().Format(time.RFC3339),
		AutoEnded:        s.AutoEnded,
		FlaggedForReview: s.FlaggedForReview,
	}
	if s.EndTime != nil {
		end := s.EndTime.UTC().Format(time.RFC3339)
		hours := s.Hours(time.Time{})
		resp.EndTime = &end
		resp.Hours = &hours
	}
	return resp
}

type ListShiftResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Shifts     []ShiftResponse `json:"shifts"`
}

type MyShiftFilter struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *MyShiftFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// FAILED SYNC DTOs
// ========================================

type FailedSyncFilter struct {
	Resolved *bool `json:"resolved,omitempty"`
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
}

func (f *FailedSyncFilter) Validate() error {
	pf := MyShiftFilter{Page: f.Page, Limit: f.Limit}
	err := pf.Validate()
	f.Page, f.Limit = pf.Page, pf.Limit
	return err
}

type FailedSyncResponse struct {
	ID              string `json:"id"`
	TrainerID       string `json:"trainer_id"`
	TrainerName     string `json:"trainer_name"`
	ActionType      string `json:"action_type"`
	ClientTimestamp string `json:"client_timestamp"`
	FailureReason   string `json:"failure_reason"`
	Resolved        bool   `json:"resolved"`
	CreatedAt       string `json:"created_at"`
}

type ListFailedSyncResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	FailedSyncs []FailedSyncResponse `json:"failed_syncs"`
}

// ========================================
// SWEEP DTOs
// ========================================

const (
	SweepActionSkipped        = "skipped"
	SweepActionNoActiveShifts = "no_active_shifts"
	SweepActionEndedShifts    = "ended_shifts"
)

// SweepResult is the summary returned to the external scheduler.
// Attempted minus Ended is the number of shifts closed concurrently by their trainer.
type SweepResult struct {
	Success   bool   `json:"success"`
	Action    string `json:"action"`
	Ended     int    `json:"ended"`
	Attempted *int   `json:"attempted,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
