package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const openShiftIndex = "shifts_one_open_per_trainer"

const shiftColumns = `id, trainer_id, trainer_name, start_time, end_time,
	auto_ended, flagged_for_review, created_at, updated_at`

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepository{db: db}
}

func scanShift(row pgx.Row) (shift.Shift, error) {
	var s shift.Shift
	err := row.Scan(
		&s.ID, &s.TrainerID, &s.TrainerName, &s.StartTime, &s.EndTime,
		&s.AutoEnded, &s.FlaggedForReview, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func collectShifts(rows pgx.Rows) ([]shift.Shift, error) {
	defer rows.Close()

	var shifts []shift.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shifts: %w", err)
	}
	return shifts, nil
}

// Create implements shift.ShiftRepository.
func (r *shiftRepository) Create(ctx context.Context, newShift shift.Shift) (shift.Shift, error) {
	query := `
		INSERT INTO shifts (trainer_id, trainer_name, start_time)
		VALUES ($1, $2, $3)
		RETURNING ` + shiftColumns

	created, err := scanShift(r.db.QueryRow(ctx, query,
		newShift.TrainerID,
		newShift.TrainerName,
		newShift.StartTime,
	))
	if err != nil {
		if database.IsUniqueViolation(err, openShiftIndex) {
			return shift.Shift{}, shift.ErrAlreadyActive
		}
		return shift.Shift{}, fmt.Errorf("failed to create shift: %w", err)
	}

	return created, nil
}

// GetOpenShift implements shift.ShiftRepository.
func (r *shiftRepository) GetOpenShift(ctx context.Context, trainerID string) (*shift.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE trainer_id = $1
		  AND end_time IS NULL
		ORDER BY start_time DESC
		LIMIT 1
	`

	s, err := scanShift(r.db.QueryRow(ctx, query, trainerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open shift: %w", err)
	}

	return &s, nil
}

// CloseShift implements shift.ShiftRepository.
func (r *shiftRepository) CloseShift(ctx context.Context, id string, endTime time.Time, flaggedForReview bool) (bool, error) {
	query := `
		UPDATE shifts
		SET end_time = $2,
		    flagged_for_review = $3,
		    updated_at = NOW()
		WHERE id = $1
		  AND end_time IS NULL
	`

	tag, err := r.db.Exec(ctx, query, id, endTime, flaggedForReview)
	if err != nil {
		return false, fmt.Errorf("failed to close shift: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// ListOpenShifts implements shift.ShiftRepository.
func (r *shiftRepository) ListOpenShifts(ctx context.Context, excludedTrainerIDs []string) ([]shift.Shift, error) {
	if excludedTrainerIDs == nil {
		excludedTrainerIDs = []string{}
	}

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE end_time IS NULL
		  AND NOT (trainer_id = ANY($1))
		ORDER BY start_time ASC
	`

	rows, err := r.db.Query(ctx, query, excludedTrainerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list open shifts: %w", err)
	}

	return collectShifts(rows)
}

// AutoCloseShifts implements shift.ShiftRepository.
// The end_time IS NULL guard is re-applied here so a shift the trainer closed
// after ListOpenShifts is left untouched.
func (r *shiftRepository) AutoCloseShifts(ctx context.Context, ids []string, endTime time.Time) ([]shift.Shift, error) {
	if len(ids) == 0 {
		return nil, nil
	}


	query := `
		UPDATE shifts
		SET end_time = $2,
		    auto_ended = TRUE,
		    flagged_for_review = TRUE,
		    updated_at = NOW()
		WHERE id = ANY($1::text[]::uuid[])
		  AND end_time IS NULL
		RETURNING ` + shiftColumns

	rows, err := r.db.Query(ctx, query, ids, endTime)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-close shifts: %w", err)
	}

	return collectShifts(rows)
}

// ListByTrainer implements shift.ShiftRepository.
func (r *shiftRepository) ListByTrainer(ctx context.Context, trainerID string, filter shift.MyShiftFilter) ([]shift.Shift, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM shifts WHERE trainer_id = $1`, trainerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count shifts: %w", err)
	}

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE trainer_id = $1
		ORDER BY start_time DESC
		LIMIT $2 OFFSET $3
	`

	offset := (filter.Page - 1) * filter.Limit
	rows, err := r.db.Query(ctx, query, trainerID, filter.Limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shifts: %w", err)
	}

	shifts, err := collectShifts(rows)
	if err != nil {
		return nil, 0, err
	}
	return shifts, total, nil
}
