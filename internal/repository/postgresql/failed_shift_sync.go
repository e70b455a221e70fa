package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/database"
)

type failedShiftSyncRepository struct {
	db *database.DB
}

func NewFailedShiftSyncRepository(db *database.DB) shift.FailedShiftSyncRepository {
	return &failedShiftSyncRepository{db: db}
}

// Create implements shift.FailedShiftSyncRepository.
func (r *failedShiftSyncRepository) Create(ctx context.Context, failed shift.FailedShiftSync) (shift.FailedShiftSync, error) {
	query := `
		INSERT INTO failed_shift_syncs (trainer_id, trainer_name, action_type, client_timestamp, failure_reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, resolved, created_at
	`

	err := r.db.QueryRow(ctx, query,
		failed.TrainerID,
		failed.TrainerName,
		failed.ActionType,
		failed.ClientTimestamp,
		failed.FailureReason,
	).Scan(&failed.ID, &failed.Resolved, &failed.CreatedAt)
	if err != nil {
		return shift.FailedShiftSync{}, fmt.Errorf("failed to create failed shift sync: %w", err)
	}

	return failed, nil
}

// List implements shift.FailedShiftSyncRepository.
func (r *failedShiftSyncRepository) List(ctx context.Context, filter shift.FailedSyncFilter) ([]shift.FailedShiftSync, int64, error) {
	where := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if filter.Resolved != nil {
		where += fmt.Sprintf(" AND resolved = $%d", argIdx)
		args = append(args, *filter.Resolved)
		argIdx++
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM failed_shift_syncs WHERE " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count failed shift syncs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, trainer_id, trainer_name, action_type, client_timestamp,
		       failure_reason, resolved, created_at
		FROM failed_shift_syncs
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list failed shift syncs: %w", err)
	}
	defer rows.Close()

	var items []shift.FailedShiftSync
	for rows.Next() {
		var f shift.FailedShiftSync
		if err := rows.Scan(
			&f.ID, &f.TrainerID, &f.TrainerName, &f.ActionType, &f.ClientTimestamp,
			&f.FailureReason, &f.Resolved, &f.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan failed shift sync: %w", err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate failed shift syncs: %w", err)
	}

	return items, total, nil
}

// MarkResolved implements shift.FailedShiftSyncRepository.
func (r *failedShiftSyncRepository) MarkResolved(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE failed_shift_syncs SET resolved = TRUE WHERE id = $1 AND resolved = FALSE`, id)
	if err != nil {
		return fmt.Errorf("failed to resolve failed shift sync: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM failed_shift_syncs WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to look up failed shift sync: %w", err)
		}
		if !exists {
			return shift.ErrFailedSyncNotFound
		}
		return shift.ErrFailedSyncResolved
	}
	return nil
}
