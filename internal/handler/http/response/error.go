package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/auth"
	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
	"github.com/cmlabs-hris/academy-shift-go/internal/domain/user"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrMissingSession):
		Unauthorized(w, "Unauthorized")
	case errors.Is(err, auth.ErrInvalidSecret):
		Unauthorized(w, "Unauthorized")

	// User domain errors
	case errors.Is(err, user.ErrTrainerAccessRequired):
		Forbidden(w, "Trainer or admin role required")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Shift domain errors
	case errors.Is(err, shift.ErrEmptyBatch):
		BadRequest(w, "actions is required", nil)
	case errors.Is(err, shift.ErrFailedSyncNotFound):
		NotFound(w, "Failed shift sync not found")
	case errors.Is(err, shift.ErrFailedSyncResolved):
		Conflict(w, "Failed shift sync already resolved")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
