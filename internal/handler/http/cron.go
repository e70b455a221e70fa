package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
	"github.com/cmlabs-hris/academy-shift-go/internal/handler/http/response"
)

type CronHandler interface {
	AutoClockout(w http.ResponseWriter, r *http.Request)
}

type cronHandlerImpl struct {
	autoClockoutService shift.AutoClockoutService
}

func NewCronHandler(autoClockoutService shift.AutoClockoutService) CronHandler {
	return &cronHandlerImpl{
		autoClockoutService: autoClockoutService,
	}
}

type cronErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// AutoClockout runs the sweep for the external scheduler and reports what it did
func (h *cronHandlerImpl) AutoClockout(w http.ResponseWriter, r *http.Request) {
	result, err := h.autoClockoutService.Sweep(r.Context())
	if err != nil {
		slog.Error("Auto-clockout sweep failed", "error", err)
		response.JSON(w, http.StatusInternalServerError, cronErrorResponse{
			Success: false,
			Error:   "auto-clockout failed",
		})
		return
	}

	response.JSON(w, http.StatusOK, result)
}
