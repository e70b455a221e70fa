package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
	"github.com/cmlabs-hris/academy-shift-go/internal/handler/http/response"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/sse"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// maxSyncBodyBytes bounds the sync request body; ten actions fit comfortably.
const maxSyncBodyBytes = 64 << 10

type ShiftHandler interface {
	Sync(w http.ResponseWriter, r *http.Request)
	Active(w http.ResponseWriter, r *http.Request)
	My(w http.ResponseWriter, r *http.Request)
	ListFailedSyncs(w http.ResponseWriter, r *http.Request)
	ResolveFailedSync(w http.ResponseWriter, r *http.Request)
	GetStreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

// Subscriber opens a live feed of a trainer's shift events
type Subscriber interface {
	Subscribe(topic string) (<-chan sse.Event, func())
}

type shiftHandlerImpl struct {
	shiftService shift.ShiftService
	jwtService   jwt.Service
	subscriber   Subscriber
}

func NewShiftHandler(shiftService shift.ShiftService, jwtService jwt.Service, subscriber Subscriber) ShiftHandler {
	return &shiftHandlerImpl{
		shiftService: shiftService,
		jwtService:   jwtService,
		subscriber:   subscriber,
	}
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// Sync applies a batch of queued clock actions. The body is
// {"results": [...]} so the client can match outcomes by position.
func (h *shiftHandlerImpl) Sync(w http.ResponseWriter, r *http.Request) {
	session, err := jwt.SessionFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req shift.SyncRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxSyncBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode shift sync body", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.shiftService.SyncActions(r.Context(), session, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Active returns the caller's open shift, or null
func (h *shiftHandlerImpl) Active(w http.ResponseWriter, r *http.Request) {
	session, err := jwt.SessionFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	active, err := h.shiftService.GetActiveShift(r.Context(), session)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, active)
}

// My lists the caller's shift history
func (h *shiftHandlerImpl) My(w http.ResponseWriter, r *http.Request) {
	session, err := jwt.SessionFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := shift.MyShiftFilter{
		Page:  getIntQueryParam(r, "page", 1),
		Limit: getIntQueryParam(r, "limit", 20),
	}

	result, err := h.shiftService.GetMyShifts(r.Context(), session, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Shifts, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// ListFailedSyncs lists expired actions awaiting manual reconciliation
func (h *shiftHandlerImpl) ListFailedSyncs(w http.ResponseWriter, r *http.Request) {
	filter := shift.FailedSyncFilter{
		Page:  getIntQueryParam(r, "page", 1),
		Limit: getIntQueryParam(r, "limit", 20),
	}

	if raw := r.URL.Query().Get("resolved"); raw != "" {
		resolved, ok := validator.ParseBool(raw)
		if !ok {
			response.BadRequest(w, "resolved must be true or false", nil)
			return
		}
		filter.Resolved = &resolved
	}

	result, err := h.shiftService.ListFailedSyncs(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.FailedSyncs, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// ResolveFailedSync marks an expired action as reconciled
func (h *shiftHandlerImpl) ResolveFailedSync(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if validator.IsEmpty(id) || !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid failed sync ID", nil)
		return
	}

	if err := h.shiftService.ResolveFailedSync(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Failed shift sync resolved", nil)
}

type streamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// GetStreamToken generates a short-lived token for the event stream
func (h *shiftHandlerImpl) GetStreamToken(w http.ResponseWriter, r *http.Request) {
	session, err := jwt.SessionFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(session.UserID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, streamTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream pushes the caller's shift events over SSE
func (h *shiftHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter (SSE doesn't support custom headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	userID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.subscriber.Subscribe(userID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
