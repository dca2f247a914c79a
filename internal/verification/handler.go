package verification

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/careertodo/platform/internal/auth"
	"github.com/careertodo/platform/internal/transport"
	"github.com/careertodo/platform/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, requester *auth.User, dto *CreateRequestDTO) (*RequestView, error)
	Approve(ctx context.Context, decider *auth.User, requestID int64) (*RequestView, error)
	Reject(ctx context.Context, decider *auth.User, requestID int64, dto *RejectRequestDTO) (*RequestView, error)
	Get(ctx context.Context, viewer *auth.User, requestID int64) (*RequestView, error)
	List(ctx context.Context, viewer *auth.User, filter ListFilter) ([]*RequestView, error)
	SweepExpired(ctx context.Context, batchSize int) (int64, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// CreateRequest handles POST /api/v1/verifications
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("CreateRequest: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.Create(r.Context(), user, &dto)
	if err != nil {
		h.Logger.Error("CreateRequest: service error", "error", err, "requester_id", user.ID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.Logger.Info("CreateRequest: request created",
		"request_id", view.ID,
		"requester_id", user.ID,
		"subject_id", view.SubjectID)

	h.WriteJSON(w, http.StatusCreated, view)
}

// ListRequests handles GET /api/v1/verifications
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("ListRequests: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := ListFilter{Limit: 20}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			filter.Offset = parsed
		}
	}
	if subjectStr := r.URL.Query().Get("subject_id"); subjectStr != "" {
		if parsed, err := strconv.ParseInt(subjectStr, 10, 64); err == nil {
			filter.SubjectID = &parsed
		}
	}
	if requesterStr := r.URL.Query().Get("requester_id"); requesterStr != "" {
		if parsed, err := strconv.ParseInt(requesterStr, 10, 64); err == nil {
			filter.RequesterID = &parsed
		}
	}

	views, err := h.Service.List(r.Context(), user, filter)
	if err != nil {
		h.Logger.Error("ListRequests: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{"requests": views})
}

// GetRequest handles GET /api/v1/verifications/{id}
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	user, requestID, ok := h.userAndRequestID(w, r, "GetRequest")
	if !ok {
		return
	}

	view, err := h.Service.Get(r.Context(), user, requestID)
	if err != nil {
		h.Logger.Error("GetRequest: service error", "error", err, "request_id", requestID, "user_id", user.ID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, view)
}

// ApproveRequest handles PATCH /api/v1/verifications/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	user, requestID, ok := h.userAndRequestID(w, r, "ApproveRequest")
	if !ok {
		return
	}

	view, err := h.Service.Approve(r.Context(), user, requestID)
	if err != nil {
		h.Logger.Error("ApproveRequest: service error", "error", err, "request_id", requestID, "decider_id", user.ID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.Logger.Info("ApproveRequest: request approved",
		"request_id", requestID,
		"decider_id", user.ID,
		"expires_at", view.ExpiresAt)

	h.WriteJSON(w, http.StatusOK, view)
}

// RejectRequest handles PATCH /api/v1/verifications/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	user, requestID, ok := h.userAndRequestID(w, r, "RejectRequest")
	if !ok {
		return
	}

	var dto RejectRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("RejectRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.Reject(r.Context(), user, requestID, &dto)
	if err != nil {
		h.Logger.Error("RejectRequest: service error", "error", err, "request_id", requestID, "decider_id", user.ID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.Logger.Info("RejectRequest: request rejected",
		"request_id", requestID,
		"decider_id", user.ID)

	h.WriteJSON(w, http.StatusOK, view)
}

// SweepNow handles POST /api/v1/admin/verifications/sweep. Runs one
// expiry sweep outside the periodic schedule.
func (h *Handler) SweepNow(w http.ResponseWriter, r *http.Request) {
	batch := 500
	if batchStr := r.URL.Query().Get("batch"); batchStr != "" {
		if parsed, err := strconv.Atoi(batchStr); err == nil && parsed > 0 {
			batch = parsed
		}
	}

	updated, err := h.Service.SweepExpired(r.Context(), batch)
	if err != nil {
		h.Logger.Error("SweepNow: service error", "error", err)
		h.HandleServiceError(w, r, err)
		return
	}

	h.Logger.Info("SweepNow: sweep complete", "expired", updated)

	h.WriteJSON(w, http.StatusOK, map[string]any{"expired": updated})
}

func (h *Handler) userAndRequestID(w http.ResponseWriter, r *http.Request, op string) (*auth.User, int64, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error(op + ": user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, 0, false
	}

	idStr := chi.URLParam(r, "id")
	requestID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error(op+": invalid request ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return nil, 0, false
	}

	return user, requestID, true
}
