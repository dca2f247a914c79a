package reputation

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
	GetScore(ctx context.Context, viewer *auth.User, userID int64) (*ScoreView, error)
	SubmitRating(ctx context.Context, rater *auth.User, subjectID int64, dto *SubmitRatingDTO) (*ScoreView, error)
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

// GetScore handles GET /api/v1/reputation/{userID}
func (h *Handler) GetScore(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("GetScore: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userIDStr := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		h.Logger.Error("GetScore: invalid user ID", "user_id", userIDStr)
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	view, err := h.Service.GetScore(r.Context(), user, userID)
	if err != nil {
		h.Logger.Error("GetScore: service error", "error", err, "subject_id", userID, "viewer_id", user.ID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, view)
}

// SubmitRating handles POST /api/v1/reputation/{userID}/ratings
func (h *Handler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("SubmitRating: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	subjectIDStr := chi.URLParam(r, "userID")
	subjectID, err := strconv.ParseInt(subjectIDStr, 10, 64)
	if err != nil {
		h.Logger.Error("SubmitRating: invalid user ID", "user_id", subjectIDStr)
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var dto SubmitRatingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SubmitRating: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.SubmitRating(r.Context(), user, subjectID, &dto)
	if err != nil {
		h.Logger.Error("SubmitRating: service error", "error", err, "subject_id", subjectID, "rater_id", user.ID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.Logger.Info("SubmitRating: rating recorded",
		"subject_id", subjectID,
		"rater_id", user.ID,
		"rating_count", view.RatingCount)

	h.WriteJSON(w, http.StatusOK, view)
}
