package leaderboard

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/careertodo/platform/internal/transport"
	"github.com/careertodo/platform/pkg/logger"
)

type ServiceAPI interface {
	GetLeaderboard(category Category, limit int) ([]RankedEntry, error)
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

// GetLeaderboard handles GET /api/v1/leaderboards?category=students&limit=50
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	category := Category(r.URL.Query().Get("category"))
	if category == "" {
		category = CategoryStudents
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			h.Logger.Error("GetLeaderboard: invalid limit", "limit", limitStr)
			h.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.Service.GetLeaderboard(category, limit)
	if err != nil {
		h.Logger.Error("GetLeaderboard: service error", "error", err, "category", category)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"entries":  entries,
	})
}
