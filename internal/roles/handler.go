package roles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/careertodo/platform/internal/transport"
	"github.com/careertodo/platform/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
}

func NewHandler() *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
	}
}

type roleCapabilities struct {
	Role    ProjectRole `json:"role"`
	Actions []Action    `json:"actions"`
}

// ListRoles handles GET /api/v1/roles
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	out := make([]roleCapabilities, 0, len(AllRoles))
	for _, role := range AllRoles {
		out = append(out, roleCapabilities{Role: role, Actions: ActionsFor(role)})
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"roles": out})
}

// GetRoleActions handles GET /api/v1/roles/{role}/actions
func (h *Handler) GetRoleActions(w http.ResponseWriter, r *http.Request) {
	role := ProjectRole(chi.URLParam(r, "role"))

	actions, err := Describe(role)
	if err != nil {
		h.Logger.Warn("GetRoleActions: unknown role requested", "role", role)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, roleCapabilities{Role: role, Actions: actions})
}
