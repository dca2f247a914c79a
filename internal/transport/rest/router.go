package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/careertodo/platform/internal/auth"
	"github.com/careertodo/platform/internal/leaderboard"
	"github.com/careertodo/platform/internal/reputation"
	"github.com/careertodo/platform/internal/roles"
	"github.com/careertodo/platform/internal/transport/middleware"
	"github.com/careertodo/platform/internal/transport/swagger"
	"github.com/careertodo/platform/internal/user"
	"github.com/careertodo/platform/internal/verification"
	"github.com/go-chi/chi"
)

type Handlers struct {
	Auth         *auth.Handler
	RBAC         *auth.RBACAuthorization
	User         *user.Handler
	Reputation   *reputation.Handler
	Leaderboard  *leaderboard.Handler
	Verification *verification.Handler
	Roles        *roles.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORSWithOrigins(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		// Public read surfaces: the UI renders leaderboards and role
		// capabilities without a session.
		if h.Leaderboard != nil {
			r.Get("/leaderboards", h.Leaderboard.GetLeaderboard)
		}
		if h.Roles != nil {
			r.Get("/roles", h.Roles.ListRoles)
			r.Get("/roles/{role}/actions", h.Roles.GetRoleActions)
		}

		if h.Auth != nil {
			r.Group(func(pr chi.Router) {
				pr.Use(h.Auth.AuthMiddleware)

				if h.User != nil {
					pr.Get("/users/me", h.User.GetCurrentUser)
				}

				if h.Reputation != nil {
					pr.Get("/reputation/{userID}", h.Reputation.GetScore)

					pr.Group(func(rr chi.Router) {
						rr.Use(h.RBAC.RequireSubmitRatings())
						rr.Post("/reputation/{userID}/ratings", h.Reputation.SubmitRating)
					})
				}

				if h.Verification != nil {
					pr.Route("/verifications", func(vr chi.Router) {
						vr.Get("/", h.Verification.ListRequests)
						vr.Get("/{id}", h.Verification.GetRequest)

						vr.Group(func(cr chi.Router) {
							cr.Use(h.RBAC.RequireRequestVerification())
							cr.Post("/", h.Verification.CreateRequest)
						})

						// Approve/reject authority over the subject is
						// attribute-based and enforced in the service.
						vr.Patch("/{id}/approve", h.Verification.ApproveRequest)
						vr.Patch("/{id}/reject", h.Verification.RejectRequest)
					})

					pr.Group(func(ar chi.Router) {
						ar.Use(middleware.RequirePermissions(auth.PermissionAdmin))
						ar.Post("/admin/verifications/sweep", h.Verification.SweepNow)
					})
				}
			})
		}
	})
}
