package main

import (
	"context"
	"net/http"
	"time"

	"boardstack-api/internal/auth"
	"boardstack-api/internal/authz"
	"boardstack-api/internal/config"
	"boardstack-api/internal/http/handler"
	"boardstack-api/internal/http/middleware"
	"boardstack-api/internal/observability/logger"
	"boardstack-api/internal/ratelimit"
	"boardstack-api/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// RouterDeps bundles everything buildRouter needs.
type RouterDeps struct {
	Cfg         *config.Config
	Log         *logger.Logger
	Validator   *auth.HS256Validator
	Users       authz.UserRoleStore
	Access      middleware.AccessDeps
	RateLimiter ratelimit.Limiter
	Metrics     *telemetry.Metrics
	Pool        *pgxpool.Pool // readiness check

	WorkspaceHandler *handler.WorkspaceHandler
	SpaceHandler     *handler.SpaceHandler
	BoardHandler     *handler.BoardHandler
	TaskHandler      *handler.TaskHandler
	UserHandler      *handler.UserHandler
}

// buildRouter assembles the chi router: global middlewares, public probes,
// then the authenticated /v1 tree where every route carries its access guard.
func buildRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(telemetry.OTelMiddleware(deps.Cfg.OTELServiceName))
	r.Use(middleware.RequestLogging(deps.Log))
	r.Use(middleware.Recovery(deps.Log))
	if deps.Metrics != nil {
		r.Use(telemetry.MetricsMiddleware(deps.Metrics))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if deps.Pool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Pool.Ping(ctx); err != nil {
				deps.Log.Error(ctx, "readiness check failed: database unavailable", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"error","message":"database unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	rateLimit := middleware.RateLimit(deps.RateLimiter, deps.Cfg.RateLimitMax, deps.Cfg.RateLimitWindow())
	access := deps.Access

	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.Middleware(deps.Validator))
		r.Use(middleware.LoadUserRoles(deps.Users))

		r.Route("/workspaces/{workspaceId}", func(r chi.Router) {
			r.With(middleware.RequireWorkspaceAccess(access, "/:id").Middleware()).
				Get("/", deps.WorkspaceHandler.GetWorkspace)

			r.Route("/members", func(r chi.Router) {
				r.Use(middleware.RequireWorkspaceAccess(access, "/:id/members").Middleware())
				r.Get("/", deps.WorkspaceHandler.ListMembers)
				r.With(rateLimit).Post("/", deps.WorkspaceHandler.AddMember)
			})
		})

		r.Route("/spaces/{spaceId}", func(r chi.Router) {
			r.With(middleware.RequireSpaceAccess(access, "/:id").Middleware()).
				Get("/", deps.SpaceHandler.GetSpace)
			r.With(middleware.RequireSpaceAccess(access, "/:id/archive").Middleware(), rateLimit).
				Post("/archive", deps.SpaceHandler.ArchiveSpace)
		})

		r.Route("/boards/{boardId}", func(r chi.Router) {
			r.With(middleware.RequireBoardAccess(access, "/:id").Middleware()).
				Get("/", deps.BoardHandler.GetBoard)

			// Export is reachable for anyone allowed on the board, or for
			// the user named in the request when self-service exports are
			// routed through this endpoint.
			exportGuard := middleware.AnyOf(
				middleware.RequireResourceOwner(access, "userId").
					Resolving(access, authz.KindBoard, "boardId"),
				middleware.RequireBoardAccess(access, "/:id/export"),
			)
			r.With(exportGuard.Middleware()).Get("/export", deps.BoardHandler.ExportBoard)
		})

		r.Route("/tasks/{taskId}", func(r chi.Router) {
			r.With(middleware.RequireTaskAccess(access).Middleware()).
				Get("/", deps.TaskHandler.GetTask)
			r.With(middleware.RequireTaskEdit(access, "/:id").Middleware()).
				Patch("/", deps.TaskHandler.UpdateTask)
		})

		r.Route("/users/{userId}", func(r chi.Router) {
			r.With(middleware.RequireResourceOwner(access, "userId").Middleware(), rateLimit).
				Delete("/tokens", deps.UserHandler.RevokeTokens)
		})
	})

	return r
}
