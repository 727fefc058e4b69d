package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/authz"
	"github.com/inkwell-cms/inkwell/internal/categories"
	"github.com/inkwell-cms/inkwell/internal/comments"
	"github.com/inkwell-cms/inkwell/internal/media"
	"github.com/inkwell-cms/inkwell/internal/observability"
	"github.com/inkwell-cms/inkwell/internal/posts"
	"github.com/inkwell-cms/inkwell/internal/stats"
	"github.com/inkwell-cms/inkwell/internal/users"
	"github.com/inkwell-cms/inkwell/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthService *auth.Service
	Authz       authz.Middleware

	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	CategoriesHandler *categories.Handler
	PostsHandler      *posts.Handler
	CommentsHandler   *comments.Handler
	MediaHandler      *media.Handler
	StatsHandler      *stats.Handler
	JobHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with the full API surface. Every
// protected group composes the authentication gate with the pipeline
// gates in order: status, role, permission, ownership.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	admin := func(r chi.Router) chi.Router {
		return r.With(params.Authz.Authorize(auth.RoleAdmin))
	}
	contributors := func(r chi.Router) chi.Router {
		return r.With(params.Authz.Authorize(auth.RoleAdmin, auth.RoleAuthor))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(LoginRateLimit())
				params.AuthHandler.MountPublicRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(params.AuthService.Middleware)
				params.AuthHandler.MountProtectedRoutes(r)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			params.CategoriesHandler.MountPublicRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(params.AuthService.Middleware)
				r.Use(params.Authz.Authorize(auth.RoleAdmin))
				params.CategoriesHandler.MountAdminRoutes(r)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			params.PostsHandler.MountPublicRoutes(r)
			params.CommentsHandler.MountPostRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(params.AuthService.Middleware)
				contributors(r).
					With(params.Authz.CheckPermission(authz.PermCreatePost)).
					Group(params.PostsHandler.MountCreateRoute)
				r.With(params.Authz.Authorize(auth.RoleAdmin, auth.RoleAuthor)).
					With(params.Authz.CheckOwnership("post", "id")).
					Group(params.PostsHandler.MountOwnerRoutes)
				// Commenting is open to every approved account; only the
				// status and role gates apply here.
				r.With(params.Authz.Authorize(auth.RoleAdmin, auth.RoleAuthor, auth.RoleViewer)).
					Group(params.CommentsHandler.MountCreateRoute)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Use(params.AuthService.Middleware)
			admin(r).
				With(params.Authz.CheckPermission(authz.PermManageComments)).
				Group(params.CommentsHandler.MountModerationRoutes)
			r.With(params.Authz.Authorize(auth.RoleAdmin, auth.RoleAuthor, auth.RoleViewer)).
				With(params.Authz.CheckOwnership("comment", "id")).
				Group(params.CommentsHandler.MountOwnerRoutes)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(params.AuthService.Middleware)
			params.UsersHandler.MountBookmarkRoutes(
				r.With(params.Authz.Authorize(auth.RoleAdmin, auth.RoleAuthor, auth.RoleViewer)))
			admin(r).
				With(params.Authz.CheckPermission(authz.PermManageUsers)).
				Group(params.UsersHandler.MountAdminRoutes)
		})

		r.Route("/media", func(r chi.Router) {
			r.Use(params.AuthService.Middleware)
			contributors(r).Group(params.MediaHandler.MountRoutes)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Use(params.AuthService.Middleware)
			admin(r).
				With(params.Authz.CheckPermission(authz.PermViewAnalytics)).
				Group(params.StatsHandler.MountRoutes)
		})

		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.AuthService.Middleware)
				admin(r).Group(params.JobHandler.MountRoutes)
			})
		}
	})

	if params.Config != nil && params.Config.UploadDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(params.Config.UploadDir)))
		r.Handle("/uploads/*", uploadsCacheHandler(fileServer))
	}

	return r
}

// uploadsCacheHandler wraps the uploads file server with a Cache-Control
// header so browsers keep images for an hour.
func uploadsCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
