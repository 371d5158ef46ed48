package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vagaflow/vagaflow/internal/applications"
	"github.com/vagaflow/vagaflow/internal/auth"
	"github.com/vagaflow/vagaflow/internal/companies"
	"github.com/vagaflow/vagaflow/internal/observability"
	"github.com/vagaflow/vagaflow/internal/professions"
	"github.com/vagaflow/vagaflow/internal/rbac"
	"github.com/vagaflow/vagaflow/internal/shared"
	"github.com/vagaflow/vagaflow/internal/users"
	"github.com/vagaflow/vagaflow/internal/vacancies"
	"github.com/vagaflow/vagaflow/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	AuthMiddleware auth.Middleware

	AuthHandler         *auth.Handler
	UsersHandler        *users.Handler
	CompaniesHandler    *companies.Handler
	ProfessionsHandler  *professions.Handler
	VacanciesHandler    *vacancies.Handler
	ApplicationsHandler *applications.Handler
	PermissionsHandler  *rbac.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with Vagaflow defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	if params.JobHandler != nil {
		r.Route("/tasks", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireUser)

		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.CompaniesHandler != nil {
			r.Route("/companies", params.CompaniesHandler.MountRoutes)
		}
		if params.ProfessionsHandler != nil {
			r.Route("/professions", params.ProfessionsHandler.MountRoutes)
		}
		if params.VacanciesHandler != nil {
			r.Route("/jobs", params.VacanciesHandler.MountRoutes)
		}
		if params.ApplicationsHandler != nil {
			r.Route("/applications", params.ApplicationsHandler.MountRoutes)
		}
		if params.PermissionsHandler != nil {
			r.Route("/permissions", params.PermissionsHandler.MountRoutes)
		}
	})

	return r
}
