package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ledgerlane/ledgerlane/internal/auth"
	"github.com/ledgerlane/ledgerlane/internal/bas"
	"github.com/ledgerlane/ledgerlane/internal/clients"
	"github.com/ledgerlane/ledgerlane/internal/estimates"
	"github.com/ledgerlane/ledgerlane/internal/invoices"
	"github.com/ledgerlane/ledgerlane/internal/observability"
	"github.com/ledgerlane/ledgerlane/internal/settings"
	"github.com/ledgerlane/ledgerlane/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthService      *auth.Service
	AuthHandler      *auth.Handler
	ClientsHandler   *clients.Handler
	InvoicesHandler  *invoices.Handler
	EstimatesHandler *estimates.Handler
	SettingsHandler  *settings.Handler
	BASHandler       *bas.Handler
	JobsHandler      *jobs.Handler
	Dashboard        *DashboardHandler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router for the API.
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

	r.Route("/auth", func(r chi.Router) {
		r.Use(LoginRateLimit())
		params.AuthHandler.MountRoutes(r)
	})

	// Everything below requires a valid session token.
	r.Group(func(r chi.Router) {
		r.Use(params.AuthService.RequireAuth)

		r.Get("/dashboard", params.Dashboard.Summary)
		r.Route("/clients", params.ClientsHandler.MountRoutes)
		r.Route("/invoices", params.InvoicesHandler.MountRoutes)
		r.Route("/estimates", params.EstimatesHandler.MountRoutes)
		r.Route("/settings", params.SettingsHandler.MountRoutes)
		r.Route("/reports/bas", params.BASHandler.MountRoutes)
		if params.JobsHandler != nil {
			r.Route("/admin/jobs", params.JobsHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
