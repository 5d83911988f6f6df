package app

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/wimotos/wimotos/internal/auth"
	"github.com/wimotos/wimotos/internal/clients"
	"github.com/wimotos/wimotos/internal/dashboard"
	"github.com/wimotos/wimotos/internal/finance"
	"github.com/wimotos/wimotos/internal/installments"
	"github.com/wimotos/wimotos/internal/products"
	"github.com/wimotos/wimotos/internal/promissories"
	"github.com/wimotos/wimotos/internal/sales"
	"github.com/wimotos/wimotos/internal/shared"
	"github.com/wimotos/wimotos/internal/users"
	"github.com/wimotos/wimotos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config
	Tokens *shared.TokenManager

	AuthHandler         *auth.Handler
	ClientsHandler      *clients.Handler
	ProductsHandler     *products.Handler
	SalesHandler        *sales.Handler
	PromissoriesHandler *promissories.Handler
	InstallmentsHandler *installments.Handler
	FinanceHandler      *finance.Handler
	UsersHandler        *users.Handler
	DashboardHandler    *dashboard.Handler
	JobHandler          *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		params.AuthHandler.MountRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(shared.RequireAuth(params.Tokens))

		params.ClientsHandler.MountRoutes(r)
		params.ProductsHandler.MountRoutes(r)
		params.SalesHandler.MountRoutes(r)
		params.PromissoriesHandler.MountRoutes(r)
		params.InstallmentsHandler.MountRoutes(r)
		params.FinanceHandler.MountRoutes(r)
		params.UsersHandler.MountRoutes(r)
		params.DashboardHandler.MountRoutes(r)

		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Config != nil && params.Config.UploadDir != "" {
		mountUploads(r, params.Config.UploadBasePath, params.Config.UploadDir)
	}

	return r
}

// mountUploads serves stored product images as static files.
func mountUploads(r chi.Router, basePath, dir string) {
	prefix := strings.TrimSuffix(basePath, "/")
	if prefix == "" {
		prefix = "/uploads"
	}
	fileServer := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(dir)))
	r.Handle(prefix+"/*", staticCacheHandler(fileServer))
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
