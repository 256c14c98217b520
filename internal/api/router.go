// Package api assembles the HTTP surface: routing, middleware order and
// the wiring between handlers and domain services. Construction is
// side-effect free; callers own the database pool and stores.
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/schoolcms/server/internal/api/handlers"
	"github.com/schoolcms/server/internal/api/middleware"
	"github.com/schoolcms/server/internal/auth"
	"github.com/schoolcms/server/internal/config"
	"github.com/schoolcms/server/internal/domain/content"
	"github.com/schoolcms/server/internal/domain/users"
	"github.com/schoolcms/server/internal/email"
	"github.com/schoolcms/server/internal/metrics"
	"github.com/schoolcms/server/internal/uploads"
)

// Dependencies carries everything the router needs. Nothing is
// constructed inside NewRouter, so tests can swap in stubs.
type Dependencies struct {
	Content []*content.Service
	Users   *users.Service
	Tokens  *auth.JWTManager
	Uploads *uploads.Store
	Email   *email.Service
	Pool    *pgxpool.Pool

	Version   string
	GitCommit string
	BuildDate string
}

// NewRouter builds the full handler chain. Outer middleware order,
// outermost first: correlation, logging, metrics, recovery, CORS.
// Rate limiting is applied per route so each tier can differ.
func NewRouter(cfg config.Config, logger zerolog.Logger, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(deps.Tokens)
	jsonBody := middleware.JSONRequestSize()

	// One limiter store shared by every route; the tier marker must wrap
	// the limiter so the tier is in the context when it runs.
	limit := middleware.RateLimit(cfg.RateLimit)
	adminTier := middleware.WithRateLimitTierHandler(middleware.TierAdmin)
	loginTier := middleware.WithRateLimitTierHandler(middleware.TierLogin)

	public := func(h http.Handler) http.Handler {
		return limit(h)
	}
	admin := func(h http.Handler) http.Handler {
		return adminTier(limit(requireAuth(h)))
	}
	adminJSON := func(h http.Handler) http.Handler {
		return admin(jsonBody(h))
	}

	healthChecker := handlers.NewHealthChecker(deps.Pool, deps.Version, deps.GitCommit)
	mux.Handle("/api/health", methodMux(map[string]http.Handler{
		http.MethodGet: healthChecker.Health(),
	}))
	mux.Handle("/api/version", VersionHandler(deps.Version, deps.GitCommit, deps.BuildDate))

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens, cfg.Environment)
	mux.Handle("/api/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: loginTier(limit(jsonBody(http.HandlerFunc(authHandler.Login)))),
	}))

	for _, service := range deps.Content {
		handler := handlers.NewContentHandler(service, cfg.Environment)
		path := "/api/" + service.Descriptor().Path

		mux.Handle(path, methodMux(map[string]http.Handler{
			http.MethodGet:  public(http.HandlerFunc(handler.List)),
			http.MethodPost: adminJSON(http.HandlerFunc(handler.Create)),
		}))
		mux.Handle(path+"/{id}", methodMux(map[string]http.Handler{
			http.MethodGet:    public(http.HandlerFunc(handler.Get)),
			http.MethodPut:    adminJSON(http.HandlerFunc(handler.Update)),
			http.MethodDelete: admin(http.HandlerFunc(handler.Delete)),
		}))
	}

	uploadHandler := handlers.NewUploadHandler(deps.Uploads, cfg.Uploads.MaxBytes, cfg.Environment)
	mux.Handle("/api/upload/image", methodMux(map[string]http.Handler{
		http.MethodPost: admin(http.HandlerFunc(uploadHandler.Image)),
	}))

	if deps.Email != nil {
		contactHandler := handlers.NewContactHandler(deps.Email, cfg.Environment)
		mux.Handle("/api/contact", methodMux(map[string]http.Handler{
			http.MethodPost: public(jsonBody(http.HandlerFunc(contactHandler.Submit))),
		}))
	}

	mux.Handle("/uploads/", deps.Uploads.Handler())
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = middleware.Recovery()(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
