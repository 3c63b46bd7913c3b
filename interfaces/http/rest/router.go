package rest

import (
	"net/http"
	"time"

	querybus "namethatpage-backend/application/queries/bus"
	"namethatpage-backend/interfaces/http/rest/handlers"
	"namethatpage-backend/interfaces/http/rest/middleware"
	"namethatpage-backend/pkg/errors"
	"namethatpage-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterConfig holds the HTTP surface settings
type RouterConfig struct {
	EnableCORS         bool
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	Debug              bool
}

// Router creates and configures the HTTP router
type Router struct {
	queryBus *querybus.QueryBus
	metrics  *observability.Collector
	config   RouterConfig
	logger   *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	queryBus *querybus.QueryBus,
	metrics *observability.Collector,
	config RouterConfig,
	logger *zap.Logger,
) *Router {
	return &Router{
		queryBus: queryBus,
		metrics:  metrics,
		config:   config,
		logger:   logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	errorHandler := errors.NewErrorHandler(rt.logger, rt.config.Debug)

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.config.EnableCORS {
		origins := rt.config.CORSAllowedOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if rt.config.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(rt.config.RequestTimeout))
		}

		articleHandler := handlers.NewArticleHandler(rt.queryBus, errorHandler, rt.logger)
		r.Route("/articles", func(r chi.Router) {
			r.Get("/random", articleHandler.GetRandomArticle)
			r.Get("/{title}", articleHandler.GetArticle)
		})

		graphHandler := handlers.NewGraphHandler(rt.queryBus, errorHandler, rt.logger)
		r.Post("/graphs", graphHandler.BuildGraph)
		r.Get("/graph", graphHandler.GetArticleGraph)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports ready once the query bus is wired; the service
// keeps no connections to check.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if rt.queryBus == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
