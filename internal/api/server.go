// Package api provides the HTTP API server and handlers for the LinkCard application.
package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/linkcardapp/linkcard-server/internal/config"
	"github.com/linkcardapp/linkcard-server/internal/sse"
	"github.com/linkcardapp/linkcard-server/internal/store"
	"github.com/linkcardapp/linkcard-server/internal/store/sqlite"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      *store.Store
	profiles   *sqlite.Store
	services   *Services
	sseManager *sse.Manager
	sseHandler *sse.Handler
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger

	authRateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	cfg *config.Config,
	st *store.Store,
	profiles *sqlite.Store,
	services *Services,
	sseManager *sse.Manager,
	logger *slog.Logger,
) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:           st,
		profiles:        profiles,
		services:        services,
		sseManager:      sseManager,
		router:          router,
		logger:          logger,
		authRateLimiter: NewRateLimiter(20, time.Minute, 10),
	}

	s.setupMiddleware(cfg)

	humaConfig := huma.DefaultConfig("LinkCard API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerCardRoutes()
	s.registerProfileRoutes()
	s.registerPublicRoutes()
	s.registerTemplateRoutes()
	s.registerUploadRoutes()
	s.registerDomainRoutes()
	s.registerImportRoutes()
	s.registerAnalyticsRoutes()
	s.setupRawRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(cfg *config.Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	origins := []string{"*"}
	if cfg != nil && len(cfg.Server.CORSOrigins) > 0 {
		origins = cfg.Server.CORSOrigins
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Credential endpoints get a tighter per-IP limit than the rest of
	// the API.
	authLimited := RateLimitMiddleware(s.authRateLimiter, s.logger)
	s.router.Use(func(next http.Handler) http.Handler {
		limited := authLimited(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/v1/auth/") {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(authMiddleware(s.services.Auth))
}

// setupRawRoutes registers endpoints that bypass huma: binary responses
// (QR codes, uploaded media) and the SSE stream.
func (s *Server) setupRawRoutes() {
	if s.sseManager != nil {
		s.sseHandler = sse.NewHandler(s.sseManager, s.logger, resolveUserID)
		s.router.Get("/api/v1/events/stream", s.sseHandler.ServeHTTP)
	}

	s.router.Get("/uploads/{filename}", s.handleServeUpload)
	s.router.Get("/api/v1/cards/{handle}/qr.png", s.handleQRCode)
	s.router.Post("/api/v1/uploads", s.handleUpload)
}
