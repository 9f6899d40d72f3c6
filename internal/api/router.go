package api

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"portfolio-rag-backend/internal/config"
	"portfolio-rag-backend/internal/handlers"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	RAGHandler *handlers.RAGHandlers
	Config     *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)                 // Inject request ID into context
	r.Use(middleware.RealIP)                    // Use X-Forwarded-For or X-Real-IP
	r.Use(middleware.Logger)                    // Log requests
	r.Use(middleware.Recoverer)                 // Recover from panics, return 500
	r.Use(middleware.Timeout(60 * time.Second)) // Set a request timeout

	// --- CORS Configuration ---
	// RealIP must run before the rate limiter sees the request, otherwise all
	// traffic behind the proxy shares one allowance.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After", "X-Response-Time"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// --- Public Routes ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if deps.RAGHandler == nil {
		panic("RAGHandler dependency is nil in router setup")
	}

	r.Route("/v1/rag", func(r chi.Router) {
		r.Get("/status", deps.RAGHandler.HandleVectorStatus)
		r.Get("/limit", deps.RAGHandler.HandleRateLimitStatus)
		r.Post("/query", deps.RAGHandler.HandleQuery)
		r.Post("/generate", deps.RAGHandler.HandleGenerate)

		// --- Admin Routes (JWT Required) ---
		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(deps.Config.AdminJWTSecret))
			r.Post("/documents", deps.RAGHandler.HandleUpsertDocuments)
		})
	})

	log.Println("Router configured: /v1/rag routes mounted")
	return r
}
