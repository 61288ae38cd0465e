package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"itemtrack/internal/config"
)

// NewRouter creates a new HTTP router
func NewRouter(cfg *config.Config, db *gorm.DB) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(SecurityHeadersMiddleware(cfg))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Rate limiting
	limiter := NewRateLimiter(rate.Limit(10), 30)
	limiter.CleanupOldLimiters()
	r.Use(RateLimitMiddleware(limiter))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.JWTSecret, db))

		// Item routes
		r.Get("/items/", HandleListItems(db))
		r.Post("/items/", HandleCreateItem(db, cfg))
		r.Get("/items/{id}/", HandleGetItem(db))
		r.Put("/items/{id}/", HandleUpdateItem(db, cfg))
		r.Patch("/items/{id}/", HandleUpdateItem(db, cfg))
		r.Delete("/items/{id}/", HandleDeleteItem(db))

		// OAuth token read side
		r.Get("/oauth-token/", HandleGetOAuthToken(db))
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
