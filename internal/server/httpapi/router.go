// Package httpapi exposes the signup and login flows as a JSON HTTP API for
// a browser front end.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configure the middleware stack around the handlers.
type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter registers the API routes of h.
func NewRouter(h *Handler, o RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(h.accessLog)
	r.Use(middleware.Recoverer)
	if o.RequestTimeout > 0 {
		r.Use(middleware.Timeout(o.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.handleListUsers)
		r.Post("/", h.handleSignup)
		r.Delete("/", h.handleClearUsers)
		r.Put("/{index}", h.handleEditUser)
		r.Delete("/{index}", h.handleDeleteUser)
	})

	r.Route("/login", func(r chi.Router) {
		r.Get("/fields", h.handleLoginFields)
		r.Post("/", h.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.bearerAuth)
		r.Get("/me", h.handleMe)
	})

	return r
}
