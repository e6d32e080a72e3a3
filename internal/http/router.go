package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"vault-assistant/internal/handlers"
	"vault-assistant/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Assistant service.Assistant
	// DefaultModel is preselected on the index page.
	DefaultModel string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	initializeHandler := handlers.NewInitializeHandler(deps.Assistant)
	queryHandler := handlers.NewQueryHandler(deps.Assistant)

	r.Method(http.MethodGet, "/", handlers.NewHomeHandler(deps.Assistant, deps.DefaultModel))
	r.Method(http.MethodPost, "/initialize", initializeHandler)
	r.Method(http.MethodPost, "/query", queryHandler)
	r.Method(http.MethodGet, "/notes/*", handlers.NewNoteHandler(deps.Assistant))

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.Assistant))
		r.Method(http.MethodPost, "/initialize", initializeHandler)
		r.Method(http.MethodPost, "/query", queryHandler)
	})

	return r
}
