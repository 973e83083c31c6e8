package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func SetupRoutes(handler *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	for _, middleware := range SetupMiddleware(handler.limits.RequestTimeout) {
		r.Use(middleware)
	}

	// JSON content type
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// Health check endpoint
	r.Get("/health", handler.HealthCheck)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/palette", handler.GetPalette)

		// Rendering is CPU bound, so texture requests are throttled.
		r.With(RenderLimitMiddleware(handler.limits.MaxConcurrentRenders, handler.limits.RequestTimeout)).
			Get("/textures", handler.GetTexture)
	})

	return r
}
