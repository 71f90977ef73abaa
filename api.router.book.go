package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// SetupBookRoutes injects the books resource endpoints.
func (h *BookHandler) SetupBookRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.GET("/books", m.public(h.ListBooks))
	router.POST("/books", m.public(h.CreateBook))
	router.PUT("/books/:id", m.public(h.UpdateBook))
	router.DELETE("/books/:id", m.public(h.DeleteBook))
	router.NotFound = h.NotFound()
	return router
}

// WithCORS lets browser pages served from any origin call the books resource.
func WithCORS(h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "User-Agent"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         600,
	}).Handler(h)
}
