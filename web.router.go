package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupEditorRoutes injects the book list page endpoints.
func (h *EditorHandler) SetupEditorRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/", m.public(h.Page))
	router.POST("/books", m.public(h.Submit))
	router.POST("/books/:id/edit", m.public(h.BeginEdit))
	router.POST("/edit/cancel", m.public(h.CancelEdit))
	router.GET("/books/:id/delete", m.public(h.ConfirmDelete))
	router.POST("/books/:id/delete", m.public(h.Delete))
	router.GET("/books/:id/dialog", m.public(h.Dialog))
	router.POST("/books/:id/dialog", m.public(h.DialogAction))
	router.POST("/refresh", m.public(h.Refresh))
	router.NotFound = h.NotFound()
	return router
}
