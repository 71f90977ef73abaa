package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// EditorHandler serves the book list page. Every browser session
// drives its own BookListView.
type EditorHandler struct {
	*Core
	sessions *Sessions
}

// NewEditorHandler provides a new instance of EditorHandler.
func NewEditorHandler(core *Core, sessions *Sessions) *EditorHandler {
	return &EditorHandler{Core: core, sessions: sessions}
}

// Page renders the list. A new session is mounted by fetching the
// collection. The `q` query parameter sets the search filter.
func (h *EditorHandler) Page(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	view := h.view(w, r)
	if r.URL.Query().Has("q") {
		view.Search(r.URL.Query().Get("q"))
	}
	state := view.Snapshot()
	h.render(w, r, http.StatusOK, "page", pageData{State: state, Books: state.Visible()})
}

// Submit creates a book or updates the one being edited.
func (h *EditorHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	view := h.view(w, r)
	draft := Draft{Title: r.PostFormValue(FieldTitle), Author: r.PostFormValue(FieldAuthor)}
	h.logResult(r, "submit", view.Submit(r.Context(), draft))
	h.backToList(w, r)
}

// BeginEdit switches the form to edit mode for the book in the path.
func (h *EditorHandler) BeginEdit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view := h.view(w, r)
	if book, ok := findBook(view.Snapshot().Books, ps.ByName("id")); ok {
		h.logResult(r, "edit", view.BeginEdit(book))
	}
	h.backToList(w, r)
}

// CancelEdit returns the form to create mode.
func (h *EditorHandler) CancelEdit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.view(w, r).CancelEdit()
	h.backToList(w, r)
}

// ConfirmDelete asks the user whether the book in the path must be removed.
func (h *EditorHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view := h.view(w, r)
	state := view.Snapshot()
	book, ok := findBook(state.Books, ps.ByName("id"))
	if !ok {
		h.backToList(w, r)
		return
	}
	h.render(w, r, http.StatusOK, "confirm", confirmData{State: state, Prompt: DeletePrompt, Book: book})
}

// Delete removes the book in the path once the user answered yes.
func (h *EditorHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view := h.view(w, r)
	confirmed := r.PostFormValue("confirm") == "yes"
	h.logResult(r, "delete", view.Delete(r.Context(), ps.ByName("id"), Answer(confirmed)))
	h.backToList(w, r)
}

// Dialog opens the edit dialog of the book in the path.
func (h *EditorHandler) Dialog(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view := h.view(w, r)
	state := view.Snapshot()
	book, ok := findBook(state.Books, ps.ByName("id"))
	if !ok {
		h.backToList(w, r)
		return
	}
	dialog := OpenEditDialog(book)
	h.render(w, r, http.StatusOK, "dialog", dialogData{State: state, Book: dialog.Book(), Draft: dialog.Draft()})
}

// DialogAction handles the dialog buttons. `action=close` dismisses it and
// `action=save` confirms the posted draft. A rejected or failed save keeps
// the dialog open with what the user typed.
func (h *EditorHandler) DialogAction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view := h.view(w, r)
	book, ok := findBook(view.Snapshot().Books, ps.ByName("id"))
	if !ok {
		h.backToList(w, r)
		return
	}

	dialog := OpenEditDialog(book)
	var result DialogResult
	if r.PostFormValue("action") != "save" {
		result = dialog.Dismiss()
	} else {
		_ = dialog.UpdateField(FieldTitle, r.PostFormValue(FieldTitle))
		_ = dialog.UpdateField(FieldAuthor, r.PostFormValue(FieldAuthor))
		result = dialog.Confirm()
	}

	err := view.ApplyDialog(r.Context(), book, result)
	h.logResult(r, "dialog", err)
	if IsKind(err, KindValidation) || IsKind(err, KindMutation) {
		h.render(w, r, http.StatusOK, "dialog", dialogData{State: view.Snapshot(), Book: book, Draft: dialog.Draft()})
		return
	}
	h.backToList(w, r)
}

// Refresh fetches the collection again.
func (h *EditorHandler) Refresh(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	view := h.view(w, r)
	h.logResult(r, "refresh", view.FetchAll(r.Context()))
	h.backToList(w, r)
}

// view returns the session view, mounting it when the session is new.
func (h *EditorHandler) view(w http.ResponseWriter, r *http.Request) *BookListView {
	view, created := h.sessions.Acquire(w, r)
	if created {
		h.logResult(r, "mount", view.FetchAll(r.Context()))
	}
	return view
}

func (h *EditorHandler) backToList(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *EditorHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	w.Header().Set("Content-Type", "text/html; charset=UTF-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := render(w, name, data); err != nil {
		h.logger.Error("failed to render page", zap.String("request.id", requestID), zap.String("page", name), zap.Error(err))
	}
}

// logResult logs failed view operations. The page shows them from the state.
func (h *EditorHandler) logResult(r *http.Request, op string, err error) {
	if err == nil {
		return
	}
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	if errors.Is(err, ErrBusy) {
		h.logger.Info("view operation ignored", zap.String("request.id", requestID), zap.String("view.op", op), zap.Error(err))
		return
	}
	h.logger.Warn("view operation failed",
		zap.String("request.id", requestID),
		zap.String("view.op", op),
		zap.String("view.message", UserMessage(err)),
		zap.Error(err),
	)
}

func findBook(books []Book, id string) (Book, bool) {
	for _, book := range books {
		if book.ID == id {
			return book, true
		}
	}
	return Book{}, false
}
