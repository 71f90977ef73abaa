package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// maxBookBodySize caps the size of a create or update payload.
const maxBookBodySize = 1 << 16

// BookHandler serves the books REST resource of the reference backend.
type BookHandler struct {
	*Core
	storage BookStorage
}

// NewBookHandler provides a new instance of BookHandler.
func NewBookHandler(core *Core, storage BookStorage) *BookHandler {
	return &BookHandler{Core: core, storage: storage}
}

// ListBooks sends the whole collection as a json array.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	books, err := h.storage.GetAll(r.Context())
	if err != nil {
		h.logger.Error("failed to get all books", zap.String("request.id", requestID), zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, "failed to get all books")
		return
	}
	if err = WriteResponse(r.Context(), w, http.StatusOK, books); err != nil {
		h.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// CreateBook stores a new book and sends it back with its assigned id.
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	draft, err := decodeDraft(w, r)
	if err != nil {
		h.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		h.sendError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	now := h.clock.Now().UTC()
	book := BookRecord{
		ID:        h.ids.Generate(BookIDPrefix),
		Title:     draft.Title,
		Author:    draft.Author,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = h.storage.Add(r.Context(), book); err != nil {
		h.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, "failed to create the book")
		return
	}
	h.logger.Info("success to create book", zap.String("book.id", book.ID), zap.String("request.id", requestID))
	if err = WriteResponse(r.Context(), w, http.StatusCreated, book); err != nil {
		h.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// UpdateBook replaces title and author of an existing book.
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	book, ok := h.lookup(w, r, ps.ByName("id"))
	if !ok {
		return
	}
	draft, err := decodeDraft(w, r)
	if err != nil {
		h.logger.Error("failed to update book", zap.String("book.id", book.ID), zap.String("request.id", requestID), zap.Error(err))
		h.sendError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	book.Title = draft.Title
	book.Author = draft.Author
	book.UpdatedAt = h.clock.Now().UTC()
	err = h.storage.Update(r.Context(), book)
	if errors.Is(err, ErrBookNotFound) {
		h.sendError(w, r, http.StatusNotFound, "book does not exist")
		return
	}
	if err != nil {
		h.logger.Error("failed to update book", zap.String("book.id", book.ID), zap.String("request.id", requestID), zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, "failed to update the book")
		return
	}
	h.logger.Info("success to update book", zap.String("book.id", book.ID), zap.String("request.id", requestID))
	if err = WriteResponse(r.Context(), w, http.StatusOK, book); err != nil {
		h.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// DeleteBook removes an existing book and sends back what was removed.
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	book, ok := h.lookup(w, r, ps.ByName("id"))
	if !ok {
		return
	}
	err := h.storage.Delete(r.Context(), book.ID)
	if errors.Is(err, ErrBookNotFound) {
		h.sendError(w, r, http.StatusNotFound, "book does not exist")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete book", zap.String("book.id", book.ID), zap.String("request.id", requestID), zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, "failed to delete the book")
		return
	}
	h.logger.Info("success to delete book", zap.String("book.id", book.ID), zap.String("request.id", requestID))
	if err = WriteResponse(r.Context(), w, http.StatusOK, book); err != nil {
		h.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// lookup loads the book addressed by the request. A malformed id is
// reported like an unknown one. It answers the client itself on failure.
func (h *BookHandler) lookup(w http.ResponseWriter, r *http.Request, id string) (BookRecord, bool) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	if !h.ids.IsValid(id, BookIDPrefix) {
		h.logger.Error("book id provided is not valid", zap.String("book.id", id), zap.String("request.id", requestID))
		h.sendError(w, r, http.StatusNotFound, "book does not exist")
		return BookRecord{}, false
	}
	book, err := h.storage.GetOne(r.Context(), id)
	if errors.Is(err, ErrBookNotFound) {
		h.logger.Error("book does not exist", zap.String("book.id", id), zap.String("request.id", requestID))
		h.sendError(w, r, http.StatusNotFound, "book does not exist")
		return book, false
	}
	if err != nil {
		h.logger.Error("failed to check if the book exist", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, "failed to check if the book exist")
		return book, false
	}
	return book, true
}

func (h *BookHandler) sendError(w http.ResponseWriter, r *http.Request, status int, message string) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	errResp := NewAPIError(requestID, status, message, EmptyData)
	if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
		h.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// decodeDraft reads a {title, author} payload and checks both are present.
func decodeDraft(w http.ResponseWriter, r *http.Request) (Draft, error) {
	var draft Draft
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBookBodySize))
	if err := dec.Decode(&draft); err != nil {
		if errors.Is(err, io.EOF) {
			return draft, errors.New("empty request body")
		}
		return draft, fmt.Errorf("invalid request body: %w", err)
	}
	if !draft.Complete() {
		return draft, missingDraftField(draft)
	}
	return draft, nil
}
