package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCore(role string, ids UIDHandler) *Core {
	clock := NewMockClocker()
	return NewCore(zap.NewNop(), &Config{Role: role}, clock, ids, &Statistics{started: clock.Now()})
}

func newTestBookHandler(storage BookStorage) *BookHandler {
	return NewBookHandler(newTestCore(RoleBackend, NewMockUIDHandler("42", true)), storage)
}

func decodeBody(t *testing.T, res *http.Response, v interface{}) {
	t.Helper()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v), string(data))
}

// TestStatusHandler ensures the status endpoint answers per role.
func TestStatusHandler(t *testing.T) {
	for role, message := range statusMessages {
		t.Run(role, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/status", nil)
			w := httptest.NewRecorder()
			newTestCore(role, nil).Status(w, req, httprouter.Params{})
			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, http.StatusOK, res.StatusCode)
			assert.Equal(t, "application/json; charset=UTF-8", res.Header.Get("Content-Type"))

			var resp StatusResponse
			decodeBody(t, res, &resp)
			assert.Equal(t, "up & running since 0 mins", resp.Status)
			assert.Equal(t, message, resp.Message)
		})
	}
}

// TestCreateBookHandler ensures the backend can create a book.
func TestCreateBookHandler(t *testing.T) {
	t.Run("should pass: valid payload", func(t *testing.T) {
		storage := NewMemoryBookStorage(zap.NewNop())
		h := newTestBookHandler(storage)
		payload := `{"title":"Emma","author":"Jane Austen"}`
		req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(payload))
		w := httptest.NewRecorder()
		h.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusCreated, res.StatusCode)

		var book BookRecord
		decodeBody(t, res, &book)
		assert.Equal(t, "b:42", book.ID)
		assert.Equal(t, "Emma", book.Title)
		assert.Equal(t, "Jane Austen", book.Author)
		assert.Equal(t, NewMockClocker().Now(), book.CreatedAt)

		stored, err := storage.GetOne(context.Background(), "b:42")
		require.NoError(t, err)
		assert.Equal(t, book, stored)
	})

	testCases := []struct {
		name    string
		payload string
		message string
	}{
		{"should fail: empty body", ``, "empty request body"},
		{"should fail: invalid json", `{"title":`, "invalid request body"},
		{"should fail: missing title", `{"author":"Jane Austen"}`, "title is required"},
		{"should fail: empty author", `{"title":"Emma","author":""}`, "author is required"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			storage := &MockBookStorage{
				AddFunc: func(ctx context.Context, book BookRecord) error {
					t.Fatal("storage must not be called")
					return nil
				},
			}
			req := httptest.NewRequest(http.MethodPost, "/books", bytes.NewBufferString(tc.payload))
			w := httptest.NewRecorder()
			newTestBookHandler(storage).CreateBook(w, req, httprouter.Params{})
			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			var apiErr APIError
			decodeBody(t, res, &apiErr)
			assert.Contains(t, apiErr.Message, tc.message)
		})
	}

	t.Run("should fail: storage error", func(t *testing.T) {
		storage := &MockBookStorage{
			AddFunc: func(ctx context.Context, book BookRecord) error {
				return errors.New("disk full")
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"title":"Emma","author":"Jane Austen"}`))
		w := httptest.NewRecorder()
		newTestBookHandler(storage).CreateBook(w, req, httprouter.Params{})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

// TestListBooksHandler ensures the collection is sent as a json array.
func TestListBooksHandler(t *testing.T) {
	t.Run("should pass: empty collection is an empty array", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		w := httptest.NewRecorder()
		newTestBookHandler(NewMemoryBookStorage(zap.NewNop())).ListBooks(w, req, httprouter.Params{})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]\n", w.Body.String())
	})

	t.Run("should pass: oldest first", func(t *testing.T) {
		storage := NewMemoryBookStorage(zap.NewNop())
		base := NewMockClocker().Now()
		require.NoError(t, storage.Add(context.Background(), BookRecord{ID: "b:2", Title: "Emma", Author: "Jane Austen", CreatedAt: base.Add(time.Minute)}))
		require.NoError(t, storage.Add(context.Background(), BookRecord{ID: "b:1", Title: "Dune", Author: "Frank Herbert", CreatedAt: base}))

		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		w := httptest.NewRecorder()
		newTestBookHandler(storage).ListBooks(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		var books []Book
		decodeBody(t, res, &books)
		assert.Equal(t, []Book{
			{ID: "b:1", Title: "Dune", Author: "Frank Herbert"},
			{ID: "b:2", Title: "Emma", Author: "Jane Austen"},
		}, books)
	})

	t.Run("should fail: storage error", func(t *testing.T) {
		storage := &MockBookStorage{
			GetAllFunc: func(ctx context.Context) ([]BookRecord, error) {
				return nil, errors.New("connection lost")
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		w := httptest.NewRecorder()
		newTestBookHandler(storage).ListBooks(w, req, httprouter.Params{})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

// TestUpdateBookHandler ensures an existing book can be updated.
func TestUpdateBookHandler(t *testing.T) {
	created := NewMockClocker().Now().Add(-time.Hour)
	seed := func() BookStorage {
		storage := NewMemoryBookStorage(zap.NewNop())
		_ = storage.Add(context.Background(), BookRecord{ID: "b:1", Title: "Dune", Author: "Frank Herbert", CreatedAt: created, UpdatedAt: created})
		return storage
	}

	t.Run("should pass: existing book", func(t *testing.T) {
		storage := seed()
		req := httptest.NewRequest(http.MethodPut, "/books/b:1", strings.NewReader(`{"title":"Dune Messiah","author":"Frank Herbert"}`))
		w := httptest.NewRecorder()
		newTestBookHandler(storage).UpdateBook(w, req, httprouter.Params{{Key: "id", Value: "b:1"}})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)

		var book BookRecord
		decodeBody(t, res, &book)
		assert.Equal(t, "Dune Messiah", book.Title)
		assert.Equal(t, created, book.CreatedAt)
		assert.Equal(t, NewMockClocker().Now(), book.UpdatedAt)
	})

	t.Run("should fail: unknown book", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/books/b:9", strings.NewReader(`{"title":"x","author":"y"}`))
		w := httptest.NewRecorder()
		newTestBookHandler(seed()).UpdateBook(w, req, httprouter.Params{{Key: "id", Value: "b:9"}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should fail: malformed id", func(t *testing.T) {
		h := NewBookHandler(newTestCore(RoleBackend, NewMockUIDHandler("", false)), seed())
		req := httptest.NewRequest(http.MethodPut, "/books/xyz", strings.NewReader(`{"title":"x","author":"y"}`))
		w := httptest.NewRecorder()
		h.UpdateBook(w, req, httprouter.Params{{Key: "id", Value: "xyz"}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should fail: missing author", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/books/b:1", strings.NewReader(`{"title":"x"}`))
		w := httptest.NewRecorder()
		newTestBookHandler(seed()).UpdateBook(w, req, httprouter.Params{{Key: "id", Value: "b:1"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestDeleteBookHandler ensures an existing book can be deleted once.
func TestDeleteBookHandler(t *testing.T) {
	storage := NewMemoryBookStorage(zap.NewNop())
	require.NoError(t, storage.Add(context.Background(), BookRecord{ID: "b:1", Title: "Dune", Author: "Frank Herbert"}))
	h := newTestBookHandler(storage)

	req := httptest.NewRequest(http.MethodDelete, "/books/b:1", nil)
	w := httptest.NewRecorder()
	h.DeleteBook(w, req, httprouter.Params{{Key: "id", Value: "b:1"}})
	assert.Equal(t, http.StatusOK, w.Code)

	_, err := storage.GetOne(context.Background(), "b:1")
	assert.ErrorIs(t, err, ErrBookNotFound)

	req = httptest.NewRequest(http.MethodDelete, "/books/b:1", nil)
	w = httptest.NewRecorder()
	h.DeleteBook(w, req, httprouter.Params{{Key: "id", Value: "b:1"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	t.Run("should fail: storage error", func(t *testing.T) {
		failing := &MockBookStorage{
			GetOneFunc: func(ctx context.Context, id string) (BookRecord, error) {
				return BookRecord{ID: id}, nil
			},
			DeleteFunc: func(ctx context.Context, id string) error {
				return errors.New("read only")
			},
		}
		req := httptest.NewRequest(http.MethodDelete, "/books/b:1", nil)
		w := httptest.NewRecorder()
		newTestBookHandler(failing).DeleteBook(w, req, httprouter.Params{{Key: "id", Value: "b:1"}})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

// TestBackendWithClient runs the editor client against the backend routes.
func TestBackendWithClient(t *testing.T) {
	core := newTestCore(RoleBackend, NewIDsHandler())
	mm := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	router := NewBookHandler(core, NewMemoryBookStorage(zap.NewNop())).SetupBookRoutes(httprouter.New(), mm)
	srv := httptest.NewServer(WithCORS(router))
	defer srv.Close()

	view := NewBookListView(zap.NewNop(), NewBooksClient(zap.NewNop(), NewMockClocker(), srv.URL, 0))
	defer view.Close()
	ctx := context.Background()

	require.NoError(t, view.FetchAll(ctx))
	require.NoError(t, view.Submit(ctx, Draft{Title: "Emma", Author: "Jane Austen"}))
	state := view.Snapshot()
	require.Len(t, state.Books, 1)
	assert.True(t, strings.HasPrefix(state.Books[0].ID, "b:"))

	require.NoError(t, view.BeginEdit(state.Books[0]))
	require.NoError(t, view.Submit(ctx, Draft{Title: "Persuasion", Author: "Jane Austen"}))
	assert.Equal(t, "Persuasion", view.Snapshot().Books[0].Title)

	id := view.Snapshot().Books[0].ID
	require.NoError(t, view.Delete(ctx, id, Answer(true)))
	assert.Empty(t, view.Snapshot().Books)

	err := view.Delete(ctx, id, Answer(true))
	assert.True(t, IsKind(err, KindDeleteNotFound))
	assert.Equal(t, MsgBookNotFound, view.Snapshot().Error)
}

// TestCreateBookHandler_KeepsText ensures titles and authors are stored as sent.
func TestCreateBookHandler_KeepsText(t *testing.T) {
	storage := NewMemoryBookStorage(zap.NewNop())
	h := newTestBookHandler(storage)
	payload := `{"title":"a <b> c","author":"HTML &lt;p&gt; tag"}`
	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(payload))
	w := httptest.NewRecorder()
	h.CreateBook(w, req, httprouter.Params{})
	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	stored, err := storage.GetOne(context.Background(), "b:42")
	require.NoError(t, err)
	assert.Equal(t, "a <b> c", stored.Title)
	assert.Equal(t, "HTML &lt;p&gt; tag", stored.Author)
}
