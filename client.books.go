package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const clientUserAgent = "bookshelf-editor/1.0"

var ErrBookNotFound = errors.New("book not found")

var _ BooksAPI = (*BooksClient)(nil) // ensure BooksClient implements BooksAPI.

// BooksAPI is the remote books service as seen by the editor.
type BooksAPI interface {
	List(ctx context.Context) ([]Book, error)
	Create(ctx context.Context, draft Draft) error
	Update(ctx context.Context, id string, draft Draft) error
	Delete(ctx context.Context, id string) error
}

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Is makes a 404 answer match ErrBookNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrBookNotFound && e.Code == http.StatusNotFound
}

// BooksClient talks to the books service over HTTP.
type BooksClient struct {
	logger  *zap.Logger
	clock   Clocker
	baseURL string
	client  *http.Client
}

// NewBooksClient provides a client for the service rooted at baseURL.
// A zero timeout leaves requests open until the service answers.
func NewBooksClient(logger *zap.Logger, clock Clocker, baseURL string, timeout time.Duration) *BooksClient {
	return &BooksClient{
		logger:  logger,
		clock:   clock,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// List fetches the full collection.
func (c *BooksClient) List(ctx context.Context) ([]Book, error) {
	books := []Book{}
	if err := c.do(ctx, http.MethodGet, "/books", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// Create asks the service to store a new book.
func (c *BooksClient) Create(ctx context.Context, draft Draft) error {
	return c.do(ctx, http.MethodPost, "/books", draft, nil)
}

// Update replaces title and author of the book identified by id.
func (c *BooksClient) Update(ctx context.Context, id string, draft Draft) error {
	return c.do(ctx, http.MethodPut, "/books/"+url.PathEscape(id), draft, nil)
}

// Delete removes the book identified by id.
func (c *BooksClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/books/"+url.PathEscape(id), nil, nil)
}

func (c *BooksClient) do(ctx context.Context, method, path string, payload, out any) error {
	start := c.clock.Now()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", clientUserAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("books service call failed",
			zap.String("call.method", method),
			zap.String("call.path", path),
			zap.Duration("call.duration", c.clock.Now().Sub(start)),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	c.logger.Debug("books service call",
		zap.String("call.method", method),
		zap.String("call.path", path),
		zap.Int("call.status", resp.StatusCode),
		zap.Duration("call.duration", c.clock.Now().Sub(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err = json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
