package main

import (
	"context"
	"sync"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

// MockBooksAPI is a BooksAPI whose behaviors are set per test. Calls
// are counted so tests can assert that no request was issued.
type MockBooksAPI struct {
	ListFunc   func(ctx context.Context) ([]Book, error)
	CreateFunc func(ctx context.Context, draft Draft) error
	UpdateFunc func(ctx context.Context, id string, draft Draft) error
	DeleteFunc func(ctx context.Context, id string) error

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockBooksAPI) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

// Calls returns how many times the named method was called.
func (m *MockBooksAPI) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// TotalCalls returns how many requests were issued overall.
func (m *MockBooksAPI) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// List mocks the behavior of fetching the collection.
func (m *MockBooksAPI) List(ctx context.Context) ([]Book, error) {
	m.record("List")
	return m.ListFunc(ctx)
}

// Create mocks the behavior of creating a book.
func (m *MockBooksAPI) Create(ctx context.Context, draft Draft) error {
	m.record("Create")
	return m.CreateFunc(ctx, draft)
}

// Update mocks the behavior of updating a book.
func (m *MockBooksAPI) Update(ctx context.Context, id string, draft Draft) error {
	m.record("Update")
	return m.UpdateFunc(ctx, id, draft)
}

// Delete mocks the behavior of deleting a book.
func (m *MockBooksAPI) Delete(ctx context.Context, id string) error {
	m.record("Delete")
	return m.DeleteFunc(ctx, id)
}

type MockBookStorage struct {
	AddFunc    func(ctx context.Context, book BookRecord) error
	GetOneFunc func(ctx context.Context, id string) (BookRecord, error)
	DeleteFunc func(ctx context.Context, id string) error
	UpdateFunc func(ctx context.Context, book BookRecord) error
	GetAllFunc func(ctx context.Context) ([]BookRecord, error)
}

// Add mocks the behavior of book creation by the repository.
func (m *MockBookStorage) Add(ctx context.Context, book BookRecord) error {
	return m.AddFunc(ctx, book)
}

// GetOne mocks the behavior of retrieving a book by the repository.
func (m *MockBookStorage) GetOne(ctx context.Context, id string) (BookRecord, error) {
	return m.GetOneFunc(ctx, id)
}

// Delete mocks the behavior of deleting a book by the repository.
func (m *MockBookStorage) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

// Update mocks the behavior of updating a book by the repository.
func (m *MockBookStorage) Update(ctx context.Context, book BookRecord) error {
	return m.UpdateFunc(ctx, book)
}

// GetAll mocks the behavior of retrieving all books by the repository.
func (m *MockBookStorage) GetAll(ctx context.Context) ([]BookRecord, error) {
	return m.GetAllFunc(ctx)
}

// Close does nothing.
func (m *MockBookStorage) Close() error {
	return nil
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

func (mck *MockClocker) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}

// MockPromptDriver replays scripted answers. Each prompt kind has its own
// queue. An exhausted queue answers ErrAborted.
type MockPromptDriver struct {
	Inputs   []string
	Confirms []bool
	Selects  []interface{}
	Printed  []string
	Asked    []string
}

func (m *MockPromptDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	m.Asked = append(m.Asked, cfg.Message)
	if len(m.Inputs) == 0 {
		return "", ErrAborted
	}
	v := m.Inputs[0]
	m.Inputs = m.Inputs[1:]
	return v, nil
}

func (m *MockPromptDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	m.Asked = append(m.Asked, cfg.Message)
	if len(m.Confirms) == 0 {
		return false, ErrAborted
	}
	v := m.Confirms[0]
	m.Confirms = m.Confirms[1:]
	return v, nil
}

// Select answers with the index of the scripted option. A string picks
// the option with that label, an int picks by position.
func (m *MockPromptDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	m.Asked = append(m.Asked, cfg.Message)
	if len(m.Selects) == 0 {
		return 0, ErrAborted
	}
	v := m.Selects[0]
	m.Selects = m.Selects[1:]
	switch choice := v.(type) {
	case int:
		return choice, nil
	case string:
		for i, option := range cfg.Options {
			if option == choice {
				return i, nil
			}
		}
	}
	return -1, nil
}

func (m *MockPromptDriver) Info(_ context.Context, msg string) error {
	m.Printed = append(m.Printed, msg)
	return nil
}
