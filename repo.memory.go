package main

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type memoryBookStorage struct {
	logger *zap.Logger
	mu     sync.RWMutex
	books  map[string]BookRecord
}

// NewMemoryBookStorage provides an in-memory book storage. Its content
// is lost when the process exits.
func NewMemoryBookStorage(logger *zap.Logger) BookStorage {
	return &memoryBookStorage{
		logger: logger,
		books:  make(map[string]BookRecord),
	}
}

func (ms *memoryBookStorage) Add(_ context.Context, book BookRecord) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.books[book.ID] = book
	return nil
}

func (ms *memoryBookStorage) GetOne(_ context.Context, id string) (BookRecord, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	book, ok := ms.books[id]
	if !ok {
		return BookRecord{}, ErrBookNotFound
	}
	return book, nil
}

func (ms *memoryBookStorage) Delete(_ context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.books[id]; !ok {
		return ErrBookNotFound
	}
	delete(ms.books, id)
	return nil
}

func (ms *memoryBookStorage) Update(_ context.Context, book BookRecord) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.books[book.ID]; !ok {
		return ErrBookNotFound
	}
	ms.books[book.ID] = book
	return nil
}

func (ms *memoryBookStorage) GetAll(_ context.Context) ([]BookRecord, error) {
	ms.mu.RLock()
	books := make([]BookRecord, 0, len(ms.books))
	for _, book := range ms.books {
		books = append(books, book)
	}
	ms.mu.RUnlock()
	sortRecords(books)
	return books, nil
}

// Close drops every record.
func (ms *memoryBookStorage) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.logger.Info("memory: discarding books", zap.Int("books", len(ms.books)))
	ms.books = make(map[string]BookRecord)
	return nil
}
