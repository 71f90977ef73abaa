package main

import (
	"context"
	"sort"
	"time"
)

// BookRecord is a book as persisted by the reference backend.
type BookRecord struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Book returns the public view of the record.
func (r BookRecord) Book() Book {
	return Book{ID: r.ID, Title: r.Title, Author: r.Author}
}

// BookStorage is implemented by every backend storage kind. GetOne, Update
// and Delete return ErrBookNotFound for an unknown id.
type BookStorage interface {
	Add(ctx context.Context, book BookRecord) error
	GetOne(ctx context.Context, id string) (BookRecord, error)
	Delete(ctx context.Context, id string) error
	Update(ctx context.Context, book BookRecord) error
	GetAll(ctx context.Context) ([]BookRecord, error)
	Close() error
}

// sortRecords orders records by creation time, oldest first.
func sortRecords(records []BookRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
