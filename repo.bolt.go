package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

type boltBookStorage struct {
	logger *zap.Logger
	client *bolt.DB
	bucket []byte
}

// GetBoltDBClient setup the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BoltDB.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BoltDB.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltBookStorage provides an instance of bolt-based book storage.
func NewBoltBookStorage(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) BookStorage {
	return &boltBookStorage{
		logger: logger,
		client: client,
		bucket: []byte(boltConfig.BucketName),
	}
}

// Close shuts down the bolt-based book storage.
func (bs *boltBookStorage) Close() error {
	if err := bs.client.Close(); err != nil {
		bs.logger.Error("boltdb: failed to close the database", zap.String("db.path", bs.client.Path()), zap.Error(err))
		return err
	}
	return nil
}

// Add inserts a new book record into boltdb store.
func (bs *boltBookStorage) Add(_ context.Context, book BookRecord) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return bs.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bs.bucket).Put([]byte(book.ID), bookBytes)
	})
}

// GetOne retrieves a book record based on its ID from boltdb store.
func (bs *boltBookStorage) GetOne(_ context.Context, id string) (BookRecord, error) {
	var book BookRecord
	err := bs.client.View(func(tx *bolt.Tx) error {
		result := tx.Bucket(bs.bucket).Get([]byte(id))
		if result == nil {
			return ErrBookNotFound
		}
		return json.Unmarshal(result, &book)
	})
	return book, err
}

// Delete removes a book record based on its ID from boltdb store.
func (bs *boltBookStorage) Delete(_ context.Context, id string) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bs.bucket)
		if b.Get([]byte(id)) == nil {
			return ErrBookNotFound
		}
		return b.Delete([]byte(id))
	})
}

// Update replaces an existing book record.
func (bs *boltBookStorage) Update(_ context.Context, book BookRecord) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return bs.client.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bs.bucket)
		if b.Get([]byte(book.ID)) == nil {
			return ErrBookNotFound
		}
		return b.Put([]byte(book.ID), bookBytes)
	})
}

// GetAll retrieves a list of all books stored in the bolt database.
func (bs *boltBookStorage) GetAll(_ context.Context) ([]BookRecord, error) {
	books := []BookRecord{}
	err := bs.client.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bs.bucket).ForEach(func(_, v []byte) error {
			var book BookRecord
			if err := json.Unmarshal(v, &book); err != nil {
				return err
			}
			books = append(books, book)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortRecords(books)
	return books, nil
}
