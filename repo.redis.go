package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const HBooks string = "books"

type redisBookStorage struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisBookStorage provides an instance of redis-based book storage.
// All books live as json values of a single hash keyed by book id.
func NewRedisBookStorage(logger *zap.Logger, client *redis.Client) BookStorage {
	return &redisBookStorage{
		logger: logger,
		client: client,
	}
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// Add inserts a new book record.
func (rs *redisBookStorage) Add(ctx context.Context, book BookRecord) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return rs.client.HSet(ctx, HBooks, book.ID, bookBytes).Err()
}

// GetOne retrieves a book record based on its ID.
func (rs *redisBookStorage) GetOne(ctx context.Context, id string) (BookRecord, error) {
	var book BookRecord
	bookJSONString, err := rs.client.HGet(ctx, HBooks, id).Result()
	if errors.Is(err, redis.Nil) {
		return book, ErrBookNotFound
	}
	if err != nil {
		return book, err
	}
	err = json.Unmarshal([]byte(bookJSONString), &book)
	return book, err
}

// Delete removes a book record based on its ID.
func (rs *redisBookStorage) Delete(ctx context.Context, id string) error {
	n, err := rs.client.HDel(ctx, HBooks, id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}

// maxUpdateRetries bounds the optimistic transaction attempts of Update.
const maxUpdateRetries = 100

// Update replaces an existing book record. The check and the write run
// in one transaction so a concurrent delete is never undone. Writes to
// other books abort the transaction, which is then replayed.
func (rs *redisBookStorage) Update(ctx context.Context, book BookRecord) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	txf := func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, HBooks, book.ID).Result()
		if err != nil {
			return err
		}
		if !exists {
			return ErrBookNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, HBooks, book.ID, bookBytes)
			return nil
		})
		return err
	}
	for i := 0; i < maxUpdateRetries; i++ {
		err = rs.client.Watch(ctx, txf, HBooks)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		rs.logger.Debug("redis: book update conflicted, retrying", zap.String("book.id", book.ID), zap.Int("attempt", i+1))
	}
	rs.logger.Warn("redis: book update kept conflicting", zap.String("book.id", book.ID))
	return err
}

// GetAll retrieves a list of all books stored in the redis database.
func (rs *redisBookStorage) GetAll(ctx context.Context) ([]BookRecord, error) {
	mapBooks, err := rs.client.HVals(ctx, HBooks).Result()
	if err != nil {
		return nil, err
	}
	books := make([]BookRecord, 0, len(mapBooks))
	for _, bookJSONString := range mapBooks {
		var book BookRecord
		if err = json.Unmarshal([]byte(bookJSONString), &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	sortRecords(books)
	return books, nil
}

// Close releases the redis connections pool.
func (rs *redisBookStorage) Close() error {
	return rs.client.Close()
}
