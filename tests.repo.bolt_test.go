package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestBoltStore returns a bolt store living in a temporary folder
// removed at the end of the test.
func newTestBoltStore(t *testing.T) BookStorage {
	t.Helper()
	testConfig := &Config{
		BoltDB: BoltDBConfig{
			FilePath:   filepath.Join(t.TempDir(), "books.db"),
			Timeout:    5 * time.Second,
			BucketName: "test.books",
		},
	}
	client, err := GetBoltDBClient(testConfig)
	require.NoError(t, err, "failed in creating a test bolt store")
	bs := NewBoltBookStorage(zap.NewNop(), &testConfig.BoltDB, client)
	t.Cleanup(func() { bs.Close() })
	return bs
}

func TestBoltStore(t *testing.T) {
	testBookStorage(t, newTestBoltStore(t))
}

// Ensure bolt store content survives a reopening.
func TestBoltStore_Reopen(t *testing.T) {
	testConfig := &Config{
		BoltDB: BoltDBConfig{
			FilePath:   filepath.Join(t.TempDir(), "books.db"),
			Timeout:    time.Second,
			BucketName: "test.books",
		},
	}
	client, err := GetBoltDBClient(testConfig)
	require.NoError(t, err)
	bs := NewBoltBookStorage(zap.NewNop(), &testConfig.BoltDB, client)
	require.NoError(t, bs.Add(context.Background(), testRecords()[0]))
	require.NoError(t, bs.Close())

	client, err = GetBoltDBClient(testConfig)
	require.NoError(t, err)
	bs = NewBoltBookStorage(zap.NewNop(), &testConfig.BoltDB, client)
	defer bs.Close()
	book, err := bs.GetOne(context.Background(), "b:2")
	require.NoError(t, err)
	assert.Equal(t, "Emma", book.Title)
}

// Ensure an unusable file path is reported.
func TestGetBoltDBClient_InvalidPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "books.db"), 0o700))
	_, err := GetBoltDBClient(&Config{BoltDB: BoltDBConfig{
		FilePath:   filepath.Join(dir, "books.db"),
		Timeout:    time.Second,
		BucketName: "test.books",
	}})
	assert.Error(t, err)
}
