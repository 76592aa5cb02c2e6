package pebble

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goRWAd/internal/storage/kvdb"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.Write(ctx, []byte("k1"), []byte("v1")))
	val, err := db.Read(ctx, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)

	require.NoError(t, db.Delete(ctx, []byte("k1")))
	_, err = db.Read(ctx, []byte("k1"))
	assert.ErrorIs(t, err, kvdb.ErrKeyNotFound)
}

func TestBatch(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.Write(ctx, []byte("old"), []byte("x")))
	err := db.Batch(ctx, []kvdb.BatchOperation{
		{Type: kvdb.BatchPut, Key: []byte("a"), Value: []byte("1")},
		{Type: kvdb.BatchPut, Key: []byte("b"), Value: []byte("2")},
		{Type: kvdb.BatchDelete, Key: []byte("old")},
	})
	require.NoError(t, err)

	val, err := db.Read(ctx, []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)

	_, err = db.Read(ctx, []byte("old"))
	assert.ErrorIs(t, err, kvdb.ErrKeyNotFound)
}

func TestIteratorBounds(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	for _, k := range []string{"a/1", "a/2", "a/3", "b/1"} {
		require.NoError(t, db.Write(ctx, []byte(k), []byte(k)))
	}

	iter, err := db.Iterator(ctx, []byte("a/"), []byte("a0"))
	require.NoError(t, err)
	defer iter.Close()

	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	require.NoError(t, iter.Error())
	assert.Equal(t, []string{"a/1", "a/2", "a/3"}, keys)
}

func TestClosedDB(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, db.Close())

	_, err := db.Read(ctx, []byte("k"))
	assert.ErrorIs(t, err, kvdb.ErrDBClosed)
	assert.ErrorIs(t, db.Write(ctx, []byte("k"), nil), kvdb.ErrDBClosed)
}
