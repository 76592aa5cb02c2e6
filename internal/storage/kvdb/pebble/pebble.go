// Package pebble backs the kvdb abstraction with a PebbleDB instance.
package pebble

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/LeJamon/goRWAd/internal/storage/kvdb"
)

// DB wraps a pebble database behind the kvdb.DB interface.
type DB struct {
	db *pebble.DB
}

// Open opens or creates a pebble database at path.
func Open(path string) (*DB, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

// NewDB wraps an already-open pebble instance.
func NewDB(db *pebble.DB) *DB {
	return &DB{db: db}
}

func (p *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if p.db == nil {
		return nil, kvdb.ErrDBClosed
	}

	val, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, kvdb.ErrKeyNotFound
		}
		return nil, err
	}
	defer closer.Close()

	valCopy := make([]byte, len(val))
	copy(valCopy, val)
	return valCopy, nil
}

func (p *DB) Write(ctx context.Context, key, value []byte) error {
	if p.db == nil {
		return kvdb.ErrDBClosed
	}
	return p.db.Set(key, value, pebble.Sync)
}

func (p *DB) Delete(ctx context.Context, key []byte) error {
	if p.db == nil {
		return kvdb.ErrDBClosed
	}
	return p.db.Delete(key, pebble.Sync)
}

func (p *DB) Batch(ctx context.Context, ops []kvdb.BatchOperation) error {
	if p.db == nil {
		return kvdb.ErrDBClosed
	}

	batch := p.db.NewBatch()
	defer batch.Close()

	for _, op := range ops {
		switch op.Type {
		case kvdb.BatchPut:
			if err := batch.Set(op.Key, op.Value, nil); err != nil {
				return err
			}
		case kvdb.BatchDelete:
			if err := batch.Delete(op.Key, nil); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}
	return batch.Commit(pebble.Sync)
}

func (p *DB) Iterator(ctx context.Context, start, end []byte) (kvdb.Iterator, error) {
	if p.db == nil {
		return nil, kvdb.ErrDBClosed
	}

	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: start,
		UpperBound: end,
	})
	if err != nil {
		return nil, err
	}
	return &Iterator{iter: iter, start: start, end: end}, nil
}

func (p *DB) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

// Iterator walks pebble entries within bounds, copying keys and values out
// of pebble's reused buffers.
type Iterator struct {
	iter       *pebble.Iterator
	start, end []byte
	current    struct {
		key, value []byte
	}
}

func (it *Iterator) Next() bool {
	if it.current.key == nil {
		if it.start == nil {
			it.iter.First()
		} else {
			it.iter.SeekGE(it.start)
		}
	} else {
		it.iter.Next()
	}

	if !it.iter.Valid() {
		return false
	}

	key := it.iter.Key()
	if it.end != nil && bytes.Compare(key, it.end) > 0 {
		return false
	}

	it.current.key = append([]byte(nil), key...)
	it.current.value = append([]byte(nil), it.iter.Value()...)
	return true
}

func (it *Iterator) Key() []byte   { return it.current.key }
func (it *Iterator) Value() []byte { return it.current.value }

func (it *Iterator) Error() error { return it.iter.Error() }

func (it *Iterator) Close() error {
	return it.iter.Close()
}
