// Package kvdb defines the key-value store abstraction the snapshot layer
// persists through.
package kvdb

import (
	"context"
	"errors"
)

var (
	// ErrDBClosed is returned when operating on a closed database.
	ErrDBClosed = errors.New("kvdb: database is closed")

	// ErrKeyNotFound is returned when a key does not exist.
	ErrKeyNotFound = errors.New("kvdb: key not found")
)

// DB is the operation set every key-value backend must support.
type DB interface {
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch applies all operations atomically.
	Batch(ctx context.Context, ops []BatchOperation) error
	Iterator(ctx context.Context, start, end []byte) (Iterator, error)

	Close() error
}

// Iterator traverses entries in key order within [start, end).
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// BatchOperation is one step of an atomic batch.
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)
