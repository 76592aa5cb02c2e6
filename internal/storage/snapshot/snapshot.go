// Package snapshot persists full protocol-state snapshots to a key-value
// backend. Each snapshot is the CBOR encoding of the store's entries,
// compressed, keyed by the engine sequence it was taken at.
package snapshot

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/LeJamon/goRWAd/internal/core/state"
	"github.com/LeJamon/goRWAd/internal/storage/compression"
	"github.com/LeJamon/goRWAd/internal/storage/kvdb"
)

// ErrNoSnapshot is returned when the backend holds no snapshot.
var ErrNoSnapshot = errors.New("snapshot: none stored")

var (
	snapPrefix = []byte("snap/")
	latestKey  = []byte("meta/latest")
)

// Store reads and writes snapshots through a kvdb backend.
type Store struct {
	db   kvdb.DB
	comp compression.Compressor
}

// New creates a snapshot store using the named compressor.
func New(db kvdb.DB, compressor string) (*Store, error) {
	comp, err := compression.Get(compressor)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, comp: comp}, nil
}

func snapKey(seq uint64) []byte {
	key := make([]byte, len(snapPrefix)+8)
	copy(key, snapPrefix)
	binary.BigEndian.PutUint64(key[len(snapPrefix):], seq)
	return key
}

// Save writes a snapshot of the store at the given engine sequence and
// advances the latest pointer.
func (s *Store) Save(ctx context.Context, seq uint64, src *state.Store) error {
	encoded, err := state.Encode(src.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	compressed, err := s.comp.Compress(encoded)
	if err != nil {
		return err
	}

	var seqBuf [8]byte
	binary.BigEndian.PutUint64(seqBuf[:], seq)
	return s.db.Batch(ctx, []kvdb.BatchOperation{
		{Type: kvdb.BatchPut, Key: snapKey(seq), Value: compressed},
		{Type: kvdb.BatchPut, Key: latestKey, Value: seqBuf[:]},
	})
}

// Load restores the snapshot taken at seq into dst.
func (s *Store) Load(ctx context.Context, seq uint64, dst *state.Store) error {
	compressed, err := s.db.Read(ctx, snapKey(seq))
	if err != nil {
		if errors.Is(err, kvdb.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		return err
	}
	encoded, err := s.comp.Decompress(compressed)
	if err != nil {
		return err
	}

	entries := make(map[string][]byte)
	if err := state.Decode(encoded, &entries); err != nil {
		return fmt.Errorf("failed to decode snapshot %d: %w", seq, err)
	}
	dst.Restore(entries)
	return nil
}

// LoadLatest restores the most recent snapshot into dst and returns the
// sequence it was taken at.
func (s *Store) LoadLatest(ctx context.Context, dst *state.Store) (uint64, error) {
	data, err := s.db.Read(ctx, latestKey)
	if err != nil {
		if errors.Is(err, kvdb.ErrKeyNotFound) {
			return 0, ErrNoSnapshot
		}
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupt latest pointer: %d bytes", len(data))
	}
	seq := binary.BigEndian.Uint64(data)
	return seq, s.Load(ctx, seq, dst)
}

// Sequences lists stored snapshot sequences in ascending order.
func (s *Store) Sequences(ctx context.Context) ([]uint64, error) {
	end := append([]byte(nil), snapPrefix...)
	end[len(end)-1]++ // "snap0" bounds the "snap/" range

	iter, err := s.db.Iterator(ctx, snapPrefix, end)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var seqs []uint64
	for iter.Next() {
		key := iter.Key()
		if len(key) != len(snapPrefix)+8 {
			continue
		}
		seqs = append(seqs, binary.BigEndian.Uint64(key[len(snapPrefix):]))
	}
	return seqs, iter.Error()
}

// Prune deletes every snapshot older than keep, never touching the latest.
func (s *Store) Prune(ctx context.Context, keep int) error {
	seqs, err := s.Sequences(ctx)
	if err != nil {
		return err
	}
	if keep < 1 {
		keep = 1
	}
	if len(seqs) <= keep {
		return nil
	}

	var ops []kvdb.BatchOperation
	for _, seq := range seqs[:len(seqs)-keep] {
		ops = append(ops, kvdb.BatchOperation{Type: kvdb.BatchDelete, Key: snapKey(seq)})
	}
	return s.db.Batch(ctx, ops)
}
