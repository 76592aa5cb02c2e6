// Package oracle stores asset prices with an activity flag, update
// timestamps, and a bounded history of past rounds. Prices are unsigned
// 18-decimal fixed point. The staleness check is a hard guard: a price older
// than the caller's cutoff fails immediately, it never blocks or retries.
package oracle

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	ErrUnknownAsset  = errors.New("oracle: unknown asset")
	ErrAssetInactive = errors.New("oracle: asset is not active")
	ErrStalePrice    = errors.New("oracle: price is stale")
	ErrBadPrice      = errors.New("oracle: price must be positive")
	ErrRoundEvicted  = errors.New("oracle: round no longer cached")
)

// Round is one historical price observation.
type Round struct {
	RoundID   uint64
	Price     *big.Int
	UpdatedAt int64 // unix seconds
}

type assetEntry struct {
	active     bool
	price      *big.Int
	lastUpdate int64
	lastRound  uint64
}

// Store holds current prices per asset plus an LRU cache of recent rounds.
// Older rounds fall out of the cache; lookups for them return
// ErrRoundEvicted rather than a wrong answer.
type Store struct {
	mu     sync.RWMutex
	assets map[string]*assetEntry
	rounds *lru.Cache[string, *Round]
}

// DefaultRoundCacheSize bounds the in-memory round history.
const DefaultRoundCacheSize = 1024

// NewStore creates a price store with the given round-cache capacity.
func NewStore(roundCacheSize int) (*Store, error) {
	if roundCacheSize <= 0 {
		roundCacheSize = DefaultRoundCacheSize
	}
	rounds, err := lru.New[string, *Round](roundCacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{
		assets: make(map[string]*assetEntry),
		rounds: rounds,
	}, nil
}

// SetActive flips an asset's activity flag, creating the asset if needed.
func (s *Store) SetActive(assetID string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.assets[assetID]
	if !ok {
		entry = &assetEntry{}
		s.assets[assetID] = entry
	}
	entry.active = active
}

// SetPrice publishes a new price round for an asset. The asset is created
// (inactive) if unknown; activity is controlled solely by SetActive.
func (s *Store) SetPrice(assetID string, price *big.Int, now time.Time) (uint64, error) {
	if price == nil || price.Sign() <= 0 {
		return 0, ErrBadPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.assets[assetID]
	if !ok {
		entry = &assetEntry{}
		s.assets[assetID] = entry
	}
	entry.lastRound++
	entry.price = new(big.Int).Set(price)
	entry.lastUpdate = now.Unix()

	s.rounds.Add(roundKey(assetID, entry.lastRound), &Round{
		RoundID:   entry.lastRound,
		Price:     new(big.Int).Set(price),
		UpdatedAt: entry.lastUpdate,
	})
	return entry.lastRound, nil
}

// PriceSafe returns the current price and its age, failing if the asset is
// unknown or inactive or the price is older than maxAge.
func (s *Store) PriceSafe(assetID string, maxAge time.Duration, now time.Time) (*big.Int, time.Duration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.assets[assetID]
	if !ok {
		return nil, 0, ErrUnknownAsset
	}
	if !entry.active {
		return nil, 0, ErrAssetInactive
	}
	if entry.price == nil {
		return nil, 0, ErrStalePrice
	}

	age := now.Sub(time.Unix(entry.lastUpdate, 0))
	if age > maxAge {
		return nil, age, ErrStalePrice
	}
	return new(big.Int).Set(entry.price), age, nil
}

// Round returns a cached historical round.
func (s *Store) Round(assetID string, roundID uint64) (*Round, error) {
	s.mu.RLock()
	entry, ok := s.assets[assetID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownAsset
	}
	if roundID == 0 || roundID > entry.lastRound {
		return nil, fmt.Errorf("oracle: no round %d for %s", roundID, assetID)
	}
	if round, ok := s.rounds.Get(roundKey(assetID, roundID)); ok {
		return round, nil
	}
	return nil, ErrRoundEvicted
}

// LatestRound returns the last assigned round id, zero if none.
func (s *Store) LatestRound(assetID string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.assets[assetID]; ok {
		return entry.lastRound
	}
	return 0
}

// Assets returns the known asset ids.
func (s *Store) Assets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.assets))
	for id := range s.assets {
		out = append(out, id)
	}
	return out
}

func roundKey(assetID string, roundID uint64) string {
	return fmt.Sprintf("%s/%d", assetID, roundID)
}
