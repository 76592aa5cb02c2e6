package state

import (
	"errors"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/LeJamon/goRWAd/internal/core/amount"
)

var (
	// ErrEntryExists is returned by Insert when the key is already present.
	ErrEntryExists = errors.New("entry already exists")
	// ErrEntryNotFound is returned by Update/Erase when the key is absent.
	ErrEntryNotFound = errors.New("entry not found")
)

// LedgerView provides read/write access to protocol state. Read returns
// (nil, nil) for missing keys; Insert fails on existing keys and Update on
// missing ones, so transactions cannot silently clobber records.
type LedgerView interface {
	Read(key string) ([]byte, error)
	Exists(key string) (bool, error)
	Insert(key string, data []byte) error
	Update(key string, data []byte) error
	Erase(key string) error
}

// Store is the in-memory backing state, safe for concurrent readers. All
// mutation goes through an ApplyStateTable committed by the engine.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string][]byte)}
}

func (s *Store) Read(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *Store) Exists(key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok, nil
}

func (s *Store) Insert(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return ErrEntryExists
	}
	s.entries[key] = append([]byte(nil), data...)
	return nil
}

func (s *Store) Update(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return ErrEntryNotFound
	}
	s.entries[key] = append([]byte(nil), data...)
	return nil
}

func (s *Store) Erase(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return ErrEntryNotFound
	}
	delete(s.entries, key)
	return nil
}

// Keys returns all keys with the given prefix, sorted.
func (s *Store) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of every entry, for persistence.
func (s *Store) Snapshot() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte, len(s.entries))
	for k, v := range s.entries {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

// Restore replaces all entries from a snapshot.
func (s *Store) Restore(entries map[string][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]byte, len(entries))
	for k, v := range entries {
		s.entries[k] = append([]byte(nil), v...)
	}
}

// Typed record accessors. These operate on any LedgerView so transactions use
// them against the buffered apply table and queries against the store.

// GetVault reads a vault record; (nil, nil) when absent.
func GetVault(v LedgerView, assetID string) (*Vault, error) {
	data, err := v.Read(VaultKey(assetID))
	if err != nil || data == nil {
		return nil, err
	}
	var rec Vault
	if err := Decode(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// InsertVault writes a new vault record.
func InsertVault(v LedgerView, rec *Vault) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	return v.Insert(VaultKey(rec.AssetID), data)
}

// UpdateVault rewrites an existing vault record.
func UpdateVault(v LedgerView, rec *Vault) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	return v.Update(VaultKey(rec.AssetID), data)
}

// GetOffering reads an offering record; (nil, nil) when absent.
func GetOffering(v LedgerView, id uint64) (*Offering, error) {
	data, err := v.Read(OfferingKey(id))
	if err != nil || data == nil {
		return nil, err
	}
	var rec Offering
	if err := Decode(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// InsertOffering writes a new offering record.
func InsertOffering(v LedgerView, rec *Offering) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	return v.Insert(OfferingKey(rec.ID), data)
}

// UpdateOffering rewrites an existing offering record.
func UpdateOffering(v LedgerView, rec *Offering) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	return v.Update(OfferingKey(rec.ID), data)
}

// GetParticipation reads a participation record; (nil, nil) when absent.
func GetParticipation(v LedgerView, id uint64, account string) (*Participation, error) {
	data, err := v.Read(ParticipationKey(id, account))
	if err != nil || data == nil {
		return nil, err
	}
	var rec Participation
	if err := Decode(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// PutParticipation inserts or updates a participation record.
func PutParticipation(v LedgerView, id uint64, account string, rec *Participation) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	key := ParticipationKey(id, account)
	exists, err := v.Exists(key)
	if err != nil {
		return err
	}
	if exists {
		return v.Update(key, data)
	}
	return v.Insert(key, data)
}

// NextOfferingID assigns the next sequential offering id, starting at 1.
func NextOfferingID(v LedgerView) (uint64, error) {
	data, err := v.Read(offeringSeqKey)
	if err != nil {
		return 0, err
	}
	var last uint64
	if data != nil {
		last, err = strconv.ParseUint(string(data), 10, 64)
		if err != nil {
			return 0, err
		}
	}
	next := last + 1
	encoded := []byte(strconv.FormatUint(next, 10))
	if data == nil {
		err = v.Insert(offeringSeqKey, encoded)
	} else {
		err = v.Update(offeringSeqKey, encoded)
	}
	if err != nil {
		return 0, err
	}
	return next, nil
}

// GetBalance reads a token balance, zero when absent.
func GetBalance(v LedgerView, token, account string) (*big.Int, error) {
	data, err := v.Read(BalanceKey(token, account))
	if err != nil || data == nil {
		return amount.Zero(), err
	}
	return new(big.Int).SetBytes(data), nil
}

// SetBalance writes a token balance. Zero balances stay in place; the key
// set doubles as the holder index for audits.
func SetBalance(v LedgerView, token, account string, value *big.Int) error {
	key := BalanceKey(token, account)
	data := value.Bytes()
	exists, err := v.Exists(key)
	if err != nil {
		return err
	}
	if exists {
		return v.Update(key, data)
	}
	return v.Insert(key, data)
}

// GetAllowance reads a spend allowance, zero when absent.
func GetAllowance(v LedgerView, token, owner, spender string) (*big.Int, error) {
	data, err := v.Read(AllowanceKey(token, owner, spender))
	if err != nil || data == nil {
		return amount.Zero(), err
	}
	return new(big.Int).SetBytes(data), nil
}

// SetAllowance writes a spend allowance.
func SetAllowance(v LedgerView, token, owner, spender string, value *big.Int) error {
	key := AllowanceKey(token, owner, spender)
	data := value.Bytes()
	exists, err := v.Exists(key)
	if err != nil {
		return err
	}
	if exists {
		return v.Update(key, data)
	}
	return v.Insert(key, data)
}
