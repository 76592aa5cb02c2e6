package grpc

import (
	"errors"
	"math/big"
	"time"

	"github.com/LeJamon/goRWAd/internal/core/access"
	"github.com/LeJamon/goRWAd/internal/core/oracle"
	"github.com/LeJamon/goRWAd/internal/core/state"
	"github.com/LeJamon/goRWAd/internal/core/tx"
)

// ErrNoHistory is returned for journal queries when the node runs without a
// history database.
var ErrNoHistory = errors.New("grpc: transaction history not available")

// LocalBackend answers queries directly from the node's in-process stores.
type LocalBackend struct {
	store       *state.Store
	oracle      *oracle.Store
	perms       *access.Registry
	history     HistorySource
	maxPriceAge time.Duration
	clock       func() time.Time
}

// HistorySource is the slice of the journal database the handlers read.
type HistorySource interface {
	Entry(seq uint64) (*tx.JournalEntry, error)
	ByAccount(account string, limit int) ([]tx.JournalEntry, error)
}

// NewLocalBackend wires a backend over the node's stores. history may be nil
// when the node keeps no journal.
func NewLocalBackend(store *state.Store, orc *oracle.Store, perms *access.Registry,
	history HistorySource, maxPriceAge time.Duration, clock func() time.Time) *LocalBackend {
	if clock == nil {
		clock = time.Now
	}
	return &LocalBackend{
		store:       store,
		oracle:      orc,
		perms:       perms,
		history:     history,
		maxPriceAge: maxPriceAge,
		clock:       clock,
	}
}

func (b *LocalBackend) Vault(assetID string) (*state.Vault, error) {
	return state.GetVault(b.store, assetID)
}

func (b *LocalBackend) Offering(id uint64) (*state.Offering, error) {
	return state.GetOffering(b.store, id)
}

func (b *LocalBackend) Participation(id uint64, account string) (*state.Participation, error) {
	return state.GetParticipation(b.store, id, account)
}

func (b *LocalBackend) Balance(token, account string) (*big.Int, error) {
	return state.GetBalance(b.store, token, account)
}

func (b *LocalBackend) Allowance(token, owner, spender string) (*big.Int, error) {
	return state.GetAllowance(b.store, token, owner, spender)
}

func (b *LocalBackend) HasRole(role access.Role, account string) bool {
	return b.perms.HasRole(role, account)
}

func (b *LocalBackend) IsKycPassed(account string) bool {
	return b.perms.IsKycPassed(account)
}

func (b *LocalBackend) Price(assetID string) (*big.Int, time.Duration, error) {
	return b.oracle.PriceSafe(assetID, b.maxPriceAge, b.clock())
}

func (b *LocalBackend) PriceRound(assetID string, roundID uint64) (*oracle.Round, error) {
	return b.oracle.Round(assetID, roundID)
}

func (b *LocalBackend) LatestRound(assetID string) uint64 {
	return b.oracle.LatestRound(assetID)
}

func (b *LocalBackend) Transaction(seq uint64) (*tx.JournalEntry, error) {
	if b.history == nil {
		return nil, ErrNoHistory
	}
	return b.history.Entry(seq)
}

func (b *LocalBackend) AccountTransactions(account string, limit int) ([]tx.JournalEntry, error) {
	if b.history == nil {
		return nil, ErrNoHistory
	}
	return b.history.ByAccount(account, limit)
}
