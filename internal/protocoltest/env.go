// Package protocoltest provides a deterministic test environment for
// transaction testing: an engine wired to a manual clock, a price store, and
// a role registry, plus funding, pricing, and assertion helpers.
package protocoltest

import (
	"math/big"
	"testing"
	"time"

	"github.com/LeJamon/goRWAd/internal/core/access"
	"github.com/LeJamon/goRWAd/internal/core/oracle"
	"github.com/LeJamon/goRWAd/internal/core/state"
	"github.com/LeJamon/goRWAd/internal/core/token"
	"github.com/LeJamon/goRWAd/internal/core/tx"
)

// TestEnv manages a test protocol environment. Time only moves when the test
// advances the clock, so time-window and staleness behavior is reproducible.
type TestEnv struct {
	t      *testing.T
	Store  *state.Store
	Oracle *oracle.Store
	Perms  *access.Registry
	Clock  *ManualClock
	Engine *tx.Engine
}

// NewTestEnv creates a test environment with an empty store, a fresh role
// registry, and an engine driven by a manual clock.
func NewTestEnv(t *testing.T, opts ...tx.Option) *TestEnv {
	t.Helper()

	store := state.NewStore()
	prices, err := oracle.NewStore(0)
	if err != nil {
		t.Fatalf("failed to create price store: %v", err)
	}
	perms := access.NewRegistry()
	clock := NewManualClock()

	all := append([]tx.Option{tx.WithClock(clock.Now)}, opts...)
	engine := tx.NewEngine(store, prices, perms, all...)

	return &TestEnv{
		t:      t,
		Store:  store,
		Oracle: prices,
		Perms:  perms,
		Clock:  clock,
		Engine: engine,
	}
}

// Submit applies a transaction through the engine.
func (e *TestEnv) Submit(txn tx.Transaction) tx.Result {
	e.t.Helper()
	return e.Engine.Apply(txn)
}

// Fund credits an account with tokens, outside of any transaction.
func (e *TestEnv) Fund(tokenID, account string, amt int64) {
	e.t.Helper()
	if err := token.Mint(e.Store, tokenID, account, big.NewInt(amt)); err != nil {
		e.t.Fatalf("failed to fund %s with %d %s: %v", account, amt, tokenID, err)
	}
}

// FundBig credits an account with a big.Int token amount.
func (e *TestEnv) FundBig(tokenID, account string, amt *big.Int) {
	e.t.Helper()
	if err := token.Mint(e.Store, tokenID, account, amt); err != nil {
		e.t.Fatalf("failed to fund %s with %s %s: %v", account, amt, tokenID, err)
	}
}

// Balance returns an account's token balance.
func (e *TestEnv) Balance(tokenID, account string) *big.Int {
	e.t.Helper()
	bal, err := token.BalanceOf(e.Store, tokenID, account)
	if err != nil {
		e.t.Fatalf("failed to read balance of %s: %v", account, err)
	}
	return bal
}

// Grant gives an account a role.
func (e *TestEnv) Grant(role access.Role, accounts ...string) {
	for _, a := range accounts {
		e.Perms.Grant(role, a)
	}
}

// PassKyc marks accounts as KYC-passed.
func (e *TestEnv) PassKyc(accounts ...string) {
	for _, a := range accounts {
		e.Perms.SetKyc(a, true)
	}
}

// SetPrice publishes a price round for an asset and activates it.
func (e *TestEnv) SetPrice(assetID string, price *big.Int) uint64 {
	e.t.Helper()
	round, err := e.Oracle.SetPrice(assetID, price, e.Clock.Now())
	if err != nil {
		e.t.Fatalf("failed to set price for %s: %v", assetID, err)
	}
	e.Oracle.SetActive(assetID, true)
	return round
}

// Advance moves the clock forward by d.
func (e *TestEnv) Advance(d time.Duration) {
	e.Clock.Advance(d)
}

// Now returns the engine's current close time.
func (e *TestEnv) Now() int64 {
	return e.Clock.Now().Unix()
}

// Vault loads a vault record, failing the test if it is absent.
func (e *TestEnv) Vault(assetID string) *state.Vault {
	e.t.Helper()
	rec, err := state.GetVault(e.Store, assetID)
	if err != nil {
		e.t.Fatalf("failed to read vault %s: %v", assetID, err)
	}
	if rec == nil {
		e.t.Fatalf("vault %s does not exist", assetID)
	}
	return rec
}

// Offering loads an offering record, failing the test if it is absent.
func (e *TestEnv) Offering(id uint64) *state.Offering {
	e.t.Helper()
	rec, err := state.GetOffering(e.Store, id)
	if err != nil {
		e.t.Fatalf("failed to read offering %d: %v", id, err)
	}
	if rec == nil {
		e.t.Fatalf("offering %d does not exist", id)
	}
	return rec
}
