// Package token implements the escrowed fungible-token ledger. Balances and
// allowances live in the protocol state view, so token movements inside a
// transaction share its all-or-nothing commit.
package token

import (
	"errors"
	"math/big"

	"github.com/LeJamon/goRWAd/internal/core/state"
)

var (
	ErrBadAmount             = errors.New("token: amount cannot be negative")
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
)

// BalanceOf returns the balance of an account, zero when absent.
func BalanceOf(v state.LedgerView, tokenID, account string) (*big.Int, error) {
	return state.GetBalance(v, tokenID, account)
}

// Transfer moves amount from one account to another. Fails atomically on
// insufficient balance. A zero amount is a no-op that still validates the
// sender's balance record.
func Transfer(v state.LedgerView, tokenID, from, to string, amt *big.Int) error {
	if amt.Sign() < 0 {
		return ErrBadAmount
	}
	fromBal, err := state.GetBalance(v, tokenID, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	toBal, err := state.GetBalance(v, tokenID, to)
	if err != nil {
		return err
	}
	if err := state.SetBalance(v, tokenID, from, new(big.Int).Sub(fromBal, amt)); err != nil {
		return err
	}
	return state.SetBalance(v, tokenID, to, new(big.Int).Add(toBal, amt))
}

// TransferFrom moves amount from an owner on behalf of a spender, consuming
// allowance. A spender equal to the owner bypasses the allowance check.
func TransferFrom(v state.LedgerView, tokenID, spender, from, to string, amt *big.Int) error {
	if amt.Sign() < 0 {
		return ErrBadAmount
	}
	if spender != from {
		allowance, err := state.GetAllowance(v, tokenID, from, spender)
		if err != nil {
			return err
		}
		if allowance.Cmp(amt) < 0 {
			return ErrInsufficientAllowance
		}
		if err := state.SetAllowance(v, tokenID, from, spender, new(big.Int).Sub(allowance, amt)); err != nil {
			return err
		}
	}
	return Transfer(v, tokenID, from, to, amt)
}

// Approve sets a spend allowance.
func Approve(v state.LedgerView, tokenID, owner, spender string, amt *big.Int) error {
	if amt.Sign() < 0 {
		return ErrBadAmount
	}
	return state.SetAllowance(v, tokenID, owner, spender, amt)
}

// Allowance returns the remaining spend allowance.
func Allowance(v state.LedgerView, tokenID, owner, spender string) (*big.Int, error) {
	return state.GetAllowance(v, tokenID, owner, spender)
}

// Mint creates new units in an account.
func Mint(v state.LedgerView, tokenID, to string, amt *big.Int) error {
	if amt.Sign() < 0 {
		return ErrBadAmount
	}
	bal, err := state.GetBalance(v, tokenID, to)
	if err != nil {
		return err
	}
	return state.SetBalance(v, tokenID, to, new(big.Int).Add(bal, amt))
}

// Burn destroys units held by an account.
func Burn(v state.LedgerView, tokenID, from string, amt *big.Int) error {
	if amt.Sign() < 0 {
		return ErrBadAmount
	}
	bal, err := state.GetBalance(v, tokenID, from)
	if err != nil {
		return err
	}
	if bal.Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	return state.SetBalance(v, tokenID, from, new(big.Int).Sub(bal, amt))
}
