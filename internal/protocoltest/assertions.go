package protocoltest

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goRWAd/internal/core/tx"
)

// RequireSuccess asserts a transaction applied successfully.
func RequireSuccess(t *testing.T, result tx.Result) {
	t.Helper()
	require.Equal(t, tx.TesSUCCESS, result,
		"expected tesSUCCESS, got %s", result)
}

// RequireResult asserts a transaction produced a specific result code.
func RequireResult(t *testing.T, result, expected tx.Result) {
	t.Helper()
	require.Equal(t, expected, result,
		"expected %s, got %s", expected, result)
}

// RequireBalance asserts an account holds an exact token balance.
func RequireBalance(t *testing.T, env *TestEnv, tokenID, account string, expected int64) {
	t.Helper()
	actual := env.Balance(tokenID, account)
	require.Zero(t, actual.Cmp(big.NewInt(expected)),
		"%s balance of %s mismatch: expected %d, got %s", tokenID, account, expected, actual)
}

// RequireBalanceBig asserts an account holds an exact big.Int token balance.
func RequireBalanceBig(t *testing.T, env *TestEnv, tokenID, account string, expected *big.Int) {
	t.Helper()
	actual := env.Balance(tokenID, account)
	require.Zero(t, actual.Cmp(expected),
		"%s balance of %s mismatch: expected %s, got %s", tokenID, account, expected, actual)
}
