package oracle

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestPriceSafe(t *testing.T) {
	s, err := NewStore(16)
	require.NoError(t, err)

	_, _, err = s.PriceSafe("GOLD", time.Hour, t0)
	require.ErrorIs(t, err, ErrUnknownAsset)

	_, err = s.SetPrice("GOLD", big.NewInt(2_000_000), t0)
	require.NoError(t, err)

	// Known but inactive.
	_, _, err = s.PriceSafe("GOLD", time.Hour, t0)
	require.ErrorIs(t, err, ErrAssetInactive)

	s.SetActive("GOLD", true)
	price, age, err := s.PriceSafe("GOLD", time.Hour, t0.Add(10*time.Minute))
	require.NoError(t, err)
	require.Equal(t, int64(2_000_000), price.Int64())
	require.Equal(t, 10*time.Minute, age)

	// Past the cutoff.
	_, _, err = s.PriceSafe("GOLD", time.Hour, t0.Add(61*time.Minute))
	require.ErrorIs(t, err, ErrStalePrice)

	// Deactivation wins over freshness.
	s.SetActive("GOLD", false)
	_, _, err = s.PriceSafe("GOLD", time.Hour, t0)
	require.ErrorIs(t, err, ErrAssetInactive)
}

func TestSetPriceValidation(t *testing.T) {
	s, err := NewStore(16)
	require.NoError(t, err)

	_, err = s.SetPrice("GOLD", big.NewInt(0), t0)
	require.ErrorIs(t, err, ErrBadPrice)
	_, err = s.SetPrice("GOLD", nil, t0)
	require.ErrorIs(t, err, ErrBadPrice)
}

func TestRoundHistory(t *testing.T) {
	s, err := NewStore(16)
	require.NoError(t, err)

	for i := int64(1); i <= 3; i++ {
		id, err := s.SetPrice("GOLD", big.NewInt(i*100), t0.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.Equal(t, uint64(i), id)
	}
	require.Equal(t, uint64(3), s.LatestRound("GOLD"))

	round, err := s.Round("GOLD", 2)
	require.NoError(t, err)
	require.Equal(t, int64(200), round.Price.Int64())
	require.Equal(t, t0.Add(2*time.Minute).Unix(), round.UpdatedAt)

	_, err = s.Round("GOLD", 9)
	require.Error(t, err)
	_, err = s.Round("OIL", 1)
	require.ErrorIs(t, err, ErrUnknownAsset)
}

func TestRoundEviction(t *testing.T) {
	s, err := NewStore(2)
	require.NoError(t, err)

	for i := int64(1); i <= 3; i++ {
		_, err := s.SetPrice("GOLD", big.NewInt(i), t0)
		require.NoError(t, err)
	}

	// Capacity 2: round 1 evicted, 2 and 3 retained.
	_, err = s.Round("GOLD", 1)
	require.ErrorIs(t, err, ErrRoundEvicted)
	_, err = s.Round("GOLD", 3)
	require.NoError(t, err)
}

func TestStoredPriceIsCopied(t *testing.T) {
	s, err := NewStore(16)
	require.NoError(t, err)

	p := big.NewInt(500)
	_, err = s.SetPrice("GOLD", p, t0)
	require.NoError(t, err)
	p.SetInt64(9)

	s.SetActive("GOLD", true)
	got, _, err := s.PriceSafe("GOLD", time.Hour, t0)
	require.NoError(t, err)
	require.Equal(t, int64(500), got.Int64())
}
