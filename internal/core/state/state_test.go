package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordCodecRoundTrip(t *testing.T) {
	vault := &Vault{
		AssetID:       "GOLD",
		AssetDecimals: 6,
		ShareDecimals: 18,
		FeeCollector:  "collector",
		BuyFeeBps:     250,
		SellFeeBps:    100,
		MaxSupply:     new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1e18)),
		TotalSupply:   big.NewInt(42),
	}
	data, err := Encode(vault)
	require.NoError(t, err)

	var got Vault
	require.NoError(t, Decode(data, &got))
	require.Equal(t, vault.AssetID, got.AssetID)
	require.Equal(t, vault.BuyFeeBps, got.BuyFeeBps)
	require.Zero(t, vault.MaxSupply.Cmp(got.MaxSupply))
	require.Zero(t, vault.TotalSupply.Cmp(got.TotalSupply))
}

func TestOfferingCodecRoundTrip(t *testing.T) {
	off := &Offering{
		ID:           3,
		Owner:        "alice",
		SaleToken:    "SALE",
		PaymentToken: "USD",
		StartTime:    100,
		EndTime:      200,
		TargetRaise:  big.NewInt(1000),
		TotalRaised:  big.NewInt(0),
		TotalSale:    big.NewInt(0),
		Status:       OfferingWithdrawn,
	}
	data, err := Encode(off)
	require.NoError(t, err)

	var got Offering
	require.NoError(t, Decode(data, &got))
	require.Equal(t, off.ID, got.ID)
	require.Equal(t, OfferingWithdrawn, got.Status)
	require.Zero(t, got.TargetRaise.Cmp(big.NewInt(1000)))
	require.Zero(t, got.TotalRaised.Sign())
}

func TestStatusTransitions(t *testing.T) {
	allowed := map[OfferingStatus][]OfferingStatus{
		OfferingActive:    {OfferingWithdrawn, OfferingCancelled},
		OfferingWithdrawn: {OfferingSettled},
		OfferingSettled:   {OfferingClaimAllowed},
	}
	all := []OfferingStatus{
		OfferingActive, OfferingWithdrawn, OfferingSettled,
		OfferingClaimAllowed, OfferingCancelled,
	}
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			require.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStoreBasicOps(t *testing.T) {
	s := NewStore()

	data, err := s.Read("missing")
	require.NoError(t, err)
	require.Nil(t, data)

	require.NoError(t, s.Insert("a", []byte("1")))
	require.ErrorIs(t, s.Insert("a", []byte("2")), ErrEntryExists)
	require.NoError(t, s.Update("a", []byte("2")))
	require.ErrorIs(t, s.Update("b", nil), ErrEntryNotFound)

	data, err = s.Read("a")
	require.NoError(t, err)
	require.Equal(t, []byte("2"), data)

	require.NoError(t, s.Erase("a"))
	require.ErrorIs(t, s.Erase("a"), ErrEntryNotFound)
}

func TestStoreKeysPrefix(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Insert(VaultKey("GOLD"), []byte("a")))
	require.NoError(t, s.Insert(VaultKey("OIL"), []byte("b")))
	require.NoError(t, s.Insert(OfferingKey(1), []byte("c")))

	require.Equal(t, []string{VaultKey("GOLD"), VaultKey("OIL")}, s.Keys(PrefixVault))
	require.Equal(t, []string{OfferingKey(1)}, s.Keys(PrefixOffering))
}

func TestApplyStateTableCommit(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Insert("existing", []byte("old")))

	table := NewApplyStateTable(s)
	require.NoError(t, table.Insert("new", []byte("n")))
	require.NoError(t, table.Update("existing", []byte("updated")))

	// Base untouched before commit.
	data, _ := s.Read("new")
	require.Nil(t, data)
	data, _ = s.Read("existing")
	require.Equal(t, []byte("old"), data)

	require.NoError(t, table.Commit())
	data, _ = s.Read("new")
	require.Equal(t, []byte("n"), data)
	data, _ = s.Read("existing")
	require.Equal(t, []byte("updated"), data)
}

func TestApplyStateTableDiscard(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Insert("k", []byte("v")))

	table := NewApplyStateTable(s)
	require.NoError(t, table.Update("k", []byte("changed")))
	require.NoError(t, table.Erase("k")) // erase the modify

	// Dropping the table leaves the base untouched.
	data, _ := s.Read("k")
	require.Equal(t, []byte("v"), data)
}

func TestApplyStateTableInsertEraseInsert(t *testing.T) {
	s := NewStore()
	table := NewApplyStateTable(s)

	require.NoError(t, table.Insert("k", []byte("1")))
	require.ErrorIs(t, table.Insert("k", []byte("2")), ErrEntryExists)
	require.NoError(t, table.Erase("k"))
	ok, _ := table.Exists("k")
	require.False(t, ok)
	require.NoError(t, table.Insert("k", []byte("3")))
	require.NoError(t, table.Commit())

	data, _ := s.Read("k")
	require.Equal(t, []byte("3"), data)
}

func TestNextOfferingID(t *testing.T) {
	s := NewStore()
	table := NewApplyStateTable(s)

	id, err := NextOfferingID(table)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)
	id, err = NextOfferingID(table)
	require.NoError(t, err)
	require.Equal(t, uint64(2), id)
	require.NoError(t, table.Commit())

	id, err = NextOfferingID(NewApplyStateTable(s))
	require.NoError(t, err)
	require.Equal(t, uint64(3), id)
}

func TestBalanceAccessors(t *testing.T) {
	s := NewStore()
	bal, err := GetBalance(s, "USD", "alice")
	require.NoError(t, err)
	require.Zero(t, bal.Sign())

	require.NoError(t, SetBalance(s, "USD", "alice", big.NewInt(500)))
	bal, err = GetBalance(s, "USD", "alice")
	require.NoError(t, err)
	require.Equal(t, int64(500), bal.Int64())

	require.NoError(t, SetBalance(s, "USD", "alice", big.NewInt(0)))
	bal, err = GetBalance(s, "USD", "alice")
	require.NoError(t, err)
	require.Zero(t, bal.Sign())
}
