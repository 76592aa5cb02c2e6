package grpc

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LeJamon/goRWAd/internal/core/access"
	"github.com/LeJamon/goRWAd/internal/core/oracle"
	"github.com/LeJamon/goRWAd/internal/core/state"
	"github.com/LeJamon/goRWAd/internal/core/tx"
	"github.com/LeJamon/goRWAd/internal/storage/history"
)

var testClock = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, journal HistorySource) *Server {
	t.Helper()

	store := state.NewStore()
	require.NoError(t, state.InsertVault(store, &state.Vault{
		AssetID:       "TBILL",
		AssetDecimals: 6,
		ShareDecimals: 18,
		FeeCollector:  "collector",
		BuyFeeBps:     500,
		SellFeeBps:    500,
		MaxSupply:     big.NewInt(1_000_000),
		TotalSupply:   big.NewInt(250_000),
	}))
	require.NoError(t, state.InsertOffering(store, &state.Offering{
		ID:           1,
		Owner:        "admin",
		SaleToken:    "RWA",
		PaymentToken: "USD",
		StartTime:    testClock.Unix(),
		EndTime:      testClock.Add(time.Hour).Unix(),
		TargetRaise:  big.NewInt(1000),
		TotalRaised:  big.NewInt(400),
		TotalSale:    big.NewInt(0),
		Status:       state.OfferingActive,
	}))
	require.NoError(t, state.PutParticipation(store, 1, "alice", &state.Participation{
		Subscribed: big.NewInt(400),
	}))
	require.NoError(t, state.SetBalance(store, "USD", "alice", big.NewInt(600)))
	require.NoError(t, state.SetAllowance(store, "USD", "alice", "bob", big.NewInt(50)))

	orc, err := oracle.NewStore(oracle.DefaultRoundCacheSize)
	require.NoError(t, err)
	_, err = orc.SetPrice("TBILL", big.NewInt(2_000_000), testClock.Add(-10*time.Minute))
	require.NoError(t, err)
	orc.SetActive("TBILL", true)

	perms := access.NewRegistry()
	perms.Grant(access.RoleTeller, "alice")
	perms.Grant(access.RoleWhitelisted, "alice")
	perms.SetKyc("alice", true)

	backend := NewLocalBackend(store, orc, perms, journal, time.Hour,
		func() time.Time { return testClock })

	server, err := NewServer(DefaultServerConfig(), backend)
	require.NoError(t, err)
	return server
}

func requireCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, code, st.Code())
}

func TestGetVault(t *testing.T) {
	server := newTestServer(t, nil)
	ctx := context.Background()

	resp, err := server.GetVault(ctx, &GetVaultRequest{AssetID: "TBILL"})
	require.NoError(t, err)
	assert.Equal(t, "TBILL", resp.AssetID)
	assert.Equal(t, uint16(500), resp.BuyFeeBps)
	assert.Equal(t, "1000000", resp.MaxSupply)
	assert.Equal(t, "250000", resp.TotalSupply)
	assert.Equal(t, "share:TBILL", resp.ShareToken)
	assert.Equal(t, "vault:TBILL", resp.EscrowAccount)

	_, err = server.GetVault(ctx, &GetVaultRequest{AssetID: "GOLD"})
	requireCode(t, err, codes.NotFound)

	_, err = server.GetVault(ctx, &GetVaultRequest{})
	requireCode(t, err, codes.InvalidArgument)
}

func TestGetOffering(t *testing.T) {
	server := newTestServer(t, nil)
	ctx := context.Background()

	resp, err := server.GetOffering(ctx, &GetOfferingRequest{OfferingID: 1})
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.Owner)
	assert.Equal(t, "RWA", resp.SaleToken)
	assert.Equal(t, "1000", resp.TargetRaise)
	assert.Equal(t, "400", resp.TotalRaised)
	assert.Equal(t, "Active", resp.Status)
	assert.Equal(t, "offering:1", resp.EscrowAccount)

	_, err = server.GetOffering(ctx, &GetOfferingRequest{OfferingID: 99})
	requireCode(t, err, codes.NotFound)
}

func TestGetParticipation(t *testing.T) {
	server := newTestServer(t, nil)
	ctx := context.Background()

	resp, err := server.GetParticipation(ctx, &GetParticipationRequest{OfferingID: 1, Account: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "400", resp.Subscribed)
	assert.False(t, resp.Claimed)

	// Never subscribed: zero record, not an error
	resp, err = server.GetParticipation(ctx, &GetParticipationRequest{OfferingID: 1, Account: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "0", resp.Subscribed)

	_, err = server.GetParticipation(ctx, &GetParticipationRequest{OfferingID: 99, Account: "alice"})
	requireCode(t, err, codes.NotFound)
}

func TestGetBalanceAndAllowance(t *testing.T) {
	server := newTestServer(t, nil)
	ctx := context.Background()

	bal, err := server.GetBalance(ctx, &GetBalanceRequest{Token: "USD", Account: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "600", bal.Balance)

	bal, err = server.GetBalance(ctx, &GetBalanceRequest{Token: "USD", Account: "nobody"})
	require.NoError(t, err)
	assert.Equal(t, "0", bal.Balance)

	allow, err := server.GetAllowance(ctx, &GetAllowanceRequest{Token: "USD", Owner: "alice", Spender: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "50", allow.Allowance)

	_, err = server.GetBalance(ctx, &GetBalanceRequest{Token: "USD"})
	requireCode(t, err, codes.InvalidArgument)
}

func TestGetAccount(t *testing.T) {
	server := newTestServer(t, nil)
	ctx := context.Background()

	resp, err := server.GetAccount(ctx, &GetAccountRequest{Account: "alice"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"teller", "whitelisted"}, resp.Roles)
	assert.True(t, resp.KycPassed)

	resp, err = server.GetAccount(ctx, &GetAccountRequest{Account: "bob"})
	require.NoError(t, err)
	assert.Empty(t, resp.Roles)
	assert.False(t, resp.KycPassed)
}

func TestGetPrice(t *testing.T) {
	server := newTestServer(t, nil)
	ctx := context.Background()

	resp, err := server.GetPrice(ctx, &GetPriceRequest{AssetID: "TBILL"})
	require.NoError(t, err)
	assert.Equal(t, "2000000", resp.Price)
	assert.Equal(t, uint64(1), resp.RoundID)
	assert.Equal(t, int64(600), resp.AgeSeconds)

	// Historical round
	resp, err = server.GetPrice(ctx, &GetPriceRequest{AssetID: "TBILL", RoundID: 1})
	require.NoError(t, err)
	assert.Equal(t, "2000000", resp.Price)
	assert.Equal(t, testClock.Add(-10*time.Minute).Unix(), resp.UpdatedAt)

	_, err = server.GetPrice(ctx, &GetPriceRequest{AssetID: "GOLD"})
	requireCode(t, err, codes.NotFound)

	_, err = server.GetPrice(ctx, &GetPriceRequest{AssetID: "TBILL", RoundID: 7})
	requireCode(t, err, codes.InvalidArgument)
}

func TestGetTransaction(t *testing.T) {
	journal, err := history.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer journal.Close()

	require.NoError(t, journal.Record(tx.JournalEntry{
		Seq:       1,
		TxType:    "VaultDeposit",
		Account:   "alice",
		Result:    "tesSUCCESS",
		CloseTime: testClock.Unix(),
	}))

	server := newTestServer(t, journal)
	ctx := context.Background()

	resp, err := server.GetTransaction(ctx, &GetTransactionRequest{Seq: 1})
	require.NoError(t, err)
	assert.Equal(t, "VaultDeposit", resp.TxType)
	assert.Equal(t, "tesSUCCESS", resp.Result)

	_, err = server.GetTransaction(ctx, &GetTransactionRequest{Seq: 42})
	requireCode(t, err, codes.NotFound)

	list, err := server.GetAccountTransactions(ctx, &GetAccountTransactionsRequest{Account: "alice"})
	require.NoError(t, err)
	require.Len(t, list.Transactions, 1)
	assert.Equal(t, uint64(1), list.Transactions[0].Seq)
}

func TestHistoryDisabled(t *testing.T) {
	server := newTestServer(t, nil)
	ctx := context.Background()

	_, err := server.GetTransaction(ctx, &GetTransactionRequest{Seq: 1})
	requireCode(t, err, codes.Unimplemented)

	_, err = server.GetAccountTransactions(ctx, &GetAccountTransactionsRequest{Account: "alice"})
	requireCode(t, err, codes.Unimplemented)
}

func TestServerLifecycle(t *testing.T) {
	server := newTestServer(t, nil)
	server.config.Address = "127.0.0.1:0"

	require.NoError(t, server.StartAsync())
	assert.True(t, server.IsRunning())
	assert.NotEmpty(t, server.Address())

	require.Error(t, server.StartAsync())

	server.Stop()
	assert.False(t, server.IsRunning())
}
