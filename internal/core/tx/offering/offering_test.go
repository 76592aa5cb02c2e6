package offering

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goRWAd/internal/core/access"
	"github.com/LeJamon/goRWAd/internal/core/state"
	"github.com/LeJamon/goRWAd/internal/core/tx"
	"github.com/LeJamon/goRWAd/internal/protocoltest"
)

const (
	payToken  = "USD"
	saleToken = "RWA"
	teller    = "teller"
)

// setupOffering returns an environment with offering 1 opening in 100
// seconds and closing 100 seconds later.
func setupOffering(t *testing.T, target int64) *protocoltest.TestEnv {
	t.Helper()
	env := protocoltest.NewTestEnv(t)
	env.Grant(access.RoleOwner, "admin")
	env.Grant(access.RoleTeller, teller)

	create := NewOfferingCreate("admin", saleToken, big.NewInt(target),
		env.Now()+100, env.Now()+200)
	protocoltest.RequireSuccess(t, env.Submit(create))
	return env
}

// openWindow advances the clock into the subscription window.
func openWindow(env *protocoltest.TestEnv) { env.Advance(150 * time.Second) }

// closeWindow advances the clock past the end of the window.
func closeWindow(env *protocoltest.TestEnv) { env.Advance(300 * time.Second) }

func TestOfferingCreate(t *testing.T) {
	env := setupOffering(t, 1000)

	rec := env.Offering(1)
	require.Equal(t, uint64(1), rec.ID)
	require.Equal(t, "admin", rec.Owner)
	require.Equal(t, saleToken, rec.SaleToken)
	require.Equal(t, payToken, rec.PaymentToken)
	require.Equal(t, state.OfferingActive, rec.Status)
	require.Zero(t, rec.TotalRaised.Sign())
	require.Zero(t, rec.TotalSale.Sign())

	// Ids are sequential.
	second := NewOfferingCreate("admin", saleToken, big.NewInt(500),
		env.Now()+100, env.Now()+200)
	protocoltest.RequireSuccess(t, env.Submit(second))
	require.Equal(t, uint64(2), env.Offering(2).ID)
}

func TestOfferingCreateGuards(t *testing.T) {
	env := protocoltest.NewTestEnv(t)
	env.Grant(access.RoleOwner, "admin")

	noRole := NewOfferingCreate("nobody", saleToken, big.NewInt(1000),
		env.Now()+100, env.Now()+200)
	protocoltest.RequireResult(t, env.Submit(noRole), tx.TecNO_PERMISSION)

	backwards := NewOfferingCreate("admin", saleToken, big.NewInt(1000),
		env.Now()+200, env.Now()+100)
	protocoltest.RequireResult(t, env.Submit(backwards), tx.TemBAD_TIME_RANGE)

	past := NewOfferingCreate("admin", saleToken, big.NewInt(1000),
		env.Now()-100, env.Now()+200)
	protocoltest.RequireResult(t, env.Submit(past), tx.TemBAD_TIME_RANGE)

	zeroTarget := NewOfferingCreate("admin", saleToken, big.NewInt(0),
		env.Now()+100, env.Now()+200)
	protocoltest.RequireResult(t, env.Submit(zeroTarget), tx.TemBAD_AMOUNT)
}

func TestOfferingCancel(t *testing.T) {
	env := setupOffering(t, 1000)

	protocoltest.RequireResult(t,
		env.Submit(NewOfferingCancel("nobody", 1)), tx.TecNO_PERMISSION)

	protocoltest.RequireSuccess(t, env.Submit(NewOfferingCancel("admin", 1)))
	require.Equal(t, state.OfferingCancelled, env.Offering(1).Status)

	// Cancelling twice is a status violation.
	protocoltest.RequireResult(t,
		env.Submit(NewOfferingCancel("admin", 1)), tx.TecWRONG_STATUS)
}

func TestOfferingCancelAfterStart(t *testing.T) {
	env := setupOffering(t, 1000)
	openWindow(env)
	protocoltest.RequireResult(t,
		env.Submit(NewOfferingCancel("admin", 1)), tx.TecENDED)
}

func TestOfferingSubscribe(t *testing.T) {
	env := setupOffering(t, 1000)
	env.Fund(payToken, "alice", 1000)

	early := NewOfferingSubscribe("alice", 1, big.NewInt(100))
	protocoltest.RequireResult(t, env.Submit(early), tx.TecNOT_STARTED)

	openWindow(env)
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingSubscribe("alice", 1, big.NewInt(100))))
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingSubscribe("alice", 1, big.NewInt(50))))

	rec := env.Offering(1)
	require.Zero(t, rec.TotalRaised.Cmp(big.NewInt(150)), "subscriptions are additive")
	protocoltest.RequireBalance(t, env, payToken, rec.EscrowAccount(), 150)
	protocoltest.RequireBalance(t, env, payToken, "alice", 850)

	part, err := Subscription(env.Store, 1, "alice")
	require.NoError(t, err)
	require.Zero(t, part.Subscribed.Cmp(big.NewInt(150)))

	closeWindow(env)
	late := NewOfferingSubscribe("alice", 1, big.NewInt(100))
	protocoltest.RequireResult(t, env.Submit(late), tx.TecENDED)
}

func TestOfferingSubscribeGuards(t *testing.T) {
	env := setupOffering(t, 1000)
	openWindow(env)

	zero := NewOfferingSubscribe("alice", 1, big.NewInt(0))
	protocoltest.RequireResult(t, env.Submit(zero), tx.TemBAD_AMOUNT)

	unknown := NewOfferingSubscribe("alice", 99, big.NewInt(100))
	protocoltest.RequireResult(t, env.Submit(unknown), tx.TecINVALID_ID)

	// An unfunded subscriber commits nothing.
	broke := NewOfferingSubscribe("alice", 1, big.NewInt(100))
	protocoltest.RequireResult(t, env.Submit(broke), tx.TecINSUFFICIENT_FUNDS)
	require.Zero(t, env.Offering(1).TotalRaised.Sign())
}

func TestOfferingSettlementSequence(t *testing.T) {
	env := setupOffering(t, 1000)
	env.Fund(payToken, "alice", 500)
	openWindow(env)
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingSubscribe("alice", 1, big.NewInt(500))))

	// Nothing in the sequence runs before the window closes.
	protocoltest.RequireResult(t,
		env.Submit(NewOfferingWithdrawFunds(teller, 1)), tx.TecNOT_ENDED)

	closeWindow(env)

	// Each step requires the one before it.
	protocoltest.RequireResult(t,
		env.Submit(NewOfferingDepositSale(teller, 1, big.NewInt(100))), tx.TecWRONG_STATUS)
	protocoltest.RequireResult(t,
		env.Submit(NewOfferingAllowClaim(teller, 1)), tx.TecWRONG_STATUS)
	protocoltest.RequireResult(t,
		env.Submit(NewOfferingClaim("alice", 1)), tx.TecWRONG_STATUS)

	// Teller only.
	protocoltest.RequireResult(t,
		env.Submit(NewOfferingWithdrawFunds("alice", 1)), tx.TecNO_PERMISSION)

	protocoltest.RequireSuccess(t, env.Submit(NewOfferingWithdrawFunds(teller, 1)))
	require.Equal(t, state.OfferingWithdrawn, env.Offering(1).Status)
	protocoltest.RequireBalance(t, env, payToken, teller, 500)

	protocoltest.RequireResult(t,
		env.Submit(NewOfferingWithdrawFunds(teller, 1)), tx.TecALREADY_WITHDRAWN)

	env.Fund(saleToken, teller, 2000)
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingDepositSale(teller, 1, big.NewInt(2000))))
	rec := env.Offering(1)
	require.Equal(t, state.OfferingSettled, rec.Status)
	require.Zero(t, rec.TotalSale.Cmp(big.NewInt(2000)))

	protocoltest.RequireSuccess(t, env.Submit(NewOfferingAllowClaim(teller, 1)))
	require.Equal(t, state.OfferingClaimAllowed, env.Offering(1).Status)
}

func TestOfferingEndToEnd(t *testing.T) {
	// Target 1000 USDC, one subscriber for 500, settled with 2e18 sale
	// tokens: the subscriber takes the whole sale, no refund.
	env := setupOffering(t, 1_000_000_000)
	env.Fund(payToken, "alice", 500_000_000)
	saleAmount := new(big.Int).Mul(big.NewInt(2), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

	openWindow(env)
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingSubscribe("alice", 1, big.NewInt(500_000_000))))
	closeWindow(env)

	protocoltest.RequireSuccess(t, env.Submit(NewOfferingWithdrawFunds(teller, 1)))
	protocoltest.RequireBalance(t, env, payToken, teller, 500_000_000)

	env.FundBig(saleToken, teller, saleAmount)
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingDepositSale(teller, 1, saleAmount)))
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingAllowClaim(teller, 1)))

	protocoltest.RequireSuccess(t, env.Submit(NewOfferingClaim("alice", 1)))
	protocoltest.RequireBalanceBig(t, env, saleToken, "alice", saleAmount)
	protocoltest.RequireBalance(t, env, payToken, "alice", 0)

	// Escrow is fully drained.
	escrow := env.Offering(1).EscrowAccount()
	protocoltest.RequireBalance(t, env, saleToken, escrow, 0)
	protocoltest.RequireBalance(t, env, payToken, escrow, 0)
}

func TestOfferingOverSubscribed(t *testing.T) {
	env := setupOffering(t, 1000)
	env.Fund(payToken, "alice", 600)
	env.Fund(payToken, "bob", 900)

	openWindow(env)
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingSubscribe("alice", 1, big.NewInt(600))))
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingSubscribe("bob", 1, big.NewInt(900))))
	closeWindow(env)

	// Teller takes the target; the 500 overage stays escrowed for
	// refunds.
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingWithdrawFunds(teller, 1)))
	protocoltest.RequireBalance(t, env, payToken, teller, 1000)
	escrow := env.Offering(1).EscrowAccount()
	protocoltest.RequireBalance(t, env, payToken, escrow, 500)

	env.Fund(saleToken, teller, 3000)
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingDepositSale(teller, 1, big.NewInt(3000))))
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingAllowClaim(teller, 1)))

	protocoltest.RequireSuccess(t, env.Submit(NewOfferingClaim("alice", 1)))
	protocoltest.RequireBalance(t, env, saleToken, "alice", 1200)
	protocoltest.RequireBalance(t, env, payToken, "alice", 200)

	protocoltest.RequireSuccess(t, env.Submit(NewOfferingClaim("bob", 1)))
	protocoltest.RequireBalance(t, env, saleToken, "bob", 1800)
	protocoltest.RequireBalance(t, env, payToken, "bob", 300)

	protocoltest.RequireBalance(t, env, saleToken, escrow, 0)
	protocoltest.RequireBalance(t, env, payToken, escrow, 0)
}

func TestOfferingClaimIdempotent(t *testing.T) {
	env := setupOffering(t, 1000)
	env.Fund(payToken, "alice", 500)
	openWindow(env)
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingSubscribe("alice", 1, big.NewInt(500))))
	closeWindow(env)
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingWithdrawFunds(teller, 1)))
	env.Fund(saleToken, teller, 2000)
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingDepositSale(teller, 1, big.NewInt(2000))))
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingAllowClaim(teller, 1)))

	protocoltest.RequireSuccess(t, env.Submit(NewOfferingClaim("alice", 1)))
	before := env.Balance(saleToken, "alice")

	protocoltest.RequireResult(t, env.Submit(NewOfferingClaim("alice", 1)), tx.TecALREADY_CLAIMED)
	protocoltest.RequireBalanceBig(t, env, saleToken, "alice", before)
}

func TestOfferingClaimWithoutSubscription(t *testing.T) {
	env := setupOffering(t, 1000)
	env.Fund(payToken, "alice", 500)
	openWindow(env)
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingSubscribe("alice", 1, big.NewInt(500))))
	closeWindow(env)
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingWithdrawFunds(teller, 1)))
	env.Fund(saleToken, teller, 2000)
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingDepositSale(teller, 1, big.NewInt(2000))))
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingAllowClaim(teller, 1)))

	protocoltest.RequireResult(t, env.Submit(NewOfferingClaim("bob", 1)), tx.TecNO_SUBSCRIPTION)
}

func TestOfferingRefundWhenCancelled(t *testing.T) {
	env := setupOffering(t, 1000)
	env.Fund(payToken, "alice", 500)
	openWindow(env)
	protocoltest.RequireSuccess(t, env.Submit(NewOfferingSubscribe("alice", 1, big.NewInt(500))))

	// Refund requires a cancelled offering.
	protocoltest.RequireResult(t, env.Submit(NewOfferingRefund("alice", 1)), tx.TecWRONG_STATUS)

	// Force the cancelled status directly; the transactional path closes
	// the window before anyone can subscribe.
	rec := env.Offering(1)
	rec.Status = state.OfferingCancelled
	require.NoError(t, state.UpdateOffering(env.Store, rec))

	protocoltest.RequireSuccess(t, env.Submit(NewOfferingRefund("alice", 1)))
	protocoltest.RequireBalance(t, env, payToken, "alice", 500)

	protocoltest.RequireResult(t, env.Submit(NewOfferingRefund("alice", 1)), tx.TecALREADY_CLAIMED)
	protocoltest.RequireResult(t, env.Submit(NewOfferingRefund("bob", 1)), tx.TecNO_SUBSCRIPTION)
}

func TestOfferingQueries(t *testing.T) {
	env := setupOffering(t, 1000)

	_, err := Info(env.Store, 99)
	require.ErrorIs(t, err, ErrNotFound)

	open, err := IsOpen(env.Store, 1, env.Now())
	require.NoError(t, err)
	require.False(t, open, "not open before the start time")

	openWindow(env)
	open, err = IsOpen(env.Store, 1, env.Now())
	require.NoError(t, err)
	require.True(t, open)

	part, err := Subscription(env.Store, 1, "nobody")
	require.NoError(t, err)
	require.Zero(t, part.Subscribed.Sign())
	require.False(t, part.Claimed)
}
