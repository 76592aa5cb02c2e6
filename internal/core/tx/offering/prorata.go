package offering

import (
	"math/big"

	"github.com/LeJamon/goRWAd/internal/core/amount"
	"github.com/LeJamon/goRWAd/internal/core/state"
)

// Pro-rata settlement arithmetic. All divisions floor, so the sum of shares
// over all subscribers never exceeds the settled sale amount, and the sum of
// accepted costs never exceeds the target.

// SaleShare returns floor(subscribed * totalSale / totalRaised), the
// subscriber's allocation of the sale token. Zero when nothing was raised.
func SaleShare(rec *state.Offering, subscribed *big.Int) *big.Int {
	if rec.TotalRaised.Sign() == 0 {
		return amount.Zero()
	}
	share, err := amount.MulDiv(subscribed, rec.TotalSale, rec.TotalRaised, amount.RoundDown)
	if err != nil {
		return amount.Zero()
	}
	return share
}

// AcceptedCost returns what a subscriber actually pays. Under- or
// exactly-subscribed offerings keep the full subscription; over-subscribed
// offerings scale it to floor(subscribed * target / totalRaised).
func AcceptedCost(rec *state.Offering, subscribed *big.Int) *big.Int {
	if rec.TotalRaised.Cmp(rec.TargetRaise) <= 0 {
		return amount.Clone(subscribed)
	}
	cost, err := amount.MulDiv(subscribed, rec.TargetRaise, rec.TotalRaised, amount.RoundDown)
	if err != nil {
		return amount.Zero()
	}
	return cost
}

// Refund returns the payment returned to a subscriber at claim time:
// whatever was subscribed beyond the accepted cost.
func Refund(rec *state.Offering, subscribed *big.Int) *big.Int {
	return new(big.Int).Sub(subscribed, AcceptedCost(rec, subscribed))
}
