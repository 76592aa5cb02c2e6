package offering

import (
	"math/big"

	"github.com/LeJamon/goRWAd/internal/core/amount"
	"github.com/LeJamon/goRWAd/internal/core/state"
	"github.com/LeJamon/goRWAd/internal/core/tx"
)

// OfferingSubscribe commits payment tokens to an open offering. Repeated
// subscriptions by the same account are additive.
type OfferingSubscribe struct {
	tx.BaseTx

	OfferingID uint64   `json:"OfferingID"`
	Amount     *big.Int `json:"Amount"`
}

// NewOfferingSubscribe creates an OfferingSubscribe transaction.
func NewOfferingSubscribe(account string, id uint64, amt *big.Int) *OfferingSubscribe {
	return &OfferingSubscribe{
		BaseTx:     *tx.NewBaseTx(tx.TypeOfferingSubscribe, account),
		OfferingID: id,
		Amount:     amt,
	}
}

// TxType returns the transaction type.
func (s *OfferingSubscribe) TxType() tx.Type { return tx.TypeOfferingSubscribe }

// Validate checks the transaction is well-formed.
func (s *OfferingSubscribe) Validate() error {
	if err := s.BaseTx.Validate(); err != nil {
		return err
	}
	if s.Amount == nil || s.Amount.Sign() <= 0 {
		return tx.ErrBadAmount
	}
	return nil
}

// Apply records the subscription and escrows the payment.
func (s *OfferingSubscribe) Apply(ctx *tx.ApplyContext) tx.Result {
	rec, res := loadOffering(ctx, s.OfferingID)
	if !res.Success() {
		return res
	}
	if rec.Status == state.OfferingCancelled {
		return tx.TecCANCELLED
	}
	now := ctx.Now()
	if now < rec.StartTime {
		return tx.TecNOT_STARTED
	}
	if now > rec.EndTime {
		return tx.TecENDED
	}

	part, err := state.GetParticipation(ctx.View, rec.ID, s.Account)
	if err != nil {
		return tx.TefINTERNAL
	}
	if part == nil {
		part = &state.Participation{Subscribed: amount.Zero()}
	}
	part.Subscribed = new(big.Int).Add(part.Subscribed, s.Amount)
	rec.TotalRaised = new(big.Int).Add(rec.TotalRaised, s.Amount)

	if err := state.PutParticipation(ctx.View, rec.ID, s.Account, part); err != nil {
		return tx.TefINTERNAL
	}
	if err := state.UpdateOffering(ctx.View, rec); err != nil {
		return tx.TefINTERNAL
	}
	return moveTokens(ctx.View, rec.PaymentToken, s.Account, rec.EscrowAccount(), s.Amount)
}
