package offering

import (
	"github.com/LeJamon/goRWAd/internal/core/state"
	"github.com/LeJamon/goRWAd/internal/core/tx"
)

// OfferingClaim pays out a subscriber's pro-rata sale-token share, plus the
// refund of any unaccepted subscription when the offering over-raised.
type OfferingClaim struct {
	tx.BaseTx

	OfferingID uint64 `json:"OfferingID"`
}

// NewOfferingClaim creates an OfferingClaim transaction.
func NewOfferingClaim(account string, id uint64) *OfferingClaim {
	return &OfferingClaim{
		BaseTx:     *tx.NewBaseTx(tx.TypeOfferingClaim, account),
		OfferingID: id,
	}
}

// TxType returns the transaction type.
func (c *OfferingClaim) TxType() tx.Type { return tx.TypeOfferingClaim }

// Validate checks the transaction is well-formed.
func (c *OfferingClaim) Validate() error {
	return c.BaseTx.Validate()
}

// Apply settles the caller's participation.
func (c *OfferingClaim) Apply(ctx *tx.ApplyContext) tx.Result {
	rec, res := loadOffering(ctx, c.OfferingID)
	if !res.Success() {
		return res
	}
	part, res := loadParticipation(ctx, rec, c.Account)
	if !res.Success() {
		return res
	}
	if ctx.Now() <= rec.EndTime {
		return tx.TecNOT_ENDED
	}
	if rec.Status != state.OfferingClaimAllowed {
		return tx.TecWRONG_STATUS
	}

	// Claimed is set before anything leaves escrow.
	part.Claimed = true
	if err := state.PutParticipation(ctx.View, rec.ID, c.Account, part); err != nil {
		return tx.TefINTERNAL
	}

	share := SaleShare(rec, part.Subscribed)
	if res := moveTokens(ctx.View, rec.SaleToken, rec.EscrowAccount(), c.Account, share); !res.Success() {
		return res
	}
	refund := Refund(rec, part.Subscribed)
	return moveTokens(ctx.View, rec.PaymentToken, rec.EscrowAccount(), c.Account, refund)
}

// OfferingRefund returns a subscriber's full payment after a cancellation.
type OfferingRefund struct {
	tx.BaseTx

	OfferingID uint64 `json:"OfferingID"`
}

// NewOfferingRefund creates an OfferingRefund transaction.
func NewOfferingRefund(account string, id uint64) *OfferingRefund {
	return &OfferingRefund{
		BaseTx:     *tx.NewBaseTx(tx.TypeOfferingRefund, account),
		OfferingID: id,
	}
}

// TxType returns the transaction type.
func (r *OfferingRefund) TxType() tx.Type { return tx.TypeOfferingRefund }

// Validate checks the transaction is well-formed.
func (r *OfferingRefund) Validate() error {
	return r.BaseTx.Validate()
}

// Apply refunds the caller's subscription in full.
func (r *OfferingRefund) Apply(ctx *tx.ApplyContext) tx.Result {
	rec, res := loadOffering(ctx, r.OfferingID)
	if !res.Success() {
		return res
	}
	if rec.Status != state.OfferingCancelled {
		return tx.TecWRONG_STATUS
	}
	part, res := loadParticipation(ctx, rec, r.Account)
	if !res.Success() {
		return res
	}

	part.Claimed = true
	if err := state.PutParticipation(ctx.View, rec.ID, r.Account, part); err != nil {
		return tx.TefINTERNAL
	}
	return moveTokens(ctx.View, rec.PaymentToken, rec.EscrowAccount(), r.Account, part.Subscribed)
}

// loadParticipation reads the caller's unclaimed participation.
func loadParticipation(ctx *tx.ApplyContext, rec *state.Offering, account string) (*state.Participation, tx.Result) {
	part, err := state.GetParticipation(ctx.View, rec.ID, account)
	if err != nil {
		return nil, tx.TefINTERNAL
	}
	if part == nil || part.Subscribed.Sign() == 0 {
		return nil, tx.TecNO_SUBSCRIPTION
	}
	if part.Claimed {
		return nil, tx.TecALREADY_CLAIMED
	}
	return part, tx.TesSUCCESS
}
