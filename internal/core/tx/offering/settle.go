package offering

import (
	"math/big"

	"github.com/LeJamon/goRWAd/internal/core/access"
	"github.com/LeJamon/goRWAd/internal/core/amount"
	"github.com/LeJamon/goRWAd/internal/core/state"
	"github.com/LeJamon/goRWAd/internal/core/tx"
)

// The settlement sequence is teller-driven and strictly ordered by the
// admin status: withdraw funds, deposit the sale tokens, allow claims.

// OfferingWithdrawFunds pays the accepted raise out of escrow to the teller
// after the window closes. Anything above the target stays escrowed for
// refunds.
type OfferingWithdrawFunds struct {
	tx.BaseTx

	OfferingID uint64 `json:"OfferingID"`
}

// NewOfferingWithdrawFunds creates an OfferingWithdrawFunds transaction.
func NewOfferingWithdrawFunds(account string, id uint64) *OfferingWithdrawFunds {
	return &OfferingWithdrawFunds{
		BaseTx:     *tx.NewBaseTx(tx.TypeOfferingWithdrawFunds, account),
		OfferingID: id,
	}
}

// TxType returns the transaction type.
func (w *OfferingWithdrawFunds) TxType() tx.Type { return tx.TypeOfferingWithdrawFunds }

// Validate checks the transaction is well-formed.
func (w *OfferingWithdrawFunds) Validate() error {
	return w.BaseTx.Validate()
}

// Apply advances the offering to Withdrawn and pays out the accepted raise.
func (w *OfferingWithdrawFunds) Apply(ctx *tx.ApplyContext) tx.Result {
	rec, res := loadOffering(ctx, w.OfferingID)
	if !res.Success() {
		return res
	}
	if !ctx.Perms.HasRole(access.RoleTeller, w.Account) {
		return tx.TecNO_PERMISSION
	}
	switch rec.Status {
	case state.OfferingActive:
	case state.OfferingCancelled:
		return tx.TecWRONG_STATUS
	default:
		return tx.TecALREADY_WITHDRAWN
	}
	if ctx.Now() <= rec.EndTime {
		return tx.TecNOT_ENDED
	}

	// Status advances before the payout leaves escrow.
	rec.Status = state.OfferingWithdrawn
	if err := state.UpdateOffering(ctx.View, rec); err != nil {
		return tx.TefINTERNAL
	}
	accepted := amount.Min(rec.TotalRaised, rec.TargetRaise)
	return moveTokens(ctx.View, rec.PaymentToken, rec.EscrowAccount(), w.Account, accepted)
}

// OfferingDepositSale pulls the sale tokens from the teller into escrow and
// records the settled amount.
type OfferingDepositSale struct {
	tx.BaseTx

	OfferingID uint64   `json:"OfferingID"`
	Amount     *big.Int `json:"Amount"`
}

// NewOfferingDepositSale creates an OfferingDepositSale transaction.
func NewOfferingDepositSale(account string, id uint64, amt *big.Int) *OfferingDepositSale {
	return &OfferingDepositSale{
		BaseTx:     *tx.NewBaseTx(tx.TypeOfferingDepositSale, account),
		OfferingID: id,
		Amount:     amt,
	}
}

// TxType returns the transaction type.
func (d *OfferingDepositSale) TxType() tx.Type { return tx.TypeOfferingDepositSale }

// Validate checks the transaction is well-formed.
func (d *OfferingDepositSale) Validate() error {
	if err := d.BaseTx.Validate(); err != nil {
		return err
	}
	if d.Amount == nil || d.Amount.Sign() <= 0 {
		return tx.ErrBadAmount
	}
	return nil
}

// Apply settles the offering with the deposited sale amount.
func (d *OfferingDepositSale) Apply(ctx *tx.ApplyContext) tx.Result {
	rec, res := loadOffering(ctx, d.OfferingID)
	if !res.Success() {
		return res
	}
	if !ctx.Perms.HasRole(access.RoleTeller, d.Account) {
		return tx.TecNO_PERMISSION
	}
	if rec.Status != state.OfferingWithdrawn {
		return tx.TecWRONG_STATUS
	}
	if ctx.Now() <= rec.EndTime {
		return tx.TecNOT_ENDED
	}

	rec.Status = state.OfferingSettled
	rec.TotalSale = amount.Clone(d.Amount)
	if err := state.UpdateOffering(ctx.View, rec); err != nil {
		return tx.TefINTERNAL
	}
	return moveTokens(ctx.View, rec.SaleToken, d.Account, rec.EscrowAccount(), d.Amount)
}

// OfferingAllowClaim opens the settled offering for subscriber claims.
type OfferingAllowClaim struct {
	tx.BaseTx

	OfferingID uint64 `json:"OfferingID"`
}

// NewOfferingAllowClaim creates an OfferingAllowClaim transaction.
func NewOfferingAllowClaim(account string, id uint64) *OfferingAllowClaim {
	return &OfferingAllowClaim{
		BaseTx:     *tx.NewBaseTx(tx.TypeOfferingAllowClaim, account),
		OfferingID: id,
	}
}

// TxType returns the transaction type.
func (a *OfferingAllowClaim) TxType() tx.Type { return tx.TypeOfferingAllowClaim }

// Validate checks the transaction is well-formed.
func (a *OfferingAllowClaim) Validate() error {
	return a.BaseTx.Validate()
}

// Apply advances the offering to ClaimAllowed.
func (a *OfferingAllowClaim) Apply(ctx *tx.ApplyContext) tx.Result {
	rec, res := loadOffering(ctx, a.OfferingID)
	if !res.Success() {
		return res
	}
	if !ctx.Perms.HasRole(access.RoleTeller, a.Account) {
		return tx.TecNO_PERMISSION
	}
	if rec.Status != state.OfferingSettled {
		return tx.TecWRONG_STATUS
	}

	rec.Status = state.OfferingClaimAllowed
	if err := state.UpdateOffering(ctx.View, rec); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}
