package vault

import (
	"math/big"

	"github.com/LeJamon/goRWAd/internal/core/amount"
	"github.com/LeJamon/goRWAd/internal/core/tx"
)

// VaultWithdraw burns shares from an owner to pay out an exact asset amount
// to a receiver. The sell fee is the difference between the burnt shares'
// asset value and the requested amount.
type VaultWithdraw struct {
	tx.BaseTx

	AssetID  string   `json:"AssetID"`
	Assets   *big.Int `json:"Assets"`
	Receiver string   `json:"Receiver"`
	Owner    string   `json:"Owner"`
}

// NewVaultWithdraw creates a VaultWithdraw transaction.
func NewVaultWithdraw(account, assetID string, assets *big.Int, receiver, owner string) *VaultWithdraw {
	return &VaultWithdraw{
		BaseTx:   *tx.NewBaseTx(tx.TypeVaultWithdraw, account),
		AssetID:  assetID,
		Assets:   assets,
		Receiver: receiver,
		Owner:    owner,
	}
}

// TxType returns the transaction type.
func (w *VaultWithdraw) TxType() tx.Type { return tx.TypeVaultWithdraw }

// Validate checks the transaction is well-formed.
func (w *VaultWithdraw) Validate() error {
	if err := w.BaseTx.Validate(); err != nil {
		return err
	}
	if w.AssetID == "" {
		return tx.ErrMissingAsset
	}
	if err := checkAmount(w.Assets); err != nil {
		return err
	}
	if w.Receiver == "" || w.Owner == "" {
		return tx.ErrMissingAccount
	}
	return nil
}

// Apply performs the withdrawal.
func (w *VaultWithdraw) Apply(ctx *tx.ApplyContext) tx.Result {
	rec, price, res := loadForConversion(ctx, w.Account, w.AssetID)
	if !res.Success() {
		return res
	}

	shares, err := PreviewWithdraw(rec, price, w.Assets)
	if err != nil {
		return tx.TefINTERNAL
	}
	if !CanTransfer(rec, ctx.Perms, w.Owner, VoidParty) {
		return tx.TecTRANSFER_NOT_ALLOWED
	}
	if res := spendShareAllowance(ctx.View, rec, w.Account, w.Owner, shares); !res.Success() {
		return res
	}
	if res := burnShares(ctx.View, rec, w.Owner, shares); !res.Success() {
		return res
	}

	// The burnt shares are worth at least the requested assets; the
	// remainder is the fee.
	equiv, err := ToAssets(rec, price, shares, amount.RoundDown)
	if err != nil {
		return tx.TefINTERNAL
	}
	fee := new(big.Int).Sub(equiv, w.Assets)
	if res := moveAssets(ctx.View, w.AssetID, rec.EscrowAccount(), w.Receiver, w.Assets); !res.Success() {
		return res
	}
	return moveAssets(ctx.View, w.AssetID, rec.EscrowAccount(), rec.FeeCollector, fee)
}
