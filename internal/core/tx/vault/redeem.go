package vault

import (
	"math/big"

	"github.com/LeJamon/goRWAd/internal/core/tx"
)

// VaultRedeem burns an exact share amount from an owner and pays out the
// net asset value to a receiver, less the sell fee.
type VaultRedeem struct {
	tx.BaseTx

	AssetID  string   `json:"AssetID"`
	Shares   *big.Int `json:"Shares"`
	Receiver string   `json:"Receiver"`
	Owner    string   `json:"Owner"`
}

// NewVaultRedeem creates a VaultRedeem transaction.
func NewVaultRedeem(account, assetID string, shares *big.Int, receiver, owner string) *VaultRedeem {
	return &VaultRedeem{
		BaseTx:   *tx.NewBaseTx(tx.TypeVaultRedeem, account),
		AssetID:  assetID,
		Shares:   shares,
		Receiver: receiver,
		Owner:    owner,
	}
}

// TxType returns the transaction type.
func (r *VaultRedeem) TxType() tx.Type { return tx.TypeVaultRedeem }

// Validate checks the transaction is well-formed.
func (r *VaultRedeem) Validate() error {
	if err := r.BaseTx.Validate(); err != nil {
		return err
	}
	if r.AssetID == "" {
		return tx.ErrMissingAsset
	}
	if err := checkAmount(r.Shares); err != nil {
		return err
	}
	if r.Receiver == "" || r.Owner == "" {
		return tx.ErrMissingAccount
	}
	return nil
}

// Apply performs the redemption.
func (r *VaultRedeem) Apply(ctx *tx.ApplyContext) tx.Result {
	rec, price, res := loadForConversion(ctx, r.Account, r.AssetID)
	if !res.Success() {
		return res
	}

	assets, fee, err := PreviewRedeem(rec, price, r.Shares)
	if err != nil {
		return tx.TefINTERNAL
	}
	if !CanTransfer(rec, ctx.Perms, r.Owner, VoidParty) {
		return tx.TecTRANSFER_NOT_ALLOWED
	}
	if res := spendShareAllowance(ctx.View, rec, r.Account, r.Owner, r.Shares); !res.Success() {
		return res
	}
	if res := burnShares(ctx.View, rec, r.Owner, r.Shares); !res.Success() {
		return res
	}

	if res := moveAssets(ctx.View, r.AssetID, rec.EscrowAccount(), r.Receiver, assets); !res.Success() {
		return res
	}
	return moveAssets(ctx.View, r.AssetID, rec.EscrowAccount(), rec.FeeCollector, fee)
}
