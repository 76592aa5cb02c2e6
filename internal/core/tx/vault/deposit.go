package vault

import (
	"errors"
	"math/big"

	"github.com/LeJamon/goRWAd/internal/core/state"
	"github.com/LeJamon/goRWAd/internal/core/token"
	"github.com/LeJamon/goRWAd/internal/core/tx"
)

// VaultDeposit converts a gross asset amount into shares for a receiver.
// The buy fee is skimmed from the deposited assets before conversion.
type VaultDeposit struct {
	tx.BaseTx

	AssetID  string   `json:"AssetID"`
	Assets   *big.Int `json:"Assets"`
	Receiver string   `json:"Receiver"`
}

// NewVaultDeposit creates a VaultDeposit transaction.
func NewVaultDeposit(account, assetID string, assets *big.Int, receiver string) *VaultDeposit {
	return &VaultDeposit{
		BaseTx:   *tx.NewBaseTx(tx.TypeVaultDeposit, account),
		AssetID:  assetID,
		Assets:   assets,
		Receiver: receiver,
	}
}

// TxType returns the transaction type.
func (d *VaultDeposit) TxType() tx.Type { return tx.TypeVaultDeposit }

// Validate checks the transaction is well-formed. A zero amount is
// well-formed: it converts to zero shares and moves nothing.
func (d *VaultDeposit) Validate() error {
	if err := d.BaseTx.Validate(); err != nil {
		return err
	}
	if d.AssetID == "" {
		return tx.ErrMissingAsset
	}
	if d.Assets == nil || d.Assets.Sign() < 0 {
		return tx.ErrBadAmount
	}
	if d.Receiver == "" {
		return tx.ErrMissingAccount
	}
	return nil
}

// Apply performs the deposit.
func (d *VaultDeposit) Apply(ctx *tx.ApplyContext) tx.Result {
	rec, price, res := loadForConversion(ctx, d.Account, d.AssetID)
	if !res.Success() {
		return res
	}

	shares, fee, err := PreviewDeposit(rec, price, d.Assets)
	if err != nil {
		return tx.TefINTERNAL
	}
	if res := checkSupplyCap(rec, shares); !res.Success() {
		return res
	}
	if !CanTransfer(rec, ctx.Perms, VoidParty, d.Receiver) {
		return tx.TecTRANSFER_NOT_ALLOWED
	}

	net := new(big.Int).Sub(d.Assets, fee)
	if res := moveAssets(ctx.View, d.AssetID, d.Account, rec.EscrowAccount(), net); !res.Success() {
		return res
	}
	if res := moveAssets(ctx.View, d.AssetID, d.Account, rec.FeeCollector, fee); !res.Success() {
		return res
	}
	return mintShares(ctx.View, rec, d.Receiver, shares)
}

// loadForConversion runs the KYC gate, loads the vault, and fetches a fresh
// price. All four conversion operations start here.
func loadForConversion(ctx *tx.ApplyContext, caller, assetID string) (*state.Vault, *big.Int, tx.Result) {
	if !ctx.Perms.IsKycPassed(caller) {
		return nil, nil, tx.TecNO_KYC
	}
	rec, err := state.GetVault(ctx.View, assetID)
	if err != nil {
		return nil, nil, tx.TefINTERNAL
	}
	if rec == nil {
		return nil, nil, tx.TecNO_ENTRY
	}
	price, res := ctx.PriceSafe(assetID)
	if !res.Success() {
		return nil, nil, res
	}
	return rec, price, tx.TesSUCCESS
}

func checkSupplyCap(rec *state.Vault, newShares *big.Int) tx.Result {
	total := new(big.Int).Add(rec.TotalSupply, newShares)
	if total.Cmp(rec.MaxSupply) > 0 {
		return tx.TecSUPPLY_CAP_EXCEEDED
	}
	return tx.TesSUCCESS
}

func moveAssets(view state.LedgerView, tokenID, from, to string, amt *big.Int) tx.Result {
	if amt.Sign() == 0 {
		return tx.TesSUCCESS
	}
	if err := token.Transfer(view, tokenID, from, to, amt); err != nil {
		if errors.Is(err, token.ErrInsufficientBalance) {
			return tx.TecINSUFFICIENT_FUNDS
		}
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

func mintShares(view state.LedgerView, rec *state.Vault, receiver string, shares *big.Int) tx.Result {
	if err := token.Mint(view, rec.ShareToken(), receiver, shares); err != nil {
		return tx.TefINTERNAL
	}
	rec.TotalSupply = new(big.Int).Add(rec.TotalSupply, shares)
	if err := state.UpdateVault(view, rec); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

func burnShares(view state.LedgerView, rec *state.Vault, owner string, shares *big.Int) tx.Result {
	if err := token.Burn(view, rec.ShareToken(), owner, shares); err != nil {
		if errors.Is(err, token.ErrInsufficientBalance) {
			return tx.TecINSUFFICIENT_FUNDS
		}
		return tx.TefINTERNAL
	}
	rec.TotalSupply = new(big.Int).Sub(rec.TotalSupply, shares)
	if err := state.UpdateVault(view, rec); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

// spendShareAllowance consumes the caller's allowance on the owner's shares
// when operating on someone else's position.
func spendShareAllowance(view state.LedgerView, rec *state.Vault, caller, owner string, shares *big.Int) tx.Result {
	if caller == owner {
		return tx.TesSUCCESS
	}
	allowance, err := token.Allowance(view, rec.ShareToken(), owner, caller)
	if err != nil {
		return tx.TefINTERNAL
	}
	if allowance.Cmp(shares) < 0 {
		return tx.TecINSUFFICIENT_ALLOWANCE
	}
	if err := token.Approve(view, rec.ShareToken(), owner, caller, new(big.Int).Sub(allowance, shares)); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

func checkAmount(a *big.Int) error {
	if a == nil || a.Sign() < 0 {
		return tx.ErrBadAmount
	}
	return nil
}
