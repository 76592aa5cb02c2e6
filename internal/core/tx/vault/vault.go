// Package vault implements the oracle-priced vault-token transactors: vault
// administration, the share/asset conversion operations, and the transfer
// permission policy.
package vault

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/LeJamon/goRWAd/internal/core/access"
	"github.com/LeJamon/goRWAd/internal/core/amount"
	"github.com/LeJamon/goRWAd/internal/core/state"
	"github.com/LeJamon/goRWAd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeVaultCreate, func() tx.Transaction {
		return &VaultCreate{BaseTx: *tx.NewBaseTx(tx.TypeVaultCreate, "")}
	})
	tx.Register(tx.TypeVaultSet, func() tx.Transaction {
		return &VaultSet{BaseTx: *tx.NewBaseTx(tx.TypeVaultSet, "")}
	})
	tx.Register(tx.TypeVaultDeposit, func() tx.Transaction {
		return &VaultDeposit{BaseTx: *tx.NewBaseTx(tx.TypeVaultDeposit, "")}
	})
	tx.Register(tx.TypeVaultMint, func() tx.Transaction {
		return &VaultMint{BaseTx: *tx.NewBaseTx(tx.TypeVaultMint, "")}
	})
	tx.Register(tx.TypeVaultWithdraw, func() tx.Transaction {
		return &VaultWithdraw{BaseTx: *tx.NewBaseTx(tx.TypeVaultWithdraw, "")}
	})
	tx.Register(tx.TypeVaultRedeem, func() tx.Transaction {
		return &VaultRedeem{BaseTx: *tx.NewBaseTx(tx.TypeVaultRedeem, "")}
	})
}

// Default decimal layout: 6-decimal underlying, 18-decimal shares.
const (
	DefaultAssetDecimals = 6
	DefaultShareDecimals = 18
)

var (
	ErrMissingCollector = fmt.Errorf("%w: FeeCollector is required", tx.ErrMissingAccount)
	ErrMissingSupplyCap = fmt.Errorf("%w: MaxSupply must be positive", tx.ErrBadAmount)
	ErrNothingToUpdate  = errors.New("temMALFORMED: nothing to update")
	ErrMissingTeller    = fmt.Errorf("%w: LocalTeller required with SeparatedTeller", tx.ErrMissingAccount)
)

// VaultCreate creates the vault backing one real-world asset.
type VaultCreate struct {
	tx.BaseTx

	// AssetID identifies the underlying asset and its payment token.
	AssetID string `json:"AssetID"`

	// FeeCollector receives skimmed fees.
	FeeCollector string `json:"FeeCollector"`

	// BuyFeeBps and SellFeeBps are fee rates in basis points, at most
	// amount.MaxFeeBps each.
	BuyFeeBps  uint16 `json:"BuyFeeBps"`
	SellFeeBps uint16 `json:"SellFeeBps"`

	// MaxSupply caps the vault share supply.
	MaxSupply *big.Int `json:"MaxSupply"`

	// SeparatedTeller designates LocalTeller as the only teller for this
	// vault, instead of the teller role.
	SeparatedTeller bool   `json:"SeparatedTeller,omitempty"`
	LocalTeller     string `json:"LocalTeller,omitempty"`
}

// NewVaultCreate creates a VaultCreate transaction.
func NewVaultCreate(account, assetID, collector string, maxSupply *big.Int) *VaultCreate {
	return &VaultCreate{
		BaseTx:       *tx.NewBaseTx(tx.TypeVaultCreate, account),
		AssetID:      assetID,
		FeeCollector: collector,
		MaxSupply:    maxSupply,
	}
}

// TxType returns the transaction type.
func (v *VaultCreate) TxType() tx.Type { return tx.TypeVaultCreate }

// Validate checks the transaction is well-formed.
func (v *VaultCreate) Validate() error {
	if err := v.BaseTx.Validate(); err != nil {
		return err
	}
	if v.AssetID == "" {
		return tx.ErrMissingAsset
	}
	if v.FeeCollector == "" {
		return ErrMissingCollector
	}
	if v.BuyFeeBps > amount.MaxFeeBps || v.SellFeeBps > amount.MaxFeeBps {
		return tx.ErrBadFeeRate
	}
	if v.MaxSupply == nil || v.MaxSupply.Sign() <= 0 {
		return ErrMissingSupplyCap
	}
	if v.SeparatedTeller && v.LocalTeller == "" {
		return ErrMissingTeller
	}
	return nil
}

// Apply creates the vault record.
func (v *VaultCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	if !ctx.Perms.HasRole(access.RoleOwner, v.Account) {
		return tx.TecNO_PERMISSION
	}

	existing, err := state.GetVault(ctx.View, v.AssetID)
	if err != nil {
		return tx.TefINTERNAL
	}
	if existing != nil {
		return tx.TecDUPLICATE
	}

	rec := &state.Vault{
		AssetID:         v.AssetID,
		AssetDecimals:   DefaultAssetDecimals,
		ShareDecimals:   DefaultShareDecimals,
		FeeCollector:    v.FeeCollector,
		BuyFeeBps:       v.BuyFeeBps,
		SellFeeBps:      v.SellFeeBps,
		MaxSupply:       amount.Clone(v.MaxSupply),
		TotalSupply:     amount.Zero(),
		SeparatedTeller: v.SeparatedTeller,
		LocalTeller:     v.LocalTeller,
	}
	if err := state.InsertVault(ctx.View, rec); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

// VaultSet updates vault parameters. Nil fields are left unchanged.
type VaultSet struct {
	tx.BaseTx

	AssetID         string   `json:"AssetID"`
	BuyFeeBps       *uint16  `json:"BuyFeeBps,omitempty"`
	SellFeeBps      *uint16  `json:"SellFeeBps,omitempty"`
	MaxSupply       *big.Int `json:"MaxSupply,omitempty"`
	FeeCollector    *string  `json:"FeeCollector,omitempty"`
	OfferingMode    *bool    `json:"OfferingMode,omitempty"`
	SeparatedTeller *bool    `json:"SeparatedTeller,omitempty"`
	LocalTeller     *string  `json:"LocalTeller,omitempty"`
}

// NewVaultSet creates an empty VaultSet for the given vault.
func NewVaultSet(account, assetID string) *VaultSet {
	return &VaultSet{
		BaseTx:  *tx.NewBaseTx(tx.TypeVaultSet, account),
		AssetID: assetID,
	}
}

// TxType returns the transaction type.
func (v *VaultSet) TxType() tx.Type { return tx.TypeVaultSet }

// Validate checks the transaction is well-formed. Fee caps are enforced
// here, at write time, so stored rates can never exceed the maximum.
func (v *VaultSet) Validate() error {
	if err := v.BaseTx.Validate(); err != nil {
		return err
	}
	if v.AssetID == "" {
		return tx.ErrMissingAsset
	}
	if v.BuyFeeBps == nil && v.SellFeeBps == nil && v.MaxSupply == nil &&
		v.FeeCollector == nil && v.OfferingMode == nil &&
		v.SeparatedTeller == nil && v.LocalTeller == nil {
		return ErrNothingToUpdate
	}
	if v.BuyFeeBps != nil && *v.BuyFeeBps > amount.MaxFeeBps {
		return tx.ErrBadFeeRate
	}
	if v.SellFeeBps != nil && *v.SellFeeBps > amount.MaxFeeBps {
		return tx.ErrBadFeeRate
	}
	if v.MaxSupply != nil && v.MaxSupply.Sign() <= 0 {
		return ErrMissingSupplyCap
	}
	if v.FeeCollector != nil && *v.FeeCollector == "" {
		return ErrMissingCollector
	}
	return nil
}

// Apply updates the vault record.
func (v *VaultSet) Apply(ctx *tx.ApplyContext) tx.Result {
	if !ctx.Perms.HasRole(access.RoleOwner, v.Account) {
		return tx.TecNO_PERMISSION
	}

	rec, err := state.GetVault(ctx.View, v.AssetID)
	if err != nil {
		return tx.TefINTERNAL
	}
	if rec == nil {
		return tx.TecNO_ENTRY
	}

	if v.MaxSupply != nil {
		// The cap may move, but never below what is already minted.
		if v.MaxSupply.Cmp(rec.TotalSupply) < 0 {
			return tx.TecSUPPLY_CAP_EXCEEDED
		}
		rec.MaxSupply = amount.Clone(v.MaxSupply)
	}
	if v.BuyFeeBps != nil {
		rec.BuyFeeBps = *v.BuyFeeBps
	}
	if v.SellFeeBps != nil {
		rec.SellFeeBps = *v.SellFeeBps
	}
	if v.FeeCollector != nil {
		rec.FeeCollector = *v.FeeCollector
	}
	if v.OfferingMode != nil {
		rec.OfferingMode = *v.OfferingMode
	}
	if v.SeparatedTeller != nil {
		rec.SeparatedTeller = *v.SeparatedTeller
	}
	if v.LocalTeller != nil {
		rec.LocalTeller = *v.LocalTeller
	}
	if rec.SeparatedTeller && rec.LocalTeller == "" {
		return tx.TemINVALID_ACCOUNT
	}

	if err := state.UpdateVault(ctx.View, rec); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}
