package vault

import (
	"math/big"

	"github.com/LeJamon/goRWAd/internal/core/amount"
	"github.com/LeJamon/goRWAd/internal/core/state"
)

// conversionFactor returns 10^(shareDecimals-assetDecimals) * PriceScale,
// the denominator/numerator of the share<->asset conversion. With the
// default 6/18 layout this is 1e30.
func conversionFactor(v *state.Vault) *big.Int {
	offset := amount.Exp10(uint(v.ShareDecimals - v.AssetDecimals))
	return new(big.Int).Mul(offset, amount.PriceScale)
}

// ToShares converts an asset quantity to shares at the given price.
func ToShares(v *state.Vault, price, assets *big.Int, rounding amount.Rounding) (*big.Int, error) {
	return amount.MulDiv(assets, conversionFactor(v), price, rounding)
}

// ToAssets converts a share quantity to assets at the given price.
func ToAssets(v *state.Vault, price, shares *big.Int, rounding amount.Rounding) (*big.Int, error) {
	return amount.MulDiv(shares, price, conversionFactor(v), rounding)
}

// PreviewDeposit returns the shares minted for depositing assets, after the
// buy fee. Shares round down: a deposit never mints more than its net value.
func PreviewDeposit(v *state.Vault, price, assets *big.Int) (shares, fee *big.Int, err error) {
	fee = amount.FeeOn(assets, v.BuyFeeBps)
	net := new(big.Int).Sub(assets, fee)
	shares, err = ToShares(v, price, net, amount.RoundDown)
	return shares, fee, err
}

// PreviewMint returns the gross assets charged to mint exactly shares. The
// asset cost rounds up at both steps so minting never under-charges.
func PreviewMint(v *state.Vault, price, shares *big.Int) (assets, fee *big.Int, err error) {
	net, err := ToAssets(v, price, shares, amount.RoundUp)
	if err != nil {
		return nil, nil, err
	}
	assets, err = amount.GrossUp(net, v.BuyFeeBps)
	if err != nil {
		return nil, nil, err
	}
	return assets, amount.FeeOn(assets, v.BuyFeeBps), nil
}

// PreviewWithdraw returns the shares burnt to withdraw exactly assets. The
// share cost rounds up so a withdrawal never under-burns.
func PreviewWithdraw(v *state.Vault, price, assets *big.Int) (shares *big.Int, err error) {
	gross, err := amount.GrossUp(assets, v.SellFeeBps)
	if err != nil {
		return nil, err
	}
	return ToShares(v, price, gross, amount.RoundUp)
}

// PreviewRedeem returns the net assets paid out for redeeming shares, after
// the sell fee. Assets round down: a redemption never over-pays.
func PreviewRedeem(v *state.Vault, price, shares *big.Int) (assets, fee *big.Int, err error) {
	gross, err := ToAssets(v, price, shares, amount.RoundDown)
	if err != nil {
		return nil, nil, err
	}
	fee = amount.FeeOn(gross, v.SellFeeBps)
	return new(big.Int).Sub(gross, fee), fee, nil
}

// MaxMint returns the share headroom under the supply cap.
func MaxMint(v *state.Vault) *big.Int {
	return v.Remaining()
}

// MaxDeposit returns the asset headroom under the supply cap, rounding down
// so capacity is never overstated. Any buy fee only lowers the shares a
// deposit of this size would mint, keeping it under the cap.
func MaxDeposit(v *state.Vault, price *big.Int) (*big.Int, error) {
	return ToAssets(v, price, v.Remaining(), amount.RoundDown)
}
