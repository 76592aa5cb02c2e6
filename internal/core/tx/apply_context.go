package tx

import (
	"errors"
	"math/big"
	"time"

	"github.com/LeJamon/goRWAd/internal/core/access"
	"github.com/LeJamon/goRWAd/internal/core/oracle"
	"github.com/LeJamon/goRWAd/internal/core/state"
)

// PriceSource supplies oracle prices with a staleness guard.
// *oracle.Store implements it.
type PriceSource interface {
	PriceSafe(assetID string, maxAge time.Duration, now time.Time) (*big.Int, time.Duration, error)
}

// EngineConfig holds per-call configuration the engine hands to Apply.
type EngineConfig struct {
	// CloseTime is the host time of the current call (unix seconds). All
	// time-window guards compare against it, never against wall time.
	CloseTime int64

	// MaxPriceAge is the oracle staleness cutoff.
	MaxPriceAge time.Duration

	// PaymentToken is the protocol-wide payment token collected by
	// offerings.
	PaymentToken string
}

// ApplyContext provides the state and collaborators a transaction needs to
// apply itself. The view is a buffered ApplyStateTable; nothing reaches the
// backing store unless the engine commits.
type ApplyContext struct {
	// View provides read/write access to buffered protocol state.
	View state.LedgerView

	// Perms resolves roles and KYC flags.
	Perms access.Permissions

	// Oracle supplies prices.
	Oracle PriceSource

	// Config holds engine configuration for this call.
	Config EngineConfig
}

// Now returns the call's close time.
func (ctx *ApplyContext) Now() int64 { return ctx.Config.CloseTime }

// PriceSafe fetches the current price of an asset, mapping oracle failures
// to result codes.
func (ctx *ApplyContext) PriceSafe(assetID string) (*big.Int, Result) {
	now := time.Unix(ctx.Config.CloseTime, 0)
	price, _, err := ctx.Oracle.PriceSafe(assetID, ctx.Config.MaxPriceAge, now)
	switch {
	case err == nil:
		return price, TesSUCCESS
	case errors.Is(err, oracle.ErrStalePrice):
		return nil, TecORACLE_STALE
	case errors.Is(err, oracle.ErrAssetInactive), errors.Is(err, oracle.ErrUnknownAsset):
		return nil, TecORACLE_INACTIVE
	default:
		return nil, TefINTERNAL
	}
}
