package state

import (
	"math/big"
	"strconv"

	"github.com/LeJamon/goRWAd/internal/core/amount"
)

// OfferingStatus is the admin status of an offering. Transitions are strictly
// forward-only; Cancelled is terminal and reachable only from Active.
type OfferingStatus uint8

const (
	OfferingActive OfferingStatus = iota
	OfferingWithdrawn
	OfferingSettled
	OfferingClaimAllowed
	OfferingCancelled
)

// String returns the status name.
func (s OfferingStatus) String() string {
	switch s {
	case OfferingActive:
		return "Active"
	case OfferingWithdrawn:
		return "Withdrawn"
	case OfferingSettled:
		return "Settled"
	case OfferingClaimAllowed:
		return "ClaimAllowed"
	case OfferingCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// CanTransitionTo reports whether the state machine permits moving from s to
// next. Time-window guards are checked by the transactions, not here.
func (s OfferingStatus) CanTransitionTo(next OfferingStatus) bool {
	switch s {
	case OfferingActive:
		return next == OfferingWithdrawn || next == OfferingCancelled
	case OfferingWithdrawn:
		return next == OfferingSettled
	case OfferingSettled:
		return next == OfferingClaimAllowed
	default:
		return false
	}
}

// Vault is the ledger record for one oracle-priced vault token.
// Invariants, enforced at write time by the vault transactions:
// TotalSupply <= MaxSupply; fee rates <= amount.MaxFeeBps.
type Vault struct {
	AssetID         string   `json:"asset_id"`
	AssetDecimals   uint8    `json:"asset_decimals"`
	ShareDecimals   uint8    `json:"share_decimals"`
	OfferingMode    bool     `json:"offering_mode"`
	FeeCollector    string   `json:"fee_collector"`
	BuyFeeBps       uint16   `json:"buy_fee_bps"`
	SellFeeBps      uint16   `json:"sell_fee_bps"`
	MaxSupply       *big.Int `json:"max_supply"`
	TotalSupply     *big.Int `json:"total_supply"`
	SeparatedTeller bool     `json:"separated_teller"`
	LocalTeller     string   `json:"local_teller,omitempty"`
}

// ShareToken returns the token identifier of this vault's shares.
func (v *Vault) ShareToken() string { return "share:" + v.AssetID }

// EscrowAccount returns the account holding the vault's underlying assets.
func (v *Vault) EscrowAccount() string { return "vault:" + v.AssetID }

// Remaining returns the share supply headroom under the cap.
func (v *Vault) Remaining() *big.Int {
	if v.MaxSupply.Cmp(v.TotalSupply) <= 0 {
		return amount.Zero()
	}
	return new(big.Int).Sub(v.MaxSupply, v.TotalSupply)
}

// Offering is the ledger record for one token sale.
// TotalSaleAmount stays zero until the teller settles.
type Offering struct {
	ID           uint64         `json:"id"`
	Owner        string         `json:"owner"`
	SaleToken    string         `json:"sale_token"`
	PaymentToken string         `json:"payment_token"`
	StartTime    int64          `json:"start_time"`
	EndTime      int64          `json:"end_time"`
	TargetRaise  *big.Int       `json:"target_raise"`
	TotalRaised  *big.Int       `json:"total_raised"`
	TotalSale    *big.Int       `json:"total_sale"`
	Status       OfferingStatus `json:"status"`
}

// EscrowAccount returns the account holding this offering's escrowed tokens.
func (o *Offering) EscrowAccount() string { return "offering:" + strconv.FormatUint(o.ID, 10) }

// Participation tracks one subscriber within one offering. Records are
// created lazily on first subscription and never deleted; Claimed is the
// terminal marker.
type Participation struct {
	Subscribed *big.Int `json:"subscribed"`
	Claimed    bool     `json:"claimed"`
}
