// Package offering implements the token-sale transactors: offering creation
// and cancellation, the subscription window, the settlement sequence driven
// by the admin-status state machine, and pro-rata claim and refund.
package offering

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/LeJamon/goRWAd/internal/core/access"
	"github.com/LeJamon/goRWAd/internal/core/amount"
	"github.com/LeJamon/goRWAd/internal/core/state"
	"github.com/LeJamon/goRWAd/internal/core/token"
	"github.com/LeJamon/goRWAd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeOfferingCreate, func() tx.Transaction {
		return &OfferingCreate{BaseTx: *tx.NewBaseTx(tx.TypeOfferingCreate, "")}
	})
	tx.Register(tx.TypeOfferingCancel, func() tx.Transaction {
		return &OfferingCancel{BaseTx: *tx.NewBaseTx(tx.TypeOfferingCancel, "")}
	})
	tx.Register(tx.TypeOfferingSubscribe, func() tx.Transaction {
		return &OfferingSubscribe{BaseTx: *tx.NewBaseTx(tx.TypeOfferingSubscribe, "")}
	})
	tx.Register(tx.TypeOfferingWithdrawFunds, func() tx.Transaction {
		return &OfferingWithdrawFunds{BaseTx: *tx.NewBaseTx(tx.TypeOfferingWithdrawFunds, "")}
	})
	tx.Register(tx.TypeOfferingDepositSale, func() tx.Transaction {
		return &OfferingDepositSale{BaseTx: *tx.NewBaseTx(tx.TypeOfferingDepositSale, "")}
	})
	tx.Register(tx.TypeOfferingAllowClaim, func() tx.Transaction {
		return &OfferingAllowClaim{BaseTx: *tx.NewBaseTx(tx.TypeOfferingAllowClaim, "")}
	})
	tx.Register(tx.TypeOfferingClaim, func() tx.Transaction {
		return &OfferingClaim{BaseTx: *tx.NewBaseTx(tx.TypeOfferingClaim, "")}
	})
	tx.Register(tx.TypeOfferingRefund, func() tx.Transaction {
		return &OfferingRefund{BaseTx: *tx.NewBaseTx(tx.TypeOfferingRefund, "")}
	})
}

var ErrMissingTarget = fmt.Errorf("%w: TargetRaise must be positive", tx.ErrBadAmount)

// OfferingCreate opens a new token sale. The sale collects the protocol
// payment token during [StartTime, EndTime] and distributes SaleToken after
// settlement.
type OfferingCreate struct {
	tx.BaseTx

	SaleToken   string   `json:"SaleToken"`
	StartTime   int64    `json:"StartTime"`
	EndTime     int64    `json:"EndTime"`
	TargetRaise *big.Int `json:"TargetRaise"`
}

// NewOfferingCreate creates an OfferingCreate transaction.
func NewOfferingCreate(account, saleToken string, targetRaise *big.Int, start, end int64) *OfferingCreate {
	return &OfferingCreate{
		BaseTx:      *tx.NewBaseTx(tx.TypeOfferingCreate, account),
		SaleToken:   saleToken,
		StartTime:   start,
		EndTime:     end,
		TargetRaise: targetRaise,
	}
}

// TxType returns the transaction type.
func (c *OfferingCreate) TxType() tx.Type { return tx.TypeOfferingCreate }

// Validate checks the transaction is well-formed. The start-versus-now check
// belongs in Apply: only the engine knows the close time.
func (c *OfferingCreate) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if c.SaleToken == "" {
		return tx.ErrMissingAsset
	}
	if c.TargetRaise == nil || c.TargetRaise.Sign() <= 0 {
		return ErrMissingTarget
	}
	if c.EndTime <= c.StartTime {
		return tx.ErrBadTimeRange
	}
	return nil
}

// Apply creates the offering record with the next sequential id.
func (c *OfferingCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	if !ctx.Perms.HasRole(access.RoleOwner, c.Account) {
		return tx.TecNO_PERMISSION
	}
	if c.StartTime <= ctx.Now() {
		return tx.TemBAD_TIME_RANGE
	}

	id, err := state.NextOfferingID(ctx.View)
	if err != nil {
		return tx.TefINTERNAL
	}
	rec := &state.Offering{
		ID:           id,
		Owner:        c.Account,
		SaleToken:    c.SaleToken,
		PaymentToken: ctx.Config.PaymentToken,
		StartTime:    c.StartTime,
		EndTime:      c.EndTime,
		TargetRaise:  amount.Clone(c.TargetRaise),
		TotalRaised:  amount.Zero(),
		TotalSale:    amount.Zero(),
		Status:       state.OfferingActive,
	}
	if err := state.InsertOffering(ctx.View, rec); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

// OfferingCancel cancels an offering before its window opens.
type OfferingCancel struct {
	tx.BaseTx

	OfferingID uint64 `json:"OfferingID"`
}

// NewOfferingCancel creates an OfferingCancel transaction.
func NewOfferingCancel(account string, id uint64) *OfferingCancel {
	return &OfferingCancel{
		BaseTx:     *tx.NewBaseTx(tx.TypeOfferingCancel, account),
		OfferingID: id,
	}
}

// TxType returns the transaction type.
func (c *OfferingCancel) TxType() tx.Type { return tx.TypeOfferingCancel }

// Validate checks the transaction is well-formed.
func (c *OfferingCancel) Validate() error {
	return c.BaseTx.Validate()
}

// Apply cancels the offering.
func (c *OfferingCancel) Apply(ctx *tx.ApplyContext) tx.Result {
	rec, res := loadOffering(ctx, c.OfferingID)
	if !res.Success() {
		return res
	}
	if c.Account != rec.Owner {
		return tx.TecNO_PERMISSION
	}
	if rec.Status != state.OfferingActive {
		return tx.TecWRONG_STATUS
	}
	if ctx.Now() >= rec.StartTime {
		return tx.TecENDED
	}

	rec.Status = state.OfferingCancelled
	if err := state.UpdateOffering(ctx.View, rec); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

// loadOffering reads an offering record, mapping absence to a result code.
func loadOffering(ctx *tx.ApplyContext, id uint64) (*state.Offering, tx.Result) {
	rec, err := state.GetOffering(ctx.View, id)
	if err != nil {
		return nil, tx.TefINTERNAL
	}
	if rec == nil {
		return nil, tx.TecINVALID_ID
	}
	return rec, tx.TesSUCCESS
}

// moveTokens transfers tokens between accounts, mapping balance failures to
// result codes. Zero amounts move nothing.
func moveTokens(view state.LedgerView, tokenID, from, to string, amt *big.Int) tx.Result {
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
