// Package tx defines the transaction framework: every state-mutating
// operation of the protocol is a transaction type with preflight validation
// and an apply step executed by the Engine against a buffered state view.
package tx

import "errors"

// Common preflight errors shared by transaction types.
var (
	ErrMissingAccount = errors.New("temINVALID_ACCOUNT: Account is required")
	ErrMissingAsset   = errors.New("temMALFORMED: Asset is required")
	ErrBadAmount      = errors.New("temBAD_AMOUNT: Amount must be positive")
	ErrBadTimeRange   = errors.New("temBAD_TIME_RANGE: invalid time range")
	ErrBadFeeRate     = errors.New("temBAD_FEE_RATE: fee rate exceeds maximum")
)

// Type identifies a transaction type.
type Type int

const (
	TypeVaultCreate Type = iota
	TypeVaultSet
	TypeVaultDeposit
	TypeVaultMint
	TypeVaultWithdraw
	TypeVaultRedeem
	TypeOfferingCreate
	TypeOfferingCancel
	TypeOfferingSubscribe
	TypeOfferingWithdrawFunds
	TypeOfferingDepositSale
	TypeOfferingAllowClaim
	TypeOfferingClaim
	TypeOfferingRefund
)

// Transaction is the interface all transaction types implement.
type Transaction interface {
	// TxType returns the transaction type.
	TxType() Type

	// GetCommon returns the common transaction fields.
	GetCommon() *Common

	// Validate checks the transaction is well-formed (preflight). Guards
	// that depend on state or time belong in Apply.
	Validate() error
}

// Appliable is implemented by transaction types that apply themselves to
// protocol state. All registered types implement it.
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// Common contains fields shared by all transaction types.
type Common struct {
	// Account is the caller on whose behalf the transaction executes.
	Account string `json:"Account"`

	// TransactionType names the type for JSON round-tripping.
	TransactionType string `json:"TransactionType"`
}

// BaseTx provides the common fields and validation for transaction types.
type BaseTx struct {
	Common
}

// NewBaseTx creates the embedded base for a transaction of the given type.
func NewBaseTx(t Type, account string) *BaseTx {
	return &BaseTx{Common: Common{
		Account:         account,
		TransactionType: t.Name(),
	}}
}

// GetCommon returns the common transaction fields.
func (b *BaseTx) GetCommon() *Common { return &b.Common }

// Validate checks the common fields.
func (b *BaseTx) Validate() error {
	if b.Account == "" {
		return ErrMissingAccount
	}
	return nil
}
