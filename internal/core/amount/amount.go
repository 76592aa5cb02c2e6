// Package amount provides the fixed-point integer arithmetic used by the
// conversion and offering engines. All quantities are non-negative big.Int
// values in the smallest unit of their denomination; rounding direction is
// always explicit at the call site.
package amount

import (
	"errors"
	"math/big"
)

// Rounding selects the direction a truncating division rounds toward.
type Rounding int

const (
	// RoundDown truncates toward zero (floor for non-negative values).
	RoundDown Rounding = iota
	// RoundUp rounds away from zero when there is any remainder.
	RoundUp
)

// Fee rates are expressed in basis points out of FeeDenominator.
const (
	FeeDenominator = 10000
	// MaxFeeBps caps configurable fee rates at 10%.
	MaxFeeBps = 1000
)

// PriceScale is the implicit fixed-point scale of oracle prices (18 decimals).
var PriceScale = Exp10(18)

var (
	ErrNegative     = errors.New("amount cannot be negative")
	ErrDivideByZero = errors.New("division by zero")
)

// Zero returns a fresh zero value.
func Zero() *big.Int { return new(big.Int) }

// New returns a big.Int holding v.
func New(v int64) *big.Int { return big.NewInt(v) }

// Exp10 returns 10^n as a big.Int.
func Exp10(n uint) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// MulDiv computes a*b/den with the requested rounding direction.
// All inputs must be non-negative and den must be non-zero.
func MulDiv(a, b, den *big.Int, rounding Rounding) (*big.Int, error) {
	if a.Sign() < 0 || b.Sign() < 0 || den.Sign() < 0 {
		return nil, ErrNegative
	}
	if den.Sign() == 0 {
		return nil, ErrDivideByZero
	}
	num := new(big.Int).Mul(a, b)
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if rounding == RoundUp && r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q, nil
}

// FeeOn computes floor(gross * rateBps / FeeDenominator).
func FeeOn(gross *big.Int, rateBps uint16) *big.Int {
	fee, _ := MulDiv(gross, big.NewInt(int64(rateBps)), big.NewInt(FeeDenominator), RoundDown)
	return fee
}

// GrossUp computes the gross amount whose net portion after a rateBps fee
// covers net: ceil(net * FeeDenominator / (FeeDenominator - rateBps)).
// rateBps must be below FeeDenominator; callers enforce the MaxFeeBps cap
// at configuration time.
func GrossUp(net *big.Int, rateBps uint16) (*big.Int, error) {
	if int64(rateBps) >= FeeDenominator {
		return nil, ErrDivideByZero
	}
	return MulDiv(net, big.NewInt(FeeDenominator), big.NewInt(FeeDenominator-int64(rateBps)), RoundUp)
}

// Min returns the smaller of a and b as a fresh value.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// Clone returns a defensive copy; nil maps to zero.
func Clone(a *big.Int) *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a)
}
