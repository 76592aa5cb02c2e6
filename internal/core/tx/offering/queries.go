package offering

import (
	"errors"
	"math/big"

	"github.com/LeJamon/goRWAd/internal/core/state"
)

// ErrNotFound is returned by the read accessors for an unknown offering.
var ErrNotFound = errors.New("offering: not found")

// Info returns a read-only snapshot of an offering.
func Info(v state.LedgerView, id uint64) (*state.Offering, error) {
	rec, err := state.GetOffering(v, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Subscription returns an account's participation in an offering. An account
// that never subscribed yields a zero participation, not an error.
func Subscription(v state.LedgerView, id uint64, account string) (*state.Participation, error) {
	if _, err := Info(v, id); err != nil {
		return nil, err
	}
	part, err := state.GetParticipation(v, id, account)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return &state.Participation{Subscribed: new(big.Int)}, nil
	}
	return part, nil
}

// IsOpen reports whether an offering accepts subscriptions at the given
// time.
func IsOpen(v state.LedgerView, id uint64, now int64) (bool, error) {
	rec, err := Info(v, id)
	if err != nil {
		return false, err
	}
	if rec.Status == state.OfferingCancelled {
		return false, nil
	}
	return now >= rec.StartTime && now <= rec.EndTime, nil
}
