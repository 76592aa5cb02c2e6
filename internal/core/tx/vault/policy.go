package vault

import (
	"github.com/LeJamon/goRWAd/internal/core/access"
	"github.com/LeJamon/goRWAd/internal/core/state"
)

// VoidParty is the empty counterparty of a mint (as sender) or burn (as
// receiver).
const VoidParty = ""

// IsTeller resolves teller identity for a vault. With SeparatedTeller set,
// the designated local teller address is the only teller; otherwise the
// teller role decides.
func IsTeller(v *state.Vault, p access.Permissions, account string) bool {
	if account == VoidParty {
		return false
	}
	if v.SeparatedTeller {
		return account == v.LocalTeller
	}
	return p.HasRole(access.RoleTeller, account)
}

// CanTransfer is the share-movement permission table, checked on every
// balance-changing operation. Precedence:
//
//  1. A teller on either side is always allowed.
//  2. In offering mode, only transfers (no mint/burn) between parties of
//     which at least one is whitelisted.
//  3. In normal mode, mint/burn is open to anyone; pure transfers need a
//     whitelisted party on either side.
func CanTransfer(v *state.Vault, p access.Permissions, from, to string) bool {
	if IsTeller(v, p, from) || IsTeller(v, p, to) {
		return true
	}

	mintOrBurn := from == VoidParty || to == VoidParty
	whitelisted := (from != VoidParty && p.HasRole(access.RoleWhitelisted, from)) ||
		(to != VoidParty && p.HasRole(access.RoleWhitelisted, to))

	if v.OfferingMode {
		return whitelisted && !mintOrBurn
	}
	if mintOrBurn {
		return true
	}
	return whitelisted
}
