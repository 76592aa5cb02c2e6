package state

import "fmt"

// Key prefixes for the protocol state store. Keys are flat strings so the
// snapshot store can range-scan a record family by prefix.
const (
	PrefixVault         = "vault/"
	PrefixOffering      = "offering/"
	PrefixParticipation = "part/"
	PrefixBalance       = "bal/"
	PrefixAllowance     = "allow/"

	// offeringSeqKey holds the last assigned offering id.
	offeringSeqKey = "meta/offering-seq"
)

// VaultKey returns the state key for the vault backing the given asset.
func VaultKey(assetID string) string {
	return PrefixVault + assetID
}

// OfferingKey returns the state key for an offering record.
func OfferingKey(id uint64) string {
	return fmt.Sprintf("%s%d", PrefixOffering, id)
}

// ParticipationKey returns the state key for a (offering, subscriber) pair.
func ParticipationKey(id uint64, account string) string {
	return fmt.Sprintf("%s%d/%s", PrefixParticipation, id, account)
}

// BalanceKey returns the state key for a token balance.
func BalanceKey(token, account string) string {
	return PrefixBalance + token + "/" + account
}

// AllowanceKey returns the state key for a spend allowance.
func AllowanceKey(token, owner, spender string) string {
	return PrefixAllowance + token + "/" + owner + "/" + spender
}
