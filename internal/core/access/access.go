// Package access holds the role and KYC registry consumed by the engines on
// every permission check. The engines only see the Permissions interface;
// the registry is the protocol-genesis implementation behind it.
package access

import "sync"

// Role is a named capability grant.
type Role string

const (
	// RoleOwner administers vaults and offerings.
	RoleOwner Role = "owner"
	// RoleTeller is the privileged operator: bypasses transfer
	// restrictions and manages offering settlement.
	RoleTeller Role = "teller"
	// RoleWhitelisted permits peer-to-peer share transfers in restricted
	// mode.
	RoleWhitelisted Role = "whitelisted"
	// RoleOracleUpdater may publish price rounds.
	RoleOracleUpdater Role = "oracle-updater"
)

// Permissions resolves capability lookups for the engines. Implementations
// are swappable without touching engine logic.
type Permissions interface {
	HasRole(role Role, account string) bool
	IsKycPassed(account string) bool
}

// Registry is the default in-memory Permissions implementation, created once
// at protocol genesis and mutated only through its own API.
type Registry struct {
	mu    sync.RWMutex
	roles map[Role]map[string]struct{}
	kyc   map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		roles: make(map[Role]map[string]struct{}),
		kyc:   make(map[string]struct{}),
	}
}

// Grant gives an account a role.
func (r *Registry) Grant(role Role, account string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.roles[role] == nil {
		r.roles[role] = make(map[string]struct{})
	}
	r.roles[role][account] = struct{}{}
}

// Revoke removes a role from an account.
func (r *Registry) Revoke(role Role, account string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.roles[role], account)
}

// SetKyc sets or clears an account's KYC flag.
func (r *Registry) SetKyc(account string, passed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if passed {
		r.kyc[account] = struct{}{}
	} else {
		delete(r.kyc, account)
	}
}

// HasRole reports whether the account holds the role.
func (r *Registry) HasRole(role Role, account string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.roles[role][account]
	return ok
}

// IsKycPassed reports whether the account passed KYC.
func (r *Registry) IsKycPassed(account string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.kyc[account]
	return ok
}
