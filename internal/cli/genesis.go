package cli

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/LeJamon/goRWAd/internal/core/access"
	"github.com/LeJamon/goRWAd/internal/core/token"
)

// genesisDoc seeds a node at startup. Roles, KYC and oracle prices live in
// memory and are reapplied on every start; balances are minted only when the
// node starts without a snapshot.
type genesisDoc struct {
	Roles    map[string][]string `json:"roles"`
	Kyc      []string            `json:"kyc"`
	Oracles  []genesisOracle     `json:"oracles"`
	Balances []genesisBalance    `json:"balances"`
}

type genesisOracle struct {
	AssetID string `json:"asset_id"`
	Price   string `json:"price"`
	Active  bool   `json:"active"`
}

type genesisBalance struct {
	Token   string `json:"token"`
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

var knownRoles = map[string]access.Role{
	string(access.RoleOwner):         access.RoleOwner,
	string(access.RoleTeller):        access.RoleTeller,
	string(access.RoleWhitelisted):   access.RoleWhitelisted,
	string(access.RoleOracleUpdater): access.RoleOracleUpdater,
}

func (n *node) applyGenesis(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc genesisDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid genesis file %s: %w", path, err)
	}

	for name, accounts := range doc.Roles {
		role, ok := knownRoles[name]
		if !ok {
			return fmt.Errorf("unknown role %q", name)
		}
		for _, account := range accounts {
			n.perms.Grant(role, account)
		}
	}

	for _, account := range doc.Kyc {
		n.perms.SetKyc(account, true)
	}

	now := time.Now()
	for _, seed := range doc.Oracles {
		if seed.Price != "" {
			price, ok := new(big.Int).SetString(seed.Price, 10)
			if !ok {
				return fmt.Errorf("invalid price %q for %s", seed.Price, seed.AssetID)
			}
			if _, err := n.oracle.SetPrice(seed.AssetID, price, now); err != nil {
				return err
			}
		}
		n.oracle.SetActive(seed.AssetID, seed.Active)
	}

	// Balances are part of persisted state; minting them again after a
	// snapshot restore would double them.
	if n.fresh {
		for _, seed := range doc.Balances {
			amt, ok := new(big.Int).SetString(seed.Amount, 10)
			if !ok {
				return fmt.Errorf("invalid amount %q for %s/%s", seed.Amount, seed.Token, seed.Account)
			}
			if err := token.Mint(n.store, seed.Token, seed.Account, amt); err != nil {
				return err
			}
		}
	}

	return nil
}
