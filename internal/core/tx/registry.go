package tx

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownTransactionType is returned when a transaction type is unknown.
var ErrUnknownTransactionType = errors.New("unknown transaction type")

var typeNames = map[Type]string{
	TypeVaultCreate:           "VaultCreate",
	TypeVaultSet:              "VaultSet",
	TypeVaultDeposit:          "VaultDeposit",
	TypeVaultMint:             "VaultMint",
	TypeVaultWithdraw:         "VaultWithdraw",
	TypeVaultRedeem:           "VaultRedeem",
	TypeOfferingCreate:        "OfferingCreate",
	TypeOfferingCancel:        "OfferingCancel",
	TypeOfferingSubscribe:     "OfferingSubscribe",
	TypeOfferingWithdrawFunds: "OfferingWithdrawFunds",
	TypeOfferingDepositSale:   "OfferingDepositSale",
	TypeOfferingAllowClaim:    "OfferingAllowClaim",
	TypeOfferingClaim:         "OfferingClaim",
	TypeOfferingRefund:        "OfferingRefund",
}

// Name returns the canonical name of the type.
func (t Type) Name() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// TypeFromName resolves a type by its canonical name.
func TypeFromName(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Factory creates an empty transaction of a registered type.
type Factory func() Transaction

var (
	registryMu sync.RWMutex
	registry   = make(map[Type]Factory)
)

// Register installs a factory for a transaction type. Transaction packages
// call it from init; registering a type twice panics.
func Register(t Type, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[t]; exists {
		panic(fmt.Sprintf("tx: type %s registered twice", t.Name()))
	}
	registry[t] = f
}

// NewFromType creates an empty transaction of the given type.
func NewFromType(t Type) (Transaction, error) {
	registryMu.RLock()
	f, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, ErrUnknownTransactionType
	}
	return f(), nil
}

// RegisteredTypes returns all registered types, sorted.
func RegisteredTypes() []Type {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// FromJSON creates a transaction from a JSON object carrying a
// TransactionType field.
func FromJSON(data []byte) (Transaction, error) {
	var raw struct {
		TransactionType string `json:"TransactionType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	t, ok := TypeFromName(raw.TransactionType)
	if !ok {
		return nil, ErrUnknownTransactionType
	}

	txn, err := NewFromType(t)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, txn); err != nil {
		return nil, err
	}
	return txn, nil
}
