package cli

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goRWAd/internal/core/state"
)

// verifyCmd checks the store against the protocol's accounting invariants.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check state invariants",
	Long: `Verify the restored state against the protocol's accounting invariants:
every vault's share supply matches the sum of share balances and stays
under its cap, every offering's raise total matches the sum of its
subscriptions, and active offerings hold the full raise in escrow.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	n, err := openNode(ctx, cfg)
	if err != nil {
		return err
	}
	defer n.close()

	if err := verifyState(ctx, n.store); err != nil {
		return err
	}
	if !quiet {
		fmt.Println("state OK")
	}
	return nil
}

// verifyState runs the per-vault and per-offering checks concurrently.
func verifyState(ctx context.Context, store *state.Store) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, key := range store.Keys(state.PrefixVault) {
		assetID := strings.TrimPrefix(key, state.PrefixVault)
		g.Go(func() error {
			return verifyVault(ctx, store, assetID)
		})
	}

	for _, key := range store.Keys(state.PrefixOffering) {
		key := key
		g.Go(func() error {
			return verifyOffering(ctx, store, key)
		})
	}

	return g.Wait()
}

func verifyVault(ctx context.Context, store *state.Store, assetID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rec, err := state.GetVault(store, assetID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("vault %s: record vanished during scan", assetID)
	}

	if rec.TotalSupply.Cmp(rec.MaxSupply) > 0 {
		return fmt.Errorf("vault %s: supply %s exceeds cap %s",
			assetID, rec.TotalSupply, rec.MaxSupply)
	}

	// Share supply must equal the sum of all holdings.
	held := new(big.Int)
	prefix := state.PrefixBalance + rec.ShareToken() + "/"
	for _, key := range store.Keys(prefix) {
		account := strings.TrimPrefix(key, prefix)
		balance, err := state.GetBalance(store, rec.ShareToken(), account)
		if err != nil {
			return err
		}
		held.Add(held, balance)
	}
	if held.Cmp(rec.TotalSupply) != 0 {
		return fmt.Errorf("vault %s: held shares %s do not match supply %s",
			assetID, held, rec.TotalSupply)
	}

	return nil
}

func verifyOffering(ctx context.Context, store *state.Store, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := store.Read(key)
	if err != nil || data == nil {
		return fmt.Errorf("offering %s: record vanished during scan", key)
	}
	var rec state.Offering
	if err := state.Decode(data, &rec); err != nil {
		return err
	}

	// The raise total never decreases, so it must equal the sum of all
	// subscriptions regardless of claims and refunds.
	subscribed := new(big.Int)
	prefix := fmt.Sprintf("%s%d/", state.PrefixParticipation, rec.ID)
	for _, partKey := range store.Keys(prefix) {
		account := strings.TrimPrefix(partKey, prefix)
		part, err := state.GetParticipation(store, rec.ID, account)
		if err != nil {
			return err
		}
		if part != nil {
			subscribed.Add(subscribed, part.Subscribed)
		}
	}
	if subscribed.Cmp(rec.TotalRaised) != 0 {
		return fmt.Errorf("offering %d: subscriptions %s do not match raise total %s",
			rec.ID, subscribed, rec.TotalRaised)
	}

	// Until the teller withdraws, every raised unit sits in escrow.
	if rec.Status == state.OfferingActive {
		escrowed, err := state.GetBalance(store, rec.PaymentToken, rec.EscrowAccount())
		if err != nil {
			return err
		}
		if escrowed.Cmp(rec.TotalRaised) != 0 {
			return fmt.Errorf("offering %d: escrow holds %s of a %s raise",
				rec.ID, escrowed, rec.TotalRaised)
		}
	}

	return nil
}
