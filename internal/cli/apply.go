package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goRWAd/internal/core/tx"
)

// applyCmd submits one transaction from a JSON file against the local state.
var applyCmd = &cobra.Command{
	Use:   "apply <tx.json>",
	Short: "Apply a transaction to the local state",
	Long: `Apply a single transaction, given as a JSON document, to the node's
state. The document must carry a "TransactionType" field naming one of the
registered types (VaultCreate, VaultDeposit, OfferingSubscribe, ...).

Reads from stdin when the file argument is "-". The state snapshot is
updated only when the transaction succeeds; the attempt is journaled either
way. Exits non-zero on any result other than tesSUCCESS.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var data []byte
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return err
	}

	txn, err := tx.FromJSON(data)
	if err != nil {
		return err
	}

	ctx := context.Background()
	n, err := openNode(ctx, cfg)
	if err != nil {
		return err
	}
	defer n.close()

	result := n.engine.Apply(txn)
	if !quiet {
		fmt.Printf("%s: %s\n", txn.TxType().Name(), result)
	}

	if result.Success() {
		if err := n.saveSnapshot(ctx); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("transaction failed: %s", result)
}
