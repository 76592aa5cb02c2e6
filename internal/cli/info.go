package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	grpcserver "github.com/LeJamon/goRWAd/internal/grpc"
)

// infoCmd groups the read-only lookups. Each subcommand goes through the same
// query backend the gRPC server uses and prints the response as JSON.
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Inspect local node state",
}

var infoVaultCmd = &cobra.Command{
	Use:   "vault <asset-id>",
	Short: "Show a vault record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withQueryServer(func(ctx context.Context, server *grpcserver.Server) (any, error) {
			return server.GetVault(ctx, &grpcserver.GetVaultRequest{AssetID: args[0]})
		})
	},
}

var infoOfferingCmd = &cobra.Command{
	Use:   "offering <id>",
	Short: "Show an offering record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid offering id %q: %w", args[0], err)
		}
		return withQueryServer(func(ctx context.Context, server *grpcserver.Server) (any, error) {
			return server.GetOffering(ctx, &grpcserver.GetOfferingRequest{OfferingID: id})
		})
	},
}

var infoBalanceCmd = &cobra.Command{
	Use:   "balance <token> <account>",
	Short: "Show an account balance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withQueryServer(func(ctx context.Context, server *grpcserver.Server) (any, error) {
			return server.GetBalance(ctx, &grpcserver.GetBalanceRequest{Token: args[0], Account: args[1]})
		})
	},
}

var infoPriceCmd = &cobra.Command{
	Use:   "price <asset-id>",
	Short: "Show the current oracle price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withQueryServer(func(ctx context.Context, server *grpcserver.Server) (any, error) {
			return server.GetPrice(ctx, &grpcserver.GetPriceRequest{AssetID: args[0]})
		})
	},
}

var infoAccountCmd = &cobra.Command{
	Use:   "account <account>",
	Short: "Show an account's roles and KYC status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withQueryServer(func(ctx context.Context, server *grpcserver.Server) (any, error) {
			return server.GetAccount(ctx, &grpcserver.GetAccountRequest{Account: args[0]})
		})
	},
}

var infoTxCmd = &cobra.Command{
	Use:   "tx <seq>",
	Short: "Show a journaled transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid sequence %q: %w", args[0], err)
		}
		return withQueryServer(func(ctx context.Context, server *grpcserver.Server) (any, error) {
			return server.GetTransaction(ctx, &grpcserver.GetTransactionRequest{Seq: seq})
		})
	},
}

func init() {
	infoCmd.AddCommand(infoVaultCmd, infoOfferingCmd, infoBalanceCmd,
		infoPriceCmd, infoAccountCmd, infoTxCmd)
	rootCmd.AddCommand(infoCmd)
}

// withQueryServer opens the node, runs one query against an unstarted gRPC
// server, and prints the response as indented JSON.
func withQueryServer(query func(context.Context, *grpcserver.Server) (any, error)) error {
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

	backend := grpcserver.NewLocalBackend(n.store, n.oracle, n.perms, n.journal,
		cfg.MaxPriceAge(), nil)
	server, err := grpcserver.NewServer(grpcserver.DefaultServerConfig(), backend)
	if err != nil {
		return err
	}

	resp, err := query(ctx, server)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
