package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	grpcserver "github.com/LeJamon/goRWAd/internal/grpc"
)

var grpcAddr string

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the rwad daemon",
	Long: `Start the goRWAd daemon: restore state from the latest snapshot, apply
the genesis seeds, and serve the gRPC query API until interrupted. A final
snapshot is written on shutdown.

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Set server as the default command
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serverCmd.RunE(cmd, args)
	}

	serverCmd.Flags().StringVar(&grpcAddr, "grpc", "", "gRPC listen address (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if grpcAddr != "" {
		cfg.Server.GRPCAddr = grpcAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := openNode(ctx, cfg)
	if err != nil {
		return err
	}
	defer n.close()

	backend := grpcserver.NewLocalBackend(n.store, n.oracle, n.perms, n.journal,
		cfg.MaxPriceAge(), nil)

	server, err := grpcserver.NewServer(&grpcserver.ServerConfig{
		Address:        cfg.Server.GRPCAddr,
		MaxRecvMsgSize: cfg.Server.MaxRecvMsgSize,
		MaxSendMsgSize: cfg.Server.MaxRecvMsgSize,
	}, backend)
	if err != nil {
		return err
	}

	if err := server.StartAsync(); err != nil {
		return err
	}
	if !quiet {
		fmt.Printf("goRWAd listening on %s (data: %s)\n", server.Address(), cfg.Database.Path)
	}

	<-ctx.Done()

	if !quiet {
		fmt.Println("shutting down")
	}
	server.Stop()

	// Persist state outside the cancelled signal context.
	if err := n.saveSnapshot(context.Background()); err != nil {
		return err
	}
	return nil
}
