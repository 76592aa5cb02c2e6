// Package cli implements the rwad command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goRWAd/internal/config"
)

var (
	// Global flags
	configFile  string
	genesisFile string
	quiet       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rwad",
	Short: "goRWAd - tokenization protocol daemon in Go",
	Long: `goRWAd runs an oracle-priced tokenization protocol: role-gated vaults
that convert between underlying assets and share tokens, a price oracle
with historical rounds, and an offering engine with pro-rata settlement.

State is persisted through compressed snapshots and every transaction is
journaled to a local history database.`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path (rwad.toml)")
	rootCmd.PersistentFlags().StringVar(&genesisFile, "genesis", "", "path to genesis JSON file (roles, KYC, oracle seeds)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig() (*config.Config, error) {
	return config.LoadConfig(configFile)
}
