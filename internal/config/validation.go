package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/LeJamon/goRWAd/internal/storage/compression"
)

// ValidateConfig checks the complete configuration for values a node cannot
// run with.
func ValidateConfig(config *Config) error {
	if err := validateServer(&config.Server); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}
	if err := validateDatabase(&config.Database); err != nil {
		return fmt.Errorf("database validation failed: %w", err)
	}
	if err := validateOracle(&config.Oracle); err != nil {
		return fmt.Errorf("oracle validation failed: %w", err)
	}
	if err := validateProtocol(&config.Protocol); err != nil {
		return fmt.Errorf("protocol validation failed: %w", err)
	}
	return nil
}

func validateServer(c *ServerConfig) error {
	if c.GRPCAddr != "" {
		if _, _, err := net.SplitHostPort(c.GRPCAddr); err != nil {
			return fmt.Errorf("invalid grpc_addr %q: %w", c.GRPCAddr, err)
		}
	}
	if c.MaxRecvMsgSize < 0 {
		return fmt.Errorf("max_recv_msg_size cannot be negative: %d", c.MaxRecvMsgSize)
	}
	return nil
}

func validateDatabase(c *DatabaseConfig) error {
	if c.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if _, err := compression.Get(c.SnapshotCompression); err != nil {
		return fmt.Errorf("unknown snapshot_compression %q (available: %s)",
			c.SnapshotCompression, strings.Join(compression.Available(), ", "))
	}
	if c.SnapshotKeep < 1 {
		return fmt.Errorf("snapshot_keep must be at least 1: %d", c.SnapshotKeep)
	}
	if c.SnapshotInterval < 0 {
		return fmt.Errorf("snapshot_interval cannot be negative: %d", c.SnapshotInterval)
	}
	return nil
}

func validateOracle(c *OracleConfig) error {
	if c.MaxPriceAgeSeconds <= 0 {
		return fmt.Errorf("max_price_age_seconds must be positive: %d", c.MaxPriceAgeSeconds)
	}
	if c.RoundCacheSize < 1 {
		return fmt.Errorf("round_cache_size must be at least 1: %d", c.RoundCacheSize)
	}
	return nil
}

func validateProtocol(c *ProtocolConfig) error {
	if c.PaymentToken == "" {
		return fmt.Errorf("payment_token cannot be empty")
	}
	return nil
}
