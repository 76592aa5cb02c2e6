// Package config loads the rwad node configuration from defaults, a TOML
// file, and RWAD_-prefixed environment variables, in that priority order.
package config

import (
	"path/filepath"
	"time"
)

// Config is the complete rwad configuration.
type Config struct {
	// Server section
	Server ServerConfig `toml:"server" mapstructure:"server"`

	// Database section
	Database DatabaseConfig `toml:"database" mapstructure:"database"`

	// Oracle section
	Oracle OracleConfig `toml:"oracle" mapstructure:"oracle"`

	// Protocol section
	Protocol ProtocolConfig `toml:"protocol" mapstructure:"protocol"`

	// Diagnostics
	DebugLogfile string `toml:"debug_logfile" mapstructure:"debug_logfile"`

	configPath string `toml:"-" mapstructure:"-"`
}

// ServerConfig holds the query server settings.
type ServerConfig struct {
	// GRPCAddr is the listen address of the gRPC query service; empty
	// disables it.
	GRPCAddr string `toml:"grpc_addr" mapstructure:"grpc_addr"`

	// MaxRecvMsgSize bounds inbound gRPC message size in bytes.
	MaxRecvMsgSize int `toml:"max_recv_msg_size" mapstructure:"max_recv_msg_size"`
}

// DatabaseConfig holds the persistence settings.
type DatabaseConfig struct {
	// Path is the data directory. Snapshot and journal files live under
	// it unless overridden.
	Path string `toml:"path" mapstructure:"path"`

	// SnapshotCompression selects the snapshot compressor ("lz4" or
	// "none").
	SnapshotCompression string `toml:"snapshot_compression" mapstructure:"snapshot_compression"`

	// SnapshotKeep is how many snapshots survive pruning.
	SnapshotKeep int `toml:"snapshot_keep" mapstructure:"snapshot_keep"`

	// SnapshotInterval is the number of applied transactions between
	// automatic snapshots; 0 disables them.
	SnapshotInterval int `toml:"snapshot_interval" mapstructure:"snapshot_interval"`

	// JournalPath overrides the transaction journal location.
	JournalPath string `toml:"journal_path" mapstructure:"journal_path"`
}

// OracleConfig holds the price-feed settings.
type OracleConfig struct {
	// MaxPriceAgeSeconds is the staleness cutoff applied to every
	// conversion.
	MaxPriceAgeSeconds int `toml:"max_price_age_seconds" mapstructure:"max_price_age_seconds"`

	// RoundCacheSize bounds the in-memory history of price rounds.
	RoundCacheSize int `toml:"round_cache_size" mapstructure:"round_cache_size"`
}

// ProtocolConfig holds protocol-wide parameters.
type ProtocolConfig struct {
	// PaymentToken is the token offerings collect.
	PaymentToken string `toml:"payment_token" mapstructure:"payment_token"`
}

// MaxPriceAge returns the oracle staleness cutoff as a duration.
func (c *Config) MaxPriceAge() time.Duration {
	return time.Duration(c.Oracle.MaxPriceAgeSeconds) * time.Second
}

// SnapshotPath returns the snapshot database directory.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.Database.Path, "snapshots")
}

// JournalPath returns the journal database file, honoring the override.
func (c *Config) JournalPath() string {
	if c.Database.JournalPath != "" {
		return c.Database.JournalPath
	}
	return filepath.Join(c.Database.Path, "journal.db")
}

// ConfigPath returns the file this configuration was loaded from, empty when
// running on defaults.
func (c *Config) ConfigPath() string { return c.configPath }
