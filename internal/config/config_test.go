package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()

	configContent := `
debug_logfile = "/tmp/rwad-debug.log"

[server]
grpc_addr = "0.0.0.0:9090"

[database]
path = "/tmp/test/rwad"
snapshot_compression = "none"
snapshot_keep = 3

[oracle]
max_price_age_seconds = 600

[protocol]
payment_token = "EURC"
`

	configPath := filepath.Join(tempDir, "rwad.toml")
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "0.0.0.0:9090", config.Server.GRPCAddr)
	assert.Equal(t, "/tmp/test/rwad", config.Database.Path)
	assert.Equal(t, "none", config.Database.SnapshotCompression)
	assert.Equal(t, 3, config.Database.SnapshotKeep)
	assert.Equal(t, 600, config.Oracle.MaxPriceAgeSeconds)
	assert.Equal(t, "EURC", config.Protocol.PaymentToken)
	assert.Equal(t, "/tmp/rwad-debug.log", config.DebugLogfile)
	assert.Equal(t, configPath, config.ConfigPath())

	// Unset values keep their defaults
	assert.Equal(t, 256, config.Database.SnapshotInterval)
	assert.Equal(t, 1024, config.Oracle.RoundCacheSize)
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:50051", config.Server.GRPCAddr)
	assert.Equal(t, "/var/lib/rwad/db", config.Database.Path)
	assert.Equal(t, "lz4", config.Database.SnapshotCompression)
	assert.Equal(t, 8, config.Database.SnapshotKeep)
	assert.Equal(t, time.Hour, config.MaxPriceAge())
	assert.Equal(t, "USD", config.Protocol.PaymentToken)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("RWAD_PROTOCOL_PAYMENT_TOKEN", "USDT")
	t.Setenv("RWAD_ORACLE_MAX_PRICE_AGE_SECONDS", "120")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "USDT", config.Protocol.PaymentToken)
	assert.Equal(t, 120, config.Oracle.MaxPriceAgeSeconds)
	assert.Equal(t, 2*time.Minute, config.MaxPriceAge())
}

func TestDerivedPaths(t *testing.T) {
	config := DefaultConfig()
	config.Database.Path = "/data/rwad"

	assert.Equal(t, filepath.Join("/data/rwad", "snapshots"), config.SnapshotPath())
	assert.Equal(t, filepath.Join("/data/rwad", "journal.db"), config.JournalPath())

	config.Database.JournalPath = "/mnt/fast/journal.db"
	assert.Equal(t, "/mnt/fast/journal.db", config.JournalPath())
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad grpc addr",
			mutate:  func(c *Config) { c.Server.GRPCAddr = "no-port" },
			wantErr: "invalid grpc_addr",
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "path cannot be empty",
		},
		{
			name:    "unknown compressor",
			mutate:  func(c *Config) { c.Database.SnapshotCompression = "zstd" },
			wantErr: "unknown snapshot_compression",
		},
		{
			name:    "zero snapshot keep",
			mutate:  func(c *Config) { c.Database.SnapshotKeep = 0 },
			wantErr: "snapshot_keep",
		},
		{
			name:    "zero price age",
			mutate:  func(c *Config) { c.Oracle.MaxPriceAgeSeconds = 0 },
			wantErr: "max_price_age_seconds",
		},
		{
			name:    "zero round cache",
			mutate:  func(c *Config) { c.Oracle.RoundCacheSize = 0 },
			wantErr: "round_cache_size",
		},
		{
			name:    "empty payment token",
			mutate:  func(c *Config) { c.Protocol.PaymentToken = "" },
			wantErr: "payment_token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := ValidateConfig(config)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
