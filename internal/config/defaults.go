package config

import "github.com/spf13/viper"

// setDefaults sets the built-in defaults a node runs with when no file or
// environment variable overrides them.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.grpc_addr", "127.0.0.1:50051")
	v.SetDefault("server.max_recv_msg_size", 4*1024*1024)

	// Database defaults
	v.SetDefault("database.path", "/var/lib/rwad/db")
	v.SetDefault("database.snapshot_compression", "lz4")
	v.SetDefault("database.snapshot_keep", 8)
	v.SetDefault("database.snapshot_interval", 256)
	v.SetDefault("database.journal_path", "")

	// Oracle defaults
	v.SetDefault("oracle.max_price_age_seconds", 3600)
	v.SetDefault("oracle.round_cache_size", 1024)

	// Protocol defaults
	v.SetDefault("protocol.payment_token", "USD")

	// Diagnostics
	v.SetDefault("debug_logfile", "")
}
