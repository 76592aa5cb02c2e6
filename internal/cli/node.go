package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/LeJamon/goRWAd/internal/config"
	"github.com/LeJamon/goRWAd/internal/core/access"
	"github.com/LeJamon/goRWAd/internal/core/oracle"
	"github.com/LeJamon/goRWAd/internal/core/state"
	"github.com/LeJamon/goRWAd/internal/core/tx"
	"github.com/LeJamon/goRWAd/internal/storage/history"
	"github.com/LeJamon/goRWAd/internal/storage/kvdb"
	pebblekv "github.com/LeJamon/goRWAd/internal/storage/kvdb/pebble"
	"github.com/LeJamon/goRWAd/internal/storage/snapshot"

	// Register the transaction types with the factory.
	_ "github.com/LeJamon/goRWAd/internal/core/tx/offering"
	_ "github.com/LeJamon/goRWAd/internal/core/tx/vault"
)

// node bundles the stores and the engine a command operates on.
type node struct {
	cfg       *config.Config
	db        kvdb.DB
	snapshots *snapshot.Store
	journal   *history.Journal
	store     *state.Store
	oracle    *oracle.Store
	perms     *access.Registry
	engine    *tx.Engine

	// fresh is true when no snapshot existed at open time
	fresh bool
}

// openNode assembles a node from the configuration: protocol state restored
// from the latest snapshot, the journal database, and an engine resuming the
// journal's sequence. Roles, KYC and oracle prices are volatile and reseeded
// from the genesis file on every start.
func openNode(ctx context.Context, cfg *config.Config) (*node, error) {
	if err := os.MkdirAll(cfg.Database.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := pebblekv.Open(cfg.SnapshotPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	snapshots, err := snapshot.New(db, cfg.Database.SnapshotCompression)
	if err != nil {
		db.Close()
		return nil, err
	}

	store := state.NewStore()
	fresh := false
	if _, err := snapshots.LoadLatest(ctx, store); err != nil {
		if !errors.Is(err, snapshot.ErrNoSnapshot) {
			db.Close()
			return nil, fmt.Errorf("failed to restore snapshot: %w", err)
		}
		fresh = true
	}

	journal, err := history.Open(cfg.JournalPath())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	lastSeq, err := journal.LastSeq()
	if err != nil {
		journal.Close()
		db.Close()
		return nil, err
	}

	orc, err := oracle.NewStore(cfg.Oracle.RoundCacheSize)
	if err != nil {
		journal.Close()
		db.Close()
		return nil, err
	}
	perms := access.NewRegistry()

	engine := tx.NewEngine(store, orc, perms,
		tx.WithMaxPriceAge(cfg.MaxPriceAge()),
		tx.WithPaymentToken(cfg.Protocol.PaymentToken),
		tx.WithJournal(journal),
		tx.WithSequence(lastSeq),
	)

	n := &node{
		cfg:       cfg,
		db:        db,
		snapshots: snapshots,
		journal:   journal,
		store:     store,
		oracle:    orc,
		perms:     perms,
		engine:    engine,
		fresh:     fresh,
	}

	if genesisFile != "" {
		if err := n.applyGenesis(genesisFile); err != nil {
			n.close()
			return nil, fmt.Errorf("failed to apply genesis: %w", err)
		}
	}

	return n, nil
}

// saveSnapshot persists the current state at the engine's sequence and prunes
// old snapshots.
func (n *node) saveSnapshot(ctx context.Context) error {
	seq := n.engine.Seq()
	if seq == 0 {
		// Nothing applied yet.
		return nil
	}
	if err := n.snapshots.Save(ctx, seq, n.store); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return n.snapshots.Prune(ctx, n.cfg.Database.SnapshotKeep)
}

func (n *node) close() {
	if n.journal != nil {
		n.journal.Close()
	}
	if n.db != nil {
		n.db.Close()
	}
}
