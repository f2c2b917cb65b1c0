package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityEngine/internal/chain"
	"liquidityEngine/internal/config"
	"liquidityEngine/internal/storage/postgres"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Read a constant-product pair's reserves from chain",
		RunE:  runSnapshot,
	}
	cmd.Flags().String("rpc", "", "JSON-RPC URL")
	cmd.Flags().String("pair", "", "pair contract address")
	cmd.Flags().Uint64("block", 0, "block to read at, 0 means latest")
	cmd.Flags().String("pool-id", "", "id to store the snapshot under (defaults to pool.id, then the pair address)")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts per call")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	return cmd
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSnapshot(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	pair, err := chain.ParseAddress(cfg.Pair)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	reader := chain.NewPairReader(client, chain.RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.RetryBackoff,
		MaxDelay:   30 * time.Second,
	}, logger)

	snap, err := reader.Snapshot(ctx, pair, cfg.Block)
	if err != nil {
		return err
	}

	if err := writeJSON(cmd.OutOrStdout(), snap); err != nil {
		return err
	}

	if cfg.Out != "" {
		if err := writeSnapshotFile(cfg.Out, snap); err != nil {
			return err
		}
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		if err := store.UpsertSnapshot(ctx, cfg.PoolID, snap); err != nil {
			return fmt.Errorf("store snapshot: %w", err)
		}
	}

	logger.Info("snapshot stored",
		zap.String("pool", cfg.PoolID),
		zap.Uint64("block", snap.BlockNumber),
		zap.String("out", cfg.Out),
		zap.Bool("postgres", cfg.PGDSN != ""),
	)
	return nil
}

func writeSnapshotFile(path string, v interface{}) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	return writeAndClose(file, v)
}

// writeAndClose encodes v and reports a failed close, which is where a
// buffered write surfaces its error.
func writeAndClose(wc io.WriteCloser, v interface{}) error {
	if err := writeJSON(wc, v); err != nil {
		wc.Close()
		return fmt.Errorf("write snapshot file: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close snapshot file: %w", err)
	}
	return nil
}

