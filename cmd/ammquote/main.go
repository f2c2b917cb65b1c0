package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"liquidityEngine/internal/config"
	"liquidityEngine/internal/model"
	"liquidityEngine/internal/quote"
	"liquidityEngine/internal/storage"
	"liquidityEngine/internal/storage/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ammquote",
		Short:        "Quote swaps and liquidity operations against AMM pools",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("out", "", "append results to this JSONL file")
	flags.String("pg-dsn", "", "Postgres DSN for the quote journal and stored snapshots")
	flags.String("snapshot-source", config.SourceConfig, "where pool reserves come from (config, postgres)")
	flags.String("timestamp", "", "pricing time (unix seconds or RFC3339), drives the amp ramp")

	root.AddCommand(
		newSwapCmd(),
		newReverseCmd(),
		newProvideCmd(),
		newWithdrawCmd(),
		newSnapshotCmd(),
	)
	return root
}

// session is the shared state of one quote command.
type session struct {
	cfg    config.Config
	logger *zap.Logger
	pool   quote.Pool
	quoter *quote.Quoter
	store  *postgres.Store
}

func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	poolCfg, err := cfg.Pool.BuildConfig()
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("pool config: %w", err)
	}

	s := &session{cfg: cfg, logger: logger, quoter: quote.NewQuoter(logger)}
	if cfg.PGDSN != "" {
		if s.store, err = postgres.NewStore(ctx, cfg.PGDSN); err != nil {
			s.close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := s.store.EnsureSchema(ctx); err != nil {
			s.close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	var snap model.PoolSnapshot
	switch cfg.SnapshotSource {
	case config.SourcePostgres:
		if s.store == nil {
			s.close()
			return nil, fmt.Errorf("snapshot source postgres needs --pg-dsn")
		}
		var found bool
		snap, found, err = s.store.LoadSnapshot(ctx, poolCfg.ID)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		if !found {
			s.close()
			return nil, fmt.Errorf("no stored snapshot for pool %q", poolCfg.ID)
		}
		if cfg.Pool.Timestamp != "" {
			if snap.Timestamp, err = config.ParseTimestamp(cfg.Pool.Timestamp); err != nil {
				s.close()
				return nil, fmt.Errorf("timestamp: %w", err)
			}
		}
	default:
		if snap, err = cfg.Pool.BuildSnapshot(); err != nil {
			s.close()
			return nil, fmt.Errorf("pool snapshot: %w", err)
		}
	}
	s.pool = quote.Pool{Config: poolCfg, Snapshot: snap}

	logger.Debug("pool loaded",
		zap.String("pool", poolCfg.ID),
		zap.String("type", string(poolCfg.Type)),
		zap.String("source", snap.Source),
		zap.Uint64("timestamp", snap.Timestamp),
	)
	return s, nil
}

func (s *session) close() {
	if s.store != nil {
		s.store.Close()
	}
	_ = s.logger.Sync()
}

// emit prints rec and journals it to every configured sink.
func (s *session) emit(ctx context.Context, w io.Writer, rec model.QuoteRecord) error {
	rec.QuotedAt = time.Now().UTC().Format(time.RFC3339)
	if err := writeJSON(w, rec); err != nil {
		return err
	}

	var sinks storage.Multi
	if s.cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(s.cfg.Out))
	}
	if s.store != nil {
		sinks = append(sinks, s.store)
	}
	if len(sinks) == 0 {
		return nil
	}
	if err := sinks.PutQuoteBatch(ctx, []model.QuoteRecord{rec}); err != nil {
		return fmt.Errorf("journal quote: %w", err)
	}
	s.logger.Info("quote journaled",
		zap.String("pool", rec.PoolID),
		zap.String("operation", rec.Operation),
		zap.String("out", s.cfg.Out),
		zap.Bool("postgres", s.store != nil),
	)
	return nil
}

// runQuote wires signal handling and session lifetime around one quote.
func runQuote(cmd *cobra.Command, price func(*session) (model.QuoteRecord, error)) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	rec, err := price(s)
	if err != nil {
		return err
	}
	return s.emit(ctx, cmd.OutOrStdout(), rec)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
