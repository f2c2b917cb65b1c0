package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityEngine/internal/fixed"
	"liquidityEngine/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS pool_snapshots (
	pool_id      TEXT PRIMARY KEY,
	assets       JSONB NOT NULL,
	decimals     JSONB NOT NULL,
	total_share  NUMERIC(78, 0) NOT NULL,
	ts           BIGINT NOT NULL,
	block_number BIGINT NOT NULL DEFAULT 0,
	source       TEXT NOT NULL DEFAULT '',
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS quotes (
	id                BIGSERIAL PRIMARY KEY,
	pool_id           TEXT NOT NULL,
	pool_type         TEXT NOT NULL,
	operation         TEXT NOT NULL,
	offer             JSONB NOT NULL,
	return_assets     JSONB NOT NULL,
	spread_amount     TEXT NOT NULL DEFAULT '',
	commission_amount TEXT NOT NULL DEFAULT '',
	share             TEXT NOT NULL DEFAULT '',
	locked_share      TEXT NOT NULL DEFAULT '',
	fee_part          TEXT NOT NULL DEFAULT '',
	ts                BIGINT NOT NULL,
	quoted_at         TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store provides Postgres persistence for pool snapshots and quotes.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables when they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// PutQuoteBatch inserts quotes in one round trip.
func (s *Store) PutQuoteBatch(ctx context.Context, quotes []model.QuoteRecord) error {
	if len(quotes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, q := range quotes {
		offer, err := marshalAssets(q.Offer)
		if err != nil {
			return fmt.Errorf("encode offer: %w", err)
		}
		ret, err := marshalAssets(q.Return)
		if err != nil {
			return fmt.Errorf("encode return: %w", err)
		}
		batch.Queue(`
			INSERT INTO quotes (
				pool_id, pool_type, operation, offer, return_assets, spread_amount,
				commission_amount, share, locked_share, fee_part, ts, quoted_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		`,
			q.PoolID,
			q.PoolType,
			q.Operation,
			offer,
			ret,
			q.Spread,
			q.Commission,
			q.Share,
			q.LockedShare,
			q.FeePart,
			int64(q.Timestamp),
			q.QuotedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range quotes {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertSnapshot inserts or replaces the latest snapshot of a pool.
func (s *Store) UpsertSnapshot(ctx context.Context, poolID string, snap model.PoolSnapshot) error {
	if poolID == "" {
		return fmt.Errorf("pool id required")
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	assets, err := marshalAssets(snap.Assets)
	if err != nil {
		return fmt.Errorf("encode assets: %w", err)
	}
	decimals := make([]int, len(snap.Decimals))
	for i, d := range snap.Decimals {
		decimals[i] = int(d)
	}
	rawDecimals, err := json.Marshal(decimals)
	if err != nil {
		return fmt.Errorf("encode decimals: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO pool_snapshots (pool_id, assets, decimals, total_share, ts, block_number, source, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, now())
		ON CONFLICT (pool_id) DO UPDATE SET
			assets = EXCLUDED.assets,
			decimals = EXCLUDED.decimals,
			total_share = EXCLUDED.total_share,
			ts = EXCLUDED.ts,
			block_number = EXCLUDED.block_number,
			source = EXCLUDED.source,
			updated_at = now()
	`,
		poolID,
		assets,
		rawDecimals,
		snap.TotalShare.Dec(),
		int64(snap.Timestamp),
		int64(snap.BlockNumber),
		snap.Source,
	)
	return err
}

// LoadSnapshot returns the stored snapshot for poolID. The bool is false when
// nothing is stored.
func (s *Store) LoadSnapshot(ctx context.Context, poolID string) (model.PoolSnapshot, bool, error) {
	if poolID == "" {
		return model.PoolSnapshot{}, false, fmt.Errorf("pool id required")
	}
	var (
		assets      []byte
		decimals    []byte
		totalShare  string
		ts          int64
		blockNumber int64
		source      string
	)
	row := s.pool.QueryRow(ctx, `
		SELECT assets, decimals, total_share::text, ts, block_number, source
		FROM pool_snapshots WHERE pool_id=$1
	`, poolID)
	if err := row.Scan(&assets, &decimals, &totalShare, &ts, &blockNumber, &source); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PoolSnapshot{}, false, nil
		}
		return model.PoolSnapshot{}, false, err
	}

	var snap model.PoolSnapshot
	if err := json.Unmarshal(assets, &snap.Assets); err != nil {
		return model.PoolSnapshot{}, false, fmt.Errorf("decode assets: %w", err)
	}
	var rawDecimals []int
	if err := json.Unmarshal(decimals, &rawDecimals); err != nil {
		return model.PoolSnapshot{}, false, fmt.Errorf("decode decimals: %w", err)
	}
	snap.Decimals = make([]uint8, len(rawDecimals))
	for i, d := range rawDecimals {
		if d < 0 || d > 77 {
			return model.PoolSnapshot{}, false, fmt.Errorf("%w: decimals %d out of range", model.ErrInvalidPool, d)
		}
		snap.Decimals[i] = uint8(d)
	}
	total, err := fixed.ParseUint(totalShare)
	if err != nil {
		return model.PoolSnapshot{}, false, fmt.Errorf("decode total share: %w", err)
	}
	snap.TotalShare = total
	snap.Timestamp = uint64(ts)
	snap.BlockNumber = uint64(blockNumber)
	snap.Source = source
	return snap, true, nil
}

func marshalAssets(assets []model.Asset) ([]byte, error) {
	if assets == nil {
		assets = []model.Asset{}
	}
	return json.Marshal(assets)
}
