package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"flowScope/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS flow_projections (
	account                  TEXT        NOT NULL,
	token                    TEXT        NOT NULL,
	receiver                 TEXT        NOT NULL DEFAULT '',
	observed_at              TIMESTAMPTZ NOT NULL,
	snapshot_timestamp       BIGINT      NOT NULL,
	current_starting_balance NUMERIC(78,0) NOT NULL,
	new_starting_balance     NUMERIC(78,0) NOT NULL,
	current_total_flow_rate  NUMERIC(78,0) NOT NULL,
	new_total_flow_rate      NUMERIC(78,0) NOT NULL,
	current_liquidation      BIGINT,
	new_liquidation          BIGINT,
	held                     BOOLEAN     NOT NULL DEFAULT FALSE,
	created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (account, token, receiver, observed_at)
);
CREATE INDEX IF NOT EXISTS idx_flow_projections_latest ON flow_projections (account, token, observed_at DESC);
`

// Store provides Postgres persistence for projections.
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

// EnsureSchema creates the projection table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutProjectionBatch inserts or updates projection records.
func (s *Store) PutProjectionBatch(ctx context.Context, records []model.ProjectionRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO flow_projections (
				account, token, receiver, observed_at, snapshot_timestamp,
				current_starting_balance, new_starting_balance,
				current_total_flow_rate, new_total_flow_rate,
				current_liquidation, new_liquidation, held, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6::text::numeric,$7::text::numeric,$8::text::numeric,$9::text::numeric,$10,$11,$12,now(),now())
			ON CONFLICT (account, token, receiver, observed_at)
			DO UPDATE SET
				snapshot_timestamp = EXCLUDED.snapshot_timestamp,
				current_starting_balance = EXCLUDED.current_starting_balance,
				new_starting_balance = EXCLUDED.new_starting_balance,
				current_total_flow_rate = EXCLUDED.current_total_flow_rate,
				new_total_flow_rate = EXCLUDED.new_total_flow_rate,
				current_liquidation = EXCLUDED.current_liquidation,
				new_liquidation = EXCLUDED.new_liquidation,
				held = EXCLUDED.held,
				updated_at = now()
		`,
			r.Account,
			r.Token,
			r.Receiver,
			r.ObservedAt,
			r.SnapshotTimestamp,
			r.CurrentStartingBalance,
			r.NewStartingBalance,
			r.CurrentTotalFlowRate,
			r.NewTotalFlowRate,
			r.CurrentLiquidation,
			r.NewLiquidation,
			r.Held,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert projection: %w", err)
		}
	}
	return nil
}

// LatestProjection returns the newest stored projection for an account, token and receiver.
func (s *Store) LatestProjection(ctx context.Context, account, token, receiver string) (model.ProjectionRecord, bool, error) {
	var r model.ProjectionRecord
	row := s.pool.QueryRow(ctx, `
		SELECT account, token, receiver, observed_at, snapshot_timestamp,
			current_starting_balance::text, new_starting_balance::text,
			current_total_flow_rate::text, new_total_flow_rate::text,
			current_liquidation, new_liquidation, held
		FROM flow_projections
		WHERE lower(account) = lower($1) AND lower(token) = lower($2) AND lower(receiver) = lower($3)
		ORDER BY observed_at DESC
		LIMIT 1
	`, account, token, receiver)
	err := row.Scan(
		&r.Account, &r.Token, &r.Receiver, &r.ObservedAt, &r.SnapshotTimestamp,
		&r.CurrentStartingBalance, &r.NewStartingBalance,
		&r.CurrentTotalFlowRate, &r.NewTotalFlowRate,
		&r.CurrentLiquidation, &r.NewLiquidation, &r.Held,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ProjectionRecord{}, false, nil
		}
		return model.ProjectionRecord{}, false, err
	}
	return r, true, nil
}
