package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityEngine/internal/model"
)

// Store provides Postgres persistence for pool aggregates.
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

// EnsureSchema creates the aggregate tables when missing. Statements run one
// at a time: pgx's extended protocol rejects multi-statement commands.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{`
		CREATE TABLE IF NOT EXISTS pools (
			pool_id TEXT PRIMARY KEY,
			token0 TEXT NOT NULL,
			token1 TEXT NOT NULL,
			fee_rate DOUBLE PRECISION NOT NULL,
			tick_spacing INT NOT NULL,
			current_tick INT NOT NULL,
			current_price DOUBLE PRECISION NOT NULL,
			sqrt_price_x96 TEXT NOT NULL,
			liquidity DOUBLE PRECISION NOT NULL,
			fee_growth_global0 DOUBLE PRECISION NOT NULL,
			fee_growth_global1 DOUBLE PRECISION NOT NULL,
			volume0 DOUBLE PRECISION NOT NULL,
			volume1 DOUBLE PRECISION NOT NULL,
			fees_collected DOUBLE PRECISION NOT NULL,
			tvl DOUBLE PRECISION NOT NULL,
			next_position_seq BIGINT NOT NULL,
			observations JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`, `
		CREATE TABLE IF NOT EXISTS pool_positions (
			pool_id TEXT NOT NULL REFERENCES pools(pool_id),
			position_id TEXT NOT NULL,
			owner TEXT NOT NULL,
			tick_lower INT NOT NULL,
			tick_upper INT NOT NULL,
			liquidity DOUBLE PRECISION NOT NULL,
			token0_amount DOUBLE PRECISION NOT NULL,
			token1_amount DOUBLE PRECISION NOT NULL,
			fees_earned0 DOUBLE PRECISION NOT NULL,
			fees_earned1 DOUBLE PRECISION NOT NULL,
			last_fee_collection BIGINT NOT NULL,
			active BOOLEAN NOT NULL,
			seq INT NOT NULL,
			PRIMARY KEY (pool_id, position_id)
		)
	`, `
		CREATE TABLE IF NOT EXISTS pool_ticks (
			pool_id TEXT NOT NULL REFERENCES pools(pool_id),
			tick_index INT NOT NULL,
			liquidity_gross DOUBLE PRECISION NOT NULL,
			liquidity_net DOUBLE PRECISION NOT NULL,
			fee_growth_outside0 DOUBLE PRECISION NOT NULL,
			fee_growth_outside1 DOUBLE PRECISION NOT NULL,
			initialized BOOLEAN NOT NULL,
			PRIMARY KEY (pool_id, tick_index)
		)
	`}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SavePool writes the full aggregate in one transaction, replacing the pool's
// position and tick rows with the snapshot's contents.
func (s *Store) SavePool(ctx context.Context, state model.PoolState) error {
	if state.PoolID == "" {
		return fmt.Errorf("pool id is required")
	}

	observations, err := json.Marshal(state.Observations)
	if err != nil {
		return fmt.Errorf("marshal observations: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO pools (
			pool_id, token0, token1, fee_rate, tick_spacing, current_tick, current_price,
			sqrt_price_x96, liquidity, fee_growth_global0, fee_growth_global1,
			volume0, volume1, fees_collected, tvl, next_position_seq, observations,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,now(),now())
		ON CONFLICT (pool_id)
		DO UPDATE SET
			current_tick = EXCLUDED.current_tick,
			current_price = EXCLUDED.current_price,
			sqrt_price_x96 = EXCLUDED.sqrt_price_x96,
			liquidity = EXCLUDED.liquidity,
			fee_growth_global0 = EXCLUDED.fee_growth_global0,
			fee_growth_global1 = EXCLUDED.fee_growth_global1,
			volume0 = EXCLUDED.volume0,
			volume1 = EXCLUDED.volume1,
			fees_collected = EXCLUDED.fees_collected,
			tvl = EXCLUDED.tvl,
			next_position_seq = EXCLUDED.next_position_seq,
			observations = EXCLUDED.observations,
			updated_at = now()
	`,
		state.PoolID,
		state.Token0,
		state.Token1,
		state.FeeRate,
		state.TickSpacing,
		state.CurrentTick,
		state.CurrentPrice,
		state.SqrtPriceX96,
		state.Liquidity,
		state.FeeGrowthGlobal0,
		state.FeeGrowthGlobal1,
		state.Volume0,
		state.Volume1,
		state.FeesCollected,
		state.TVL,
		int64(state.NextPositionSeq),
		observations,
	)
	if err != nil {
		return fmt.Errorf("upsert pool: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM pool_positions WHERE pool_id=$1`, state.PoolID); err != nil {
		return fmt.Errorf("clear positions: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM pool_ticks WHERE pool_id=$1`, state.PoolID); err != nil {
		return fmt.Errorf("clear ticks: %w", err)
	}

	batch := &pgx.Batch{}
	for seq, position := range state.Positions {
		batch.Queue(`
			INSERT INTO pool_positions (
				pool_id, position_id, owner, tick_lower, tick_upper, liquidity,
				token0_amount, token1_amount, fees_earned0, fees_earned1,
				last_fee_collection, active, seq
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		`,
			state.PoolID,
			position.PositionID,
			position.Owner,
			position.TickLower,
			position.TickUpper,
			position.Liquidity,
			position.Token0Amount,
			position.Token1Amount,
			position.FeesEarned0,
			position.FeesEarned1,
			position.LastFeeCollection,
			position.Active,
			seq,
		)
	}
	for idx, tick := range state.Ticks {
		batch.Queue(`
			INSERT INTO pool_ticks (
				pool_id, tick_index, liquidity_gross, liquidity_net,
				fee_growth_outside0, fee_growth_outside1, initialized
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
			state.PoolID,
			idx,
			tick.LiquidityGross,
			tick.LiquidityNet,
			tick.FeeGrowthOutside0,
			tick.FeeGrowthOutside1,
			tick.Initialized,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("write aggregate rows: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadPool reads the full aggregate for a pool id.
func (s *Store) LoadPool(ctx context.Context, poolID string) (model.PoolState, bool, error) {
	if poolID == "" {
		return model.PoolState{}, false, fmt.Errorf("pool id is required")
	}

	var state model.PoolState
	var observations []byte
	var nextSeq int64
	row := s.pool.QueryRow(ctx, `
		SELECT pool_id, token0, token1, fee_rate, tick_spacing, current_tick, current_price,
			sqrt_price_x96, liquidity, fee_growth_global0, fee_growth_global1,
			volume0, volume1, fees_collected, tvl, next_position_seq, observations
		FROM pools WHERE pool_id=$1
	`, poolID)
	err := row.Scan(
		&state.PoolID,
		&state.Token0,
		&state.Token1,
		&state.FeeRate,
		&state.TickSpacing,
		&state.CurrentTick,
		&state.CurrentPrice,
		&state.SqrtPriceX96,
		&state.Liquidity,
		&state.FeeGrowthGlobal0,
		&state.FeeGrowthGlobal1,
		&state.Volume0,
		&state.Volume1,
		&state.FeesCollected,
		&state.TVL,
		&nextSeq,
		&observations,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PoolState{}, false, nil
		}
		return model.PoolState{}, false, fmt.Errorf("load pool: %w", err)
	}
	state.NextPositionSeq = uint64(nextSeq)

	if len(observations) > 0 {
		if err := json.Unmarshal(observations, &state.Observations); err != nil {
			return model.PoolState{}, false, fmt.Errorf("parse observations: %w", err)
		}
	}

	rows, err := s.pool.Query(ctx, `
		SELECT position_id, owner, tick_lower, tick_upper, liquidity,
			token0_amount, token1_amount, fees_earned0, fees_earned1,
			last_fee_collection, active
		FROM pool_positions WHERE pool_id=$1 ORDER BY seq
	`, poolID)
	if err != nil {
		return model.PoolState{}, false, fmt.Errorf("load positions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var position model.PositionState
		if err := rows.Scan(
			&position.PositionID,
			&position.Owner,
			&position.TickLower,
			&position.TickUpper,
			&position.Liquidity,
			&position.Token0Amount,
			&position.Token1Amount,
			&position.FeesEarned0,
			&position.FeesEarned1,
			&position.LastFeeCollection,
			&position.Active,
		); err != nil {
			return model.PoolState{}, false, fmt.Errorf("scan position: %w", err)
		}
		state.Positions = append(state.Positions, position)
	}
	if err := rows.Err(); err != nil {
		return model.PoolState{}, false, fmt.Errorf("iterate positions: %w", err)
	}

	tickRows, err := s.pool.Query(ctx, `
		SELECT tick_index, liquidity_gross, liquidity_net,
			fee_growth_outside0, fee_growth_outside1, initialized
		FROM pool_ticks WHERE pool_id=$1
	`, poolID)
	if err != nil {
		return model.PoolState{}, false, fmt.Errorf("load ticks: %w", err)
	}
	defer tickRows.Close()
	state.Ticks = make(map[int32]model.TickState)
	for tickRows.Next() {
		var tick model.TickState
		if err := tickRows.Scan(
			&tick.Index,
			&tick.LiquidityGross,
			&tick.LiquidityNet,
			&tick.FeeGrowthOutside0,
			&tick.FeeGrowthOutside1,
			&tick.Initialized,
		); err != nil {
			return model.PoolState{}, false, fmt.Errorf("scan tick: %w", err)
		}
		state.Ticks[tick.Index] = tick
	}
	if err := tickRows.Err(); err != nil {
		return model.PoolState{}, false, fmt.Errorf("iterate ticks: %w", err)
	}

	return state, true, nil
}

// ListPools returns all known pool ids.
func (s *Store) ListPools(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT pool_id FROM pools ORDER BY pool_id`)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pool id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
