package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/zap"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/pool"
	"liquidityEngine/internal/storage"
)

// Registry-level failures; operation-level failures come from the pool package.
var (
	ErrPoolNotFound = errors.New("pool not found")
	ErrPoolExists   = errors.New("pool already exists")
)

// CreatePoolParams holds the immutable parameters of a new pool.
type CreatePoolParams struct {
	PoolID       string
	Token0       string
	Token1       string
	FeeRate      float64
	TickSpacing  int32
	InitialPrice float64
}

// Engine manages pools keyed by id. Every mutation runs under the pool's
// entry lock: the aggregate is read, modified, and persisted as one unit, so
// there is at most one writer per pool at any time.
type Engine struct {
	store   storage.PoolStore
	journal storage.EventJournal
	logger  *zap.Logger

	mu    sync.Mutex
	pools map[string]*poolEntry
}

type poolEntry struct {
	mu   sync.Mutex
	pool *pool.Pool
}

// New builds an Engine. The journal may be nil to disable event recording.
func New(store storage.PoolStore, journal storage.EventJournal, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:   store,
		journal: journal,
		logger:  logger,
		pools:   make(map[string]*poolEntry),
	}
}

// CreatePool registers a new pool and persists its initial state.
func (e *Engine) CreatePool(ctx context.Context, params CreatePoolParams) (model.PoolStats, error) {
	token0, err := normalizeAddress(params.Token0)
	if err != nil {
		return model.PoolStats{}, fmt.Errorf("token0: %w", err)
	}
	token1, err := normalizeAddress(params.Token1)
	if err != nil {
		return model.PoolStats{}, fmt.Errorf("token1: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.pools[params.PoolID]; ok {
		return model.PoolStats{}, fmt.Errorf("%w: %s", ErrPoolExists, params.PoolID)
	}
	if _, ok, err := e.store.LoadPool(ctx, params.PoolID); err != nil {
		return model.PoolStats{}, fmt.Errorf("check existing pool: %w", err)
	} else if ok {
		return model.PoolStats{}, fmt.Errorf("%w: %s", ErrPoolExists, params.PoolID)
	}

	created, err := pool.New(pool.Config{
		PoolID:       params.PoolID,
		Token0:       token0,
		Token1:       token1,
		FeeRate:      params.FeeRate,
		TickSpacing:  params.TickSpacing,
		InitialPrice: params.InitialPrice,
	})
	if err != nil {
		return model.PoolStats{}, err
	}

	if err := e.store.SavePool(ctx, created.State()); err != nil {
		return model.PoolStats{}, fmt.Errorf("save pool: %w", err)
	}
	e.pools[params.PoolID] = &poolEntry{pool: created}

	e.recordEvent(params.PoolID, "create", model.CreateEventData{
		Token0:       token0,
		Token1:       token1,
		FeeRate:      params.FeeRate,
		TickSpacing:  params.TickSpacing,
		InitialPrice: params.InitialPrice,
	})
	e.logger.Info("pool created",
		zap.String("pool_id", params.PoolID),
		zap.String("token0", token0),
		zap.String("token1", token1),
		zap.Float64("fee_rate", params.FeeRate),
		zap.Int32("tick_spacing", params.TickSpacing),
	)
	return created.Stats(), nil
}

// Mint adds a position to a pool.
func (e *Engine) Mint(ctx context.Context, poolID, owner string, tickLower, tickUpper int32, amount0Desired, amount1Desired float64) (model.PositionState, error) {
	normalized, err := normalizeAddress(owner)
	if err != nil {
		return model.PositionState{}, fmt.Errorf("owner: %w", err)
	}

	var position model.PositionState
	err = e.mutate(ctx, poolID, func(p *pool.Pool) error {
		position, err = p.Mint(normalized, tickLower, tickUpper, amount0Desired, amount1Desired)
		return err
	})
	if err != nil {
		return model.PositionState{}, err
	}

	e.recordEvent(poolID, "mint", model.MintEventData{
		PositionID: position.PositionID,
		Owner:      position.Owner,
		TickLower:  position.TickLower,
		TickUpper:  position.TickUpper,
		Liquidity:  position.Liquidity,
		Amount0:    position.Token0Amount,
		Amount1:    position.Token1Amount,
	})
	e.logger.Info("position minted",
		zap.String("pool_id", poolID),
		zap.String("position_id", position.PositionID),
		zap.Float64("liquidity", position.Liquidity),
	)
	return position, nil
}

// Burn retires a position and returns its principal plus residual fees.
func (e *Engine) Burn(ctx context.Context, poolID, positionID string) (model.BurnResult, error) {
	var result model.BurnResult
	var retired *model.PositionInfo
	err := e.mutate(ctx, poolID, func(p *pool.Pool) error {
		var err error
		result, err = p.Burn(positionID)
		if err != nil {
			return err
		}
		retired = p.PositionInfo(positionID)
		return nil
	})
	if err != nil {
		return model.BurnResult{}, err
	}

	event := model.BurnEventData{
		PositionID:  positionID,
		Amount0:     result.Token0Amount,
		Amount1:     result.Token1Amount,
		FeesEarned0: result.FeesEarned0,
		FeesEarned1: result.FeesEarned1,
	}
	if retired != nil {
		event.Owner = retired.Owner
		event.TickLower = retired.TickLower
		event.TickUpper = retired.TickUpper
	}
	e.recordEvent(poolID, "burn", event)
	e.logger.Info("position burned",
		zap.String("pool_id", poolID),
		zap.String("position_id", positionID),
	)
	return result, nil
}

// Swap trades against a pool.
func (e *Engine) Swap(ctx context.Context, poolID string, zeroForOne bool, amountSpecified float64) (model.SwapResult, error) {
	var result model.SwapResult
	err := e.mutate(ctx, poolID, func(p *pool.Pool) error {
		var err error
		result, err = p.Swap(zeroForOne, amountSpecified)
		return err
	})
	if err != nil {
		return model.SwapResult{}, err
	}

	e.recordEvent(poolID, "swap", model.SwapEventData{
		ZeroForOne: zeroForOne,
		AmountIn:   result.AmountIn,
		AmountOut:  result.AmountOut,
		Fee:        result.Fee,
		NewPrice:   result.NewPrice,
		NewTick:    result.NewTick,
	})
	e.logger.Debug("swap executed",
		zap.String("pool_id", poolID),
		zap.Bool("zero_for_one", zeroForOne),
		zap.Float64("amount_in", result.AmountIn),
		zap.Float64("amount_out", result.AmountOut),
	)
	return result, nil
}

// CollectFees settles a position's accrued fees.
func (e *Engine) CollectFees(ctx context.Context, poolID, positionID string) (model.FeeCollection, error) {
	var collected model.FeeCollection
	var owner string
	err := e.mutate(ctx, poolID, func(p *pool.Pool) error {
		var err error
		collected, err = p.CollectFees(positionID)
		if err != nil {
			return err
		}
		if info := p.PositionInfo(positionID); info != nil {
			owner = info.Owner
		}
		return nil
	})
	if err != nil {
		return model.FeeCollection{}, err
	}

	e.recordEvent(poolID, "collect", model.CollectEventData{
		PositionID:  positionID,
		Owner:       owner,
		FeesEarned0: collected.FeesEarned0,
		FeesEarned1: collected.FeesEarned1,
	})
	return collected, nil
}

// Stats returns a pool's summary view.
func (e *Engine) Stats(ctx context.Context, poolID string) (model.PoolStats, error) {
	entry, err := e.entry(ctx, poolID)
	if err != nil {
		return model.PoolStats{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.pool.Stats(), nil
}

// PositionInfo returns one position's view, or nil when unknown.
func (e *Engine) PositionInfo(ctx context.Context, poolID, positionID string) (*model.PositionInfo, error) {
	entry, err := e.entry(ctx, poolID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.pool.PositionInfo(positionID), nil
}

// LiquidityDistribution returns a pool's depth chart bands.
func (e *Engine) LiquidityDistribution(ctx context.Context, poolID string) (map[int32]model.LiquidityBand, error) {
	entry, err := e.entry(ctx, poolID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.pool.LiquidityDistribution(), nil
}

// mutate runs op under the pool's writer lock and persists the result. When
// either the op or persistence fails the in-memory aggregate is rolled back to
// the pre-op snapshot so memory and store never diverge.
func (e *Engine) mutate(ctx context.Context, poolID string, op func(p *pool.Pool) error) error {
	entry, err := e.entry(ctx, poolID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	before := entry.pool.State()
	if err := op(entry.pool); err != nil {
		restored, restoreErr := pool.FromState(before)
		if restoreErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, restoreErr)
		}
		entry.pool = restored
		return err
	}

	if err := e.store.SavePool(ctx, entry.pool.State()); err != nil {
		restored, restoreErr := pool.FromState(before)
		if restoreErr != nil {
			return fmt.Errorf("save pool: %w (rollback failed: %v)", err, restoreErr)
		}
		entry.pool = restored
		return fmt.Errorf("save pool: %w", err)
	}
	return nil
}

// entry returns the cached pool entry, loading it from the store on first use.
func (e *Engine) entry(ctx context.Context, poolID string) (*poolEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if entry, ok := e.pools[poolID]; ok {
		return entry, nil
	}

	state, ok, err := e.store.LoadPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, poolID)
	}
	loaded, err := pool.FromState(state)
	if err != nil {
		return nil, fmt.Errorf("restore pool: %w", err)
	}
	entry := &poolEntry{pool: loaded}
	e.pools[poolID] = entry
	return entry, nil
}

// recordEvent journals a mutation. Journal failures are logged, not fatal:
// the aggregate is already persisted and the journal is a derived artifact.
func (e *Engine) recordEvent(poolID, name string, payload interface{}) {
	if e.journal == nil {
		return
	}
	encoded, err := sonnet.Marshal(payload)
	if err != nil {
		e.logger.Warn("marshal event payload", zap.String("event", name), zap.Error(err))
		return
	}
	event := model.PoolEvent{
		Timestamp: time.Now().Unix(),
		PoolID:    poolID,
		EventName: name,
		Payload:   encoded,
	}
	if err := e.journal.Append(event); err != nil {
		e.logger.Warn("append event", zap.String("event", name), zap.Error(err))
	}
}

func normalizeAddress(value string) (string, error) {
	if !common.IsHexAddress(value) {
		return "", fmt.Errorf("invalid hex address: %q", value)
	}
	return common.HexToAddress(value).Hex(), nil
}
