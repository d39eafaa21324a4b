package pool

import (
	"fmt"
	"time"

	"liquidityEngine/internal/model"
)

// maxObservations bounds the price/liquidity history kept per pool.
const maxObservations = 1000

// Config holds the immutable parameters fixed at pool creation.
type Config struct {
	PoolID       string
	Token0       string
	Token1       string
	FeeRate      float64
	TickSpacing  int32
	InitialPrice float64
}

// Pool is a single concentrated-liquidity pool aggregate. It owns its ticks,
// positions, and observation history exclusively; it is not safe for concurrent
// use — callers must serialize mutations (see engine.Engine).
type Pool struct {
	id           string
	token0       string
	token1       string
	feeRate      float64
	tickSpacing  int32
	currentTick  int32
	currentPrice float64
	sqrtPriceX96 string

	liquidity        float64
	feeGrowthGlobal0 float64
	feeGrowthGlobal1 float64

	ticks        map[int32]*model.TickState
	positions    []*model.PositionState
	byID         map[string]*model.PositionState
	observations []model.Observation

	volume0       float64
	volume1       float64
	feesCollected float64
	tvl           float64

	nextPositionSeq uint64

	now func() time.Time
}

// New creates an empty pool at the given initial price.
func New(cfg Config) (*Pool, error) {
	if cfg.PoolID == "" {
		return nil, fmt.Errorf("pool id is required")
	}
	if cfg.Token0 == "" || cfg.Token1 == "" || cfg.Token0 == cfg.Token1 {
		return nil, fmt.Errorf("pool requires two distinct tokens")
	}
	if cfg.TickSpacing <= 0 {
		return nil, fmt.Errorf("tick spacing must be positive: %d", cfg.TickSpacing)
	}
	if cfg.InitialPrice <= 0 {
		return nil, fmt.Errorf("initial price must be positive: %v", cfg.InitialPrice)
	}
	if cfg.FeeRate < 0 || cfg.FeeRate >= 1 {
		return nil, fmt.Errorf("fee rate must be in [0,1): %v", cfg.FeeRate)
	}

	sqrtPrice, err := PriceToSqrtPriceX96(cfg.InitialPrice)
	if err != nil {
		return nil, err
	}

	return &Pool{
		id:           cfg.PoolID,
		token0:       cfg.Token0,
		token1:       cfg.Token1,
		feeRate:      cfg.FeeRate,
		tickSpacing:  cfg.TickSpacing,
		currentTick:  PriceToTick(cfg.InitialPrice),
		currentPrice: cfg.InitialPrice,
		sqrtPriceX96: sqrtPrice,
		ticks:        make(map[int32]*model.TickState),
		byID:         make(map[string]*model.PositionState),
		now:          time.Now,
	}, nil
}

// FromState rebuilds a pool from a stored snapshot.
func FromState(state model.PoolState) (*Pool, error) {
	if state.PoolID == "" {
		return nil, fmt.Errorf("snapshot has no pool id")
	}

	p := &Pool{
		id:               state.PoolID,
		token0:           state.Token0,
		token1:           state.Token1,
		feeRate:          state.FeeRate,
		tickSpacing:      state.TickSpacing,
		currentTick:      state.CurrentTick,
		currentPrice:     state.CurrentPrice,
		sqrtPriceX96:     state.SqrtPriceX96,
		liquidity:        state.Liquidity,
		feeGrowthGlobal0: state.FeeGrowthGlobal0,
		feeGrowthGlobal1: state.FeeGrowthGlobal1,
		ticks:            make(map[int32]*model.TickState, len(state.Ticks)),
		byID:             make(map[string]*model.PositionState, len(state.Positions)),
		observations:     append([]model.Observation(nil), state.Observations...),
		volume0:          state.Volume0,
		volume1:          state.Volume1,
		feesCollected:    state.FeesCollected,
		tvl:              state.TVL,
		nextPositionSeq:  state.NextPositionSeq,
		now:              time.Now,
	}

	for idx, tick := range state.Ticks {
		copied := tick
		copied.Index = idx
		p.ticks[idx] = &copied
	}
	for _, position := range state.Positions {
		copied := position
		p.positions = append(p.positions, &copied)
		p.byID[copied.PositionID] = &copied
	}
	return p, nil
}

// State returns a deep-copied snapshot suitable for persistence.
func (p *Pool) State() model.PoolState {
	state := model.PoolState{
		PoolID:           p.id,
		Token0:           p.token0,
		Token1:           p.token1,
		FeeRate:          p.feeRate,
		TickSpacing:      p.tickSpacing,
		CurrentTick:      p.currentTick,
		CurrentPrice:     p.currentPrice,
		SqrtPriceX96:     p.sqrtPriceX96,
		Liquidity:        p.liquidity,
		FeeGrowthGlobal0: p.feeGrowthGlobal0,
		FeeGrowthGlobal1: p.feeGrowthGlobal1,
		Ticks:            make(map[int32]model.TickState, len(p.ticks)),
		Positions:        make([]model.PositionState, 0, len(p.positions)),
		Observations:     append([]model.Observation(nil), p.observations...),
		Volume0:          p.volume0,
		Volume1:          p.volume1,
		FeesCollected:    p.feesCollected,
		TVL:              p.tvl,
		NextPositionSeq:  p.nextPositionSeq,
	}
	for idx, tick := range p.ticks {
		state.Ticks[idx] = *tick
	}
	for _, position := range p.positions {
		state.Positions = append(state.Positions, *position)
	}
	return state
}

// ID returns the pool identifier.
func (p *Pool) ID() string {
	return p.id
}

// upsertTick returns the tick record at idx, creating it on first reference.
func (p *Pool) upsertTick(idx int32) *model.TickState {
	if tick, ok := p.ticks[idx]; ok {
		return tick
	}
	tick := &model.TickState{Index: idx}
	p.ticks[idx] = tick
	return tick
}

// inRange reports whether the current tick lies within [tickLower, tickUpper).
func (p *Pool) inRange(tickLower, tickUpper int32) bool {
	return tickLower <= p.currentTick && p.currentTick < tickUpper
}

// recomputeTVL refreshes the mark-to-model valuation over active positions.
func (p *Pool) recomputeTVL() {
	total := 0.0
	for _, position := range p.positions {
		if !position.Active {
			continue
		}
		total += position.Token0Amount + position.Token1Amount*p.currentPrice
	}
	p.tvl = total
}
