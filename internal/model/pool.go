package model

// PoolState is the serializable snapshot of a concentrated-liquidity pool.
type PoolState struct {
	PoolID           string              `json:"pool_id"`
	Token0           string              `json:"token0"`
	Token1           string              `json:"token1"`
	FeeRate          float64             `json:"fee_rate"`
	TickSpacing      int32               `json:"tick_spacing"`
	CurrentTick      int32               `json:"current_tick"`
	CurrentPrice     float64             `json:"current_price"`
	SqrtPriceX96     string              `json:"sqrt_price_x96"`
	Liquidity        float64             `json:"liquidity"`
	FeeGrowthGlobal0 float64             `json:"fee_growth_global0"`
	FeeGrowthGlobal1 float64             `json:"fee_growth_global1"`
	Ticks            map[int32]TickState `json:"ticks"`
	Positions        []PositionState     `json:"positions"`
	Observations     []Observation       `json:"observations"`
	Volume0          float64             `json:"volume24h0"`
	Volume1          float64             `json:"volume24h1"`
	FeesCollected    float64             `json:"fees_collected24h"`
	TVL              float64             `json:"tvl"`
	NextPositionSeq  uint64              `json:"next_position_seq"`
}

// TickState is the serializable record for one initialized tick.
type TickState struct {
	Index             int32   `json:"index"`
	LiquidityGross    float64 `json:"liquidity_gross"`
	LiquidityNet      float64 `json:"liquidity_net"`
	FeeGrowthOutside0 float64 `json:"fee_growth_outside0"`
	FeeGrowthOutside1 float64 `json:"fee_growth_outside1"`
	Initialized       bool    `json:"initialized"`
}

// Observation is one point in the pool's bounded price/liquidity history.
type Observation struct {
	Timestamp int64   `json:"timestamp"`
	Tick      int32   `json:"tick"`
	Price     float64 `json:"price"`
	Liquidity float64 `json:"liquidity"`
}
