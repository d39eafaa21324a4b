package model

// SwapResult reports the realized outcome of a swap.
type SwapResult struct {
	AmountIn  float64 `json:"amount_in"`
	AmountOut float64 `json:"amount_out"`
	Fee       float64 `json:"fee"`
	NewPrice  float64 `json:"new_price"`
	NewTick   int32   `json:"new_tick"`
}

// BurnResult reports the principal and residual fees returned by a burn.
type BurnResult struct {
	Token0Amount float64 `json:"token0_amount"`
	Token1Amount float64 `json:"token1_amount"`
	FeesEarned0  float64 `json:"fees_earned0"`
	FeesEarned1  float64 `json:"fees_earned1"`
}

// FeeCollection reports the amounts settled by a collectFees call.
type FeeCollection struct {
	FeesEarned0 float64 `json:"fees_earned0"`
	FeesEarned1 float64 `json:"fees_earned1"`
}

// PositionInfo is the query view of a single position.
type PositionInfo struct {
	PositionID   string  `json:"position_id"`
	Owner        string  `json:"owner"`
	TickLower    int32   `json:"tick_lower"`
	TickUpper    int32   `json:"tick_upper"`
	PriceLower   float64 `json:"price_lower"`
	PriceUpper   float64 `json:"price_upper"`
	InRange      bool    `json:"in_range"`
	Liquidity    float64 `json:"liquidity"`
	Token0Amount float64 `json:"token0_amount"`
	Token1Amount float64 `json:"token1_amount"`
	FeesEarned0  float64 `json:"fees_earned0"`
	FeesEarned1  float64 `json:"fees_earned1"`
	Active       bool    `json:"active"`
}

// PoolStats is the pool-level summary view.
type PoolStats struct {
	PoolID           string  `json:"pool_id"`
	Token0           string  `json:"token0"`
	Token1           string  `json:"token1"`
	CurrentPrice     float64 `json:"current_price"`
	CurrentTick      int32   `json:"current_tick"`
	Liquidity        float64 `json:"liquidity"`
	TVL              float64 `json:"tvl"`
	Volume0          float64 `json:"volume24h0"`
	Volume1          float64 `json:"volume24h1"`
	FeesCollected    float64 `json:"fees_collected24h"`
	TotalPositions   int     `json:"total_positions"`
	ActivePositions  int     `json:"active_positions"`
	InRangePositions int     `json:"in_range_positions"`
	Utilization      float64 `json:"utilization"`
}

// LiquidityBand is one entry of the liquidity depth chart.
type LiquidityBand struct {
	Tick           int32   `json:"tick"`
	Price          float64 `json:"price"`
	LiquidityGross float64 `json:"liquidity_gross"`
}
