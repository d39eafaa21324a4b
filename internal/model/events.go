package model

import "encoding/json"

// PoolEvent is one journal line describing a pool mutation.
type PoolEvent struct {
	Timestamp int64           `json:"timestamp"`
	PoolID    string          `json:"pool_id"`
	EventName string          `json:"event_name"`
	Payload   json.RawMessage `json:"payload"`
}

// CreateEventData is the payload recorded when a pool is created.
type CreateEventData struct {
	Token0       string  `json:"token0"`
	Token1       string  `json:"token1"`
	FeeRate      float64 `json:"fee_rate"`
	TickSpacing  int32   `json:"tick_spacing"`
	InitialPrice float64 `json:"initial_price"`
}

// MintEventData is the payload recorded for a position mint.
type MintEventData struct {
	PositionID string  `json:"position_id"`
	Owner      string  `json:"owner"`
	TickLower  int32   `json:"tick_lower"`
	TickUpper  int32   `json:"tick_upper"`
	Liquidity  float64 `json:"liquidity"`
	Amount0    float64 `json:"amount0"`
	Amount1    float64 `json:"amount1"`
}

// BurnEventData is the payload recorded for a position burn.
type BurnEventData struct {
	PositionID  string  `json:"position_id"`
	Owner       string  `json:"owner"`
	TickLower   int32   `json:"tick_lower"`
	TickUpper   int32   `json:"tick_upper"`
	Amount0     float64 `json:"amount0"`
	Amount1     float64 `json:"amount1"`
	FeesEarned0 float64 `json:"fees_earned0"`
	FeesEarned1 float64 `json:"fees_earned1"`
}

// SwapEventData is the payload recorded for a swap.
type SwapEventData struct {
	ZeroForOne bool    `json:"zero_for_one"`
	AmountIn   float64 `json:"amount_in"`
	AmountOut  float64 `json:"amount_out"`
	Fee        float64 `json:"fee"`
	NewPrice   float64 `json:"new_price"`
	NewTick    int32   `json:"new_tick"`
}

// CollectEventData is the payload recorded for a fee collection.
type CollectEventData struct {
	PositionID  string  `json:"position_id"`
	Owner       string  `json:"owner"`
	FeesEarned0 float64 `json:"fees_earned0"`
	FeesEarned1 float64 `json:"fees_earned1"`
}
