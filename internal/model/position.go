package model

// PositionState is the serializable record for one liquidity position.
// Burned positions stay in the pool snapshot with Active=false for history.
type PositionState struct {
	PositionID        string  `json:"position_id"`
	Owner             string  `json:"owner"`
	TickLower         int32   `json:"tick_lower"`
	TickUpper         int32   `json:"tick_upper"`
	Liquidity         float64 `json:"liquidity"`
	Token0Amount      float64 `json:"token0_amount"`
	Token1Amount      float64 `json:"token1_amount"`
	FeesEarned0       float64 `json:"fees_earned0"`
	FeesEarned1       float64 `json:"fees_earned1"`
	LastFeeCollection int64   `json:"last_fee_collection"`
	Active            bool    `json:"active"`
}
