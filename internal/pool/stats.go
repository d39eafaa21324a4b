package pool

import "liquidityEngine/internal/model"

// Stats returns the pool-level summary view.
func (p *Pool) Stats() model.PoolStats {
	stats := model.PoolStats{
		PoolID:        p.id,
		Token0:        p.token0,
		Token1:        p.token1,
		CurrentPrice:  p.currentPrice,
		CurrentTick:   p.currentTick,
		Liquidity:     p.liquidity,
		TVL:           p.tvl,
		Volume0:       p.volume0,
		Volume1:       p.volume1,
		FeesCollected: p.feesCollected,
	}

	for _, position := range p.positions {
		stats.TotalPositions++
		if !position.Active {
			continue
		}
		stats.ActivePositions++
		if p.inRange(position.TickLower, position.TickUpper) {
			stats.InRangePositions++
		}
	}
	if stats.ActivePositions > 0 {
		stats.Utilization = float64(stats.InRangePositions) / float64(stats.ActivePositions)
	}
	return stats
}

// PositionInfo returns the query view of one position, or nil when unknown.
func (p *Pool) PositionInfo(positionID string) *model.PositionInfo {
	position, ok := p.byID[positionID]
	if !ok {
		return nil
	}
	return &model.PositionInfo{
		PositionID:   position.PositionID,
		Owner:        position.Owner,
		TickLower:    position.TickLower,
		TickUpper:    position.TickUpper,
		PriceLower:   TickToPrice(position.TickLower),
		PriceUpper:   TickToPrice(position.TickUpper),
		InRange:      position.Active && p.inRange(position.TickLower, position.TickUpper),
		Liquidity:    position.Liquidity,
		Token0Amount: position.Token0Amount,
		Token1Amount: position.Token1Amount,
		FeesEarned0:  position.FeesEarned0,
		FeesEarned1:  position.FeesEarned1,
		Active:       position.Active,
	}
}

// LiquidityDistribution maps each initialized tick to its depth-chart band.
func (p *Pool) LiquidityDistribution() map[int32]model.LiquidityBand {
	bands := make(map[int32]model.LiquidityBand, len(p.ticks))
	for idx, tick := range p.ticks {
		if !tick.Initialized {
			continue
		}
		bands[idx] = model.LiquidityBand{
			Tick:           idx,
			Price:          TickToPrice(idx),
			LiquidityGross: tick.LiquidityGross,
		}
	}
	return bands
}

// Observations returns a copy of the bounded price/liquidity history.
func (p *Pool) Observations() []model.Observation {
	return append([]model.Observation(nil), p.observations...)
}
