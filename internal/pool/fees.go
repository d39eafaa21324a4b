package pool

import (
	"fmt"

	"liquidityEngine/internal/model"
)

// CollectFees settles a position's accrued fees and zeroes its collectible
// balances. Fees use the global-growth approximation: an in-range position is
// credited its share of the whole-life global accumulators (per-position
// feeGrowthInside snapshots are not tracked), out-of-range positions accrue
// nothing on the call.
func (p *Pool) CollectFees(positionID string) (model.FeeCollection, error) {
	position, ok := p.byID[positionID]
	if !ok {
		return model.FeeCollection{}, fmt.Errorf("%w: %s", ErrPositionNotFound, positionID)
	}
	if !position.Active {
		return model.FeeCollection{}, fmt.Errorf("%w: %s", ErrPositionInactive, positionID)
	}
	return p.settleFees(position), nil
}

// settleFees credits in-range growth to the position and pays out the balance.
func (p *Pool) settleFees(position *model.PositionState) model.FeeCollection {
	if p.inRange(position.TickLower, position.TickUpper) {
		position.FeesEarned0 += position.Liquidity * p.feeGrowthGlobal0 / feeGrowthScale
		position.FeesEarned1 += position.Liquidity * p.feeGrowthGlobal1 / feeGrowthScale
	}

	collected := model.FeeCollection{
		FeesEarned0: position.FeesEarned0,
		FeesEarned1: position.FeesEarned1,
	}
	position.FeesEarned0 = 0
	position.FeesEarned1 = 0
	position.LastFeeCollection = p.now().Unix()
	return collected
}
