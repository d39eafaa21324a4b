package pool

import (
	"fmt"

	"liquidityEngine/internal/model"
)

// Mint adds a new position over [tickLower, tickUpper). Liquidity is capped by
// the binding asset; the stored token amounts are recomputed from that
// liquidity, so excess desired amounts are never charged.
func (p *Pool) Mint(owner string, tickLower, tickUpper int32, amount0Desired, amount1Desired float64) (model.PositionState, error) {
	if err := p.checkTickRange(tickLower, tickUpper); err != nil {
		return model.PositionState{}, err
	}
	if amount0Desired < 0 || amount1Desired < 0 {
		return model.PositionState{}, fmt.Errorf("desired amounts must be non-negative")
	}

	priceLower := TickToPrice(tickLower)
	priceUpper := TickToPrice(tickUpper)

	liquidity := liquidityForAmounts(amount0Desired, amount1Desired, priceLower, priceUpper)
	if liquidity <= 0 {
		return model.PositionState{}, fmt.Errorf("mint yields no liquidity for amounts %v/%v", amount0Desired, amount1Desired)
	}
	amount0, amount1 := amountsForLiquidity(liquidity, priceLower, priceUpper)

	p.nextPositionSeq++
	position := &model.PositionState{
		PositionID:        fmt.Sprintf("%s-pos-%d", p.id, p.nextPositionSeq),
		Owner:             owner,
		TickLower:         tickLower,
		TickUpper:         tickUpper,
		Liquidity:         liquidity,
		Token0Amount:      amount0,
		Token1Amount:      amount1,
		LastFeeCollection: p.now().Unix(),
		Active:            true,
	}
	p.positions = append(p.positions, position)
	p.byID[position.PositionID] = position

	lower := p.upsertTick(tickLower)
	lower.LiquidityGross += liquidity
	lower.LiquidityNet += liquidity
	lower.Initialized = true

	upper := p.upsertTick(tickUpper)
	upper.LiquidityGross += liquidity
	upper.LiquidityNet -= liquidity
	upper.Initialized = true

	if p.inRange(tickLower, tickUpper) {
		p.liquidity += liquidity
	}
	p.recomputeTVL()

	return *position, nil
}

// Burn settles residual fees, returns the position's principal, and retires it.
// Burned positions stay in the pool's history with Active=false.
func (p *Pool) Burn(positionID string) (model.BurnResult, error) {
	position, ok := p.byID[positionID]
	if !ok {
		return model.BurnResult{}, fmt.Errorf("%w: %s", ErrPositionNotFound, positionID)
	}
	if !position.Active {
		return model.BurnResult{}, fmt.Errorf("%w: %s", ErrPositionInactive, positionID)
	}

	fees := p.settleFees(position)
	liquidity := position.Liquidity
	position.Active = false

	if lower, ok := p.ticks[position.TickLower]; ok {
		lower.LiquidityGross -= liquidity
		lower.LiquidityNet -= liquidity
		if !p.tickReferenced(position.TickLower) {
			delete(p.ticks, position.TickLower)
		}
	}
	if upper, ok := p.ticks[position.TickUpper]; ok {
		upper.LiquidityGross -= liquidity
		upper.LiquidityNet += liquidity
		if !p.tickReferenced(position.TickUpper) {
			delete(p.ticks, position.TickUpper)
		}
	}

	if p.inRange(position.TickLower, position.TickUpper) {
		p.liquidity -= liquidity
	}

	p.recomputeTVL()

	return model.BurnResult{
		Token0Amount: position.Token0Amount,
		Token1Amount: position.Token1Amount,
		FeesEarned0:  fees.FeesEarned0,
		FeesEarned1:  fees.FeesEarned1,
	}, nil
}

// tickReferenced reports whether any active position still uses idx as a
// boundary. Gross liquidity alone cannot decide deletion: float cancellation
// between skewed magnitudes can zero it while a position still spans the tick.
func (p *Pool) tickReferenced(idx int32) bool {
	for _, position := range p.positions {
		if position.Active && (position.TickLower == idx || position.TickUpper == idx) {
			return true
		}
	}
	return false
}

// checkTickRange validates ordering and tick-spacing alignment of a range.
func (p *Pool) checkTickRange(tickLower, tickUpper int32) error {
	if tickLower >= tickUpper {
		return fmt.Errorf("%w: lower %d must be below upper %d", ErrInvalidTickRange, tickLower, tickUpper)
	}
	if tickLower%p.tickSpacing != 0 || tickUpper%p.tickSpacing != 0 {
		return fmt.Errorf("%w: ticks %d/%d must be multiples of spacing %d", ErrInvalidTickRange, tickLower, tickUpper, p.tickSpacing)
	}
	return nil
}
