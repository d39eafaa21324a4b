package pool

import (
	"fmt"
	"math"

	"liquidityEngine/internal/model"
)

// Swap executes a trade against the pool's aggregate in-range liquidity using
// a single constant-product step. This is a deliberate approximation of a
// tick-walking engine: the price moves against the whole active liquidity and
// no tick boundaries are crossed piecewise.
func (p *Pool) Swap(zeroForOne bool, amountSpecified float64) (model.SwapResult, error) {
	if p.liquidity <= 0 {
		return model.SwapResult{}, fmt.Errorf("%w: pool %s", ErrNoLiquidity, p.id)
	}

	// reject before any field is touched: a non-finite amount would poison
	// the price and fee accumulators for every later call
	amountIn := math.Abs(amountSpecified)
	if amountIn == 0 || math.IsInf(amountIn, 0) || math.IsNaN(amountIn) {
		return model.SwapResult{}, fmt.Errorf("%w: %v", ErrInvalidSwapAmount, amountSpecified)
	}

	fee := amountIn * p.feeRate
	amountInNet := amountIn - fee
	amountOut := p.liquidity * amountInNet / (p.liquidity + amountInNet)

	if zeroForOne {
		p.volume0 += amountIn
		p.feeGrowthGlobal0 += fee * feeGrowthScale / p.liquidity
		p.currentPrice *= p.liquidity / (p.liquidity + amountInNet)
	} else {
		p.volume1 += amountIn
		p.feeGrowthGlobal1 += fee * feeGrowthScale / p.liquidity
		p.currentPrice *= (p.liquidity + amountInNet) / p.liquidity
	}
	p.feesCollected += fee

	p.currentTick = PriceToTick(p.currentPrice)
	sqrtPrice, err := PriceToSqrtPriceX96(p.currentPrice)
	if err != nil {
		return model.SwapResult{}, fmt.Errorf("update sqrt price: %w", err)
	}
	p.sqrtPriceX96 = sqrtPrice

	p.recordObservation()

	return model.SwapResult{
		AmountIn:  amountIn,
		AmountOut: amountOut,
		Fee:       fee,
		NewPrice:  p.currentPrice,
		NewTick:   p.currentTick,
	}, nil
}

// recordObservation appends one history point, dropping the oldest past the cap.
func (p *Pool) recordObservation() {
	p.observations = append(p.observations, model.Observation{
		Timestamp: p.now().Unix(),
		Tick:      p.currentTick,
		Price:     p.currentPrice,
		Liquidity: p.liquidity,
	})
	if len(p.observations) > maxObservations {
		p.observations = p.observations[len(p.observations)-maxObservations:]
	}
}
