package pool

import (
	"fmt"
	"math"
	"math/big"

	"github.com/holiman/uint256"
)

// tickBase is the per-tick price ratio: price = tickBase^tick.
const tickBase = 1.0001

// feeGrowthScale gives the fee-growth accumulators an 18-decimal fixed scale.
const feeGrowthScale = 1e18

// PriceToTick returns the tick whose price band contains the given price.
func PriceToTick(price float64) int32 {
	return int32(math.Floor(math.Log(price) / math.Log(tickBase)))
}

// TickToPrice returns the price at the lower boundary of a tick.
func TickToPrice(tick int32) float64 {
	return math.Pow(tickBase, float64(tick))
}

// PriceToSqrtPriceX96 encodes sqrt(price) as a Q64.96 fixed-point decimal string.
// The string form keeps the value exact beyond float64 range for storage.
func PriceToSqrtPriceX96(price float64) (string, error) {
	if price <= 0 || math.IsInf(price, 0) || math.IsNaN(price) {
		return "", fmt.Errorf("price must be positive and finite: %v", price)
	}

	root := new(big.Float).SetPrec(192)
	root.Sqrt(root.SetFloat64(price))
	scale := new(big.Float).SetPrec(192).SetInt(new(big.Int).Lsh(big.NewInt(1), 96))
	root.Mul(root, scale)

	scaled, _ := root.Int(nil)
	encoded, overflow := uint256.FromBig(scaled)
	if overflow {
		return "", fmt.Errorf("sqrt price overflows uint256: %v", price)
	}
	return encoded.Dec(), nil
}

// liquidityForAmounts returns the liquidity minted for the desired amounts over
// [priceLower, priceUpper]. The binding asset caps the result.
func liquidityForAmounts(amount0, amount1, priceLower, priceUpper float64) float64 {
	sqrtLower := math.Sqrt(priceLower)
	sqrtUpper := math.Sqrt(priceUpper)
	span := sqrtUpper - sqrtLower

	liquidity0 := amount0 * sqrtLower * sqrtUpper / span
	liquidity1 := amount1 / span
	return math.Min(liquidity0, liquidity1)
}

// amountsForLiquidity inverts liquidityForAmounts: the token amounts a given
// liquidity represents over [priceLower, priceUpper].
func amountsForLiquidity(liquidity, priceLower, priceUpper float64) (amount0, amount1 float64) {
	sqrtLower := math.Sqrt(priceLower)
	sqrtUpper := math.Sqrt(priceUpper)
	span := sqrtUpper - sqrtLower

	amount0 = liquidity * span / (sqrtLower * sqrtUpper)
	amount1 = liquidity * span
	return amount0, amount1
}
