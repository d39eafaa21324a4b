package pool

import (
	"errors"
	"sort"
	"testing"
)

func newTestPool(t *testing.T) *Pool {
	t.Helper()
	p, err := New(Config{
		PoolID:       "pool-1",
		Token0:       "0x1111111111111111111111111111111111111111",
		Token1:       "0x2222222222222222222222222222222222222222",
		FeeRate:      0.003,
		TickSpacing:  60,
		InitialPrice: 1.0,
	})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	return p
}

func TestNewPoolValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing id", Config{Token0: "a", Token1: "b", TickSpacing: 60, InitialPrice: 1}},
		{"same tokens", Config{PoolID: "p", Token0: "a", Token1: "a", TickSpacing: 60, InitialPrice: 1}},
		{"zero spacing", Config{PoolID: "p", Token0: "a", Token1: "b", TickSpacing: 0, InitialPrice: 1}},
		{"zero price", Config{PoolID: "p", Token0: "a", Token1: "b", TickSpacing: 60, InitialPrice: 0}},
		{"fee too high", Config{PoolID: "p", Token0: "a", Token1: "b", TickSpacing: 60, InitialPrice: 1, FeeRate: 1}},
	}
	for _, tc := range cases {
		if _, err := New(tc.cfg); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestMintInvalidTickRange(t *testing.T) {
	p := newTestPool(t)

	cases := []struct {
		name  string
		lower int32
		upper int32
	}{
		{"equal", 60, 60},
		{"inverted", 600, -600},
		{"lower off spacing", -601, 600},
		{"upper off spacing", -600, 601},
	}
	for _, tc := range cases {
		_, err := p.Mint("0x3333333333333333333333333333333333333333", tc.lower, tc.upper, 1000, 1000)
		if !errors.Is(err, ErrInvalidTickRange) {
			t.Fatalf("%s: got %v, want ErrInvalidTickRange", tc.name, err)
		}
	}
}

func TestMintInRangeAddsLiquidity(t *testing.T) {
	p := newTestPool(t)

	position, err := p.Mint("0x3333333333333333333333333333333333333333", -600, 600, 1000, 1000)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if position.Liquidity <= 0 {
		t.Fatalf("position liquidity should be positive, got %v", position.Liquidity)
	}
	if p.liquidity != position.Liquidity {
		t.Fatalf("pool liquidity %v != position liquidity %v", p.liquidity, position.Liquidity)
	}
	if !position.Active {
		t.Fatalf("minted position should be active")
	}

	lower, ok := p.ticks[-600]
	if !ok || !lower.Initialized {
		t.Fatalf("lower tick not initialized")
	}
	if lower.LiquidityNet != position.Liquidity || lower.LiquidityGross != position.Liquidity {
		t.Fatalf("lower tick bookkeeping: net=%v gross=%v", lower.LiquidityNet, lower.LiquidityGross)
	}
	upper, ok := p.ticks[600]
	if !ok || upper.LiquidityNet != -position.Liquidity {
		t.Fatalf("upper tick should carry negative net, got %+v", upper)
	}
	if p.tvl <= 0 {
		t.Fatalf("tvl should be positive after mint, got %v", p.tvl)
	}
}

func TestMintOutOfRangeDoesNotActivate(t *testing.T) {
	p := newTestPool(t)

	position, err := p.Mint("0x3333333333333333333333333333333333333333", 600, 1200, 1000, 1000)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if position.Liquidity <= 0 {
		t.Fatalf("position liquidity should be positive")
	}
	if p.liquidity != 0 {
		t.Fatalf("out-of-range mint must not add active liquidity, got %v", p.liquidity)
	}
}

func TestBurnRemovesLiquidityAndRetiresPosition(t *testing.T) {
	p := newTestPool(t)

	position, err := p.Mint("0x3333333333333333333333333333333333333333", -600, 600, 1000, 1000)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	result, err := p.Burn(position.PositionID)
	if err != nil {
		t.Fatalf("burn: %v", err)
	}
	if p.liquidity != 0 {
		t.Fatalf("pool liquidity should return to zero, got %v", p.liquidity)
	}
	if !closeTo(result.Token0Amount, position.Token0Amount, 1e-9) ||
		!closeTo(result.Token1Amount, position.Token1Amount, 1e-9) {
		t.Fatalf("burn principal mismatch: %+v vs minted %v/%v", result, position.Token0Amount, position.Token1Amount)
	}
	if _, ok := p.ticks[-600]; ok {
		t.Fatalf("fully drained lower tick should be deleted")
	}
	if _, ok := p.ticks[600]; ok {
		t.Fatalf("fully drained upper tick should be deleted")
	}

	info := p.PositionInfo(position.PositionID)
	if info == nil || info.Active {
		t.Fatalf("burned position should remain queryable and inactive, got %+v", info)
	}

	if _, err := p.Burn(position.PositionID); !errors.Is(err, ErrPositionInactive) {
		t.Fatalf("second burn: got %v, want ErrPositionInactive", err)
	}
}

func TestBurnUnknownPosition(t *testing.T) {
	p := newTestPool(t)
	if _, err := p.Burn("pool-1-pos-999"); !errors.Is(err, ErrPositionNotFound) {
		t.Fatalf("got %v, want ErrPositionNotFound", err)
	}
}

// A boundary tick shared by positions of wildly different magnitude: burning
// the large one cancels the small one's gross contribution to exactly zero in
// float64, but the tick must survive while an active position references it.
func TestBurnKeepsSharedBoundaryTick(t *testing.T) {
	p := newTestPool(t)
	owner := "0x3333333333333333333333333333333333333333"

	large, err := p.Mint(owner, -600, 600, 1e20, 1e20)
	if err != nil {
		t.Fatalf("mint large: %v", err)
	}
	small, err := p.Mint(owner, 600, 1200, 1e-8, 1e-8)
	if err != nil {
		t.Fatalf("mint small: %v", err)
	}

	if _, err := p.Burn(large.PositionID); err != nil {
		t.Fatalf("burn large: %v", err)
	}

	shared, ok := p.ticks[600]
	if !ok {
		t.Fatalf("tick 600 deleted while still referenced by an active position")
	}
	if !shared.Initialized {
		t.Fatalf("shared tick should stay initialized")
	}
	if _, ok := p.LiquidityDistribution()[600]; !ok {
		t.Fatalf("depth chart lost the shared boundary tick")
	}
	if _, ok := p.ticks[-600]; ok {
		t.Fatalf("unreferenced lower tick should be deleted")
	}

	if _, err := p.Burn(small.PositionID); err != nil {
		t.Fatalf("burn small: %v", err)
	}
	if _, ok := p.ticks[600]; ok {
		t.Fatalf("tick 600 should be deleted once nothing references it")
	}
	if _, ok := p.ticks[1200]; ok {
		t.Fatalf("tick 1200 should be deleted once nothing references it")
	}
}

func TestTickSweepReconstructsActiveLiquidity(t *testing.T) {
	p := newTestPool(t)
	owner := "0x3333333333333333333333333333333333333333"

	mints := []struct {
		lower, upper     int32
		amount0, amount1 float64
	}{
		{-600, 600, 1000, 1000},
		{-1200, -600, 500, 500},
		{60, 1200, 800, 800},
		{-60, 60, 300, 300},
	}
	var positions []string
	for _, m := range mints {
		position, err := p.Mint(owner, m.lower, m.upper, m.amount0, m.amount1)
		if err != nil {
			t.Fatalf("mint [%d,%d): %v", m.lower, m.upper, err)
		}
		positions = append(positions, position.PositionID)
	}

	assertSweep(t, p)

	if _, err := p.Burn(positions[1]); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if _, err := p.Burn(positions[3]); err != nil {
		t.Fatalf("burn: %v", err)
	}
	assertSweep(t, p)
}

// assertSweep checks that summing liquidityNet over all ticks at or below the
// current tick reproduces the pool's active liquidity.
func assertSweep(t *testing.T, p *Pool) {
	t.Helper()

	var indexes []int32
	for idx := range p.ticks {
		indexes = append(indexes, idx)
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

	swept := 0.0
	for _, idx := range indexes {
		if idx > p.currentTick {
			break
		}
		swept += p.ticks[idx].LiquidityNet
	}
	if !closeTo(swept, p.liquidity, 1e-9) {
		t.Fatalf("tick sweep %v != pool liquidity %v", swept, p.liquidity)
	}
}
