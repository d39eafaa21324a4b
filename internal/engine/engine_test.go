package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/pool"
	"liquidityEngine/internal/storage"
)

const (
	testToken0 = "0x1111111111111111111111111111111111111111"
	testToken1 = "0x2222222222222222222222222222222222222222"
	testOwner  = "0x3333333333333333333333333333333333333333"
)

type captureJournal struct {
	events []model.PoolEvent
}

func (j *captureJournal) Append(event model.PoolEvent) error {
	j.events = append(j.events, event)
	return nil
}

type failingStore struct {
	storage.PoolStore
	failSaves bool
}

func (s *failingStore) SavePool(ctx context.Context, state model.PoolState) error {
	if s.failSaves {
		return fmt.Errorf("store unavailable")
	}
	return s.PoolStore.SavePool(ctx, state)
}

func newTestEngine(t *testing.T) (*Engine, *storage.MemoryStore, *captureJournal) {
	t.Helper()
	store := storage.NewMemoryStore()
	journal := &captureJournal{}
	e := New(store, journal, nil)

	_, err := e.CreatePool(context.Background(), CreatePoolParams{
		PoolID:       "pool-1",
		Token0:       testToken0,
		Token1:       testToken1,
		FeeRate:      0.003,
		TickSpacing:  60,
		InitialPrice: 1.0,
	})
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	return e, store, journal
}

func TestCreatePoolDuplicate(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.CreatePool(context.Background(), CreatePoolParams{
		PoolID:       "pool-1",
		Token0:       testToken0,
		Token1:       testToken1,
		FeeRate:      0.003,
		TickSpacing:  60,
		InitialPrice: 1.0,
	})
	if !errors.Is(err, ErrPoolExists) {
		t.Fatalf("got %v, want ErrPoolExists", err)
	}
}

func TestCreatePoolRejectsBadAddresses(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.CreatePool(context.Background(), CreatePoolParams{
		PoolID:       "pool-2",
		Token0:       "not-an-address",
		Token1:       testToken1,
		FeeRate:      0.003,
		TickSpacing:  60,
		InitialPrice: 1.0,
	})
	if err == nil {
		t.Fatalf("expected error for invalid token address")
	}
}

func TestMintValidatesOwner(t *testing.T) {
	e, _, _ := newTestEngine(t)
	if _, err := e.Mint(context.Background(), "pool-1", "bogus", -600, 600, 1000, 1000); err == nil {
		t.Fatalf("expected error for invalid owner address")
	}
}

func TestUnknownPool(t *testing.T) {
	e, _, _ := newTestEngine(t)
	if _, err := e.Stats(context.Background(), "pool-404"); !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("got %v, want ErrPoolNotFound", err)
	}
	if _, err := e.Swap(context.Background(), "pool-404", true, 100); !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("got %v, want ErrPoolNotFound", err)
	}
}

func TestLifecycleAndJournal(t *testing.T) {
	e, _, journal := newTestEngine(t)
	ctx := context.Background()

	position, err := e.Mint(ctx, "pool-1", testOwner, -600, 600, 1000, 1000)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	swap, err := e.Swap(ctx, "pool-1", true, 100)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if swap.AmountOut >= swap.AmountIn {
		t.Fatalf("swap output should be below input: %+v", swap)
	}
	collected, err := e.CollectFees(ctx, "pool-1", position.PositionID)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if collected.FeesEarned0 <= 0 {
		t.Fatalf("in-range position should have earned fees, got %+v", collected)
	}
	if _, err := e.Burn(ctx, "pool-1", position.PositionID); err != nil {
		t.Fatalf("burn: %v", err)
	}

	var names []string
	for _, event := range journal.events {
		names = append(names, event.EventName)
	}
	want := []string{"create", "mint", "swap", "collect", "burn"}
	if len(names) != len(want) {
		t.Fatalf("journal events: got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("journal order: got %v, want %v", names, want)
		}
	}
}

func TestPoolSurvivesRestart(t *testing.T) {
	e, store, _ := newTestEngine(t)
	ctx := context.Background()

	position, err := e.Mint(ctx, "pool-1", testOwner, -600, 600, 1000, 1000)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := e.Swap(ctx, "pool-1", true, 100); err != nil {
		t.Fatalf("swap: %v", err)
	}
	statsBefore, err := e.Stats(ctx, "pool-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	restarted := New(store, nil, nil)
	statsAfter, err := restarted.Stats(ctx, "pool-1")
	if err != nil {
		t.Fatalf("stats after restart: %v", err)
	}
	if statsAfter != statsBefore {
		t.Fatalf("stats diverged across restart: %+v vs %+v", statsAfter, statsBefore)
	}

	info, err := restarted.PositionInfo(ctx, "pool-1", position.PositionID)
	if err != nil {
		t.Fatalf("position info: %v", err)
	}
	if info == nil || !info.Active {
		t.Fatalf("position should survive restart, got %+v", info)
	}
}

func TestSaveFailureRollsBack(t *testing.T) {
	store := storage.NewMemoryStore()
	wrapped := &failingStore{PoolStore: store}
	e := New(wrapped, nil, nil)
	ctx := context.Background()

	if _, err := e.CreatePool(ctx, CreatePoolParams{
		PoolID:       "pool-1",
		Token0:       testToken0,
		Token1:       testToken1,
		FeeRate:      0.003,
		TickSpacing:  60,
		InitialPrice: 1.0,
	}); err != nil {
		t.Fatalf("create pool: %v", err)
	}
	if _, err := e.Mint(ctx, "pool-1", testOwner, -600, 600, 1000, 1000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	statsBefore, err := e.Stats(ctx, "pool-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	wrapped.failSaves = true
	if _, err := e.Swap(ctx, "pool-1", true, 100); err == nil {
		t.Fatalf("expected save failure to surface")
	}
	wrapped.failSaves = false

	statsAfter, err := e.Stats(ctx, "pool-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if statsAfter != statsBefore {
		t.Fatalf("failed swap should leave the pool untouched: %+v vs %+v", statsAfter, statsBefore)
	}
}

func TestOpFailureLeavesPoolIntact(t *testing.T) {
	e, store, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Mint(ctx, "pool-1", testOwner, -600, 600, 1000, 1000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	statsBefore, err := e.Stats(ctx, "pool-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if _, err := e.Swap(ctx, "pool-1", true, math.Inf(1)); !errors.Is(err, pool.ErrInvalidSwapAmount) {
		t.Fatalf("got %v, want ErrInvalidSwapAmount", err)
	}
	if _, err := e.Swap(ctx, "pool-1", true, math.NaN()); !errors.Is(err, pool.ErrInvalidSwapAmount) {
		t.Fatalf("got %v, want ErrInvalidSwapAmount", err)
	}

	statsAfter, err := e.Stats(ctx, "pool-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if statsAfter != statsBefore {
		t.Fatalf("failed op mutated the pool: %+v vs %+v", statsAfter, statsBefore)
	}

	// memory and store must agree after the failed op
	fresh := New(store, nil, nil)
	statsStored, err := fresh.Stats(ctx, "pool-1")
	if err != nil {
		t.Fatalf("stats from store: %v", err)
	}
	if statsStored != statsAfter {
		t.Fatalf("memory diverged from store: %+v vs %+v", statsStored, statsAfter)
	}

	if _, err := e.Swap(ctx, "pool-1", true, 100); err != nil {
		t.Fatalf("swap after failed op: %v", err)
	}
}

func TestOperationErrorsPassThrough(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Mint(ctx, "pool-1", testOwner, 60, 60, 1000, 1000); !errors.Is(err, pool.ErrInvalidTickRange) {
		t.Fatalf("got %v, want ErrInvalidTickRange", err)
	}
	if _, err := e.Swap(ctx, "pool-1", true, 100); !errors.Is(err, pool.ErrNoLiquidity) {
		t.Fatalf("got %v, want ErrNoLiquidity", err)
	}
	if _, err := e.Burn(ctx, "pool-1", "pool-1-pos-9"); !errors.Is(err, pool.ErrPositionNotFound) {
		t.Fatalf("got %v, want ErrPositionNotFound", err)
	}
}

func TestLiquidityDistributionView(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Mint(ctx, "pool-1", testOwner, -600, 600, 1000, 1000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	bands, err := e.LiquidityDistribution(ctx, "pool-1")
	if err != nil {
		t.Fatalf("distribution: %v", err)
	}
	if len(bands) != 2 {
		t.Fatalf("band count: got %d, want 2", len(bands))
	}
	band, ok := bands[-600]
	if !ok || band.LiquidityGross <= 0 {
		t.Fatalf("missing lower band: %+v", bands)
	}
	if math.Abs(band.Price-pool.TickToPrice(-600)) > 1e-12 {
		t.Fatalf("band price mismatch: %v", band.Price)
	}
}
