package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityEngine/internal/config"
	"liquidityEngine/internal/engine"
	"liquidityEngine/internal/storage"
	"liquidityEngine/internal/storage/postgres"
)

// scriptOp is one line of a simulation script. Burns and collects may address
// a position either by id or by 1-based mint order within the pool.
type scriptOp struct {
	Op            string  `json:"op"`
	PoolID        string  `json:"pool_id"`
	Token0        string  `json:"token0,omitempty"`
	Token1        string  `json:"token1,omitempty"`
	FeeRate       float64 `json:"fee_rate,omitempty"`
	TickSpacing   int32   `json:"tick_spacing,omitempty"`
	InitialPrice  float64 `json:"initial_price,omitempty"`
	Owner         string  `json:"owner,omitempty"`
	TickLower     int32   `json:"tick_lower,omitempty"`
	TickUpper     int32   `json:"tick_upper,omitempty"`
	Amount0       float64 `json:"amount0,omitempty"`
	Amount1       float64 `json:"amount1,omitempty"`
	ZeroForOne    bool    `json:"zero_for_one,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	PositionID    string  `json:"position_id,omitempty"`
	PositionIndex int     `json:"position_index,omitempty"`
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Script == "" {
		return fmt.Errorf("script path is required")
	}

	ctx := context.Background()

	var store storage.PoolStore
	if cfg.PGDSN != "" {
		pgStore, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return err
		}
		store = pgStore
	} else {
		store = storage.NewMemoryStore()
	}

	var journal storage.EventJournal
	if cfg.Journal != "" {
		journal = storage.NewJsonlJournal(cfg.Journal)
	}

	eng := engine.New(store, journal, logger)

	file, err := os.Open(cfg.Script)
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	defer file.Close()

	minted := make(map[string][]string)
	pools := make(map[string]struct{})
	var line, applied, failed int

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		line++

		var op scriptOp
		if err := json.Unmarshal(raw, &op); err != nil {
			return fmt.Errorf("script line %d: %w", line, err)
		}

		if err := applyOp(ctx, eng, op, minted); err != nil {
			failed++
			logger.Warn("op failed",
				zap.Int("line", line),
				zap.String("op", op.Op),
				zap.String("pool_id", op.PoolID),
				zap.Error(err),
			)
			continue
		}
		applied++
		pools[op.PoolID] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	logger.Info("simulation done",
		zap.Int("ops", line),
		zap.Int("applied", applied),
		zap.Int("failed", failed),
	)

	for poolID := range pools {
		stats, err := eng.Stats(ctx, poolID)
		if err != nil {
			return err
		}
		if err := printJSON(stats); err != nil {
			return err
		}
	}
	return nil
}

func applyOp(ctx context.Context, eng *engine.Engine, op scriptOp, minted map[string][]string) error {
	switch op.Op {
	case "create":
		_, err := eng.CreatePool(ctx, engine.CreatePoolParams{
			PoolID:       op.PoolID,
			Token0:       op.Token0,
			Token1:       op.Token1,
			FeeRate:      op.FeeRate,
			TickSpacing:  op.TickSpacing,
			InitialPrice: op.InitialPrice,
		})
		return err
	case "mint":
		position, err := eng.Mint(ctx, op.PoolID, op.Owner, op.TickLower, op.TickUpper, op.Amount0, op.Amount1)
		if err != nil {
			return err
		}
		minted[op.PoolID] = append(minted[op.PoolID], position.PositionID)
		return nil
	case "swap":
		_, err := eng.Swap(ctx, op.PoolID, op.ZeroForOne, op.Amount)
		return err
	case "burn":
		positionID, err := resolvePosition(op, minted)
		if err != nil {
			return err
		}
		_, err = eng.Burn(ctx, op.PoolID, positionID)
		return err
	case "collect":
		positionID, err := resolvePosition(op, minted)
		if err != nil {
			return err
		}
		_, err = eng.CollectFees(ctx, op.PoolID, positionID)
		return err
	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
}

func resolvePosition(op scriptOp, minted map[string][]string) (string, error) {
	if op.PositionID != "" {
		return op.PositionID, nil
	}
	ids := minted[op.PoolID]
	if op.PositionIndex < 1 || op.PositionIndex > len(ids) {
		return "", fmt.Errorf("position index %d out of range for pool %s", op.PositionIndex, op.PoolID)
	}
	return ids[op.PositionIndex-1], nil
}

func printJSON(value interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
