package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"liquidityEngine/internal/config"
	"liquidityEngine/internal/engine"
	"liquidityEngine/internal/model"
	"liquidityEngine/internal/storage/postgres"
)

func runStats(cmd *cobra.Command, _ []string) error {
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

	if cfg.PoolID == "" {
		return fmt.Errorf("pool id is required")
	}
	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}

	ctx := context.Background()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	eng := engine.New(store, nil, logger)

	stats, err := eng.Stats(ctx, cfg.PoolID)
	if err != nil {
		return err
	}
	if err := printJSON(stats); err != nil {
		return err
	}

	bands, err := eng.LiquidityDistribution(ctx, cfg.PoolID)
	if err != nil {
		return err
	}
	ordered := make([]model.LiquidityBand, 0, len(bands))
	for _, band := range bands {
		ordered = append(ordered, band)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Tick < ordered[j].Tick })
	return printJSON(ordered)
}
