package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "amm",
		Short:        "Concentrated-liquidity pool engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a JSONL op script against the engine",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().String("script", "", "input op script JSONL")
	simulateCmd.Flags().String("pg-dsn", "", "Postgres DSN (empty runs in memory)")
	simulateCmd.Flags().String("journal", "./data/events.jsonl", "event journal JSONL path")
	simulateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(simulateCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Report a stored pool's stats and liquidity distribution",
		RunE:  runStats,
	}
	statsCmd.Flags().String("pool", "", "pool id")
	statsCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	statsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(statsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
