package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Olshansk/eth-vs-bitcoin-price/internal/config"
	"github.com/Olshansk/eth-vs-bitcoin-price/internal/domain"
)

// runFetch pulls one symbol's daily history through the provider chain and
// prints it as JSON, optionally clipped to a range.
func runFetch(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logLevel, _ := cmd.Flags().GetString("log-level")
	applyLogLevel(cfg.Log.Level, logLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	chain := buildChain(cfg)
	series, err := chain.DailyHistory(ctx, args[0])
	if err != nil {
		return err
	}

	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	if start != "" || end != "" {
		if start == "" {
			start = series.First().Date.Format("2006-01-02")
		}
		if end == "" {
			end = series.Last().Date.Format("2006-01-02")
		}
		rng, err := domain.ParseDateRange(start, end)
		if err != nil {
			return err
		}
		series = series.Clip(rng)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(series)
}
