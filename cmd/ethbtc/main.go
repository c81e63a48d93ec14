package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "ethbtc"
	version = "v1.0.0"
)

func main() {
	setupLogging()

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "ETH vs BTC return comparison dashboard",
		Version: version,
		Long: `ethbtc serves a web dashboard comparing the historical percentage
returns of ETH and BTC over user-selected date ranges. Price history comes
from Yahoo Finance with CoinGecko as fallback.`,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug|info|warn|error)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Long:  "Serves the comparison dashboard, JSON API, health and metrics endpoints",
		RunE:  runServe,
	}
	serveCmd.Flags().String("addr", "", "Listen address override (host:port)")

	fetchCmd := &cobra.Command{
		Use:   "fetch <symbol>",
		Short: "Fetch a daily price series and print it as JSON",
		Long:  "Automation shim: fetches the full daily history through the provider chain and prints it",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetch,
	}
	fetchCmd.Flags().String("start", "", "Clip start date (YYYY-MM-DD)")
	fetchCmd.Flags().String("end", "", "Clip end date (YYYY-MM-DD)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging picks console output on a TTY and JSON otherwise.
func setupLogging() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// applyLogLevel resolves the configured level, CLI flag winning over config.
func applyLogLevel(configLevel, flagLevel string) {
	level := configLevel
	if flagLevel != "" {
		level = flagLevel
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
