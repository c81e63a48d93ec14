package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Olshansk/eth-vs-bitcoin-price/internal/config"
	"github.com/Olshansk/eth-vs-bitcoin-price/internal/data"
	httpserver "github.com/Olshansk/eth-vs-bitcoin-price/internal/interfaces/http"
	"github.com/Olshansk/eth-vs-bitcoin-price/internal/providers"
	"github.com/Olshansk/eth-vs-bitcoin-price/internal/telemetry"
)

// runServe wires the provider chain, cache tiers and HTTP server, then blocks
// until SIGINT/SIGTERM.
func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logLevel, _ := cmd.Flags().GetString("log-level")
	applyLogLevel(cfg.Log.Level, logLevel)

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	chain := buildChain(cfg)
	metrics := telemetry.NewMetrics()
	chain.OnFetch = metrics.FetchObserved

	var redisCache *data.RedisCache
	var warmTier data.SeriesCache
	if cfg.Cache.RedisAddr != "" {
		redisCache = data.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPass, cfg.Cache.RedisDB)
		warmTier = redisCache
		log.Info().Str("addr", cfg.Cache.RedisAddr).Msg("Redis cache tier enabled")
	}

	facade := data.NewFacade(
		data.NewMemoryCache(cfg.Cache.MaxEntries),
		warmTier,
		chain,
		cfg.Cache.SeriesTTL.Std(),
		metrics,
	)

	var pinger httpserver.Pinger
	if redisCache != nil {
		pinger = redisCache
	}
	handlers := httpserver.NewHandlers(facade,
		cfg.Assets.Base, cfg.Assets.Quote, cfg.Assets.DefaultDays, chain, pinger)
	server := httpserver.NewServer(cfg.Server, handlers, metrics)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// buildChain creates the Yahoo-first, CoinGecko-fallback provider chain.
func buildChain(cfg config.Config) *providers.Chain {
	yahoo := providers.NewYahoo(providers.YahooConfig{
		BaseURL:        cfg.Providers.Yahoo.BaseURL,
		RequestTimeout: cfg.Providers.Yahoo.RequestTimeout.Std(),
		RPS:            cfg.Providers.Yahoo.RPS,
		Burst:          cfg.Providers.Yahoo.Burst,
	})
	coingecko := providers.NewCoinGecko(providers.CoinGeckoConfig{
		BaseURL:        cfg.Providers.CoinGecko.BaseURL,
		RequestTimeout: cfg.Providers.CoinGecko.RequestTimeout.Std(),
		RPS:            cfg.Providers.CoinGecko.RPS,
		Burst:          cfg.Providers.CoinGecko.Burst,
	})
	return providers.NewChain(yahoo, coingecko)
}
