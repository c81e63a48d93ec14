// Package config loads the service configuration from YAML with environment
// overrides for deployment knobs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Assets    AssetsConfig    `yaml:"assets"`
	Cache     CacheConfig     `yaml:"cache"`
	Providers ProvidersConfig `yaml:"providers"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

// AssetsConfig names the two compared assets and the default panel window.
type AssetsConfig struct {
	Base        string `yaml:"base"`         // e.g. BTC-USD
	Quote       string `yaml:"quote"`        // e.g. ETH-USD
	DefaultDays int    `yaml:"default_days"` // default panel range length
}

// CacheConfig holds the series cache tiers.
type CacheConfig struct {
	SeriesTTL  Duration `yaml:"series_ttl"`
	MaxEntries int      `yaml:"max_entries"`
	RedisAddr  string   `yaml:"redis_addr"` // empty disables the Redis tier
	RedisDB    int      `yaml:"redis_db"`
	RedisPass  string   `yaml:"redis_password"`
}

// ProviderConfig holds one upstream client's settings.
type ProviderConfig struct {
	BaseURL        string   `yaml:"base_url"`
	RequestTimeout Duration `yaml:"request_timeout"`
	RPS            float64  `yaml:"rps"`
	Burst          int      `yaml:"burst"`
}

// ProvidersConfig holds both upstream clients.
type ProvidersConfig struct {
	Yahoo     ProviderConfig `yaml:"yahoo"`
	CoinGecko ProviderConfig `yaml:"coingecko"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  Duration(10 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
			IdleTimeout:  Duration(60 * time.Second),
		},
		Assets: AssetsConfig{
			Base:        "BTC-USD",
			Quote:       "ETH-USD",
			DefaultDays: 365,
		},
		Cache: CacheConfig{
			SeriesTTL:  Duration(time.Hour),
			MaxEntries: 64,
		},
		Providers: ProvidersConfig{
			Yahoo:     ProviderConfig{RequestTimeout: Duration(30 * time.Second), RPS: 2, Burst: 4},
			CoinGecko: ProviderConfig{RequestTimeout: Duration(30 * time.Second), RPS: 0.2, Burst: 2},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path into the defaults, then applies environment overrides.
// An empty path skips the file and uses defaults plus env.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides the deployment-sensitive knobs from the environment.
func applyEnv(cfg *Config) {
	if addr := os.Getenv("ETHBTC_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if addr := os.Getenv("ETHBTC_REDIS_ADDR"); addr != "" {
		cfg.Cache.RedisAddr = addr
	}
	if pass := os.Getenv("ETHBTC_REDIS_PASSWORD"); pass != "" {
		cfg.Cache.RedisPass = pass
	}
	if db := os.Getenv("ETHBTC_REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.Cache.RedisDB = n
		}
	}
	if level := os.Getenv("ETHBTC_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}

func (c Config) validate() error {
	if c.Assets.Base == "" || c.Assets.Quote == "" {
		return fmt.Errorf("assets: base and quote symbols are required")
	}
	if c.Assets.Base == c.Assets.Quote {
		return fmt.Errorf("assets: base and quote must differ, got %s twice", c.Assets.Base)
	}
	if c.Assets.DefaultDays <= 0 {
		return fmt.Errorf("assets: default_days must be positive, got %d", c.Assets.DefaultDays)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server: addr is required")
	}
	return nil
}
