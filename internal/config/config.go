package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"coin-price-service/pkg/logger"
	"coin-price-service/pkg/utils"
)

type Config struct {
	Server          ServerConfig        `envconfig:"SERVER"`
	CoinMarketCap   CoinMarketCapConfig `envconfig:"CMC"`
	Cache           CacheConfig         `envconfig:"CACHE"`
	Allowed         AllowedConfig       `envconfig:"ALLOWED"`
	WarmUp          WarmUpConfig        `envconfig:"WARMUP"`
	Log             LogConfig           `envconfig:"LOG"`
	DefaultCurrency string              `envconfig:"DEFAULT_CURRENCY" default:"USD"`
}

type ServerConfig struct {
	Port         int           `envconfig:"PORT" default:"3000"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
	BasePath     string        `envconfig:"BASE_PATH" default:"/api"`
	CORSOrigins  []string      `envconfig:"CORS_ORIGINS" default:"*"`
}

type CoinMarketCapConfig struct {
	APIKey  string        `envconfig:"API_KEY" required:"true"`
	BaseURL string        `envconfig:"BASE_URL" default:"https://pro-api.coinmarketcap.com"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

type CacheConfig struct {
	TTL time.Duration `envconfig:"TTL" default:"10m"`
}

type AllowedConfig struct {
	Tickers    []string `envconfig:"TICKERS"`
	Currencies []string `envconfig:"CURRENCIES"`
}

// WarmUpConfig controls the background lookup of every allowed pair.
// A zero Interval only warms up once at startup.
type WarmUpConfig struct {
	Enabled     bool          `envconfig:"ENABLED" default:"false"`
	Interval    time.Duration `envconfig:"INTERVAL" default:"0s"`
	Concurrency int           `envconfig:"CONCURRENCY" default:"4"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"text"`
}

// LoadConfig reads the optional .env files (defaults to ./.env) into the
// environment without overriding variables already set, then parses it.
func LoadConfig(log *logger.Logger, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Debug("No .env file loaded, using process environment", "error", err)
	} else {
		log.Info("Environment variables loaded from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	cfg.Allowed.Tickers = cleanList(cfg.Allowed.Tickers)
	cfg.Allowed.Currencies = cleanList(cfg.Allowed.Currencies)
	cfg.Server.CORSOrigins = cleanList(cfg.Server.CORSOrigins)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log.Info("Config loaded",
		"port", cfg.Server.Port,
		"base_path", cfg.Server.BasePath,
		"cmc_base_url", cfg.CoinMarketCap.BaseURL,
		"cmc_api_key", utils.MaskAPIKey(cfg.CoinMarketCap.APIKey),
		"cache_ttl", cfg.Cache.TTL,
		"allowed_tickers", cfg.Allowed.Tickers,
		"allowed_currencies", cfg.Allowed.Currencies,
		"default_currency", cfg.DefaultCurrency,
	)
	if len(cfg.Allowed.Tickers) == 0 || len(cfg.Allowed.Currencies) == 0 {
		log.Warn("ALLOWED_TICKERS or ALLOWED_CURRENCIES is empty, every price request will be rejected")
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT: %d", c.Server.Port)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("invalid CACHE_TTL: %s", c.Cache.TTL)
	}
	if c.WarmUp.Interval < 0 {
		return fmt.Errorf("invalid WARMUP_INTERVAL: %s", c.WarmUp.Interval)
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("invalid SERVER_BASE_PATH: %q must start with /", c.Server.BasePath)
	}
	return nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
