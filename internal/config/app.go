package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultConfigFile = "config.yaml"

type HTTPServer struct {
	Port string `mapstructure:"port"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type Provider struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

type Providers struct {
	Primary   Provider `mapstructure:"primary"`
	Secondary Provider `mapstructure:"secondary"`
	Quotes    Provider `mapstructure:"quotes"`
}

type Cache struct {
	FreshnessSeconds int `mapstructure:"freshness_seconds"`
}

// Warmup controls the background job that keeps the rate snapshot and the listed tickers
// in cache. Every ticker is warmed with the same months window.
type Warmup struct {
	Enabled         bool     `mapstructure:"enabled"`
	IntervalSeconds int      `mapstructure:"interval_seconds"`
	Tickers         []string `mapstructure:"tickers"`
	Months          int      `mapstructure:"months"`
}

type Defaults struct {
	Ticker string `mapstructure:"ticker"`
	Months int    `mapstructure:"months"`
}

type AppConfig struct {
	HTTPServer HTTPServer `mapstructure:"http_server"`
	Logging    Logging    `mapstructure:"logging"`
	HTTPClient HTTPClient `mapstructure:"http_client"`
	Providers  Providers  `mapstructure:"providers"`
	Cache      Cache      `mapstructure:"cache"`
	Warmup     Warmup     `mapstructure:"warmup"`
	Defaults   Defaults   `mapstructure:"defaults"`
}

func Init() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return Load(DefaultConfigFile)
}

// Load reads path when it exists, then applies defaults and environment overrides.
// Every key has a default, so running without a config file is valid.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	v := viper.New()

	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else if !errors.Is(statErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", statErr)
		}
	}

	v.SetDefault("http_server.port", "3000")
	v.SetDefault("logging.level", "info")
	v.SetDefault("http_client.timeout_seconds", 15)
	v.SetDefault("providers.primary.base_url", "https://criptoya.com")
	v.SetDefault("providers.primary.timeout_seconds", 10)
	v.SetDefault("providers.secondary.base_url", "https://dolarapi.com")
	v.SetDefault("providers.secondary.timeout_seconds", 5)
	v.SetDefault("providers.quotes.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("providers.quotes.timeout_seconds", 10)
	v.SetDefault("providers.quotes.user_agent", "Mozilla/5.0 (compatible; marketsnap/1.0)")
	v.SetDefault("cache.freshness_seconds", 300)
	v.SetDefault("warmup.enabled", true)
	v.SetDefault("warmup.interval_seconds", 240)
	v.SetDefault("warmup.tickers", []string{"^GSPC"})
	v.SetDefault("warmup.months", 1)
	v.SetDefault("defaults.ticker", "^GSPC")
	v.SetDefault("defaults.months", 1)

	// http server env vars
	_ = v.BindEnv("http_server.port", "HTTP_PORT")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")

	// upstream env vars
	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")
	_ = v.BindEnv("providers.primary.base_url", "PRIMARY_RATES_BASE_URL")
	_ = v.BindEnv("providers.secondary.base_url", "SECONDARY_RATES_BASE_URL")
	_ = v.BindEnv("providers.quotes.base_url", "QUOTES_BASE_URL")
	_ = v.BindEnv("providers.quotes.user_agent", "QUOTES_USER_AGENT")

	// cache env vars
	_ = v.BindEnv("cache.freshness_seconds", "CACHE_FRESHNESS_SECONDS")
	_ = v.BindEnv("warmup.enabled", "WARMUP_ENABLED")
	_ = v.BindEnv("warmup.interval_seconds", "WARMUP_INTERVAL_SECONDS")
	_ = v.BindEnv("warmup.tickers", "WARMUP_TICKERS")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &cfg, nil
}
