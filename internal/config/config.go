package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Model    ModelConfig    `mapstructure:"model"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Tickers  []string       `mapstructure:"tickers"`
}

type ServerConfig struct {
	Port             string        `mapstructure:"port"`
	Workers          int           `mapstructure:"workers"`
	MaxExpirations   int           `mapstructure:"max_expirations"`
	WSEnabled        bool          `mapstructure:"ws_enabled"`
	WSStreamInterval time.Duration `mapstructure:"ws_stream_interval"`
}

type ProviderConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	APIKey        string `mapstructure:"api_key"`
	TimeoutSec    int    `mapstructure:"timeout_sec"`
	RetryCount    int    `mapstructure:"retry_count"`
	RetryDelaySec int    `mapstructure:"retry_delay_sec"`
	RatePerSecond int    `mapstructure:"rate_per_second"`
}

// ModelConfig carries the pricing-model parameters. The defaults are the
// calibrated values the downstream numbers were validated against.
type ModelConfig struct {
	RiskFreeRate  float64 `mapstructure:"risk_free_rate"`
	DividendYield float64 `mapstructure:"dividend_yield"`
	MinVol        float64 `mapstructure:"min_vol"`
	MaxVol        float64 `mapstructure:"max_vol"`
	ScanWidth     float64 `mapstructure:"scan_width"`
}

type LoggingConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
	Level     string `mapstructure:"level"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.workers", 4)
	v.SetDefault("server.max_expirations", 6)
	v.SetDefault("server.ws_enabled", true)
	v.SetDefault("server.ws_stream_interval", "5s")
	v.SetDefault("provider.base_url", "https://api.marketdata.local")
	v.SetDefault("provider.timeout_sec", 30)
	v.SetDefault("provider.retry_count", 3)
	v.SetDefault("provider.retry_delay_sec", 2)
	v.SetDefault("provider.rate_per_second", 5)
	v.SetDefault("model.risk_free_rate", 0.045)
	v.SetDefault("model.dividend_yield", 0.0)
	v.SetDefault("model.min_vol", 0.0001)
	v.SetDefault("model.max_vol", 5.0)
	v.SetDefault("model.scan_width", 0.10)
	v.SetDefault("logging.enabled", true)
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("tickers", []string{"SPY"})

	// Environment variable support
	v.SetEnvPrefix("GEXLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Explicitly bind nested keys to env vars
	_ = v.BindEnv("provider.api_key", "GEXLENS_API_KEY")

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("default")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
