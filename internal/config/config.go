package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API   APIConfig   `yaml:"api"`
	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`
	Mock  MockConfig  `yaml:"mock"`
	Shop  ShopConfig  `yaml:"shop"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// StoreConfig selects the local session store. The URL scheme picks the
// backend: sqlite://, postgres:// or redis://.
type StoreConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MockConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type ShopConfig struct {
	TaxRate decimal.Decimal `yaml:"tax_rate"`
}

func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:5000",
			Timeout: 10 * time.Second,
		},
		Store: StoreConfig{
			URL:             "sqlite://supershop.db",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Mock: MockConfig{
			Port:         "5000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Shop: ShopConfig{
			TaxRate: decimal.RequireFromString("0.08"),
		},
	}
}

// Load reads .env, then the YAML file named by SHOP_CONFIG if any, then
// applies environment overrides. Later sources win.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := Default()

	if path := os.Getenv("SHOP_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.API.BaseURL = getEnv("SHOP_API_URL", cfg.API.BaseURL)
	cfg.API.Timeout = getEnvDuration("SHOP_API_TIMEOUT", cfg.API.Timeout)

	cfg.Store.URL = getEnv("SHOP_STORE_URL", cfg.Store.URL)
	cfg.Store.MaxOpenConns = getEnvInt("DATABASE_MAX_OPEN_CONNS", cfg.Store.MaxOpenConns)
	cfg.Store.MaxIdleConns = getEnvInt("DATABASE_MAX_IDLE_CONNS", cfg.Store.MaxIdleConns)
	cfg.Store.ConnMaxLifetime = getEnvDuration("DATABASE_CONN_MAX_LIFETIME", cfg.Store.ConnMaxLifetime)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Mock.Port = getEnv("MOCK_PORT", cfg.Mock.Port)
	cfg.Mock.ReadTimeout = getEnvDuration("MOCK_READ_TIMEOUT", cfg.Mock.ReadTimeout)
	cfg.Mock.WriteTimeout = getEnvDuration("MOCK_WRITE_TIMEOUT", cfg.Mock.WriteTimeout)

	if value := os.Getenv("SHOP_TAX_RATE"); value != "" {
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("parse SHOP_TAX_RATE: %w", err)
		}
		cfg.Shop.TaxRate = rate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	return nil
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %s", c.API.Timeout)
	}
	if c.Shop.TaxRate.IsNegative() {
		return fmt.Errorf("tax rate cannot be negative, got %s", c.Shop.TaxRate)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		fmt.Fprintf(os.Stderr, "Warning: invalid duration for %s, using default\n", key)
	}
	return defaultValue
}
