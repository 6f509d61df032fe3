package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
	Store   StoreConfig   `yaml:"store"`
	Retry   RetryConfig   `yaml:"retry"`
	Pricing PricingConfig `yaml:"pricing"`
}

type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LogConfig struct {
	Mode  string `yaml:"mode"`
	Level string `yaml:"level"`
}

type StoreConfig struct {
	Driver   string         `yaml:"driver"`
	Postgres PostgresConfig `yaml:"postgres"`
	Mongo    MongoConfig    `yaml:"mongo"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type RetryConfig struct {
	Attempts int           `yaml:"attempts"`
	Interval time.Duration `yaml:"interval"`
}

type PricingConfig struct {
	Currency string `yaml:"currency"`
}

func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:           ":8081",
			RequestTimeout: 3 * time.Second,
		},
		Log: LogConfig{
			Mode: "development",
		},
		Store: StoreConfig{
			Driver: DriverPostgres,
			Mongo: MongoConfig{
				Database:   "ShoppingCartDb",
				Collection: "carts",
			},
		},
		Retry: RetryConfig{
			Attempts: 3,
			Interval: 50 * time.Millisecond,
		},
		Pricing: PricingConfig{
			Currency: "USD",
		},
	}
}

// Load reads defaults, then the optional YAML file at path, then CART_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("os.ReadFile: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("yaml.Unmarshal: %w", err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, fmt.Errorf("applyEnv: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.Postgres.DSN == "" {
			errs = append(errs, errors.New("store.postgres.dsn is empty"))
		}
	case DriverMongo:
		if c.Store.Mongo.URI == "" {
			errs = append(errs, errors.New("store.mongo.uri is empty"))
		}
		if c.Store.Mongo.Database == "" || c.Store.Mongo.Collection == "" {
			errs = append(errs, errors.New("store.mongo database and collection are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver[%s] is not valid", c.Store.Driver))
	}

	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is empty"))
	}
	if c.HTTP.RequestTimeout <= 0 {
		errs = append(errs, errors.New("http.request_timeout must be positive"))
	}
	if c.Retry.Attempts < 1 {
		errs = append(errs, errors.New("retry.attempts must be at least 1"))
	}

	if _, err := c.Currency(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (c Config) Currency() (currency.Unit, error) {
	unit, err := currency.ParseISO(c.Pricing.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("pricing.currency[%s] is not valid: %w", c.Pricing.Currency, err)
	}
	return unit, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("CART_HTTP_ADDR", &cfg.HTTP.Addr)
	str("CART_LOG_MODE", &cfg.Log.Mode)
	str("CART_LOG_LEVEL", &cfg.Log.Level)
	str("CART_STORE_DRIVER", &cfg.Store.Driver)
	str("CART_POSTGRES_DSN", &cfg.Store.Postgres.DSN)
	str("CART_MONGO_URI", &cfg.Store.Mongo.URI)
	str("CART_MONGO_DATABASE", &cfg.Store.Mongo.Database)
	str("CART_MONGO_COLLECTION", &cfg.Store.Mongo.Collection)
	str("CART_CURRENCY", &cfg.Pricing.Currency)

	if v, ok := lookup("CART_REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CART_REQUEST_TIMEOUT[%s] is not valid: %w", v, err)
		}
		cfg.HTTP.RequestTimeout = d
	}

	if v, ok := lookup("CART_RETRY_ATTEMPTS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CART_RETRY_ATTEMPTS[%s] is not valid: %w", v, err)
		}
		cfg.Retry.Attempts = n
	}

	return nil
}
