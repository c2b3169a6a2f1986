package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreBolt     = "bolt"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all connector daemon configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Channel  ChannelConfig  `mapstructure:"channel"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig configures the read-only status API.
type ServerConfig struct {
	Host      string          `mapstructure:"host"`
	Port      int             `mapstructure:"port"`
	Mode      string          `mapstructure:"mode"` // debug, release, test
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RateLimitConfig applies a per-client fixed window to the status API. It
// needs redis.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int64         `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"` // bolt, redis, postgres, memory
	Path   string `mapstructure:"path"`   // bolt database file
	Prefix string `mapstructure:"prefix"` // redis key prefix
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LedgerConfig selects the ledger adapter and the connector identity.
type LedgerConfig struct {
	Provider       string `mapstructure:"provider"` // "simulated" or a provider URI
	Strategy       string `mapstructure:"strategy"` // keccak, blake2b
	Seed           string `mapstructure:"seed"`     // hex
	DemoAccount    int    `mapstructure:"demo_account"`
	GenesisBalance uint64 `mapstructure:"genesis_balance"`
	AutoMine       bool   `mapstructure:"auto_mine"`
}

// SeedBytes decodes the hex seed. An empty seed returns nil.
func (l LedgerConfig) SeedBytes() ([]byte, error) {
	s := strings.TrimPrefix(l.Seed, "0x")
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding ledger seed: %w", err)
	}
	return b, nil
}

// DemoAccountIndex returns the demo account index, or nil when unset (< 0).
func (l LedgerConfig) DemoAccountIndex() *int {
	if l.DemoAccount < 0 {
		return nil
	}
	i := l.DemoAccount
	return &i
}

type ChannelConfig struct {
	DisputeWindow time.Duration `mapstructure:"dispute_window"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Validate checks the fields Load cannot type-check.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreBolt:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the bolt driver")
		}
	case StoreRedis, StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Ledger.Strategy {
	case "keccak", "blake2b":
	default:
		return fmt.Errorf("unknown crypto strategy %q", c.Ledger.Strategy)
	}

	if c.Ledger.Seed != "" && c.Ledger.DemoAccount >= 0 {
		return fmt.Errorf("ledger.seed and ledger.demo_account are mutually exclusive")
	}
	if _, err := c.Ledger.SeedBytes(); err != nil {
		return err
	}
	if c.Channel.DisputeWindow <= 0 {
		return fmt.Errorf("channel.dispute_window must be positive")
	}
	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.Limit <= 0 || c.Server.RateLimit.Window < time.Second) {
		return fmt.Errorf("server.rate_limit needs a positive limit and a window of at least 1s")
	}
	return nil
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: CCN_ (Chain CoNnector).
// Nested keys use underscore: CCN_STORE_DRIVER, CCN_LEDGER_SEED, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8545)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.rate_limit.enabled", false)
	v.SetDefault("server.rate_limit.limit", 120)
	v.SetDefault("server.rate_limit.window", "1m")
	v.SetDefault("store.driver", StoreBolt)
	v.SetDefault("store.path", "connector.db")
	v.SetDefault("store.prefix", "connector:")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "chain_connector")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ledger.provider", "simulated")
	v.SetDefault("ledger.strategy", "keccak")
	v.SetDefault("ledger.seed", "")
	v.SetDefault("ledger.demo_account", -1)
	v.SetDefault("ledger.genesis_balance", 0)
	v.SetDefault("ledger.auto_mine", true)
	v.SetDefault("channel.dispute_window", "10m")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "ccn")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("connector")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// CCN_STORE_DRIVER -> store.driver
	v.SetEnvPrefix("CCN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing file is fine, env vars can carry everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
