package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8545, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.False(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, time.Minute, cfg.Server.RateLimit.Window)

	assert.Equal(t, StoreBolt, cfg.Store.Driver)
	assert.Equal(t, "connector.db", cfg.Store.Path)
	assert.Equal(t, "connector:", cfg.Store.Prefix)

	assert.Equal(t, "chain_connector", cfg.Database.DBName)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())

	assert.Equal(t, "simulated", cfg.Ledger.Provider)
	assert.Equal(t, "keccak", cfg.Ledger.Strategy)
	assert.Nil(t, cfg.Ledger.DemoAccountIndex())
	assert.True(t, cfg.Ledger.AutoMine)

	assert.Equal(t, 10*time.Minute, cfg.Channel.DisputeWindow)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "info", cfg.Log.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoad_FromYAMLFile(t *testing.T) {
	content := []byte(`
server:
  host: "0.0.0.0"
  port: 9090
  mode: "debug"
  rate_limit:
    enabled: true
    limit: 30
    window: "30s"
store:
  driver: "redis"
  prefix: "alice:"
redis:
  host: "redis.example.com"
  port: 6380
  db: 2
ledger:
  strategy: "blake2b"
  seed: "0x00112233"
  genesis_balance: 5000
  auto_mine: false
channel:
  dispute_window: "2m"
log:
  level: "debug"
  pretty: true
`)
	cfgPath := filepath.Join(t.TempDir(), "connector.yaml")
	require.NoError(t, os.WriteFile(cfgPath, content, 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, int64(30), cfg.Server.RateLimit.Limit)
	assert.Equal(t, 30*time.Second, cfg.Server.RateLimit.Window)

	assert.Equal(t, StoreRedis, cfg.Store.Driver)
	assert.Equal(t, "alice:", cfg.Store.Prefix)
	assert.Equal(t, "redis.example.com:6380", cfg.Redis.Addr())
	assert.Equal(t, 2, cfg.Redis.DB)

	assert.Equal(t, "blake2b", cfg.Ledger.Strategy)
	assert.Equal(t, uint64(5000), cfg.Ledger.GenesisBalance)
	assert.False(t, cfg.Ledger.AutoMine)
	seed, err := cfg.Ledger.SeedBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x11, 0x22, 0x33}, seed)

	assert.Equal(t, 2*time.Minute, cfg.Channel.DisputeWindow)
	assert.True(t, cfg.Log.Pretty)

	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CCN_SERVER_PORT", "3000")
	t.Setenv("CCN_STORE_DRIVER", "postgres")
	t.Setenv("CCN_LEDGER_DEMO_ACCOUNT", "2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	require.NotNil(t, cfg.Ledger.DemoAccountIndex())
	assert.Equal(t, 2, *cfg.Ledger.DemoAccountIndex())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// ==================== Validate Tests ====================

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "leveldb" }, "unknown store driver"},
		{"bolt without path", func(c *Config) { c.Store.Path = "" }, "store.path"},
		{"unknown strategy", func(c *Config) { c.Ledger.Strategy = "sha1" }, "unknown crypto strategy"},
		{"seed and demo account", func(c *Config) {
			c.Ledger.Seed = "aa"
			c.Ledger.DemoAccount = 0
		}, "mutually exclusive"},
		{"bad seed hex", func(c *Config) { c.Ledger.Seed = "zz" }, "decoding ledger seed"},
		{"zero dispute window", func(c *Config) { c.Channel.DisputeWindow = 0 }, "dispute_window"},
		{"rate limit without limit", func(c *Config) {
			c.Server.RateLimit.Enabled = true
			c.Server.RateLimit.Limit = 0
		}, "rate_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	dbCfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "connector",
		Password: "pw",
		DBName:   "chain_connector",
		SSLMode:  "disable",
	}

	assert.Equal(t, "postgres://connector:pw@localhost:5432/chain_connector?sslmode=disable", dbCfg.DSN())
}

func TestLedgerConfig_EmptySeed(t *testing.T) {
	seed, err := LedgerConfig{}.SeedBytes()
	require.NoError(t, err)
	assert.Nil(t, seed)
}
