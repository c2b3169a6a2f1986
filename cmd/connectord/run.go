package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"chain-connector/config"
	httpHandler "chain-connector/internal/adapter/http/handler"
	"chain-connector/internal/adapter/http/middleware"
	"chain-connector/internal/adapter/ledger/simulated"
	redisStorage "chain-connector/internal/adapter/storage/redis"
	"chain-connector/internal/core/domain"
	"chain-connector/internal/core/ports"
	"chain-connector/internal/service"
	"chain-connector/pkg/apperror"
	"chain-connector/pkg/logger"
	"chain-connector/pkg/metrics"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newRunCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the connector and its status API",
		Example: `  # Run against the simulated ledger with a bolt store
  connectord run --config connector.yaml

  # Use demo account 1 and an in-memory store
  CCN_LEDGER_DEMO_ACCOUNT=1 CCN_STORE_DRIVER=memory connectord run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLedger builds the ledger adapter for the configured provider. Only the
// in-process simulated ledger ships with the daemon.
func newLedger(cfg config.LedgerConfig, crypto ports.CryptoStrategy, log zerolog.Logger) (*simulated.Ledger, error) {
	if cfg.Provider != "simulated" {
		return nil, fmt.Errorf("unsupported ledger provider %q", cfg.Provider)
	}
	return simulated.New(crypto, simulated.Config{AutoMine: cfg.AutoMine}, log), nil
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("store", cfg.Store.Driver).
		Str("provider", cfg.Ledger.Provider).
		Str("strategy", cfg.Ledger.Strategy).
		Msg("Starting chain connector")

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer b.close()

	crypto, err := service.NewCryptoStrategy(cfg.Ledger.Strategy)
	if err != nil {
		return err
	}
	ledger, err := newLedger(cfg.Ledger, crypto, log)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	seed, err := cfg.Ledger.SeedBytes()
	if err != nil {
		return err
	}
	conn, err := service.Create(ctx, b.store, ledger, seed, service.Options{
		Provider:      cfg.Ledger.Provider,
		DemoAccount:   cfg.Ledger.DemoAccountIndex(),
		DisputeWindow: cfg.Channel.DisputeWindow,
		Metrics:       m,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	if cfg.Ledger.GenesisBalance > 0 {
		if err := ledger.Fund(conn.AccountID(), domain.BalanceFromUint64(cfg.Ledger.GenesisBalance)); err != nil {
			return err
		}
	}

	if err := conn.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := conn.Stop(stopCtx); err != nil {
			log.Error().Err(err).Msg("Connector stop failed")
		}
	}()

	txHash, err := conn.InitOnchainValues(ctx, nil)
	switch {
	case apperror.HasCode(err, apperror.CodeAlreadyInitialized):
		log.Debug().Msg("On-chain public key already published")
	case err != nil:
		return err
	default:
		log.Info().Str("tx", txHash.String()).Msg("Published on-chain public key")
	}

	deps := httpHandler.RouterDeps{
		Connector:      conn,
		HealthCheckers: append(b.health, ledger, conn),
		Mode:           cfg.Server.Mode,
		Logger:         log,
	}
	if m != nil {
		deps.Metrics = m.Handler()
		deps.MetricsPath = cfg.Metrics.Path
	}
	if cfg.Server.RateLimit.Enabled {
		deps.RateLimiter = redisStorage.NewRateLimitStore(b.redis)
		deps.RateLimit = middleware.RateLimitRule{
			Limit:  cfg.Server.RateLimit.Limit,
			Window: cfg.Server.RateLimit.Window,
		}
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           httpHandler.SetupRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("account", conn.AccountID().String()).Msg("Status API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down...")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("status API: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Connector exited")
	return nil
}
