package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chain-connector/internal/core/domain"
	"chain-connector/internal/core/ports"
	"chain-connector/pkg/apperror"
	"chain-connector/pkg/logger"
	"chain-connector/pkg/metrics"

	"github.com/rs/zerolog"
)

// DefaultDisputeWindow is how long a settlement stays open to counter-claims.
const DefaultDisputeWindow = 10 * time.Minute

// ConnectorState is the lifecycle state of a Connector.
type ConnectorState uint8

const (
	ConnectorUninitialized ConnectorState = iota
	ConnectorStarted
	ConnectorStopped
)

func (s ConnectorState) String() string {
	switch s {
	case ConnectorUninitialized:
		return "UNINITIALIZED"
	case ConnectorStarted:
		return "STARTED"
	case ConnectorStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Options configure a Connector.
type Options struct {
	// Provider names the ledger endpoint. It is only reported, the adapter
	// owns the connection.
	Provider string
	// DemoAccount selects a well-known demo identity when no seed is given.
	DemoAccount *int
	// DisputeWindow defaults to DefaultDisputeWindow.
	DisputeWindow time.Duration
	// Clock defaults to time.Now.
	Clock   func() time.Time
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// Connector binds an account identity to a ledger and a store and owns the
// account's channels.
type Connector struct {
	store     ports.Store
	ledger    ports.LedgerAdapter
	crypto    ports.CryptoStrategy
	identity  *Identity
	resolver  *ChannelResolver
	nonces    *NonceAllocator
	submitter *txSubmitter
	channels  *ChannelRegistry
	env       *channelEnv
	provider  string
	log       zerolog.Logger

	mu    sync.Mutex
	state ConnectorState

	// initMu serializes InitOnchainValues; initTx is the last init broadcast.
	initMu sync.Mutex
	initTx *domain.Hash
}

// Create builds a connector. The identity is derived from seed when given,
// from the demo account when selected, and generated otherwise. The ledger
// is not contacted.
func Create(ctx context.Context, store ports.Store, ledger ports.LedgerAdapter, seed []byte, opts Options) (*Connector, error) {
	if store == nil || ledger == nil {
		return nil, apperror.ErrInvalidArgument("store and ledger are required")
	}
	if len(seed) > 0 && opts.DemoAccount != nil {
		return nil, apperror.ErrInvalidArgument("seed and demo account are mutually exclusive")
	}

	crypto := ledger.Crypto()

	var (
		identity *Identity
		err      error
	)
	switch {
	case len(seed) > 0:
		identity, err = DeriveIdentity(ctx, crypto, seed)
	case opts.DemoAccount != nil:
		if *opts.DemoAccount < 0 {
			return nil, apperror.ErrInvalidArgument("demo account index must not be negative")
		}
		identity, err = DeriveIdentity(ctx, crypto, DemoSeed(*opts.DemoAccount))
	default:
		identity, err = NewRandomIdentity(ctx, crypto)
	}
	if err != nil {
		return nil, fmt.Errorf("creating identity: %w", err)
	}

	if opts.DisputeWindow <= 0 {
		opts.DisputeWindow = DefaultDisputeWindow
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	log := logger.Component(opts.Logger, "connector").With().
		Str("account", identity.AccountID.String()).
		Logger()

	nonces := NewNonceAllocator(ledger, opts.Metrics, log)
	resolver := NewChannelResolver(crypto)
	submitter := &txSubmitter{
		identity: identity,
		crypto:   crypto,
		ledger:   ledger,
		nonces:   nonces,
		metrics:  opts.Metrics,
		log:      log,
	}
	env := &channelEnv{
		self:          identity.AccountID,
		identity:      identity,
		crypto:        crypto,
		ledger:        ledger,
		store:         store,
		submitter:     submitter,
		nonces:        nonces,
		metrics:       opts.Metrics,
		disputeWindow: opts.DisputeWindow,
		now:           opts.Clock,
		log:           log,
	}

	return &Connector{
		store:     store,
		ledger:    ledger,
		crypto:    crypto,
		identity:  identity,
		resolver:  resolver,
		nonces:    nonces,
		submitter: submitter,
		channels:  newChannelRegistry(env, resolver),
		env:       env,
		provider:  opts.Provider,
		log:       log,
		state:     ConnectorUninitialized,
	}, nil
}

// Start connects to the ledger, resynchronizes the nonce cursor and records
// the public identity. On failure the connector stays UNINITIALIZED.
func (c *Connector) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case ConnectorStarted:
		return apperror.ErrConnectorStart("connector already started", nil)
	case ConnectorStopped:
		return apperror.ErrConnectorStart("a stopped connector cannot be restarted", nil)
	}

	if err := c.ledger.Connect(ctx); err != nil {
		return c.abortStart(ctx, "connecting to ledger", err)
	}

	persisted, err := c.loadNonceRecord(ctx)
	if err != nil {
		return c.abortStart(ctx, "loading nonce record", err)
	}
	if err := c.nonces.Resync(ctx, c.identity.AccountID, persisted); err != nil {
		return c.abortStart(ctx, "resynchronizing nonce", err)
	}

	record, err := domain.Marshal(c.identity.Record(c.crypto.Name()))
	if err != nil {
		return c.abortStart(ctx, "encoding identity", err)
	}
	if err := c.store.Put(ctx, domain.IdentityKey(c.identity.AccountID), record); err != nil {
		return c.abortStart(ctx, "persisting identity", err)
	}

	c.state = ConnectorStarted
	c.env.running.Store(true)
	c.log.Info().
		Str("provider", c.provider).
		Str("strategy", c.crypto.Name()).
		Msg("connector started")
	return nil
}

func (c *Connector) abortStart(ctx context.Context, step string, cause error) error {
	if err := c.ledger.Close(ctx); err != nil {
		c.log.Warn().Err(err).Msg("closing ledger after failed start")
	}
	c.log.Error().Err(cause).Str("step", step).Msg("connector start failed")
	return apperror.ErrConnectorStart(step, cause)
}

func (c *Connector) loadNonceRecord(ctx context.Context) (domain.NonceRecord, error) {
	var rec domain.NonceRecord
	data, err := c.store.Get(ctx, domain.NonceKey(c.identity.AccountID))
	if err != nil || data == nil {
		return rec, err
	}
	if err := domain.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decoding nonce record: %w", err)
	}
	return rec, nil
}

// Stop flushes the nonce cursor and releases the ledger. Stopping twice is a
// no-op.
func (c *Connector) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	if prev == ConnectorStopped {
		return nil
	}
	c.state = ConnectorStopped
	c.env.running.Store(false)
	if prev == ConnectorUninitialized {
		return nil
	}

	var errs []error
	if rec, ok := c.nonces.Snapshot(c.identity.AccountID); ok {
		data, err := domain.Marshal(rec)
		if err == nil {
			err = c.store.Put(ctx, domain.NonceKey(c.identity.AccountID), data)
		}
		if err != nil {
			errs = append(errs, apperror.ErrStore(fmt.Errorf("flushing nonce record: %w", err)))
		}
	}
	if err := c.ledger.Close(ctx); err != nil {
		errs = append(errs, apperror.ErrLedger("closing ledger", err))
	}

	c.log.Info().Msg("connector stopped")
	return errors.Join(errs...)
}

// State returns the lifecycle state.
func (c *Connector) State() ConnectorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connector) requireStarted() error {
	if c.State() != ConnectorStarted {
		return apperror.ErrNotStarted()
	}
	return nil
}

// InitOnchainValues publishes the on-chain public key of the account. Once an
// init transaction has been broadcast, later calls return
// AlreadyInitializedError unless that transaction reverted.
func (c *Connector) InitOnchainValues(ctx context.Context, nonce *uint64) (domain.Hash, error) {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if err := c.requireStarted(); err != nil {
		return domain.Hash{}, err
	}

	if c.initTx != nil {
		status, err := c.ledger.TxStatus(ctx, *c.initTx)
		if err != nil {
			return domain.Hash{}, apperror.ErrLedger("checking pending initialization", err)
		}
		if !status.Reverted() {
			return domain.Hash{}, apperror.ErrAlreadyInitialized()
		}
		c.log.Warn().
			Str("tx", c.initTx.String()).
			Str("reason", status.RevertReason).
			Msg("previous initialization reverted")
		c.initTx = nil
	}

	existing, err := c.ledger.PublicKey(ctx, c.identity.AccountID)
	if err != nil {
		return domain.Hash{}, apperror.ErrLedger("fetching on-chain public key", err)
	}
	if existing != nil {
		return domain.Hash{}, apperror.ErrAlreadyInitialized()
	}

	payload := domain.InitAccountPayload{PublicKey: c.identity.OnChainKeyPair.PublicKey}
	txHash, _, err := c.submitter.submit(ctx, domain.TxKindInitAccount, domain.Hash{}, payload, nonce)
	if err != nil {
		return domain.Hash{}, err
	}
	c.initTx = &txHash
	return txHash, nil
}

// AccountBalance returns the ledger-held balance of the account.
func (c *Connector) AccountBalance(ctx context.Context) (domain.Balance, error) {
	if err := c.requireStarted(); err != nil {
		return domain.Balance{}, err
	}
	b, err := c.ledger.Balance(ctx, c.identity.AccountID)
	if err != nil {
		return domain.Balance{}, apperror.ErrLedger("fetching account balance", err)
	}
	return b, nil
}

// NextNonce reserves the next nonce of the account for a caller-built
// transaction.
func (c *Connector) NextNonce(ctx context.Context, explicit *uint64) (uint64, error) {
	if err := c.requireStarted(); err != nil {
		return 0, err
	}
	return c.nonces.Next(ctx, c.identity.AccountID, explicit)
}

// Channel returns the channel with counterparty for the given epoch.
func (c *Connector) Channel(ctx context.Context, counterparty domain.AccountID, epoch uint64) (*PaymentChannel, error) {
	if err := c.requireStarted(); err != nil {
		return nil, err
	}
	return c.channels.Get(ctx, counterparty, epoch)
}

// ChannelStatus returns a snapshot of the channel with counterparty for the
// given epoch, or a not-found error if it has never been used.
func (c *Connector) ChannelStatus(ctx context.Context, counterparty domain.AccountID, epoch uint64) (*domain.Channel, error) {
	if err := c.requireStarted(); err != nil {
		return nil, err
	}
	ch, err := c.channels.Find(ctx, counterparty, epoch)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, apperror.ErrNotFound("channel")
	}
	return ch, nil
}

// Channels returns snapshots of all loaded channels.
func (c *Connector) Channels() []*domain.Channel {
	return c.channels.List()
}

// Identity returns the connector identity.
func (c *Connector) Identity() *Identity {
	return c.identity
}

// AccountID returns the on-chain account of the connector.
func (c *Connector) AccountID() domain.AccountID {
	return c.identity.AccountID
}

// Crypto returns the crypto strategy of the ledger.
func (c *Connector) Crypto() ports.CryptoStrategy {
	return c.crypto
}

// Resolver returns the channel identity resolver.
func (c *Connector) Resolver() *ChannelResolver {
	return c.resolver
}

// Provider returns the configured ledger provider name.
func (c *Connector) Provider() string {
	return c.provider
}

// Strategy returns the crypto strategy name.
func (c *Connector) Strategy() string {
	return c.crypto.Name()
}

// Ping reports whether the connector is started.
func (c *Connector) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.requireStarted()
}

// Name returns the dependency name.
func (c *Connector) Name() string {
	return "connector"
}

var (
	_ ports.ConnectorStatus = (*Connector)(nil)
	_ ports.HealthChecker   = (*Connector)(nil)
)
