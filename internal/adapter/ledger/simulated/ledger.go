// Package simulated provides an in-process ledger for development and tests.
// It enforces nonce ordering and signatures like a real chain and mines
// transactions on demand or immediately.
package simulated

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"chain-connector/internal/core/domain"
	"chain-connector/internal/core/ports"
	"chain-connector/pkg/logger"

	"github.com/rs/zerolog"
)

var errNotConnected = errors.New("ledger not connected")

// Config configures a simulated Ledger.
type Config struct {
	// AutoMine confirms every transaction as soon as it is accepted.
	AutoMine bool
	// Genesis pre-funds accounts.
	Genesis map[domain.AccountID]domain.Balance
}

type txRecord struct {
	tx        domain.Transaction
	confirmed bool
	failed    string
}

type deposits struct {
	accountA domain.AccountID
	accountB domain.AccountID
	partyA   domain.Balance
	partyB   domain.Balance
	closed   bool
	// version of the settled state.
	version uint64
}

// Ledger is a single-node in-memory chain. It is safe for concurrent use.
type Ledger struct {
	crypto   ports.CryptoStrategy
	autoMine bool
	log      zerolog.Logger

	mu        sync.Mutex
	connected bool
	balances  map[domain.AccountID]domain.Balance
	pubKeys   map[domain.AccountID][]byte
	pending   map[domain.AccountID]uint64
	confirmed map[domain.AccountID]uint64
	mempool   []domain.Hash
	txs       map[domain.Hash]*txRecord
	channels  map[domain.Hash]*deposits
}

// New creates a simulated ledger using crypto as its native scheme.
func New(crypto ports.CryptoStrategy, cfg Config, log zerolog.Logger) *Ledger {
	l := &Ledger{
		crypto:    crypto,
		autoMine:  cfg.AutoMine,
		log:       logger.Component(log, "simulated-ledger"),
		balances:  make(map[domain.AccountID]domain.Balance),
		pubKeys:   make(map[domain.AccountID][]byte),
		pending:   make(map[domain.AccountID]uint64),
		confirmed: make(map[domain.AccountID]uint64),
		txs:       make(map[domain.Hash]*txRecord),
		channels:  make(map[domain.Hash]*deposits),
	}
	for acc, bal := range cfg.Genesis {
		l.balances[acc] = bal
	}
	return l
}

// Connect marks the ledger reachable.
func (l *Ledger) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connected = true
	return nil
}

// Close marks the ledger unreachable.
func (l *Ledger) Close(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connected = false
	return nil
}

// Crypto returns the ledger's crypto strategy.
func (l *Ledger) Crypto() ports.CryptoStrategy {
	return l.crypto
}

// Fund credits amount to account outside of any transaction.
func (l *Ledger) Fund(account domain.AccountID, amount domain.Balance) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, err := l.balances[account].Add(amount)
	if err != nil {
		return err
	}
	l.balances[account] = next
	return nil
}

// Ping reports whether the ledger is connected.
func (l *Ledger) Ping(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready(ctx)
}

// Name returns the dependency name.
func (l *Ledger) Name() string {
	return "ledger"
}

func (l *Ledger) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !l.connected {
		return errNotConnected
	}
	return nil
}

func (l *Ledger) Balance(ctx context.Context, account domain.AccountID) (domain.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ready(ctx); err != nil {
		return domain.Balance{}, err
	}
	return l.balances[account], nil
}

func (l *Ledger) PendingNonce(ctx context.Context, account domain.AccountID) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ready(ctx); err != nil {
		return 0, err
	}
	return l.pending[account], nil
}

func (l *Ledger) ConfirmedNonce(ctx context.Context, account domain.AccountID) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ready(ctx); err != nil {
		return 0, err
	}
	return l.confirmed[account], nil
}

func (l *Ledger) PublicKey(ctx context.Context, account domain.AccountID) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ready(ctx); err != nil {
		return nil, err
	}
	pub, ok := l.pubKeys[account]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), pub...), nil
}

func (l *Ledger) Deposits(ctx context.Context, channelID domain.Hash) (domain.Balance, domain.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ready(ctx); err != nil {
		return domain.Balance{}, domain.Balance{}, err
	}
	d, ok := l.channels[channelID]
	if !ok {
		return domain.Balance{}, domain.Balance{}, nil
	}
	return d.partyA, d.partyB, nil
}

// TxStatus reports whether txHash was mined and, if so, its revert reason.
func (l *Ledger) TxStatus(ctx context.Context, txHash domain.Hash) (domain.TxStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ready(ctx); err != nil {
		return domain.TxStatus{}, err
	}
	rec, ok := l.txs[txHash]
	if !ok {
		return domain.TxStatus{}, fmt.Errorf("unknown transaction %s", txHash)
	}
	return domain.TxStatus{Confirmed: rec.confirmed, RevertReason: rec.failed}, nil
}

// SendTransaction validates tx and adds it to the mempool. Rejected
// transactions wrap ports.ErrNotBroadcast.
func (l *Ledger) SendTransaction(ctx context.Context, tx domain.Transaction) (domain.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ready(ctx); err != nil {
		return domain.Hash{}, fmt.Errorf("%w: %w", ports.ErrNotBroadcast, err)
	}
	if err := l.validate(ctx, tx); err != nil {
		return domain.Hash{}, fmt.Errorf("%w: %w", ports.ErrNotBroadcast, err)
	}

	raw, err := domain.Marshal(tx)
	if err != nil {
		return domain.Hash{}, fmt.Errorf("%w: %w", ports.ErrNotBroadcast, err)
	}
	txHash, err := l.crypto.Hash(ctx, raw)
	if err != nil {
		return domain.Hash{}, fmt.Errorf("%w: %w", ports.ErrNotBroadcast, err)
	}

	l.pending[tx.From] = tx.Nonce + 1
	l.txs[txHash] = &txRecord{tx: tx}
	l.mempool = append(l.mempool, txHash)

	l.log.Debug().
		Str("tx", txHash.String()).
		Str("kind", tx.Kind.String()).
		Str("from", tx.From.String()).
		Uint64("nonce", tx.Nonce).
		Msg("transaction accepted")

	if l.autoMine {
		l.mine()
	}
	return txHash, nil
}

// validate must be called with l.mu held.
func (l *Ledger) validate(ctx context.Context, tx domain.Transaction) error {
	if want := l.pending[tx.From]; tx.Nonce != want {
		return fmt.Errorf("invalid nonce %d for %s, expected %d", tx.Nonce, tx.From, want)
	}

	pub, ok := l.pubKeys[tx.From]
	if tx.Kind == domain.TxKindInitAccount {
		var p domain.InitAccountPayload
		if err := domain.Unmarshal(tx.Payload, &p); err != nil {
			return fmt.Errorf("decoding payload: %w", err)
		}
		owner, err := l.crypto.PubKeyToAccountID(ctx, p.PublicKey)
		if err != nil {
			return err
		}
		if owner != tx.From {
			return fmt.Errorf("public key does not belong to %s", tx.From)
		}
		pub, ok = p.PublicKey, true
	}
	if !ok {
		return fmt.Errorf("account %s has no published public key", tx.From)
	}

	msg, err := tx.SigningBytes()
	if err != nil {
		return err
	}
	valid, err := l.crypto.Verify(ctx, msg, tx.Signature, pub)
	if err != nil {
		return err
	}
	if !valid {
		return errors.New("invalid transaction signature")
	}
	return nil
}

// Mine confirms every pending transaction and returns how many were mined.
func (l *Ledger) Mine() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mine()
}

func (l *Ledger) mine() int {
	n := len(l.mempool)
	for _, h := range l.mempool {
		rec := l.txs[h]
		if err := l.apply(rec.tx); err != nil {
			rec.failed = err.Error()
			l.log.Warn().Err(err).Str("tx", h.String()).Msg("transaction reverted")
		}
		rec.confirmed = true
		l.confirmed[rec.tx.From] = rec.tx.Nonce + 1
	}
	l.mempool = nil
	return n
}

func (l *Ledger) apply(tx domain.Transaction) error {
	switch tx.Kind {
	case domain.TxKindInitAccount:
		if _, exists := l.pubKeys[tx.From]; exists {
			return errors.New("account already initialized")
		}
		var p domain.InitAccountPayload
		if err := domain.Unmarshal(tx.Payload, &p); err != nil {
			return err
		}
		l.pubKeys[tx.From] = p.PublicKey
		return nil

	case domain.TxKindFundChannel:
		var p domain.FundChannelPayload
		if err := domain.Unmarshal(tx.Payload, &p); err != nil {
			return err
		}
		return l.fund(tx.From, tx.ChannelID, p)

	case domain.TxKindSettleChannel, domain.TxKindDisputeChannel:
		var p domain.StatePayload
		if err := domain.Unmarshal(tx.Payload, &p); err != nil {
			return err
		}
		if err := l.verifyState(tx.ChannelID, p); err != nil {
			return err
		}
		if tx.Kind == domain.TxKindDisputeChannel {
			return l.dispute(tx.ChannelID, p)
		}
		return l.settle(tx.ChannelID, p)

	default:
		return fmt.Errorf("unknown transaction kind %d", tx.Kind)
	}
}

func (l *Ledger) fund(from domain.AccountID, channelID domain.Hash, p domain.FundChannelPayload) error {
	if from == p.Counterparty {
		return errors.New("cannot fund a channel with oneself")
	}
	remaining, err := l.balances[from].Sub(p.Amount)
	if err != nil {
		return fmt.Errorf("insufficient balance: %w", err)
	}

	d, ok := l.channels[channelID]
	if !ok {
		d = &deposits{}
		l.channels[channelID] = d
	}
	if d.closed {
		return errors.New("channel already settled")
	}

	side := &d.partyB
	d.accountA, d.accountB = p.Counterparty, from
	if from.Compare(p.Counterparty) < 0 {
		side = &d.partyA
		d.accountA, d.accountB = from, p.Counterparty
	}
	next, err := side.Add(p.Amount)
	if err != nil {
		return err
	}

	*side = next
	l.balances[from] = remaining
	return nil
}

func (l *Ledger) settle(channelID domain.Hash, p domain.StatePayload) error {
	d, ok := l.channels[channelID]
	if !ok {
		return errors.New("unknown channel")
	}
	if d.closed {
		return errors.New("channel already settled")
	}
	total, err := d.partyA.Add(d.partyB)
	if err != nil {
		return err
	}
	claimed, err := p.BalanceA.Add(p.BalanceB)
	if err != nil {
		return err
	}
	if claimed != total {
		return fmt.Errorf("settlement of %s does not match deposits of %s", claimed, total)
	}
	payoutA, err := l.balances[d.accountA].Add(p.BalanceA)
	if err != nil {
		return err
	}
	payoutB, err := l.balances[d.accountB].Add(p.BalanceB)
	if err != nil {
		return err
	}

	l.balances[d.accountA] = payoutA
	l.balances[d.accountB] = payoutB
	d.partyA, d.partyB = p.BalanceA, p.BalanceB
	d.closed = true
	d.version = p.Version
	return nil
}

// dispute settles an open channel. On a settled channel a higher version
// replaces the settled split and the difference moves between the parties.
func (l *Ledger) dispute(channelID domain.Hash, p domain.StatePayload) error {
	d, ok := l.channels[channelID]
	if !ok {
		return errors.New("unknown channel")
	}
	if !d.closed {
		return l.settle(channelID, p)
	}
	if p.Version <= d.version {
		return fmt.Errorf("dispute version %d does not supersede settled version %d", p.Version, d.version)
	}

	total, err := d.partyA.Add(d.partyB)
	if err != nil {
		return err
	}
	claimed, err := p.BalanceA.Add(p.BalanceB)
	if err != nil {
		return err
	}
	if claimed != total {
		return fmt.Errorf("dispute of %s does not match deposits of %s", claimed, total)
	}

	balA, err := l.balances[d.accountA].Sub(d.partyA)
	if err != nil {
		return fmt.Errorf("party A spent its payout: %w", err)
	}
	balB, err := l.balances[d.accountB].Sub(d.partyB)
	if err != nil {
		return fmt.Errorf("party B spent its payout: %w", err)
	}
	if balA, err = balA.Add(p.BalanceA); err != nil {
		return err
	}
	if balB, err = balB.Add(p.BalanceB); err != nil {
		return err
	}

	l.balances[d.accountA] = balA
	l.balances[d.accountB] = balB
	d.partyA, d.partyB = p.BalanceA, p.BalanceB
	d.version = p.Version
	return nil
}

// verifyState checks that both channel parties signed p.
func (l *Ledger) verifyState(channelID domain.Hash, p domain.StatePayload) error {
	d, ok := l.channels[channelID]
	if !ok {
		return errors.New("unknown channel")
	}
	msg := domain.ChannelUpdate{
		ChannelID: channelID,
		Version:   p.Version,
		BalanceA:  p.BalanceA,
		BalanceB:  p.BalanceB,
	}.SigningBytes()

	for _, party := range []struct {
		account domain.AccountID
		sig     domain.Signature
	}{
		{d.accountA, p.SigA},
		{d.accountB, p.SigB},
	} {
		pub, ok := l.pubKeys[party.account]
		if !ok {
			return fmt.Errorf("account %s has no published public key", party.account)
		}
		valid, err := l.crypto.Verify(context.Background(), msg, party.sig, pub)
		if err != nil {
			return err
		}
		if !valid {
			return fmt.Errorf("state version %d is not signed by %s", p.Version, party.account)
		}
	}
	return nil
}

var (
	_ ports.LedgerAdapter = (*Ledger)(nil)
	_ ports.HealthChecker = (*Ledger)(nil)
)
