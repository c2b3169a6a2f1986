package service

import (
	"context"
	"errors"
	"sync"

	"chain-connector/internal/core/domain"
	"chain-connector/internal/core/ports"
	"chain-connector/pkg/apperror"
	"chain-connector/pkg/metrics"

	"github.com/rs/zerolog"
)

// NonceAllocator hands out on-chain transaction nonces. Calls for the same
// account are serialized; different accounts never contend.
type NonceAllocator struct {
	ledger  ports.LedgerAdapter
	metrics *metrics.Metrics
	log     zerolog.Logger

	mu       sync.Mutex
	accounts map[domain.AccountID]*accountNonce
}

type accountNonce struct {
	mu     sync.Mutex
	seeded bool
	// cursor is the next nonce to issue.
	cursor uint64
	// confirmed is the number of confirmed transactions; every nonce below it is spent.
	confirmed uint64
}

// NewNonceAllocator creates a NonceAllocator seeded lazily from ledger.
func NewNonceAllocator(ledger ports.LedgerAdapter, m *metrics.Metrics, log zerolog.Logger) *NonceAllocator {
	return &NonceAllocator{
		ledger:   ledger,
		metrics:  m,
		log:      log,
		accounts: make(map[domain.AccountID]*accountNonce),
	}
}

func (a *NonceAllocator) entry(account domain.AccountID) *accountNonce {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.accounts[account]
	if !ok {
		e = &accountNonce{}
		a.accounts[account] = e
	}
	return e
}

// Next returns the nonce for the next transaction of account. An explicit
// nonce is returned as-is and only moves the cursor forward.
func (a *NonceAllocator) Next(ctx context.Context, account domain.AccountID, explicit *uint64) (uint64, error) {
	e := a.entry(account)
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.seeded {
		if err := a.sync(ctx, account, e, domain.NonceRecord{}); err != nil {
			return 0, err
		}
	}

	if explicit != nil {
		n := *explicit
		if n < e.confirmed {
			return 0, apperror.ErrNonceExhausted(n, e.confirmed)
		}
		if n >= e.cursor {
			e.cursor = n + 1
		}
		a.metrics.NonceIssued()
		return n, nil
	}

	n := e.cursor
	e.cursor++
	a.metrics.NonceIssued()
	return n, nil
}

// Resync reloads the cursor of account from the ledger. persisted is the
// last flushed record; it can only raise the confirmed floor.
func (a *NonceAllocator) Resync(ctx context.Context, account domain.AccountID, persisted domain.NonceRecord) error {
	e := a.entry(account)
	e.mu.Lock()
	defer e.mu.Unlock()

	return a.sync(ctx, account, e, persisted)
}

// sync must be called with e.mu held. e is left untouched on failure.
func (a *NonceAllocator) sync(ctx context.Context, account domain.AccountID, e *accountNonce, persisted domain.NonceRecord) error {
	pending, err := a.ledger.PendingNonce(ctx, account)
	if err != nil {
		return apperror.ErrLedger("fetching pending nonce", err)
	}
	confirmed, err := a.ledger.ConfirmedNonce(ctx, account)
	if err != nil {
		return apperror.ErrLedger("fetching confirmed nonce", err)
	}

	if persisted.Cursor > pending {
		a.log.Warn().
			Str("account", account.String()).
			Uint64("persisted", persisted.Cursor).
			Uint64("ledger", pending).
			Msg("persisted nonce cursor ahead of ledger, unbroadcast transactions were dropped")
	}

	confirmed = max(confirmed, persisted.Confirmed, e.confirmed)
	e.cursor = max(pending, confirmed)
	e.confirmed = confirmed
	e.seeded = true
	a.metrics.NonceResynced()

	a.log.Debug().
		Str("account", account.String()).
		Uint64("cursor", e.cursor).
		Uint64("confirmed", e.confirmed).
		Msg("nonce cursor synchronized")
	return nil
}

// Confirm records that the transaction with nonce was confirmed on-chain.
func (a *NonceAllocator) Confirm(account domain.AccountID, nonce uint64) {
	e := a.entry(account)
	e.mu.Lock()
	defer e.mu.Unlock()

	if nonce+1 > e.confirmed {
		e.confirmed = nonce + 1
	}
	if e.cursor < e.confirmed {
		e.cursor = e.confirmed
	}
}

// Release returns nonce to the pool when cause shows the transaction never
// left the process and no later nonce was issued. nonce must have been chosen
// by Next, not passed in explicitly. It reports whether the nonce was
// released. Any other failure, including cancellation, keeps the nonce
// consumed.
func (a *NonceAllocator) Release(account domain.AccountID, nonce uint64, cause error) bool {
	if !errors.Is(cause, ports.ErrNotBroadcast) {
		return false
	}

	e := a.entry(account)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cursor != nonce+1 || nonce < e.confirmed {
		return false
	}
	e.cursor = nonce
	return true
}

// Snapshot returns the durable form of account's cursor.
func (a *NonceAllocator) Snapshot(account domain.AccountID) (domain.NonceRecord, bool) {
	a.mu.Lock()
	e, ok := a.accounts[account]
	a.mu.Unlock()
	if !ok {
		return domain.NonceRecord{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.seeded {
		return domain.NonceRecord{}, false
	}
	return domain.NonceRecord{Cursor: e.cursor, Confirmed: e.confirmed}, true
}
