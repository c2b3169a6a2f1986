package ports

import (
	"context"
	"errors"

	"chain-connector/internal/core/domain"
)

// CryptoStrategy is the ledger-native hash and signature scheme. All methods
// are pure functions of their inputs; the context exists for strategies that
// delegate to an external signer.
type CryptoStrategy interface {
	// Name identifies the strategy (e.g., "keccak").
	Name() string
	Hash(ctx context.Context, msg []byte) (domain.Hash, error)
	Sign(ctx context.Context, msg []byte, privKey []byte, pubKey []byte) (domain.Signature, error)
	// Verify returns false, nil for a malformed or non-matching signature.
	Verify(ctx context.Context, msg []byte, sig domain.Signature, pubKey []byte) (bool, error)
	PubKeyToAccountID(ctx context.Context, pubKey []byte) (domain.AccountID, error)
}

// ErrNotBroadcast is returned (wrapped) by LedgerAdapter.SendTransaction when
// the ledger rejected a transaction before it was broadcast. Any other error
// means the transaction may have reached the network.
var ErrNotBroadcast = errors.New("transaction was not broadcast")

// LedgerAdapter is the connector's view of the underlying chain.
type LedgerAdapter interface {
	// Connect establishes connectivity with the ledger.
	Connect(ctx context.Context) error
	// Close releases the ledger connection.
	Close(ctx context.Context) error
	// Crypto returns the ledger's native crypto strategy.
	Crypto() CryptoStrategy

	// Balance returns the ledger-held balance of account.
	Balance(ctx context.Context, account domain.AccountID) (domain.Balance, error)
	// PendingNonce returns the next nonce for account, counting pending transactions.
	PendingNonce(ctx context.Context, account domain.AccountID) (uint64, error)
	// ConfirmedNonce returns the number of confirmed transactions sent by account.
	ConfirmedNonce(ctx context.Context, account domain.AccountID) (uint64, error)

	// SendTransaction broadcasts a signed transaction and returns its hash.
	SendTransaction(ctx context.Context, tx domain.Transaction) (domain.Hash, error)
	// TxStatus reports whether the transaction with the given hash is final
	// and, if so, whether it reverted.
	TxStatus(ctx context.Context, txHash domain.Hash) (domain.TxStatus, error)

	// PublicKey returns the public key account published on-chain, or nil if none.
	PublicKey(ctx context.Context, account domain.AccountID) ([]byte, error)
	// Deposits returns the funding each party has deposited into a channel.
	Deposits(ctx context.Context, channelID domain.Hash) (partyA domain.Balance, partyB domain.Balance, err error)
}

// ConnectorStatus is the read-only view of a running connector served by the
// status API.
type ConnectorStatus interface {
	AccountID() domain.AccountID
	// Provider returns the configured ledger provider.
	Provider() string
	// Strategy returns the crypto strategy name.
	Strategy() string
	AccountBalance(ctx context.Context) (domain.Balance, error)
	// Channels returns snapshots of all loaded channels.
	Channels() []*domain.Channel
	// ChannelStatus returns the channel with counterparty for epoch, or a
	// not-found error.
	ChannelStatus(ctx context.Context, counterparty domain.AccountID, epoch uint64) (*domain.Channel, error)
}
