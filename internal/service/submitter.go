package service

import (
	"context"
	"fmt"

	"chain-connector/internal/core/domain"
	"chain-connector/internal/core/ports"
	"chain-connector/pkg/apperror"
	"chain-connector/pkg/metrics"

	"github.com/rs/zerolog"
)

// txSubmitter signs and broadcasts transactions from the connector account.
type txSubmitter struct {
	identity *Identity
	crypto   ports.CryptoStrategy
	ledger   ports.LedgerAdapter
	nonces   *NonceAllocator
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// submit allocates a nonce, signs and sends a transaction of the given kind.
// If the ledger reports the transaction was never broadcast, an allocated
// nonce is handed back to the allocator.
func (s *txSubmitter) submit(
	ctx context.Context,
	kind domain.TxKind,
	channelID domain.Hash,
	payload any,
	explicitNonce *uint64,
) (domain.Hash, uint64, error) {
	body, err := domain.Marshal(payload)
	if err != nil {
		return domain.Hash{}, 0, apperror.InternalError(fmt.Errorf("encoding %s payload: %w", kind, err))
	}

	account := s.identity.AccountID
	nonce, err := s.nonces.Next(ctx, account, explicitNonce)
	if err != nil {
		return domain.Hash{}, 0, err
	}

	tx := domain.Transaction{
		Kind:      kind,
		From:      account,
		Nonce:     nonce,
		ChannelID: channelID,
		Payload:   body,
	}

	txHash, err := s.signAndSend(ctx, tx)
	s.metrics.LedgerTx(kind.String(), err)
	if err != nil {
		released := false
		if explicitNonce == nil {
			released = s.nonces.Release(account, nonce, err)
		}
		s.log.Warn().Err(err).
			Str("kind", kind.String()).
			Uint64("nonce", nonce).
			Bool("nonce_released", released).
			Msg("transaction submission failed")
		return domain.Hash{}, 0, err
	}

	s.log.Info().
		Str("kind", kind.String()).
		Uint64("nonce", nonce).
		Str("tx", txHash.String()).
		Msg("transaction submitted")
	return txHash, nonce, nil
}

func (s *txSubmitter) signAndSend(ctx context.Context, tx domain.Transaction) (domain.Hash, error) {
	msg, err := tx.SigningBytes()
	if err != nil {
		return domain.Hash{}, fmt.Errorf("encoding transaction: %w: %w", ports.ErrNotBroadcast, err)
	}
	sig, err := s.identity.SignOnChain(ctx, s.crypto, msg)
	if err != nil {
		return domain.Hash{}, fmt.Errorf("signing transaction: %w: %w", ports.ErrNotBroadcast, err)
	}
	tx.Signature = sig

	txHash, err := s.ledger.SendTransaction(ctx, tx)
	if err != nil {
		return domain.Hash{}, apperror.ErrLedger(fmt.Sprintf("sending %s transaction", tx.Kind), err)
	}
	return txHash, nil
}
