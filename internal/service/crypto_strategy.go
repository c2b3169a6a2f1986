package service

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"fmt"

	"chain-connector/internal/core/domain"
	"chain-connector/pkg/apperror"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Strategy names accepted by NewCryptoStrategy.
const (
	StrategyKeccak  = "keccak"
	StrategyBlake2b = "blake2b"
)

// Ed25519Strategy implements ports.CryptoStrategy with ed25519 signatures and
// a ledger-specific digest for hashing and account derivation.
type Ed25519Strategy struct {
	name      string
	digest    func(msg []byte) domain.Hash
	accountID func(pubKey []byte) domain.AccountID
}

// NewCryptoStrategy returns the strategy registered under name.
func NewCryptoStrategy(name string) (*Ed25519Strategy, error) {
	switch name {
	case StrategyKeccak, "":
		return NewKeccakStrategy(), nil
	case StrategyBlake2b:
		return NewBlake2bStrategy(), nil
	default:
		return nil, apperror.ErrInvalidArgument(fmt.Sprintf("unknown crypto strategy %q", name))
	}
}

// NewKeccakStrategy hashes with Keccak-256 and derives Ethereum-style
// account ids from the last 20 bytes of Keccak-256(pubKey).
func NewKeccakStrategy() *Ed25519Strategy {
	return &Ed25519Strategy{
		name:   StrategyKeccak,
		digest: keccak256,
		accountID: func(pubKey []byte) domain.AccountID {
			h := keccak256(pubKey)
			var a domain.AccountID
			copy(a[:], h[domain.HashLength-domain.AccountIDLength:])
			return a
		},
	}
}

// NewBlake2bStrategy hashes with BLAKE2b-256 and derives account ids with
// BLAKE2b-160.
func NewBlake2bStrategy() *Ed25519Strategy {
	return &Ed25519Strategy{
		name: StrategyBlake2b,
		digest: func(msg []byte) domain.Hash {
			return blake2b.Sum256(msg)
		},
		accountID: func(pubKey []byte) domain.AccountID {
			// blake2b.New only fails for sizes outside 1..64 or oversized keys.
			h, _ := blake2b.New(domain.AccountIDLength, nil)
			h.Write(pubKey)
			var a domain.AccountID
			copy(a[:], h.Sum(nil))
			return a
		},
	}
}

func keccak256(msg []byte) domain.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write(msg)
	var out domain.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Name returns the strategy name.
func (s *Ed25519Strategy) Name() string {
	return s.name
}

// Hash digests msg with the strategy's native hash function.
func (s *Ed25519Strategy) Hash(ctx context.Context, msg []byte) (domain.Hash, error) {
	if err := ctx.Err(); err != nil {
		return domain.Hash{}, err
	}
	return s.digest(msg), nil
}

// Sign signs msg with privKey. privKey may be a 32-byte seed or a 64-byte
// ed25519 private key; pubKey must belong to it.
func (s *Ed25519Strategy) Sign(ctx context.Context, msg []byte, privKey []byte, pubKey []byte) (domain.Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var priv ed25519.PrivateKey
	switch len(privKey) {
	case ed25519.SeedSize:
		priv = ed25519.NewKeyFromSeed(privKey)
	case ed25519.PrivateKeySize:
		priv = ed25519.PrivateKey(privKey)
	default:
		return nil, apperror.ErrCrypto(fmt.Sprintf("invalid private key size: %d", len(privKey)))
	}
	if len(pubKey) != ed25519.PublicKeySize {
		return nil, apperror.ErrCrypto(fmt.Sprintf("invalid public key size: %d", len(pubKey)))
	}
	if !bytes.Equal(priv.Public().(ed25519.PublicKey), pubKey) {
		return nil, apperror.ErrCrypto("public key does not belong to private key")
	}

	return ed25519.Sign(priv, msg), nil
}

// Verify checks sig over msg. Malformed signatures are reported as invalid,
// not as errors.
func (s *Ed25519Strategy) Verify(ctx context.Context, msg []byte, sig domain.Signature, pubKey []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if len(pubKey) != ed25519.PublicKeySize {
		return false, apperror.ErrCrypto(fmt.Sprintf("invalid public key size: %d", len(pubKey)))
	}
	if len(sig) != ed25519.SignatureSize {
		return false, nil
	}
	return ed25519.Verify(pubKey, msg, sig), nil
}

// PubKeyToAccountID derives the on-chain account id of pubKey.
func (s *Ed25519Strategy) PubKeyToAccountID(ctx context.Context, pubKey []byte) (domain.AccountID, error) {
	if err := ctx.Err(); err != nil {
		return domain.AccountID{}, err
	}
	if len(pubKey) != ed25519.PublicKeySize {
		return domain.AccountID{}, apperror.ErrCrypto(fmt.Sprintf("invalid public key size: %d", len(pubKey)))
	}
	return s.accountID(pubKey), nil
}
