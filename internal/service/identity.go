package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"chain-connector/internal/core/domain"
	"chain-connector/internal/core/ports"
	"chain-connector/pkg/apperror"

	"golang.org/x/crypto/hkdf"
)

// HKDF parameters for identity derivation. Changing them changes every
// seed-derived account id.
const (
	identitySalt     = "chain-connector identity v1"
	nodeKeyInfo      = "node key"
	onChainKeyInfo   = "on-chain key"
	randomSeedLength = 32
)

// KeyPair is an ed25519 key pair.
type KeyPair struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
}

// Identity is the connector's key material. The node key identifies the
// relay in the mixnet; the on-chain key owns AccountID.
type Identity struct {
	KeyPair
	OnChainKeyPair KeyPair
	AccountID      domain.AccountID
}

// DeriveIdentity deterministically derives both key pairs from seed.
func DeriveIdentity(ctx context.Context, crypto ports.CryptoStrategy, seed []byte) (*Identity, error) {
	if len(seed) == 0 {
		return nil, apperror.ErrInvalidArgument("seed must not be empty")
	}

	node, err := deriveKeyPair(seed, nodeKeyInfo)
	if err != nil {
		return nil, err
	}
	onChain, err := deriveKeyPair(seed, onChainKeyInfo)
	if err != nil {
		return nil, err
	}

	account, err := crypto.PubKeyToAccountID(ctx, onChain.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("deriving account id: %w", err)
	}

	return &Identity{
		KeyPair:        node,
		OnChainKeyPair: onChain,
		AccountID:      account,
	}, nil
}

// NewRandomIdentity derives an identity from a fresh random seed.
func NewRandomIdentity(ctx context.Context, crypto ports.CryptoStrategy) (*Identity, error) {
	seed := make([]byte, randomSeedLength)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, fmt.Errorf("generating seed: %w", err)
	}
	return DeriveIdentity(ctx, crypto, seed)
}

// DemoSeed returns the seed of the pre-funded demo account with the given index.
func DemoSeed(index int) []byte {
	return []byte(fmt.Sprintf("chain-connector demo account %d", index))
}

func deriveKeyPair(seed []byte, info string) (KeyPair, error) {
	r := hkdf.New(sha256.New, seed, []byte(identitySalt), []byte(info))
	keySeed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(r, keySeed); err != nil {
		return KeyPair{}, fmt.Errorf("deriving %s: %w", info, err)
	}
	priv := ed25519.NewKeyFromSeed(keySeed)
	return KeyPair{
		PrivateKey: priv,
		PublicKey:  priv.Public().(ed25519.PublicKey),
	}, nil
}

// SignOnChain signs msg with the on-chain key.
func (id *Identity) SignOnChain(ctx context.Context, crypto ports.CryptoStrategy, msg []byte) (domain.Signature, error) {
	return crypto.Sign(ctx, msg, id.OnChainKeyPair.PrivateKey, id.OnChainKeyPair.PublicKey)
}

// Record returns the public, persistable part of the identity.
func (id *Identity) Record(strategy string) domain.IdentityRecord {
	return domain.IdentityRecord{
		PublicKey:        append([]byte(nil), id.PublicKey...),
		OnChainPublicKey: append([]byte(nil), id.OnChainKeyPair.PublicKey...),
		Strategy:         strategy,
	}
}
