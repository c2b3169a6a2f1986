package service

import (
	"context"
	"encoding/binary"
	"fmt"

	"chain-connector/internal/core/domain"
	"chain-connector/internal/core/ports"
	"chain-connector/pkg/apperror"
)

// ChannelResolver assigns channel roles and derives channel ids. The same
// byte-lexicographic order is used everywhere so both parties agree.
type ChannelResolver struct {
	crypto ports.CryptoStrategy
}

// NewChannelResolver creates a ChannelResolver hashing with crypto.
func NewChannelResolver(crypto ports.CryptoStrategy) *ChannelResolver {
	return &ChannelResolver{crypto: crypto}
}

// IsPartyA reports whether self sorts before counterparty.
func IsPartyA(self, counterparty domain.AccountID) (bool, error) {
	switch self.Compare(counterparty) {
	case -1:
		return true, nil
	case 1:
		return false, nil
	default:
		return false, apperror.ErrInvalidArgument("cannot open a channel with oneself")
	}
}

// Parties returns the (partyA, partyB) ordering of the two accounts.
func Parties(self, counterparty domain.AccountID) (domain.AccountID, domain.AccountID, error) {
	selfIsA, err := IsPartyA(self, counterparty)
	if err != nil {
		return domain.AccountID{}, domain.AccountID{}, err
	}
	if selfIsA {
		return self, counterparty, nil
	}
	return counterparty, self, nil
}

// IsPartyA reports whether self sorts before counterparty.
func (r *ChannelResolver) IsPartyA(self, counterparty domain.AccountID) (bool, error) {
	return IsPartyA(self, counterparty)
}

// GetID derives the channel id as
// Hash(partyA ‖ partyB ‖ u64be(aux[0]) ‖ u64be(aux[1]) ...).
// Auxiliary parameters are fixed-width so the encoding is unambiguous; the
// first one is the channel epoch.
func (r *ChannelResolver) GetID(ctx context.Context, self, counterparty domain.AccountID, aux ...uint64) (domain.Hash, error) {
	partyA, partyB, err := Parties(self, counterparty)
	if err != nil {
		return domain.Hash{}, err
	}

	msg := make([]byte, 0, 2*domain.AccountIDLength+8*len(aux))
	msg = append(msg, partyA[:]...)
	msg = append(msg, partyB[:]...)
	for _, p := range aux {
		msg = binary.BigEndian.AppendUint64(msg, p)
	}

	id, err := r.crypto.Hash(ctx, msg)
	if err != nil {
		return domain.Hash{}, fmt.Errorf("hashing channel id: %w", err)
	}
	return id, nil
}
