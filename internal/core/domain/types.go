package domain

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"chain-connector/pkg/apperror"
)

const (
	// AccountIDLength is the byte length of an on-chain account identifier.
	AccountIDLength = 20
	// HashLength is the byte length of a ledger digest.
	HashLength = 32
)

// AccountID is a ledger-native address derived from a public key.
type AccountID [AccountIDLength]byte

// AccountIDFromBytes copies b into an AccountID.
func AccountIDFromBytes(b []byte) (AccountID, error) {
	var a AccountID
	if len(b) != AccountIDLength {
		return a, apperror.ErrInvalidArgument(fmt.Sprintf("account id must be %d bytes, got %d", AccountIDLength, len(b)))
	}
	copy(a[:], b)
	return a, nil
}

// ParseAccountID parses a hex string, with or without the 0x prefix.
func ParseAccountID(s string) (AccountID, error) {
	b, err := decodeHex(s)
	if err != nil {
		return AccountID{}, apperror.ErrInvalidArgument("account id is not valid hex")
	}
	return AccountIDFromBytes(b)
}

func (a AccountID) Bytes() []byte {
	b := make([]byte, AccountIDLength)
	copy(b, a[:])
	return b
}

// Compare orders account ids byte-lexicographically.
func (a AccountID) Compare(other AccountID) int {
	return bytes.Compare(a[:], other[:])
}

func (a AccountID) Equal(other AccountID) bool {
	return a == other
}

func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

func (a AccountID) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a AccountID) MarshalBinary() ([]byte, error) {
	return a.Bytes(), nil
}

func (a *AccountID) UnmarshalBinary(data []byte) error {
	v, err := AccountIDFromBytes(data)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AccountID) UnmarshalText(text []byte) error {
	v, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Hash is a fixed-length digest produced by a CryptoStrategy.
type Hash [HashLength]byte

// HashFromBytes copies b into a Hash.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashLength {
		return h, apperror.ErrInvalidArgument(fmt.Sprintf("hash must be %d bytes, got %d", HashLength, len(b)))
	}
	copy(h[:], b)
	return h, nil
}

// ParseHash parses a hex string, with or without the 0x prefix.
func ParseHash(s string) (Hash, error) {
	b, err := decodeHex(s)
	if err != nil {
		return Hash{}, apperror.ErrInvalidArgument("hash is not valid hex")
	}
	return HashFromBytes(b)
}

func (h Hash) Bytes() []byte {
	b := make([]byte, HashLength)
	copy(b, h[:])
	return b
}

func (h Hash) Equal(other Hash) bool {
	return h == other
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) MarshalBinary() ([]byte, error) {
	return h.Bytes(), nil
}

func (h *Hash) UnmarshalBinary(data []byte) error {
	v, err := HashFromBytes(data)
	if err != nil {
		return err
	}
	*h = v
	return nil
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	v, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// Signature binds a message to a signer. Its length is strategy specific.
type Signature []byte

func (s Signature) Bytes() []byte {
	return bytes.Clone(s)
}

func (s Signature) Equal(other Signature) bool {
	return bytes.Equal(s, other)
}

func (s Signature) String() string {
	return "0x" + hex.EncodeToString(s)
}

func (s Signature) MarshalBinary() ([]byte, error) {
	return s.Bytes(), nil
}

func (s *Signature) UnmarshalBinary(data []byte) error {
	*s = bytes.Clone(data)
	return nil
}

func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Signature) UnmarshalText(text []byte) error {
	b, err := decodeHex(string(text))
	if err != nil {
		return apperror.ErrInvalidArgument("signature is not valid hex")
	}
	*s = b
	return nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
}
