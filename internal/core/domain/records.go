package domain

import (
	"time"
)

// Key prefixes partitioning the connector's store.
var (
	ChannelKeyPrefix  = []byte("payments-channel-")
	NonceKeyPrefix    = []byte("payments-nonce-")
	IdentityKeyPrefix = []byte("payments-identity-")
)

// ChannelKey returns the store key of a channel record.
func ChannelKey(id Hash) []byte {
	return prefixed(ChannelKeyPrefix, id[:])
}

// NonceKey returns the store key of an account's nonce record.
func NonceKey(account AccountID) []byte {
	return prefixed(NonceKeyPrefix, account[:])
}

// IdentityKey returns the store key of an account's public identity.
func IdentityKey(account AccountID) []byte {
	return prefixed(IdentityKeyPrefix, account[:])
}

func prefixed(prefix, suffix []byte) []byte {
	k := make([]byte, 0, len(prefix)+len(suffix))
	k = append(k, prefix...)
	return append(k, suffix...)
}

// NonceRecord is the durable form of an account's nonce cursor.
type NonceRecord struct {
	Cursor    uint64 `cbor:"1,keyasint"`
	Confirmed uint64 `cbor:"2,keyasint"`
}

// IdentityRecord is the public part of the connector identity.
type IdentityRecord struct {
	PublicKey        []byte `cbor:"1,keyasint"`
	OnChainPublicKey []byte `cbor:"2,keyasint"`
	Strategy         string `cbor:"3,keyasint"`
}

// ChannelRecord is the durable form of a Channel.
type ChannelRecord struct {
	ID                    Hash         `cbor:"1,keyasint"`
	PartyA                AccountID    `cbor:"2,keyasint"`
	PartyB                AccountID    `cbor:"3,keyasint"`
	Epoch                 uint64       `cbor:"4,keyasint"`
	State                 ChannelState `cbor:"5,keyasint"`
	BalanceA              Balance      `cbor:"6,keyasint"`
	BalanceB              Balance      `cbor:"7,keyasint"`
	Nonce                 uint64       `cbor:"8,keyasint"`
	Version               uint64       `cbor:"9,keyasint"`
	SigA                  Signature    `cbor:"10,keyasint,omitempty"`
	SigB                  Signature    `cbor:"11,keyasint,omitempty"`
	SettlementTx          Hash         `cbor:"12,keyasint"`
	SettlementRequestedAt int64        `cbor:"13,keyasint,omitempty"` // Unix nanoseconds
	DisputeTx             Hash         `cbor:"14,keyasint"`
}

// NewChannelRecord converts c into its durable form.
func NewChannelRecord(c *Channel) ChannelRecord {
	r := ChannelRecord{
		ID:           c.ID,
		PartyA:       c.PartyA,
		PartyB:       c.PartyB,
		Epoch:        c.Epoch,
		State:        c.State,
		BalanceA:     c.BalanceA,
		BalanceB:     c.BalanceB,
		Nonce:        c.Nonce,
		Version:      c.Version,
		SigA:         c.SigA,
		SigB:         c.SigB,
		SettlementTx: c.SettlementTx,
		DisputeTx:    c.DisputeTx,
	}
	if c.SettlementRequestedAt != nil {
		r.SettlementRequestedAt = c.SettlementRequestedAt.UnixNano()
	}
	return r
}

// Channel converts the record back into a Channel.
func (r ChannelRecord) Channel() *Channel {
	c := &Channel{
		ID:           r.ID,
		PartyA:       r.PartyA,
		PartyB:       r.PartyB,
		Epoch:        r.Epoch,
		State:        r.State,
		BalanceA:     r.BalanceA,
		BalanceB:     r.BalanceB,
		Nonce:        r.Nonce,
		Version:      r.Version,
		SigA:         r.SigA,
		SigB:         r.SigB,
		SettlementTx: r.SettlementTx,
		DisputeTx:    r.DisputeTx,
	}
	if r.SettlementRequestedAt != 0 {
		t := time.Unix(0, r.SettlementRequestedAt).UTC()
		c.SettlementRequestedAt = &t
	}
	return c
}
