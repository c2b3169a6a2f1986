package domain

import (
	"encoding/binary"
	"time"
)

// ChannelState represents the lifecycle state of a payment channel.
type ChannelState uint8

const (
	ChannelStateUnfunded ChannelState = iota
	ChannelStateOpen
	ChannelStatePendingSettlement
	ChannelStateClosed
	ChannelStateDisputed
)

func (s ChannelState) String() string {
	switch s {
	case ChannelStateUnfunded:
		return "UNFUNDED"
	case ChannelStateOpen:
		return "OPEN"
	case ChannelStatePendingSettlement:
		return "PENDING_SETTLEMENT"
	case ChannelStateClosed:
		return "CLOSED"
	case ChannelStateDisputed:
		return "DISPUTED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal returns true if no further transition can leave the state.
func (s ChannelState) IsTerminal() bool {
	return s == ChannelStateClosed || s == ChannelStateDisputed
}

// Channel is a point-in-time view of a bilateral payment channel.
type Channel struct {
	ID       Hash         `json:"channel_id"`
	PartyA   AccountID    `json:"party_a"`
	PartyB   AccountID    `json:"party_b"`
	Epoch    uint64       `json:"epoch"`
	State    ChannelState `json:"-"`
	BalanceA Balance      `json:"balance_a"`
	BalanceB Balance      `json:"balance_b"`
	// Nonce is the on-chain nonce of the last state-changing transaction
	// this node submitted for the channel.
	Nonce uint64 `json:"nonce"`
	// Version is the sequence number of the latest mutually signed update.
	Version               uint64     `json:"version"`
	SigA                  Signature  `json:"-"`
	SigB                  Signature  `json:"-"`
	SettlementTx          Hash       `json:"settlement_tx"`
	SettlementRequestedAt *time.Time `json:"settlement_requested_at,omitempty"`
	DisputeTx             Hash       `json:"dispute_tx"`
}

// Total returns BalanceA + BalanceB.
func (c *Channel) Total() (Balance, error) {
	return c.BalanceA.Add(c.BalanceB)
}

// LatestUpdate returns the latest mutually signed state of the channel.
func (c *Channel) LatestUpdate() SignedUpdate {
	return SignedUpdate{
		ChannelUpdate: ChannelUpdate{
			ChannelID: c.ID,
			Version:   c.Version,
			BalanceA:  c.BalanceA,
			BalanceB:  c.BalanceB,
		},
		SigA: c.SigA,
		SigB: c.SigB,
	}
}

// Clone returns a deep copy of c.
func (c *Channel) Clone() *Channel {
	out := *c
	out.SigA = c.SigA.Bytes()
	out.SigB = c.SigB.Bytes()
	if c.SettlementRequestedAt != nil {
		t := *c.SettlementRequestedAt
		out.SettlementRequestedAt = &t
	}
	return &out
}

// ChannelUpdate is a balance split both parties sign.
type ChannelUpdate struct {
	ChannelID Hash    `json:"channel_id"`
	Version   uint64  `json:"version"`
	BalanceA  Balance `json:"balance_a"`
	BalanceB  Balance `json:"balance_b"`
}

// ChannelUpdateMessageLength is the length of ChannelUpdate.SigningBytes.
const ChannelUpdateMessageLength = HashLength + 8 + 2*BalanceLength

// SigningBytes is the fixed-layout message signed by both parties:
// channelID(32) ‖ u64be(version) ‖ balanceA(32) ‖ balanceB(32).
func (u ChannelUpdate) SigningBytes() []byte {
	msg := make([]byte, 0, ChannelUpdateMessageLength)
	msg = append(msg, u.ChannelID[:]...)
	msg = binary.BigEndian.AppendUint64(msg, u.Version)
	msg = append(msg, u.BalanceA[:]...)
	msg = append(msg, u.BalanceB[:]...)
	return msg
}

// SameSplit reports whether u and other describe the same version and split.
func (u ChannelUpdate) SameSplit(other ChannelUpdate) bool {
	return u.ChannelID == other.ChannelID &&
		u.Version == other.Version &&
		u.BalanceA == other.BalanceA &&
		u.BalanceB == other.BalanceB
}

// SignedUpdate is a ChannelUpdate with the signatures of both parties.
type SignedUpdate struct {
	ChannelUpdate
	SigA Signature `json:"sig_a"`
	SigB Signature `json:"sig_b"`
}
