package domain

import (
	"github.com/fxamacker/cbor/v2"
)

// TxKind identifies the on-chain operation a transaction performs.
type TxKind uint8

const (
	TxKindInitAccount TxKind = iota + 1
	TxKindFundChannel
	TxKindSettleChannel
	TxKindDisputeChannel
)

func (k TxKind) String() string {
	switch k {
	case TxKindInitAccount:
		return "INIT_ACCOUNT"
	case TxKindFundChannel:
		return "FUND_CHANNEL"
	case TxKindSettleChannel:
		return "SETTLE_CHANNEL"
	case TxKindDisputeChannel:
		return "DISPUTE_CHANNEL"
	default:
		return "UNKNOWN"
	}
}

// Transaction is a ledger-agnostic description of an on-chain call.
type Transaction struct {
	Kind      TxKind    `cbor:"1,keyasint"`
	From      AccountID `cbor:"2,keyasint"`
	Nonce     uint64    `cbor:"3,keyasint"`
	ChannelID Hash      `cbor:"4,keyasint,omitempty"`
	Payload   []byte    `cbor:"5,keyasint,omitempty"`
	Signature Signature `cbor:"6,keyasint,omitempty"`
}

// SigningBytes returns the deterministic encoding of t without its signature.
func (t Transaction) SigningBytes() ([]byte, error) {
	t.Signature = nil
	return Marshal(t)
}

// InitAccountPayload publishes the public key behind an account.
type InitAccountPayload struct {
	PublicKey []byte `cbor:"1,keyasint"`
}

// FundChannelPayload deposits Amount into a channel on behalf of the sender.
type FundChannelPayload struct {
	Counterparty AccountID `cbor:"1,keyasint"`
	Amount       Balance   `cbor:"2,keyasint"`
}

// StatePayload carries a mutually signed update for settlement or dispute.
type StatePayload struct {
	Version  uint64    `cbor:"1,keyasint"`
	BalanceA Balance   `cbor:"2,keyasint"`
	BalanceB Balance   `cbor:"3,keyasint"`
	SigA     Signature `cbor:"4,keyasint"`
	SigB     Signature `cbor:"5,keyasint"`
}

// NewStatePayload builds a StatePayload from u.
func NewStatePayload(u SignedUpdate) StatePayload {
	return StatePayload{
		Version:  u.Version,
		BalanceA: u.BalanceA,
		BalanceB: u.BalanceB,
		SigA:     u.SigA,
		SigB:     u.SigB,
	}
}

// TxStatus is the ledger's view of a submitted transaction.
type TxStatus struct {
	Confirmed bool
	// RevertReason is set when a confirmed transaction failed to apply.
	RevertReason string
}

// Reverted reports whether the transaction was mined but failed to apply.
func (s TxStatus) Reverted() bool {
	return s.Confirmed && s.RevertReason != ""
}

var detEncMode = mustEncMode(cbor.CoreDetEncOptions())

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// Marshal encodes v with core deterministic CBOR.
func Marshal(v any) ([]byte, error) {
	return detEncMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}
