package dto

import (
	"time"

	"chain-connector/internal/core/domain"
)

// UnitQuery selects the denomination balances are rendered in.
type UnitQuery struct {
	Unit string `form:"unit" binding:"omitempty,unit"`
}

// DisplayUnit returns the requested unit, wei by default.
func (q UnitQuery) DisplayUnit() domain.Unit {
	if q.Unit == "" {
		return domain.UnitWei
	}
	return domain.Unit(q.Unit)
}

// ChannelURI binds the counterparty path parameter.
type ChannelURI struct {
	Counterparty string `uri:"counterparty" binding:"required,account_id"`
}

// ChannelQuery binds GET /channels/:counterparty query parameters.
type ChannelQuery struct {
	UnitQuery
	Epoch uint64 `form:"epoch"`
}

// AccountResponse is the response body for GET /account.
type AccountResponse struct {
	AccountID string `json:"account_id"`
	Provider  string `json:"provider"`
	Strategy  string `json:"strategy"`
	Balance   string `json:"balance"`
	Unit      string `json:"unit"`
}

// ChannelResponse is the public view of a channel. Signatures are omitted.
type ChannelResponse struct {
	ChannelID             string  `json:"channel_id"`
	PartyA                string  `json:"party_a"`
	PartyB                string  `json:"party_b"`
	Epoch                 uint64  `json:"epoch"`
	State                 string  `json:"state"`
	Version               uint64  `json:"version"`
	Nonce                 uint64  `json:"nonce"`
	BalanceA              string  `json:"balance_a"`
	BalanceB              string  `json:"balance_b"`
	Unit                  string  `json:"unit"`
	SettlementTx          *string `json:"settlement_tx,omitempty"`
	SettlementRequestedAt *string `json:"settlement_requested_at,omitempty"`
	DisputeTx             *string `json:"dispute_tx,omitempty"`
}

// ChannelListResponse wraps the channel list.
type ChannelListResponse struct {
	Items []ChannelResponse `json:"items"`
	Total int               `json:"total"`
}

// NewChannelResponse renders ch with balances in unit.
func NewChannelResponse(ch *domain.Channel, unit domain.Unit) (ChannelResponse, error) {
	balA, err := ch.BalanceA.Format(unit)
	if err != nil {
		return ChannelResponse{}, err
	}
	balB, err := ch.BalanceB.Format(unit)
	if err != nil {
		return ChannelResponse{}, err
	}

	resp := ChannelResponse{
		ChannelID: ch.ID.String(),
		PartyA:    ch.PartyA.String(),
		PartyB:    ch.PartyB.String(),
		Epoch:     ch.Epoch,
		State:     ch.State.String(),
		Version:   ch.Version,
		Nonce:     ch.Nonce,
		BalanceA:  balA,
		BalanceB:  balB,
		Unit:      string(unit),
	}
	if !ch.SettlementTx.IsZero() {
		s := ch.SettlementTx.String()
		resp.SettlementTx = &s
	}
	if ch.SettlementRequestedAt != nil {
		s := ch.SettlementRequestedAt.UTC().Format(time.RFC3339)
		resp.SettlementRequestedAt = &s
	}
	if !ch.DisputeTx.IsZero() {
		s := ch.DisputeTx.String()
		resp.DisputeTx = &s
	}
	return resp, nil
}
