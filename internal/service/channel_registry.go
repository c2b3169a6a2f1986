package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"chain-connector/internal/core/domain"
	"chain-connector/pkg/apperror"
)

// ChannelRegistry owns the connector's channels, one instance per channel id.
type ChannelRegistry struct {
	env      *channelEnv
	resolver *ChannelResolver

	mu       sync.Mutex
	channels map[domain.Hash]*PaymentChannel
}

func newChannelRegistry(env *channelEnv, resolver *ChannelResolver) *ChannelRegistry {
	return &ChannelRegistry{
		env:      env,
		resolver: resolver,
		channels: make(map[domain.Hash]*PaymentChannel),
	}
}

// Get returns the channel with counterparty for epoch, restoring it from the
// store or creating it UNFUNDED if it has never been seen.
func (r *ChannelRegistry) Get(ctx context.Context, counterparty domain.AccountID, epoch uint64) (*PaymentChannel, error) {
	id, err := r.resolver.GetID(ctx, r.env.self, counterparty, epoch)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ch, ok := r.channels[id]; ok {
		return ch, nil
	}

	state, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if state == nil {
		partyA, partyB, err := Parties(r.env.self, counterparty)
		if err != nil {
			return nil, err
		}
		state = &domain.Channel{
			ID:     id,
			PartyA: partyA,
			PartyB: partyB,
			Epoch:  epoch,
			State:  domain.ChannelStateUnfunded,
		}
	}

	ch := newPaymentChannel(r.env, state)
	r.channels[id] = ch
	return ch, nil
}

// Find returns a snapshot of the channel with counterparty for epoch without
// registering it. A channel that was never persisted is reported absent.
func (r *ChannelRegistry) Find(ctx context.Context, counterparty domain.AccountID, epoch uint64) (*domain.Channel, error) {
	id, err := r.resolver.GetID(ctx, r.env.self, counterparty, epoch)
	if err != nil {
		return nil, err
	}
	if ch, ok := r.Lookup(id); ok {
		return ch.Snapshot(), nil
	}
	return r.load(ctx, id)
}

// Lookup returns an already loaded channel.
func (r *ChannelRegistry) Lookup(id domain.Hash) (*PaymentChannel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[id]
	return ch, ok
}

// List returns snapshots of all loaded channels ordered by id.
func (r *ChannelRegistry) List() []*domain.Channel {
	r.mu.Lock()
	loaded := make([]*PaymentChannel, 0, len(r.channels))
	for _, ch := range r.channels {
		loaded = append(loaded, ch)
	}
	r.mu.Unlock()

	out := make([]*domain.Channel, 0, len(loaded))
	for _, ch := range loaded {
		out = append(out, ch.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}

func (r *ChannelRegistry) load(ctx context.Context, id domain.Hash) (*domain.Channel, error) {
	data, err := r.env.store.Get(ctx, domain.ChannelKey(id))
	if err != nil {
		return nil, apperror.ErrStore(err)
	}
	if data == nil {
		return nil, nil
	}

	var rec domain.ChannelRecord
	if err := domain.Unmarshal(data, &rec); err != nil {
		return nil, apperror.ErrStore(fmt.Errorf("decoding channel %s: %w", id, err))
	}
	if rec.ID != id {
		return nil, apperror.ErrStore(fmt.Errorf("channel record %s stored under %s", rec.ID, id))
	}
	return rec.Channel(), nil
}
