package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"chain-connector/internal/core/domain"
	"chain-connector/internal/core/ports"
	"chain-connector/pkg/apperror"
	"chain-connector/pkg/metrics"

	"github.com/rs/zerolog"
)

// channelEnv is the shared machinery every channel of a connector uses.
type channelEnv struct {
	self          domain.AccountID
	identity      *Identity
	crypto        ports.CryptoStrategy
	ledger        ports.LedgerAdapter
	store         ports.Store
	submitter     *txSubmitter
	nonces        *NonceAllocator
	metrics       *metrics.Metrics
	disputeWindow time.Duration
	now           func() time.Time
	log           zerolog.Logger

	// running is set while the owning connector is started.
	running atomic.Bool
}

func (e *channelEnv) requireRunning() error {
	if !e.running.Load() {
		return apperror.ErrNotStarted()
	}
	return nil
}

// PaymentChannel drives the lifecycle of one bilateral channel. Operations on
// the same channel are serialized; each transition is persisted before it
// becomes visible.
type PaymentChannel struct {
	env *channelEnv
	log zerolog.Logger

	// Fixed at construction.
	id           domain.Hash
	isPartyA     bool
	counterparty domain.AccountID

	mu    sync.Mutex
	state *domain.Channel
}

func newPaymentChannel(env *channelEnv, state *domain.Channel) *PaymentChannel {
	p := &PaymentChannel{
		env:          env,
		log:          env.log.With().Str("channel", state.ID.String()).Logger(),
		id:           state.ID,
		isPartyA:     state.PartyA == env.self,
		counterparty: state.PartyA,
		state:        state,
	}
	if p.isPartyA {
		p.counterparty = state.PartyB
	}
	return p
}

// Snapshot returns a copy of the channel's current state.
func (p *PaymentChannel) Snapshot() *domain.Channel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

// ID returns the channel id.
func (p *PaymentChannel) ID() domain.Hash {
	return p.id
}

// IsPartyA reports whether the local account is party A of the channel.
func (p *PaymentChannel) IsPartyA() bool {
	return p.isPartyA
}

// Counterparty returns the other party of the channel.
func (p *PaymentChannel) Counterparty() domain.AccountID {
	return p.counterparty
}

// SignUpdate signs u with the local on-chain key. The signature is meant for
// the counterparty, who combines it with its own into a SignedUpdate.
func (p *PaymentChannel) SignUpdate(ctx context.Context, u domain.ChannelUpdate) (domain.Signature, error) {
	if err := p.env.requireRunning(); err != nil {
		return nil, err
	}
	if u.ChannelID != p.id {
		return nil, apperror.ErrInvalidArgument("update belongs to another channel")
	}
	if _, err := u.BalanceA.Add(u.BalanceB); err != nil {
		return nil, err
	}
	return p.env.identity.SignOnChain(ctx, p.env.crypto, u.SigningBytes())
}

// Deposit funds the channel with amount from the local account. The channel
// stays UNFUNDED until Open observes both deposits.
func (p *PaymentChannel) Deposit(ctx context.Context, amount domain.Balance, explicitNonce *uint64) (domain.Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.env.requireRunning(); err != nil {
		return domain.Hash{}, err
	}

	if p.state.State != domain.ChannelStateUnfunded {
		return domain.Hash{}, apperror.ErrInvalidTransition(p.state.State.String(), "fund")
	}
	if amount.IsZero() {
		return domain.Hash{}, apperror.ErrInvalidArgument("deposit amount must be positive")
	}

	payload := domain.FundChannelPayload{Counterparty: p.Counterparty(), Amount: amount}
	txHash, nonce, err := p.env.submitter.submit(ctx, domain.TxKindFundChannel, p.id, payload, explicitNonce)
	if err != nil {
		return domain.Hash{}, err
	}

	next := p.state.Clone()
	next.Nonce = nonce
	if err := p.commit(ctx, next); err != nil {
		return domain.Hash{}, err
	}
	return txHash, nil
}

// Open moves an UNFUNDED channel to OPEN once the ledger shows both deposits
// matching the initial split, signed by both parties.
func (p *PaymentChannel) Open(ctx context.Context, initial domain.SignedUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.env.requireRunning(); err != nil {
		return err
	}

	if p.state.State != domain.ChannelStateUnfunded {
		return apperror.ErrInvalidTransition(p.state.State.String(), "open")
	}
	if initial.ChannelID != p.id {
		return apperror.ErrInvalidArgument("initial state belongs to another channel")
	}

	depositA, depositB, err := p.env.ledger.Deposits(ctx, p.id)
	if err != nil {
		return apperror.ErrLedger("fetching channel deposits", err)
	}
	if depositA != initial.BalanceA || depositB != initial.BalanceB {
		return apperror.ErrInvalidArgument(fmt.Sprintf(
			"on-chain deposits (%s, %s) do not match initial split (%s, %s)",
			depositA, depositB, initial.BalanceA, initial.BalanceB))
	}
	if depositA.IsZero() && depositB.IsZero() {
		return apperror.ErrInvalidArgument("channel has no funding")
	}

	ok, err := p.verifyBoth(ctx, initial)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.ErrCrypto("initial state is not signed by both parties")
	}

	next := p.state.Clone()
	applyUpdate(next, initial)
	next.State = domain.ChannelStateOpen
	return p.commit(ctx, next)
}

// Update applies a newer mutually signed off-chain state while the channel
// is OPEN. The channel total is conserved. Once settlement has been requested
// newer states are not applied locally; they go through SubmitClaim, which
// escalates them to the ledger.
func (p *PaymentChannel) Update(ctx context.Context, u domain.SignedUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.env.requireRunning(); err != nil {
		return err
	}

	if p.state.State != domain.ChannelStateOpen {
		return apperror.ErrInvalidTransition(p.state.State.String(), "update")
	}
	if reason := p.checkSuccessor(u); reason != "" {
		return apperror.ErrInvalidArgument(reason)
	}

	ok, err := p.verifyBoth(ctx, u)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.ErrCrypto("update is not signed by both parties")
	}

	next := p.state.Clone()
	applyUpdate(next, u)
	return p.commit(ctx, next)
}

// RequestSettlement submits the latest mutually signed state for settlement
// and moves the channel to PENDING_SETTLEMENT.
func (p *PaymentChannel) RequestSettlement(ctx context.Context, explicitNonce *uint64) (domain.Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.env.requireRunning(); err != nil {
		return domain.Hash{}, err
	}

	if p.state.State != domain.ChannelStateOpen {
		return domain.Hash{}, apperror.ErrInvalidTransition(p.state.State.String(), "settle")
	}

	payload := domain.NewStatePayload(p.state.LatestUpdate())
	txHash, nonce, err := p.env.submitter.submit(ctx, domain.TxKindSettleChannel, p.id, payload, explicitNonce)
	if err != nil {
		return domain.Hash{}, err
	}

	requestedAt := p.env.now().UTC()
	next := p.state.Clone()
	next.State = domain.ChannelStatePendingSettlement
	next.Nonce = nonce
	next.SettlementTx = txHash
	next.SettlementRequestedAt = &requestedAt
	if err := p.commit(ctx, next); err != nil {
		return domain.Hash{}, err
	}
	return txHash, nil
}

// Finalize closes a PENDING_SETTLEMENT channel once the settlement is
// confirmed and the dispute window has elapsed. It reports whether the
// channel was closed; false means the caller should try again later. A
// reverted settlement is escalated: the latest state is submitted as a
// dispute and a ChannelDisputeError is returned.
func (p *PaymentChannel) Finalize(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.env.requireRunning(); err != nil {
		return false, err
	}

	if p.state.State != domain.ChannelStatePendingSettlement {
		return false, apperror.ErrInvalidTransition(p.state.State.String(), "finalize")
	}

	status, err := p.env.ledger.TxStatus(ctx, p.state.SettlementTx)
	if err != nil {
		return false, apperror.ErrLedger("checking settlement confirmation", err)
	}
	if !status.Confirmed {
		return false, nil
	}
	if status.Reverted() {
		return false, p.dispute(ctx, p.state.Clone(),
			fmt.Sprintf("settlement %s reverted: %s", p.state.SettlementTx, status.RevertReason))
	}
	if p.state.SettlementRequestedAt != nil &&
		p.env.now().Before(p.state.SettlementRequestedAt.Add(p.env.disputeWindow)) {
		return false, nil
	}

	next := p.state.Clone()
	next.State = domain.ChannelStateClosed
	if err := p.commit(ctx, next); err != nil {
		return false, err
	}
	p.env.nonces.Confirm(p.env.self, next.Nonce)
	return true, nil
}

// SubmitClaim validates a balance claim from the counterparty against the
// latest mutually signed state. A claim equal to the current state is a
// no-op. While OPEN a newer valid state is adopted, matching Update. While
// PENDING_SETTLEMENT the settlement already broadcast carries the current
// state, so a newer valid claim is a counter-claim: it is adopted and
// submitted to the ledger as a dispute. Stale or forged claims are disputed
// with the current state. Every dispute moves the channel to DISPUTED and
// returns a ChannelDisputeError.
func (p *PaymentChannel) SubmitClaim(ctx context.Context, claim domain.SignedUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.env.requireRunning(); err != nil {
		return err
	}
	st := p.state.State
	if st != domain.ChannelStateOpen && st != domain.ChannelStatePendingSettlement {
		return apperror.ErrInvalidTransition(st.String(), "claim on")
	}
	if claim.ChannelID != p.id {
		return apperror.ErrInvalidArgument("claim belongs to another channel")
	}
	if claim.SameSplit(p.state.LatestUpdate().ChannelUpdate) {
		return nil
	}

	reason := p.checkSuccessor(claim)
	if reason == "" {
		ok, err := p.verifyBoth(ctx, claim)
		if err != nil {
			return err
		}
		if !ok {
			reason = "claim is not signed by both parties"
		}
	}
	if reason != "" {
		p.log.Warn().
			Uint64("claim_version", claim.Version).
			Uint64("local_version", p.state.Version).
			Str("reason", reason).
			Msg("invalid balance claim")
		return p.dispute(ctx, p.state.Clone(), "balance claim rejected: "+reason)
	}

	next := p.state.Clone()
	applyUpdate(next, claim)
	if st == domain.ChannelStatePendingSettlement {
		return p.dispute(ctx, next, fmt.Sprintf(
			"counter-claim version %d supersedes settlement of version %d", claim.Version, p.state.Version))
	}
	return p.commit(ctx, next)
}

// dispute submits the latest state of next to the ledger and commits next as
// DISPUTED. If the submission fails the channel is left unchanged. It must be
// called with p.mu held.
func (p *PaymentChannel) dispute(ctx context.Context, next *domain.Channel, reason string) error {
	p.log.Warn().
		Uint64("version", next.Version).
		Str("reason", reason).
		Msg("escalating channel to ledger")

	payload := domain.NewStatePayload(next.LatestUpdate())
	txHash, nonce, err := p.env.submitter.submit(ctx, domain.TxKindDisputeChannel, p.id, payload, nil)
	if err != nil {
		return err
	}

	next.State = domain.ChannelStateDisputed
	next.Nonce = nonce
	next.DisputeTx = txHash
	if err := p.commit(ctx, next); err != nil {
		return err
	}
	p.env.metrics.Dispute()

	return apperror.ErrChannelDispute(reason)
}

// checkSuccessor returns why u cannot follow the current state, or "".
func (p *PaymentChannel) checkSuccessor(u domain.SignedUpdate) string {
	if u.ChannelID != p.id {
		return "update belongs to another channel"
	}
	if u.Version <= p.state.Version {
		return fmt.Sprintf("stale version %d, latest is %d", u.Version, p.state.Version)
	}

	total, err := p.state.Total()
	if err != nil {
		return err.Error()
	}
	claimed, err := u.BalanceA.Add(u.BalanceB)
	if err != nil {
		return err.Error()
	}
	if claimed != total {
		return fmt.Sprintf("balances sum to %s, channel holds %s", claimed, total)
	}
	return ""
}

// verifyBoth checks the signatures of both parties against their published keys.
func (p *PaymentChannel) verifyBoth(ctx context.Context, u domain.SignedUpdate) (bool, error) {
	msg := u.SigningBytes()
	for _, check := range []struct {
		party domain.AccountID
		sig   domain.Signature
	}{
		{p.state.PartyA, u.SigA},
		{p.state.PartyB, u.SigB},
	} {
		pub, err := p.env.ledger.PublicKey(ctx, check.party)
		if err != nil {
			return false, apperror.ErrLedger("fetching party public key", err)
		}
		if pub == nil {
			return false, apperror.ErrInvalidArgument(fmt.Sprintf("%s has not published a public key", check.party))
		}
		ok, err := p.env.crypto.Verify(ctx, msg, check.sig, pub)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// commit persists next and then makes it the current state. It must be
// called with p.mu held.
func (p *PaymentChannel) commit(ctx context.Context, next *domain.Channel) error {
	data, err := domain.Marshal(domain.NewChannelRecord(next))
	if err != nil {
		return apperror.InternalError(fmt.Errorf("encoding channel record: %w", err))
	}
	if err := p.env.store.Put(ctx, domain.ChannelKey(next.ID), data); err != nil {
		return apperror.ErrStore(err)
	}

	prev := p.state.State
	p.state = next
	if prev != next.State {
		p.env.metrics.ChannelTransition(prev.String(), next.State.String())
		p.log.Info().
			Str("from", prev.String()).
			Str("to", next.State.String()).
			Uint64("version", next.Version).
			Msg("channel transition")
	}
	return nil
}

func applyUpdate(c *domain.Channel, u domain.SignedUpdate) {
	c.Version = u.Version
	c.BalanceA = u.BalanceA
	c.BalanceB = u.BalanceB
	c.SigA = u.SigA.Bytes()
	c.SigB = u.SigB.Bytes()
}
