package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"chain-connector/internal/adapter/ledger/simulated"
	"chain-connector/internal/adapter/storage/memory"
	"chain-connector/internal/core/domain"
	"chain-connector/internal/core/ports"
	"chain-connector/internal/core/ports/mocks"
	"chain-connector/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type connectorTestDeps struct {
	conn   *Connector
	ledger *mocks.MockLedgerAdapter
	store  *mocks.MockStore
	ctrl   *gomock.Controller
}

func setupMockedConnector(t *testing.T) *connectorTestDeps {
	ctrl := gomock.NewController(t)
	d := &connectorTestDeps{
		ledger: mocks.NewMockLedgerAdapter(ctrl),
		store:  mocks.NewMockStore(ctrl),
		ctrl:   ctrl,
	}
	d.ledger.EXPECT().Crypto().Return(NewKeccakStrategy())

	conn, err := Create(context.Background(), d.store, d.ledger, []byte("mocked"), Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	d.conn = conn
	return d
}

// ==================== Create Tests ====================

func TestConnector_SameSeedSameAccount(t *testing.T) {
	net := newTestNet()

	c1 := net.create(t, memory.NewStore(), "seed-S")
	c2 := net.create(t, memory.NewStore(), "seed-S")
	c3 := net.create(t, memory.NewStore(), "seed-T")

	assert.Equal(t, c1.AccountID(), c2.AccountID())
	assert.NotEqual(t, c1.AccountID(), c3.AccountID())
	assert.Equal(t, ConnectorUninitialized, c1.State())
}

func TestConnector_CreateWithoutSeedIsRandom(t *testing.T) {
	net := newTestNet()
	ctx := context.Background()

	c1, err := Create(ctx, memory.NewStore(), net.ledger, nil, Options{})
	require.NoError(t, err)
	c2, err := Create(ctx, memory.NewStore(), net.ledger, nil, Options{})
	require.NoError(t, err)

	assert.NotEqual(t, c1.AccountID(), c2.AccountID())
}

func TestConnector_DemoAccount(t *testing.T) {
	net := newTestNet()
	ctx := context.Background()
	demo := 2

	c1, err := Create(ctx, memory.NewStore(), net.ledger, nil, Options{DemoAccount: &demo})
	require.NoError(t, err)
	c2 := net.create(t, memory.NewStore(), string(DemoSeed(2)))
	assert.Equal(t, c2.AccountID(), c1.AccountID())

	_, err = Create(ctx, memory.NewStore(), net.ledger, []byte("seed"), Options{DemoAccount: &demo})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument))

	negative := -1
	_, err = Create(ctx, memory.NewStore(), net.ledger, nil, Options{DemoAccount: &negative})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument))
}

func TestConnector_CreateDoesNotContactLedger(t *testing.T) {
	d := setupMockedConnector(t)
	assert.Equal(t, ConnectorUninitialized, d.conn.State())
}

// ==================== Start Tests ====================

func TestConnector_StartFailsWhenLedgerUnreachable(t *testing.T) {
	d := setupMockedConnector(t)
	ctx := context.Background()

	d.ledger.EXPECT().Connect(gomock.Any()).Return(errors.New("dial tcp: refused"))
	d.ledger.EXPECT().Close(gomock.Any()).Return(nil)

	err := d.conn.Start(ctx)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeConnectorStart))
	assert.Equal(t, ConnectorUninitialized, d.conn.State())
}

func TestConnector_StartFailureDoesNotPersist(t *testing.T) {
	d := setupMockedConnector(t)
	ctx := context.Background()
	acc := d.conn.AccountID()

	d.ledger.EXPECT().Connect(gomock.Any()).Return(nil)
	d.store.EXPECT().Get(gomock.Any(), domain.NonceKey(acc)).Return(nil, nil)
	d.ledger.EXPECT().PendingNonce(gomock.Any(), acc).Return(uint64(0), errors.New("rpc timeout"))
	d.ledger.EXPECT().Close(gomock.Any()).Return(nil)
	// No Put is expected: the store must stay untouched.

	err := d.conn.Start(ctx)
	assert.True(t, apperror.HasCode(err, apperror.CodeConnectorStart))
	assert.Equal(t, ConnectorUninitialized, d.conn.State())

	_, err = d.conn.AccountBalance(ctx)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotStarted))
}

func TestConnector_StartRetryAfterFailure(t *testing.T) {
	d := setupMockedConnector(t)
	ctx := context.Background()
	acc := d.conn.AccountID()

	gomock.InOrder(
		d.ledger.EXPECT().Connect(gomock.Any()).Return(errors.New("refused")),
		d.ledger.EXPECT().Close(gomock.Any()).Return(nil),
		d.ledger.EXPECT().Connect(gomock.Any()).Return(nil),
	)
	d.store.EXPECT().Get(gomock.Any(), domain.NonceKey(acc)).Return(nil, nil)
	d.ledger.EXPECT().PendingNonce(gomock.Any(), acc).Return(uint64(4), nil)
	d.ledger.EXPECT().ConfirmedNonce(gomock.Any(), acc).Return(uint64(4), nil)
	d.store.EXPECT().Put(gomock.Any(), domain.IdentityKey(acc), gomock.Any()).Return(nil)

	require.Error(t, d.conn.Start(ctx))
	require.NoError(t, d.conn.Start(ctx))
	assert.Equal(t, ConnectorStarted, d.conn.State())

	n, err := d.conn.NextNonce(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)
}

func TestConnector_StartTwice(t *testing.T) {
	net := newTestNet()
	conn := net.create(t, memory.NewStore(), "alice")

	require.NoError(t, conn.Start(context.Background()))
	err := conn.Start(context.Background())
	assert.True(t, apperror.HasCode(err, apperror.CodeConnectorStart))
	assert.Equal(t, ConnectorStarted, conn.State())
}

func TestConnector_StartPersistsIdentity(t *testing.T) {
	net := newTestNet()
	store := memory.NewStore()
	conn := net.create(t, store, "alice")
	require.NoError(t, conn.Start(context.Background()))

	data, err := store.Get(context.Background(), domain.IdentityKey(conn.AccountID()))
	require.NoError(t, err)
	var rec domain.IdentityRecord
	require.NoError(t, domain.Unmarshal(data, &rec))
	assert.Equal(t, []byte(conn.Identity().OnChainKeyPair.PublicKey), rec.OnChainPublicKey)
	assert.Equal(t, StrategyKeccak, rec.Strategy)
}

// ==================== Stop Tests ====================

func TestConnector_StopTwiceIsNoop(t *testing.T) {
	net := newTestNet()
	conn := net.join(t, "alice")
	ctx := context.Background()

	require.NoError(t, conn.Stop(ctx))
	assert.Equal(t, ConnectorStopped, conn.State())
	require.NoError(t, conn.Stop(ctx))
	assert.Equal(t, ConnectorStopped, conn.State())

	err := conn.Start(ctx)
	assert.True(t, apperror.HasCode(err, apperror.CodeConnectorStart), "stopped is terminal")
}

func TestConnector_StopBeforeStart(t *testing.T) {
	d := setupMockedConnector(t)
	// Neither the store nor the ledger may be touched.
	require.NoError(t, d.conn.Stop(context.Background()))
	assert.Equal(t, ConnectorStopped, d.conn.State())
}

func TestConnector_StopFlushesNonceBeforeClosing(t *testing.T) {
	d := setupMockedConnector(t)
	ctx := context.Background()
	acc := d.conn.AccountID()

	d.ledger.EXPECT().Connect(gomock.Any()).Return(nil)
	d.store.EXPECT().Get(gomock.Any(), domain.NonceKey(acc)).Return(nil, nil)
	d.ledger.EXPECT().PendingNonce(gomock.Any(), acc).Return(uint64(2), nil)
	d.ledger.EXPECT().ConfirmedNonce(gomock.Any(), acc).Return(uint64(1), nil)
	d.store.EXPECT().Put(gomock.Any(), domain.IdentityKey(acc), gomock.Any()).Return(nil)
	require.NoError(t, d.conn.Start(ctx))

	_, err := d.conn.NextNonce(ctx, nil)
	require.NoError(t, err)

	want, err := domain.Marshal(domain.NonceRecord{Cursor: 3, Confirmed: 1})
	require.NoError(t, err)
	gomock.InOrder(
		d.store.EXPECT().Put(gomock.Any(), domain.NonceKey(acc), want).Return(nil),
		d.ledger.EXPECT().Close(gomock.Any()).Return(nil),
	)
	require.NoError(t, d.conn.Stop(ctx))
}

func TestConnector_StopReportsFlushFailure(t *testing.T) {
	d := setupMockedConnector(t)
	ctx := context.Background()
	acc := d.conn.AccountID()

	d.ledger.EXPECT().Connect(gomock.Any()).Return(nil)
	d.store.EXPECT().Get(gomock.Any(), domain.NonceKey(acc)).Return(nil, nil)
	d.ledger.EXPECT().PendingNonce(gomock.Any(), acc).Return(uint64(0), nil)
	d.ledger.EXPECT().ConfirmedNonce(gomock.Any(), acc).Return(uint64(0), nil)
	d.store.EXPECT().Put(gomock.Any(), domain.IdentityKey(acc), gomock.Any()).Return(nil)
	require.NoError(t, d.conn.Start(ctx))

	d.store.EXPECT().Put(gomock.Any(), domain.NonceKey(acc), gomock.Any()).Return(errors.New("read-only"))
	d.ledger.EXPECT().Close(gomock.Any()).Return(nil)

	err := d.conn.Stop(ctx)
	assert.True(t, apperror.HasCode(err, apperror.CodeStore))
	assert.Equal(t, ConnectorStopped, d.conn.State())
}

func TestConnector_RestartResynchronizes(t *testing.T) {
	net := newTestNet()
	ctx := context.Background()
	store := memory.NewStore()

	first := net.create(t, store, "alice")
	require.NoError(t, net.ledger.Fund(first.AccountID(), domain.BalanceFromUint64(10)))
	require.NoError(t, first.Start(ctx))
	_, err := first.InitOnchainValues(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, first.Stop(ctx))

	second := net.create(t, store, "alice")
	require.NoError(t, second.Start(ctx))

	n, err := second.NextNonce(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n, "nonce 0 was consumed by the previous instance")
}

// ==================== On-chain Tests ====================

func TestConnector_InitOnchainValuesOnce(t *testing.T) {
	net := newTestNet()
	ctx := context.Background()
	conn := net.create(t, memory.NewStore(), "alice")
	require.NoError(t, conn.Start(ctx))

	txHash, err := conn.InitOnchainValues(ctx, nil)
	require.NoError(t, err)
	assert.False(t, txHash.IsZero())

	pub, err := net.ledger.PublicKey(ctx, conn.AccountID())
	require.NoError(t, err)
	assert.Equal(t, []byte(conn.Identity().OnChainKeyPair.PublicKey), pub)

	_, err = conn.InitOnchainValues(ctx, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyInitialized))
}

func TestConnector_InitOnchainValuesPendingIsNotRepeated(t *testing.T) {
	net := newTestNet()
	net.ledger = simulated.New(NewKeccakStrategy(), simulated.Config{}, zerolog.Nop())
	ctx := context.Background()
	conn := net.create(t, memory.NewStore(), "alice")
	require.NoError(t, conn.Start(ctx))

	_, err := conn.InitOnchainValues(ctx, nil)
	require.NoError(t, err)

	// The key is not on the ledger until the init transaction is mined.
	_, err = conn.InitOnchainValues(ctx, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyInitialized))

	assert.Equal(t, 1, net.ledger.Mine())
	n, err := conn.NextNonce(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestConnector_ConcurrentInitOnchainValuesBroadcastsOnce(t *testing.T) {
	net := newTestNet()
	net.ledger = simulated.New(NewKeccakStrategy(), simulated.Config{}, zerolog.Nop())
	ctx := context.Background()
	conn := net.create(t, memory.NewStore(), "alice")
	require.NoError(t, conn.Start(ctx))

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = conn.InitOnchainValues(ctx, nil)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyInitialized), err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, net.ledger.Mine())
}

func TestConnector_InitOnchainValuesRetriesAfterRevert(t *testing.T) {
	d := setupMockedConnector(t)
	ctx := context.Background()
	acc := d.conn.AccountID()

	d.ledger.EXPECT().Connect(gomock.Any()).Return(nil)
	d.store.EXPECT().Get(gomock.Any(), domain.NonceKey(acc)).Return(nil, nil)
	d.ledger.EXPECT().PendingNonce(gomock.Any(), acc).Return(uint64(0), nil)
	d.ledger.EXPECT().ConfirmedNonce(gomock.Any(), acc).Return(uint64(0), nil)
	d.store.EXPECT().Put(gomock.Any(), domain.IdentityKey(acc), gomock.Any()).Return(nil)
	require.NoError(t, d.conn.Start(ctx))

	d.ledger.EXPECT().PublicKey(gomock.Any(), acc).Return(nil, nil).Times(2)
	gomock.InOrder(
		d.ledger.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).Return(domain.Hash{0x01}, nil),
		d.ledger.EXPECT().TxStatus(gomock.Any(), domain.Hash{0x01}).
			Return(domain.TxStatus{Confirmed: true, RevertReason: "bad nonce"}, nil),
		d.ledger.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).Return(domain.Hash{0x02}, nil),
	)

	first, err := d.conn.InitOnchainValues(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Hash{0x01}, first)

	second, err := d.conn.InitOnchainValues(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Hash{0x02}, second)
}

func TestConnector_InitOnchainValuesStatusFailure(t *testing.T) {
	d := setupMockedConnector(t)
	ctx := context.Background()
	acc := d.conn.AccountID()

	d.ledger.EXPECT().Connect(gomock.Any()).Return(nil)
	d.store.EXPECT().Get(gomock.Any(), domain.NonceKey(acc)).Return(nil, nil)
	d.ledger.EXPECT().PendingNonce(gomock.Any(), acc).Return(uint64(0), nil)
	d.ledger.EXPECT().ConfirmedNonce(gomock.Any(), acc).Return(uint64(0), nil)
	d.store.EXPECT().Put(gomock.Any(), domain.IdentityKey(acc), gomock.Any()).Return(nil)
	require.NoError(t, d.conn.Start(ctx))

	d.ledger.EXPECT().PublicKey(gomock.Any(), acc).Return(nil, nil)
	d.ledger.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).Return(domain.Hash{0x01}, nil)
	d.ledger.EXPECT().TxStatus(gomock.Any(), domain.Hash{0x01}).Return(domain.TxStatus{}, errors.New("rpc"))

	_, err := d.conn.InitOnchainValues(ctx, nil)
	require.NoError(t, err)
	_, err = d.conn.InitOnchainValues(ctx, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeLedger))
}

func TestConnector_InitOnchainValuesExplicitNonce(t *testing.T) {
	net := newTestNet()
	ctx := context.Background()
	conn := net.create(t, memory.NewStore(), "alice")
	require.NoError(t, conn.Start(ctx))

	_, err := conn.InitOnchainValues(ctx, u64(0))
	require.NoError(t, err)

	n, err := conn.NextNonce(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestConnector_RequiresStart(t *testing.T) {
	net := newTestNet()
	ctx := context.Background()
	conn := net.create(t, memory.NewStore(), "alice")

	_, err := conn.AccountBalance(ctx)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotStarted))
	_, err = conn.InitOnchainValues(ctx, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotStarted))
	_, err = conn.NextNonce(ctx, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotStarted))
	_, err = conn.Channel(ctx, domain.AccountID{0x01}, 0)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotStarted))
}

func TestConnector_AccountBalance(t *testing.T) {
	net := newTestNet()
	conn := net.join(t, "alice")

	bal, err := conn.AccountBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1000", bal.String())
}

func TestConnector_UnbroadcastTransactionReleasesNonce(t *testing.T) {
	d := setupMockedConnector(t)
	ctx := context.Background()
	acc := d.conn.AccountID()

	d.ledger.EXPECT().Connect(gomock.Any()).Return(nil)
	d.store.EXPECT().Get(gomock.Any(), domain.NonceKey(acc)).Return(nil, nil)
	d.ledger.EXPECT().PendingNonce(gomock.Any(), acc).Return(uint64(0), nil)
	d.ledger.EXPECT().ConfirmedNonce(gomock.Any(), acc).Return(uint64(0), nil)
	d.store.EXPECT().Put(gomock.Any(), domain.IdentityKey(acc), gomock.Any()).Return(nil)
	require.NoError(t, d.conn.Start(ctx))

	d.ledger.EXPECT().PublicKey(gomock.Any(), acc).Return(nil, nil).Times(2)
	gomock.InOrder(
		d.ledger.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).
			Return(domain.Hash{}, fmt.Errorf("mempool full: %w", ports.ErrNotBroadcast)),
		d.ledger.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).
			Return(domain.Hash{}, context.DeadlineExceeded),
	)

	_, err := d.conn.InitOnchainValues(ctx, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeLedger))
	_, err = d.conn.InitOnchainValues(ctx, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeLedger))

	// First failure released nonce 0, the timeout may have broadcast it.
	n, err := d.conn.NextNonce(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

// ==================== Channel Factory Tests ====================

func TestConnector_ChannelIsSharedPerID(t *testing.T) {
	net := newTestNet()
	ctx := context.Background()
	alice := net.join(t, "alice")
	bob := net.join(t, "bob")

	c1, err := alice.Channel(ctx, bob.AccountID(), 0)
	require.NoError(t, err)
	c2, err := alice.Channel(ctx, bob.AccountID(), 0)
	require.NoError(t, err)
	c3, err := alice.Channel(ctx, bob.AccountID(), 1)
	require.NoError(t, err)

	assert.Same(t, c1, c2)
	assert.NotEqual(t, c1.ID(), c3.ID())
	assert.Len(t, alice.Channels(), 2)

	_, err = alice.Channel(ctx, alice.AccountID(), 0)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument))
}

func TestConnector_ChannelRestoredFromStore(t *testing.T) {
	net := newTestNet()
	ctx := context.Background()
	aliceStore := memory.NewStore()

	alice := net.create(t, aliceStore, "alice")
	require.NoError(t, net.ledger.Fund(alice.AccountID(), domain.BalanceFromUint64(1000)))
	require.NoError(t, alice.Start(ctx))
	_, err := alice.InitOnchainValues(ctx, nil)
	require.NoError(t, err)
	bob := net.join(t, "bob")

	chA, chB, _ := openPair(t, alice, bob)
	require.NoError(t, chA.Update(ctx, cosign(t, split(chA, 1, 30, 70), chA, chB)))
	require.NoError(t, alice.Stop(ctx))

	restarted := net.create(t, aliceStore, "alice")
	require.NoError(t, restarted.Start(ctx))
	ch, err := restarted.Channel(ctx, bob.AccountID(), 0)
	require.NoError(t, err)

	assert.Equal(t, chA.Snapshot(), ch.Snapshot())
	assert.Equal(t, domain.ChannelStateOpen, ch.Snapshot().State)
}

func TestConnector_ChannelStatus(t *testing.T) {
	net := newTestNet()
	ctx := context.Background()
	alice := net.join(t, "alice")
	bob := net.join(t, "bob")

	_, err := alice.ChannelStatus(ctx, bob.AccountID(), 0)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
	assert.Empty(t, alice.Channels(), "status lookups must not register channels")

	chA, _, _ := openPair(t, alice, bob)

	got, err := alice.ChannelStatus(ctx, bob.AccountID(), 0)
	require.NoError(t, err)
	assert.Equal(t, chA.Snapshot(), got)

	got, err = bob.ChannelStatus(ctx, alice.AccountID(), 0)
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelStateOpen, got.State)
}

func TestConnector_Health(t *testing.T) {
	net := newTestNet()
	ctx := context.Background()
	conn := net.create(t, memory.NewStore(), "alice")

	assert.Equal(t, "connector", conn.Name())
	assert.Equal(t, StrategyKeccak, conn.Strategy())
	assert.True(t, apperror.HasCode(conn.Ping(ctx), apperror.CodeNotStarted))

	require.NoError(t, conn.Start(ctx))
	assert.NoError(t, conn.Ping(ctx))

	require.NoError(t, conn.Stop(ctx))
	assert.Error(t, conn.Ping(ctx))
}
