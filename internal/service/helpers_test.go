package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"chain-connector/internal/adapter/ledger/simulated"
	"chain-connector/internal/adapter/storage/memory"
	"chain-connector/internal/core/domain"
	"chain-connector/pkg/metrics"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testDisputeWindow = time.Minute

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testNet is a shared simulated ledger with a fake clock.
type testNet struct {
	ledger *simulated.Ledger
	clock  *fakeClock
}

func newTestNet() *testNet {
	return &testNet{
		ledger: simulated.New(NewKeccakStrategy(), simulated.Config{AutoMine: true}, zerolog.Nop()),
		clock:  newFakeClock(),
	}
}

func (n *testNet) create(t *testing.T, store *memory.Store, seed string) *Connector {
	t.Helper()
	conn, err := Create(context.Background(), store, n.ledger, []byte(seed), Options{
		Provider:      "simulated",
		DisputeWindow: testDisputeWindow,
		Clock:         n.clock.Now,
		Metrics:       metrics.New("test"),
		Logger:        zerolog.Nop(),
	})
	require.NoError(t, err)
	return conn
}

// join creates, funds, starts and initializes a connector.
func (n *testNet) join(t *testing.T, seed string) *Connector {
	t.Helper()
	ctx := context.Background()

	conn := n.create(t, memory.NewStore(), seed)
	require.NoError(t, n.ledger.Fund(conn.AccountID(), domain.BalanceFromUint64(1000)))
	require.NoError(t, conn.Start(ctx))
	_, err := conn.InitOnchainValues(ctx, nil)
	require.NoError(t, err)
	return conn
}

// split builds an update from the point of view of ch's owner.
func split(ch *PaymentChannel, version, mine, theirs uint64) domain.ChannelUpdate {
	u := domain.ChannelUpdate{ChannelID: ch.ID(), Version: version}
	if ch.IsPartyA() {
		u.BalanceA, u.BalanceB = domain.BalanceFromUint64(mine), domain.BalanceFromUint64(theirs)
	} else {
		u.BalanceA, u.BalanceB = domain.BalanceFromUint64(theirs), domain.BalanceFromUint64(mine)
	}
	return u
}

// cosign has both channel ends sign u.
func cosign(t *testing.T, u domain.ChannelUpdate, ours, theirs *PaymentChannel) domain.SignedUpdate {
	t.Helper()
	ctx := context.Background()

	ourSig, err := ours.SignUpdate(ctx, u)
	require.NoError(t, err)
	theirSig, err := theirs.SignUpdate(ctx, u)
	require.NoError(t, err)

	signed := domain.SignedUpdate{ChannelUpdate: u}
	if ours.IsPartyA() {
		signed.SigA, signed.SigB = ourSig, theirSig
	} else {
		signed.SigA, signed.SigB = theirSig, ourSig
	}
	return signed
}

// openPair opens a channel between alice (60) and bob (40) and returns both ends.
func openPair(t *testing.T, alice, bob *Connector) (*PaymentChannel, *PaymentChannel, domain.SignedUpdate) {
	t.Helper()
	ctx := context.Background()

	chA, err := alice.Channel(ctx, bob.AccountID(), 0)
	require.NoError(t, err)
	chB, err := bob.Channel(ctx, alice.AccountID(), 0)
	require.NoError(t, err)
	require.Equal(t, chA.ID(), chB.ID())

	_, err = chA.Deposit(ctx, domain.BalanceFromUint64(60), nil)
	require.NoError(t, err)
	_, err = chB.Deposit(ctx, domain.BalanceFromUint64(40), nil)
	require.NoError(t, err)

	initial := cosign(t, split(chA, 0, 60, 40), chA, chB)
	require.NoError(t, chA.Open(ctx, initial))
	require.NoError(t, chB.Open(ctx, initial))
	return chA, chB, initial
}
