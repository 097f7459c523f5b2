package raffle

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/stretchr/testify/require"
)

var (
	testCoordinator = common.HexToAddress("0x00000000000000000000000000000000000000c0")
	testOperator    = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	testKeyHash     = common.HexToHash("0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c")

	player1 = common.HexToAddress("0x0000000000000000000000000000000000000001")
	player2 = common.HexToAddress("0x0000000000000000000000000000000000000002")
	player3 = common.HexToAddress("0x0000000000000000000000000000000000000003")
	player4 = common.HexToAddress("0x0000000000000000000000000000000000000004")

	// 0.01 ether
	testFee = big.NewInt(10_000_000_000_000_000)
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fakeRandomness struct {
	nextID   int64
	err      error
	requests []RandomWordsRequest
}

func (f *fakeRandomness) RequestRandomWords(_ context.Context, req RandomWordsRequest) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.nextID++
	f.requests = append(f.requests, req)
	return big.NewInt(f.nextID), nil
}

type payment struct {
	to     common.Address
	amount *big.Int
}

type fakePayer struct {
	err      error
	payments []payment

	// OnSend runs after the payment is recorded, like code at the recipient.
	OnSend func(ctx context.Context, to common.Address, amount *big.Int)
}

func (p *fakePayer) Send(ctx context.Context, to common.Address, amount *big.Int) error {
	if p.OnSend != nil {
		p.OnSend(ctx, to, amount)
	}

	if p.err != nil {
		return p.err
	}

	p.payments = append(p.payments, payment{to: to, amount: new(big.Int).Set(amount)})
	return nil
}

type recordingEmitter struct {
	events []Event
}

func (e *recordingEmitter) Emit(_ context.Context, event Event) {
	e.events = append(e.events, event)
}

func (e *recordingEmitter) types() []EventType {
	result := []EventType{}
	for _, event := range e.events {
		result = append(result, event.Type)
	}
	return result
}

type testRaffle struct {
	*Raffle
	clock      *fakeClock
	randomness *fakeRandomness
	payer      *fakePayer
	emitter    *recordingEmitter
}

func testConfig() Config {
	return Config{
		EntranceFee:          testFee,
		Interval:             30 * time.Second,
		KeyHash:              testKeyHash,
		SubscriptionID:       1,
		CallbackGasLimit:     500000,
		RequestConfirmations: 3,
		Coordinator:          testCoordinator,
		Operator:             testOperator,
		GracePeriod:          time.Hour,
	}
}

func newTestRaffle(t *testing.T) *testRaffle {
	tr := &testRaffle{
		clock:      &fakeClock{now: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		randomness: &fakeRandomness{},
		payer:      &fakePayer{},
		emitter:    &recordingEmitter{},
	}

	r, err := New(testConfig(), tr.randomness, tr.payer, WithClock(tr.clock), WithEmitter(tr.emitter))
	require.NoError(t, err)
	tr.Raffle = r
	return tr
}

// startDraw enters the given players, lets the interval pass and performs
// the upkeep.
func (tr *testRaffle) startDraw(t *testing.T, players ...common.Address) *big.Int {
	ctx := context.Background()
	for _, p := range players {
		require.NoError(t, tr.Enter(ctx, p, testFee))
	}

	tr.clock.Advance(tr.Interval() + time.Second)
	id, err := tr.PerformUpkeep(ctx, nil)
	require.NoError(t, err)
	return id
}

func TestNew(t *testing.T) {
	tr := newTestRaffle(t)
	require.Equal(t, Open, tr.State())
	require.Equal(t, 0, tr.NumberOfPlayers())
	require.Equal(t, tr.clock.now, tr.LastTimestamp())
	require.Equal(t, common.Address{}, tr.RecentWinner())
	require.Nil(t, tr.PendingRequestID())
	require.Equal(t, testFee, tr.EntranceFee())
	require.Equal(t, 30*time.Second, tr.Interval())

	cfg := testConfig()
	cfg.Coordinator = common.Address{}
	_, err := New(cfg, &fakeRandomness{}, &fakePayer{})
	require.Error(t, err)

	cfg = testConfig()
	cfg.Interval = 0
	_, err = New(cfg, &fakeRandomness{}, &fakePayer{})
	require.Error(t, err)
}

func TestRaffle_Enter(t *testing.T) {
	t.Run("appends one slot per entry", func(t *testing.T) {
		tr := newTestRaffle(t)
		ctx := context.Background()

		require.NoError(t, tr.Enter(ctx, player1, testFee))
		require.NoError(t, tr.Enter(ctx, player2, new(big.Int).Add(testFee, big.NewInt(1))))
		require.NoError(t, tr.Enter(ctx, player1, testFee))

		require.Equal(t, 3, tr.NumberOfPlayers())
		for i, expected := range []common.Address{player1, player2, player1} {
			p, err := tr.Player(i)
			require.NoError(t, err)
			require.Equal(t, expected, p)
		}

		expectedBalance := new(big.Int).Mul(testFee, big.NewInt(3))
		expectedBalance.Add(expectedBalance, big.NewInt(1))
		require.Equal(t, expectedBalance, tr.Balance())

		require.Len(t, tr.emitter.events, 3)
		require.Equal(t, RaffleEnterEvent, tr.emitter.events[0].Type)
		require.Equal(t, player1, tr.emitter.events[0].Player)
		require.Equal(t, player2, tr.emitter.events[1].Player)
	})

	t.Run("rejects every value below the fee", func(t *testing.T) {
		tr := newTestRaffle(t)
		ctx := context.Background()

		for _, v := range []*big.Int{nil, big.NewInt(0), big.NewInt(1), new(big.Int).Sub(testFee, big.NewInt(1))} {
			err := tr.Enter(ctx, player1, v)
			require.ErrorIs(t, err, ErrInsufficientPayment)
		}

		require.Equal(t, 0, tr.NumberOfPlayers())
		require.Equal(t, 0, tr.Balance().Sign())
		require.Empty(t, tr.emitter.events)
	})

	t.Run("rejects entries while calculating", func(t *testing.T) {
		tr := newTestRaffle(t)
		tr.startDraw(t, player1)
		tr.emitter.events = nil

		ctx := context.Background()
		err := tr.Enter(ctx, player2, testFee)
		require.ErrorIs(t, err, ErrRaffleNotOpen)

		err = tr.Enter(ctx, player2, new(big.Int).Mul(testFee, big.NewInt(100)))
		require.ErrorIs(t, err, ErrRaffleNotOpen)

		err = tr.Enter(ctx, player2, big.NewInt(1))
		require.Error(t, err)

		require.Equal(t, 1, tr.NumberOfPlayers())
		require.Equal(t, testFee, tr.Balance())
		require.Empty(t, tr.emitter.events)
	})
}

func TestRaffle_Player(t *testing.T) {
	tr := newTestRaffle(t)
	require.NoError(t, tr.Enter(context.Background(), player1, testFee))

	_, err := tr.Player(1)
	require.ErrorIs(t, err, ErrPlayerIndexOutOfRange)

	_, err = tr.Player(-1)
	require.ErrorIs(t, err, ErrPlayerIndexOutOfRange)
}

func TestRaffle_CheckUpkeep(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		setup    func(t *testing.T, tr *testRaffle)
		expected bool
	}{
		{
			name:     "no players and no time passed",
			setup:    func(t *testing.T, tr *testRaffle) {},
			expected: false,
		},
		{
			name: "no players",
			setup: func(t *testing.T, tr *testRaffle) {
				tr.clock.Advance(time.Hour)
			},
			expected: false,
		},
		{
			name: "interval not passed",
			setup: func(t *testing.T, tr *testRaffle) {
				require.NoError(t, tr.Enter(ctx, player1, testFee))
				tr.clock.Advance(tr.Interval() - time.Second)
			},
			expected: false,
		},
		{
			name: "exactly the interval",
			setup: func(t *testing.T, tr *testRaffle) {
				require.NoError(t, tr.Enter(ctx, player1, testFee))
				tr.clock.Advance(tr.Interval())
			},
			expected: false,
		},
		{
			name: "players but zero balance",
			setup: func(t *testing.T, tr *testRaffle) {
				tr.cfg.EntranceFee = big.NewInt(0)
				require.NoError(t, tr.Enter(ctx, player1, big.NewInt(0)))
				tr.clock.Advance(time.Hour)
			},
			expected: false,
		},
		{
			name: "calculating",
			setup: func(t *testing.T, tr *testRaffle) {
				tr.startDraw(t, player1)
				tr.clock.Advance(time.Hour)
			},
			expected: false,
		},
		{
			name: "all conditions hold",
			setup: func(t *testing.T, tr *testRaffle) {
				require.NoError(t, tr.Enter(ctx, player1, testFee))
				tr.clock.Advance(tr.Interval() + time.Second)
			},
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := newTestRaffle(t)
			tc.setup(t, tr)
			before := tr.Snapshot()

			for i := 0; i < 5; i++ {
				needed, performData := tr.CheckUpkeep(ctx, []byte("ignored"))
				require.Equal(t, tc.expected, needed)
				require.Empty(t, performData)
			}

			require.Equal(t, before, tr.Snapshot())
		})
	}
}

func TestRaffle_PerformUpkeep(t *testing.T) {
	ctx := context.Background()

	t.Run("no players", func(t *testing.T) {
		tr := newTestRaffle(t)
		tr.clock.Advance(time.Hour)

		_, err := tr.PerformUpkeep(ctx, nil)
		require.ErrorIs(t, err, ErrUpkeepNotNeeded)

		var notNeeded *UpkeepNotNeededError
		require.True(t, errors.As(err, &notNeeded))
		require.Equal(t, 0, notNeeded.Balance.Sign())
		require.Equal(t, 0, notNeeded.Players)
		require.Equal(t, Open, notNeeded.State)

		require.Equal(t, Open, tr.State())
		require.Empty(t, tr.randomness.requests)
	})

	t.Run("interval not passed", func(t *testing.T) {
		tr := newTestRaffle(t)
		require.NoError(t, tr.Enter(ctx, player1, testFee))
		tr.emitter.events = nil

		_, err := tr.PerformUpkeep(ctx, nil)
		var notNeeded *UpkeepNotNeededError
		require.True(t, errors.As(err, &notNeeded))
		require.Equal(t, testFee, notNeeded.Balance)
		require.Equal(t, 1, notNeeded.Players)

		var errx errorx.Error
		require.True(t, errors.As(err, &errx))
		require.Equal(t, errorx.UpkeepNotNeeded, errx.Code)
		require.Empty(t, tr.emitter.events)
	})

	t.Run("starts a draw", func(t *testing.T) {
		tr := newTestRaffle(t)
		require.NoError(t, tr.Enter(ctx, player1, testFee))
		tr.clock.Advance(31 * time.Second)

		id, err := tr.PerformUpkeep(ctx, nil)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(1), id)
		require.Equal(t, Calculating, tr.State())
		require.Equal(t, id, tr.PendingRequestID())

		require.Equal(t, []RandomWordsRequest{{
			KeyHash:              testKeyHash,
			SubscriptionID:       1,
			RequestConfirmations: 3,
			CallbackGasLimit:     500000,
			NumWords:             1,
		}}, tr.randomness.requests)

		last := tr.emitter.events[len(tr.emitter.events)-1]
		require.Equal(t, RequestedRaffleWinnerEvent, last.Type)
		require.Equal(t, id, last.RequestID)

		// Only one request can be outstanding.
		tr.clock.Advance(time.Hour)
		_, err = tr.PerformUpkeep(ctx, nil)
		var notNeeded *UpkeepNotNeededError
		require.True(t, errors.As(err, &notNeeded))
		require.Equal(t, Calculating, notNeeded.State)
		require.Len(t, tr.randomness.requests, 1)
		require.Equal(t, id, tr.PendingRequestID())
	})

	t.Run("randomness request fails", func(t *testing.T) {
		tr := newTestRaffle(t)
		require.NoError(t, tr.Enter(ctx, player1, testFee))
		tr.clock.Advance(time.Hour)
		tr.emitter.events = nil
		tr.randomness.err = errors.New("coordinator is down")

		_, err := tr.PerformUpkeep(ctx, nil)
		require.Error(t, err)
		require.Equal(t, Open, tr.State())
		require.Nil(t, tr.PendingRequestID())
		require.Empty(t, tr.emitter.events)

		needed, _ := tr.CheckUpkeep(ctx, nil)
		require.True(t, needed)
	})
}
