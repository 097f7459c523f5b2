package raffle

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestRaffle_ForceReset(t *testing.T) {
	ctx := context.Background()

	t.Run("only the operator", func(t *testing.T) {
		tr := newTestRaffle(t)
		tr.startDraw(t, player1)
		tr.clock.Advance(2 * time.Hour)

		require.ErrorIs(t, tr.ForceReset(ctx, player1), ErrNotOperator)
		require.ErrorIs(t, tr.ForceReset(ctx, testCoordinator), ErrNotOperator)
		require.Equal(t, Calculating, tr.State())
	})

	t.Run("disabled without an operator", func(t *testing.T) {
		cfg := testConfig()
		cfg.Operator = common.Address{}
		r, err := New(cfg, &fakeRandomness{}, &fakePayer{})
		require.NoError(t, err)

		require.ErrorIs(t, r.ForceReset(ctx, cfg.Operator), ErrNotOperator)
	})

	t.Run("only while calculating", func(t *testing.T) {
		tr := newTestRaffle(t)
		require.ErrorIs(t, tr.ForceReset(ctx, testOperator), ErrRaffleNotCalculating)
	})

	t.Run("only after the grace period", func(t *testing.T) {
		tr := newTestRaffle(t)
		tr.startDraw(t, player1)
		tr.clock.Advance(time.Hour - time.Second)

		require.ErrorIs(t, tr.ForceReset(ctx, testOperator), ErrGracePeriodNotElapsed)
		require.Equal(t, Calculating, tr.State())
	})

	t.Run("reopens and rejects the late delivery", func(t *testing.T) {
		tr := newTestRaffle(t)
		id := tr.startDraw(t, player1, player2)
		tr.clock.Advance(time.Hour)
		tr.emitter.events = nil

		require.NoError(t, tr.ForceReset(ctx, testOperator))
		require.Equal(t, Open, tr.State())
		require.Equal(t, 2, tr.NumberOfPlayers())
		require.Equal(t, new(big.Int).Mul(testFee, big.NewInt(2)), tr.Balance())
		require.Nil(t, tr.PendingRequestID())
		require.Equal(t, tr.clock.now, tr.LastTimestamp())

		require.Len(t, tr.emitter.events, 1)
		require.Equal(t, RaffleResetEvent, tr.emitter.events[0].Type)
		require.Equal(t, id, tr.emitter.events[0].RequestID)

		err := tr.FulfillRandomWords(ctx, testCoordinator, id, []*big.Int{big.NewInt(1)})
		require.ErrorIs(t, err, ErrUnknownRequest)

		// Entries are accepted again and the next draw uses a new request.
		require.NoError(t, tr.Enter(ctx, player3, testFee))
		tr.clock.Advance(time.Minute)
		id2, err := tr.PerformUpkeep(ctx, nil)
		require.NoError(t, err)
		require.NotEqual(t, id, id2)
	})
}

func TestState_Text(t *testing.T) {
	b, err := Calculating.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "CALCULATING", string(b))

	var s State
	require.NoError(t, s.UnmarshalText([]byte("OPEN")))
	require.Equal(t, Open, s)
	require.Error(t, s.UnmarshalText([]byte("CLOSED")))

	_, err = State(7).MarshalText()
	require.Error(t, err)
}
