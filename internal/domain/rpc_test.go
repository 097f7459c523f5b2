package domain

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/questx-lab/raffle/internal/client"
	"github.com/questx-lab/raffle/internal/domain/raffle"
	"github.com/questx-lab/raffle/internal/domain/vrf"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newRaffleRPCClient(t *testing.T, tt *raffleDomainTest) client.RaffleCaller {
	server := rpc.NewServer()
	t.Cleanup(server.Stop)

	rpcName := xcontext.Configs(tt.ctx).RPCServer.RPCName
	require.NoError(t, server.RegisterName(rpcName, NewRaffleRPCServer(tt.ctx, tt.domain)))

	caller := client.NewRaffleCaller(rpc.DialInProc(server))
	t.Cleanup(caller.Close)
	return caller
}

func requireRPCCode(t *testing.T, err error, code errorx.Code) {
	rpcErr, ok := err.(rpc.Error)
	require.True(t, ok, "%v is not an rpc error", err)
	require.Equal(t, int(code), rpcErr.ErrorCode())
}

func TestRaffleRPCServer(t *testing.T) {
	tt := newRaffleDomainTest(t)
	caller := newRaffleRPCClient(t, tt)

	needed, performData, err := caller.CheckUpkeep(tt.ctx, []byte{})
	require.NoError(t, err)
	require.False(t, needed)
	require.Empty(t, performData)

	_, err = caller.PerformUpkeep(tt.ctx, nil)
	requireRPCCode(t, err, errorx.UpkeepNotNeeded)

	_, err = tt.domain.Enter(tt.ctx, &model.EnterRequest{Participant: testPlayer1, Value: testFee})
	require.NoError(t, err)
	tt.clock.Advance(31 * time.Second)

	needed, _, err = caller.CheckUpkeep(tt.ctx, nil)
	require.NoError(t, err)
	require.True(t, needed)

	id, err := caller.PerformUpkeep(tt.ctx, nil)
	require.NoError(t, err)
	pending := tt.coordinator.Pending()
	require.Len(t, pending, 1)
	require.Equal(t, pending[0].String(), id.String())
}

func TestRaffleRPCServer_FulfillRandomWords(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	tt := newRaffleDomainTest(t)

	// A coordinator with its own key delivering remotely.
	remote := vrf.NewMockCoordinator(tt.ctx, key, 0)
	fee, _ := new(big.Int).SetString(testFee, 10)
	d, err := NewRaffleDomain(tt.ctx, raffle.Config{
		EntranceFee:      fee,
		Interval:         time.Second,
		CallbackGasLimit: 500000,
		Coordinator:      remote.Address(),
	}, remote, tt.ledger, WithRaffleClock(tt.clock))
	require.NoError(t, err)
	tt.domain = d

	caller := newRaffleRPCClient(t, tt)
	remote.SetConsumer(client.NewSigningConsumer(caller, key))

	_, err = d.Enter(tt.ctx, &model.EnterRequest{Participant: testPlayer1, Value: testFee})
	require.NoError(t, err)
	tt.clock.Advance(2 * time.Second)

	id, err := caller.PerformUpkeep(tt.ctx, nil)
	require.NoError(t, err)

	// Words signed by another key are rejected.
	stranger, err := crypto.GenerateKey()
	require.NoError(t, err)
	words := []*big.Int{big.NewInt(5)}
	signature, err := vrf.SignFulfillment(stranger, id, words)
	require.NoError(t, err)
	err = caller.FulfillRandomWords(tt.ctx, id, words, signature)
	requireRPCCode(t, err, errorx.OnlyCoordinatorCanFulfill)

	err = caller.FulfillRandomWords(tt.ctx, id, words, []byte{1, 2, 3})
	requireRPCCode(t, err, errorx.OnlyCoordinatorCanFulfill)

	require.NoError(t, remote.Fulfill(tt.ctx, id))
	require.Empty(t, remote.Pending())

	resp, err := d.GetRaffle(tt.ctx, &model.GetRaffleRequest{})
	require.NoError(t, err)
	require.Equal(t, "OPEN", resp.State)
	require.Equal(t, parseTestAddress(testPlayer1), parseTestAddress(resp.RecentWinner))
}

func TestCoordinatorRPCServer(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	ctx := context.Background()
	coordinator := vrf.NewMockCoordinator(ctx, key, 0)

	server := rpc.NewServer()
	t.Cleanup(server.Stop)
	rpcName := xcontext.Configs(ctx).VRF.CoordinatorRPCName
	require.NoError(t, server.RegisterName(rpcName, NewCoordinatorRPCServer(ctx, coordinator)))

	caller := client.NewCoordinatorCaller(rpc.DialInProc(server))
	t.Cleanup(caller.Close)

	id, err := caller.RequestRandomWords(ctx, raffle.RandomWordsRequest{
		SubscriptionID:   1,
		CallbackGasLimit: 500000,
		NumWords:         raffle.NumWords,
	})
	require.NoError(t, err)
	require.Equal(t, "1", id.String())
	require.Len(t, coordinator.Pending(), 1)

	_, err = caller.RequestRandomWords(ctx, raffle.RandomWordsRequest{CallbackGasLimit: 500000})
	requireRPCCode(t, err, errorx.BadRequest)
}

func TestCoordinatorRPCServer_Fulfill(t *testing.T) {
	tt := newRaffleDomainTest(t)

	server := rpc.NewServer()
	t.Cleanup(server.Stop)
	rpcName := xcontext.Configs(tt.ctx).VRF.CoordinatorRPCName
	require.NoError(t, server.RegisterName(rpcName, NewCoordinatorRPCServer(tt.ctx, tt.coordinator)))

	rpcClient := rpc.DialInProc(server)
	t.Cleanup(rpcClient.Close)

	_, err := tt.domain.Enter(tt.ctx, &model.EnterRequest{Participant: testPlayer1, Value: testFee})
	require.NoError(t, err)
	tt.clock.Advance(31 * time.Second)
	id, err := tt.domain.PerformUpkeep(tt.ctx, nil)
	require.NoError(t, err)

	err = rpcClient.CallContext(tt.ctx, nil, rpcName+"_fulfill", (*hexutil.Big)(id))
	require.NoError(t, err)

	resp, err := tt.domain.GetRaffle(tt.ctx, &model.GetRaffleRequest{})
	require.NoError(t, err)
	require.Equal(t, "OPEN", resp.State)
	require.Equal(t, testPlayer1, resp.RecentWinner)

	err = rpcClient.CallContext(tt.ctx, nil, rpcName+"_fulfill", (*hexutil.Big)(id))
	requireRPCCode(t, err, errorx.NotFound)
}
