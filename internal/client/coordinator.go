package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/questx-lab/raffle/internal/domain/raffle"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

// CoordinatorCaller requests randomness from a remote coordinator.
type CoordinatorCaller interface {
	RequestRandomWords(ctx context.Context, req raffle.RandomWordsRequest) (*big.Int, error)
	Close()
}

type coordinatorCaller struct {
	client *rpc.Client
}

func NewCoordinatorCaller(client *rpc.Client) *coordinatorCaller {
	return &coordinatorCaller{client: client}
}

func (c *coordinatorCaller) RequestRandomWords(ctx context.Context, req raffle.RandomWordsRequest) (*big.Int, error) {
	args := map[string]any{
		"keyHash":              req.KeyHash,
		"subId":                hexutil.Uint64(req.SubscriptionID),
		"requestConfirmations": hexutil.Uint64(req.RequestConfirmations),
		"callbackGasLimit":     hexutil.Uint64(req.CallbackGasLimit),
		"numWords":             hexutil.Uint64(req.NumWords),
	}

	var requestID hexutil.Big
	if err := c.client.CallContext(ctx, &requestID, c.fname(ctx, "requestRandomWords"), args); err != nil {
		return nil, err
	}

	return requestID.ToInt(), nil
}

func (c *coordinatorCaller) Close() {
	c.client.Close()
}

func (c *coordinatorCaller) fname(ctx context.Context, funcName string) string {
	return fmt.Sprintf("%s_%s", xcontext.Configs(ctx).VRF.CoordinatorRPCName, funcName)
}
