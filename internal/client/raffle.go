package client

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/questx-lab/raffle/internal/domain/vrf"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

type RaffleCaller interface {
	CheckUpkeep(ctx context.Context, checkData []byte) (bool, []byte, error)
	PerformUpkeep(ctx context.Context, performData []byte) (*big.Int, error)
	FulfillRandomWords(ctx context.Context, requestID *big.Int, words []*big.Int, signature []byte) error
	Close()
}

type raffleCaller struct {
	client *rpc.Client
}

func NewRaffleCaller(client *rpc.Client) *raffleCaller {
	return &raffleCaller{client: client}
}

func (c *raffleCaller) CheckUpkeep(ctx context.Context, checkData []byte) (bool, []byte, error) {
	var result struct {
		UpkeepNeeded bool          `json:"upkeepNeeded"`
		PerformData  hexutil.Bytes `json:"performData"`
	}

	err := c.client.CallContext(ctx, &result, c.fname(ctx, "checkUpkeep"), hexutil.Bytes(checkData))
	if err != nil {
		return false, nil, err
	}

	return result.UpkeepNeeded, result.PerformData, nil
}

func (c *raffleCaller) PerformUpkeep(ctx context.Context, performData []byte) (*big.Int, error) {
	var requestID hexutil.Big
	err := c.client.CallContext(ctx, &requestID, c.fname(ctx, "performUpkeep"), hexutil.Bytes(performData))
	if err != nil {
		return nil, err
	}

	return requestID.ToInt(), nil
}

func (c *raffleCaller) FulfillRandomWords(
	ctx context.Context, requestID *big.Int, words []*big.Int, signature []byte,
) error {
	hexWords := make([]*hexutil.Big, 0, len(words))
	for _, w := range words {
		hexWords = append(hexWords, (*hexutil.Big)(w))
	}

	args := map[string]any{
		"requestId":   (*hexutil.Big)(requestID),
		"randomWords": hexWords,
		"signature":   hexutil.Bytes(signature),
	}

	return c.client.CallContext(ctx, nil, c.fname(ctx, "fulfillRandomWords"), args)
}

func (c *raffleCaller) Close() {
	c.client.Close()
}

func (c *raffleCaller) fname(ctx context.Context, funcName string) string {
	return fmt.Sprintf("%s_%s", xcontext.Configs(ctx).RPCServer.RPCName, funcName)
}

// SigningConsumer delivers random words to a remote raffle, signed with the
// coordinator key so the raffle can authenticate the delivery.
type SigningConsumer struct {
	caller RaffleCaller
	key    *ecdsa.PrivateKey
}

func NewSigningConsumer(caller RaffleCaller, key *ecdsa.PrivateKey) *SigningConsumer {
	return &SigningConsumer{caller: caller, key: key}
}

func (c *SigningConsumer) FulfillRandomWords(
	ctx context.Context, caller common.Address, requestID *big.Int, words []*big.Int,
) error {
	if signer := crypto.PubkeyToAddress(c.key.PublicKey); caller != signer {
		return fmt.Errorf("cannot sign for %s with the key of %s", caller.Hex(), signer.Hex())
	}

	signature, err := vrf.SignFulfillment(c.key, requestID, words)
	if err != nil {
		return err
	}

	return c.caller.FulfillRandomWords(ctx, requestID, words, signature)
}
