package domain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/questx-lab/raffle/internal/domain/raffle"
	"github.com/questx-lab/raffle/internal/domain/vrf"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

type CheckUpkeepResult struct {
	UpkeepNeeded bool          `json:"upkeepNeeded"`
	PerformData  hexutil.Bytes `json:"performData"`
}

type FulfillRandomWordsArgs struct {
	RequestID   *hexutil.Big   `json:"requestId"`
	RandomWords []*hexutil.Big `json:"randomWords"`
	Signature   hexutil.Bytes  `json:"signature"`
}

// RaffleRPCServer exposes the keeper and coordinator side of the raffle over
// JSON-RPC. Methods are served as <namespace>_checkUpkeep and so on.
type RaffleRPCServer struct {
	rootCtx context.Context
	raffle  RaffleDomain
}

func NewRaffleRPCServer(ctx context.Context, raffle RaffleDomain) *RaffleRPCServer {
	return &RaffleRPCServer{rootCtx: ctx, raffle: raffle}
}

func (s *RaffleRPCServer) CheckUpkeep(ctx context.Context, checkData hexutil.Bytes) (*CheckUpkeepResult, error) {
	needed, performData, err := s.raffle.CheckUpkeep(s.withRoot(ctx), checkData)
	if err != nil {
		return nil, err
	}

	return &CheckUpkeepResult{UpkeepNeeded: needed, PerformData: performData}, nil
}

func (s *RaffleRPCServer) PerformUpkeep(ctx context.Context, performData hexutil.Bytes) (*hexutil.Big, error) {
	requestID, err := s.raffle.PerformUpkeep(s.withRoot(ctx), performData)
	if err != nil {
		return nil, err
	}

	return (*hexutil.Big)(requestID), nil
}

// FulfillRandomWords delivers random words. The caller is the address that
// signed the words, see vrf.SignFulfillment.
func (s *RaffleRPCServer) FulfillRandomWords(ctx context.Context, args FulfillRandomWordsArgs) error {
	ctx = s.withRoot(ctx)
	if args.RequestID == nil {
		return raffle.ErrUnknownRequest
	}

	requestID := args.RequestID.ToInt()
	words := make([]*big.Int, 0, len(args.RandomWords))
	for _, w := range args.RandomWords {
		if w == nil {
			return errorx.New(errorx.BadRequest, "Random word must not be null")
		}
		words = append(words, w.ToInt())
	}

	caller, err := vrf.RecoverFulfiller(requestID, words, args.Signature)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Invalid fulfillment signature for request %s: %v", requestID, err)
		return raffle.ErrOnlyCoordinatorCanFulfill
	}

	return s.raffle.FulfillRandomWords(ctx, caller, requestID, words)
}

// withRoot gives rpc handlers the configs and logger of the service.
func (s *RaffleRPCServer) withRoot(ctx context.Context) context.Context {
	return withRootValues(s.rootCtx, ctx)
}

type RandomWordsArgs struct {
	KeyHash              common.Hash    `json:"keyHash"`
	SubscriptionID       hexutil.Uint64 `json:"subId"`
	RequestConfirmations hexutil.Uint64 `json:"requestConfirmations"`
	CallbackGasLimit     hexutil.Uint64 `json:"callbackGasLimit"`
	NumWords             hexutil.Uint64 `json:"numWords"`
}

// CoordinatorRPCServer serves a randomness coordinator over JSON-RPC.
type CoordinatorRPCServer struct {
	rootCtx     context.Context
	coordinator raffle.RandomnessClient
}

func NewCoordinatorRPCServer(ctx context.Context, coordinator raffle.RandomnessClient) *CoordinatorRPCServer {
	return &CoordinatorRPCServer{rootCtx: ctx, coordinator: coordinator}
}

func (s *CoordinatorRPCServer) RequestRandomWords(ctx context.Context, args RandomWordsArgs) (*hexutil.Big, error) {
	if uint64(args.RequestConfirmations) > 0xffff || uint64(args.CallbackGasLimit) > 0xffffffff ||
		uint64(args.NumWords) > 0xffffffff {
		return nil, errorx.New(errorx.BadRequest, "Request parameter is out of range")
	}

	id, err := s.coordinator.RequestRandomWords(withRootValues(s.rootCtx, ctx), raffle.RandomWordsRequest{
		KeyHash:              args.KeyHash,
		SubscriptionID:       uint64(args.SubscriptionID),
		RequestConfirmations: uint16(args.RequestConfirmations),
		CallbackGasLimit:     uint32(args.CallbackGasLimit),
		NumWords:             uint32(args.NumWords),
	})
	if err != nil {
		return nil, err
	}

	return (*hexutil.Big)(id), nil
}

// Fulfiller is a coordinator whose pending requests can be delivered on demand.
type Fulfiller interface {
	Fulfill(ctx context.Context, requestID *big.Int) error
}

// Fulfill delivers the words of a pending request now. Only coordinators that
// produce their own words support it.
func (s *CoordinatorRPCServer) Fulfill(ctx context.Context, requestID *hexutil.Big) error {
	fulfiller, ok := s.coordinator.(Fulfiller)
	if !ok {
		return errorx.New(errorx.NotImplemented, "Coordinator cannot fulfill on demand")
	}

	if requestID == nil {
		return errorx.New(errorx.BadRequest, "Missing request id")
	}

	return fulfiller.Fulfill(withRootValues(s.rootCtx, ctx), requestID.ToInt())
}

func withRootValues(root, ctx context.Context) context.Context {
	ctx = xcontext.WithConfigs(ctx, xcontext.Configs(root))
	ctx = xcontext.WithLogger(ctx, xcontext.Logger(root))
	if db := xcontext.DB(root); db != nil {
		ctx = xcontext.WithDB(ctx, db)
	}

	return ctx
}
