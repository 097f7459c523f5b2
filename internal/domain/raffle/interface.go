package raffle

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type RandomWordsRequest struct {
	KeyHash              common.Hash
	SubscriptionID       uint64
	RequestConfirmations uint16
	CallbackGasLimit     uint32
	NumWords             uint32
}

// RandomnessClient submits a randomness request and returns its handle. The
// words are delivered later through FulfillRandomWords.
type RandomnessClient interface {
	RequestRandomWords(ctx context.Context, req RandomWordsRequest) (*big.Int, error)
}

// Consumer is the callback side of the randomness protocol.
type Consumer interface {
	FulfillRandomWords(ctx context.Context, caller common.Address, requestID *big.Int, words []*big.Int) error
}

// Payer sends value to an address. A returned error means nothing was sent;
// nil means the value left and will not be sent again.
type Payer interface {
	Send(ctx context.Context, to common.Address, amount *big.Int) error
}

// Emitter receives events of successful calls only.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, Event) {}
