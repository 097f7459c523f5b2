package vrf

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/raffle/internal/domain/raffle"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"golang.org/x/exp/slices"
)

const maxNumWords = 500

type request struct {
	id       *big.Int
	numWords uint32
}

// MockCoordinator is an in-process randomness coordinator for local runs and
// tests. Words are derived from the request id and a seed, so they are
// predictable and must never back a real raffle.
type MockCoordinator struct {
	mutex sync.Mutex

	address  common.Address
	seed     []byte
	consumer raffle.Consumer
	nextID   *big.Int
	requests *xsync.MapOf[string, request]

	// delay > 0 fulfills every request automatically after the delay.
	delay   time.Duration
	rootCtx context.Context
}

func NewMockCoordinator(ctx context.Context, key *ecdsa.PrivateKey, delay time.Duration) *MockCoordinator {
	return &MockCoordinator{
		address:  crypto.PubkeyToAddress(key.PublicKey),
		seed:     crypto.FromECDSA(key),
		nextID:   new(big.Int),
		requests: xsync.NewMapOf[request](),
		delay:    delay,
		rootCtx:  ctx,
	}
}

func (c *MockCoordinator) Address() common.Address {
	return c.address
}

func (c *MockCoordinator) SetConsumer(consumer raffle.Consumer) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.consumer = consumer
}

func (c *MockCoordinator) RequestRandomWords(ctx context.Context, req raffle.RandomWordsRequest) (*big.Int, error) {
	if req.NumWords == 0 || req.NumWords > maxNumWords {
		return nil, errorx.New(errorx.BadRequest, "Number of words must be in [1, %d]", maxNumWords)
	}

	if req.CallbackGasLimit == 0 {
		return nil, errorx.New(errorx.BadRequest, "Callback gas limit must be positive")
	}

	c.mutex.Lock()
	c.nextID.Add(c.nextID, big.NewInt(1))
	id := new(big.Int).Set(c.nextID)
	c.mutex.Unlock()
	c.requests.Store(id.String(), request{id: id, numWords: req.NumWords})

	xcontext.Logger(ctx).Infof("Randomness requested: id=%s, words=%d, sub=%d",
		id, req.NumWords, req.SubscriptionID)

	if c.delay > 0 {
		go c.autoFulfill(id)
	}

	return new(big.Int).Set(id), nil
}

func (c *MockCoordinator) autoFulfill(id *big.Int) {
	time.Sleep(c.delay)
	if err := c.Fulfill(c.rootCtx, id); err != nil {
		xcontext.Logger(c.rootCtx).Errorf("Cannot fulfill request %s: %v", id, err)
	}
}

// Fulfill delivers words derived from the seed.
func (c *MockCoordinator) Fulfill(ctx context.Context, id *big.Int) error {
	req, ok := c.requests.Load(id.String())
	if !ok {
		return errorx.New(errorx.NotFound, "Request %s not found", id)
	}

	return c.FulfillWithWords(ctx, id, ExpandRandomness(c.seed, id, req.numWords))
}

// FulfillWithWords delivers the given words. The request stays pending if the
// consumer rejects them, so the delivery can be retried.
func (c *MockCoordinator) FulfillWithWords(ctx context.Context, id *big.Int, words []*big.Int) error {
	c.mutex.Lock()
	consumer := c.consumer
	c.mutex.Unlock()

	_, ok := c.requests.Load(id.String())

	if !ok {
		return errorx.New(errorx.NotFound, "Request %s not found", id)
	}

	if consumer == nil {
		return errorx.New(errorx.Unavailable, "No consumer registered")
	}

	if err := consumer.FulfillRandomWords(ctx, c.address, id, words); err != nil {
		return err
	}

	c.requests.Delete(id.String())

	xcontext.Logger(ctx).Infof("Randomness fulfilled: id=%s", id)
	return nil
}

// Pending returns the ids of undelivered requests in ascending order.
func (c *MockCoordinator) Pending() []*big.Int {
	ids := []*big.Int{}
	c.requests.Range(func(_ string, req request) bool {
		ids = append(ids, new(big.Int).Set(req.id))
		return true
	})

	slices.SortFunc(ids, func(a, b *big.Int) bool { return a.Cmp(b) < 0 })
	return ids
}
