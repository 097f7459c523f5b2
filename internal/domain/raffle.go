package domain

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/internal/domain/raffle"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/pubsub"
	"github.com/questx-lab/raffle/pkg/ws"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

type RaffleDomain interface {
	Enter(context.Context, *model.EnterRequest) (*model.EnterResponse, error)
	GetRaffle(context.Context, *model.GetRaffleRequest) (*model.GetRaffleResponse, error)
	GetPlayer(context.Context, *model.GetPlayerRequest) (*model.GetPlayerResponse, error)
	GetUpkeep(context.Context, *model.CheckUpkeepRequest) (*model.CheckUpkeepResponse, error)
	ForceReset(context.Context, *model.ForceResetRequest) (*model.ForceResetResponse, error)
	ServeEvents(context.Context, *websocket.Conn) error

	// Keeper and coordinator side.
	CheckUpkeep(ctx context.Context, checkData []byte) (bool, []byte, error)
	PerformUpkeep(ctx context.Context, performData []byte) (*big.Int, error)
	FulfillRandomWords(ctx context.Context, caller ethcommon.Address, requestID *big.Int, words []*big.Int) error
}

// raffleDomain serializes every mutating call to the raffle. The raffle itself
// is not safe for concurrent use, and reentrant calls made by the payer must go
// to the raffle directly rather than through this domain.
//
// Reads never take the mutex. They are served from the snapshot stored after
// the last mutating call.
type raffleDomain struct {
	mutex    sync.Mutex
	raffle   *raffle.Raffle
	snapshot atomic.Pointer[raffle.Snapshot]
	clock    raffle.Clock
	hub      *ws.Hub
}

type RaffleDomainOption func(*raffleDomainOptions)

type raffleDomainOptions struct {
	publisher pubsub.Publisher
	hub       *ws.Hub
	clock     raffle.Clock
}

// WithEventPublisher publishes every event to the kafka topic of the configs.
func WithEventPublisher(publisher pubsub.Publisher) RaffleDomainOption {
	return func(o *raffleDomainOptions) {
		o.publisher = publisher
	}
}

// WithEventHub streams every event to the websocket observers of hub.
func WithEventHub(hub *ws.Hub) RaffleDomainOption {
	return func(o *raffleDomainOptions) {
		o.hub = hub
	}
}

func WithRaffleClock(clock raffle.Clock) RaffleDomainOption {
	return func(o *raffleDomainOptions) {
		o.clock = clock
	}
}

func NewRaffleDomain(
	ctx context.Context,
	cfg raffle.Config,
	randomness raffle.RandomnessClient,
	payer raffle.Payer,
	opts ...RaffleDomainOption,
) (*raffleDomain, error) {
	options := raffleDomainOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}

	emitter := newEventPublisher(node, options.publisher, xcontext.Configs(ctx).Kafka.Topic, options.hub)
	if options.clock == nil {
		options.clock = raffle.SystemClock{}
	}

	r, err := raffle.New(cfg, randomness, payer,
		raffle.WithEmitter(emitter), raffle.WithClock(options.clock))
	if err != nil {
		return nil, err
	}

	d := &raffleDomain{raffle: r, clock: options.clock, hub: options.hub}
	d.storeSnapshot()
	return d, nil
}

// storeSnapshot must be called with the mutex held.
func (d *raffleDomain) storeSnapshot() {
	snapshot := d.raffle.Snapshot()
	d.snapshot.Store(&snapshot)
}

func (d *raffleDomain) Enter(ctx context.Context, req *model.EnterRequest) (*model.EnterResponse, error) {
	participant, err := parseAddress(req.Participant)
	if err != nil {
		return nil, err
	}

	value, err := parseWei(req.Value)
	if err != nil {
		return nil, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()
	defer d.storeSnapshot()

	err = d.raffle.Enter(ctx, participant, value)
	common.PromCounters[common.RaffleEntryTotal].WithLabelValues(common.ResultLabel(err)).Inc()
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot enter the raffle: %v", err)
		return nil, err
	}

	return &model.EnterResponse{}, nil
}

func (d *raffleDomain) GetRaffle(ctx context.Context, req *model.GetRaffleRequest) (*model.GetRaffleResponse, error) {
	snapshot := d.snapshot.Load()

	players := make([]string, 0, len(snapshot.Players))
	for _, p := range snapshot.Players {
		players = append(players, p.Hex())
	}

	return &model.GetRaffleResponse{
		EntranceFee:      snapshot.EntranceFee.String(),
		Interval:         int64(snapshot.Interval.Seconds()),
		State:            snapshot.State.String(),
		Players:          players,
		NumberOfPlayers:  len(players),
		Balance:          snapshot.Balance.String(),
		LastTimestamp:    snapshot.LastTimestamp,
		RecentWinner:     snapshot.RecentWinner.Hex(),
		PendingRequestID: bigString(snapshot.PendingRequestID),
	}, nil
}

func (d *raffleDomain) GetPlayer(ctx context.Context, req *model.GetPlayerRequest) (*model.GetPlayerResponse, error) {
	player, err := d.snapshot.Load().Player(req.Index)
	if err != nil {
		return nil, err
	}

	return &model.GetPlayerResponse{Player: player.Hex()}, nil
}

func (d *raffleDomain) GetUpkeep(ctx context.Context, req *model.CheckUpkeepRequest) (*model.CheckUpkeepResponse, error) {
	needed, _, err := d.CheckUpkeep(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &model.CheckUpkeepResponse{UpkeepNeeded: needed}, nil
}

func (d *raffleDomain) ForceReset(ctx context.Context, req *model.ForceResetRequest) (*model.ForceResetResponse, error) {
	caller, err := parseAddress(xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, errorx.New(errorx.Unauthenticated, "Unknown caller")
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()
	defer d.storeSnapshot()

	if err := d.raffle.ForceReset(ctx, caller); err != nil {
		xcontext.Logger(ctx).Warnf("Operator %s cannot reset the raffle: %v", caller.Hex(), err)
		return nil, err
	}

	xcontext.Logger(ctx).Warnf("Raffle is reset by operator %s", caller.Hex())
	return &model.ForceResetResponse{}, nil
}

// ServeEvents streams raffle events to conn until the client leaves. Passing
// compression=true in the query compresses every message with zlib.
func (d *raffleDomain) ServeEvents(ctx context.Context, conn *websocket.Conn) error {
	if d.hub == nil {
		return errorx.New(errorx.Unavailable, "Event stream is disabled")
	}

	compression := false
	if req := xcontext.HTTPRequest(ctx); req != nil {
		compression = req.URL.Query().Get("compression") == "true"
	}

	client := ws.NewClient(conn, compression)
	d.hub.Register(client)
	defer d.hub.Unregister(client)

	return client.Serve(ctx)
}

func (d *raffleDomain) CheckUpkeep(ctx context.Context, checkData []byte) (bool, []byte, error) {
	return d.snapshot.Load().UpkeepNeeded(d.clock.Now()), []byte{}, nil
}

func (d *raffleDomain) PerformUpkeep(ctx context.Context, performData []byte) (*big.Int, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	defer d.storeSnapshot()

	requestID, err := d.raffle.PerformUpkeep(ctx, performData)
	common.PromCounters[common.RaffleDrawTotal].WithLabelValues(common.ResultLabel(err)).Inc()
	if err != nil {
		if errors.Is(err, raffle.ErrUpkeepNotNeeded) {
			xcontext.Logger(ctx).Debugf("Skip performing upkeep: %v", err)
		}
		return nil, err
	}

	xcontext.Logger(ctx).Infof("Requested a winner, request id = %s", requestID)
	return requestID, nil
}

func (d *raffleDomain) FulfillRandomWords(
	ctx context.Context, caller ethcommon.Address, requestID *big.Int, words []*big.Int,
) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	defer d.storeSnapshot()

	err := d.raffle.FulfillRandomWords(ctx, caller, requestID, words)
	common.PromCounters[common.RaffleFulfillmentTotal].WithLabelValues(common.ResultLabel(err)).Inc()
	switch {
	case err == nil:
		xcontext.Logger(ctx).Infof("Request %s is fulfilled, winner is %s",
			requestID, d.raffle.RecentWinner().Hex())
	case errors.Is(err, raffle.ErrOnlyCoordinatorCanFulfill), errors.Is(err, raffle.ErrUnknownRequest):
		xcontext.Logger(ctx).Warnf("Rejected fulfillment from %s: %v", caller.Hex(), err)
	case errors.Is(err, raffle.ErrEmptyRandomWords):
		xcontext.Logger(ctx).Debugf("Rejected fulfillment: %v", err)
	}

	return err
}
