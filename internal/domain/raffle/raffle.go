package raffle

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

type pendingRequest struct {
	ID          *big.Int
	RequestedAt time.Time
}

// Raffle is a single-winner lottery driven by an external keeper and an
// external randomness coordinator.
//
// Every public call either fully applies or leaves no trace: state is
// snapshotted on entry and restored on error, and events are published only
// after the outermost call succeeds. Raffle is not safe for concurrent use;
// the owner must serialize calls. Calls made from inside the payer (reentrant
// calls) run nested within the outer call on the same goroutine.
type Raffle struct {
	cfg        Config
	randomness RandomnessClient
	payer      Payer
	emitter    Emitter
	clock      Clock

	state         State
	players       []common.Address
	balance       *big.Int
	lastTimestamp time.Time
	recentWinner  common.Address
	pending       *pendingRequest

	depth   int
	journal []Event
}

type Option func(*Raffle)

func WithClock(clock Clock) Option {
	return func(r *Raffle) {
		r.clock = clock
	}
}

func WithEmitter(emitter Emitter) Option {
	return func(r *Raffle) {
		r.emitter = emitter
	}
}

func New(cfg Config, randomness RandomnessClient, payer Payer, opts ...Option) (*Raffle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Raffle{
		cfg:        cfg,
		randomness: randomness,
		payer:      payer,
		emitter:    nopEmitter{},
		clock:      SystemClock{},
		state:      Open,
		players:    []common.Address{},
		balance:    new(big.Int),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.lastTimestamp = r.clock.Now()
	return r, nil
}

// Enter adds one entry for participant. Entering several times gives several
// independent slots.
func (r *Raffle) Enter(ctx context.Context, participant common.Address, value *big.Int) error {
	return r.atomically(ctx, func() error {
		if value == nil || value.Cmp(r.cfg.EntranceFee) < 0 {
			return errorx.New(errorx.InsufficientPayment,
				"Entrance fee is %s wei, got %s wei", r.cfg.EntranceFee, value)
		}

		if r.state != Open {
			return errorx.New(errorx.RaffleNotOpen, "Raffle is %s", r.state)
		}

		r.players = append(r.players, participant)
		r.balance.Add(r.balance, value)
		r.emit(Event{Type: RaffleEnterEvent, Player: participant})
		return nil
	})
}

// CheckUpkeep reports whether a draw should start now. It never changes
// state; checkData is ignored and the returned performData is always empty.
func (r *Raffle) CheckUpkeep(_ context.Context, _ []byte) (bool, []byte) {
	return r.upkeepNeeded(), []byte{}
}

func (r *Raffle) upkeepNeeded() bool {
	return upkeepNeeded(r.clock.Now(), r.lastTimestamp, r.cfg.Interval, r.state, len(r.players), r.balance)
}

func upkeepNeeded(
	now, lastTimestamp time.Time, interval time.Duration, state State, players int, balance *big.Int,
) bool {
	timePassed := now.Sub(lastTimestamp) > interval
	isOpen := state == Open
	hasPlayers := players > 0
	hasBalance := balance != nil && balance.Sign() > 0
	return timePassed && isOpen && hasPlayers && hasBalance
}

// PerformUpkeep starts a draw. The upkeep condition is evaluated again here,
// the caller's own check may be stale.
func (r *Raffle) PerformUpkeep(ctx context.Context, _ []byte) (*big.Int, error) {
	var requestID *big.Int
	err := r.atomically(ctx, func() error {
		if !r.upkeepNeeded() {
			return &UpkeepNotNeededError{
				Balance: new(big.Int).Set(r.balance),
				Players: len(r.players),
				State:   r.state,
			}
		}

		r.state = Calculating
		id, err := r.randomness.RequestRandomWords(ctx, RandomWordsRequest{
			KeyHash:              r.cfg.KeyHash,
			SubscriptionID:       r.cfg.SubscriptionID,
			RequestConfirmations: r.cfg.RequestConfirmations,
			CallbackGasLimit:     r.cfg.CallbackGasLimit,
			NumWords:             NumWords,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot request random words: %v", err)
			return errorx.New(errorx.Unavailable, "Cannot request randomness: %v", err)
		}

		if id == nil {
			return errorx.New(errorx.Internal, "Randomness client returned no request id")
		}

		r.pending = &pendingRequest{ID: new(big.Int).Set(id), RequestedAt: r.clock.Now()}
		r.emit(Event{Type: RequestedRaffleWinnerEvent, RequestID: new(big.Int).Set(id)})
		requestID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	return requestID, nil
}

func (r *Raffle) EntranceFee() *big.Int {
	return new(big.Int).Set(r.cfg.EntranceFee)
}

func (r *Raffle) Interval() time.Duration {
	return r.cfg.Interval
}

func (r *Raffle) Player(index int) (common.Address, error) {
	return Snapshot{Players: r.players}.Player(index)
}

func (r *Raffle) NumberOfPlayers() int {
	return len(r.players)
}

func (r *Raffle) LastTimestamp() time.Time {
	return r.lastTimestamp
}

func (r *Raffle) State() State {
	return r.state
}

func (r *Raffle) RecentWinner() common.Address {
	return r.recentWinner
}

func (r *Raffle) Balance() *big.Int {
	return new(big.Int).Set(r.balance)
}

// PendingRequestID returns nil when no draw is in progress.
func (r *Raffle) PendingRequestID() *big.Int {
	if r.pending == nil {
		return nil
	}

	return new(big.Int).Set(r.pending.ID)
}

type Snapshot struct {
	EntranceFee      *big.Int
	Interval         time.Duration
	State            State
	Players          []common.Address
	Balance          *big.Int
	LastTimestamp    time.Time
	RecentWinner     common.Address
	PendingRequestID *big.Int
	RequestedAt      time.Time
}

// UpkeepNeeded is CheckUpkeep evaluated on the snapshot at now.
func (s Snapshot) UpkeepNeeded(now time.Time) bool {
	return upkeepNeeded(now, s.LastTimestamp, s.Interval, s.State, len(s.Players), s.Balance)
}

func (s Snapshot) Player(index int) (common.Address, error) {
	if index < 0 || index >= len(s.Players) {
		return common.Address{}, errorx.New(errorx.OutOfRange,
			"Player index %d is out of range [0, %d)", index, len(s.Players))
	}

	return s.Players[index], nil
}

func (r *Raffle) Snapshot() Snapshot {
	s := Snapshot{
		EntranceFee:   r.EntranceFee(),
		Interval:      r.cfg.Interval,
		State:         r.state,
		Players:       append([]common.Address{}, r.players...),
		Balance:       r.Balance(),
		LastTimestamp: r.lastTimestamp,
		RecentWinner:  r.recentWinner,
	}

	if r.pending != nil {
		s.PendingRequestID = new(big.Int).Set(r.pending.ID)
		s.RequestedAt = r.pending.RequestedAt
	}

	return s
}

type checkpoint struct {
	state         State
	players       []common.Address
	balance       *big.Int
	lastTimestamp time.Time
	recentWinner  common.Address
	pending       *pendingRequest
	journalLen    int
}

func (r *Raffle) checkpoint() checkpoint {
	return checkpoint{
		state:         r.state,
		players:       append([]common.Address{}, r.players...),
		balance:       new(big.Int).Set(r.balance),
		lastTimestamp: r.lastTimestamp,
		recentWinner:  r.recentWinner,
		pending:       r.pending,
		journalLen:    len(r.journal),
	}
}

func (r *Raffle) revert(c checkpoint) {
	r.state = c.state
	r.players = c.players
	r.balance = c.balance
	r.lastTimestamp = c.lastTimestamp
	r.recentWinner = c.recentWinner
	r.pending = c.pending
	r.journal = r.journal[:c.journalLen]
}

// atomically runs fn as one call. On error every change fn made, including
// the ones of nested calls, is reverted. Events are published once the
// outermost call returns successfully.
func (r *Raffle) atomically(ctx context.Context, fn func() error) error {
	c := r.checkpoint()

	r.depth++
	err := fn()
	r.depth--

	if err != nil {
		r.revert(c)
		return err
	}

	if r.depth == 0 {
		events := r.journal
		r.journal = nil
		for _, e := range events {
			r.emitter.Emit(ctx, e)
		}
	}

	return nil
}

func (r *Raffle) emit(e Event) {
	e.Time = r.clock.Now()
	r.journal = append(r.journal, e)
}
