package raffle

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

// FulfillRandomWords resolves the pending draw with the delivered words and
// pays the whole balance to the winner.
//
// The raffle is reset before the payer is invoked, so anything the payment
// triggers sees a fresh OPEN raffle with no players and no pending request.
// If the payment fails the whole call is reverted and the raffle stays
// CALCULATING until the operator resets it.
func (r *Raffle) FulfillRandomWords(
	ctx context.Context, caller common.Address, requestID *big.Int, words []*big.Int,
) error {
	return r.atomically(ctx, func() error {
		if caller != r.cfg.Coordinator {
			return errorx.New(errorx.OnlyCoordinatorCanFulfill,
				"Caller %s is not the coordinator", caller.Hex())
		}

		if r.state != Calculating || r.pending == nil || requestID == nil ||
			r.pending.ID.Cmp(requestID) != 0 {
			return errorx.New(errorx.UnknownRequest, "Unknown randomness request %v", requestID)
		}

		if len(words) == 0 || words[0] == nil {
			return ErrEmptyRandomWords
		}

		if len(r.players) == 0 {
			// Entries are blocked while calculating, so this means broken wiring.
			return errorx.New(errorx.Internal, "No players for request %s", requestID)
		}

		index := pickWinnerIndex(words[0], len(r.players))
		winner := r.players[index]
		prize := r.balance

		r.recentWinner = winner
		r.players = []common.Address{}
		r.state = Open
		r.lastTimestamp = r.clock.Now()
		r.pending = nil
		r.balance = new(big.Int)
		r.emit(Event{
			Type:      WinnerPickedEvent,
			RequestID: new(big.Int).Set(requestID),
			Winner:    winner,
			Prize:     new(big.Int).Set(prize),
		})

		if err := r.payer.Send(ctx, winner, prize); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot pay %s wei to %s: %v", prize, winner.Hex(), err)
			return &PayoutTransferFailedError{Winner: winner, Prize: new(big.Int).Set(prize), Err: err}
		}

		return nil
	})
}

// pickWinnerIndex returns word mod n.
func pickWinnerIndex(word *big.Int, n int) int {
	return int(new(big.Int).Mod(word, big.NewInt(int64(n))).Int64())
}
