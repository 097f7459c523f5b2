package raffle

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/pkg/errorx"
)

// ForceReset returns a stuck draw to OPEN. Players and balance are kept and
// the pending request is dropped, so a late delivery for it is rejected.
func (r *Raffle) ForceReset(ctx context.Context, caller common.Address) error {
	return r.atomically(ctx, func() error {
		if r.cfg.Operator == (common.Address{}) || caller != r.cfg.Operator {
			return errorx.New(errorx.NotOperator, "Caller %s is not the operator", caller.Hex())
		}

		if r.state != Calculating || r.pending == nil {
			return errorx.New(errorx.RaffleNotCalculating, "Raffle is %s", r.state)
		}

		now := r.clock.Now()
		if elapsed := now.Sub(r.pending.RequestedAt); elapsed < r.cfg.GracePeriod {
			return errorx.New(errorx.GracePeriodNotElapsed,
				"Request is %s old, the grace period is %s", elapsed, r.cfg.GracePeriod)
		}

		requestID := r.pending.ID
		r.state = Open
		r.pending = nil
		r.lastTimestamp = now
		r.emit(Event{Type: RaffleResetEvent, RequestID: requestID})
		return nil
	})
}
