package cron

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

// Keeper is the automation surface of a raffle, local or remote.
type Keeper interface {
	CheckUpkeep(ctx context.Context, checkData []byte) (bool, []byte, error)
	PerformUpkeep(ctx context.Context, performData []byte) (*big.Int, error)
}

// UpkeepCronJob polls CheckUpkeep and starts a draw when it is needed.
type UpkeepCronJob struct {
	keeper Keeper
	period time.Duration
}

func NewUpkeepCronJob(keeper Keeper, period time.Duration) *UpkeepCronJob {
	return &UpkeepCronJob{keeper: keeper, period: period}
}

func (job *UpkeepCronJob) Do(ctx context.Context) {
	needed, performData, err := job.keeper.CheckUpkeep(ctx, []byte{})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check upkeep: %v", err)
		return
	}

	if !needed {
		return
	}

	requestID, err := job.keeper.PerformUpkeep(ctx, performData)
	if err != nil {
		// Someone else may have started the draw between the two calls.
		if isUpkeepNotNeeded(err) {
			xcontext.Logger(ctx).Debugf("Upkeep is not needed anymore: %v", err)
			return
		}

		xcontext.Logger(ctx).Errorf("Cannot perform upkeep: %v", err)
		return
	}

	xcontext.Logger(ctx).Infof("Performed upkeep, request id = %s", requestID)
}

func (job *UpkeepCronJob) RunNow() bool {
	return true
}

func (job *UpkeepCronJob) Next() time.Time {
	return time.Now().Add(job.period)
}

// isUpkeepNotNeeded also matches the error code returned by a remote raffle.
func isUpkeepNotNeeded(err error) bool {
	var coder errorx.Coder
	return errors.As(err, &coder) && coder.ErrorCode() == int(errorx.UpkeepNotNeeded)
}
