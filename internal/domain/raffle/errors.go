package raffle

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/pkg/errorx"
)

var (
	ErrInsufficientPayment       = errorx.New(errorx.InsufficientPayment, "Not enough value to enter the raffle")
	ErrRaffleNotOpen             = errorx.New(errorx.RaffleNotOpen, "Raffle is not open")
	ErrUpkeepNotNeeded           = errorx.New(errorx.UpkeepNotNeeded, "Upkeep is not needed")
	ErrUnknownRequest            = errorx.New(errorx.UnknownRequest, "Unknown randomness request")
	ErrOnlyCoordinatorCanFulfill = errorx.New(errorx.OnlyCoordinatorCanFulfill, "Only the coordinator can fulfill")
	ErrEmptyRandomWords          = errorx.New(errorx.EmptyRandomWords, "Random words must not be empty")
	ErrPayoutTransferFailed      = errorx.New(errorx.PayoutTransferFailed, "Transfer to the winner failed")
	ErrPlayerIndexOutOfRange     = errorx.New(errorx.OutOfRange, "Player index is out of range")
	ErrNotOperator               = errorx.New(errorx.NotOperator, "Only the operator can reset the raffle")
	ErrRaffleNotCalculating      = errorx.New(errorx.RaffleNotCalculating, "Raffle is not calculating")
	ErrGracePeriodNotElapsed     = errorx.New(errorx.GracePeriodNotElapsed, "Grace period has not elapsed")
)

// UpkeepNotNeededError carries the state that made the upkeep check fail.
type UpkeepNotNeededError struct {
	Balance *big.Int
	Players int
	State   State
}

func (e *UpkeepNotNeededError) Error() string {
	return fmt.Sprintf("Upkeep is not needed (balance=%s, players=%d, state=%s)",
		e.Balance, e.Players, e.State)
}

func (e *UpkeepNotNeededError) Unwrap() error {
	return ErrUpkeepNotNeeded
}

func (e *UpkeepNotNeededError) ErrorCode() int {
	return int(errorx.UpkeepNotNeeded)
}

// PayoutTransferFailedError wraps the payer error of a reverted fulfillment.
type PayoutTransferFailedError struct {
	Winner common.Address
	Prize  *big.Int
	Err    error
}

func (e *PayoutTransferFailedError) Error() string {
	return fmt.Sprintf("Cannot transfer %s wei to %s: %v", e.Prize, e.Winner.Hex(), e.Err)
}

func (e *PayoutTransferFailedError) Unwrap() error {
	return e.Err
}

// Is matches ErrPayoutTransferFailed, Unwrap reaches the cause.
func (e *PayoutTransferFailedError) Is(target error) bool {
	return errors.Is(ErrPayoutTransferFailed, target)
}

func (e *PayoutTransferFailedError) ErrorCode() int {
	return int(errorx.PayoutTransferFailed)
}
