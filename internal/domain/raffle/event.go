package raffle

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/pkg/enum"
)

type EventType string

var (
	RaffleEnterEvent           = enum.New(EventType("raffle_enter"), "RaffleEnter")
	RequestedRaffleWinnerEvent = enum.New(EventType("requested_raffle_winner"), "RequestedRaffleWinner")
	WinnerPickedEvent          = enum.New(EventType("winner_picked"), "WinnerPicked")
	RaffleResetEvent           = enum.New(EventType("raffle_reset"), "RaffleReset")
)

// Event is a notification for external observers. Only the fields relevant
// to the type are set.
type Event struct {
	Type EventType
	Time time.Time

	// RaffleEnter
	Player common.Address

	// RequestedRaffleWinner, WinnerPicked, RaffleReset
	RequestID *big.Int

	// WinnerPicked
	Winner common.Address
	Prize  *big.Int
}
