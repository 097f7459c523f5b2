package raffle

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/config"
)

// NumWords is the number of random words requested per draw.
const NumWords uint32 = 1

// Config is fixed for the lifetime of a raffle.
type Config struct {
	EntranceFee *big.Int
	Interval    time.Duration

	// Oracle routing, passed through to the randomness client untouched.
	KeyHash              common.Hash
	SubscriptionID       uint64
	CallbackGasLimit     uint32
	RequestConfirmations uint16

	// Coordinator is the only address allowed to deliver randomness.
	Coordinator common.Address

	// Operator may force a stuck draw back to OPEN once GracePeriod has passed
	// since the randomness request. A zero Operator disables the hatch.
	Operator    common.Address
	GracePeriod time.Duration
}

func (c Config) Validate() error {
	if c.EntranceFee == nil || c.EntranceFee.Sign() < 0 {
		return fmt.Errorf("entrance fee must be a non-negative amount")
	}

	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}

	if c.Coordinator == (common.Address{}) {
		return fmt.Errorf("coordinator address is required")
	}

	if c.GracePeriod < 0 {
		return fmt.Errorf("grace period must not be negative")
	}

	return nil
}

// ConfigFromConfigs builds the raffle parameters out of the service configs.
func ConfigFromConfigs(cfg config.Configs) (Config, error) {
	fee, ok := new(big.Int).SetString(cfg.Raffle.EntranceFee, 10)
	if !ok {
		return Config{}, fmt.Errorf("invalid entrance fee %q", cfg.Raffle.EntranceFee)
	}

	if cfg.VRF.Coordinator != "" && !common.IsHexAddress(cfg.VRF.Coordinator) {
		return Config{}, fmt.Errorf("invalid coordinator address %q", cfg.VRF.Coordinator)
	}

	if cfg.Raffle.Operator != "" && !common.IsHexAddress(cfg.Raffle.Operator) {
		return Config{}, fmt.Errorf("invalid operator address %q", cfg.Raffle.Operator)
	}

	c := Config{
		EntranceFee:          fee,
		Interval:             cfg.Raffle.Interval,
		KeyHash:              common.HexToHash(cfg.VRF.KeyHash),
		SubscriptionID:       cfg.VRF.SubscriptionID,
		CallbackGasLimit:     cfg.VRF.CallbackGasLimit,
		RequestConfirmations: cfg.VRF.RequestConfirmations,
		Coordinator:          common.HexToAddress(cfg.VRF.Coordinator),
		Operator:             common.HexToAddress(cfg.Raffle.Operator),
		GracePeriod:          cfg.Raffle.GracePeriod,
	}

	return c, nil
}
