package raffle

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/config"
	"github.com/stretchr/testify/require"
)

func TestConfigFromConfigs(t *testing.T) {
	cfg := config.Default()
	cfg.Raffle.EntranceFee = "20000000000000000"
	cfg.Raffle.Interval = time.Minute
	cfg.Raffle.Operator = testOperator.Hex()
	cfg.VRF.Coordinator = testCoordinator.Hex()
	cfg.VRF.KeyHash = testKeyHash.Hex()
	cfg.VRF.SubscriptionID = 7

	c, err := ConfigFromConfigs(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	require.Equal(t, big.NewInt(20000000000000000), c.EntranceFee)
	require.Equal(t, time.Minute, c.Interval)
	require.Equal(t, testCoordinator, c.Coordinator)
	require.Equal(t, testOperator, c.Operator)
	require.Equal(t, testKeyHash, c.KeyHash)
	require.Equal(t, uint64(7), c.SubscriptionID)
	require.Equal(t, cfg.VRF.CallbackGasLimit, c.CallbackGasLimit)
	require.Equal(t, cfg.VRF.RequestConfirmations, c.RequestConfirmations)
	require.Equal(t, cfg.Raffle.GracePeriod, c.GracePeriod)
}

func TestConfigFromConfigs_Invalid(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*config.Configs)
	}{
		{
			name:   "fee is not a number",
			modify: func(c *config.Configs) { c.Raffle.EntranceFee = "0.01 ether" },
		},
		{
			name:   "bad coordinator",
			modify: func(c *config.Configs) { c.VRF.Coordinator = "coordinator" },
		},
		{
			name:   "bad operator",
			modify: func(c *config.Configs) { c.Raffle.Operator = "0x1234" },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.VRF.Coordinator = testCoordinator.Hex()
			tc.modify(&cfg)

			_, err := ConfigFromConfigs(cfg)
			require.Error(t, err)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		EntranceFee: big.NewInt(1),
		Interval:    time.Second,
		Coordinator: testCoordinator,
	}
	require.NoError(t, valid.Validate())

	c := valid
	c.EntranceFee = nil
	require.Error(t, c.Validate())

	c = valid
	c.Interval = 0
	require.Error(t, c.Validate())

	c = valid
	c.Coordinator = common.Address{}
	require.Error(t, c.Validate())

	c = valid
	c.GracePeriod = -time.Second
	require.Error(t, c.Validate())
}
