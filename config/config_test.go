package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(`
env = "test"

[raffle]
entrance_fee = "100"
interval = "45s"

[vrf]
subscription_id = 7
`), 0o600)
	require.NoError(t, err)

	t.Setenv("TOKEN_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "test", cfg.Env)
	require.Equal(t, "100", cfg.Raffle.EntranceFee)
	require.Equal(t, 45*time.Second, cfg.Raffle.Interval)
	require.Equal(t, uint64(7), cfg.VRF.SubscriptionID)
	require.Equal(t, "from-env", cfg.Auth.TokenSecret)

	// Untouched sections keep their defaults.
	require.Equal(t, "raffle", cfg.RPCServer.RPCName)
	require.Equal(t, uint32(500000), cfg.VRF.CallbackGasLimit)
	require.Equal(t, time.Second, cfg.VRF.MockDelay)
}
