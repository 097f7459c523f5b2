package eth

import (
	"context"
	"math/big"

	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

// ChainID returns the configured chain id, or the well-known id of the chain
// name when none is configured.
func ChainID(ctx context.Context, cfg config.ChainConfig) *big.Int {
	if cfg.ChainID != 0 {
		return big.NewInt(cfg.ChainID)
	}

	return GetChainIntFromId(ctx, cfg.Chain)
}

func GetChainIntFromId(ctx context.Context, chain string) *big.Int {
	switch chain {
	case "eth":
		return big.NewInt(1)
	case "goerli-testnet":
		return big.NewInt(5)
	case "sepolia-testnet":
		return big.NewInt(11155111)
	case "binance-testnet":
		return big.NewInt(97)
	case "polygon-testnet":
		return big.NewInt(80001)
	case "arbitrum-testnet":
		return big.NewInt(421613)
	case "avaxc-testnet":
		return big.NewInt(43113)
	case "anvil", "hardhat":
		return big.NewInt(31337)

	default:
		xcontext.Logger(ctx).Errorf("Unknown chain: %s", chain)
		return nil
	}
}
