package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/pkg/errorx"
)

func bigString(n *big.Int) string {
	if n == nil {
		return ""
	}

	return n.String()
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errorx.New(errorx.BadRequest, "Invalid address %q", s)
	}

	return common.HexToAddress(s), nil
}

func parseWei(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return nil, errorx.New(errorx.BadRequest, "Invalid amount %q", s)
	}

	return n, nil
}
