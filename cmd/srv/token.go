package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/pkg/jwt"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) generateOperatorToken(cctx *cli.Context) error {
	cfg := xcontext.Configs(s.ctx)

	address := cctx.String("address")
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid address %q", address)
	}

	operator := common.HexToAddress(address).Hex()
	engine := jwt.NewEngine[model.OperatorToken](cfg.Auth.TokenSecret, cfg.Auth.Expiration)
	token, err := engine.Generate(operator, model.OperatorToken{Address: operator})
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
