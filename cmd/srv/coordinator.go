package main

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/questx-lab/raffle/internal/client"
	"github.com/questx-lab/raffle/internal/domain"
	"github.com/questx-lab/raffle/internal/domain/vrf"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/questx-lab/raffle/config"
	"github.com/urfave/cli/v2"
)

const defaultCoordinatorDelay = time.Second

// mockCoordinatorDelay is the delay before the mock coordinator delivers
// words. The mock never stays silent, otherwise every draw would wait for an
// operator reset.
func mockCoordinatorDelay(cfg config.VRFConfigs) time.Duration {
	if cfg.MockDelay <= 0 {
		return defaultCoordinatorDelay
	}

	return cfg.MockDelay
}

func (s *srv) startCoordinator(*cli.Context) error {
	cfg := xcontext.Configs(s.ctx)

	key, err := parseOrGenerateKey(cfg.VRF.MockPrivateKey)
	if err != nil {
		return err
	}

	rpcClient, err := rpc.DialContext(s.ctx, cfg.RPCServer.Endpoint)
	if err != nil {
		return err
	}

	raffleCaller := client.NewRaffleCaller(rpcClient)
	defer raffleCaller.Close()

	coordinator := vrf.NewMockCoordinator(s.ctx, key, mockCoordinatorDelay(cfg.VRF))
	coordinator.SetConsumer(client.NewSigningConsumer(raffleCaller, key))

	rpcHandler := rpc.NewServer()
	defer rpcHandler.Stop()
	err = rpcHandler.RegisterName(cfg.VRF.CoordinatorRPCName, domain.NewCoordinatorRPCServer(s.ctx, coordinator))
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Handler: rpcHandler,
		Addr:    cfg.VRF.Server.Address(),
	}

	xcontext.Logger(s.ctx).Infof("Starting coordinator %s on port: %s",
		coordinator.Address().Hex(), cfg.VRF.Server.Port)
	return s.serve(httpSrv)
}
