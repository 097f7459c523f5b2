package main

import (
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/questx-lab/raffle/internal/client"
	"github.com/questx-lab/raffle/internal/domain/cron"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startKeeper(*cli.Context) error {
	cfg := xcontext.Configs(s.ctx)

	rpcClient, err := rpc.DialContext(s.ctx, cfg.RPCServer.Endpoint)
	if err != nil {
		return err
	}

	raffleCaller := client.NewRaffleCaller(rpcClient)
	defer raffleCaller.Close()

	xcontext.Logger(s.ctx).Infof("Keeper polls %s every %s", cfg.RPCServer.Endpoint, cfg.Raffle.KeeperPeriod)
	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Start(s.ctx, cron.NewUpkeepCronJob(raffleCaller, cfg.Raffle.KeeperPeriod))
	return nil
}
