package main

import (
	"crypto/ecdsa"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/questx-lab/raffle/internal/client"
	"github.com/questx-lab/raffle/internal/domain"
	"github.com/questx-lab/raffle/internal/domain/cron"
	"github.com/questx-lab/raffle/internal/domain/raffle"
	"github.com/questx-lab/raffle/internal/domain/vrf"
	"github.com/questx-lab/raffle/internal/middleware"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/pkg/jwt"
	"github.com/questx-lab/raffle/pkg/kafka"
	"github.com/questx-lab/raffle/pkg/router"
	"github.com/questx-lab/raffle/pkg/ws"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startRaffle(cctx *cli.Context) error {
	cfg := xcontext.Configs(s.ctx)

	raffleCfg, err := raffle.ConfigFromConfigs(cfg)
	if err != nil {
		return err
	}

	var randomness raffle.RandomnessClient
	var mockCoordinator *vrf.MockCoordinator
	if cfg.VRF.UseMock {
		key, err := parseOrGenerateKey(cfg.VRF.MockPrivateKey)
		if err != nil {
			return err
		}

		mockCoordinator = vrf.NewMockCoordinator(s.ctx, key, mockCoordinatorDelay(cfg.VRF))
		raffleCfg.Coordinator = mockCoordinator.Address()
		randomness = mockCoordinator
		xcontext.Logger(s.ctx).Warnf("Using the mock coordinator %s", mockCoordinator.Address().Hex())
	} else {
		rpcClient, err := rpc.DialContext(s.ctx, cfg.VRF.CoordinatorEndpoint)
		if err != nil {
			return err
		}

		coordinatorCaller := client.NewCoordinatorCaller(rpcClient)
		defer coordinatorCaller.Close()
		randomness = coordinatorCaller
	}

	payer, err := s.newPayer()
	if err != nil {
		return err
	}

	opts := []domain.RaffleDomainOption{}
	if cfg.Kafka.Addr != "" {
		publisher, err := kafka.NewPublisher("raffle", s.kafkaBrokers())
		if err != nil {
			return err
		}
		defer publisher.Stop(s.ctx)
		opts = append(opts, domain.WithEventPublisher(publisher))
	}

	hub := ws.NewHub()
	go hub.Run(s.ctx)
	opts = append(opts, domain.WithEventHub(hub))

	raffleDomain, err := domain.NewRaffleDomain(s.ctx, raffleCfg, randomness, payer, opts...)
	if err != nil {
		return err
	}

	if mockCoordinator != nil {
		mockCoordinator.SetConsumer(raffleDomain)
	}

	var leaderboardDomain domain.LeaderboardDomain
	if cfg.Redis.Addr != "" {
		s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
		s.migrateDB()
		s.loadRedisClient()
		s.loadRepos()
		leaderboardDomain = domain.NewLeaderboardDomain(s.raffleWinnerRepo, s.redisClient)
	}

	s.startPrometheus()

	rpcHandler := rpc.NewServer()
	defer rpcHandler.Stop()
	err = rpcHandler.RegisterName(cfg.RPCServer.RPCName, domain.NewRaffleRPCServer(s.ctx, raffleDomain))
	if err != nil {
		return err
	}

	if mockCoordinator != nil {
		err := rpcHandler.RegisterName(cfg.VRF.CoordinatorRPCName, domain.NewCoordinatorRPCServer(s.ctx, mockCoordinator))
		if err != nil {
			return err
		}
	}

	go func() {
		xcontext.Logger(s.ctx).Infof("Starting rpc server on port: %s", cfg.RPCServer.Port)
		httpSrv := &http.Server{
			Handler: rpcHandler,
			Addr:    cfg.RPCServer.Address(),
		}
		if err := s.serve(httpSrv); err != nil {
			panic(err)
		}
	}()

	if cctx.Bool("keeper") {
		cronJobManager := cron.NewCronJobManager()
		go cronJobManager.Start(s.ctx, cron.NewUpkeepCronJob(raffleDomain, cfg.Raffle.KeeperPeriod))
	}

	httpSrv := &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.loadRaffleRouter(raffleDomain, leaderboardDomain).Handler(cfg.ApiServer),
	}

	xcontext.Logger(s.ctx).Infof("Starting raffle api on port: %s", cfg.ApiServer.Port)
	return s.serve(httpSrv)
}

func (s *srv) loadRaffleRouter(
	raffleDomain domain.RaffleDomain,
	leaderboardDomain domain.LeaderboardDomain,
) *router.Router {
	cfg := xcontext.Configs(s.ctx)

	defaultRouter := router.New(s.ctx)
	defaultRouter.Before(middleware.WithStartTime())
	defaultRouter.AddCloser(middleware.Logger())
	defaultRouter.AddCloser(middleware.Prometheus())

	publicRouter := defaultRouter.Branch()
	{
		router.POST(publicRouter, "/enter", raffleDomain.Enter)
		router.GET(publicRouter, "/getRaffle", raffleDomain.GetRaffle)
		router.GET(publicRouter, "/getPlayer", raffleDomain.GetPlayer)
		router.GET(publicRouter, "/checkUpkeep", raffleDomain.GetUpkeep)
		router.Websocket(publicRouter, "/events", raffleDomain.ServeEvents)

		if leaderboardDomain != nil {
			router.GET(publicRouter, "/getWinnerLeaderboard", leaderboardDomain.GetWinnerLeaderboard)
			router.GET(publicRouter, "/getRecentWinners", leaderboardDomain.GetRecentWinners)
		}
	}

	if cfg.Auth.TokenSecret == "" {
		xcontext.Logger(s.ctx).Warnf("No token secret, operator apis are disabled")
		return defaultRouter
	}

	operatorRouter := defaultRouter.Branch()
	operatorRouter.Before(middleware.OperatorAuth(jwt.NewVerifier[model.OperatorToken](cfg.Auth.TokenSecret)))
	{
		router.POST(operatorRouter, "/forceReset", raffleDomain.ForceReset)
	}

	return defaultRouter
}

// parseOrGenerateKey generates a throwaway key when s is empty.
func parseOrGenerateKey(s string) (*ecdsa.PrivateKey, error) {
	if s == "" {
		return crypto.GenerateKey()
	}

	key, err := parsePrivateKey(s)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return key, nil
}
