package main

import (
	"context"
	"crypto/ecdsa"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/internal/domain/payout"
	"github.com/questx-lab/raffle/internal/domain/raffle"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/blockchain/eth"
	"github.com/questx-lab/raffle/pkg/logger"
	"github.com/questx-lab/raffle/pkg/prometheus"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/questx-lab/raffle/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type srv struct {
	ctx context.Context
	app *cli.App

	redisClient xredis.Client

	raffleEventRepo  repository.RaffleEventRepository
	raffleWinnerRepo repository.RaffleWinnerRepository
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))
	return nil
}

// newDatabase connects to mysql. Without a database host it falls back to a
// local sqlite file, which is enough for a single-node development setup.
func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	if cfg.Host == "" {
		path := cfg.Database
		if path == "" {
			path = "raffle.db"
		}
		xcontext.Logger(s.ctx).Warnf("No database host, using sqlite file %s", path)
		dialector = sqlite.Open(path)
	} else {
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.raffleEventRepo = repository.NewRaffleEventRepository()
	s.raffleWinnerRepo = repository.NewRaffleWinnerRepository()
}

func (s *srv) kafkaBrokers() []string {
	return strings.Split(xcontext.Configs(s.ctx).Kafka.Addr, ",")
}

// newPayer returns the in-memory ledger or a payer sending native transfers
// from the configured key.
func (s *srv) newPayer() (raffle.Payer, error) {
	cfg := xcontext.Configs(s.ctx).Eth
	if cfg.UseLedger {
		xcontext.Logger(s.ctx).Warnf("Winners are paid from an in-memory ledger")
		return payout.NewLedger(), nil
	}

	key, err := parsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	client := eth.NewEthClients(cfg)
	client.Start(s.ctx)

	signer := eth.NewSigner(client, eth.ChainID(s.ctx, cfg), key)
	xcontext.Logger(s.ctx).Infof("Winners are paid by %s on %s", signer.From().Hex(), cfg.Chain)
	return payout.NewEthPayer(client, signer), nil
}

func (s *srv) startPrometheus() {
	cfg := xcontext.Configs(s.ctx)
	go func() {
		httpSrv := &http.Server{
			Addr:    cfg.PrometheusServer.Address(),
			Handler: prometheus.NewHandler(),
		}
		xcontext.Logger(s.ctx).Infof("Starting prometheus on port: %s", cfg.PrometheusServer.Port)
		if err := httpSrv.ListenAndServe(); err != nil {
			panic(err)
		}
	}()
}

// serve runs httpSrv until the service context is done.
func (s *srv) serve(httpSrv *http.Server) error {
	go func() {
		<-s.ctx.Done()
		httpSrv.Close()
	}()

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func parsePrivateKey(s string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(s, "0x"))
}
