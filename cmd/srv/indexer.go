package main

import (
	"github.com/questx-lab/raffle/internal/domain"
	"github.com/questx-lab/raffle/pkg/kafka"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startIndexer(*cli.Context) error {
	cfg := xcontext.Configs(s.ctx)
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()

	indexerDomain := domain.NewIndexerDomain(s.raffleEventRepo, s.raffleWinnerRepo, s.redisClient)

	subscriber, err := kafka.NewSubscriber(
		cfg.Kafka.GroupID,
		s.kafkaBrokers(),
		[]string{cfg.Kafka.Topic},
		indexerDomain.Subscribe,
	)
	if err != nil {
		return err
	}
	defer subscriber.Stop(s.ctx)

	s.startPrometheus()

	subscriber.Subscribe(s.ctx)
	xcontext.Logger(s.ctx).Infof("Indexing topic %s as group %s", cfg.Kafka.Topic, cfg.Kafka.GroupID)

	<-s.ctx.Done()
	return nil
}
