package domain

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/internal/domain/raffle"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/pubsub"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/questx-lab/raffle/pkg/xredis"
)

// IndexerDomain stores the raffle event stream and keeps the winner
// leaderboard up to date.
type IndexerDomain interface {
	Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time)
	Index(ctx context.Context, event model.RaffleEvent) error
}

type indexerDomain struct {
	eventRepo   repository.RaffleEventRepository
	winnerRepo  repository.RaffleWinnerRepository
	redisClient xredis.Client
}

func NewIndexerDomain(
	eventRepo repository.RaffleEventRepository,
	winnerRepo repository.RaffleWinnerRepository,
	redisClient xredis.Client,
) *indexerDomain {
	return &indexerDomain{
		eventRepo:   eventRepo,
		winnerRepo:  winnerRepo,
		redisClient: redisClient,
	}
}

func (d *indexerDomain) Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var event model.RaffleEvent
	if err := json.Unmarshal(pack.Msg, &event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal event %s: %v", pack.Key, err)
		return
	}

	if err := d.Index(ctx, event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot index event %d: %v", event.ID, err)
		return
	}

	xcontext.Logger(ctx).Debugf("Indexed event %d (%s), lag %s", event.ID, event.Type, time.Since(t))
}

// Index is idempotent: an event delivered again is ignored.
func (d *indexerDomain) Index(ctx context.Context, event model.RaffleEvent) error {
	record := &entity.RaffleEvent{
		SnowFlakeBase: entity.SnowFlakeBase{ID: event.ID},
		Type:          event.Type,
		EmittedAt:     event.Time,
	}

	var winner *entity.RaffleWinner
	switch raffle.EventType(event.Type) {
	case raffle.RaffleEnterEvent:
		var data model.RaffleEnterData
		if err := mapstructure.Decode(event.Data, &data); err != nil {
			return err
		}
		record.Player = data.Player

	case raffle.RequestedRaffleWinnerEvent:
		var data model.RequestedRaffleWinnerData
		if err := mapstructure.Decode(event.Data, &data); err != nil {
			return err
		}
		record.RequestID = data.RequestID

	case raffle.RaffleResetEvent:
		var data model.RaffleResetData
		if err := mapstructure.Decode(event.Data, &data); err != nil {
			return err
		}
		record.RequestID = data.RequestID

	case raffle.WinnerPickedEvent:
		var data model.WinnerPickedData
		if err := mapstructure.Decode(event.Data, &data); err != nil {
			return err
		}
		record.RequestID = data.RequestID
		record.Winner = data.Winner
		record.Prize = data.Prize

		winner = &entity.RaffleWinner{
			Base:      entity.Base{ID: uuid.NewString()},
			EventID:   event.ID,
			RequestID: data.RequestID,
			Winner:    data.Winner,
			Prize:     data.Prize,
			PickedAt:  event.Time,
		}

	default:
		xcontext.Logger(ctx).Warnf("Unknown event type %q of event %d", event.Type, event.ID)
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	created, err := d.eventRepo.Create(ctx, record)
	if err != nil {
		return err
	}

	if !created {
		xcontext.Logger(ctx).Debugf("Event %d was indexed before", event.ID)
		return nil
	}

	newWinner := false
	if winner != nil {
		newWinner, err = d.winnerRepo.Create(ctx, winner)
		if err != nil {
			return err
		}
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		return err
	}

	common.PromCounters[common.IndexedEventTotal].WithLabelValues(event.Type).Inc()

	// The leaderboard is rebuilt from the database when missing, so a failed
	// increment is only logged.
	if newWinner {
		err := d.redisClient.ZIncrBy(ctx, common.RedisKeyWinnerLeaderboard, 1, winner.Winner)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot increase wins of %s: %v", winner.Winner, err)
		}
	}

	err = d.redisClient.Set(ctx, common.RedisKeyLastIndexedEvent, strconv.FormatInt(event.ID, 10))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot save last indexed event: %v", err)
	}

	return nil
}
