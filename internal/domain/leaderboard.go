package domain

import (
	"context"

	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/questx-lab/raffle/pkg/xredis"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

type LeaderboardDomain interface {
	GetWinnerLeaderboard(context.Context, *model.GetWinnerLeaderboardRequest) (*model.GetWinnerLeaderboardResponse, error)
	GetRecentWinners(context.Context, *model.GetRecentWinnersRequest) (*model.GetRecentWinnersResponse, error)
}

type leaderboardDomain struct {
	winnerRepo  repository.RaffleWinnerRepository
	redisClient xredis.Client
}

func NewLeaderboardDomain(
	winnerRepo repository.RaffleWinnerRepository,
	redisClient xredis.Client,
) *leaderboardDomain {
	return &leaderboardDomain{winnerRepo: winnerRepo, redisClient: redisClient}
}

func (d *leaderboardDomain) GetWinnerLeaderboard(
	ctx context.Context, req *model.GetWinnerLeaderboardRequest,
) (*model.GetWinnerLeaderboardResponse, error) {
	limit, err := checkLimit(req.Limit)
	if err != nil {
		return nil, err
	}

	if req.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Offset must not be negative")
	}

	ok, err := d.redisClient.Exist(ctx, common.RedisKeyWinnerLeaderboard)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return nil, errorx.Unknown
	}

	// If the key didn't exist in redis, load it from database.
	if !ok {
		if err := d.loadLeaderboardFromDB(ctx); err != nil {
			return nil, err
		}
	}

	zs, err := d.redisClient.ZRevRangeWithScores(ctx, common.RedisKeyWinnerLeaderboard, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get leaderboard from redis: %v", err)
		return nil, errorx.Unknown
	}

	winners := []model.WinnerRank{}
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			xcontext.Logger(ctx).Warnf("Invalid leaderboard member %v", z.Member)
			continue
		}

		winners = append(winners, model.WinnerRank{Winner: member, Wins: int64(z.Score)})
	}

	return &model.GetWinnerLeaderboardResponse{Winners: winners}, nil
}

func (d *leaderboardDomain) GetRecentWinners(
	ctx context.Context, req *model.GetRecentWinnersRequest,
) (*model.GetRecentWinnersResponse, error) {
	limit, err := checkLimit(req.Limit)
	if err != nil {
		return nil, err
	}

	latest, err := d.winnerRepo.GetLatest(ctx, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get recent winners: %v", err)
		return nil, errorx.Unknown
	}

	winners := []model.RecentWinner{}
	for _, w := range latest {
		winners = append(winners, model.RecentWinner{
			RequestID: w.RequestID,
			Winner:    w.Winner,
			Prize:     w.Prize,
			PickedAt:  w.PickedAt,
		})
	}

	return &model.GetRecentWinnersResponse{Winners: winners}, nil
}

func (d *leaderboardDomain) loadLeaderboardFromDB(ctx context.Context) error {
	counts, err := d.winnerRepo.GetWinCounts(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count wins: %v", err)
		return errorx.Unknown
	}

	for _, c := range counts {
		err := d.redisClient.ZIncrBy(ctx, common.RedisKeyWinnerLeaderboard, c.Wins, c.Winner)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot load leaderboard to redis: %v", err)
			return errorx.Unknown
		}
	}

	return nil
}

func checkLimit(limit int) (int, error) {
	if limit == 0 {
		return defaultLeaderboardLimit, nil
	}

	if limit < 0 || limit > maxLeaderboardLimit {
		return 0, errorx.New(errorx.BadRequest, "Limit must be in range [1, %d]", maxLeaderboardLimit)
	}

	return limit, nil
}
