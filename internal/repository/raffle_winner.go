package repository

import (
	"context"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type RaffleWinnerRepository interface {
	Create(ctx context.Context, w *entity.RaffleWinner) (bool, error)
	GetLatest(ctx context.Context, limit int) ([]entity.RaffleWinner, error)
	CountByWinner(ctx context.Context, winner string) (int64, error)
	GetWinCounts(ctx context.Context) ([]WinCount, error)
}

type WinCount struct {
	Winner string
	Wins   int64
}

type raffleWinnerRepository struct{}

func NewRaffleWinnerRepository() *raffleWinnerRepository {
	return &raffleWinnerRepository{}
}

func (r *raffleWinnerRepository) Create(ctx context.Context, w *entity.RaffleWinner) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(w)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *raffleWinnerRepository) GetLatest(ctx context.Context, limit int) ([]entity.RaffleWinner, error) {
	var result []entity.RaffleWinner
	err := xcontext.DB(ctx).Order("picked_at DESC").Order("event_id DESC").
		Limit(limit).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *raffleWinnerRepository) CountByWinner(ctx context.Context, winner string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.RaffleWinner{}).
		Where("winner=?", winner).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *raffleWinnerRepository) GetWinCounts(ctx context.Context) ([]WinCount, error) {
	var result []WinCount
	err := xcontext.DB(ctx).Model(&entity.RaffleWinner{}).
		Select("winner, COUNT(*) AS wins").
		Group("winner").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
