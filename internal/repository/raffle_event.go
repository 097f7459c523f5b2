package repository

import (
	"context"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type GetListRaffleEventFilter struct {
	Type      string
	RequestID string
	Offset    int
	Limit     int
}

type RaffleEventRepository interface {
	// Create stores the event once. It returns false if an event with the
	// same id was stored before.
	Create(ctx context.Context, e *entity.RaffleEvent) (bool, error)
	GetByID(ctx context.Context, id int64) (*entity.RaffleEvent, error)
	GetList(ctx context.Context, filter GetListRaffleEventFilter) ([]entity.RaffleEvent, error)
}

type raffleEventRepository struct{}

func NewRaffleEventRepository() *raffleEventRepository {
	return &raffleEventRepository{}
}

func (r *raffleEventRepository) Create(ctx context.Context, e *entity.RaffleEvent) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(e)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *raffleEventRepository) GetByID(ctx context.Context, id int64) (*entity.RaffleEvent, error) {
	var result entity.RaffleEvent
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *raffleEventRepository) GetList(
	ctx context.Context, filter GetListRaffleEventFilter,
) ([]entity.RaffleEvent, error) {
	tx := xcontext.DB(ctx).Model(&entity.RaffleEvent{})
	if filter.Type != "" {
		tx = tx.Where("type=?", filter.Type)
	}

	if filter.RequestID != "" {
		tx = tx.Where("request_id=?", filter.RequestID)
	}

	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var result []entity.RaffleEvent
	if err := tx.Offset(filter.Offset).Order("id ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
