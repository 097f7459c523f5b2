package entity

import (
	"context"

	"github.com/questx-lab/raffle/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&RaffleEvent{},
		&RaffleWinner{},
	)
}
