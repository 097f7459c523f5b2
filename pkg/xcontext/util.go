package xcontext

import (
	"context"

	"gorm.io/gorm"
)

func WithDBTransaction(ctx context.Context) context.Context {
	db, _ := ctx.Value(dbKey{}).(*gorm.DB)
	if db == nil {
		return ctx
	}

	return context.WithValue(ctx, dbTxKey{}, db.Begin())
}

func WithCommitDBTransaction(ctx context.Context) error {
	tx, ok := ctx.Value(dbTxKey{}).(*gorm.DB)
	if !ok || tx == nil {
		return nil
	}

	return tx.Commit().Error
}

// WithRollbackDBTransaction is meant to be deferred right after
// WithDBTransaction. Rolling back a committed transaction is a no-op.
func WithRollbackDBTransaction(ctx context.Context) {
	tx, ok := ctx.Value(dbTxKey{}).(*gorm.DB)
	if !ok || tx == nil {
		return
	}

	tx.Rollback()
}
