package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/trackops/riskregistry/internal/domain/repository"
)

// txKey carries the active transaction through context so repositories inside
// an InTx callback share the same transaction without changing their API.
type txKey struct{}

// TxManager implements repository.TxManager on gorm.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a gorm-backed transaction manager.
func NewTxManager(db *gorm.DB) repository.TxManager {
	return &TxManager{db: db}
}

// InTx runs fn inside one database transaction. Nested calls join the
// transaction already carried by the context.
func (m *TxManager) InTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction bound to ctx, or the base connection.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
