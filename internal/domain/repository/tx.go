// Package repository defines the persistence interfaces consumed by the
// application layer. Implementations live under internal/infrastructure.
package repository

import "context"

// TxManager runs a function inside a single database transaction. The
// transaction is carried in the returned context; repository implementations
// pick it up transparently, so one InTx call makes "persist the input change"
// and "recompute and persist derived fields" a single atomic unit.
type TxManager interface {
	InTx(ctx context.Context, fn func(txCtx context.Context) error) error
}
