package repository

import "context"

// TxFunc runs inside a transaction with repositories bound to it.
type TxFunc func(ctx context.Context, rides RideRepository, captains CaptainRepository) error

// Transactor runs fn atomically: either every write in fn commits or none does.
type Transactor interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}
