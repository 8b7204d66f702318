package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gshelgaas/bankcards/internal/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// repository code runs inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type store struct {
	pool *pgxpool.Pool
	db   querier
}

// NewStore returns the Postgres-backed Store.
func NewStore(pool *pgxpool.Pool) repository.Store {
	return &store{pool: pool, db: pool}
}

func (s *store) Users() repository.Users                 { return &usersRepo{db: s.db} }
func (s *store) Cards() repository.Cards                 { return &cardsRepo{db: s.db} }
func (s *store) Transfers() repository.Transfers         { return &transfersRepo{db: s.db} }
func (s *store) BlockRequests() repository.BlockRequests { return &blockRequestsRepo{db: s.db} }
func (s *store) Audit() repository.AuditEvents           { return &auditRepo{db: s.db} }

// WithTx runs fn inside one database transaction. FOR UPDATE locks
// taken through the transaction-bound Store are released on commit or
// rollback. Calling WithTx on an already transaction-bound Store
// reuses the open transaction.
func (s *store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return err
	}
	if err := fn(&store{db: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
