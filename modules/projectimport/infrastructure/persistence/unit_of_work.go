package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/domain/importer"
	"github.com/VishnuMohan31/Worky-sub005/pkg/composables"
)

// PgUnitOfWork opens the single transaction an import runs in and carries it
// through the context for the directory and record writer.
type PgUnitOfWork struct {
	tx pgx.Tx
}

func NewUnitOfWork() importer.UnitOfWork {
	return &PgUnitOfWork{}
}

func (u *PgUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	pool, err := composables.UsePool(ctx)
	if err != nil {
		return ctx, err
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return ctx, fmt.Errorf("begin import transaction: %w", err)
	}
	u.tx = tx
	return composables.WithTx(ctx, tx), nil
}

// Commit commits the transaction. A commit failure triggers a rollback
// before the error is returned; the rollback's own failure never masks it.
func (u *PgUnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return composables.ErrNoTx
	}
	if err := u.tx.Commit(ctx); err != nil {
		_ = u.tx.Rollback(ctx)
		return fmt.Errorf("commit import transaction: %w", err)
	}
	return nil
}

func (u *PgUnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
