package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/domain/importer"
	"github.com/VishnuMohan31/Worky-sub005/pkg/composables"
	"github.com/VishnuMohan31/Worky-sub005/pkg/constants"
)

// requireTx returns the pgx transaction carried by the context. The import
// pipeline always runs inside one; a missing transaction is a wiring bug.
func requireTx(ctx context.Context) (pgx.Tx, error) {
	v := ctx.Value(constants.TxKey)
	if v == nil {
		return nil, composables.ErrNoTx
	}
	return v.(pgx.Tx), nil
}

// classifyError maps integrity-constraint violations (SQLSTATE class 23) to
// ConstraintError so the orchestrator can attribute them to a row; other
// database failures pass through unchanged.
func classifyError(entity importer.EntityType, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		constraint := pgErr.ConstraintName
		if constraint == "" {
			constraint = pgErr.Code
		}
		return &importer.ConstraintError{
			Entity:     entity,
			Constraint: constraint,
			Err:        err,
		}
	}
	return err
}
