package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/domain/importer"
	"github.com/VishnuMohan31/Worky-sub005/pkg/composables"
)

// PgDirectory resolves clients, programs, and users against the database,
// inside the transaction carried by the context.
type PgDirectory struct{}

func NewDirectory() importer.Directory {
	return &PgDirectory{}
}

func (d *PgDirectory) FindClientByName(ctx context.Context, name string) (string, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return "", err
	}

	var id string
	err = tx.QueryRow(ctx,
		`SELECT id FROM clients WHERE LOWER(name) = LOWER($1) LIMIT 1`,
		name,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", importer.ErrNotFound
		}
		return "", err
	}
	return id, nil
}

func (d *PgDirectory) FindProgram(ctx context.Context, clientID, name string) (string, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return "", err
	}

	var id string
	err = tx.QueryRow(ctx,
		`SELECT id FROM programs WHERE client_id = $1 AND LOWER(name) = LOWER($2) LIMIT 1`,
		clientID, name,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", importer.ErrNotFound
		}
		return "", err
	}
	return id, nil
}

func (d *PgDirectory) FindUserByIdentifier(ctx context.Context, identifier string) (string, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return "", err
	}

	var id string
	err = tx.QueryRow(ctx,
		`SELECT id FROM users
		 WHERE LOWER(full_name) = LOWER($1) OR LOWER(email) = LOWER($1)
		 LIMIT 1`,
		identifier,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", importer.ErrNotFound
		}
		return "", err
	}
	return id, nil
}
