package persistence

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/projectimport-schema.sql
var schemaFS embed.FS

// ApplySchema creates the hierarchy tables if they do not exist yet.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	sql, err := schemaFS.ReadFile("schema/projectimport-schema.sql")
	if err != nil {
		return fmt.Errorf("read embedded schema: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply projectimport schema: %w", err)
	}
	return nil
}
