package persistence

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/domain/importer"
	"github.com/VishnuMohan31/Worky-sub005/pkg/composables"
)

func TestBuildInsert(t *testing.T) {
	rec := importer.Record{
		"id":         importer.String("PRJ-fixed"),
		"name":       importer.String("Apollo"),
		"budget":     importer.Float(1200.5),
		"client_id":  importer.String("CLI-1"),
		"start_date": importer.Null(),
	}

	sql, args, err := buildInsert(importer.EntityProjects, rec)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "INSERT INTO projects ("), sql)
	assert.True(t, strings.HasSuffix(sql, "RETURNING id"), sql)
	// Columns are sorted, so arguments line up deterministically. The stamp
	// adds created_at and updated_at on top of the five explicit fields.
	assert.Contains(t, sql, "budget, client_id, created_at, id, name, start_date, updated_at")
	require.Len(t, args, 7)
	assert.Equal(t, 1200.5, args[0])
	assert.Equal(t, "CLI-1", args[1])
	assert.Equal(t, "PRJ-fixed", args[3])
	assert.Equal(t, "Apollo", args[4])
	assert.Nil(t, args[5])
}

func TestBuildInsert_RejectsLinkageFields(t *testing.T) {
	rec := importer.Record{
		"name":              importer.String("Apollo"),
		importer.FieldOwner: importer.String("alice"),
	}

	_, _, err := buildInsert(importer.EntityProjects, rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), importer.FieldOwner)
}

func TestStamp_GeneratesIDAndTimestamps(t *testing.T) {
	stamped := stamp(importer.EntityTasks, importer.Record{"name": importer.String("Write docs")})

	id := stamped["id"]
	require.Equal(t, importer.KindString, id.Kind)
	assert.True(t, strings.HasPrefix(id.Str, "TSK-"), id.Str)
	assert.LessOrEqual(t, len(id.Str), 16)
	assert.Equal(t, importer.KindDate, stamped["created_at"].Kind)
	assert.Equal(t, importer.KindDate, stamped["updated_at"].Kind)

	// Caller-provided ids survive.
	kept := stamp(importer.EntityTasks, importer.Record{"id": importer.String("TSK-keep")})
	assert.Equal(t, "TSK-keep", kept["id"].Str)
}

func TestClassifyError(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "projects_name_key"}
	err := classifyError(importer.EntityProjects, fmt.Errorf("insert: %w", unique))

	var constraintErr *importer.ConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.Equal(t, importer.EntityProjects, constraintErr.Entity)
	assert.Equal(t, "projects_name_key", constraintErr.Constraint)

	// A class-23 error without a named constraint falls back to the code.
	notNull := &pgconn.PgError{Code: "23502"}
	err = classifyError(importer.EntityTasks, notNull)
	require.ErrorAs(t, err, &constraintErr)
	assert.Equal(t, "23502", constraintErr.Constraint)

	// Non-constraint failures pass through untouched.
	plain := fmt.Errorf("connection reset")
	assert.Equal(t, plain, classifyError(importer.EntityTasks, plain))
	assert.NoError(t, classifyError(importer.EntityTasks, nil))
}

func TestRequireTx_MissingTransaction(t *testing.T) {
	_, err := requireTx(context.Background())
	require.ErrorIs(t, err, composables.ErrNoTx)
}

func TestInsert_WithoutTransactionFails(t *testing.T) {
	writer := NewRecordWriter(10)
	_, err := writer.Insert(context.Background(), importer.EntityProjects, importer.Record{
		"name": importer.String("Apollo"),
	})
	require.ErrorIs(t, err, composables.ErrNoTx)
	assert.Empty(t, writer.Summary())
}
