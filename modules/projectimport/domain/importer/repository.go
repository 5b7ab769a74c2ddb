package importer

import (
	"context"
	"fmt"
	"io"

	gerrors "github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned by Directory lookups that match nothing.
	ErrNotFound = gerrors.New("record not found")
)

// ConstraintError marks an insert rejected by a database constraint
// (uniqueness, not-null, foreign key), as opposed to a generic database
// failure, so the orchestrator can attribute it to the offending row.
type ConstraintError struct {
	Entity     EntityType
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: constraint %s violated: %v", e.Entity, e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// Directory is the read side of ancestor and user resolution. Lookups are
// case-insensitive and run inside the import's transaction.
type Directory interface {
	FindClientByName(ctx context.Context, name string) (string, error)
	FindProgram(ctx context.Context, clientID, name string) (string, error)
	FindUserByIdentifier(ctx context.Context, identifier string) (string, error)
}

// InsertOutcome carries the generated id or the failure of one record in a
// batch, preserving per-record error attribution.
type InsertOutcome struct {
	ID  string
	Err error
}

// RecordWriter persists canonical records inside the import's transaction.
type RecordWriter interface {
	// Insert writes one record, stamping id and timestamps when absent, and
	// returns the generated id.
	Insert(ctx context.Context, entity EntityType, rec Record) (string, error)
	// InsertBatch writes records in fixed-size batches. The returned slice
	// is aligned with the input.
	InsertBatch(ctx context.Context, entity EntityType, recs []Record) []InsertOutcome
	// Summary is a read-only snapshot of per-entity insert counts so far.
	Summary() map[EntityType]int
}

// UnitOfWork owns the single transaction an import runs in.
type UnitOfWork interface {
	// Begin opens the transaction and returns a context carrying it.
	Begin(ctx context.Context) (context.Context, error)
	// Commit commits; on failure it rolls back before returning the error.
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Workbook yields the rows of one spreadsheet, sheet by sheet. Rows reports
// whether the sheet is present; a sheet's rows are buffered and safe to
// re-read.
type Workbook interface {
	Rows(level Level) ([]RawRow, bool, error)
	Close() error
}

// WorkbookOpener parses workbook bytes. Malformed input fails here, before
// any transaction opens.
type WorkbookOpener func(r io.Reader) (Workbook, error)
