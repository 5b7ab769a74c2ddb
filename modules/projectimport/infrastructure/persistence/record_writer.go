package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/domain/importer"
)

// PgRecordWriter persists canonical records through the transaction carried
// by the context. Every insert runs under a savepoint so one rejected row
// does not poison the surrounding transaction; Postgres otherwise refuses
// further statements after any error until rollback.
type PgRecordWriter struct {
	batchSize int
	counts    map[importer.EntityType]int
}

func NewRecordWriter(batchSize int) *PgRecordWriter {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &PgRecordWriter{
		batchSize: batchSize,
		counts:    make(map[importer.EntityType]int),
	}
}

func (w *PgRecordWriter) Insert(ctx context.Context, entity importer.EntityType, rec importer.Record) (string, error) {
	tx, err := requireTx(ctx)
	if err != nil {
		return "", err
	}

	sp, err := tx.Begin(ctx) // savepoint
	if err != nil {
		return "", fmt.Errorf("begin savepoint: %w", err)
	}

	id, err := insertRecord(ctx, sp, entity, rec)
	if err != nil {
		_ = sp.Rollback(ctx)
		return "", classifyError(entity, err)
	}
	if err := sp.Commit(ctx); err != nil {
		return "", fmt.Errorf("release savepoint: %w", err)
	}

	w.counts[entity]++
	return id, nil
}

// InsertBatch writes records in chunks of the configured batch size. Each
// chunk is attempted as one pipelined batch under a savepoint; when a chunk
// fails, it is rolled back and retried record by record so the failure is
// attributed to the exact offending rows.
func (w *PgRecordWriter) InsertBatch(ctx context.Context, entity importer.EntityType, recs []importer.Record) []importer.InsertOutcome {
	outcomes := make([]importer.InsertOutcome, len(recs))

	for start := 0; start < len(recs); start += w.batchSize {
		end := start + w.batchSize
		if end > len(recs) {
			end = len(recs)
		}
		chunk := recs[start:end]

		ids, err := w.insertChunk(ctx, entity, chunk)
		if err == nil {
			for i, id := range ids {
				outcomes[start+i] = importer.InsertOutcome{ID: id}
			}
			continue
		}

		for i, rec := range chunk {
			id, insErr := w.Insert(ctx, entity, rec)
			outcomes[start+i] = importer.InsertOutcome{ID: id, Err: insErr}
		}
	}

	return outcomes
}

func (w *PgRecordWriter) insertChunk(ctx context.Context, entity importer.EntityType, chunk []importer.Record) ([]string, error) {
	tx, err := requireTx(ctx)
	if err != nil {
		return nil, err
	}

	sp, err := tx.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin savepoint: %w", err)
	}

	batch := &pgx.Batch{}
	for _, rec := range chunk {
		sql, args, err := buildInsert(entity, rec)
		if err != nil {
			_ = sp.Rollback(ctx)
			return nil, err
		}
		batch.Queue(sql, args...)
	}

	results := sp.SendBatch(ctx, batch)
	ids := make([]string, len(chunk))
	for i := range chunk {
		if err := results.QueryRow().Scan(&ids[i]); err != nil {
			_ = results.Close()
			_ = sp.Rollback(ctx)
			return nil, err
		}
	}
	if err := results.Close(); err != nil {
		_ = sp.Rollback(ctx)
		return nil, err
	}
	if err := sp.Commit(ctx); err != nil {
		return nil, fmt.Errorf("release savepoint: %w", err)
	}

	w.counts[entity] += len(chunk)
	return ids, nil
}

// Summary is a read-only snapshot of per-entity insert counts so far.
func (w *PgRecordWriter) Summary() map[importer.EntityType]int {
	out := make(map[importer.EntityType]int, len(w.counts))
	for entity, n := range w.counts {
		out[entity] = n
	}
	return out
}

func insertRecord(ctx context.Context, tx pgx.Tx, entity importer.EntityType, rec importer.Record) (string, error) {
	sql, args, err := buildInsert(entity, rec)
	if err != nil {
		return "", err
	}
	var id string
	if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// buildInsert renders an INSERT for the stamped record. Entity names come
// from a closed set; column names come from the field spec tables. Neither
// is user input.
func buildInsert(entity importer.EntityType, rec importer.Record) (string, []any, error) {
	stamped := stamp(entity, rec)

	for name := range stamped {
		if importer.IsLinkage(name) {
			return "", nil, fmt.Errorf("unresolved linkage field %q in %s record", name, entity)
		}
	}

	cols := importer.SortedFields(stamped)
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = stamped[col].Arg()
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		entity,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
	)
	return sql, args, nil
}

// stamp fills in id and timestamps when the record does not carry them.
func stamp(entity importer.EntityType, rec importer.Record) importer.Record {
	out := make(importer.Record, len(rec)+3)
	for k, v := range rec {
		out[k] = v
	}
	if v, ok := out["id"]; !ok || v.IsNull() {
		out["id"] = importer.String(importer.NewEntityID(entity))
	}
	now := time.Now().UTC()
	if v, ok := out["created_at"]; !ok || v.IsNull() {
		out["created_at"] = importer.Date(now)
	}
	if v, ok := out["updated_at"]; !ok || v.IsNull() {
		out["updated_at"] = importer.Date(now)
	}
	return out
}
