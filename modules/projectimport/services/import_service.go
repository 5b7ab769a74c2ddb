package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/domain/importer"
	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/infrastructure/excel"
	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/infrastructure/persistence"
	"github.com/VishnuMohan31/Worky-sub005/pkg/eventbus"
)

// Options are the import pipeline's knobs, injected by the module from the
// configuration.
type Options struct {
	MaxUploadSize int64
	Timeout       time.Duration
	BatchSize     int
}

// Dependencies are the pipeline's collaborators. Production wiring uses the
// excelize reader and the pgx-backed persistence layer; tests substitute
// fakes.
type Dependencies struct {
	OpenWorkbook  importer.WorkbookOpener
	Directory     importer.Directory
	NewWriter     func(batchSize int) importer.RecordWriter
	NewUnitOfWork func() importer.UnitOfWork
	Publisher     eventbus.EventBus
	Logger        *logrus.Logger
}

// ImportService drives one spreadsheet through the fixed Projects →
// Usecases → Userstories → Tasks → Subtasks order inside a single
// transaction. Row-level failures are collected, not thrown: the run commits
// only when the error list ends up empty, otherwise everything rolls back.
type ImportService struct {
	opts Options
	deps Dependencies
}

func NewImportService(opts Options, deps Dependencies) *ImportService {
	return &ImportService{opts: opts, deps: deps}
}

// NewPgImportService wires the service against excelize and pgx.
func NewPgImportService(opts Options, publisher eventbus.EventBus, logger *logrus.Logger) *ImportService {
	return NewImportService(opts, Dependencies{
		OpenWorkbook: excel.OpenWorkbook,
		Directory:    persistence.NewDirectory(),
		NewWriter: func(batchSize int) importer.RecordWriter {
			return persistence.NewRecordWriter(batchSize)
		},
		NewUnitOfWork: persistence.NewUnitOfWork,
		Publisher:     publisher,
		Logger:        logger,
	})
}

func (s *ImportService) MaxUploadSize() int64 {
	return s.opts.MaxUploadSize
}

// Import runs the whole pipeline and always returns a result, never an
// error: every failure mode is folded into the result's error list.
func (s *ImportService) Import(ctx context.Context, file io.Reader) *importer.Result {
	start := time.Now()
	log := s.logger().WithField("component", "projectimport")
	acc := importer.NewAccumulator()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	// Commit and rollback run on an uncancelled context: once the deadline
	// fires, the rollback round trip must still reach the database instead of
	// failing and discarding the connection.
	endCtx := context.WithoutCancel(ctx)

	wb, err := s.deps.OpenWorkbook(file)
	if err != nil {
		acc.Errorf("%v", err)
		return s.failure(start, acc, "the uploaded file is not a readable workbook")
	}
	defer func() {
		if err := wb.Close(); err != nil {
			log.WithError(err).Warn("failed to close workbook")
		}
	}()

	// Validate the required top-level sheet before opening a transaction.
	if _, present, err := wb.Rows(importer.LevelProject); err != nil {
		acc.Errorf("%v", err)
		return s.failure(start, acc, "the uploaded workbook could not be read")
	} else if !present {
		acc.Errorf("required sheet %q is missing", importer.LevelProject.SheetName())
		return s.failure(start, acc, "the required Projects sheet is missing")
	}

	uow := s.deps.NewUnitOfWork()
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		acc.Errorf("%v", err)
		return s.failure(start, acc, "could not open a database transaction")
	}

	writer := s.deps.NewWriter(s.opts.BatchSize)
	resolver := importer.NewHierarchyResolver(s.deps.Directory, writer)
	mapper := importer.NewFieldMapper()

	for _, level := range importer.Levels() {
		if err := txCtx.Err(); err != nil {
			acc.Errorf("import aborted: %v", err)
			break
		}
		rows, present, err := wb.Rows(level)
		if err != nil {
			acc.Errorf("%v", err)
			break
		}
		if !present {
			if level != importer.LevelProject {
				acc.Warnf("sheet %q not found; skipping %s", level.SheetName(), level.EntityType())
			}
			continue
		}
		log.WithFields(logrus.Fields{"sheet": level.SheetName(), "rows": len(rows)}).Info("importing sheet")
		s.importLevel(txCtx, level, rows, mapper, resolver, writer, acc)
	}

	for _, level := range importer.Levels() {
		if cols := mapper.UnmappedColumns()[level.EntityType()]; len(cols) > 0 {
			acc.Warnf("%s: ignored unrecognized columns: %s", level.SheetName(), strings.Join(cols, ", "))
		}
	}

	if acc.HasErrors() {
		if err := uow.Rollback(endCtx); err != nil {
			// A rollback failure must not mask the errors that caused it.
			log.WithError(err).Error("rollback failed")
		}
		result := s.failure(start, acc, fmt.Sprintf("import failed with %d error(s); no changes were saved", len(acc.Errors())))
		s.publish(result)
		return result
	}

	if err := uow.Commit(endCtx); err != nil {
		acc.Errorf("%v", err)
		result := s.failure(start, acc, "the import could not be committed")
		s.publish(result)
		return result
	}

	result := &importer.Result{
		Success:         true,
		Message:         "import completed successfully",
		Summary:         writer.Summary(),
		Warnings:        acc.Warnings(),
		Errors:          acc.Errors(),
		DurationSeconds: time.Since(start).Seconds(),
	}
	log.WithField("duration", time.Since(start)).Info("import committed")
	s.publish(result)
	return result
}

// importLevel pushes every row of one sheet through mapping, resolution, and
// batched writes. A bad row is skipped with an error; the rest of the sheet
// still proceeds, so the caller gets a complete problem list in one pass.
func (s *ImportService) importLevel(
	ctx context.Context,
	level importer.Level,
	rows []importer.RawRow,
	mapper *importer.FieldMapper,
	resolver *importer.HierarchyResolver,
	writer importer.RecordWriter,
	acc *importer.Accumulator,
) {
	entity := level.EntityType()

	type pendingRow struct {
		rec     importer.Record
		excelID string
		ref     string
	}
	var pending []pendingRow

	flush := func() {
		if len(pending) == 0 {
			return
		}
		recs := make([]importer.Record, len(pending))
		for i, p := range pending {
			recs[i] = p.rec
		}
		for i, outcome := range writer.InsertBatch(ctx, entity, recs) {
			p := pending[i]
			if outcome.Err != nil {
				var constraintErr *importer.ConstraintError
				if errors.As(outcome.Err, &constraintErr) {
					acc.Errorf("%s: %v", p.ref, constraintErr)
				} else {
					acc.Errorf("%s: database error: %v", p.ref, outcome.Err)
				}
				continue
			}
			if err := resolver.RecordMapping(entity, p.excelID, outcome.ID); err != nil {
				acc.Errorf("%s: %v", p.ref, err)
			}
		}
		pending = pending[:0]
	}

	for _, row := range rows {
		if ctx.Err() != nil {
			break
		}

		rec, warnings := mapper.MapRow(level, row)
		for _, msg := range warnings {
			acc.Warnf("%s", msg)
		}

		if rec["name"].IsNull() {
			acc.Errorf("%s: missing required field %q", row.Ref(), "name")
			continue
		}

		excelID := rec.TakeString(importer.FieldExcelID)

		if level == importer.LevelProject {
			clientName := rec.TakeString(importer.FieldClientName)
			clientID, err := resolver.GetOrCreateClient(ctx, clientName)
			if err != nil {
				acc.Errorf("%s: %v", row.Ref(), err)
				continue
			}
			programID, err := resolver.GetOrCreateProgram(ctx, clientID, clientName)
			if err != nil {
				acc.Errorf("%s: %v", row.Ref(), err)
				continue
			}
			rec["client_id"] = importer.String(clientID)
			rec["program_id"] = importer.String(programID)
		} else {
			parentLevel, _ := level.Parent()
			parentRef := rec.TakeString(importer.FieldParentID)
			if parentRef == "" {
				acc.Errorf("%s: missing parent %s reference", row.Ref(), parentLevel.Singular())
				continue
			}
			parentID, ok := resolver.LookupMapping(parentLevel.EntityType(), parentRef)
			if !ok {
				acc.Errorf("%s: unknown %s excel id %q", row.Ref(), parentLevel.Singular(), parentRef)
				continue
			}
			rec[level.ParentColumn()] = importer.String(parentID)
		}

		if owner := rec.TakeString(importer.FieldOwner); owner != "" {
			userID, found, err := resolver.ResolveUser(ctx, owner)
			if err != nil {
				acc.Errorf("%s: %v", row.Ref(), err)
				continue
			}
			if found {
				rec[level.OwnerColumn()] = importer.String(userID)
			} else {
				acc.Warnf("user %q not found; %s left unassigned", owner, row.Ref())
			}
		}

		pending = append(pending, pendingRow{rec: rec, excelID: excelID, ref: row.Ref()})
		if len(pending) >= s.batchSize() {
			flush()
		}
	}
	flush()
}

func (s *ImportService) failure(start time.Time, acc *importer.Accumulator, message string) *importer.Result {
	return &importer.Result{
		Success:         false,
		Message:         message,
		Summary:         zeroSummary(),
		Warnings:        acc.Warnings(),
		Errors:          acc.Errors(),
		DurationSeconds: time.Since(start).Seconds(),
	}
}

// zeroSummary reports every importable entity type at zero. A rolled-back
// import persisted nothing, whatever the writer counted along the way.
func zeroSummary() map[importer.EntityType]int {
	summary := map[importer.EntityType]int{
		importer.EntityClients:  0,
		importer.EntityPrograms: 0,
	}
	for _, level := range importer.Levels() {
		summary[level.EntityType()] = 0
	}
	return summary
}

func (s *ImportService) batchSize() int {
	if s.opts.BatchSize <= 0 {
		return 100
	}
	return s.opts.BatchSize
}

func (s *ImportService) logger() *logrus.Logger {
	if s.deps.Logger != nil {
		return s.deps.Logger
	}
	return logrus.StandardLogger()
}

func (s *ImportService) publish(result *importer.Result) {
	if s.deps.Publisher != nil {
		s.deps.Publisher.Publish(&ImportCompletedEvent{Result: result})
	}
}
