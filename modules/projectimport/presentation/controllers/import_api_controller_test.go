package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/domain/importer"
	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/presentation/controllers"
	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/services"
	"github.com/VishnuMohan31/Worky-sub005/pkg/application"
)

type stubWorkbook struct {
	sheets map[importer.Level][]importer.RawRow
}

func (w *stubWorkbook) Rows(level importer.Level) ([]importer.RawRow, bool, error) {
	rows, ok := w.sheets[level]
	return rows, ok, nil
}

func (w *stubWorkbook) Close() error { return nil }

type stubDirectory struct{}

func (stubDirectory) FindClientByName(context.Context, string) (string, error) {
	return "", importer.ErrNotFound
}

func (stubDirectory) FindProgram(context.Context, string, string) (string, error) {
	return "", importer.ErrNotFound
}

func (stubDirectory) FindUserByIdentifier(context.Context, string) (string, error) {
	return "", importer.ErrNotFound
}

type stubWriter struct {
	counts map[importer.EntityType]int
}

func (w *stubWriter) Insert(_ context.Context, entity importer.EntityType, _ importer.Record) (string, error) {
	w.counts[entity]++
	return importer.NewEntityID(entity), nil
}

func (w *stubWriter) InsertBatch(ctx context.Context, entity importer.EntityType, recs []importer.Record) []importer.InsertOutcome {
	outcomes := make([]importer.InsertOutcome, len(recs))
	for i, rec := range recs {
		id, err := w.Insert(ctx, entity, rec)
		outcomes[i] = importer.InsertOutcome{ID: id, Err: err}
	}
	return outcomes
}

func (w *stubWriter) Summary() map[importer.EntityType]int {
	return w.counts
}

type stubUnitOfWork struct{}

func (stubUnitOfWork) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (stubUnitOfWork) Commit(context.Context) error                       { return nil }
func (stubUnitOfWork) Rollback(context.Context) error                     { return nil }

func newTestRouter(t *testing.T, sheets map[importer.Level][]importer.RawRow) *mux.Router {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	service := services.NewImportService(
		services.Options{MaxUploadSize: 1 << 20, BatchSize: 10},
		services.Dependencies{
			OpenWorkbook: func(io.Reader) (importer.Workbook, error) {
				return &stubWorkbook{sheets: sheets}, nil
			},
			Directory:     stubDirectory{},
			NewWriter:     func(int) importer.RecordWriter { return &stubWriter{counts: make(map[importer.EntityType]int)} },
			NewUnitOfWork: func() importer.UnitOfWork { return stubUnitOfWork{} },
			Logger:        logger,
		},
	)

	app := application.New(&application.ApplicationOptions{Logger: logger})
	app.RegisterServices(service)

	router := mux.NewRouter()
	controllers.NewImportAPIController(app).Register(router)
	return router
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestImportEndpoint_Success(t *testing.T) {
	router := newTestRouter(t, map[importer.Level][]importer.RawRow{
		importer.LevelProject: {
			{Sheet: "Projects", Number: 2, Fields: []importer.RawField{
				{Name: "id", Value: "P1"},
				{Name: "name", Value: "Apollo"},
				{Name: "client", Value: "Acme"},
			}},
		},
	})

	body, contentType := multipartUpload(t, "file", "plan.xlsx", []byte("workbook bytes"))
	req := httptest.NewRequest(http.MethodPost, "/projects/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result importer.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Summary[importer.EntityProjects])
}

func TestImportEndpoint_FailedImportReturns422(t *testing.T) {
	router := newTestRouter(t, map[importer.Level][]importer.RawRow{
		importer.LevelProject: {
			{Sheet: "Projects", Number: 2, Fields: []importer.RawField{
				{Name: "id", Value: "P1"},
				{Name: "client", Value: "Acme"},
			}},
		},
	})

	body, contentType := multipartUpload(t, "file", "plan.xlsx", []byte("workbook bytes"))
	req := httptest.NewRequest(http.MethodPost, "/projects/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var result importer.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}

func TestImportEndpoint_MissingFileField(t *testing.T) {
	router := newTestRouter(t, nil)

	body, contentType := multipartUpload(t, "attachment", "plan.xlsx", []byte("workbook bytes"))
	req := httptest.NewRequest(http.MethodPost, "/projects/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "IMPORT_MISSING_FILE")
}

func TestImportEndpoint_RejectsNonXLSX(t *testing.T) {
	router := newTestRouter(t, nil)

	body, contentType := multipartUpload(t, "file", "plan.csv", []byte("a,b,c"))
	req := httptest.NewRequest(http.MethodPost, "/projects/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "IMPORT_UNSUPPORTED_FILE_TYPE")
}

func TestImportEndpoint_NonMultipartBody(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/projects/api/import", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "IMPORT_INVALID_MULTIPART")
}
