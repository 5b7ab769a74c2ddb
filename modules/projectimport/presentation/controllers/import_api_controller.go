package controllers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/services"
	"github.com/VishnuMohan31/Worky-sub005/pkg/application"
	"github.com/VishnuMohan31/Worky-sub005/pkg/httpapi"
	"github.com/VishnuMohan31/Worky-sub005/pkg/middleware"
)

// ImportAPIController exposes the spreadsheet import endpoint. It validates
// the upload envelope (field, type, size) and delegates everything else to
// the import service; no business logic lives here.
type ImportAPIController struct {
	app      application.Application
	imports  *services.ImportService
	basePath string
}

func NewImportAPIController(app application.Application) application.Controller {
	return &ImportAPIController{
		app:      app,
		imports:  app.Service(services.ImportService{}).(*services.ImportService),
		basePath: "/projects/api",
	}
}

func (c *ImportAPIController) Key() string {
	return c.basePath
}

func (c *ImportAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/import", c.Import).Methods(http.MethodPost)
}

func (c *ImportAPIController) Import(w http.ResponseWriter, r *http.Request) {
	log := middleware.UseLogger(r.Context())

	maxSize := c.imports.MaxUploadSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			_ = httpapi.WriteError(w, http.StatusRequestEntityTooLarge, "IMPORT_FILE_TOO_LARGE", "uploaded file exceeds the size limit", nil)
			return
		}
		_ = httpapi.WriteError(w, http.StatusBadRequest, "IMPORT_INVALID_MULTIPART", "invalid multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "IMPORT_MISSING_FILE", `multipart field "file" is required`, nil)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".xlsx" {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "IMPORT_UNSUPPORTED_FILE_TYPE", "only .xlsx workbooks are supported", nil)
		return
	}

	result := c.imports.Import(r.Context(), file)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	if err := httpapi.WriteJSON(w, status, result); err != nil {
		log.WithError(err).Error("failed to write import result")
	}
}
