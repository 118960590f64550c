package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookcatalog/internal/bookio"
	domainerrors "github.com/listenupapp/bookcatalog/internal/errors"
	"github.com/listenupapp/bookcatalog/internal/http/response"
)

// importFormField is the multipart field carrying the uploaded file.
const importFormField = "file"

func (s *Server) registerTransferRoutes() {
	// Multipart upload, bound by hand.
	s.router.Post(apiPrefix+"/books/import", s.handleImportBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportBooks",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/books/export",
		Summary:     "Export books",
		Description: "Downloads one page of the catalog as JSON or CSV",
		Tags:        []string{"Books"},
	}, s.handleExportBooks)
}

// ExportInput contains export query parameters.
type ExportInput struct {
	Format string `query:"format" default:"json" doc:"Export format: json or csv"`
	PageParams
}

// ExportOutput is a file download.
type ExportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func (s *Server) handleExportBooks(ctx context.Context, input *ExportInput) (*ExportOutput, error) {
	format, err := bookio.ParseFormat(input.Format)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	count, err := s.services.Catalog.ExportBooks(ctx, &buf, format, input.listParams())
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Exported books", "format", format, "count", count)

	return &ExportOutput{
		ContentType:        format.ContentType(),
		ContentDisposition: "attachment; filename=" + format.Filename(),
		Body:               buf.Bytes(),
	}, nil
}

// handleImportBooks reads a .json or .csv upload from the "file" field and
// creates every book that does not exist yet.
func (s *Server) handleImportBooks(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserID(r.Context())
	if err != nil {
		response.Unauthorized(w, msgAuthRequired, s.logger)
		return
	}

	if r.ContentLength > s.opts.MaxUploadSize {
		response.Error(w, http.StatusRequestEntityTooLarge, domainerrors.CodeValidation, "Upload too large", s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
	if err := r.ParseMultipartForm(s.opts.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, domainerrors.CodeValidation, "Upload too large", s.logger)
			return
		}
		response.BadRequest(w, "Expected a multipart form with a file field", s.logger)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(importFormField)
	if err != nil {
		response.BadRequest(w, "Missing file field", s.logger)
		return
	}
	defer file.Close()

	result, err := s.services.Catalog.ImportBooks(r.Context(), header.Filename, file)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.logger.Info("Books imported",
		"user_id", userID,
		"username", GetUsername(r.Context()),
		"file", header.Filename,
		"imported", len(result.Imported),
		"skipped", len(result.Skipped),
	)
	response.Created(w, result, s.logger)
}
