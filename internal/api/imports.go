package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/importer"
)

type importResponse struct {
	FileName string `json:"file_name"`
	Imported int    `json:"imported"`
}

type mappingRequest struct {
	Name              string `json:"name"`
	DateColumn        string `json:"date_column"`
	ValueColumn       string `json:"value_column"`
	DescriptionColumn string `json:"description_column"`
}

// importStatement accepts a multipart form with a "file" part. Optional
// fields: mapping_id, no_header, date_column, value_column, description_column.
func (s *Server) importStatement(r *http.Request, svc *services) (int, any, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return 0, nil, common.NewValidationError("file exceeds %d bytes", maxUploadBytes)
		}
		return 0, nil, common.NewValidationError("expected a multipart form with a file")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return 0, nil, common.NewValidationError("no file provided")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return 0, nil, common.NewValidationError("failed to read uploaded file")
	}

	opts := importer.Options{MappingID: r.FormValue("mapping_id")}
	if raw := r.FormValue("no_header"); raw != "" {
		if opts.NoHeader, err = strconv.ParseBool(raw); err != nil {
			return 0, nil, common.NewValidationError("invalid no_header flag %q", raw)
		}
	}
	columns := importer.ColumnMapping{
		Date:        r.FormValue("date_column"),
		Value:       r.FormValue("value_column"),
		Description: r.FormValue("description_column"),
	}
	if columns != (importer.ColumnMapping{}) {
		opts.Columns = &columns
	}

	result, err := svc.importer.Import(r.Context(), s.ownerID, header.Filename, data, opts)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, importResponse{FileName: result.FileName, Imported: result.Imported}, nil
}

func (s *Server) saveMapping(r *http.Request, svc *services) (int, any, error) {
	var req mappingRequest
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	m, err := svc.importer.SaveMapping(r.Context(), s.ownerID, req.Name, importer.ColumnMapping{
		Date:        req.DateColumn,
		Value:       req.ValueColumn,
		Description: req.DescriptionColumn,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, toMapping(m), nil
}

func (s *Server) listMappings(r *http.Request, svc *services) (int, any, error) {
	list, err := svc.importer.ListMappings(r.Context(), s.ownerID)
	if err != nil {
		return 0, nil, err
	}
	out := make([]*mappingResponse, 0, len(list))
	for i := range list {
		out = append(out, toMapping(&list[i]))
	}
	return http.StatusOK, out, nil
}
