package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sort"

	"github.com/plateworks/tavola/pkg/errors"
	"github.com/plateworks/tavola/pkg/imageio"
	"github.com/plateworks/tavola/pkg/layout"
	"github.com/plateworks/tavola/pkg/pipeline"
	"github.com/plateworks/tavola/pkg/render"
)

// generateRequest is the JSON "options" part of a multipart upload.
type generateRequest struct {
	Layout  layout.Options `json:"layout"`
	Formats []string       `json:"formats,omitempty"`
	Quality int            `json:"quality,omitempty"`
	DPI     float64        `json:"dpi,omitempty"`
	Refresh bool           `json:"refresh,omitempty"`
}

// pipelineOptions converts the request into runner options. The input dir
// is a placeholder; uploads never touch the filesystem.
func (req *generateRequest) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		InputDir: "upload",
		Layout:   req.Layout,
		Formats:  req.Formats,
		Quality:  req.Quality,
		DPI:      req.DPI,
		Refresh:  req.Refresh,
	}
}

// parseUpload decodes the multipart form: image files under "images", an
// optional CSV under "metadata", and an optional JSON "options" part.
func parseUpload(r *http.Request) (*imageio.Result, *generateRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "parse multipart form")
	}

	req := &generateRequest{Layout: layout.Options{Mode: layout.ModeGrid}}
	if raw := r.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), req); err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "parse options JSON")
		}
	}

	files := make(map[string][]byte)
	for _, header := range r.MultipartForm.File["images"] {
		f, err := header.Open()
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrCodeImageLoad, "open upload %s", header.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrCodeImageLoad, "read upload %s", header.Filename)
		}
		files[header.Filename] = data
	}
	if len(files) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "no images uploaded")
	}

	loaded, err := imageio.LoadFiles(files)
	if err != nil {
		return nil, nil, err
	}

	if headers := r.MultipartForm.File["metadata"]; len(headers) > 0 {
		f, err := headers[0].Open()
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "open metadata upload")
		}
		defer f.Close()
		table, err := imageio.ReadMetadata(f)
		if err != nil {
			return nil, nil, err
		}
		table.Apply(loaded.Items)
	}

	return loaded, req, nil
}

// handleGenerate runs the full pipeline on an upload and returns a zip
// archive with every rendered artifact plus a machine-readable report.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	loaded, req, err := parseUpload(r)
	if err != nil {
		writeError(w, err)
		return
	}

	opts := req.pipelineOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, err)
		return
	}

	doc, report, docHit, err := s.runner.LayoutWithCacheInfo(r.Context(), loaded.Items, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	artifacts, renderHit, err := s.runner.RenderWithCacheInfo(r.Context(), doc, loaded, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	reportJSON, err := json.MarshalIndent(struct {
		Report       *layout.Report    `json:"report"`
		LoadWarnings []imageio.Warning `json:"load_warnings,omitempty"`
	}{report, loaded.Warnings}, "", "  ")
	if err != nil {
		writeError(w, errors.Wrap(err, errors.ErrCodeEncoding, "encode report"))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="plates.zip"`)
	w.Header().Set("X-Cache-Document", cacheStatus(docHit))
	w.Header().Set("X-Cache-Render", cacheStatus(renderHit))

	if err := writeZip(w, artifacts, reportJSON); err != nil {
		s.cfg.Logger.Error("write zip response", "error", err)
	}
}

// handlePreview lays out an upload and returns the first plate as JSON.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	loaded, req, err := parseUpload(r)
	if err != nil {
		writeError(w, err)
		return
	}

	opts := req.pipelineOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, err)
		return
	}

	page, report, err := layout.PreviewFirstPage(loaded.Items, opts.Layout)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":   page,
		"report": report,
	})
}

// handleHeaders parses an uploaded CSV and lists its metadata fields.
func (s *Server) handleHeaders(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, errors.Wrap(err, errors.ErrCodeInvalidInput, "parse multipart form"))
		return
	}
	headers := r.MultipartForm.File["metadata"]
	if len(headers) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "no metadata file uploaded"))
		return
	}

	f, err := headers[0].Open()
	if err != nil {
		writeError(w, errors.Wrap(err, errors.ErrCodeInvalidInput, "open metadata upload"))
		return
	}
	defer f.Close()

	table, err := imageio.ReadMetadata(f)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"fields": table.Fields})
}

// handleFormats lists the supported output formats.
func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	formats := make([]string, 0, len(render.ValidFormats))
	for f := range render.ValidFormats {
		formats = append(formats, string(f))
	}
	sort.Strings(formats)
	writeJSON(w, http.StatusOK, map[string]any{"formats": formats})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeZip streams the artifacts and report as a zip archive.
func writeZip(w io.Writer, artifacts map[string][]render.File, reportJSON []byte) error {
	zw := zip.NewWriter(w)

	formats := make([]string, 0, len(artifacts))
	for format := range artifacts {
		formats = append(formats, format)
	}
	sort.Strings(formats)

	for _, format := range formats {
		for _, f := range artifacts[format] {
			entry, err := zw.Create(format + "/" + f.Name)
			if err != nil {
				return err
			}
			if _, err := entry.Write(f.Data); err != nil {
				return err
			}
		}
	}

	entry, err := zw.Create("report.json")
	if err != nil {
		return err
	}
	if _, err := io.Copy(entry, bytes.NewReader(reportJSON)); err != nil {
		return err
	}

	return zw.Close()
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to an HTTP status and JSON body.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(code),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidMode, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPageSize, errors.ErrCodeInvalidSort, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// cacheStatus formats a hit flag for response headers.
func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
