package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// encodePNG returns a solid-color PNG of the given size.
func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 140, G: 120, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// uploadBody builds a multipart body with images, optional metadata CSV,
// and an optional options JSON part.
func uploadBody(t *testing.T, images map[string][]byte, metadataCSV, optionsJSON string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, data := range images {
		part, err := mw.CreateFormFile("images", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if metadataCSV != "" {
		part, err := mw.CreateFormFile("metadata", "meta.csv")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(part, metadataCSV); err != nil {
			t.Fatal(err)
		}
	}
	if optionsJSON != "" {
		if err := mw.WriteField("options", optionsJSON); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func testServer() *Server {
	return New(Config{Addr: ":0"})
}

const testOptions = `{
	"layout": {"mode": "grid", "page_width": 1100, "page_height": 1100, "margin": 50},
	"formats": ["json", "svg"]
}`

func TestHandleGenerate(t *testing.T) {
	srv := testServer()
	images := map[string][]byte{
		"vessel_01.png": encodePNG(t, 120, 100),
		"vessel_02.png": encodePNG(t, 140, 100),
	}
	body, contentType := uploadBody(t, images, "", testOptions)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %q, want application/zip", ct)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
	if got := rec.Header().Get("X-Cache-Document"); got != "miss" {
		t.Errorf("X-Cache-Document = %q, want miss on cold run", got)
	}

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"json/plates.json", "svg/plate_001.svg", "report.json"} {
		if !names[want] {
			t.Errorf("zip is missing %q, got %v", want, names)
		}
	}
}

func TestHandleGenerateInvalidMode(t *testing.T) {
	srv := testServer()
	images := map[string][]byte{"a.png": encodePNG(t, 50, 50)}
	body, contentType := uploadBody(t, images, "", `{"layout": {"mode": "spiral"}}`)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if resp["code"] != "INVALID_MODE" {
		t.Errorf("code = %q, want INVALID_MODE", resp["code"])
	}
}

func TestHandleGenerateNoImages(t *testing.T) {
	srv := testServer()
	body, contentType := uploadBody(t, nil, "", testOptions)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlePreview(t *testing.T) {
	srv := testServer()
	images := map[string][]byte{
		"vessel_01.png": encodePNG(t, 120, 100),
		"vessel_02.png": encodePNG(t, 140, 100),
	}
	body, contentType := uploadBody(t, images, "", testOptions)

	req := httptest.NewRequest(http.MethodPost, "/api/preview", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Page struct {
			Index  int `json:"index"`
			Images []struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"images"`
		} `json:"page"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("preview body is not JSON: %v", err)
	}
	if len(resp.Page.Images) != 2 {
		t.Errorf("first page has %d images, want 2", len(resp.Page.Images))
	}
}

func TestHandlePreviewWithMetadataSort(t *testing.T) {
	srv := testServer()
	images := map[string][]byte{
		"a.png": encodePNG(t, 100, 100),
		"b.png": encodePNG(t, 100, 100),
	}
	csv := "filename,site\na,Beta\nb,Alpha\n"
	options := `{
		"layout": {
			"mode": "grid", "page_width": 1100, "page_height": 1100, "margin": 50,
			"sort_primary": {"method": "metadata", "field": "site"}
		}
	}`
	body, contentType := uploadBody(t, images, csv, options)

	req := httptest.NewRequest(http.MethodPost, "/api/preview", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	// b.png (site Alpha) sorts before a.png (site Beta).
	if !strings.Contains(rec.Body.String(), "b.png") {
		t.Errorf("preview body missing placed image: %s", rec.Body.String())
	}
}

func TestHandleHeaders(t *testing.T) {
	srv := testServer()
	body, contentType := uploadBody(t, nil, "filename,site,type\nbowl,A,open\n", "")

	req := httptest.NewRequest(http.MethodPost, "/api/headers", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Fields []string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Fields) != 2 || resp.Fields[0] != "site" || resp.Fields[1] != "type" {
		t.Errorf("fields = %v, want [site type]", resp.Fields)
	}
}

func TestHandleFormats(t *testing.T) {
	srv := testServer()
	req := httptest.NewRequest(http.MethodGet, "/api/formats", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Formats []string `json:"formats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Formats) != 5 {
		t.Errorf("formats = %v, want all five", resp.Formats)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := testServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %s", rec.Body.String())
	}
}
