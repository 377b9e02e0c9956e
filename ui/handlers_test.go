package ui

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"balloonsum/adapters/jsonlog"
	"balloonsum/internal/config"
	"balloonsum/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runAPayload = `[
	{"out_of_power": false, "zeropressure": false, "envelope_burst": false, "cumulative_reward": 1.0, "time_within_radius": 0.5},
	{"out_of_power": true,  "zeropressure": false, "envelope_burst": false, "cumulative_reward": 2.0, "time_within_radius": 0.6},
	{"out_of_power": false, "zeropressure": false, "envelope_burst": false, "cumulative_reward": 3.0, "time_within_radius": 0.7}
]`

const runBPayload = `[
	{"out_of_power": true, "zeropressure": false, "envelope_burst": false, "cumulative_reward": -10.0, "time_within_radius": 0.1}
]`

func testServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0"},
		Upload: config.UploadConfig{MaxFileSize: 1 << 20, MaxFiles: 8},
		Report: config.ReportConfig{Title: "Evaluation summary", HeaderCellWidth: 150},
	}
	renderer, err := report.NewRenderer(cfg.Report)
	require.NoError(t, err)

	return NewServer(cfg, jsonlog.NewReader(), renderer, nil)
}

func multipartBody(t *testing.T, files map[string]string, order []string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range order {
		part, err := w.CreateFormFile("logs", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHandleIndex(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/upload"`)
}

func TestHandleUpload_TwoFilesInOrder(t *testing.T) {
	s := testServer(t)
	body, contentType := multipartBody(t,
		map[string]string{"runA.json": runAPayload, "runB.json": runBPayload},
		[]string{"runA.json", "runB.json"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	html := rec.Body.String()
	posA := strings.Index(html, "runA")
	posB := strings.Index(html, "runB")
	require.Greater(t, posA, -1)
	require.Greater(t, posB, -1)

	// Row labels are base names, in upload order
	assert.Less(t, posA, posB)
	assert.NotContains(t, html, "runA.json")

	// runB has no finished episodes
	assert.Contains(t, html, "NaN")
}

func TestHandleUpload_NoFiles(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)

	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpload_RejectsNonJSON(t *testing.T) {
	s := testServer(t)
	body, contentType := multipartBody(t,
		map[string]string{"runA.csv": "a,b,c"},
		[]string{"runA.csv"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), ".json")
}

func TestHandleUpload_BadDatasetAbortsBatch(t *testing.T) {
	s := testServer(t)
	body, contentType := multipartBody(t,
		map[string]string{"runA.json": runAPayload, "broken.json": `[{"out_of_power": false}]`},
		[]string{"runA.json", "broken.json"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	s.Router().ServeHTTP(rec, req)

	// Whole batch fails; the error names dataset and field
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "broken")
}

func TestHandleExport_NoSummaryYet(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/export.xlsx", nil)

	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleExport_AfterUpload(t *testing.T) {
	s := testServer(t)
	body, contentType := multipartBody(t,
		map[string]string{"runA.json": runAPayload},
		[]string{"runA.json"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/export.xlsx", nil)
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "evaluation_summary.xlsx")
}

func TestHandleNotes(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notes", nil)

	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Methodology")
}

func TestHandleHistory_Disabled(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/history", nil)

	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
