package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"koken-report/internal/config"
	"koken-report/internal/model"
	"koken-report/internal/report"
	"koken-report/internal/service"
	"koken-report/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestServer(t *testing.T, templatePresent bool) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	st, err := store.New(filepath.Join(dir, "koken.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.UpsertPerson(model.PersonRecord{ID: "12", Name: "山田 花子", ReportMonth: "8"}))

	cfg := config.Default()
	cfg.Output.Dir = dir
	cfg.Template.Path = filepath.Join(dir, "periodic_report.xlsx")
	if templatePresent {
		f := excelize.NewFile()
		require.NoError(t, f.SetSheetName("Sheet1", "後見事務報告書"))
		require.NoError(t, f.SaveAs(cfg.Template.Path))
		require.NoError(t, f.Close())
	}

	now := func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }
	return NewServer(service.New(cfg, st, now), true)
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, true)

	w := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = do(s, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestListPersons(t *testing.T) {
	s := newTestServer(t, true)

	w := do(s, httptest.NewRequest(http.MethodGet, "/api/persons", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Persons []map[string]string `json:"persons"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Persons, 1)
	assert.Equal(t, "山田 花子", body.Persons[0]["name"])
}

func TestPeriodicReportDownload(t *testing.T) {
	s := newTestServer(t, true)

	w := do(s, httptest.NewRequest(http.MethodGet, "/api/persons/12/periodic-report", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, mimeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment;")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("後見事務報告書", "V5")
	require.NoError(t, err)
	assert.Equal(t, "山田 花子", v)
}

func TestPeriodicReportErrors(t *testing.T) {
	s := newTestServer(t, true)
	w := do(s, httptest.NewRequest(http.MethodGet, "/api/persons/99/periodic-report", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	s = newTestServer(t, false)
	w = do(s, httptest.NewRequest(http.MethodGet, "/api/persons/12/periodic-report", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assertTemplateError(t, w, s, report.ErrTemplateNotFound)

	s = newTestServer(t, false)
	require.NoError(t, os.WriteFile(s.svc.Config().Template.Path, []byte("not a workbook"), 0644))
	w = do(s, httptest.NewRequest(http.MethodGet, "/api/persons/12/periodic-report", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assertTemplateError(t, w, s, report.ErrTemplateUnreadable)
}

// assertTemplateError checks the body carries the fixed message and not the template path
func assertTemplateError(t *testing.T, w *httptest.ResponseRecorder, s *Server, want error) {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, want.Error(), body["error"])

	path := s.svc.Config().Template.Path
	assert.NotContains(t, w.Body.String(), filepath.Base(path))
	assert.NotContains(t, w.Body.String(), filepath.Dir(path))
}

func multipartTemplate(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("template", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestFillTemplate(t *testing.T) {
	s := newTestServer(t, true)

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "{{氏名}}様 {{今日}}"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	body, ctype := multipartTemplate(t, "letter.xlsx", buf.Bytes())
	req := httptest.NewRequest(http.MethodPost, "/api/persons/12/fill", body)
	req.Header.Set("Content-Type", ctype)
	w := do(s, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer out.Close()
	v, err := out.GetCellValue("Sheet1", "B2")
	require.NoError(t, err)
	assert.Equal(t, "山田 花子様 2026-10-19", v)
}

func TestFillTemplateBadRequests(t *testing.T) {
	s := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodPost, "/api/persons/12/fill", nil)
	assert.Equal(t, http.StatusBadRequest, do(s, req).Code, "no upload")

	body, ctype := multipartTemplate(t, "notes.txt", []byte("{{氏名}}"))
	req = httptest.NewRequest(http.MethodPost, "/api/persons/12/fill", body)
	req.Header.Set("Content-Type", ctype)
	assert.Equal(t, http.StatusBadRequest, do(s, req).Code, "unsupported type")

	body, ctype = multipartTemplate(t, "broken.xlsx", []byte("not a workbook"))
	req = httptest.NewRequest(http.MethodPost, "/api/persons/12/fill", body)
	req.Header.Set("Content-Type", ctype)
	assert.Equal(t, http.StatusBadRequest, do(s, req).Code, "unreadable template")

	body, ctype = multipartTemplate(t, "letter.xlsx", []byte("x"))
	req = httptest.NewRequest(http.MethodPost, "/api/persons/99/fill", body)
	req.Header.Set("Content-Type", ctype)
	assert.Equal(t, http.StatusNotFound, do(s, req).Code, "unknown person")
}

func TestContentDisposition(t *testing.T) {
	got := contentDisposition("定期報告_12_山田.xlsx")
	assert.Contains(t, got, `filename="report.xlsx"`)
	assert.Contains(t, got, "filename*=UTF-8''%E5%AE%9A")
}
