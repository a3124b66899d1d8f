package httpserver

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheet-reader/api/internal/config"
	"sheet-reader/api/internal/handle"
	"sheet-reader/api/internal/logging"
	"sheet-reader/api/internal/ocr"
	"sheet-reader/api/internal/ocr/engines"
	"sheet-reader/api/internal/ocr/types"
	"sheet-reader/api/internal/staging"
)

type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeFile(ctx context.Context, path string) (types.AnswerMap, error) {
	return types.AnswerMap{}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	st, err := staging.New(filepath.Join(t.TempDir(), "uploads"), 1<<20)
	require.NoError(t, err)
	return NewRouter(handle.New(stubAnalyzer{}, st, false), "gemini", "gemini-2.5-flash")
}

// newKeylessRouter wires the real engine from a config without an API key.
func newKeylessRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{Provider: "gemini", GeminiModel: "gemini-2.5-flash"}
	require.Equal(t, "GEMINI_API_KEY", cfg.MissingCredential())

	eng, err := engines.FromConfig(cfg)
	require.NoError(t, err)
	st, err := staging.New(filepath.Join(t.TempDir(), "uploads"), 1<<20)
	require.NoError(t, err)
	h := handle.New(ocr.NewAnalyzer(eng, 5*time.Second), st, false)
	return NewRouter(h, eng.Name(), eng.GetModel())
}

func TestRouter_WithoutAPIKeyStillServes(t *testing.T) {
	r := newKeylessRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/analyze-sheet", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))

	for _, p := range []string{"/healthz", "/"} {
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusOK, rec.Code, p)
	}
}

func TestRouter_WithoutAPIKeyAnalysisFails(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="sheet.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-sheet", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	newKeylessRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Failed to analyze the image. Please try again."}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Healthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouter_IndexOnBothPaths(t *testing.T) {
	r := newTestRouter(t)
	for _, p := range []string{"/", "/api/index"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusOK, rec.Code, p)
		assert.Contains(t, rec.Body.String(), "/api/analyze-sheet", p)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestRouter_PreflightShortCircuits(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/analyze-sheet", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestRouter_GetOnAnalyzeIs405Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyze-sheet", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Method not allowed"}`, rec.Body.String())
}

func TestRouter_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Not found"}`, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc123", rec.Header().Get("X-Request-ID"))
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logging.SetLoggerForTest(zerolog.New(&buf))
	t.Cleanup(func() { logging.SetLoggerForTest(zerolog.Nop()) })

	h := requestID(accessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"bytes":15`)
	assert.Contains(t, out, `"request_id":"rid-1"`)
	assert.Contains(t, out, `"method":"POST"`)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler()) }()

	cancel()
	assert.NoError(t, <-done)
}
