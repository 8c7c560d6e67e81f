package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/quizgest/internal/config"
	"github.com/dgallion1/quizgest/internal/nlp"
	"github.com/dgallion1/quizgest/internal/pipeline"
	"github.com/dgallion1/quizgest/internal/store"
)

const testKey = "secret"

const physicsText = "Marie Curie discovered radium in 1898 while working in Paris. " +
	"Albert Einstein published relativity theory in 1905! " +
	"Ernest Rutherford described the atomic nucleus in 1911! " +
	"The experiment failed because the samples were contaminated."

var physicsNotes = strings.Join([]string{
	"Physics Notes for Chapter One\n" + "Marie Curie discovered radium in 1898 while working in Paris.",
	"Physics Notes for Chapter One\n" + "Albert Einstein published relativity theory in 1905!",
	"Physics Notes for Chapter One\n" + "Ernest Rutherford described the atomic nucleus in 1911!",
}, "\f")

type testServer struct {
	srv   *Server
	store *store.Store
	orch  *pipeline.Orchestrator
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Defaults()
	cfg.APIKey = testKey
	cfg.Segmenter = nlp.SegmenterSimple
	cfg.RateLimit = 0
	cfg.WorkerCount = 1
	if mutate != nil {
		mutate(&cfg)
	}

	st, err := store.Open(filepath.Join(t.TempDir(), "quizgest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	an := &nlp.StaticAnalyzer{Known: []nlp.Entity{
		{Text: "Marie Curie", Type: nlp.Person},
		{Text: "Albert Einstein", Type: nlp.Person},
		{Text: "Ernest Rutherford", Type: nlp.Person},
		{Text: "1898", Type: nlp.Date},
		{Text: "1905", Type: nlp.Date},
		{Text: "1911", Type: nlp.Date},
	}}
	gen, err := pipeline.NewGenerator(cfg, an, log)
	require.NoError(t, err)

	orch := pipeline.NewOrchestrator(cfg, gen, st, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return &testServer{srv: NewServer(orch, st, log, cfg), store: st, orch: orch}
}

func (ts *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func multipartBody(t *testing.T, field, filename, content string, values map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealth_NoAuth(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quizzes", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/quizzes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid api key", decode(t, rec)["error"])
}

func TestGenerate_JSON(t *testing.T) {
	ts := newTestServer(t, nil)
	body := `{"text":` + jsonString(physicsText) + `,"title":"Physics","seed":9}`

	rec := ts.do(t, http.MethodPost, "/api/generate", strings.NewReader(body), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.Equal(t, "Physics", out["title"])
	assert.EqualValues(t, 9, out["seed"])
	questions, ok := out["questions"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, questions)

	// Nothing generated from pasted text is stored.
	quizzes, err := ts.store.ListQuizzes(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, quizzes)
}

func TestGenerate_TextFormat(t *testing.T) {
	ts := newTestServer(t, nil)
	body := `{"text":` + jsonString(physicsText) + `,"seed":9,"format":"text"}`

	rec := ts.do(t, http.MethodPost, "/api/generate", strings.NewReader(body), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Q: ")
}

func TestGenerate_Errors(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed", `{`, http.StatusBadRequest},
		{"empty text", `{"text":"  "}`, http.StatusBadRequest},
		{"negative top_n", `{"text":"x","top_n":-1}`, http.StatusBadRequest},
		{"bad format", `{"text":"x","format":"xml"}`, http.StatusBadRequest},
		{"too short", `{"text":"Only one sentence is long enough here."}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/generate", strings.NewReader(tt.body), "application/json")
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateQuiz_Lifecycle(t *testing.T) {
	ts := newTestServer(t, nil)

	body, ct := multipartBody(t, "file", "physics.txt", physicsNotes, map[string]string{"seed": "4", "title": "Physics"})
	rec := ts.do(t, http.MethodPost, "/api/quizzes", body, ct)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	out := decode(t, rec)
	jobID, _ := out["job_id"].(string)
	require.NotEmpty(t, jobID)
	assert.Equal(t, "/api/jobs/"+jobID+"/status", out["poll_url"])

	var status map[string]any
	require.Eventually(t, func() bool {
		rec := ts.do(t, http.MethodGet, "/api/jobs/"+jobID+"/status", nil, "")
		status = decode(t, rec)
		return status["status"] == string(pipeline.StatusCompleted) || status["status"] == string(pipeline.StatusFailed)
	}, 5*time.Second, 10*time.Millisecond)
	require.Equal(t, string(pipeline.StatusCompleted), status["status"], status)
	quizID, _ := status["quiz_id"].(string)
	require.NotEmpty(t, quizID)

	rec = ts.do(t, http.MethodGet, "/api/quizzes/"+quizID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, "Physics", got["title"])
	assert.EqualValues(t, 4, got["seed"])
	assert.NotEmpty(t, got["questions"])

	rec = ts.do(t, http.MethodGet, "/api/quizzes/"+quizID+"?format=yaml", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "kind:")

	rec = ts.do(t, http.MethodGet, "/api/quizzes", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list, _ := decode(t, rec)["quizzes"].([]any)
	assert.Len(t, list, 1)

	rec = ts.do(t, http.MethodDelete, "/api/quizzes/"+quizID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/quizzes/"+quizID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/api/quizzes/"+quizID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateQuiz_Rejects(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.MaxUploadBytes = 64 })

	body, ct := multipartBody(t, "file", "slides.pptx", "x", nil)
	rec := ts.do(t, http.MethodPost, "/api/quizzes", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartBody(t, "file", "notes.txt", "short", map[string]string{"seed": "abc"})
	rec = ts.do(t, http.MethodPost, "/api/quizzes", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "invalid seed")

	rec = ts.do(t, http.MethodGet, "/api/jobs/missing/status", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchCreate(t *testing.T) {
	ts := newTestServer(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"a.txt", "b.exe"} {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		fw.Write([]byte(physicsNotes))
	}
	require.NoError(t, mw.Close())

	rec := ts.do(t, http.MethodPost, "/api/quizzes/batch", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	jobs, _ := decode(t, rec)["jobs"].([]any)
	require.Len(t, jobs, 2)
	first := jobs[0].(map[string]any)
	second := jobs[1].(map[string]any)
	assert.NotEmpty(t, first["job_id"])
	assert.Contains(t, second["error"], "unsupported file type")
}

func TestPipelineStats(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodPost, "/api/generate", strings.NewReader(`{"text":`+jsonString(physicsText)+`}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/stats/pipeline", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats, _ := decode(t, rec)["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["runs"])
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) {
		c.RateLimit = 0.001
		c.RateBurst = 2
	})
	body := `{"text":"  "}`
	for i := 0; i < 2; i++ {
		rec := ts.do(t, http.MethodPost, "/api/generate", strings.NewReader(body), "application/json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
	rec := ts.do(t, http.MethodPost, "/api/generate", strings.NewReader(body), "application/json")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// Reads are not throttled.
	rec = ts.do(t, http.MethodGet, "/api/quizzes", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientLimiter_Disabled(t *testing.T) {
	l := newClientLimiter(0, 1)
	for i := 0; i < 100; i++ {
		assert.True(t, l.allow("10.0.0.1"))
	}
}

func TestClientLimiter_PerClient(t *testing.T) {
	l := newClientLimiter(0.001, 1)
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", sanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "notes.txt", sanitizeFilename("notes.txt"))
	assert.Equal(t, "unnamed", sanitizeFilename(""))
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
