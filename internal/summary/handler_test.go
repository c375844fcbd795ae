package summary

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"medsummary/internal/web"
)

type memStore struct {
	m map[uuid.UUID][]byte
}

func newMemStore() *memStore {
	return &memStore{m: make(map[uuid.UUID][]byte)}
}

func (s *memStore) Put(payload []byte) uuid.UUID {
	id := uuid.New()
	s.m[id] = payload
	return id
}

func (s *memStore) Get(id uuid.UUID) ([]byte, bool) {
	raw, ok := s.m[id]
	return raw, ok
}

type testServer struct {
	router http.Handler
	client *fakeSummarizer
	report *fakeReport
	store  *memStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	pages, err := web.NewRenderer()
	require.NoError(t, err)

	ts := &testServer{
		client: &fakeSummarizer{},
		report: &fakeReport{doc: []byte("%PDF-1.4 test")},
		store:  newMemStore(),
	}
	svc := NewService(ts.client, ts.report, zap.NewNop())
	h := NewHandler(svc, ts.store, pages, zap.NewNop(), 1<<20)

	r := chi.NewRouter()
	RegisterRoutes(r, h)
	r.Route("/api", func(r chi.Router) {
		RegisterAPIRoutes(r, h)
	})
	ts.router = r
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, target, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHome(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, web.ProductName)
	assert.Contains(t, body, "Upload Medical Report")
	assert.Contains(t, body, "Frequently Asked Questions")
	assert.NotContains(t, body, "upload-error")
}

func TestUpload(t *testing.T) {
	t.Run("Success Redirects With Exact Payload", func(t *testing.T) {
		ts := newTestServer(t)
		ts.client.resp = json.RawMessage(fullPayload)

		rec := ts.do(uploadRequest(t, "/upload", "labs.pdf", PDFContentType, []byte("%PDF-1.7")))
		require.Equal(t, http.StatusSeeOther, rec.Code)

		loc := rec.Header().Get("Location")
		require.True(t, strings.HasPrefix(loc, "/result/"), loc)
		id, err := uuid.Parse(strings.TrimPrefix(loc, "/result/"))
		require.NoError(t, err)

		stored, ok := ts.store.Get(id)
		require.True(t, ok)
		assert.Equal(t, fullPayload, string(stored))
		assert.Equal(t, 1, ts.client.calls)
		assert.Equal(t, "labs.pdf", ts.client.fileName)

		page := ts.do(httptest.NewRequest(http.MethodGet, loc, nil))
		require.Equal(t, http.StatusOK, page.Code)
		body := page.Body.String()
		assert.Contains(t, body, "Medical Report Summary")
		assert.Contains(t, body, "Jane Doe")
		assert.Contains(t, body, "Fatigue and increased thirst")
		assert.Contains(t, body, `href="#key-findings"`)
		assert.Contains(t, body, loc+"/report.pdf")
		assert.NotContains(t, body, "N/A")
	})

	t.Run("Non PDF Is Rejected Without Network Call", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(uploadRequest(t, "/upload", "scan.png", "image/png", []byte("png")))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), MsgInvalidFile)
		assert.Zero(t, ts.client.calls)
	})

	t.Run("Missing File", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(uploadRequest(t, "/upload", "", "", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), MsgInvalidFile)
		assert.Zero(t, ts.client.calls)
	})

	t.Run("Failure Keeps User On Upload View", func(t *testing.T) {
		ts := newTestServer(t)
		ts.client.err = errors.New("summarizer API error: 500 Internal Server Error")

		rec := ts.do(uploadRequest(t, "/upload", "labs.pdf", PDFContentType, []byte("%PDF")))
		assert.Equal(t, http.StatusBadGateway, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, MsgUploadFailed)
		assert.Contains(t, body, `id="file-input"`)
		assert.NotContains(t, body, " disabled>")
		assert.NotContains(t, body, "data-loading")
		assert.Empty(t, ts.store.m)
	})
}

func TestUploadTooLarge(t *testing.T) {
	pages, err := web.NewRenderer()
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	client := &fakeSummarizer{}
	svc := NewService(client, &fakeReport{}, zap.NewNop())
	h := NewHandler(svc, newMemStore(), pages, zap.New(core), 1024)

	r := chi.NewRouter()
	RegisterRoutes(r, h)

	big := bytes.Repeat([]byte("%PDF"), 16<<10)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "/upload", "large.pdf", PDFContentType, big))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgInvalidFile)
	assert.Zero(t, client.calls)

	tooLarge := logs.FilterMessage("upload too large").All()
	require.Len(t, tooLarge, 1)
	assert.Equal(t, zap.WarnLevel, tooLarge[0].Level)
	assert.EqualValues(t, 1024, tooLarge[0].ContextMap()["limit_bytes"])
	assert.Zero(t, logs.FilterMessage("upload rejected").Len())
}

func TestResult(t *testing.T) {
	t.Run("Missing State Redirects Home", func(t *testing.T) {
		ts := newTestServer(t)
		for _, target := range []string{"/result", "/result/not-a-uuid", "/result/" + uuid.NewString()} {
			rec := ts.do(httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusSeeOther, rec.Code, target)
			assert.Equal(t, "/", rec.Header().Get("Location"), target)
		}
	})

	t.Run("Insufficient Data Shows Only Empty State", func(t *testing.T) {
		ts := newTestServer(t)
		id := ts.store.Put([]byte(`{"insufficient_data": true, "sections": {"chief_complaint": "Cough"}}`))

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/result/"+id.String(), nil))
		require.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, "Not Enough Medical Data")
		assert.Contains(t, body, `href="/"`)
		assert.NotContains(t, body, "Chief Complaint")
		assert.NotContains(t, body, "Cough")
	})

	t.Run("Empty Summary", func(t *testing.T) {
		ts := newTestServer(t)
		id := ts.store.Put([]byte(`{}`))

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/result/"+id.String(), nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "No sections found in summary.")
	})

	t.Run("Charts Are Embedded", func(t *testing.T) {
		ts := newTestServer(t)
		id := ts.store.Put([]byte(`{"dynamic_chart": {"chart_type": "pie", "title": "Macros", "data": [{"label": "Carbs", "value": 50}]}}`))

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/result/"+id.String(), nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `id="charts"`)
		assert.Contains(t, body, `<figure class="chart" aria-label="Macros">`)
		assert.Contains(t, body, "echarts")
	})
}

func TestResultDownloads(t *testing.T) {
	ts := newTestServer(t)
	id := ts.store.Put([]byte(fullPayload))

	t.Run("JSON", func(t *testing.T) {
		rec := ts.do(httptest.NewRequest(http.MethodGet, "/result/"+id.String()+"/summary.json", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, fullPayload, rec.Body.String())
	})

	t.Run("PDF", func(t *testing.T) {
		rec := ts.do(httptest.NewRequest(http.MethodGet, "/result/"+id.String()+"/report.pdf", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, PDFContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "medical-summary.pdf")
		assert.Equal(t, "%PDF-1.4 test", rec.Body.String())
		assert.Equal(t, "Jane Doe", ts.report.got.Profile.Name)
	})

	t.Run("PDF Failure", func(t *testing.T) {
		ts.report.err = errors.New("no font")
		defer func() { ts.report.err = nil }()

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/result/"+id.String()+"/report.pdf", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("Unknown State", func(t *testing.T) {
		rec := ts.do(httptest.NewRequest(http.MethodGet, "/result/"+uuid.NewString()+"/summary.json", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})
}

func TestAPIUpload(t *testing.T) {
	t.Run("Success Returns Payload", func(t *testing.T) {
		ts := newTestServer(t)
		ts.client.resp = json.RawMessage(`{"insufficient_data":true}`)

		rec := ts.do(uploadRequest(t, "/api/summaries", "labs.pdf", PDFContentType, []byte("%PDF")))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, `{"insufficient_data":true}`, rec.Body.String())
	})

	t.Run("Errors Use Envelope", func(t *testing.T) {
		ts := newTestServer(t)
		ts.client.err = context.DeadlineExceeded

		rec := ts.do(uploadRequest(t, "/api/summaries", "labs.pdf", PDFContentType, []byte("%PDF")))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"success": false, "message": "`+MsgUploadFailed+`"}`, rec.Body.String())

		rec = ts.do(uploadRequest(t, "/api/summaries", "notes.txt", "text/plain", []byte("hi")))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.JSONEq(t, `{"success": false, "message": "`+MsgInvalidFile+`"}`, rec.Body.String())
	})
}
