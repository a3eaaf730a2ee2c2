package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"ai-study-planner/internal/app"
	"ai-study-planner/internal/llm"
	"ai-study-planner/internal/metrics"
	"ai-study-planner/internal/planner"
	"ai-study-planner/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlans struct {
	credential bool
	uploads    []app.Upload
	batch      planner.Batch
	err        error
}

func (f *fakePlans) HasCredential() bool { return f.credential }

func (f *fakePlans) GeneratePlans(ctx context.Context, uploads []app.Upload) (planner.Batch, error) {
	f.uploads = uploads
	return f.batch, f.err
}

type fakeUsage struct{}

func (fakeUsage) GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	return []metrics.DailyUsage{{Date: "2026-10-19", TotalPrompt: 100, TotalCompletion: 50, TotalExecution: 2}}, nil
}

var exam = time.Date(2026, time.October, 26, 0, 0, 0, 0, time.UTC)

func sampleBatch() planner.Batch {
	next := exam.AddDate(0, 0, -7)
	return planner.Batch{
		Results: []planner.StudyPlanResult{
			{CourseName: "Calculus II", ExamDate: exam, Days: 7, PlanText: "Day 1: Limits <review>"},
			{CourseName: "Scanned", ExamDate: exam, Error: planner.KindExtractionFailure, Detail: "document contains no extractable text"},
		},
		Sessions: []planner.Session{
			{Date: next, Course: "Calculus II", Day: 1, Task: "Limits", DaysUntilExam: 7, ExamDate: exam},
		},
		Summary: planner.Summary{Courses: 1, Sessions: 1, DaysUntilLastExam: 7, NextSession: &next},
	}
}

type row struct {
	file, content, url, course, date string
}

func multipartBody(t *testing.T, rows map[int]row) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i, r := range rows {
		if r.file != "" {
			fw, err := mw.CreateFormFile("syllabus_"+strconv.Itoa(i), r.file)
			require.NoError(t, err)
			fw.Write([]byte(r.content))
		}
		if r.url != "" {
			mw.WriteField("url_"+strconv.Itoa(i), r.url)
		}
		if r.course != "" {
			mw.WriteField("course_"+strconv.Itoa(i), r.course)
		}
		mw.WriteField("exam_date_"+strconv.Itoa(i), r.date)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newTestServer(plans *fakePlans) (*Server, session.ResultStore) {
	store := session.NewMemoryStore(time.Minute)
	return NewServer(plans, store, fakeUsage{}, "missing.db"), store
}

func TestIndex(t *testing.T) {
	srv, _ := newTestServer(&fakePlans{credential: true})

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="syllabus_0"`)
	assert.Contains(t, rec.Body.String(), `name="exam_date_4"`)
	assert.NotContains(t, rec.Body.String(), "No API key")
}

func TestCreatePlans_RedirectsToStoredResult(t *testing.T) {
	plans := &fakePlans{credential: true, batch: sampleBatch()}
	srv, _ := newTestServer(plans)
	handler := srv.Routes()

	body, contentType := multipartBody(t, map[int]row{
		0: {file: "Calculus II.pdf", content: "%PDF", date: "2026-10-26"},
		2: {url: "https://example.edu/syllabus", course: "Physics", date: "2026-11-02"},
	})
	req := httptest.NewRequest(http.MethodPost, "/plans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	assert.Regexp(t, `^/plans/[0-9a-f-]{36}$`, location)

	require.Len(t, plans.uploads, 2)
	assert.Equal(t, "Calculus II.pdf", plans.uploads[0].Filename)
	assert.Equal(t, []byte("%PDF"), plans.uploads[0].Data)
	assert.Equal(t, exam, plans.uploads[0].ExamDate)
	assert.Equal(t, "https://example.edu/syllabus", plans.uploads[1].URL)
	assert.Equal(t, "Physics", plans.uploads[1].Course)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, location, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "Calculus II")
	assert.Contains(t, page, "Day 1: Limits &lt;review&gt;")
	assert.Contains(t, page, planner.KindExtractionFailure.Message())
	assert.Contains(t, page, "Mon, Oct 19 2026")
}

func TestCreatePlans_MissingCredential(t *testing.T) {
	plans := &fakePlans{credential: false}
	srv, _ := newTestServer(plans)

	body, contentType := multipartBody(t, map[int]row{0: {file: "a.txt", content: "x", date: "2026-10-26"}})
	req := httptest.NewRequest(http.MethodPost, "/plans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), planner.KindMissingCredential.Message())
	assert.Nil(t, plans.uploads, "no upload is processed without a credential")
}

func TestCreatePlans_BadForm(t *testing.T) {
	tests := []struct {
		name string
		rows map[int]row
		want string
	}{
		{name: "NoRows", rows: map[int]row{}, want: "upload at least one syllabus"},
		{name: "MissingDate", rows: map[int]row{0: {file: "a.txt", content: "x"}}, want: "exam date is required"},
		{name: "BadDate", rows: map[int]row{0: {file: "a.txt", content: "x", date: "26/10/2026"}}, want: "YYYY-MM-DD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(&fakePlans{credential: true})
			body, contentType := multipartBody(t, tt.rows)
			req := httptest.NewRequest(http.MethodPost, "/plans", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			srv.Routes().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestShowPlans_Unknown(t *testing.T) {
	srv, _ := newTestServer(&fakePlans{credential: true})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIPlans(t *testing.T) {
	plans := &fakePlans{credential: true, batch: sampleBatch()}
	srv, _ := newTestServer(plans)

	body, contentType := multipartBody(t, map[int]row{0: {file: "Calculus II.pdf", content: "%PDF", date: "2026-10-26"}})
	req := httptest.NewRequest(http.MethodPost, "/api/plans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got planner.Batch
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got.Results, 2)
	assert.Equal(t, "Day 1: Limits <review>", got.Results[0].PlanText)
	assert.Equal(t, planner.KindExtractionFailure, got.Results[1].Error)
}

type echoProvider struct{ calls int }

func (e *echoProvider) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	e.calls++
	return llm.ContentResponse{Content: "Day 1: " + prompt}, nil
}

func TestAPIPlans_InternalURLIsRefused(t *testing.T) {
	hit := false
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		w.Write([]byte("<html><body>admin-token-5f2c</body></html>"))
	}))
	defer internal.Close()

	gen := &echoProvider{}
	a := app.NewApp(planner.NewPlanner(planner.NewPlanRequestBuilder(gen, "key")), nil, nil)
	srv := NewServer(a, session.NewMemoryStore(time.Minute), fakeUsage{}, "missing.db")

	body, contentType := multipartBody(t, map[int]row{0: {url: internal.URL + "/admin", course: "Ops", date: "2026-10-26"}})
	req := httptest.NewRequest(http.MethodPost, "/api/plans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "admin-token-5f2c")

	var got planner.Batch
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got.Results, 1)
	assert.Equal(t, planner.KindExtractionFailure, got.Results[0].Error)
	assert.False(t, hit)
	assert.Zero(t, gen.calls)
}

func TestAPIPlans_MissingCredential(t *testing.T) {
	srv, _ := newTestServer(&fakePlans{})
	req := httptest.NewRequest(http.MethodPost, "/api/plans", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var got map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, planner.KindMissingCredential.Message(), got["error"])
}

func TestMetricsAndHealth(t *testing.T) {
	srv, _ := newTestServer(&fakePlans{credential: true})
	handler := srv.Routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got metricsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got.Usage, 1)
	assert.Equal(t, 2, got.Usage[0].TotalExecution)
	assert.Equal(t, "unknown", got.System.DatabaseSize)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
