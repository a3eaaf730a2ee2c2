// Package web serves the upload form, result pages and JSON API.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"ai-study-planner/internal/app"
	"ai-study-planner/internal/metrics"
	"ai-study-planner/internal/planner"
	"ai-study-planner/internal/session"
)

const (
	// MaxUploadBytes caps the size of a whole upload request.
	MaxUploadBytes = 32 << 20

	// maxRows is the number of course rows accepted per request.
	maxRows     = 10
	formRows    = 5
	dateLayout  = "2006-01-02"
	metricsDays = 7
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"date":     func(t time.Time) string { return t.Format("Mon, Jan 2 2006") },
	"isoDate":  func(t time.Time) string { return t.Format(dateLayout) },
	"errorMsg": func(k planner.ErrorKind) string { return k.Message() },
	"rows": func(n int) []int {
		r := make([]int, n)
		for i := range r {
			r[i] = i
		}
		return r
	},
}).ParseFS(templateFS, "templates/*.html"))

// PlanGenerator produces a batch of study plans from uploads.
type PlanGenerator interface {
	HasCredential() bool
	GeneratePlans(ctx context.Context, uploads []app.Upload) (planner.Batch, error)
}

// UsageSource reports recorded token usage.
type UsageSource interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	plans   PlanGenerator
	results session.ResultStore
	usage   UsageSource
	dbPath  string
}

// NewServer creates the HTTP front-end. usage may be nil.
func NewServer(plans PlanGenerator, results session.ResultStore, usage UsageSource, dbPath string) *Server {
	return &Server{plans: plans, results: results, usage: usage, dbPath: dbPath}
}

// Routes registers every handler on a new mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /plans", s.handleCreatePlans)
	mux.HandleFunc("GET /plans/{id}", s.handleShowPlans)
	mux.HandleFunc("POST /api/plans", s.handleAPIPlans)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

type indexPage struct {
	Rows          int
	HasCredential bool
	Error         string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index.html", indexPage{Rows: formRows, HasCredential: s.plans.HasCredential()})
}

func (s *Server) handleCreatePlans(w http.ResponseWriter, r *http.Request) {
	if !s.plans.HasCredential() {
		s.render(w, http.StatusServiceUnavailable, "index.html", indexPage{
			Rows:  formRows,
			Error: planner.KindMissingCredential.Message(),
		})
		return
	}

	uploads, err := parseUploads(w, r)
	if err != nil {
		s.render(w, http.StatusBadRequest, "index.html", indexPage{Rows: formRows, HasCredential: true, Error: err.Error()})
		return
	}

	batch, err := s.plans.GeneratePlans(r.Context(), uploads)
	if err != nil {
		status := statusFor(err)
		s.render(w, status, "index.html", indexPage{Rows: formRows, Error: messageFor(err)})
		return
	}

	id, err := s.results.Save(r.Context(), batch)
	if err != nil {
		log.Printf("Failed to store result batch: %v", err)
		http.Error(w, "failed to store results", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/plans/"+id, http.StatusSeeOther)
}

type resultPage struct {
	Batch planner.Batch
	Days  []calendarDay
}

type calendarDay struct {
	Date     time.Time
	Sessions []planner.Session
}

func (s *Server) handleShowPlans(w http.ResponseWriter, r *http.Request) {
	batch, err := s.results.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, session.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Failed to load result batch: %v", err)
		http.Error(w, "failed to load results", http.StatusInternalServerError)
		return
	}
	s.render(w, http.StatusOK, "result.html", resultPage{Batch: batch, Days: groupByDate(batch.Sessions)})
}

func (s *Server) handleAPIPlans(w http.ResponseWriter, r *http.Request) {
	if !s.plans.HasCredential() {
		writeJSONError(w, http.StatusServiceUnavailable, planner.KindMissingCredential.Message())
		return
	}

	uploads, err := parseUploads(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	batch, err := s.plans.GeneratePlans(r.Context(), uploads)
	if err != nil {
		writeJSONError(w, statusFor(err), messageFor(err))
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

type metricsResponse struct {
	Usage  []metrics.DailyUsage `json:"usage"`
	System metrics.SysHealth    `json:"system"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	resp := metricsResponse{System: metrics.GetSysHealth(s.dbPath)}
	if s.usage != nil {
		usage, err := s.usage.GetDailyUsage(r.Context(), metricsDays)
		if err != nil {
			log.Printf("Failed to read usage metrics: %v", err)
			writeJSONError(w, http.StatusInternalServerError, "failed to read usage metrics")
			return
		}
		resp.Usage = usage
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseUploads reads rows named syllabus_N (file), url_N, course_N and
// exam_date_N. Rows without a file or URL are skipped.
func parseUploads(w http.ResponseWriter, r *http.Request) ([]app.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("upload exceeds %d MiB", MaxUploadBytes>>20)
		}
		return nil, fmt.Errorf("invalid form: %v", err)
	}

	var uploads []app.Upload
	for i := 0; i < maxRows; i++ {
		u := app.Upload{
			URL:    strings.TrimSpace(r.FormValue(fmt.Sprintf("url_%d", i))),
			Course: strings.TrimSpace(r.FormValue(fmt.Sprintf("course_%d", i))),
		}

		file, header, err := r.FormFile(fmt.Sprintf("syllabus_%d", i))
		switch {
		case err == nil:
			data, readErr := io.ReadAll(file)
			file.Close()
			if readErr != nil {
				return nil, fmt.Errorf("failed to read %s: %v", header.Filename, readErr)
			}
			u.Filename = header.Filename
			u.Data = data
		case !errors.Is(err, http.ErrMissingFile):
			return nil, fmt.Errorf("invalid file in row %d: %v", i+1, err)
		}

		if u.Filename == "" && u.URL == "" {
			continue
		}

		raw := strings.TrimSpace(r.FormValue(fmt.Sprintf("exam_date_%d", i)))
		if raw == "" {
			return nil, fmt.Errorf("row %d: exam date is required", i+1)
		}
		exam, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: exam date must be YYYY-MM-DD", i+1)
		}
		u.ExamDate = exam
		uploads = append(uploads, u)
	}

	if len(uploads) == 0 {
		return nil, errors.New("upload at least one syllabus")
	}
	return uploads, nil
}

func groupByDate(sessions []planner.Session) []calendarDay {
	var days []calendarDay
	for _, s := range sessions {
		if n := len(days); n > 0 && days[n-1].Date.Equal(s.Date) {
			days[n-1].Sessions = append(days[n-1].Sessions, s)
			continue
		}
		days = append(days, calendarDay{Date: s.Date, Sessions: []planner.Session{s}})
	}
	return days
}

func statusFor(err error) int {
	if errors.Is(err, planner.ErrMissingCredential) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func messageFor(err error) string {
	if errors.Is(err, planner.ErrMissingCredential) {
		return planner.KindMissingCredential.Message()
	}
	return "failed to generate study plans"
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Failed to render %s: %v", name, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
