package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ai-study-planner/internal/extract"
	"ai-study-planner/internal/planner"
	"ai-study-planner/internal/shared"
)

// Upload is one syllabus submitted for planning. Either Data or URL holds the
// syllabus; Course overrides the name derived from Filename.
type Upload struct {
	Filename string
	Data     []byte
	URL      string
	Course   string
	ExamDate time.Time
}

// MetricsRecorder persists the metadata of a completion call.
type MetricsRecorder interface {
	RecordMeta(ctx context.Context, meta shared.CallMeta) error
}

// App ties syllabus extraction, plan generation and usage metrics together.
type App struct {
	planner *planner.Planner
	fetcher *extract.Fetcher
	metrics MetricsRecorder
	now     func() time.Time
}

// NewApp creates and initializes a new App instance. metrics may be nil.
func NewApp(p *planner.Planner, fetcher *extract.Fetcher, metrics MetricsRecorder) *App {
	if fetcher == nil {
		fetcher = extract.NewFetcher()
	}
	return &App{
		planner: p,
		fetcher: fetcher,
		metrics: metrics,
		now:     time.Now,
	}
}

// HasCredential reports whether plans can be generated at all.
func (a *App) HasCredential() bool {
	return a.planner.HasCredential()
}

// GeneratePlans extracts every upload and produces one result per upload, in
// order. A missing credential is reported before any upload is read.
func (a *App) GeneratePlans(ctx context.Context, uploads []Upload) (planner.Batch, error) {
	if !a.planner.HasCredential() {
		return planner.Batch{}, planner.ErrMissingCredential
	}

	names := uniqueCourseNames(uploads)
	courses := make([]planner.Course, len(uploads))
	extractErrs := make([]error, len(uploads))
	for i, u := range uploads {
		courses[i] = planner.Course{Name: names[i], ExamDate: u.ExamDate}

		text, err := a.extractText(ctx, u)
		if err != nil {
			log.Printf("Failed to extract syllabus for '%s': %v", courses[i].Name, err)
			extractErrs[i] = err
			continue
		}
		courses[i].SyllabusText = text
	}

	log.Printf("Generating study plans for %d course(s)...", len(courses))
	batch, metas, err := a.planner.GeneratePlans(ctx, courses, a.now())
	if err != nil {
		return planner.Batch{}, err
	}
	a.recordMetrics(ctx, metas)

	for i := range batch.Results {
		if extractErrs[i] != nil && batch.Results[i].Error == planner.KindExtractionFailure {
			batch.Results[i].Detail = extractErrs[i].Error()
		}
	}
	return batch, nil
}

func (a *App) extractText(ctx context.Context, u Upload) (string, error) {
	if u.URL != "" && len(u.Data) == 0 {
		return a.fetcher.FromURL(ctx, u.URL)
	}
	return extract.Text(u.Filename, u.Data)
}

func (a *App) recordMetrics(ctx context.Context, metas []shared.CallMeta) {
	if a.metrics == nil {
		return
	}
	for _, m := range metas {
		if err := a.metrics.RecordMeta(ctx, m); err != nil {
			log.Printf("Warning: failed to record metrics for '%s': %v", m.Course, err)
		}
	}
}

func courseName(u Upload) string {
	if name := strings.TrimSpace(u.Course); name != "" {
		return name
	}
	if u.Filename != "" {
		return extract.CourseName(u.Filename)
	}
	if u.URL != "" {
		return extract.CourseName(strings.TrimRight(u.URL, "/"))
	}
	return fmt.Sprintf("Course %s", u.ExamDate.Format("2006-01-02"))
}

// uniqueCourseNames names every upload and suffixes repeats with " (2)", " (3)"
// and so on, so plans, summaries and prompts never merge two uploads.
func uniqueCourseNames(uploads []Upload) []string {
	names := make([]string, len(uploads))
	taken := make(map[string]bool, len(uploads))
	for i, u := range uploads {
		taken[strings.ToLower(courseName(u))] = true
		names[i] = courseName(u)
	}

	seen := make(map[string]bool, len(uploads))
	for i, name := range names {
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			continue
		}
		for n := 2; ; n++ {
			candidate := fmt.Sprintf("%s (%d)", name, n)
			if ck := strings.ToLower(candidate); !taken[ck] {
				taken[ck] = true
				seen[ck] = true
				names[i] = candidate
				break
			}
		}
	}
	return names
}
