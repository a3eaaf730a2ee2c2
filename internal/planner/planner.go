package planner

import (
	"context"
	"log"
	"time"

	"ai-study-planner/internal/shared"
)

// Batch is the result of planning every course submitted together.
type Batch struct {
	Results   []StudyPlanResult `json:"results"`
	Sessions  []Session         `json:"sessions"`
	Conflicts []Conflict        `json:"conflicts"`
	Summary   Summary           `json:"summary"`
}

// Planner runs the PlanRequestBuilder over a batch of courses.
type Planner struct {
	builder *PlanRequestBuilder
}

// NewPlanner creates a new Planner instance.
func NewPlanner(builder *PlanRequestBuilder) *Planner {
	return &Planner{builder: builder}
}

// GeneratePlans produces one result per course, in input order, calling the
// provider sequentially. Without a credential it returns ErrMissingCredential
// and makes no call at all. Per-course failures are captured in the results.
func (p *Planner) GeneratePlans(ctx context.Context, courses []Course, today time.Time) (Batch, []shared.CallMeta, error) {
	if !p.builder.HasCredential() {
		return Batch{}, nil, ErrMissingCredential
	}

	results := make([]StudyPlanResult, 0, len(courses))
	var metas []shared.CallMeta
	var sessions []Session

	for _, course := range courses {
		result := StudyPlanResult{CourseName: course.Name, ExamDate: course.ExamDate}

		plan, err := p.builder.Generate(ctx, StudyPlanRequest{Course: course, Today: today}, courses)
		if plan.Meta.Operation != "" {
			metas = append(metas, plan.Meta)
		}
		if err != nil {
			log.Printf("Failed to generate plan for '%s': %v", course.Name, err)
			result.Error = KindOf(err)
			// Provider error text stays in the log only.
			if result.Error == KindExtractionFailure {
				result.Detail = err.Error()
			}
			results = append(results, result)
			continue
		}

		result.PlanText = plan.Text
		result.Days = plan.Days
		results = append(results, result)
		sessions = append(sessions, ParseSessions(plan.Text, course.Name, course.ExamDate, plan.Days)...)
	}

	resolved, conflicts := ResolveConflicts(sessions)
	return Batch{
		Results:   results,
		Sessions:  resolved,
		Conflicts: conflicts,
		Summary:   Summarize(resolved, today),
	}, metas, nil
}

// HasCredential reports whether the underlying provider has an API key.
func (p *Planner) HasCredential() bool {
	return p.builder.HasCredential()
}
