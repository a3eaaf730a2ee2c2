package planner

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"ai-study-planner/internal/llm"
	"ai-study-planner/internal/shared"
)

//go:embed study_plan_prompt.md
var studyPlanPrompt string

var studyPlanTemplate = template.Must(template.New("study_plan").Parse(studyPlanPrompt))

const (
	// MaxPlanDays is the length of a plan for exams a week or more away.
	MaxPlanDays = 7

	maxSyllabusRunes = 2500
	examDateLayout   = "January 2, 2006"
	operationName    = "StudyPlan"
)

type otherCourse struct {
	Name     string
	ExamDate string
}

type studyPlanPromptData struct {
	CourseName   string
	ExamDate     string
	Days         int
	Syllabus     string
	OtherCourses []otherCourse
}

// GeneratedPlan is a successful completion for one course.
type GeneratedPlan struct {
	Text string
	Days int
	Meta shared.CallMeta
}

// PlanRequestBuilder formats the study plan prompt for a course and sends it
// to the completion provider, one request per course.
type PlanRequestBuilder struct {
	textGen llm.TextGenerator
	apiKey  string
}

// NewPlanRequestBuilder creates a builder bound to a provider and its API key.
func NewPlanRequestBuilder(textGen llm.TextGenerator, apiKey string) *PlanRequestBuilder {
	return &PlanRequestBuilder{textGen: textGen, apiKey: apiKey}
}

// HasCredential reports whether an API key was configured.
func (b *PlanRequestBuilder) HasCredential() bool {
	return b.apiKey != ""
}

// GeneratePlan returns the plan text for a single course.
func (b *PlanRequestBuilder) GeneratePlan(ctx context.Context, course Course, today time.Time) (string, error) {
	plan, err := b.Generate(ctx, StudyPlanRequest{Course: course, Today: today}, nil)
	if err != nil {
		return "", err
	}
	return plan.Text, nil
}

// Generate builds the prompt for req, mentioning the exam dates of the other
// courses in the batch, and performs one completion call.
// The exam date is not validated against today.
func (b *PlanRequestBuilder) Generate(ctx context.Context, req StudyPlanRequest, others []Course) (GeneratedPlan, error) {
	if !b.HasCredential() {
		return GeneratedPlan{}, ErrMissingCredential
	}
	if strings.TrimSpace(req.Course.SyllabusText) == "" {
		return GeneratedPlan{}, fmt.Errorf("%w: %s has no syllabus text", ErrExtractionFailure, req.Course.Name)
	}

	days := PlanDays(req.Today, req.Course.ExamDate)
	prompt, err := buildStudyPlanPrompt(req.Course, days, others)
	if err != nil {
		return GeneratedPlan{}, err
	}

	start := time.Now()
	resp, err := b.textGen.GenerateContent(ctx, prompt)
	meta := shared.CallMeta{
		Operation: operationName,
		Course:    req.Course.Name,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		return GeneratedPlan{Meta: meta}, fmt.Errorf("failed to generate plan for %s: %w", req.Course.Name, err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return GeneratedPlan{Meta: meta}, fmt.Errorf("%w: empty plan for %s", llm.ErrProviderRequest, req.Course.Name)
	}

	meta.Success = true
	return GeneratedPlan{Text: resp.Content, Days: days, Meta: meta}, nil
}

// PlanDays is the number of study days before the exam, between 1 and MaxPlanDays.
func PlanDays(today, exam time.Time) int {
	days := DaysBetween(today, exam)
	if days < 1 {
		return 1
	}
	if days > MaxPlanDays {
		return MaxPlanDays
	}
	return days
}

// DaysBetween counts calendar days from a to b, ignoring the time of day.
func DaysBetween(a, b time.Time) int {
	return int(civilDate(b).Sub(civilDate(a)).Hours() / 24)
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func buildStudyPlanPrompt(course Course, days int, others []Course) (string, error) {
	data := studyPlanPromptData{
		CourseName: course.Name,
		ExamDate:   course.ExamDate.Format(examDateLayout),
		Days:       days,
		Syllabus:   truncateRunes(course.SyllabusText, maxSyllabusRunes),
	}
	for _, o := range others {
		if o.Name == course.Name {
			continue
		}
		data.OtherCourses = append(data.OtherCourses, otherCourse{
			Name:     o.Name,
			ExamDate: o.ExamDate.Format(examDateLayout),
		})
	}

	var buf bytes.Buffer
	if err := studyPlanTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render study plan prompt: %w", err)
	}
	return buf.String(), nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
