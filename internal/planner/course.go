package planner

import "time"

// Course is one exam the user wants to prepare for.
type Course struct {
	Name         string
	SyllabusText string
	ExamDate     time.Time
}

// StudyPlanRequest pairs a course with the day the plan is generated.
type StudyPlanRequest struct {
	Course Course
	Today  time.Time
}

// ErrorKind classifies why a course did not get a plan.
type ErrorKind string

const (
	KindMissingCredential      ErrorKind = "MissingCredential"
	KindExtractionFailure      ErrorKind = "ExtractionFailure"
	KindProviderRequestFailure ErrorKind = "ProviderRequestFailure"
	KindProviderAuthFailure    ErrorKind = "ProviderAuthFailure"
)

// StudyPlanResult is the outcome for one submitted course.
// Exactly one of PlanText or Error is set.
type StudyPlanResult struct {
	CourseName string    `json:"course_name"`
	ExamDate   time.Time `json:"exam_date"`
	Days       int       `json:"days,omitempty"`
	PlanText   string    `json:"plan_text,omitempty"`
	Error      ErrorKind `json:"error,omitempty"`
	Detail     string    `json:"detail,omitempty"` // extraction failures only
}

// OK reports whether a plan was generated.
func (r StudyPlanResult) OK() bool {
	return r.Error == ""
}
