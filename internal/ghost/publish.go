package ghost

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"ai-study-planner/internal/planner"
)

var postTemplate = template.Must(template.New("post").Parse(`<p>Exam date: <strong>{{.Result.ExamDate.Format "Monday, January 2, 2006"}}</strong> · {{.Result.Days}}-day plan</p>
<pre>{{.Result.PlanText}}</pre>
{{with .Sessions}}<h2>Calendar</h2>
<ul>
{{range .}}<li>{{.Date.Format "Mon Jan 2"}}: Day {{.Day}}: {{.Task}}</li>
{{end}}</ul>{{end}}
`))

// FormatPlanHTML renders a course plan and its calendar sessions as post HTML.
func FormatPlanHTML(result planner.StudyPlanResult, sessions []planner.Session) (string, error) {
	var own []planner.Session
	for _, s := range sessions {
		if s.Course == result.CourseName {
			own = append(own, s)
		}
	}

	var buf bytes.Buffer
	err := postTemplate.Execute(&buf, struct {
		Result   planner.StudyPlanResult
		Sessions []planner.Session
	}{result, own})
	if err != nil {
		return "", fmt.Errorf("failed to render post: %w", err)
	}
	return buf.String(), nil
}

// PublishPlan creates a draft post for one successful course plan.
func PublishPlan(ctx context.Context, client Client, result planner.StudyPlanResult, sessions []planner.Session) (*Post, error) {
	if !result.OK() {
		return nil, fmt.Errorf("course %s has no plan to publish", result.CourseName)
	}
	html, err := FormatPlanHTML(result, sessions)
	if err != nil {
		return nil, err
	}
	return client.CreatePost(ctx, fmt.Sprintf("Study plan: %s", result.CourseName), html, false)
}
