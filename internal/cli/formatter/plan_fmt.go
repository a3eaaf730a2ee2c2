package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"ai-study-planner/internal/metrics"
	"ai-study-planner/internal/planner"
)

const dayLayout = "Mon Jan 2"

// FormatBatch renders the dashboard, each course plan and the calendar.
func FormatBatch(batch planner.Batch) string {
	var b strings.Builder

	b.WriteString(Header("Dashboard"))
	b.WriteString("\n")
	b.WriteString(formatSummary(batch.Summary))
	b.WriteString("\n\n")

	for _, r := range batch.Results {
		b.WriteString(FormatResult(r))
		b.WriteString("\n")
	}

	if len(batch.Conflicts) > 0 {
		b.WriteString(Header("Conflicts"))
		b.WriteString("\n")
		for _, c := range batch.Conflicts {
			fmt.Fprintf(&b, "%s %s: %s\n", StyleYellow.Render("▲"), c.Date.Format(dayLayout), strings.Join(c.Courses, ", "))
		}
		b.WriteString("\n")
	}

	if len(batch.Sessions) > 0 {
		b.WriteString(Header("Calendar"))
		b.WriteString("\n")
		b.WriteString(FormatSessions(batch.Sessions))
	}
	return b.String()
}

func formatSummary(s planner.Summary) string {
	next := "none"
	if s.NextSession != nil {
		next = s.NextSession.Format(dayLayout)
	}
	return fmt.Sprintf("%s %d   %s %d   %s %d   %s %s",
		StyleDim.Render("Courses"), s.Courses,
		StyleDim.Render("Sessions"), s.Sessions,
		StyleDim.Render("Days until last exam"), s.DaysUntilLastExam,
		StyleDim.Render("Next session"), next,
	)
}

// FormatResult renders one course: its plan in a box, or the failure reason.
func FormatResult(r planner.StudyPlanResult) string {
	title := fmt.Sprintf("%s · exam %s", r.CourseName, r.ExamDate.Format("January 2, 2006"))
	if !r.OK() {
		msg := StyleRed.Render("✗ " + r.Error.Message())
		if r.Detail != "" {
			msg += "\n" + StyleDim.Render(r.Detail)
		}
		return RenderBox(title, msg)
	}
	return RenderBox(title, strings.TrimSpace(r.PlanText))
}

// FormatSessions renders the calendar as a table ordered by date.
func FormatSessions(sessions []planner.Session) string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		task := s.Task
		switch {
		case s.Rescheduled():
			task = StyleYellow.Render(task)
		case s.Conflicted():
			task = StyleRed.Render(task)
		}
		rows = append(rows, []string{
			s.Date.Format(dayLayout),
			s.Course,
			"Day " + strconv.Itoa(s.Day),
			strconv.Itoa(s.DaysUntilExam),
			truncate(task, 70),
		})
	}
	return RenderTable([]string{"DATE", "COURSE", "DAY", "TO EXAM", "TASK"}, rows)
}

// FormatUsage renders daily token usage.
func FormatUsage(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var b strings.Builder
	b.WriteString(Header("LLM usage"))
	b.WriteString("\n")
	if len(usage) == 0 {
		b.WriteString(StyleDim.Render("No data yet"))
		b.WriteString("\n")
	} else {
		rows := make([][]string, 0, len(usage))
		for _, u := range usage {
			rows = append(rows, []string{
				u.Date,
				strconv.Itoa(u.TotalExecution),
				strconv.Itoa(u.Failed),
				strconv.Itoa(u.TotalPrompt),
				strconv.Itoa(u.TotalCompletion),
			})
		}
		b.WriteString(RenderTable([]string{"DATE", "CALLS", "FAILED", "PROMPT", "COMPLETION"}, rows))
	}

	b.WriteString("\n")
	b.WriteString(Header("System"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "RAM %dMB alloc / %dMB sys · %d goroutines · database %s\n",
		health.AllocMB, health.SysMB, health.Goroutines, health.DatabaseSize)
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
