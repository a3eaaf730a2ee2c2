package planner

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	rescheduledPrefix = "[Rescheduled] "
	conflictPrefix    = "[CONFLICT] "
	maxSessionsPerDay = 2
)

// rescheduleOffsets are tried in order when a day holds more than one course.
var rescheduleOffsets = []int{1, -1, 2, -2, 3, -3}

var dayHeading = regexp.MustCompile(`(?i)day\s*(\d+)\s*:`)

// Session is one study day of a course placed on the calendar.
type Session struct {
	Date          time.Time `json:"date"`
	Course        string    `json:"course"`
	Day           int       `json:"day"`
	Task          string    `json:"task"`
	DaysUntilExam int       `json:"days_until_exam"`
	ExamDate      time.Time `json:"exam_date"`
}

// Conflict records a date that had sessions of several courses.
type Conflict struct {
	Date    time.Time `json:"date"`
	Courses []string  `json:"courses"`
	Count   int       `json:"count"`
}

// Summary holds the dashboard figures for a batch.
type Summary struct {
	Courses           int        `json:"courses"`
	Sessions          int        `json:"sessions"`
	DaysUntilLastExam int        `json:"days_until_last_exam"`
	NextSession       *time.Time `json:"next_session,omitempty"`
}

// ParseSessions turns "Day N: ..." sections of a plan into sessions dated
// backwards from the exam: day N of a plan of length days falls on
// examDate - (days - N + 1). Days outside 1..days and repeated day numbers are ignored.
func ParseSessions(planText, course string, examDate time.Time, days int) []Session {
	exam := civilDate(examDate)
	matches := dayHeading.FindAllStringSubmatchIndex(planText, -1)

	var sessions []Session
	seen := make(map[int]struct{})
	for i, m := range matches {
		n, err := strconv.Atoi(planText[m[2]:m[3]])
		if err != nil || n < 1 || n > days {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}

		end := len(planText)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		task := strings.Join(strings.Fields(planText[m[1]:end]), " ")
		task = strings.Trim(task, " *#_-")

		date := exam.AddDate(0, 0, -(days - n + 1))
		sessions = append(sessions, Session{
			Date:          date,
			Course:        course,
			Day:           n,
			Task:          task,
			DaysUntilExam: DaysBetween(date, exam),
			ExamDate:      exam,
		})
	}
	return sessions
}

// ResolveConflicts keeps at most one course per day where possible. On a
// crowded day the session closest to its exam stays; the others move to the
// first nearby day that is no course's exam day, is not past their own exam
// and holds fewer than two sessions. Sessions that cannot move are kept and
// marked. The result is ordered by date.
func ResolveConflicts(sessions []Session) ([]Session, []Conflict) {
	if len(sessions) == 0 {
		return sessions, nil
	}

	sorted := make([]Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	examDays := make(map[time.Time]struct{})
	for _, s := range sorted {
		examDays[civilDate(s.ExamDate)] = struct{}{}
	}

	var groups [][]Session
	for _, s := range sorted {
		if n := len(groups); n > 0 && groups[n-1][0].Date.Equal(s.Date) {
			groups[n-1] = append(groups[n-1], s)
			continue
		}
		groups = append(groups, []Session{s})
	}

	var resolved []Session
	var conflicts []Conflict
	perDay := make(map[time.Time]int)
	place := func(s Session) {
		resolved = append(resolved, s)
		perDay[civilDate(s.Date)]++
	}

	for _, group := range groups {
		if len(group) == 1 {
			place(group[0])
			continue
		}

		conflict := Conflict{Date: group[0].Date, Count: len(group)}
		for _, s := range group {
			conflict.Courses = append(conflict.Courses, s.Course)
		}
		conflicts = append(conflicts, conflict)

		byUrgency := make([]Session, len(group))
		copy(byUrgency, group)
		sort.SliceStable(byUrgency, func(i, j int) bool { return byUrgency[i].DaysUntilExam < byUrgency[j].DaysUntilExam })

		place(byUrgency[0])
		for _, s := range byUrgency[1:] {
			moved := false
			for _, offset := range rescheduleOffsets {
				candidate := civilDate(s.Date).AddDate(0, 0, offset)
				if _, isExam := examDays[candidate]; isExam {
					continue
				}
				if !candidate.Before(civilDate(s.ExamDate)) {
					continue
				}
				if perDay[candidate] >= maxSessionsPerDay {
					continue
				}
				s.Date = candidate
				s.DaysUntilExam = DaysBetween(candidate, s.ExamDate)
				s.Task = rescheduledPrefix + s.Task
				place(s)
				moved = true
				break
			}
			if !moved {
				s.Task = conflictPrefix + s.Task
				place(s)
			}
		}
	}

	sort.SliceStable(resolved, func(i, j int) bool { return resolved[i].Date.Before(resolved[j].Date) })
	return resolved, conflicts
}

// Summarize computes the dashboard figures relative to today.
func Summarize(sessions []Session, today time.Time) Summary {
	summary := Summary{Sessions: len(sessions)}
	day := civilDate(today)

	courses := make(map[string]struct{})
	var lastExam time.Time
	for _, s := range sessions {
		courses[s.Course] = struct{}{}
		if s.ExamDate.After(lastExam) {
			lastExam = s.ExamDate
		}
		if !s.Date.Before(day) && (summary.NextSession == nil || s.Date.Before(*summary.NextSession)) {
			next := s.Date
			summary.NextSession = &next
		}
	}
	summary.Courses = len(courses)

	if !lastExam.IsZero() {
		if d := DaysBetween(day, lastExam); d > 0 {
			summary.DaysUntilLastExam = d
		}
	}
	return summary
}

// Rescheduled reports whether the session was moved by ResolveConflicts.
func (s Session) Rescheduled() bool {
	return strings.HasPrefix(s.Task, rescheduledPrefix)
}

// Conflicted reports whether the session could not be moved off a crowded day.
func (s Session) Conflicted() bool {
	return strings.HasPrefix(s.Task, conflictPrefix)
}
