package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
)

func validateDate(s string) error {
	if _, err := time.Parse(dateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

func validateFile(s string) error {
	info, err := os.Stat(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("file not found")
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", s)
	}
	return nil
}

// courseForm asks for one syllabus file and its exam date.
func courseForm(file, date *string, more *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Syllabus file").
				Description("PDF, HTML or plain text").
				Value(file).
				Validate(validateFile),
			huh.NewInput().
				Title("Exam date (YYYY-MM-DD)").
				Placeholder(time.Now().AddDate(0, 0, 7).Format(dateLayout)).
				Value(date).
				Validate(validateDate),
			huh.NewConfirm().
				Title("Add another course?").
				Value(more),
		),
	).WithTheme(huh.ThemeBase16()).WithShowHelp(false)
}

// promptCourses collects files and exam dates interactively.
func promptCourses() (files, dates []string, err error) {
	for {
		var file, date string
		var more bool
		if err := courseForm(&file, &date, &more).Run(); err != nil {
			return nil, nil, err
		}
		files = append(files, strings.TrimSpace(file))
		dates = append(dates, strings.TrimSpace(date))
		if !more {
			return files, dates, nil
		}
	}
}
