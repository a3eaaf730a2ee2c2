package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ai-study-planner/internal/app"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// BatchFile lists the courses to plan in one run.
type BatchFile struct {
	Courses []BatchCourse `yaml:"courses"`
}

// BatchCourse is one entry of a batch file. File paths are relative to the
// batch file.
type BatchCourse struct {
	Name     string `yaml:"name,omitempty"`
	File     string `yaml:"file,omitempty"`
	URL      string `yaml:"url,omitempty"`
	ExamDate string `yaml:"exam_date"`
}

// LoadBatch reads a YAML batch file and the syllabus files it references.
func LoadBatch(path string) ([]app.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}

	var batch BatchFile
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parsing batch file %s: %w", path, err)
	}
	if len(batch.Courses) == 0 {
		return nil, fmt.Errorf("batch file %s lists no courses", path)
	}

	dir := filepath.Dir(path)
	uploads := make([]app.Upload, 0, len(batch.Courses))
	for i, c := range batch.Courses {
		exam, err := time.Parse(dateLayout, c.ExamDate)
		if err != nil {
			return nil, fmt.Errorf("course %d: exam_date must be YYYY-MM-DD", i+1)
		}

		u := app.Upload{Course: c.Name, URL: c.URL, ExamDate: exam}
		switch {
		case c.File != "":
			file := c.File
			if !filepath.IsAbs(file) {
				file = filepath.Join(dir, file)
			}
			if u.Data, err = os.ReadFile(file); err != nil {
				return nil, fmt.Errorf("course %d: %w", i+1, err)
			}
			u.Filename = filepath.Base(file)
		case c.URL == "":
			return nil, fmt.Errorf("course %d: either file or url is required", i+1)
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

// uploadsFromArgs pairs syllabus files with exam dates. A single date applies
// to every file.
func uploadsFromArgs(files, dates []string) ([]app.Upload, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no syllabus files given")
	}
	if len(dates) != 1 && len(dates) != len(files) {
		return nil, fmt.Errorf("got %d exam dates for %d files", len(dates), len(files))
	}

	uploads := make([]app.Upload, 0, len(files))
	for i, f := range files {
		raw := dates[0]
		if len(dates) > 1 {
			raw = dates[i]
		}
		exam, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid exam date %q: use YYYY-MM-DD format", raw)
		}
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		uploads = append(uploads, app.Upload{Filename: filepath.Base(f), Data: data, ExamDate: exam})
	}
	return uploads, nil
}
