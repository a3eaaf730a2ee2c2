// Package extract turns uploaded syllabus documents into plain text.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrNoText indicates the document was readable but contained no text.
	ErrNoText = errors.New("document contains no extractable text")

	// ErrUnsupportedFormat indicates the file type is not handled.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrUnreadable indicates the document could not be parsed.
	ErrUnreadable = errors.New("document could not be read")
)

// Text extracts plain text from a document, choosing the parser from the file extension.
func Text(filename string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = PDF(data)
	case ".html", ".htm":
		text, err = HTML(data)
	case ".txt", ".md", "":
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return "", err
	}

	text = Normalize(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrNoText, filename)
	}
	return text, nil
}

// CourseName derives the course name from an upload's filename.
func CourseName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Normalize collapses runs of whitespace inside each line and drops blank lines.
func Normalize(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
