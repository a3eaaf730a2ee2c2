package planner

import (
	"errors"

	"ai-study-planner/internal/llm"
)

var (
	// ErrMissingCredential is reported once, before any course is processed.
	ErrMissingCredential = llm.ErrMissingCredential

	// ErrExtractionFailure indicates a course has no usable syllabus text.
	ErrExtractionFailure = errors.New("syllabus text extraction failed")
)

// KindOf maps an error returned by the planner to its ErrorKind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, llm.ErrMissingCredential):
		return KindMissingCredential
	case errors.Is(err, ErrExtractionFailure):
		return KindExtractionFailure
	case errors.Is(err, llm.ErrProviderAuth):
		return KindProviderAuthFailure
	default:
		return KindProviderRequestFailure
	}
}

// Message returns the text shown to the user for an ErrorKind.
func (k ErrorKind) Message() string {
	switch k {
	case KindMissingCredential:
		return "No API key is configured for the completion provider."
	case KindExtractionFailure:
		return "Could not extract any text from the syllabus."
	case KindProviderAuthFailure:
		return "The completion provider rejected the API key."
	case KindProviderRequestFailure:
		return "The completion provider request failed."
	default:
		return ""
	}
}
