package planner

import (
	"context"
	"fmt"
	"testing"

	"ai-study-planner/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePlans_PreservesOrderWithExtractionFailure(t *testing.T) {
	gen := &MockTextGenerator{}
	p := NewPlanner(NewPlanRequestBuilder(gen, "key"))

	courses := []Course{
		{Name: "Calculus II", SyllabusText: "Limits, derivatives, integrals...", ExamDate: today.AddDate(0, 0, 14)},
		{Name: "Empty Course", SyllabusText: "", ExamDate: today.AddDate(0, 0, 10)},
	}

	batch, metas, err := p.GeneratePlans(context.Background(), courses, today)
	require.NoError(t, err)
	require.Len(t, batch.Results, 2)

	assert.Equal(t, "Calculus II", batch.Results[0].CourseName)
	assert.True(t, batch.Results[0].OK())
	assert.NotEmpty(t, batch.Results[0].PlanText)
	assert.Equal(t, 7, batch.Results[0].Days)

	assert.Equal(t, "Empty Course", batch.Results[1].CourseName)
	assert.Equal(t, KindExtractionFailure, batch.Results[1].Error)
	assert.Empty(t, batch.Results[1].PlanText)

	assert.Len(t, gen.Prompts, 1, "only the course with text reaches the provider")
	assert.Len(t, metas, 1)
	assert.Len(t, batch.Sessions, 7)
	assert.Equal(t, 1, batch.Summary.Courses)
}

func TestGeneratePlans_MissingCredential(t *testing.T) {
	gen := &MockTextGenerator{}
	p := NewPlanner(NewPlanRequestBuilder(gen, ""))

	_, _, err := p.GeneratePlans(context.Background(), []Course{
		{Name: "A", SyllabusText: "a"},
		{Name: "B", SyllabusText: "b"},
	}, today)

	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Empty(t, gen.Prompts)
}

func TestGeneratePlans_FailureDoesNotBlockOthers(t *testing.T) {
	gen := &MockTextGenerator{Errors: []error{nil, fmt.Errorf("%w: status=401", llm.ErrProviderAuth), nil}}
	p := NewPlanner(NewPlanRequestBuilder(gen, "key"))

	courses := []Course{
		{Name: "A", SyllabusText: "a", ExamDate: today.AddDate(0, 0, 9)},
		{Name: "B", SyllabusText: "b", ExamDate: today.AddDate(0, 0, 9)},
		{Name: "C", SyllabusText: "c", ExamDate: today.AddDate(0, 0, 20)},
	}

	batch, metas, err := p.GeneratePlans(context.Background(), courses, today)
	require.NoError(t, err)
	require.Len(t, batch.Results, 3)
	assert.Len(t, metas, 3)

	for i, name := range []string{"A", "B", "C"} {
		assert.Equal(t, name, batch.Results[i].CourseName)
	}
	assert.True(t, batch.Results[0].OK())
	assert.Equal(t, KindProviderAuthFailure, batch.Results[1].Error)
	assert.True(t, batch.Results[2].OK())
	assert.Len(t, gen.Prompts, 3)
}

func TestGeneratePlans_ProviderErrorTextIsNotExposed(t *testing.T) {
	raw := fmt.Errorf(`%w: status=401 body={"error":"invalid api key gsk_live_abc123"}`, llm.ErrProviderAuth)
	gen := &MockTextGenerator{Errors: []error{raw, fmt.Errorf("%w: upstream 502 from 10.0.3.7", llm.ErrProviderRequest)}}
	p := NewPlanner(NewPlanRequestBuilder(gen, "key"))

	courses := []Course{
		{Name: "A", SyllabusText: "a", ExamDate: today.AddDate(0, 0, 9)},
		{Name: "B", SyllabusText: "b", ExamDate: today.AddDate(0, 0, 9)},
		{Name: "C", ExamDate: today.AddDate(0, 0, 9)},
	}

	batch, _, err := p.GeneratePlans(context.Background(), courses, today)
	require.NoError(t, err)
	require.Len(t, batch.Results, 3)

	assert.Equal(t, KindProviderAuthFailure, batch.Results[0].Error)
	assert.Empty(t, batch.Results[0].Detail)
	assert.Equal(t, KindProviderRequestFailure, batch.Results[1].Error)
	assert.Empty(t, batch.Results[1].Detail)
	assert.Equal(t, KindExtractionFailure, batch.Results[2].Error)
	assert.NotEmpty(t, batch.Results[2].Detail)
}

func TestGeneratePlans_NoCourses(t *testing.T) {
	p := NewPlanner(NewPlanRequestBuilder(&MockTextGenerator{}, "key"))

	batch, metas, err := p.GeneratePlans(context.Background(), nil, today)
	require.NoError(t, err)
	assert.Empty(t, batch.Results)
	assert.Empty(t, metas)
	assert.Empty(t, batch.Sessions)
}
