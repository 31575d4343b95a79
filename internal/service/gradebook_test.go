package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

func TestGradebookUpsertAddsAndUpdates(t *testing.T) {
	book := NewGradebook(nil)

	record, action, err := book.Upsert("Math", 85)
	require.NoError(t, err)
	assert.Equal(t, models.GradeAdded, action)
	assert.Equal(t, "Math", record.Subject)
	assert.Equal(t, 85.0, record.Score)

	record, action, err = book.Upsert("Math", 85)
	require.NoError(t, err)
	assert.Equal(t, models.GradeUpdated, action)
	assert.Equal(t, 85.0, record.Score)
	assert.Equal(t, 1, book.Len())
}

func TestGradebookUpsertCaseInsensitive(t *testing.T) {
	book := NewGradebook(nil)

	_, _, err := book.Upsert("math", 70)
	require.NoError(t, err)
	_, action, err := book.Upsert(" Math ", 95)
	require.NoError(t, err)
	assert.Equal(t, models.GradeUpdated, action)

	records := book.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "math", records[0].Subject)
	assert.Equal(t, 95.0, records[0].Score)
}

func TestGradebookUpsertPreservesPosition(t *testing.T) {
	book := NewGradebook(models.GradeList{
		{Subject: "History", Score: 60},
		{Subject: "Math", Score: 70},
		{Subject: "Biology", Score: 80},
	})

	_, action, err := book.Upsert("MATH", 99)
	require.NoError(t, err)
	assert.Equal(t, models.GradeUpdated, action)

	records := book.Records()
	assert.Equal(t, []string{"History", "Math", "Biology"}, book.Subjects())
	assert.Equal(t, 99.0, records[1].Score)
}

func TestGradebookUpsertValidation(t *testing.T) {
	book := NewGradebook(nil)

	_, _, err := book.Upsert("   ", 50)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, _, err = book.Upsert("Math", -1)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, _, err = book.Upsert("Math", 100.5)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	assert.Equal(t, 0, book.Len())
}

func TestGradebookRemove(t *testing.T) {
	book := NewGradebook(models.GradeList{
		{Subject: "Math", Score: 90},
		{Subject: "History", Score: 75},
	})

	removed, err := book.Remove(" MATH ")
	require.NoError(t, err)
	assert.Equal(t, "Math", removed.Subject)
	assert.Equal(t, []string{"History"}, book.Subjects())

	_, err = book.Remove("Math")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestGradebookRemoveRoundTrip(t *testing.T) {
	original := models.GradeList{
		{Subject: "Math", Score: 90},
		{Subject: "History", Score: 75},
	}
	book := NewGradebook(original)

	_, _, err := book.Upsert("Chemistry", 88)
	require.NoError(t, err)
	_, err = book.Remove("chemistry")
	require.NoError(t, err)

	assert.Equal(t, original, book.Records())
}

func TestGradebookSummaryEmpty(t *testing.T) {
	summary := NewGradebook(nil).Summary()

	assert.Equal(t, 0, summary.TotalSubjects)
	assert.Nil(t, summary.AverageGrade)
	assert.Nil(t, summary.HighestGrade)
	assert.Nil(t, summary.LowestGrade)
	assert.Equal(t, models.GradeDistribution{}, summary.Distribution)
}

func TestGradebookSummaryAverage(t *testing.T) {
	book := NewGradebook(models.GradeList{
		{Subject: "Math", Score: 85},
		{Subject: "History", Score: 90},
		{Subject: "Biology", Score: 81},
	})

	summary := book.Summary()
	require.NotNil(t, summary.AverageGrade)
	assert.InDelta(t, 85.33, *summary.AverageGrade, 0.001)
	assert.Equal(t, 3, summary.TotalSubjects)
}

func TestGradebookSummaryTieBreaksByInsertionOrder(t *testing.T) {
	book := NewGradebook(models.GradeList{
		{Subject: "Math", Score: 90},
		{Subject: "History", Score: 90},
		{Subject: "Biology", Score: 40},
		{Subject: "Art", Score: 40},
	})

	summary := book.Summary()
	require.NotNil(t, summary.HighestGrade)
	require.NotNil(t, summary.LowestGrade)
	assert.Equal(t, "Math", summary.HighestGrade.Subject)
	assert.Equal(t, "Biology", summary.LowestGrade.Subject)
}

func TestGradebookSummaryDistribution(t *testing.T) {
	book := NewGradebook(models.GradeList{
		{Subject: "S1", Score: 100},
		{Subject: "S2", Score: 90},
		{Subject: "S3", Score: 89.99},
		{Subject: "S4", Score: 80},
		{Subject: "S5", Score: 79},
		{Subject: "S6", Score: 70},
		{Subject: "S7", Score: 69},
		{Subject: "S8", Score: 60},
		{Subject: "S9", Score: 59.99},
		{Subject: "S10", Score: 0},
	})

	dist := book.Summary().Distribution
	assert.Equal(t, 2, dist.A)
	assert.Equal(t, 2, dist.B)
	assert.Equal(t, 2, dist.C)
	assert.Equal(t, 2, dist.D)
	assert.Equal(t, 2, dist.F)
	assert.Equal(t, book.Len(), dist.A+dist.B+dist.C+dist.D+dist.F)
}

func TestGradebookFilterBySubject(t *testing.T) {
	book := NewGradebook(models.GradeList{
		{Subject: "Mathematics", Score: 90},
		{Subject: "Applied Math", Score: 85},
		{Subject: "History", Score: 70},
	})

	filtered := book.FilterBySubject("math")
	require.Len(t, filtered, 2)
	assert.Equal(t, "Mathematics", filtered[0].Subject)
	assert.Equal(t, "Applied Math", filtered[1].Subject)

	assert.Len(t, book.FilterBySubject(""), 3)

	// No match still yields an empty list, not nil, so responses carry [].
	unmatched := book.FilterBySubject("physics")
	require.NotNil(t, unmatched)
	assert.Empty(t, unmatched)
}
