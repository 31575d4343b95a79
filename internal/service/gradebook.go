package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

// Gradebook is a keyed view over a student's ordered grade collection.
// Subjects are unique on a trimmed, case-insensitive key while the
// underlying sequence keeps insertion order, which drives tie-breaks in
// Summary. The zero-value index is rebuilt from the sequence on load, so
// the persistence layer only ever sees the ordered list.
type Gradebook struct {
	records []models.GradeRecord
	index   map[string]int
}

// NewGradebook builds a gradebook over the stored grade sequence.
func NewGradebook(records models.GradeList) *Gradebook {
	b := &Gradebook{
		records: make([]models.GradeRecord, len(records)),
		index:   make(map[string]int, len(records)),
	}
	copy(b.records, records)
	for i, record := range b.records {
		key := subjectKey(record.Subject)
		if _, exists := b.index[key]; !exists {
			b.index[key] = i
		}
	}
	return b
}

func subjectKey(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}

// Upsert records a score for a subject. An existing subject (matched
// case-insensitively on the trimmed value) is overwritten in place so its
// position in the sequence is preserved; a new subject is appended with
// its trimmed, original-case name.
func (b *Gradebook) Upsert(subject string, score float64) (models.GradeRecord, models.GradeAction, error) {
	trimmed := strings.TrimSpace(subject)
	if trimmed == "" {
		return models.GradeRecord{}, "", appErrors.Clone(appErrors.ErrValidation, "subject must be a non-empty string")
	}
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 || score > 100 {
		return models.GradeRecord{}, "", appErrors.Clone(appErrors.ErrValidation, "score must be a number between 0 and 100")
	}

	key := subjectKey(trimmed)
	if i, ok := b.index[key]; ok {
		b.records[i].Score = score
		return b.records[i], models.GradeUpdated, nil
	}

	record := models.GradeRecord{Subject: trimmed, Score: score}
	b.records = append(b.records, record)
	b.index[key] = len(b.records) - 1
	return record, models.GradeAdded, nil
}

// Remove deletes the grade for a subject, matched case-insensitively on
// the trimmed value, and returns the removed record.
func (b *Gradebook) Remove(subject string) (models.GradeRecord, error) {
	key := subjectKey(subject)
	i, ok := b.index[key]
	if !ok {
		return models.GradeRecord{}, appErrors.WithDetails(
			appErrors.ErrNotFound,
			fmt.Sprintf("no grade recorded for subject %q", strings.TrimSpace(subject)),
			map[string]any{"available_subjects": b.Subjects()},
		)
	}

	removed := b.records[i]
	b.records = append(b.records[:i], b.records[i+1:]...)
	delete(b.index, key)
	for k, pos := range b.index {
		if pos > i {
			b.index[k] = pos - 1
		}
	}
	return removed, nil
}

// Records returns the ordered grade sequence for persistence.
func (b *Gradebook) Records() models.GradeList {
	out := make(models.GradeList, len(b.records))
	copy(out, b.records)
	return out
}

// Len returns the number of recorded subjects.
func (b *Gradebook) Len() int {
	return len(b.records)
}

// Subjects lists recorded subject names in insertion order.
func (b *Gradebook) Subjects() []string {
	subjects := make([]string, len(b.records))
	for i, record := range b.records {
		subjects[i] = record.Subject
	}
	return subjects
}

// FilterBySubject returns the records whose subject contains the given
// substring, case-insensitively. An empty filter returns all records.
func (b *Gradebook) FilterBySubject(substr string) models.GradeList {
	needle := subjectKey(substr)
	if needle == "" {
		return b.Records()
	}
	out := models.GradeList{}
	for _, record := range b.records {
		if strings.Contains(strings.ToLower(record.Subject), needle) {
			out = append(out, record)
		}
	}
	return out
}

// Summary computes derived statistics over the grade set. It is a pure
// function of the current records: average rounded to two decimals (nil
// when empty), extremes with first-occurrence tie-breaks, and exhaustive
// disjoint letter buckets.
func (b *Gradebook) Summary() models.GradeSummary {
	summary := models.GradeSummary{TotalSubjects: len(b.records)}
	if len(b.records) == 0 {
		return summary
	}

	scores := make(stats.Float64Data, len(b.records))
	for i, record := range b.records {
		scores[i] = record.Score
	}
	if mean, err := scores.Mean(); err == nil {
		rounded, roundErr := stats.Round(mean, 2)
		if roundErr != nil {
			rounded = mean
		}
		summary.AverageGrade = &rounded
	}

	highest := b.records[0]
	lowest := b.records[0]
	for _, record := range b.records[1:] {
		if record.Score > highest.Score {
			highest = record
		}
		if record.Score < lowest.Score {
			lowest = record
		}
	}
	summary.HighestGrade = &highest
	summary.LowestGrade = &lowest

	for _, record := range b.records {
		switch {
		case record.Score >= 90:
			summary.Distribution.A++
		case record.Score >= 80:
			summary.Distribution.B++
		case record.Score >= 70:
			summary.Distribution.C++
		case record.Score >= 60:
			summary.Distribution.D++
		default:
			summary.Distribution.F++
		}
	}

	return summary
}
