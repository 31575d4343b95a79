package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/repository"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
	"github.com/noah-isme/academic-records-api/pkg/export"
)

type gradeStudentRepo interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	UpdateGrades(ctx context.Context, studentID string, grades models.GradeList, expectedVersion int) error
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// UpsertGradeRequest records or overwrites a subject score.
type UpsertGradeRequest struct {
	Subject string  `json:"subject" validate:"required"`
	Score   float64 `json:"score"`
}

// GradeMutationResult reports the outcome of a grade mutation.
type GradeMutationResult struct {
	StudentID string             `json:"student_id"`
	Action    models.GradeAction `json:"action,omitempty"`
	Record    models.GradeRecord `json:"record"`
	Grades    models.GradeList   `json:"grades"`
}

// StudentGradesView is the scoped read model for a student's grades.
type StudentGradesView struct {
	StudentID  string              `json:"student_id"`
	FullName   string              `json:"full_name"`
	GradeLevel string              `json:"grade_level"`
	Grades     models.GradeList    `json:"grades"`
	Summary    models.GradeSummary `json:"summary"`
}

// GradeServiceConfig tunes caching and write-conflict retries.
type GradeServiceConfig struct {
	SummaryCacheTTL  time.Duration
	UpsertMaxRetries int
}

// GradeService orchestrates scoped grade reads and document-level grade
// mutations over the student repository.
type GradeService struct {
	students  gradeStudentRepo
	cache     summaryCache
	validator *validator.Validate
	logger    *zap.Logger
	config    GradeServiceConfig
}

// NewGradeService constructs GradeService.
func NewGradeService(students gradeStudentRepo, cache summaryCache, validate *validator.Validate, logger *zap.Logger, config GradeServiceConfig) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.UpsertMaxRetries < 1 {
		config.UpsertMaxRetries = 3
	}
	if config.SummaryCacheTTL <= 0 {
		config.SummaryCacheTTL = 5 * time.Minute
	}
	return &GradeService{students: students, cache: cache, validator: validate, logger: logger, config: config}
}

// ListGrades returns the scoped student's grades with derived statistics,
// optionally filtered by a case-insensitive subject substring. The filter
// narrows the returned records only; the summary always covers the full set.
func (s *GradeService) ListGrades(ctx context.Context, principal models.Principal, requestedID, subjectFilter string) (*StudentGradesView, error) {
	targetID, err := ResolveStudentScope(principal, requestedID)
	if err != nil {
		return nil, err
	}
	student, err := s.loadStudent(ctx, targetID)
	if err != nil {
		return nil, err
	}

	book := NewGradebook(student.Grades)
	view := &StudentGradesView{
		StudentID:  student.StudentID,
		FullName:   student.FullName,
		GradeLevel: student.GradeLevel,
		Grades:     book.FilterBySubject(subjectFilter),
		Summary:    s.summarize(ctx, student.StudentID, book),
	}
	return view, nil
}

// ListAllGrades is the administrative bulk view: every student's grade
// list, paginated, with the optional subject filter applied within each
// returned list.
func (s *GradeService) ListAllGrades(ctx context.Context, principal models.Principal, filter models.GradeListFilter) ([]models.StudentGrades, *models.Pagination, error) {
	if err := RequireStaff(principal); err != nil {
		return nil, nil, err
	}

	students, total, err := s.students.List(ctx, models.StudentFilter{Page: filter.Page, Limit: filter.Limit})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student grades")
	}

	result := make([]models.StudentGrades, 0, len(students))
	for _, student := range students {
		book := NewGradebook(student.Grades)
		result = append(result, models.StudentGrades{
			ID:         student.ID,
			StudentID:  student.StudentID,
			FullName:   student.FullName,
			GradeLevel: student.GradeLevel,
			Grades:     book.FilterBySubject(filter.Subject),
		})
	}
	return result, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// UpsertGrade records or overwrites a subject score on the scoped student.
// The write is a document-level read-modify-write guarded by the student's
// version; a concurrent writer triggers a bounded reload-and-retry before
// the conflict is surfaced.
func (s *GradeService) UpsertGrade(ctx context.Context, principal models.Principal, requestedID string, req UpsertGradeRequest) (*GradeMutationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	targetID, err := ResolveStudentScope(principal, requestedID)
	if err != nil {
		return nil, err
	}

	var result *GradeMutationResult
	err = s.mutateGrades(ctx, targetID, func(book *Gradebook, studentID string) error {
		record, action, err := book.Upsert(req.Subject, req.Score)
		if err != nil {
			return err
		}
		result = &GradeMutationResult{StudentID: studentID, Action: action, Record: record, Grades: book.Records()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveGrade deletes the grade for a subject on the scoped student and
// returns the removed record.
func (s *GradeService) RemoveGrade(ctx context.Context, principal models.Principal, requestedID, subject string) (*GradeMutationResult, error) {
	targetID, err := ResolveStudentScope(principal, requestedID)
	if err != nil {
		return nil, err
	}

	var result *GradeMutationResult
	err = s.mutateGrades(ctx, targetID, func(book *Gradebook, studentID string) error {
		removed, err := book.Remove(subject)
		if err != nil {
			return err
		}
		result = &GradeMutationResult{StudentID: studentID, Record: removed, Grades: book.Records()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TranscriptFormat names a supported transcript export encoding.
type TranscriptFormat string

const (
	TranscriptCSV TranscriptFormat = "csv"
	TranscriptPDF TranscriptFormat = "pdf"
)

// Transcript is a rendered grade report ready for download.
type Transcript struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportTranscript renders the scoped student's grade report as CSV or PDF.
func (s *GradeService) ExportTranscript(ctx context.Context, principal models.Principal, requestedID string, format TranscriptFormat) (*Transcript, error) {
	targetID, err := ResolveStudentScope(principal, requestedID)
	if err != nil {
		return nil, err
	}
	student, err := s.loadStudent(ctx, targetID)
	if err != nil {
		return nil, err
	}

	book := NewGradebook(student.Grades)
	summary := book.Summary()

	dataset := export.Dataset{Headers: []string{"Subject", "Score", "Letter"}}
	for _, record := range book.Records() {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Subject": record.Subject,
			"Score":   strconv.FormatFloat(record.Score, 'f', -1, 64),
			"Letter":  letterGrade(record.Score),
		})
	}
	if summary.AverageGrade != nil {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Subject": "Average",
			"Score":   strconv.FormatFloat(*summary.AverageGrade, 'f', 2, 64),
			"Letter":  letterGrade(*summary.AverageGrade),
		})
	}

	title := fmt.Sprintf("Transcript %s (%s)", student.FullName, student.StudentID)
	switch format {
	case TranscriptCSV, "":
		content, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript")
		}
		return &Transcript{
			FileName:    fmt.Sprintf("transcript-%s.csv", strings.ToLower(student.StudentID)),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case TranscriptPDF:
		content, err := export.NewPDFExporter().Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript")
		}
		return &Transcript{
			FileName:    fmt.Sprintf("transcript-%s.pdf", strings.ToLower(student.StudentID)),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format, use csv or pdf")
	}
}

func (s *GradeService) loadStudent(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// mutateGrades runs the read-modify-write cycle for a grade mutation. The
// mutation fills the caller's result from the loaded gradebook; a version
// conflict on write reloads and reapplies it.
func (s *GradeService) mutateGrades(ctx context.Context, studentID string, mutate func(book *Gradebook, studentID string) error) error {
	for attempt := 1; ; attempt++ {
		student, err := s.loadStudent(ctx, studentID)
		if err != nil {
			return err
		}

		book := NewGradebook(student.Grades)
		if err := mutate(book, student.StudentID); err != nil {
			return err
		}

		err = s.students.UpdateGrades(ctx, student.StudentID, book.Records(), student.Version)
		if err == nil {
			s.invalidateSummary(ctx, student.StudentID)
			return nil
		}
		if errors.Is(err, repository.ErrVersionConflict) {
			if attempt < s.config.UpsertMaxRetries {
				s.logger.Debug("grade write conflict, retrying",
					zap.String("student_id", student.StudentID),
					zap.Int("attempt", attempt))
				continue
			}
			return appErrors.Clone(appErrors.ErrVersionConflict, "grades were modified concurrently, please retry")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save grades")
	}
}

func (s *GradeService) summarize(ctx context.Context, studentID string, book *Gradebook) models.GradeSummary {
	key := summaryCacheKey(studentID)
	if s.cache != nil {
		var cached models.GradeSummary
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("grade summary cache read failed", zap.String("student_id", studentID), zap.Error(err))
		}
	}

	summary := book.Summary()
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary, s.config.SummaryCacheTTL); err != nil {
			s.logger.Warn("grade summary cache write failed", zap.String("student_id", studentID), zap.Error(err))
		}
	}
	return summary
}

func (s *GradeService) invalidateSummary(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, summaryCacheKey(studentID)); err != nil {
		s.logger.Warn("grade summary cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

func summaryCacheKey(studentID string) string {
	return "grades:summary:" + studentID
}

func letterGrade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}
