package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/repository"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	ExistsByStudentID(ctx context.Context, studentID string, excludeID string) (bool, error)
	NextStudentSeq(ctx context.Context, year int) (int, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, studentID string) error
}

// CreateStudentRequest holds the payload for creating students. StudentID
// is optional; when absent an STU-<year>-<seq> identifier is generated.
type CreateStudentRequest struct {
	StudentID  string `json:"student_id"`
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Age        int    `json:"age" validate:"required,min=3,max=25"`
	GradeLevel string `json:"grade_level" validate:"required"`
}

// UpdateStudentRequest holds the payload for updating a student's profile.
// The student identifier is immutable; grades are mutated only through the
// grade operations.
type UpdateStudentRequest struct {
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Age        int    `json:"age" validate:"required,min=3,max=25"`
	GradeLevel string `json:"grade_level" validate:"required"`
}

// BulkDeleteOutcome is the tri-state result of a bulk deletion.
type BulkDeleteOutcome string

const (
	BulkDeleteComplete BulkDeleteOutcome = "complete"
	BulkDeletePartial  BulkDeleteOutcome = "partial"
	BulkDeleteFailed   BulkDeleteOutcome = "failed"
)

// BulkDeleteBlocked reports a candidate blocked by active enrollments.
type BulkDeleteBlocked struct {
	StudentID           string                    `json:"student_id"`
	BlockingEnrollments []models.EnrollmentDetail `json:"blocking_enrollments"`
}

// BulkDeleteFailure reports a candidate that errored during deletion.
type BulkDeleteFailure struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

// BulkDeleteResult partitions bulk deletion candidates by outcome. The
// operation is not a transaction: successes stand even when siblings are
// blocked or fail.
type BulkDeleteResult struct {
	Successful           []string            `json:"successful"`
	BlockedByEnrollments []BulkDeleteBlocked `json:"blocked_by_enrollments"`
	Failed               []BulkDeleteFailure `json:"failed"`
	Outcome              BulkDeleteOutcome   `json:"outcome"`
}

// StudentService handles student record use-cases.
type StudentService struct {
	repo      studentRepository
	guard     *DeletionGuard
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, guard *DeletionGuard, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, guard: guard, metrics: metrics, validator: validate, logger: logger}
}

// List returns students and pagination metadata. Staff only.
func (s *StudentService) List(ctx context.Context, principal models.Principal, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if err := RequireStaff(principal); err != nil {
		return nil, nil, err
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get returns the student record the principal is scoped to.
func (s *StudentService) Get(ctx context.Context, principal models.Principal, requestedID string) (*models.Student, error) {
	targetID, err := ResolveStudentScope(principal, requestedID)
	if err != nil {
		return nil, err
	}
	student, err := s.repo.FindByStudentID(ctx, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student. Staff only.
func (s *StudentService) Create(ctx context.Context, principal models.Principal, req CreateStudentRequest) (*models.Student, error) {
	if err := RequireStaff(principal); err != nil {
		return nil, err
	}
	return s.create(ctx, req)
}

// CreateSelfRegistered registers a student without a staff principal; used
// by the self-registration flow where no authenticated actor exists yet.
func (s *StudentService) CreateSelfRegistered(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	return s.create(ctx, req)
}

func (s *StudentService) create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.ExistsByEmail(ctx, email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	studentID := strings.TrimSpace(req.StudentID)
	if studentID == "" {
		studentID, err = s.generateStudentID(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		taken, err := s.repo.ExistsByStudentID(ctx, studentID, "")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student id")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student id already used")
		}
	}

	student := &models.Student{
		StudentID:  studentID,
		FullName:   strings.TrimSpace(req.FullName),
		Email:      email,
		Age:        req.Age,
		GradeLevel: strings.TrimSpace(req.GradeLevel),
		Grades:     models.GradeList{},
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email or student id already used")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

func (s *StudentService) generateStudentID(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()
	seq, err := s.repo.NextStudentSeq(ctx, year)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate student id")
	}
	return fmt.Sprintf("STU-%d-%04d", year, seq), nil
}

// Update modifies an existing student's profile. Staff only.
func (s *StudentService) Update(ctx context.Context, principal models.Principal, studentID string, req UpdateStudentRequest) (*models.Student, error) {
	if err := RequireStaff(principal); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.repo.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.ExistsByEmail(ctx, email, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	student.FullName = strings.TrimSpace(req.FullName)
	student.Email = email
	student.Age = req.Age
	student.GradeLevel = strings.TrimSpace(req.GradeLevel)
	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete permanently removes a student after the deletion guard clears
// them. Admin only.
func (s *StudentService) Delete(ctx context.Context, principal models.Principal, studentID string) error {
	if err := RequireAdmin(principal); err != nil {
		return err
	}
	if _, err := s.repo.FindByStudentID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	check := s.guard.CanDelete(ctx, studentID)
	if !check.Deletable {
		if s.metrics != nil {
			s.metrics.ObserveDeletionBlocked()
		}
		return appErrors.WithDetails(
			appErrors.ErrConflict,
			"student has active enrollments",
			map[string]any{"blocking_enrollments": check.BlockingEnrollments},
		)
	}

	if err := s.repo.Delete(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}

// BulkDelete removes a set of candidate students. Candidates are processed
// independently; one candidate's block or failure never aborts the others.
// Admin only.
func (s *StudentService) BulkDelete(ctx context.Context, principal models.Principal, studentIDs []string) (*BulkDeleteResult, error) {
	if err := RequireAdmin(principal); err != nil {
		return nil, err
	}
	if len(studentIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one student id is required")
	}

	result := &BulkDeleteResult{}
	for _, studentID := range studentIDs {
		if _, err := s.repo.FindByStudentID(ctx, studentID); err != nil {
			reason := "failed to load student"
			if errors.Is(err, sql.ErrNoRows) {
				reason = "student not found"
			}
			result.Failed = append(result.Failed, BulkDeleteFailure{StudentID: studentID, Reason: reason})
			continue
		}

		check := s.guard.CanDelete(ctx, studentID)
		if !check.Deletable {
			if s.metrics != nil {
				s.metrics.ObserveDeletionBlocked()
			}
			result.BlockedByEnrollments = append(result.BlockedByEnrollments, BulkDeleteBlocked{
				StudentID:           studentID,
				BlockingEnrollments: check.BlockingEnrollments,
			})
			continue
		}

		if err := s.repo.Delete(ctx, studentID); err != nil {
			s.logger.Error("bulk delete candidate failed", zap.String("student_id", studentID), zap.Error(err))
			result.Failed = append(result.Failed, BulkDeleteFailure{StudentID: studentID, Reason: err.Error()})
			continue
		}
		result.Successful = append(result.Successful, studentID)
	}

	switch {
	case len(result.Successful) == len(studentIDs):
		result.Outcome = BulkDeleteComplete
	case len(result.Successful) > 0:
		result.Outcome = BulkDeletePartial
	default:
		result.Outcome = BulkDeleteFailed
	}
	return result, nil
}
