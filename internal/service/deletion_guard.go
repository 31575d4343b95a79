package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
)

type enrollmentReader interface {
	FindActiveEnrollments(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
}

// DeletionCheck reports whether a student may be permanently deleted.
type DeletionCheck struct {
	Deletable           bool                      `json:"deletable"`
	BlockingEnrollments []models.EnrollmentDetail `json:"blocking_enrollments"`
}

// DeletionGuard blocks destructive student operations while the student
// has enrollments signalling ongoing coursework.
type DeletionGuard struct {
	enrollments enrollmentReader
	logger      *zap.Logger
}

// NewDeletionGuard constructs a DeletionGuard.
func NewDeletionGuard(enrollments enrollmentReader, logger *zap.Logger) *DeletionGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeletionGuard{enrollments: enrollments, logger: logger}
}

// CanDelete checks the student's active enrollments. A failed enrollment
// lookup fails closed: the student is reported as not deletable with a
// synthetic blocking entry rather than silently allowing an unsafe delete.
func (g *DeletionGuard) CanDelete(ctx context.Context, studentID string) DeletionCheck {
	active, err := g.enrollments.FindActiveEnrollments(ctx, studentID)
	if err != nil {
		g.logger.Error("enrollment check failed, blocking deletion",
			zap.String("student_id", studentID),
			zap.Error(err))
		return DeletionCheck{
			Deletable: false,
			BlockingEnrollments: []models.EnrollmentDetail{{
				Enrollment: models.Enrollment{StudentID: studentID, Status: "unknown"},
				CourseName: "enrollment status unavailable",
				CourseCode: "CHECK-FAILED",
			}},
		}
	}
	return DeletionCheck{Deletable: len(active) == 0, BlockingEnrollments: active}
}
