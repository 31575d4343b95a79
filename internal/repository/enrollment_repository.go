package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/academic-records-api/internal/models"
)

// EnrollmentRepository reads enrollment records. The records API consumes
// enrollments read-only; they are owned by the enrollment service.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindActiveEnrollments returns the student's enrollments whose status
// signals ongoing coursework, with course name/code denormalized for
// conflict reports.
func (r *EnrollmentRepository) FindActiveEnrollments(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.course_id, e.status, e.created_at,
        c.name AS course_name, c.code AS course_code
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1 AND e.status = ANY($2)
        ORDER BY e.created_at`
	statuses := make([]string, len(models.ActiveEnrollmentStatuses))
	for i, status := range models.ActiveEnrollmentStatuses {
		statuses[i] = string(status)
	}
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID, pq.Array(statuses)); err != nil {
		return nil, fmt.Errorf("find active enrollments: %w", err)
	}
	return enrollments, nil
}
