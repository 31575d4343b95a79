package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-records-api/internal/models"
)

func TestEnrollmentRepositoryFindActiveEnrollments(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEnrollmentRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "status", "created_at", "course_name", "course_code"}).
		AddRow("e-1", "STU-2026-0001", "c-1", "active", now, "Algebra", "MATH-101").
		AddRow("e-2", "STU-2026-0001", "c-2", "in_progress", now, "Chemistry", "CHEM-110")

	mock.ExpectQuery("SELECT e.id, e.student_id").
		WithArgs("STU-2026-0001", sqlmock.AnyArg()).
		WillReturnRows(rows)

	enrollments, err := repo.FindActiveEnrollments(context.Background(), "STU-2026-0001")
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	assert.Equal(t, models.EnrollmentStatusActive, enrollments[0].Status)
	assert.Equal(t, "MATH-101", enrollments[0].CourseCode)
	assert.Equal(t, "Chemistry", enrollments[1].CourseName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindActiveEnrollmentsEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT e.id, e.student_id").
		WithArgs("STU-2026-0002", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "course_id", "status", "created_at", "course_name", "course_code"}))

	enrollments, err := repo.FindActiveEnrollments(context.Background(), "STU-2026-0002")
	require.NoError(t, err)
	assert.Empty(t, enrollments)
}

func TestEnrollmentRepositoryFindActiveEnrollmentsError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT e.id, e.student_id").
		WithArgs("STU-2026-0001", sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.FindActiveEnrollments(context.Background(), "STU-2026-0001")
	assert.Error(t, err)
}
