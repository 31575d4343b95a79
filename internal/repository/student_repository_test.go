package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-records-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func studentColumns() []string {
	return []string{"id", "student_id", "full_name", "email", "age", "grade_level", "grades", "version", "created_at", "updated_at"}
}

func studentRow(studentID string, grades string, version int) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(studentColumns()).
		AddRow("id-1", studentID, "Ana Lim", "ana@example.com", 16, "10", []byte(grades), version, now, now)
}

func TestStudentRepositoryFindByStudentID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT id, student_id").
		WithArgs("STU-2026-0001").
		WillReturnRows(studentRow("STU-2026-0001", `[{"subject":"Math","score":92.5}]`, 3))

	student, err := repo.FindByStudentID(context.Background(), "STU-2026-0001")
	require.NoError(t, err)
	assert.Equal(t, "STU-2026-0001", student.StudentID)
	assert.Equal(t, 3, student.Version)
	require.Len(t, student.Grades, 1)
	assert.Equal(t, "Math", student.Grades[0].Subject)
	assert.Equal(t, 92.5, student.Grades[0].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByStudentIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT id, student_id").
		WithArgs("STU-2026-0099").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByStudentID(context.Background(), "STU-2026-0099")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStudentRepositoryListWithFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT s.id, s.student_id").
		WithArgs("10", "%ana%").
		WillReturnRows(studentRow("STU-2026-0001", "[]", 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("10", "%ana%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{
		GradeLevel: "10",
		Search:     "Ana",
		Page:       1,
		Limit:      10,
	})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryNextStudentSeq(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery("INSERT INTO student_id_counters").
		WithArgs(2026).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(7))

	seq, err := repo.NextStudentSeq(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, 7, seq)
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(0, 1))

	student := &models.Student{StudentID: "STU-2026-0001", FullName: "Ana", Email: "ana@example.com", Age: 16, GradeLevel: "10"}
	err := repo.Create(context.Background(), student)
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.NotNil(t, student.Grades)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Student{StudentID: "STU-2026-0001", Email: "ana@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestStudentRepositoryUpdateGrades(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET grades").
		WithArgs("STU-2026-0001", sqlmock.AnyArg(), sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	grades := models.GradeList{{Subject: "Math", Score: 90}}
	err := repo.UpdateGrades(context.Background(), "STU-2026-0001", grades, 3)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateGradesVersionConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET grades").
		WithArgs("STU-2026-0001", sqlmock.AnyArg(), sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM students WHERE student_id").
		WithArgs("STU-2026-0001").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	err := repo.UpdateGrades(context.Background(), "STU-2026-0001", models.GradeList{}, 3)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateGradesStudentGone(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET grades").
		WithArgs("STU-2026-0099", sqlmock.AnyArg(), sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM students WHERE student_id").
		WithArgs("STU-2026-0099").
		WillReturnError(sql.ErrNoRows)

	err := repo.UpdateGrades(context.Background(), "STU-2026-0099", models.GradeList{}, 1)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStudentRepositoryDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectExec("DELETE FROM students").
		WithArgs("STU-2026-0001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "STU-2026-0001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectExec("DELETE FROM students").
		WithArgs("STU-2026-0099").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "STU-2026-0099")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStudentRepositoryExistsByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM students WHERE email").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "ana@example.com", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM students WHERE email").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsByEmail(context.Background(), "ghost@example.com", "")
	require.NoError(t, err)
	assert.False(t, exists)
}
