package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/academic-records-api/internal/models"
)

// Sentinel errors surfaced by repositories; services map them onto the
// domain error taxonomy.
var (
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrVersionConflict = errors.New("version conflict")
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// StudentRepository manages persistence for student records. Grades live
// on the student row as an ordered JSONB document guarded by a version
// column for optimistic concurrency.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students s"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.GradeLevel != "" {
		conditions = append(conditions, fmt.Sprintf("s.grade_level = $%d", len(args)+1))
		args = append(args, filter.GradeLevel)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR LOWER(s.student_id) LIKE $%d OR LOWER(s.email) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":   "s.full_name",
		"student_id":  "s.student_id",
		"grade_level": "s.grade_level",
		"created_at":  "s.created_at",
	}
	if sortBy == "" {
		sortBy = "created_at"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "s.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := models.NormalizePage(filter.Page)
	limit := models.NormalizeLimit(filter.Limit)
	offset := (page - 1) * limit

	query := fmt.Sprintf(`SELECT s.id, s.student_id, s.full_name, s.email, s.age, s.grade_level, s.grades, s.version, s.created_at, s.updated_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, limit, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByStudentID fetches a student by their human-readable identifier.
func (r *StudentRepository) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	const query = `SELECT id, student_id, full_name, email, age, grade_level, grades, version, created_at, updated_at
        FROM students WHERE student_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, studentID); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByEmail checks if a student with the email exists, optionally
// excluding a row ID.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE email = $1"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// ExistsByStudentID checks if the human-readable id is already taken.
func (r *StudentRepository) ExistsByStudentID(ctx context.Context, studentID string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE student_id = $1"
	args := []interface{}{studentID}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student id: %w", err)
	}
	return true, nil
}

// NextStudentSeq reserves the next per-year sequence number used when
// generating STU-<year>-<seq> identifiers.
func (r *StudentRepository) NextStudentSeq(ctx context.Context, year int) (int, error) {
	const query = `INSERT INTO student_id_counters (year, seq) VALUES ($1, 1)
        ON CONFLICT (year) DO UPDATE SET seq = student_id_counters.seq + 1
        RETURNING seq`
	var seq int
	if err := r.db.GetContext(ctx, &seq, query, year); err != nil {
		return 0, fmt.Errorf("next student seq: %w", err)
	}
	return seq, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.Grades == nil {
		student.Grades = models.GradeList{}
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, student_id, full_name, email, age, grade_level, grades, version, created_at, updated_at)
        VALUES (:id, :student_id, :full_name, :email, :age, :grade_level, :grades, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student's profile fields. Grades are written
// only through UpdateGrades so profile edits never race grade mutations.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET student_id = :student_id, full_name = :full_name, email = :email, age = :age, grade_level = :grade_level, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// UpdateGrades persists the full grade document, guarded by the version
// the caller read. A zero-row update means either the student is gone or
// another writer got there first.
func (r *StudentRepository) UpdateGrades(ctx context.Context, studentID string, grades models.GradeList, expectedVersion int) error {
	const query = `UPDATE students SET grades = $2, version = version + 1, updated_at = $3
        WHERE student_id = $1 AND version = $4`
	result, err := r.db.ExecContext(ctx, query, studentID, grades, time.Now().UTC(), expectedVersion)
	if err != nil {
		return fmt.Errorf("update grades: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update grades: %w", err)
	}
	if affected == 0 {
		exists, err := r.ExistsByStudentID(ctx, studentID, "")
		if err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
		return ErrVersionConflict
	}
	return nil
}

// Delete permanently removes a student row and its embedded grades.
func (r *StudentRepository) Delete(ctx context.Context, studentID string) error {
	const query = `DELETE FROM students WHERE student_id = $1`
	result, err := r.db.ExecContext(ctx, query, studentID)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
