package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Student represents a learner and their embedded grade collection.
type Student struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      string    `db:"email" json:"email"`
	Age        int       `db:"age" json:"age"`
	GradeLevel string    `db:"grade_level" json:"grade_level"`
	Grades     GradeList `db:"grades" json:"grades"`
	Version    int       `db:"version" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// GradeList is the ordered grade collection stored as a JSONB column.
// Sequence order is preserved across read-modify-write cycles because
// highest/lowest tie-breaks depend on insertion order.
type GradeList []GradeRecord

// Value implements driver.Valuer for JSONB storage.
func (g GradeList) Value() (driver.Value, error) {
	if g == nil {
		g = GradeList{}
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal grades: %w", err)
	}
	return raw, nil
}

// Scan implements sql.Scanner for JSONB storage.
func (g *GradeList) Scan(src interface{}) error {
	if src == nil {
		*g = GradeList{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported grades column type %T", src)
	}
	if len(raw) == 0 {
		*g = GradeList{}
		return nil
	}
	return json.Unmarshal(raw, g)
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search     string
	GradeLevel string
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}
