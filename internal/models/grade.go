package models

// GradeRecord is a single subject/score pair owned by a student.
// Records are addressed by (student, subject); subjects are unique per
// student on a trimmed, case-insensitive key.
type GradeRecord struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
}

// GradeAction describes the outcome of a grade upsert.
type GradeAction string

const (
	GradeAdded   GradeAction = "added"
	GradeUpdated GradeAction = "updated"
)

// GradeDistribution buckets scores into letter bands.
// A=[90,100], B=[80,90), C=[70,80), D=[60,70), F=[0,60).
type GradeDistribution struct {
	A int `json:"A"`
	B int `json:"B"`
	C int `json:"C"`
	D int `json:"D"`
	F int `json:"F"`
}

// GradeSummary carries derived statistics over a student's grade set.
// Average and extremes are nil for an empty set; an empty gradebook has
// no defined average and must not be reported as zero.
type GradeSummary struct {
	TotalSubjects int               `json:"total_subjects"`
	AverageGrade  *float64          `json:"average_grade"`
	HighestGrade  *GradeRecord      `json:"highest_grade"`
	LowestGrade   *GradeRecord      `json:"lowest_grade"`
	Distribution  GradeDistribution `json:"grade_distribution"`
}

// StudentGrades pairs a student's identity with their grade list, used by
// the administrative bulk view.
type StudentGrades struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	FullName   string    `json:"full_name"`
	GradeLevel string    `json:"grade_level"`
	Grades     GradeList `json:"grades"`
}

// GradeListFilter controls the administrative bulk grade view.
type GradeListFilter struct {
	Subject string
	Page    int
	Limit   int
}
