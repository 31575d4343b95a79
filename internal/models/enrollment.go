package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive      EnrollmentStatus = "active"
	EnrollmentStatusEnrolled    EnrollmentStatus = "enrolled"
	EnrollmentStatusInProgress  EnrollmentStatus = "in_progress"
	EnrollmentStatusCompleted   EnrollmentStatus = "completed"
	EnrollmentStatusDropped     EnrollmentStatus = "dropped"
	EnrollmentStatusWithdrawn   EnrollmentStatus = "withdrawn"
	EnrollmentStatusSuspended   EnrollmentStatus = "suspended"
	EnrollmentStatusTransferred EnrollmentStatus = "transferred"
)

// ActiveEnrollmentStatuses are the statuses that signal ongoing coursework
// and therefore block student deletion.
var ActiveEnrollmentStatuses = []EnrollmentStatus{
	EnrollmentStatusActive,
	EnrollmentStatusEnrolled,
	EnrollmentStatusInProgress,
}

// IsActive reports whether the status blocks destructive operations.
func (s EnrollmentStatus) IsActive() bool {
	for _, active := range ActiveEnrollmentStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// Enrollment captures a student's registration to a course.
type Enrollment struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	CourseID  string           `db:"course_id" json:"course_id"`
	Status    EnrollmentStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// EnrollmentDetail enriches Enrollment with denormalized course info for
// operator-facing deletion conflict reports.
type EnrollmentDetail struct {
	Enrollment
	CourseName string `db:"course_name" json:"course_name"`
	CourseCode string `db:"course_code" json:"course_code"`
}
