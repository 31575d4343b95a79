package service

import (
	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

// ResolveStudentScope decides which student record the principal may act
// on. Staff roles act on the requested record. Student principals are
// always scoped to the student id carried in their own claim: a differing
// path id is not rejected, it is ignored, so self-service requests can
// never read or write another student's record.
func ResolveStudentScope(principal models.Principal, requestedID string) (string, error) {
	switch {
	case principal.Role.IsStaff():
		if requestedID == "" {
			return "", appErrors.Clone(appErrors.ErrValidation, "student id is required")
		}
		return requestedID, nil
	case principal.Role == models.RoleStudent:
		if principal.StudentID == "" {
			return "", appErrors.Clone(appErrors.ErrMissingClaim, "student principal has no student_id claim")
		}
		return principal.StudentID, nil
	default:
		return "", appErrors.Clone(appErrors.ErrForbidden, "role is not permitted to access student records")
	}
}

// RequireStaff rejects principals without administrative record access.
func RequireStaff(principal models.Principal) error {
	if !principal.Role.Valid() {
		return appErrors.Clone(appErrors.ErrForbidden, "unrecognized role")
	}
	if !principal.Role.IsStaff() {
		return appErrors.Clone(appErrors.ErrForbidden, "staff role required")
	}
	return nil
}

// RequireAdmin rejects principals that are not administrators.
func RequireAdmin(principal models.Principal) error {
	if principal.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	return nil
}
