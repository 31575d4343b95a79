package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

func TestResolveStudentScopeStaff(t *testing.T) {
	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleTeacher} {
		target, err := ResolveStudentScope(models.Principal{UserID: "u1", Role: role}, "STU-2026-0007")
		require.NoError(t, err)
		assert.Equal(t, "STU-2026-0007", target)
	}
}

func TestResolveStudentScopeStaffMissingID(t *testing.T) {
	_, err := ResolveStudentScope(models.Principal{UserID: "u1", Role: models.RoleAdmin}, "")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestResolveStudentScopeStudentIgnoresPathID(t *testing.T) {
	principal := models.Principal{UserID: "u2", Role: models.RoleStudent, StudentID: "STU-2026-0001"}

	target, err := ResolveStudentScope(principal, "STU-2026-0099")
	require.NoError(t, err)
	assert.Equal(t, "STU-2026-0001", target)

	target, err = ResolveStudentScope(principal, "")
	require.NoError(t, err)
	assert.Equal(t, "STU-2026-0001", target)
}

func TestResolveStudentScopeStudentMissingClaim(t *testing.T) {
	_, err := ResolveStudentScope(models.Principal{UserID: "u2", Role: models.RoleStudent}, "STU-2026-0001")
	assert.True(t, appErrors.Is(err, appErrors.ErrMissingClaim))
}

func TestResolveStudentScopeUnknownRole(t *testing.T) {
	_, err := ResolveStudentScope(models.Principal{UserID: "u3", Role: "AUDITOR"}, "STU-2026-0001")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = ResolveStudentScope(models.Principal{UserID: "u3"}, "STU-2026-0001")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestRequireStaff(t *testing.T) {
	assert.NoError(t, RequireStaff(models.Principal{Role: models.RoleAdmin}))
	assert.NoError(t, RequireStaff(models.Principal{Role: models.RoleTeacher}))
	assert.True(t, appErrors.Is(RequireStaff(models.Principal{Role: models.RoleStudent}), appErrors.ErrForbidden))
	assert.True(t, appErrors.Is(RequireStaff(models.Principal{Role: "AUDITOR"}), appErrors.ErrForbidden))
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(models.Principal{Role: models.RoleAdmin}))
	assert.True(t, appErrors.Is(RequireAdmin(models.Principal{Role: models.RoleTeacher}), appErrors.ErrForbidden))
}
