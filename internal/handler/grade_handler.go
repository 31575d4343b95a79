package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/service"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
	"github.com/noah-isme/academic-records-api/pkg/response"
)

// GradeHandler exposes grade endpoints.
type GradeHandler struct {
	grades  *service.GradeService
	metrics *service.MetricsService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService, metrics *service.MetricsService) *GradeHandler {
	return &GradeHandler{grades: grades, metrics: metrics}
}

// List godoc
// @Summary List a student's grades with statistics
// @Tags Grades
// @Produce json
// @Param id path string true "Student ID"
// @Param subject query string false "Case-insensitive subject substring filter"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	view, err := h.grades.ListGrades(c.Request.Context(), principal, c.Param("id"), c.Query("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ListAll godoc
// @Summary List every student's grades (administrative view)
// @Tags Grades
// @Produce json
// @Param subject query string false "Case-insensitive subject substring filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) ListAll(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	filter := models.GradeListFilter{
		Subject: c.Query("subject"),
		Page:    queryInt(c, "page", 1),
		Limit:   queryInt(c, "limit", 10),
	}
	grades, pagination, err := h.grades.ListAllGrades(c.Request.Context(), principal, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, pagination)
}

// Upsert godoc
// @Summary Record or overwrite a subject grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.UpsertGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/grades [post]
func (h *GradeHandler) Upsert(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req service.UpsertGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.grades.UpsertGrade(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveGradeMutation(string(result.Action))
	}

	status := http.StatusOK
	if result.Action == models.GradeAdded {
		status = http.StatusCreated
	}
	response.JSON(c, status, result, nil)
}

// Remove godoc
// @Summary Delete a subject grade
// @Tags Grades
// @Produce json
// @Param id path string true "Student ID"
// @Param subject path string true "Subject name"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/grades/{subject} [delete]
func (h *GradeHandler) Remove(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	result, err := h.grades.RemoveGrade(c.Request.Context(), principal, c.Param("id"), c.Param("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveGradeMutation("removed")
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export a student's transcript
// @Tags Grades
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /students/{id}/grades/export [get]
func (h *GradeHandler) Export(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	format := service.TranscriptFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	transcript, err := h.grades.ExportTranscript(c.Request.Context(), principal, c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", transcript.FileName))
	c.Data(http.StatusOK, transcript.ContentType, transcript.Content)
}
