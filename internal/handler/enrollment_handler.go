package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/enrollment-api/internal/service"
	appErrors "github.com/campushq/enrollment-api/pkg/errors"
	"github.com/campushq/enrollment-api/pkg/response"
)

// EnrollmentHandler exposes the enrollment engine's operations.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Enroll godoc
// @Summary Attempt course enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Drop godoc
// @Summary Drop an enrolled course
// @Tags Enrollments
// @Produce json
// @Param studentId path string true "Student ID"
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{studentId}/{courseCode} [delete]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	result, err := h.enrollments.Drop(c.Request.Context(), c.Param("studentId"), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Enrolled godoc
// @Summary List a student's enrolled courses
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/enrollments [get]
func (h *EnrollmentHandler) Enrolled(c *gin.Context) {
	studentID := c.Param("id")
	courses := h.enrollments.Enrolled(studentID)
	meta := map[string]interface{}{"total_units": h.enrollments.TotalUnits(studentID)}
	response.JSON(c, http.StatusOK, courses, nil, meta)
}

// Schedule godoc
// @Summary Render a student's weekly schedule
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/schedule [get]
func (h *EnrollmentHandler) Schedule(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.enrollments.Schedule(c.Param("id")), nil)
}

// Waitlisted godoc
// @Summary List a student's waitlisted courses
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/waitlist [get]
func (h *EnrollmentHandler) Waitlisted(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.enrollments.Waitlisted(c.Param("id")), nil)
}
