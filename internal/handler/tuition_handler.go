package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/enrollment-api/internal/service"
	"github.com/campushq/enrollment-api/pkg/response"
)

// TuitionHandler exposes fee assessment endpoints.
type TuitionHandler struct {
	tuition *service.TuitionService
}

// NewTuitionHandler constructs TuitionHandler.
func NewTuitionHandler(tuition *service.TuitionService) *TuitionHandler {
	return &TuitionHandler{tuition: tuition}
}

// Calculate godoc
// @Summary Recompute a student's fee breakdown
// @Tags Tuition
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/tuition [get]
func (h *TuitionHandler) Calculate(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.tuition.Calculate(c.Param("id")), nil)
}

// Assess godoc
// @Summary Produce a student's initial assessment including one-time fees
// @Tags Tuition
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/tuition/assessment [get]
func (h *TuitionHandler) Assess(c *gin.Context) {
	breakdown, err := h.tuition.Assess(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, breakdown, nil)
}
