package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-ops-api/internal/dto"
	"github.com/noah-isme/sma-ops-api/internal/models"
	appErrors "github.com/noah-isme/sma-ops-api/pkg/errors"
	"github.com/noah-isme/sma-ops-api/pkg/response"
)

type accountingService interface {
	StudentAccounting(ctx context.Context, studentID string, asOf time.Time) (*models.StudentAccounting, error)
	Ledger(ctx context.Context, studentID string) ([]models.PointsLedgerEntry, error)
}

// StudentHandler exposes per-student read models: points accounting and
// attendance aggregates.
type StudentHandler struct {
	accounting accountingService
	attendance attendanceService
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(accounting accountingService, attendance attendanceService) *StudentHandler {
	return &StudentHandler{accounting: accounting, attendance: attendance}
}

// Points godoc
// @Summary Fetch a student's total points, monthly points and stars
// @Tags Students
// @Produce json
// @Param id path string true "Student id"
// @Param month query string false "Month (YYYY-MM), defaults to current"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/points [get]
func (h *StudentHandler) Points(c *gin.Context) {
	var asOf time.Time
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month must be formatted YYYY-MM"))
			return
		}
		asOf = parsed
	}
	accounting, err := h.accounting.StudentAccounting(c.Request.Context(), c.Param("id"), asOf)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, accounting, nil)
}

// Ledger godoc
// @Summary Fetch a student's raw points ledger, oldest first
// @Tags Students
// @Produce json
// @Param id path string true "Student id"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/points/ledger [get]
func (h *StudentHandler) Ledger(c *gin.Context) {
	entries, err := h.accounting.Ledger(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// AttendanceStats godoc
// @Summary Aggregate a student's attendance over an optional range
// @Tags Students
// @Produce json
// @Param id path string true "Student id"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/attendance [get]
func (h *StudentHandler) AttendanceStats(c *gin.Context) {
	query := dto.StudentAttendanceQuery{
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}
	stats, err := h.attendance.StudentStats(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Absences godoc
// @Summary List a student's absences grouped per date
// @Tags Students
// @Produce json
// @Param id path string true "Student id"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/absences [get]
func (h *StudentHandler) Absences(c *gin.Context) {
	report, err := h.attendance.AbsenceReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
