package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-ops-api/internal/dto"
	"github.com/noah-isme/sma-ops-api/internal/models"
	appErrors "github.com/noah-isme/sma-ops-api/pkg/errors"
	"github.com/noah-isme/sma-ops-api/pkg/response"
)

type attendanceService interface {
	RecordSession(ctx context.Context, req dto.RecordAttendanceRequest) (int, error)
	DailyStatus(ctx context.Context, classID, rawDate string) (*models.DayStatus, error)
	StudentStats(ctx context.Context, studentID string, query dto.StudentAttendanceQuery) (*models.StudentAttendanceStats, error)
	AbsenceReport(ctx context.Context, studentID string) ([]models.AbsenceReportEntry, error)
}

// AttendanceHandler exposes REST endpoints for recording attendance and
// reading the derived day status.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Record godoc
// @Summary Record one session's attendance for a class
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.RecordAttendanceRequest true "Attendance facts"
// @Success 200 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req dto.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid attendance payload"))
		return
	}
	recorded, err := h.service.RecordSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"recorded": recorded}, nil)
}

// DailyStatus godoc
// @Summary Report which sessions have been taken for a class on a date
// @Tags Attendance
// @Produce json
// @Param class_id query string true "Class id"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) DailyStatus(c *gin.Context) {
	status, err := h.service.DailyStatus(c.Request.Context(), c.Query("class_id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}
