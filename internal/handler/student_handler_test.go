package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-ops-api/internal/models"
)

type accountingServiceMock struct {
	accounting *models.StudentAccounting
	entries    []models.PointsLedgerEntry
	asOf       time.Time
	err        error
}

func (m *accountingServiceMock) StudentAccounting(_ context.Context, _ string, asOf time.Time) (*models.StudentAccounting, error) {
	m.asOf = asOf
	return m.accounting, m.err
}

func (m *accountingServiceMock) Ledger(_ context.Context, _ string) ([]models.PointsLedgerEntry, error) {
	return m.entries, m.err
}

func TestStudentHandlerPoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &accountingServiceMock{accounting: &models.StudentAccounting{
		StudentID:     "student-1",
		TotalPoints:   45,
		MonthlyPoints: 10,
		Stars:         2,
	}}
	handler := NewStudentHandler(mock, &attendanceServiceMock{})

	c, w := newGinContext(http.MethodGet, "/students/student-1/points", nil)
	c.Params = gin.Params{{Key: "id", Value: "student-1"}}
	asTeacher(c)

	handler.Points(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.StudentAccounting `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, 45, envelope.Data.TotalPoints)
	require.Equal(t, 2, envelope.Data.Stars)
}

func TestStudentHandlerPointsMonthQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &accountingServiceMock{accounting: &models.StudentAccounting{StudentID: "student-1"}}
	handler := NewStudentHandler(mock, &attendanceServiceMock{})

	c, w := newGinContext(http.MethodGet, "/students/student-1/points?month=2026-02", nil)
	c.Params = gin.Params{{Key: "id", Value: "student-1"}}
	asTeacher(c)

	handler.Points(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, time.February, mock.asOf.Month())

	c, w = newGinContext(http.MethodGet, "/students/student-1/points?month=last-month", nil)
	c.Params = gin.Params{{Key: "id", Value: "student-1"}}
	asTeacher(c)

	handler.Points(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentHandlerAttendanceStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	attendance := &attendanceServiceMock{stats: &models.StudentAttendanceStats{
		StudentID:       "student-1",
		TotalSessions:   20,
		PresentSessions: 18,
		AbsentSessions:  2,
		Percentage:      90,
	}}
	handler := NewStudentHandler(&accountingServiceMock{}, attendance)

	c, w := newGinContext(http.MethodGet, "/students/student-1/attendance?date_from=2026-03-01", nil)
	c.Params = gin.Params{{Key: "id", Value: "student-1"}}
	asTeacher(c)

	handler.AttendanceStats(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.StudentAttendanceStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, 90, envelope.Data.Percentage)
}

func TestStudentHandlerAbsences(t *testing.T) {
	gin.SetMode(gin.TestMode)
	attendance := &attendanceServiceMock{absences: []models.AbsenceReportEntry{
		{
			Date:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			Sessions: []models.AttendanceSession{models.SessionMorning, models.SessionAfternoon},
		},
	}}
	handler := NewStudentHandler(&accountingServiceMock{}, attendance)

	c, w := newGinContext(http.MethodGet, "/students/student-1/absences", nil)
	c.Params = gin.Params{{Key: "id", Value: "student-1"}}
	asTeacher(c)

	handler.Absences(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.AbsenceReportEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	require.Len(t, envelope.Data[0].Sessions, 2)
}
