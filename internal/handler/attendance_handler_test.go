package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-ops-api/internal/dto"
	"github.com/noah-isme/sma-ops-api/internal/models"
	appErrors "github.com/noah-isme/sma-ops-api/pkg/errors"
)

type attendanceServiceMock struct {
	recorded int
	req      dto.RecordAttendanceRequest
	status   *models.DayStatus
	stats    *models.StudentAttendanceStats
	absences []models.AbsenceReportEntry
	err      error
}

func (m *attendanceServiceMock) RecordSession(_ context.Context, req dto.RecordAttendanceRequest) (int, error) {
	m.req = req
	return m.recorded, m.err
}

func (m *attendanceServiceMock) DailyStatus(_ context.Context, _, _ string) (*models.DayStatus, error) {
	return m.status, m.err
}

func (m *attendanceServiceMock) StudentStats(_ context.Context, _ string, _ dto.StudentAttendanceQuery) (*models.StudentAttendanceStats, error) {
	return m.stats, m.err
}

func (m *attendanceServiceMock) AbsenceReport(_ context.Context, _ string) ([]models.AbsenceReportEntry, error) {
	return m.absences, m.err
}

func TestAttendanceHandlerRecord(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &attendanceServiceMock{recorded: 2}
	handler := NewAttendanceHandler(mock)

	payload, _ := json.Marshal(dto.RecordAttendanceRequest{
		ClassID: "10A",
		Date:    "2026-03-02",
		Session: "MORNING",
		Items: []dto.AttendanceItem{
			{StudentID: "student-1", Status: "PRESENT"},
			{StudentID: "student-2", Status: "ABSENT"},
		},
	})
	c, w := newGinContext(http.MethodPost, "/attendance", payload)
	asTeacher(c)

	handler.Record(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "10A", mock.req.ClassID)
	require.Len(t, mock.req.Items, 2)
}

func TestAttendanceHandlerRecordInvalidSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &attendanceServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "invalid attendance payload")}
	handler := NewAttendanceHandler(mock)

	payload, _ := json.Marshal(dto.RecordAttendanceRequest{
		ClassID: "10A",
		Date:    "2026-03-02",
		Session: "EVENING",
		Items:   []dto.AttendanceItem{{StudentID: "student-1", Status: "PRESENT"}},
	})
	c, w := newGinContext(http.MethodPost, "/attendance", payload)
	asTeacher(c)

	handler.Record(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandlerDailyStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &attendanceServiceMock{status: &models.DayStatus{
		ClassID:      "10A",
		Date:         time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		MorningTaken: true,
	}}
	handler := NewAttendanceHandler(mock)

	c, w := newGinContext(http.MethodGet, "/attendance?class_id=10A&date=2026-03-02", nil)
	asTeacher(c)

	handler.DailyStatus(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.DayStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Data.MorningTaken)
	require.False(t, envelope.Data.AfternoonTaken)
}
