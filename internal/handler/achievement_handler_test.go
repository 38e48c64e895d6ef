package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-ops-api/internal/dto"
	"github.com/noah-isme/sma-ops-api/internal/models"
	appErrors "github.com/noah-isme/sma-ops-api/pkg/errors"
)

func TestAchievementHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAchievementHandler(&workflowServiceMock{})

	payload, _ := json.Marshal(dto.CreateAchievementRequest{
		Title:     "Olympiad winner",
		StudentID: "student-1",
		Points:    25,
	})
	c, w := newGinContext(http.MethodPost, "/achievements", payload)
	asTeacher(c)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.WorkItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, models.StatusPending, envelope.Data.Status)
	require.Equal(t, "student-1", *envelope.Data.StudentID)
	require.Equal(t, 25, *envelope.Data.Points)
}

func TestAchievementHandlerApprove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &workflowServiceMock{item: &models.WorkItem{
		ID: "ach-1", Type: models.WorkItemAchievement, Status: models.StatusApproved,
	}}
	handler := NewAchievementHandler(mock)

	c, w := newGinContext(http.MethodPost, "/achievements/ach-1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "ach-1"}}
	asPrincipal(c)

	handler.Approve(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.ActionApprove, mock.action)
}

func TestAchievementHandlerRejectForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &workflowServiceMock{err: appErrors.Clone(appErrors.ErrForbidden, "not permitted for this action")}
	handler := NewAchievementHandler(mock)

	payload, _ := json.Marshal(dto.ReviewRequest{ReviewNote: "not verified"})
	c, w := newGinContext(http.MethodPost, "/achievements/ach-1/reject", payload)
	c.Params = gin.Params{{Key: "id", Value: "ach-1"}}
	asTeacher(c)

	handler.Reject(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAchievementHandlerListByStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &workflowServiceMock{}
	handler := NewAchievementHandler(mock)

	c, w := newGinContext(http.MethodGet, "/achievements?student_id=student-1&status=pending", nil)
	asTeacher(c)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "student-1", mock.filter.StudentID)
	require.Equal(t, []models.WorkItemStatus{models.StatusPending}, mock.filter.Status)
}
