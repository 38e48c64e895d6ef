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

func TestReportHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&workflowServiceMock{})

	payload, _ := json.Marshal(dto.CreateReportRequest{Title: "Weekly duty report"})
	c, w := newGinContext(http.MethodPost, "/reports", payload)
	asTeacher(c)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.WorkItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, models.StatusSubmitted, envelope.Data.Status)
}

func TestReportHandlerApproveWithoutBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &workflowServiceMock{item: &models.WorkItem{
		ID: "rep-1", Type: models.WorkItemReport, Status: models.StatusApproved,
	}}
	handler := NewReportHandler(mock)

	c, w := newGinContext(http.MethodPost, "/reports/rep-1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "rep-1"}}
	asPrincipal(c)

	handler.Approve(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.ActionApprove, mock.action)
	require.Empty(t, mock.payload.ReviewNote)
}

func TestReportHandlerRejectCarriesNote(t *testing.T) {
	gin.SetMode(gin.TestMode)
	note := "missing attachments"
	mock := &workflowServiceMock{item: &models.WorkItem{
		ID: "rep-1", Type: models.WorkItemReport, Status: models.StatusRejected, ReviewNote: &note,
	}}
	handler := NewReportHandler(mock)

	payload, _ := json.Marshal(dto.ReviewRequest{ReviewNote: note})
	c, w := newGinContext(http.MethodPost, "/reports/rep-1/reject", payload)
	c.Params = gin.Params{{Key: "id", Value: "rep-1"}}
	asPrincipal(c)

	handler.Reject(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.ActionReject, mock.action)
	require.Equal(t, note, mock.payload.ReviewNote)
}

func TestReportHandlerResubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	previous := "rep-1"
	mock := &workflowServiceMock{item: &models.WorkItem{
		ID: "rep-2", Type: models.WorkItemReport, Status: models.StatusSubmitted, PreviousReportID: &previous,
	}}
	handler := NewReportHandler(mock)

	payload, _ := json.Marshal(dto.ResubmitRequest{Title: "Weekly duty report v2"})
	c, w := newGinContext(http.MethodPost, "/reports/rep-1/resubmit", payload)
	c.Params = gin.Params{{Key: "id", Value: "rep-1"}}
	asTeacher(c)

	handler.Resubmit(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.ActionResubmit, mock.action)
	require.NotNil(t, mock.payload.Resubmission)
	require.Equal(t, "Weekly duty report v2", mock.payload.Resubmission.Title)
}

func TestReportHandlerHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &workflowServiceMock{chain: []models.WorkItem{
		{ID: "rep-2", Type: models.WorkItemReport, Status: models.StatusSubmitted},
		{ID: "rep-1", Type: models.WorkItemReport, Status: models.StatusRejected},
	}}
	handler := NewReportHandler(mock)

	c, w := newGinContext(http.MethodGet, "/reports/rep-2/history", nil)
	c.Params = gin.Params{{Key: "id", Value: "rep-2"}}
	asTeacher(c)

	handler.History(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.WorkItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 2)
	require.Equal(t, "rep-2", envelope.Data[0].ID)
}

func TestReportHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&workflowServiceMock{err: appErrors.ErrNotFound})

	c, w := newGinContext(http.MethodGet, "/reports/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	asTeacher(c)

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
