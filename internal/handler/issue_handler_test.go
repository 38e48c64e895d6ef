package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-ops-api/internal/dto"
	"github.com/noah-isme/sma-ops-api/internal/middleware"
	"github.com/noah-isme/sma-ops-api/internal/models"
	"github.com/noah-isme/sma-ops-api/internal/service"
	appErrors "github.com/noah-isme/sma-ops-api/pkg/errors"
)

type workflowServiceMock struct {
	item    *models.WorkItem
	items   []models.WorkItem
	chain   []models.WorkItem
	err     error
	action  models.WorkflowAction
	payload *service.TransitionPayload
	filter  models.WorkItemFilter
}

func (m *workflowServiceMock) Create(_ context.Context, item *models.WorkItem) (*models.WorkItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	item.ID = "item-1"
	item.Status = item.Type.InitialStatus()
	return item, nil
}

func (m *workflowServiceMock) Get(_ context.Context, _ models.WorkItemType, _ string) (*models.WorkItem, error) {
	return m.item, m.err
}

func (m *workflowServiceMock) List(_ context.Context, filter models.WorkItemFilter) ([]models.WorkItem, error) {
	m.filter = filter
	return m.items, m.err
}

func (m *workflowServiceMock) Transition(_ context.Context, _ models.WorkItemType, _ string, action models.WorkflowAction, _ *models.Actor, payload *service.TransitionPayload) (*models.WorkItem, error) {
	m.action = action
	m.payload = payload
	return m.item, m.err
}

func (m *workflowServiceMock) RevisionChain(_ context.Context, _ string) ([]models.WorkItem, error) {
	return m.chain, m.err
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func asTeacher(c *gin.Context) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
}

func asPrincipal(c *gin.Context) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "principal-1", Role: models.RolePrincipal})
}

func TestIssueHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &workflowServiceMock{}
	handler := NewIssueHandler(mock)

	payload, _ := json.Marshal(dto.CreateIssueRequest{Title: "Broken projector"})
	c, w := newGinContext(http.MethodPost, "/issues", payload)
	asTeacher(c)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.WorkItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, models.StatusOpen, envelope.Data.Status)
	require.Equal(t, "teacher-1", envelope.Data.CreatedBy)
}

func TestIssueHandlerCreateRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewIssueHandler(&workflowServiceMock{})

	payload, _ := json.Marshal(dto.CreateIssueRequest{Title: "Broken projector"})
	c, w := newGinContext(http.MethodPost, "/issues", payload)

	handler.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIssueHandlerListParsesStatusFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &workflowServiceMock{}
	handler := NewIssueHandler(mock)

	c, w := newGinContext(http.MethodGet, "/issues?status=open,forwarded", nil)
	asPrincipal(c)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.WorkItemIssue, mock.filter.Type)
	require.Equal(t, []models.WorkItemStatus{models.StatusOpen, models.StatusForwarded}, mock.filter.Status)
}

func TestIssueHandlerForward(t *testing.T) {
	gin.SetMode(gin.TestMode)
	assignee := "manager-1"
	mock := &workflowServiceMock{item: &models.WorkItem{
		ID: "iss-1", Type: models.WorkItemIssue, Status: models.StatusForwarded, AssigneeID: &assignee,
	}}
	handler := NewIssueHandler(mock)

	payload, _ := json.Marshal(dto.ForwardRequest{ToUserID: "manager-1", Note: "please handle"})
	c, w := newGinContext(http.MethodPost, "/issues/iss-1/forward", payload)
	c.Params = gin.Params{{Key: "id", Value: "iss-1"}}
	asPrincipal(c)

	handler.Forward(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.ActionForward, mock.action)
	require.Equal(t, "manager-1", mock.payload.ToUserID)
}

func TestIssueHandlerForwardMissingTarget(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &workflowServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "to_user_id is required")}
	handler := NewIssueHandler(mock)

	c, w := newGinContext(http.MethodPost, "/issues/iss-1/forward", []byte(`{}`))
	c.Params = gin.Params{{Key: "id", Value: "iss-1"}}
	asPrincipal(c)

	handler.Forward(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIssueHandlerResolveConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &workflowServiceMock{err: appErrors.Clone(appErrors.ErrStateConflict, "issue is already resolved")}
	handler := NewIssueHandler(mock)

	c, w := newGinContext(http.MethodPost, "/issues/iss-1/resolve", nil)
	c.Params = gin.Params{{Key: "id", Value: "iss-1"}}
	asPrincipal(c)

	handler.Resolve(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "STATE_CONFLICT", envelope.Error.Code)
}
