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
	appErrors "github.com/noah-isme/sma-ops-api/pkg/errors"
)

type timelineServiceMock struct {
	itemType models.WorkItemType
	entries  []models.TimelineEntry
	err      error
}

func (m *timelineServiceMock) History(_ context.Context, itemType models.WorkItemType, _ string) ([]models.TimelineEntry, error) {
	m.itemType = itemType
	return m.entries, m.err
}

func TestTimelineHandlerHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &timelineServiceMock{entries: []models.TimelineEntry{
		{ID: "tl-1", WorkItemType: models.WorkItemIssue, WorkItemID: "iss-1", Action: models.TimelineCreated, PerformerID: "teacher-1", CreatedAt: time.Now()},
	}}
	handler := NewTimelineHandler(mock)

	c, w := newGinContext(http.MethodGet, "/timeline/issues/iss-1", nil)
	c.Params = gin.Params{{Key: "type", Value: "issues"}, {Key: "id", Value: "iss-1"}}
	asTeacher(c)

	handler.History(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.WorkItemIssue, mock.itemType)

	var envelope struct {
		Data []models.TimelineEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	require.Equal(t, models.TimelineCreated, envelope.Data[0].Action)
}

func TestTimelineHandlerUnknownType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &timelineServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "unsupported work item type")}
	handler := NewTimelineHandler(mock)

	c, w := newGinContext(http.MethodGet, "/timeline/grades/g-1", nil)
	c.Params = gin.Params{{Key: "type", Value: "grades"}, {Key: "id", Value: "g-1"}}
	asTeacher(c)

	handler.History(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
