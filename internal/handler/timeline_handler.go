package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-ops-api/internal/models"
	"github.com/noah-isme/sma-ops-api/pkg/response"
)

type timelineService interface {
	History(ctx context.Context, itemType models.WorkItemType, itemID string) ([]models.TimelineEntry, error)
}

// TimelineHandler exposes read access to work item audit timelines.
type TimelineHandler struct {
	service timelineService
}

// NewTimelineHandler constructs the handler.
func NewTimelineHandler(service timelineService) *TimelineHandler {
	return &TimelineHandler{service: service}
}

// History godoc
// @Summary Fetch the audit timeline of a work item, oldest first
// @Tags Timeline
// @Produce json
// @Param type path string true "Work item type (issues, reports, achievements)"
// @Param id path string true "Work item id"
// @Success 200 {object} response.Envelope
// @Router /timeline/{type}/{id} [get]
func (h *TimelineHandler) History(c *gin.Context) {
	itemType := timelineTypeFromPath(c.Param("type"))
	entries, err := h.service.History(c.Request.Context(), itemType, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

func timelineTypeFromPath(raw string) models.WorkItemType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "issues", "issue":
		return models.WorkItemIssue
	case "reports", "report":
		return models.WorkItemReport
	case "achievements", "achievement":
		return models.WorkItemAchievement
	default:
		return models.WorkItemType(strings.ToUpper(strings.TrimSpace(raw)))
	}
}
