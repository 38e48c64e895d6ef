package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-ops-api/internal/dto"
	"github.com/noah-isme/sma-ops-api/internal/models"
	"github.com/noah-isme/sma-ops-api/internal/service"
	appErrors "github.com/noah-isme/sma-ops-api/pkg/errors"
	"github.com/noah-isme/sma-ops-api/pkg/response"
)

// AchievementHandler exposes REST endpoints for the achievement workflow.
type AchievementHandler struct {
	service workflowService
}

// NewAchievementHandler constructs the handler.
func NewAchievementHandler(service workflowService) *AchievementHandler {
	return &AchievementHandler{service: service}
}

// Create godoc
// @Summary Record a student achievement pending review
// @Tags Achievements
// @Accept json
// @Produce json
// @Param payload body dto.CreateAchievementRequest true "Achievement payload"
// @Success 201 {object} response.Envelope
// @Router /achievements [post]
func (h *AchievementHandler) Create(c *gin.Context) {
	var req dto.CreateAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid achievement payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	studentID := strings.TrimSpace(req.StudentID)
	points := req.Points
	item := &models.WorkItem{
		Type:        models.WorkItemAchievement,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StudentID:   &studentID,
		Points:      &points,
		CreatedBy:   claims.UserID,
	}
	created, err := h.service.Create(c.Request.Context(), item)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List godoc
// @Summary List achievements
// @Tags Achievements
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param student_id query string false "Filter by student"
// @Success 200 {object} response.Envelope
// @Router /achievements [get]
func (h *AchievementHandler) List(c *gin.Context) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.WorkItemFilter{
		Type:      models.WorkItemAchievement,
		CreatedBy: strings.TrimSpace(c.Query("created_by")),
		StudentID: strings.TrimSpace(c.Query("student_id")),
	}
	if rawStatus := c.Query("status"); rawStatus != "" {
		for _, part := range strings.Split(rawStatus, ",") {
			part = strings.ToUpper(strings.TrimSpace(part))
			if part != "" {
				filter.Status = append(filter.Status, models.WorkItemStatus(part))
			}
		}
	}
	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Fetch a single achievement
// @Tags Achievements
// @Produce json
// @Param id path string true "Achievement id"
// @Success 200 {object} response.Envelope
// @Router /achievements/{id} [get]
func (h *AchievementHandler) Get(c *gin.Context) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	item, err := h.service.Get(c.Request.Context(), models.WorkItemAchievement, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Approve godoc
// @Summary Approve a pending achievement and credit its points
// @Tags Achievements
// @Accept json
// @Produce json
// @Param id path string true "Achievement id"
// @Param payload body dto.ReviewRequest false "Optional review note"
// @Success 200 {object} response.Envelope
// @Router /achievements/{id}/approve [post]
func (h *AchievementHandler) Approve(c *gin.Context) {
	h.review(c, models.ActionApprove)
}

// Reject godoc
// @Summary Reject a pending achievement
// @Tags Achievements
// @Accept json
// @Produce json
// @Param id path string true "Achievement id"
// @Param payload body dto.ReviewRequest true "Review note (mandatory on reject)"
// @Success 200 {object} response.Envelope
// @Router /achievements/{id}/reject [post]
func (h *AchievementHandler) Reject(c *gin.Context) {
	h.review(c, models.ActionReject)
}

func (h *AchievementHandler) review(c *gin.Context, action models.WorkflowAction) {
	var req dto.ReviewRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid review payload"))
			return
		}
	}
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	item, err := h.service.Transition(c.Request.Context(), models.WorkItemAchievement, c.Param("id"), action, actor, &service.TransitionPayload{ReviewNote: req.ReviewNote})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
