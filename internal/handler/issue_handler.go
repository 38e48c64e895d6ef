package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-ops-api/internal/dto"
	"github.com/noah-isme/sma-ops-api/internal/models"
	"github.com/noah-isme/sma-ops-api/internal/service"
	appErrors "github.com/noah-isme/sma-ops-api/pkg/errors"
	"github.com/noah-isme/sma-ops-api/pkg/response"
)

type workflowService interface {
	Create(ctx context.Context, item *models.WorkItem) (*models.WorkItem, error)
	Get(ctx context.Context, itemType models.WorkItemType, id string) (*models.WorkItem, error)
	List(ctx context.Context, filter models.WorkItemFilter) ([]models.WorkItem, error)
	Transition(ctx context.Context, itemType models.WorkItemType, itemID string, action models.WorkflowAction, actor *models.Actor, payload *service.TransitionPayload) (*models.WorkItem, error)
	RevisionChain(ctx context.Context, reportID string) ([]models.WorkItem, error)
}

// IssueHandler exposes REST endpoints for the issue workflow.
type IssueHandler struct {
	service workflowService
}

// NewIssueHandler constructs the handler.
func NewIssueHandler(service workflowService) *IssueHandler {
	return &IssueHandler{service: service}
}

// Create godoc
// @Summary Open a new issue
// @Tags Issues
// @Accept json
// @Produce json
// @Param payload body dto.CreateIssueRequest true "Issue payload"
// @Success 201 {object} response.Envelope
// @Router /issues [post]
func (h *IssueHandler) Create(c *gin.Context) {
	var req dto.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid issue payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	item := &models.WorkItem{
		Type:        models.WorkItemIssue,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
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
// @Summary List issues
// @Tags Issues
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Success 200 {object} response.Envelope
// @Router /issues [get]
func (h *IssueHandler) List(c *gin.Context) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.WorkItemFilter{
		Type:       models.WorkItemIssue,
		CreatedBy:  strings.TrimSpace(c.Query("created_by")),
		AssigneeID: strings.TrimSpace(c.Query("assignee_id")),
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
// @Summary Fetch a single issue
// @Tags Issues
// @Produce json
// @Param id path string true "Issue id"
// @Success 200 {object} response.Envelope
// @Router /issues/{id} [get]
func (h *IssueHandler) Get(c *gin.Context) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	item, err := h.service.Get(c.Request.Context(), models.WorkItemIssue, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Forward godoc
// @Summary Forward an issue to a new responsible
// @Tags Issues
// @Accept json
// @Produce json
// @Param id path string true "Issue id"
// @Param payload body dto.ForwardRequest true "Forward payload"
// @Success 200 {object} response.Envelope
// @Router /issues/{id}/forward [post]
func (h *IssueHandler) Forward(c *gin.Context) {
	var req dto.ForwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid forward payload"))
		return
	}
	h.transition(c, models.ActionForward, &service.TransitionPayload{
		ToUserID: req.ToUserID,
		Note:     req.Note,
	})
}

// Resolve godoc
// @Summary Resolve an issue
// @Tags Issues
// @Produce json
// @Param id path string true "Issue id"
// @Success 200 {object} response.Envelope
// @Router /issues/{id}/resolve [post]
func (h *IssueHandler) Resolve(c *gin.Context) {
	h.transition(c, models.ActionResolve, &service.TransitionPayload{})
}

// Comment godoc
// @Summary Comment on an issue
// @Tags Issues
// @Accept json
// @Produce json
// @Param id path string true "Issue id"
// @Param payload body dto.CommentRequest true "Comment payload"
// @Success 200 {object} response.Envelope
// @Router /issues/{id}/comment [post]
func (h *IssueHandler) Comment(c *gin.Context) {
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid comment payload"))
		return
	}
	h.transition(c, models.ActionComment, &service.TransitionPayload{Comment: req.Comment})
}

func (h *IssueHandler) transition(c *gin.Context, action models.WorkflowAction, payload *service.TransitionPayload) {
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	item, err := h.service.Transition(c.Request.Context(), models.WorkItemIssue, c.Param("id"), action, actor, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
